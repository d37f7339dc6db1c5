package invitation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/radarfeedback/feedback-backend-go/internal/domain/invitation"
	"github.com/radarfeedback/feedback-backend-go/internal/domain/user"
	"github.com/radarfeedback/feedback-backend-go/internal/pkg/metrics"
	"github.com/radarfeedback/feedback-backend-go/internal/pkg/qrcode"
	"github.com/radarfeedback/feedback-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInviterID = "6f1c2f4e-3a5b-4c6d-8e9f-0a1b2c3d4e5f"

// ===== FAKES =====

type fakeInvitationRepo struct {
	mu          sync.Mutex
	invitations map[string]invitation.Invitation
	feedback    map[string]bool
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{
		invitations: make(map[string]invitation.Invitation),
		feedback:    make(map[string]bool),
	}
}

func (r *fakeInvitationRepo) Create(_ context.Context, inv invitation.Invitation) (invitation.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv.CreatedAt = time.Now()
	r.invitations[inv.ID] = inv
	return inv, nil
}

func (r *fakeInvitationRepo) GetByIDForInviter(_ context.Context, id, inviterID string) (invitation.InvitationWithFeedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invitations[id]
	if !ok || inv.InviterID != inviterID {
		return invitation.InvitationWithFeedback{}, invitation.ErrInvitationNotFound
	}
	return invitation.InvitationWithFeedback{Invitation: inv, HasFeedback: r.feedback[id]}, nil
}

func (r *fakeInvitationRepo) ListByInviter(_ context.Context, inviterID string) ([]invitation.InvitationWithFeedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []invitation.InvitationWithFeedback
	for _, inv := range r.invitations {
		if inv.InviterID == inviterID {
			out = append(out, invitation.InvitationWithFeedback{Invitation: inv, HasFeedback: r.feedback[inv.ID]})
		}
	}
	return out, nil
}

func (r *fakeInvitationRepo) MarkUsed(_ context.Context, id string) (invitation.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invitations[id]
	if !ok || inv.Used {
		return invitation.Invitation{}, invitation.ErrInvitationNotFound
	}
	now := time.Now()
	inv.Used, inv.UsedAt = true, &now
	r.invitations[id] = inv
	return inv, nil
}

func (r *fakeInvitationRepo) GetUsedForUpdate(_ context.Context, id string) (invitation.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invitations[id]
	if !ok || !inv.Used {
		return invitation.Invitation{}, invitation.ErrInvitationNotFound
	}
	return inv, nil
}

type fakeUserRepo struct {
	users map[string]user.User
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) Create(_ context.Context, u user.User) (user.User, error) {
	return u, nil
}

func (r *fakeUserRepo) ExistsByIDOrEmail(_ context.Context, id, email *string) (bool, error) {
	return false, nil
}

func (r *fakeUserRepo) LinkGoogleAccount(_ context.Context, googleID string, email string) (user.User, error) {
	return user.User{}, nil
}

type fakeEmail struct {
	err  error
	sent []string
}

func (e *fakeEmail) SendFeedbackInvitation(to, inviterName, inviteURL, qrCodeDataURI string) error {
	e.sent = append(e.sent, to+"|"+inviterName+"|"+inviteURL)
	return e.err
}

type fixture struct {
	svc   invitation.InvitationService
	repo  *fakeInvitationRepo
	email *fakeEmail
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	name := "Ana"
	repo := newFakeInvitationRepo()
	users := &fakeUserRepo{users: map[string]user.User{
		testInviterID: {ID: testInviterID, Email: "ana@example.com", FullName: &name},
	}}
	mail := &fakeEmail{}
	svc := NewInvitationService(repo, users, qrcode.NewRenderer(128), mail, metrics.New(), func(id string) string {
		return "https://radar.example.com/feedback/invite/" + id
	})
	return fixture{svc: svc, repo: repo, email: mail}
}

func (f fixture) create(t *testing.T) invitation.InvitationResponse {
	t.Helper()
	resp, err := f.svc.Create(context.Background(), invitation.CreateRequest{
		InviteeEmail: "invitee@example.com",
		InviterID:    testInviterID,
	})
	require.NoError(t, err)
	return resp
}

// ===== CREATE =====

func TestInvitationService_Create_Success(t *testing.T) {
	f := newFixture(t)

	// Act
	resp := f.create(t)

	// Assert
	assert.True(t, validator.IsValidUUID(resp.ID))
	assert.Equal(t, testInviterID, resp.Inviter)
	assert.Equal(t, "invitee@example.com", resp.InviteeEmail)
	assert.False(t, resp.Used)
	assert.Nil(t, resp.UsedAt)
	assert.Equal(t, "https://radar.example.com/feedback/invite/"+resp.ID, resp.InviteURL)
	assert.True(t, strings.HasPrefix(resp.QRCode, "data:image/png;base64,"))
	assert.Equal(t, []string{"invitee@example.com|Ana|" + resp.InviteURL}, f.email.sent)
}

func TestInvitationService_Create_SameEmailTwice(t *testing.T) {
	f := newFixture(t)

	first := f.create(t)
	second := f.create(t)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestInvitationService_Create_EmailFailureIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.email.err = errors.New("smtp down")

	resp := f.create(t)

	assert.NotEmpty(t, resp.ID)
	assert.Len(t, f.email.sent, 1)
}

func TestInvitationService_Create_Invalid(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), invitation.CreateRequest{
		InviteeEmail: "not-an-email",
		InviterID:    testInviterID,
	})

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "Enter a valid email address.", verrs.ToMap()["invitee_email"])
	assert.Empty(t, f.repo.invitations)
}

func TestInvitationService_Create_UnknownInviter(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), invitation.CreateRequest{
		InviteeEmail: "invitee@example.com",
		InviterID:    "0190a5b4-7c1e-7d2a-9f00-1a2b3c4d5e6f",
	})

	assert.ErrorIs(t, err, invitation.ErrInviterNotFound)
}

// ===== ACCEPT =====

func TestInvitationService_Accept(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)

	// Act
	resp, err := f.svc.Accept(context.Background(), created.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Invitation accepted!", resp.Message)
	assert.Equal(t, created.ID, resp.InvitationID)
	assert.True(t, resp.Used)

	_, err = f.svc.Accept(context.Background(), created.ID)
	assert.ErrorIs(t, err, invitation.ErrInvitationNotFound)
}

func TestInvitationService_Accept_UnknownOrMalformed(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Accept(context.Background(), "0190a5b4-7c1e-7d2a-9f00-1a2b3c4d5e6f")
	assert.ErrorIs(t, err, invitation.ErrInvitationNotFound)

	_, err = f.svc.Accept(context.Background(), "definitely-not-a-uuid")
	assert.ErrorIs(t, err, invitation.ErrInvitationNotFound)
}

func TestInvitationService_Accept_Concurrent(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)

	var wg sync.WaitGroup
	var successes atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.Accept(context.Background(), created.ID); err == nil {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
}

// ===== READ =====

func TestInvitationService_GetForInviter(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)

	got, err := f.svc.GetForInviter(context.Background(), testInviterID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.NotEmpty(t, got.QRCode)

	_, err = f.svc.GetForInviter(context.Background(), "someone-else", created.ID)
	assert.ErrorIs(t, err, invitation.ErrInvitationNotFound)
}

func TestInvitationService_ListForInviter(t *testing.T) {
	f := newFixture(t)
	f.create(t)
	f.create(t)

	list, err := f.svc.ListForInviter(context.Background(), testInviterID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, inv := range list {
		assert.NotEmpty(t, inv.InviteURL)
		assert.Empty(t, inv.QRCode)
	}

	empty, err := f.svc.ListForInviter(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestInvitationService_QRCodePNG(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)

	png, err := f.svc.QRCodePNG(context.Background(), testInviterID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])
}
