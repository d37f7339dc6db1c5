package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/radarfeedback/feedback-backend-go/internal/domain/auth"
	"github.com/radarfeedback/feedback-backend-go/internal/domain/feedback"
	"github.com/radarfeedback/feedback-backend-go/internal/domain/invitation"
	"github.com/radarfeedback/feedback-backend-go/internal/domain/taxonomy"
	"github.com/radarfeedback/feedback-backend-go/internal/pkg/jwt"
	"github.com/radarfeedback/feedback-backend-go/internal/pkg/metrics"
	"github.com/radarfeedback/feedback-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret    = "test-secret-key-for-jwt"
	testInviterID = "0190a5b4-7c1e-7d2a-9f00-1a2b3c4d5e6f"
	testInviteID  = "0190a5b4-7c1e-7d2a-9f00-aaaaaaaaaaaa"
)

type stubAuthService struct {
	register func(auth.RegisterRequest) (auth.TokenResponse, error)
	login    func(auth.LoginRequest) (auth.TokenResponse, error)
	logout   func(string) error
	refresh  func(auth.RefreshTokenRequest) (auth.AccessTokenResponse, error)
}

func (s *stubAuthService) Register(_ context.Context, req auth.RegisterRequest, _ auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	return s.register(req)
}

func (s *stubAuthService) Login(_ context.Context, req auth.LoginRequest, _ auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	return s.login(req)
}

func (s *stubAuthService) LoginWithGoogle(context.Context, string, string, auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	return auth.TokenResponse{}, auth.ErrGoogleLoginDisabled
}

func (s *stubAuthService) Logout(_ context.Context, token string) error {
	return s.logout(token)
}

func (s *stubAuthService) RefreshToken(_ context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	return s.refresh(req)
}

type stubInvitationService struct {
	created   invitation.CreateRequest
	createErr error
	acceptErr error
	getErr    error
}

func (s *stubInvitationService) Create(_ context.Context, req invitation.CreateRequest) (invitation.InvitationResponse, error) {
	s.created = req
	if s.createErr != nil {
		return invitation.InvitationResponse{}, s.createErr
	}
	return invitation.InvitationResponse{ID: testInviteID, Inviter: req.InviterID, InviteeEmail: req.InviteeEmail}, nil
}

func (s *stubInvitationService) Accept(_ context.Context, id string) (invitation.AcceptResponse, error) {
	if s.acceptErr != nil {
		return invitation.AcceptResponse{}, s.acceptErr
	}
	return invitation.AcceptResponse{Message: "Invitation accepted!", InvitationID: id, Used: true}, nil
}

func (s *stubInvitationService) GetForInviter(_ context.Context, inviterID, id string) (invitation.InvitationResponse, error) {
	if s.getErr != nil {
		return invitation.InvitationResponse{}, s.getErr
	}
	return invitation.InvitationResponse{ID: id, Inviter: inviterID}, nil
}

func (s *stubInvitationService) ListForInviter(_ context.Context, inviterID string) ([]invitation.InvitationResponse, error) {
	return []invitation.InvitationResponse{{ID: testInviteID, Inviter: inviterID}}, nil
}

func (s *stubInvitationService) QRCodePNG(context.Context, string, string) ([]byte, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return []byte("\x89PNG"), nil
}

type stubFeedbackService struct {
	submitted feedback.SubmitRequest
	submitErr error
}

func (s *stubFeedbackService) Submit(_ context.Context, req feedback.SubmitRequest) (feedback.FeedbackResponse, error) {
	s.submitted = req
	if s.submitErr != nil {
		return feedback.FeedbackResponse{}, s.submitErr
	}
	return feedback.FeedbackResponse{ID: "fb-1", Invitation: req.InvitationID, FeedbackType: feedback.TypeAdvanced}, nil
}

func (s *stubFeedbackService) GetForInviter(_ context.Context, _ string, invitationID string) (feedback.FeedbackResponse, error) {
	return feedback.FeedbackResponse{ID: "fb-1", Invitation: invitationID}, nil
}

type stubTaxonomyService struct{}

func (stubTaxonomyService) ListTraits(context.Context) ([]taxonomy.PersonalityTraitResponse, error) {
	return []taxonomy.PersonalityTraitResponse{{ID: "t1", Name: "Brave", Quality: "Courage"}}, nil
}

func (stubTaxonomyService) ListTalentCategories(context.Context) ([]taxonomy.TalentCategoryResponse, error) {
	return []taxonomy.TalentCategoryResponse{{ID: "c1", Name: "Leadership", Talents: []taxonomy.TalentResponse{}}}, nil
}

func (stubTaxonomyService) GetTalentCategory(_ context.Context, id string) (taxonomy.TalentCategoryResponse, error) {
	if id != "c1" {
		return taxonomy.TalentCategoryResponse{}, taxonomy.ErrTalentCategoryNotFound
	}
	return taxonomy.TalentCategoryResponse{ID: "c1", Name: "Leadership", Talents: []taxonomy.TalentResponse{}}, nil
}

func (stubTaxonomyService) Seed(context.Context) (taxonomy.SeedResult, error) {
	return taxonomy.SeedResult{}, nil
}

type testEnv struct {
	router      http.Handler
	jwt         jwt.Service
	auth        *stubAuthService
	invitations *stubInvitationService
	feedback    *stubFeedbackService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	jwtSvc, err := jwt.NewJWTService(testSecret, "1h", "24h", false)
	require.NoError(t, err)

	env := &testEnv{
		jwt: jwtSvc,
		auth: &stubAuthService{
			register: func(auth.RegisterRequest) (auth.TokenResponse, error) {
				return auth.TokenResponse{AccessToken: "a", RefreshToken: "r", RefreshTokenExpiresIn: 4102444800}, nil
			},
			login: func(auth.LoginRequest) (auth.TokenResponse, error) {
				return auth.TokenResponse{}, auth.ErrInvalidCredentials
			},
			logout: func(string) error { return nil },
			refresh: func(auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
				return auth.AccessTokenResponse{AccessToken: "new"}, nil
			},
		},
		invitations: &stubInvitationService{},
		feedback:    &stubFeedbackService{},
	}
	env.router = NewRouter(RouterOptions{AllowedOrigins: []string{"http://localhost:3000"}}, jwtSvc, metrics.New(), Handlers{
		Auth:       NewAuthHandler(jwtSvc, env.auth, nil, false),
		Invitation: NewInvitationHandler(env.invitations),
		Feedback:   NewFeedbackHandler(env.feedback),
		Taxonomy:   NewTaxonomyHandler(stubTaxonomyService{}),
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authed {
		token, _, err := e.jwt.GenerateAccessToken(testInviterID, "inviter@example.com")
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestRouter_Heartbeat(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Metrics(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodGet, "/api/v1/feedback/personality_traits", "", false)

	rec := env.do(t, http.MethodGet, "/metrics", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/v1/feedback/personality_traits")
}

func TestAcceptInvitation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/feedback/invite/accept/"+testInviteID, "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.True(t, body.Success)
	assert.Equal(t, "Invitation accepted!", body.Message)

	env.invitations.acceptErr = invitation.ErrInvitationNotFound
	rec = env.do(t, http.MethodPost, "/api/v1/feedback/invite/accept/"+testInviteID, "", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body = decodeEnvelope(t, rec)
	assert.False(t, body.Success)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
}

func TestSubmitFeedback(t *testing.T) {
	payload := `{"name":"Ann","category_driving":5,"category_exploring":3,"category_understanding":4,"category_communicating":2,"personality_traits":[],"talents":[]}`

	t.Run("created", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost, "/api/v1/feedback/submit/"+testInviteID, payload, false)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, testInviteID, env.feedback.submitted.InvitationID)
		assert.Equal(t, 5, env.feedback.submitted.CategoryDriving.Value)
	})

	t.Run("malformed json", func(t *testing.T) {
		env := newTestEnv(t)
		env.feedback.submitErr = feedback.ErrMalformedPayload
		rec := env.do(t, http.MethodPost, "/api/v1/feedback/submit/"+testInviteID, `{"name":`, false)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, testInviteID, env.feedback.submitted.InvitationID)
		assert.Error(t, env.feedback.submitted.DecodeErr)
	})

	t.Run("malformed json on unknown invitation", func(t *testing.T) {
		env := newTestEnv(t)
		env.feedback.submitErr = invitation.ErrInvitationNotFound
		rec := env.do(t, http.MethodPost, "/api/v1/feedback/submit/"+testInviteID, `{"name":`, false)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Error(t, env.feedback.submitted.DecodeErr)
	})

	t.Run("validation details", func(t *testing.T) {
		env := newTestEnv(t)
		env.feedback.submitErr = validator.ValidationErrors{{Field: feedback.NonFieldErrors, Message: feedback.SumErrorMessage}}
		rec := env.do(t, http.MethodPost, "/api/v1/feedback/submit/"+testInviteID, payload, false)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := decodeEnvelope(t, rec)
		require.NotNil(t, body.Error)
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
		assert.Equal(t, feedback.SumErrorMessage, body.Error.Details[feedback.NonFieldErrors])
	})

	t.Run("already submitted", func(t *testing.T) {
		env := newTestEnv(t)
		env.feedback.submitErr = feedback.ErrFeedbackAlreadySubmitted
		rec := env.do(t, http.MethodPost, "/api/v1/feedback/submit/"+testInviteID, payload, false)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unknown invitation", func(t *testing.T) {
		env := newTestEnv(t)
		env.feedback.submitErr = invitation.ErrInvitationNotFound
		rec := env.do(t, http.MethodPost, "/api/v1/feedback/submit/"+testInviteID, payload, false)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestInvitations_RequireAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/feedback/invitations", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	refresh, _, err := env.jwt.GenerateRefreshToken(testInviterID)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/feedback/invitations", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInvitations_CreateUsesTokenInviter(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/feedback/invitations", `{"invitee_email":"friend@example.com","inviter":"someone-else"}`, true)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, testInviterID, env.invitations.created.InviterID)
	assert.Equal(t, "friend@example.com", env.invitations.created.InviteeEmail)
}

func TestInvitations_ListAndGet(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/feedback/invitations", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	var list []invitation.InvitationResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, testInviterID, list[0].Inviter)

	rec = env.do(t, http.MethodGet, "/api/v1/feedback/invitations/"+testInviteID, "", true)
	assert.Equal(t, http.StatusOK, rec.Code)

	env.invitations.getErr = invitation.ErrInvitationNotFound
	rec = env.do(t, http.MethodGet, "/api/v1/feedback/invitations/"+testInviteID, "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvitations_QRCode(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/feedback/invitations/"+testInviteID+"/qr.png", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "\x89PNG", rec.Body.String())
}

func TestFeedback_GetForInvitation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/feedback/invitations/"+testInviteID+"/feedback", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	var fb feedback.FeedbackResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &fb))
	assert.Equal(t, testInviteID, fb.Invitation)
}

func TestTaxonomy(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/feedback/talent_categories", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"talents":[]`)

	rec = env.do(t, http.MethodGet, "/api/v1/feedback/talent_categories/c1", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/feedback/talent_categories/missing", "", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuth_Endpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/auth/register", `{"email":"a@example.com","password":"short","confirm_password":"short"}`, false)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "password must be at least 8 characters long", decodeEnvelope(t, rec).Error.Details["password"])

	rec = env.do(t, http.MethodPost, "/api/v1/auth/register", `{"email":"a@example.com","password":"password123","confirm_password":"password123"}`, false)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, rec.Result().Cookies())

	rec = env.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"a@example.com","password":"password123"}`, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/auth/refresh", `{}`, false)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/auth/refresh", `{"refresh_token":"r"}`, false)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/auth/login/oauth/google", "", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
