package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/radarfeedback/feedback-backend-go/internal/domain/invitation"
	"github.com/radarfeedback/feedback-backend-go/internal/pkg/database"
)

const invitationColumns = `id, inviter_id, invitee_email, used, used_at, created_at`

type invitationRepositoryImpl struct {
	db *database.DB
}

// NewInvitationRepository creates a new invitation repository instance
func NewInvitationRepository(db *database.DB) invitation.InvitationRepository {
	return &invitationRepositoryImpl{db: db}
}

func scanInvitation(row pgx.Row, extra ...any) (invitation.Invitation, error) {
	var inv invitation.Invitation
	dest := []any{&inv.ID, &inv.InviterID, &inv.InviteeEmail, &inv.Used, &inv.UsedAt, &inv.CreatedAt}
	err := row.Scan(append(dest, extra...)...)
	return inv, err
}

// notFoundOr maps missing rows and malformed ids to ErrInvitationNotFound.
func notFoundOr(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) || isInvalidInput(err) {
		return invitation.ErrInvitationNotFound
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// Create implements invitation.InvitationRepository.
func (r *invitationRepositoryImpl) Create(ctx context.Context, inv invitation.Invitation) (invitation.Invitation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO invitations (id, inviter_id, invitee_email)
		VALUES ($1, $2, $3)
		RETURNING ` + invitationColumns

	created, err := scanInvitation(q.QueryRow(ctx, query, inv.ID, inv.InviterID, inv.InviteeEmail))
	if err != nil {
		if isForeignKeyViolation(err) {
			return invitation.Invitation{}, invitation.ErrInviterNotFound
		}
		return invitation.Invitation{}, fmt.Errorf("failed to create invitation: %w", err)
	}

	return created, nil
}

// GetByIDForInviter implements invitation.InvitationRepository.
func (r *invitationRepositoryImpl) GetByIDForInviter(ctx context.Context, id, inviterID string) (invitation.InvitationWithFeedback, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT i.id, i.inviter_id, i.invitee_email, i.used, i.used_at, i.created_at,
			   EXISTS(SELECT 1 FROM feedback f WHERE f.invitation_id = i.id) AS has_feedback
		FROM invitations i
		WHERE i.id = $1 AND i.inviter_id = $2
	`

	var hasFeedback bool
	inv, err := scanInvitation(q.QueryRow(ctx, query, id, inviterID), &hasFeedback)
	if err != nil {
		return invitation.InvitationWithFeedback{}, notFoundOr(err, "get invitation")
	}

	return invitation.InvitationWithFeedback{Invitation: inv, HasFeedback: hasFeedback}, nil
}

// ListByInviter implements invitation.InvitationRepository.
func (r *invitationRepositoryImpl) ListByInviter(ctx context.Context, inviterID string) ([]invitation.InvitationWithFeedback, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT i.id, i.inviter_id, i.invitee_email, i.used, i.used_at, i.created_at,
			   EXISTS(SELECT 1 FROM feedback f WHERE f.invitation_id = i.id) AS has_feedback
		FROM invitations i
		WHERE i.inviter_id = $1
		ORDER BY i.created_at DESC, i.id DESC
	`

	rows, err := q.Query(ctx, query, inviterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	invitations := make([]invitation.InvitationWithFeedback, 0)
	for rows.Next() {
		var hasFeedback bool
		inv, err := scanInvitation(rows, &hasFeedback)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, invitation.InvitationWithFeedback{Invitation: inv, HasFeedback: hasFeedback})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invitations: %w", err)
	}

	return invitations, nil
}

// MarkUsed implements invitation.InvitationRepository.
// The WHERE clause makes concurrent accepts race-free: only one caller gets a row back.
func (r *invitationRepositoryImpl) MarkUsed(ctx context.Context, id string) (invitation.Invitation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE invitations
		SET used = TRUE, used_at = NOW()
		WHERE id = $1 AND used = FALSE
		RETURNING ` + invitationColumns

	inv, err := scanInvitation(q.QueryRow(ctx, query, id))
	if err != nil {
		return invitation.Invitation{}, notFoundOr(err, "accept invitation")
	}

	return inv, nil
}

// GetUsedForUpdate implements invitation.InvitationRepository.
func (r *invitationRepositoryImpl) GetUsedForUpdate(ctx context.Context, id string) (invitation.Invitation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE id = $1 AND used = TRUE
		FOR UPDATE
	`

	inv, err := scanInvitation(q.QueryRow(ctx, query, id))
	if err != nil {
		return invitation.Invitation{}, notFoundOr(err, "lock invitation")
	}

	return inv, nil
}
