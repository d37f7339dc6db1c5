package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/radarfeedback/feedback-backend-go/internal/domain/feedback"
	"github.com/radarfeedback/feedback-backend-go/internal/pkg/database"
	"github.com/radarfeedback/feedback-backend-go/internal/pkg/validator"
)

const radarBudgetConstraint = "feedback_radar_budget_check"

type feedbackRepositoryImpl struct {
	db *database.DB
}

func NewFeedbackRepository(db *database.DB) feedback.FeedbackRepository {
	return &feedbackRepositoryImpl{db: db}
}

// ExistsForInvitation implements feedback.FeedbackRepository.
func (r *feedbackRepositoryImpl) ExistsForInvitation(ctx context.Context, invitationID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM feedback WHERE invitation_id = $1)`, invitationID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check feedback existence: %w", err)
	}
	return exists, nil
}

// Create implements feedback.FeedbackRepository.
// Must run inside a transaction so the selections are stored with the feedback row.
func (r *feedbackRepositoryImpl) Create(ctx context.Context, f feedback.Feedback) (feedback.Feedback, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO feedback (
			id, invitation_id, name, email,
			category_driving, category_exploring, category_understanding, category_communicating,
			feedback_type
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	err := q.QueryRow(ctx, query,
		f.ID, f.InvitationID, f.Name, f.Email,
		f.Driving, f.Exploring, f.Understanding, f.Communicating,
		string(f.Type),
	).Scan(&f.CreatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return feedback.Feedback{}, feedback.ErrFeedbackAlreadySubmitted
		case isCheckViolation(err, radarBudgetConstraint):
			return feedback.Feedback{}, validator.ValidationErrors{{
				Field:   feedback.NonFieldErrors,
				Message: feedback.SumErrorMessage,
			}}
		}
		return feedback.Feedback{}, fmt.Errorf("failed to create feedback: %w", err)
	}

	if traitIDs := f.TraitIDs(); len(traitIDs) > 0 {
		_, err = q.Exec(ctx, `
			INSERT INTO feedback_personality_traits (feedback_id, personality_trait_id)
			SELECT $1, unnest($2::uuid[])
		`, f.ID, traitIDs)
		if err != nil {
			return feedback.Feedback{}, fmt.Errorf("failed to store feedback traits: %w", err)
		}
	}

	if talentIDs := f.TalentIDs(); len(talentIDs) > 0 {
		_, err = q.Exec(ctx, `
			INSERT INTO feedback_talents (feedback_id, talent_id)
			SELECT $1, unnest($2::uuid[])
		`, f.ID, talentIDs)
		if err != nil {
			return feedback.Feedback{}, fmt.Errorf("failed to store feedback talents: %w", err)
		}
	}

	return f, nil
}

// GetByInvitationForInviter implements feedback.FeedbackRepository.
func (r *feedbackRepositoryImpl) GetByInvitationForInviter(ctx context.Context, invitationID, inviterID string) (feedback.Feedback, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT f.id, f.invitation_id, f.name, f.email,
			   f.category_driving, f.category_exploring, f.category_understanding, f.category_communicating,
			   f.feedback_type, f.created_at
		FROM feedback f
		JOIN invitations i ON i.id = f.invitation_id
		WHERE f.invitation_id = $1 AND i.inviter_id = $2
	`

	var f feedback.Feedback
	var feedbackType string
	err := q.QueryRow(ctx, query, invitationID, inviterID).Scan(
		&f.ID, &f.InvitationID, &f.Name, &f.Email,
		&f.Driving, &f.Exploring, &f.Understanding, &f.Communicating,
		&feedbackType, &f.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidInput(err) {
			return feedback.Feedback{}, feedback.ErrFeedbackNotFound
		}
		return feedback.Feedback{}, fmt.Errorf("failed to get feedback: %w", err)
	}
	f.Type = feedback.Type(feedbackType)

	f.Traits, err = r.selectRefs(ctx, q, `
		SELECT pt.id, pt.name
		FROM feedback_personality_traits fpt
		JOIN personality_traits pt ON pt.id = fpt.personality_trait_id
		WHERE fpt.feedback_id = $1
		ORDER BY pt.name
	`, f.ID)
	if err != nil {
		return feedback.Feedback{}, fmt.Errorf("failed to get feedback traits: %w", err)
	}

	f.Talents, err = r.selectRefs(ctx, q, `
		SELECT t.id, t.name
		FROM feedback_talents ft
		JOIN talents t ON t.id = ft.talent_id
		WHERE ft.feedback_id = $1
		ORDER BY t.name
	`, f.ID)
	if err != nil {
		return feedback.Feedback{}, fmt.Errorf("failed to get feedback talents: %w", err)
	}

	return f, nil
}

func (r *feedbackRepositoryImpl) selectRefs(ctx context.Context, q database.Querier, query string, feedbackID string) ([]feedback.Ref, error) {
	rows, err := q.Query(ctx, query, feedbackID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	refs := make([]feedback.Ref, 0)
	for rows.Next() {
		var ref feedback.Ref
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
