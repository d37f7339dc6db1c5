package feedback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/radarfeedback/feedback-backend-go/internal/domain/feedback"
	"github.com/radarfeedback/feedback-backend-go/internal/domain/invitation"
	"github.com/radarfeedback/feedback-backend-go/internal/domain/taxonomy"
	"github.com/radarfeedback/feedback-backend-go/internal/pkg/database"
	"github.com/radarfeedback/feedback-backend-go/internal/pkg/metrics"
	"github.com/radarfeedback/feedback-backend-go/internal/pkg/validator"
	"github.com/radarfeedback/feedback-backend-go/internal/repository/postgresql"
)

type FeedbackServiceImpl struct {
	db *database.DB
	feedback.FeedbackRepository
	invitationRepo invitation.InvitationRepository
	taxonomyRepo   taxonomy.TaxonomyRepository
	metrics        *metrics.Metrics
}

func NewFeedbackService(
	db *database.DB,
	feedbackRepo feedback.FeedbackRepository,
	invitationRepo invitation.InvitationRepository,
	taxonomyRepo taxonomy.TaxonomyRepository,
	m *metrics.Metrics,
) feedback.FeedbackService {
	return &FeedbackServiceImpl{
		db:                 db,
		FeedbackRepository: feedbackRepo,
		invitationRepo:     invitationRepo,
		taxonomyRepo:       taxonomyRepo,
		metrics:            m,
	}
}

// Submit implements feedback.FeedbackService.
//
// Checks run in order inside one transaction: the invitation is accepted (row
// locked), no feedback exists yet, the payload is valid, the selections exist.
func (s *FeedbackServiceImpl) Submit(ctx context.Context, req feedback.SubmitRequest) (feedback.FeedbackResponse, error) {
	if !validator.IsValidUUID(req.InvitationID) {
		s.metrics.FeedbackRejected("not_found")
		return feedback.FeedbackResponse{}, invitation.ErrInvitationNotFound
	}

	var created feedback.Feedback
	err := postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := postgresql.ContextWithTx(ctx, tx)

		// 1. Invitation accepted, locked until commit
		if _, err := s.invitationRepo.GetUsedForUpdate(txCtx, req.InvitationID); err != nil {
			return err
		}

		// 2. One feedback per invitation
		exists, err := s.FeedbackRepository.ExistsForInvitation(txCtx, req.InvitationID)
		if err != nil {
			return err
		}
		if exists {
			return feedback.ErrFeedbackAlreadySubmitted
		}

		if req.DecodeErr != nil {
			return fmt.Errorf("%w: %v", feedback.ErrMalformedPayload, req.DecodeErr)
		}

		// 3-4. Field formats and radar budget
		if err := req.Validate(); err != nil {
			return err
		}

		// 5. Selections exist
		f := req.ToFeedback()
		f.Traits, f.Talents, err = s.resolveSelections(txCtx, req.PersonalityTraits, req.Talents)
		if err != nil {
			return err
		}

		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate feedback id: %w", err)
		}
		f.ID = id.String()

		created, err = s.FeedbackRepository.Create(txCtx, f)
		return err
	})
	if err != nil {
		s.recordRejection(err)
		return feedback.FeedbackResponse{}, err
	}

	s.metrics.FeedbackSubmitted(string(created.Type))
	slog.Info("Feedback submitted",
		"invitation_id", created.InvitationID,
		"feedback_id", created.ID,
		"feedback_type", created.Type,
	)

	return feedback.NewFeedbackResponse(created), nil
}

// resolveSelections maps the requested ids to refs in request order and reports unknown ids.
func (s *FeedbackServiceImpl) resolveSelections(ctx context.Context, traitIDs, talentIDs []string) ([]feedback.Ref, []feedback.Ref, error) {
	traits, err := s.taxonomyRepo.GetTraitsByIDs(ctx, traitIDs)
	if err != nil {
		return nil, nil, err
	}
	talents, err := s.taxonomyRepo.GetTalentsByIDs(ctx, talentIDs)
	if err != nil {
		return nil, nil, err
	}

	traitNames := make(map[string]string, len(traits))
	for _, t := range traits {
		traitNames[t.ID] = t.Name
	}
	talentNames := make(map[string]string, len(talents))
	for _, t := range talents {
		talentNames[t.ID] = t.Name
	}

	var errs validator.ValidationErrors
	traitRefs, missing := toRefs(traitIDs, traitNames)
	for _, id := range missing {
		errs = append(errs, validator.ValidationError{Field: "personality_traits", Message: feedback.InvalidPKMessage(id)})
	}
	talentRefs, missing := toRefs(talentIDs, talentNames)
	for _, id := range missing {
		errs = append(errs, validator.ValidationError{Field: "talents", Message: feedback.InvalidPKMessage(id)})
	}
	if len(errs) > 0 {
		return nil, nil, errs
	}

	return traitRefs, talentRefs, nil
}

func toRefs(ids []string, names map[string]string) (refs []feedback.Ref, missing []string) {
	refs = make([]feedback.Ref, 0, len(ids))
	for _, id := range ids {
		name, ok := names[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		refs = append(refs, feedback.Ref{ID: id, Name: name})
	}
	return refs, missing
}

func (s *FeedbackServiceImpl) recordRejection(err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		s.metrics.FeedbackRejected("validation")
	case errors.Is(err, feedback.ErrFeedbackAlreadySubmitted):
		s.metrics.FeedbackRejected("duplicate")
	case errors.Is(err, invitation.ErrInvitationNotFound):
		s.metrics.FeedbackRejected("not_found")
	case errors.Is(err, feedback.ErrMalformedPayload):
		s.metrics.FeedbackRejected("malformed")
	}
}

// GetForInviter implements feedback.FeedbackService.
func (s *FeedbackServiceImpl) GetForInviter(ctx context.Context, inviterID, invitationID string) (feedback.FeedbackResponse, error) {
	if !validator.IsValidUUID(invitationID) {
		return feedback.FeedbackResponse{}, feedback.ErrFeedbackNotFound
	}

	f, err := s.FeedbackRepository.GetByInvitationForInviter(ctx, invitationID, inviterID)
	if err != nil {
		return feedback.FeedbackResponse{}, err
	}
	return feedback.NewFeedbackResponse(f), nil
}
