package invitation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/radarfeedback/feedback-backend-go/internal/domain/invitation"
	"github.com/radarfeedback/feedback-backend-go/internal/domain/user"
	"github.com/radarfeedback/feedback-backend-go/internal/pkg/email"
	"github.com/radarfeedback/feedback-backend-go/internal/pkg/metrics"
	"github.com/radarfeedback/feedback-backend-go/internal/pkg/qrcode"
	"github.com/radarfeedback/feedback-backend-go/internal/pkg/validator"
)

const acceptedMessage = "Invitation accepted!"

// LinkBuilder turns an invitation id into the public link the invitee opens.
type LinkBuilder func(invitationID string) string

type InvitationServiceImpl struct {
	invitation.InvitationRepository
	userRepo     user.UserRepository
	qr           *qrcode.Renderer
	emailService email.EmailService
	metrics      *metrics.Metrics
	inviteURL    LinkBuilder
}

func NewInvitationService(
	invitationRepo invitation.InvitationRepository,
	userRepo user.UserRepository,
	qr *qrcode.Renderer,
	emailService email.EmailService,
	m *metrics.Metrics,
	inviteURL LinkBuilder,
) invitation.InvitationService {
	return &InvitationServiceImpl{
		InvitationRepository: invitationRepo,
		userRepo:             userRepo,
		qr:                   qr,
		emailService:         emailService,
		metrics:              m,
		inviteURL:            inviteURL,
	}
}

// Create implements invitation.InvitationService.
func (s *InvitationServiceImpl) Create(ctx context.Context, req invitation.CreateRequest) (invitation.InvitationResponse, error) {
	if err := req.Validate(); err != nil {
		return invitation.InvitationResponse{}, err
	}

	inviter, err := s.userRepo.GetByID(ctx, req.InviterID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return invitation.InvitationResponse{}, invitation.ErrInviterNotFound
		}
		return invitation.InvitationResponse{}, fmt.Errorf("failed to get inviter: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return invitation.InvitationResponse{}, fmt.Errorf("failed to generate invitation id: %w", err)
	}

	created, err := s.InvitationRepository.Create(ctx, invitation.Invitation{
		ID:           id.String(),
		InviterID:    inviter.ID,
		InviteeEmail: req.InviteeEmail,
	})
	if err != nil {
		return invitation.InvitationResponse{}, err
	}
	s.metrics.InvitationCreated()
	slog.Info("Invitation created", "invitation_id", created.ID, "inviter_id", inviter.ID)

	resp, err := s.withLinks(invitation.NewInvitationResponse(created, false), true)
	if err != nil {
		return invitation.InvitationResponse{}, err
	}

	s.sendInvitationEmail(created.InviteeEmail, inviterName(inviter), resp)

	return resp, nil
}

// sendInvitationEmail never fails the caller; the link is already in the response.
func (s *InvitationServiceImpl) sendInvitationEmail(to, fromName string, resp invitation.InvitationResponse) {
	if s.emailService == nil {
		return
	}
	if err := s.emailService.SendFeedbackInvitation(to, fromName, resp.InviteURL, resp.QRCode); err != nil {
		s.metrics.InvitationEmail("failed")
		slog.Warn("Failed to send invitation email", "invitation_id", resp.ID, "error", err)
		return
	}
	s.metrics.InvitationEmail("sent")
}

// Accept implements invitation.InvitationService.
func (s *InvitationServiceImpl) Accept(ctx context.Context, id string) (invitation.AcceptResponse, error) {
	if !validator.IsValidUUID(id) {
		return invitation.AcceptResponse{}, invitation.ErrInvitationNotFound
	}

	accepted, err := s.InvitationRepository.MarkUsed(ctx, id)
	if err != nil {
		return invitation.AcceptResponse{}, err
	}
	s.metrics.InvitationAccepted()
	slog.Info("Invitation accepted", "invitation_id", accepted.ID)

	return invitation.AcceptResponse{
		Message:      acceptedMessage,
		InvitationID: accepted.ID,
		Used:         accepted.Used,
	}, nil
}

// GetForInviter implements invitation.InvitationService.
func (s *InvitationServiceImpl) GetForInviter(ctx context.Context, inviterID, id string) (invitation.InvitationResponse, error) {
	inv, err := s.getOwned(ctx, inviterID, id)
	if err != nil {
		return invitation.InvitationResponse{}, err
	}
	return s.withLinks(invitation.NewInvitationResponse(inv.Invitation, inv.HasFeedback), true)
}

// ListForInviter implements invitation.InvitationService.
func (s *InvitationServiceImpl) ListForInviter(ctx context.Context, inviterID string) ([]invitation.InvitationResponse, error) {
	list, err := s.InvitationRepository.ListByInviter(ctx, inviterID)
	if err != nil {
		return nil, err
	}

	responses := make([]invitation.InvitationResponse, 0, len(list))
	for _, inv := range list {
		resp, err := s.withLinks(invitation.NewInvitationResponse(inv.Invitation, inv.HasFeedback), false)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// QRCodePNG implements invitation.InvitationService.
func (s *InvitationServiceImpl) QRCodePNG(ctx context.Context, inviterID, id string) ([]byte, error) {
	inv, err := s.getOwned(ctx, inviterID, id)
	if err != nil {
		return nil, err
	}
	return s.qr.PNG(s.inviteURL(inv.ID))
}

func (s *InvitationServiceImpl) getOwned(ctx context.Context, inviterID, id string) (invitation.InvitationWithFeedback, error) {
	if !validator.IsValidUUID(id) {
		return invitation.InvitationWithFeedback{}, invitation.ErrInvitationNotFound
	}
	return s.InvitationRepository.GetByIDForInviter(ctx, id, inviterID)
}

// withLinks fills invite_url and, when withQR is set, the QR data URI.
func (s *InvitationServiceImpl) withLinks(resp invitation.InvitationResponse, withQR bool) (invitation.InvitationResponse, error) {
	resp.InviteURL = s.inviteURL(resp.ID)
	if !withQR {
		return resp, nil
	}
	qr, err := s.qr.DataURI(resp.InviteURL)
	if err != nil {
		return invitation.InvitationResponse{}, err
	}
	resp.QRCode = qr
	return resp, nil
}

func inviterName(u user.User) string {
	if u.FullName != nil && *u.FullName != "" {
		return *u.FullName
	}
	return u.Email
}
