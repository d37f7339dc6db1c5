package invitation

import (
	"strings"
	"time"

	"github.com/radarfeedback/feedback-backend-go/internal/pkg/validator"
)

// CreateRequest for issuing a new invitation
type CreateRequest struct {
	InviteeEmail string `json:"invitee_email"`
	InviterID    string `json:"-"` // From JWT - not from request body
}

func (r *CreateRequest) Validate() error {
	var errs validator.ValidationErrors

	r.InviteeEmail = strings.TrimSpace(r.InviteeEmail)

	if validator.IsEmpty(r.InviteeEmail) {
		errs = append(errs, validator.ValidationError{
			Field:   "invitee_email",
			Message: "invitee_email is required",
		})
	} else if len(r.InviteeEmail) > 254 {
		errs = append(errs, validator.ValidationError{
			Field:   "invitee_email",
			Message: "invitee_email must not exceed 254 characters",
		})
	} else if !validator.IsValidEmail(r.InviteeEmail) {
		errs = append(errs, validator.ValidationError{
			Field:   "invitee_email",
			Message: "Enter a valid email address.",
		})
	}

	if validator.IsEmpty(r.InviterID) {
		errs = append(errs, validator.ValidationError{
			Field:   "inviter",
			Message: "inviter is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// InvitationResponse - POST /feedback/invitations, GET /feedback/invitations/{id}
type InvitationResponse struct {
	ID           string  `json:"id"`
	Inviter      string  `json:"inviter"`
	InviteeEmail string  `json:"invitee_email"`
	Used         bool    `json:"used"`
	UsedAt       *string `json:"used_at,omitempty"`
	HasFeedback  bool    `json:"has_feedback"`
	CreatedAt    string  `json:"created_at"`
	InviteURL    string  `json:"invite_url"`
	QRCode       string  `json:"qr_code,omitempty"`
}

// NewInvitationResponse maps an invitation; link fields are filled in by the service.
func NewInvitationResponse(inv Invitation, hasFeedback bool) InvitationResponse {
	resp := InvitationResponse{
		ID:           inv.ID,
		Inviter:      inv.InviterID,
		InviteeEmail: inv.InviteeEmail,
		Used:         inv.Used,
		HasFeedback:  hasFeedback,
		CreatedAt:    inv.CreatedAt.Format(time.RFC3339),
	}
	if inv.UsedAt != nil {
		usedAt := inv.UsedAt.Format(time.RFC3339)
		resp.UsedAt = &usedAt
	}
	return resp
}

// AcceptResponse for invitation acceptance result
type AcceptResponse struct {
	Message      string `json:"message"`
	InvitationID string `json:"invitation_id"`
	Used         bool   `json:"used"`
}
