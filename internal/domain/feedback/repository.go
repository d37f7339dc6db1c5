package feedback

import "context"

type FeedbackRepository interface {
	// ExistsForInvitation reports whether a feedback is already attached to the invitation
	ExistsForInvitation(ctx context.Context, invitationID string) (bool, error)

	// Create inserts the feedback and its trait and talent selections
	Create(ctx context.Context, f Feedback) (Feedback, error)

	// GetByInvitationForInviter loads the feedback of an invitation owned by inviterID
	GetByInvitationForInviter(ctx context.Context, invitationID, inviterID string) (Feedback, error)
}
