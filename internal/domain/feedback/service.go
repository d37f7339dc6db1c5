package feedback

import "context"

type FeedbackService interface {
	// Submit validates and stores the one feedback of an accepted invitation (public endpoint)
	Submit(ctx context.Context, req SubmitRequest) (FeedbackResponse, error)

	// GetForInviter returns the feedback left on one of the inviter's invitations
	GetForInviter(ctx context.Context, inviterID, invitationID string) (FeedbackResponse, error)
}
