package invitation

import "context"

// InvitationRepository defines the interface for invitation data access
type InvitationRepository interface {
	// Create creates a new invitation record
	Create(ctx context.Context, inv Invitation) (Invitation, error)

	// GetByIDForInviter retrieves an invitation owned by inviterID
	GetByIDForInviter(ctx context.Context, id, inviterID string) (InvitationWithFeedback, error)

	// ListByInviter lists every invitation issued by inviterID, newest first
	ListByInviter(ctx context.Context, inviterID string) ([]InvitationWithFeedback, error)

	// MarkUsed flips used to true only if it is still false
	MarkUsed(ctx context.Context, id string) (Invitation, error)

	// GetUsedForUpdate locks a used invitation for the rest of the transaction
	GetUsedForUpdate(ctx context.Context, id string) (Invitation, error)
}
