package invitation

import "context"

// InvitationService defines the interface for invitation business logic
type InvitationService interface {
	// Create issues an invitation for the authenticated inviter and returns its shareable link and QR code
	Create(ctx context.Context, req CreateRequest) (InvitationResponse, error)

	// Accept marks an unused invitation as used (public endpoint)
	Accept(ctx context.Context, id string) (AcceptResponse, error)

	// GetForInviter retrieves one of the inviter's invitations with its QR code
	GetForInviter(ctx context.Context, inviterID, id string) (InvitationResponse, error)

	// ListForInviter lists the inviter's invitations
	ListForInviter(ctx context.Context, inviterID string) ([]InvitationResponse, error)

	// QRCodePNG renders the invitation link as a PNG image
	QRCodePNG(ctx context.Context, inviterID, id string) ([]byte, error)
}
