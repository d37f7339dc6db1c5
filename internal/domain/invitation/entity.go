package invitation

import "time"

// Invitation is a single-use token that lets one invitee leave one feedback.
// Used only ever moves from false to true.
type Invitation struct {
	ID           string
	InviterID    string
	InviteeEmail string
	Used         bool
	UsedAt       *time.Time
	CreatedAt    time.Time
}

// InvitationWithFeedback adds whether a feedback has been attached yet.
type InvitationWithFeedback struct {
	Invitation
	HasFeedback bool
}

// CanBeAccepted checks if the invitation can still be accepted
func (i *Invitation) CanBeAccepted() bool {
	return !i.Used
}

// AcceptsFeedback checks if the invitee has already accepted the invitation
func (i *Invitation) AcceptsFeedback() bool {
	return i.Used
}
