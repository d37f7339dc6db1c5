package invitation

import "errors"

var (
	// ErrInvitationNotFound covers both a missing invitation and one in the wrong state.
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrInviterNotFound    = errors.New("inviter not found")
)
