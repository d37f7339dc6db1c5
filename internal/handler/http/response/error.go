package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/radarfeedback/feedback-backend-go/internal/domain/auth"
	"github.com/radarfeedback/feedback-backend-go/internal/domain/feedback"
	"github.com/radarfeedback/feedback-backend-go/internal/domain/invitation"
	"github.com/radarfeedback/feedback-backend-go/internal/domain/taxonomy"
	"github.com/radarfeedback/feedback-backend-go/internal/pkg/oauth"
	"github.com/radarfeedback/feedback-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, "Invalid email or password")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrUserNotFound):
		Unauthorized(w, "User not found")
	case errors.Is(err, auth.ErrEmailAlreadyExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, auth.ErrGoogleLoginDisabled):
		NotFound(w, "Google login is not configured")
	case errors.Is(err, oauth.ErrEmailNotVerified):
		Forbidden(w, "Google account email is not verified")

	// Invitation domain errors
	case errors.Is(err, invitation.ErrInvitationNotFound):
		NotFound(w, "Invitation not found")
	case errors.Is(err, invitation.ErrInviterNotFound):
		Unauthorized(w, "Inviter account no longer exists")

	// Feedback domain errors
	case errors.Is(err, feedback.ErrFeedbackAlreadySubmitted):
		Conflict(w, "Feedback already submitted")
	case errors.Is(err, feedback.ErrFeedbackNotFound):
		NotFound(w, "Feedback not found")
	case errors.Is(err, feedback.ErrMalformedPayload):
		BadRequest(w, "Invalid request format", nil)

	// Taxonomy domain errors
	case errors.Is(err, taxonomy.ErrTalentCategoryNotFound):
		NotFound(w, "Talent category not found")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
