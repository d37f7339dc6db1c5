package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/radarfeedback/feedback-backend-go/internal/domain/feedback"
	"github.com/radarfeedback/feedback-backend-go/internal/handler/http/middleware"
	"github.com/radarfeedback/feedback-backend-go/internal/handler/http/response"
)

type FeedbackHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	GetForInvitation(w http.ResponseWriter, r *http.Request)
}

type feedbackHandlerImpl struct {
	feedbackService feedback.FeedbackService
}

func NewFeedbackHandler(feedbackService feedback.FeedbackService) FeedbackHandler {
	return &feedbackHandlerImpl{feedbackService: feedbackService}
}

// Submit implements FeedbackHandler - public, keyed by the accepted invitation
func (h *feedbackHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	var req feedback.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Submit feedback decode error", "error", err)
		req = feedback.SubmitRequest{DecodeErr: err}
	}
	req.InvitationID = chi.URLParam(r, "id")

	result, err := h.feedbackService.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Feedback submitted successfully", result)
}

// GetForInvitation implements FeedbackHandler
func (h *feedbackHandlerImpl) GetForInvitation(w http.ResponseWriter, r *http.Request) {
	inviterID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "User ID not found in token")
		return
	}

	result, err := h.feedbackService.GetForInviter(r.Context(), inviterID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
