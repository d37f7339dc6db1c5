package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/radarfeedback/feedback-backend-go/internal/domain/invitation"
	"github.com/radarfeedback/feedback-backend-go/internal/handler/http/middleware"
	"github.com/radarfeedback/feedback-backend-go/internal/handler/http/response"
)

type InvitationHandler interface {
	// Authenticated endpoints
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	QRCode(w http.ResponseWriter, r *http.Request)
	// Public endpoint - the invitee follows the link
	Accept(w http.ResponseWriter, r *http.Request)
}

type invitationHandlerImpl struct {
	invitationService invitation.InvitationService
}

func NewInvitationHandler(invitationService invitation.InvitationService) InvitationHandler {
	return &invitationHandlerImpl{
		invitationService: invitationService,
	}
}

// Create implements InvitationHandler - issues an invitation for the authenticated user
func (h *invitationHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	inviterID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "User ID not found in token")
		return
	}

	var req invitation.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.InviterID = inviterID

	result, err := h.invitationService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Invitation created successfully", result)
}

// List implements InvitationHandler
func (h *invitationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	inviterID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "User ID not found in token")
		return
	}

	results, err := h.invitationService.ListForInviter(r.Context(), inviterID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// Get implements InvitationHandler
func (h *invitationHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	inviterID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "User ID not found in token")
		return
	}

	result, err := h.invitationService.GetForInviter(r.Context(), inviterID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// QRCode implements InvitationHandler - serves the invite link as a PNG
func (h *invitationHandlerImpl) QRCode(w http.ResponseWriter, r *http.Request) {
	inviterID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "User ID not found in token")
		return
	}

	png, err := h.invitationService.QRCodePNG(r.Context(), inviterID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Binary(w, "image/png", png)
}

// Accept implements InvitationHandler
func (h *invitationHandlerImpl) Accept(w http.ResponseWriter, r *http.Request) {
	result, err := h.invitationService.Accept(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, result.Message, result)
}
