package handler

import (
	"encoding/json"
	"net/http"

	"geo2max-server/internal/domain"
	"geo2max-server/internal/service"
	"geo2max-server/pkg/response"

	"github.com/go-playground/validator/v10"
)

type AuthHandler struct {
	sessionService *service.SessionService
	validator      *validator.Validate
}

func NewAuthHandler(sessionService *service.SessionService) *AuthHandler {
	return &AuthHandler{
		sessionService: sessionService,
		validator:      validator.New(),
	}
}

// IssueSession exchanges a user key and remote access token for a
// session token. The OAuth handshake itself happens elsewhere; callers
// arrive here already holding both values.
func (h *AuthHandler) IssueSession(w http.ResponseWriter, r *http.Request) {
	var req domain.IssueSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	session, err := h.sessionService.Issue(&req)
	if err != nil {
		response.InternalError(w, "Failed to issue session token")
		return
	}

	response.JSON(w, http.StatusOK, session)
}
