package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/stationwatch/stationwatch/internal/api/models"
	"github.com/stationwatch/stationwatch/internal/api/response"
	"github.com/stationwatch/stationwatch/internal/auth"
)

// AuthHandler exchanges the admin API key for bearer tokens.
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// IssueToken handles POST /api/auth/token.
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var body models.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}

	token, expiresAt, err := h.authService.IssueAdminToken(body.APIKey, body.Subject)
	if err != nil {
		if errors.Is(err, auth.ErrBadCredentials) {
			response.Unauthorized(w, r, "bad credentials")
			return
		}
		response.InternalError(w, r, "failed to issue token")
		return
	}

	response.JSON(w, r, http.StatusOK, models.TokenResponse{
		Token:     token,
		ExpiresAt: models.Timestamp(expiresAt),
	})
}
