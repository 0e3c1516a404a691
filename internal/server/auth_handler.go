package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/resume-reader/internal/config"
	"github.com/jonathan/resume-reader/internal/server/middleware"
	"github.com/jonathan/resume-reader/internal/types"
)

// SessionRevoker ends sessions before their tokens expire.
type SessionRevoker interface {
	Revoke(sessionID string)
}

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	auth       *config.AuthConfig
	jwtService *JWTService
	sessions   SessionRevoker
	validator  *validator.Validate
	logger     *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(auth *config.AuthConfig, jwtService *JWTService, sessions SessionRevoker, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		auth:       auth,
		jwtService: jwtService,
		sessions:   sessions,
		validator:  validator.New(),
		logger:     logger,
	}
}

// Login checks the operator credentials and issues a token bound to a new session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		validationErrors := extractValidationErrors(err)
		http.Error(w, validationErrors, http.StatusBadRequest)
		return
	}

	if !h.auth.CheckCredentials(req.Username, req.Password) {
		h.logger.Warn("login.failed", "username", req.Username)
		err := &ErrInvalidCredentials{}
		http.Error(w, err.Error(), HTTPStatus(err))
		return
	}

	token, sessionID, expiresAt, err := h.jwtService.GenerateToken(req.Username)
	if err != nil {
		h.logger.Error("login.token.failed", "error", err)
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}
	h.logger.Info("login.ok", "username", req.Username, "session_id", sessionID)

	response := types.LoginResponse{
		Token:     token,
		SessionID: sessionID,
		ExpiresAt: expiresAt,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		// Log error but response already sent
		return
	}
}

// Logout revokes the caller's session. Must run behind the auth middleware.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID, err := middleware.GetSessionID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	h.sessions.Revoke(sessionID)
	h.logger.Info("logout.ok", "session_id", sessionID)
	w.WriteHeader(http.StatusNoContent)
}

// extractValidationErrors extracts validation error messages from validator errors.
func extractValidationErrors(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrors) > 0 {
			// Return first validation error for simplicity
			ve := validationErrors[0]
			return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
		}
	}
	return "validation error: invalid request"
}
