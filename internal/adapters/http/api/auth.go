// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/reten/internal/adapters/predictor"
)

// AuthDependencies defines the interface for session operations.
type AuthDependencies interface {
	Login(ctx context.Context, username, password string) error
	Logout(ctx context.Context)
}

// AuthHandler handles login and logout requests.
type AuthHandler struct {
	deps AuthDependencies
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(deps AuthDependencies) *AuthHandler {
	return &AuthHandler{deps: deps}
}

// loginRequest mirrors the OpenAPI schema for POST /login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (l loginRequest) validate() error {
	switch {
	case strings.TrimSpace(l.Username) == "":
		return errors.New("missing username")
	case strings.TrimSpace(l.Password) == "":
		return errors.New("missing password")
	}
	return nil
}

type loginResponse struct {
	Status string `json:"status"`
}

// HandleLogin handles POST /login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "api.login"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.Login(r.Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, predictor.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid_credentials", err)
			return
		}
		writeError(w, http.StatusBadGateway, "auth_unavailable", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Status: "authenticated"})
}

// HandleLogout handles POST /logout requests.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	h.deps.Logout(r.Context())
	writeJSON(w, http.StatusOK, loginResponse{Status: "logged_out"})
}
