// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/reten/internal/app"
	"github.com/okian/reten/internal/domain/model"
)

// PredictDependencies defines the interface for assessment operations.
type PredictDependencies interface {
	Predict(ctx context.Context, p model.Profile) (model.RiskAssessment, error)
}

// PredictHandler handles assessment requests.
type PredictHandler struct {
	deps PredictDependencies
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps PredictDependencies) *PredictHandler {
	return &PredictHandler{deps: deps}
}

// HandlePredict handles POST /predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var profile model.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	assessment, err := h.deps.Predict(r.Context(), profile)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid_input", err)
		case errors.Is(err, service.ErrSessionExpired):
			writeError(w, http.StatusUnauthorized, "session_expired", err)
		case errors.Is(err, service.ErrUnauthenticated):
			writeError(w, http.StatusUnauthorized, "unauthenticated", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		}
		return
	}
	writeJSON(w, http.StatusOK, assessmentResponse{EmployeeID: profile.ID, RiskAssessment: assessment})
}
