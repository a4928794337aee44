// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"

	service "github.com/okian/reten/internal/app"
)

// RescoreDependencies defines the interface for background re-assessment.
type RescoreDependencies interface {
	Rescore(ctx context.Context) (int, bool, error)
}

// RescoreHandler handles bulk rescore requests.
type RescoreHandler struct {
	deps RescoreDependencies
}

// NewRescoreHandler creates a new rescore handler.
func NewRescoreHandler(deps RescoreDependencies) *RescoreHandler {
	return &RescoreHandler{deps: deps}
}

type rescoreResponse struct {
	Status   string `json:"status"`
	Accepted int    `json:"accepted"`
}

// HandleRescore handles POST /rescore requests.
func (h *RescoreHandler) HandleRescore(w http.ResponseWriter, r *http.Request) {
	const op = "api.rescore"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	accepted, ok, err := h.deps.Rescore(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrUnauthenticated) {
			writeError(w, http.StatusUnauthorized, "unauthenticated", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if !ok {
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, rescoreResponse{Status: "accepted", Accepted: accepted})
}
