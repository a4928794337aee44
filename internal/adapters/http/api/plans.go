// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/reten/internal/domain/model"
)

// PlansDependencies defines the interface for retention plan queries.
type PlansDependencies interface {
	AtRisk(ctx context.Context) []model.Employee
}

// PlansHandler handles retention plan requests.
type PlansHandler struct {
	deps PlansDependencies
}

// NewPlansHandler creates a new plans handler.
func NewPlansHandler(deps PlansDependencies) *PlansHandler {
	return &PlansHandler{deps: deps}
}

// planEntry is one at-risk employee with their current plan.
type planEntry struct {
	EmployeeID    string          `json:"employee_id"`
	Name          string          `json:"name"`
	RiskScore     int             `json:"risk_score"`
	RiskLevel     model.RiskLevel `json:"risk_level"`
	RetentionPlan string          `json:"retention_plan,omitempty"`
}

// HandleGetPlans handles GET /retention-plans requests. Entries come back
// highest score first.
func (h *PlansHandler) HandleGetPlans(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	atRisk := h.deps.AtRisk(r.Context())
	entries := make([]planEntry, 0, len(atRisk))
	for _, e := range atRisk {
		if e.Assessment == nil {
			continue
		}
		entries = append(entries, planEntry{
			EmployeeID:    e.ID,
			Name:          e.Name,
			RiskScore:     e.Assessment.Score,
			RiskLevel:     e.Assessment.Level,
			RetentionPlan: e.Assessment.Plan,
		})
	}
	writeJSON(w, http.StatusOK, entries)
}
