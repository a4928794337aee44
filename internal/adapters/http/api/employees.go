// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/reten/internal/adapters/repository"
	"github.com/okian/reten/internal/domain/model"
)

// EmployeesDependencies defines the interface for employee read operations.
type EmployeesDependencies interface {
	Employees(ctx context.Context) []repository.YearGroup
	Employee(ctx context.Context, id string) (model.Employee, bool)
}

// EmployeesHandler handles employee read requests.
type EmployeesHandler struct {
	deps EmployeesDependencies
}

// NewEmployeesHandler creates a new employees handler.
func NewEmployeesHandler(deps EmployeesDependencies) *EmployeesHandler {
	return &EmployeesHandler{deps: deps}
}

// HandleListEmployees handles GET /employees requests. Records come back
// grouped by hire year, most recent year first.
func (h *EmployeesHandler) HandleListEmployees(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Employees(r.Context()))
}

// HandleGetEmployee handles GET /employees/{id} requests.
func (h *EmployeesHandler) HandleGetEmployee(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_employee"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/employees/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	e, ok := h.deps.Employee(r.Context(), id)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, e)
}
