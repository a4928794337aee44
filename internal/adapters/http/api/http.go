// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/reten/internal/adapters/repository"
	"github.com/okian/reten/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Session lifecycle.
	Login(ctx context.Context, username, password string) error
	Logout(ctx context.Context)

	// Predict assesses one profile and stores the result when it carries an id.
	Predict(ctx context.Context, p model.Profile) (model.RiskAssessment, error)

	// Read operations over the employee store.
	Employees(ctx context.Context) []repository.YearGroup
	Employee(ctx context.Context, id string) (model.Employee, bool)
	AtRisk(ctx context.Context) []model.Employee

	// Rescore enqueues every stored profile for background re-assessment.
	// Returns how many were accepted; false signals backpressure.
	Rescore(ctx context.Context) (int, bool, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	authHandler      *AuthHandler
	predictHandler   *PredictHandler
	employeesHandler *EmployeesHandler
	plansHandler     *PlansHandler
	rescoreHandler   *RescoreHandler
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		authHandler:      NewAuthHandler(deps),
		predictHandler:   NewPredictHandler(deps),
		employeesHandler: NewEmployeesHandler(deps),
		plansHandler:     NewPlansHandler(deps),
		rescoreHandler:   NewRescoreHandler(deps),
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/login", MetricsMiddleware(s.authHandler.HandleLogin, "login"))
	mux.HandleFunc("/logout", MetricsMiddleware(s.authHandler.HandleLogout, "logout"))
	mux.HandleFunc("/predict", MetricsMiddleware(s.predictHandler.HandlePredict, "predict"))
	mux.HandleFunc("/rescore", MetricsMiddleware(s.rescoreHandler.HandleRescore, "rescore"))
	mux.HandleFunc("/retention-plans", MetricsMiddleware(s.plansHandler.HandleGetPlans, "retention_plans"))
	mux.HandleFunc("/employees", MetricsMiddleware(s.employeesHandler.HandleListEmployees, "employees"))
	mux.HandleFunc("/employees/", MetricsMiddleware(s.employeesHandler.HandleGetEmployee, "employee"))
}

// assessmentResponse mirrors the OpenAPI schema for POST /predict.
type assessmentResponse struct {
	EmployeeID string `json:"employee_id,omitempty"`
	model.RiskAssessment
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
