package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/reten/internal/adapters/http/api"
	"github.com/okian/reten/internal/adapters/predictor"
	"github.com/okian/reten/internal/adapters/repository"
	service "github.com/okian/reten/internal/app"
	"github.com/okian/reten/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing
type mockDependencies struct {
	loginErr   error
	loggedOut  bool
	predictOut model.RiskAssessment
	predictErr error
	groups     []repository.YearGroup
	byID       map[string]model.Employee
	atRisk     []model.Employee
	accepted   int
	rescoreOK  bool
	rescoreErr error
}

func (m *mockDependencies) Login(_ context.Context, _, _ string) error { return m.loginErr }
func (m *mockDependencies) Logout(_ context.Context)                   { m.loggedOut = true }

func (m *mockDependencies) Predict(_ context.Context, _ model.Profile) (model.RiskAssessment, error) {
	return m.predictOut, m.predictErr
}

func (m *mockDependencies) Employees(_ context.Context) []repository.YearGroup { return m.groups }

func (m *mockDependencies) Employee(_ context.Context, id string) (model.Employee, bool) {
	e, ok := m.byID[id]
	return e, ok
}

func (m *mockDependencies) AtRisk(_ context.Context) []model.Employee { return m.atRisk }

func (m *mockDependencies) Rescore(_ context.Context) (int, bool, error) {
	return m.accepted, m.rescoreOK, m.rescoreErr
}

type mockStatsProvider struct {
	stats map[string]any
}

func (m *mockStatsProvider) GetStats() map[string]any { return m.stats }

func newMux(deps *mockDependencies) *http.ServeMux {
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]any{"started": true}})
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestAuthEndpoints(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("When logging in with valid credentials", func() {
			w := do(mux, "POST", "/login", `{"username":"hr","password":"pw"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("When the body is not JSON", func() {
			w := do(mux, "POST", "/login", `not-json`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a field is missing", func() {
			w := do(mux, "POST", "/login", `{"username":"hr"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When credentials are rejected upstream", func() {
			deps.loginErr = predictor.ErrInvalidCredentials
			w := do(mux, "POST", "/login", `{"username":"hr","password":"wrong"}`)
			So(w.Code, ShouldEqual, http.StatusUnauthorized)

			var resp map[string]string
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp["code"], ShouldEqual, "invalid_credentials")
		})

		Convey("When the auth service is unreachable", func() {
			deps.loginErr = predictor.ErrUnavailable
			w := do(mux, "POST", "/login", `{"username":"hr","password":"pw"}`)
			So(w.Code, ShouldEqual, http.StatusBadGateway)
		})

		Convey("When logging out", func() {
			w := do(mux, "POST", "/logout", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.loggedOut, ShouldBeTrue)
		})

		Convey("When using GET on /login", func() {
			w := do(mux, "GET", "/login", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestPredictEndpoint(t *testing.T) {
	profileJSON := `{"id":"emp-1","name":"Ana","tenure_years":1,"performance_rating":2.5,"compensation":40000}`

	Convey("Given a registered API server", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("When the assessment succeeds", func() {
			deps.predictOut = model.RiskAssessment{
				Score:       82,
				Level:       model.LevelHigh,
				Plan:        "### Strategic Overview\n\n- act",
				Source:      model.SourceRemote,
				GeneratedAt: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			}
			w := do(mux, "POST", "/predict", profileJSON)
			So(w.Code, ShouldEqual, http.StatusOK)

			var resp map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp["employee_id"], ShouldEqual, "emp-1")
			So(resp["risk_score"], ShouldEqual, 82)
			So(resp["risk_level"], ShouldEqual, "HIGH")
			So(resp["retention_plan"], ShouldNotBeEmpty)
		})

		Convey("When the profile fails validation", func() {
			deps.predictErr = service.ErrInvalidInput
			w := do(mux, "POST", "/predict", profileJSON)
			So(w.Code, ShouldEqual, http.StatusBadRequest)

			var resp map[string]string
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp["code"], ShouldEqual, "invalid_input")
		})

		Convey("When no session is present", func() {
			deps.predictErr = service.ErrUnauthenticated
			w := do(mux, "POST", "/predict", profileJSON)
			So(w.Code, ShouldEqual, http.StatusUnauthorized)

			var resp map[string]string
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp["code"], ShouldEqual, "unauthenticated")
		})

		Convey("When the session expired mid-flight", func() {
			deps.predictErr = service.ErrSessionExpired
			w := do(mux, "POST", "/predict", profileJSON)
			So(w.Code, ShouldEqual, http.StatusUnauthorized)

			var resp map[string]string
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp["code"], ShouldEqual, "session_expired")
		})

		Convey("When the body is not JSON", func() {
			w := do(mux, "POST", "/predict", `{{`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestEmployeeEndpoints(t *testing.T) {
	Convey("Given a server with stored employees", t, func() {
		deps := &mockDependencies{
			groups: []repository.YearGroup{
				{Year: 2024, Employees: []model.Employee{{Profile: model.Profile{ID: "emp-2", Name: "Bo", HireYear: 2024}}}},
				{Year: 2020, Employees: []model.Employee{{Profile: model.Profile{ID: "emp-1", Name: "Ana", HireYear: 2020}}}},
			},
			byID: map[string]model.Employee{
				"emp-1": {Profile: model.Profile{ID: "emp-1", Name: "Ana"}},
			},
		}
		mux := newMux(deps)

		Convey("When listing employees", func() {
			w := do(mux, "GET", "/employees", "")
			So(w.Code, ShouldEqual, http.StatusOK)

			var groups []repository.YearGroup
			So(json.Unmarshal(w.Body.Bytes(), &groups), ShouldBeNil)
			So(groups, ShouldHaveLength, 2)
			So(groups[0].Year, ShouldEqual, 2024)
		})

		Convey("When fetching one employee", func() {
			w := do(mux, "GET", "/employees/emp-1", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("When the employee does not exist", func() {
			w := do(mux, "GET", "/employees/ghost", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the path carries extra segments", func() {
			w := do(mux, "GET", "/employees/emp-1/extra", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestPlanAndRescoreEndpoints(t *testing.T) {
	Convey("Given a server with at-risk employees", t, func() {
		assessment := model.RiskAssessment{Score: 85, Level: model.LevelHigh, Plan: "### Strategic Overview\n\n- act"}
		deps := &mockDependencies{
			atRisk: []model.Employee{
				{Profile: model.Profile{ID: "emp-1", Name: "Ana"}, Assessment: &assessment},
				{Profile: model.Profile{ID: "emp-2", Name: "Bo"}},
			},
			accepted:  2,
			rescoreOK: true,
		}
		mux := newMux(deps)

		Convey("When listing retention plans", func() {
			w := do(mux, "GET", "/retention-plans", "")
			So(w.Code, ShouldEqual, http.StatusOK)

			var entries []map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &entries), ShouldBeNil)

			Convey("Then only assessed employees appear", func() {
				So(entries, ShouldHaveLength, 1)
				So(entries[0]["employee_id"], ShouldEqual, "emp-1")
				So(entries[0]["risk_score"], ShouldEqual, 85)
			})
		})

		Convey("When requesting a rescore", func() {
			w := do(mux, "POST", "/rescore", "")
			So(w.Code, ShouldEqual, http.StatusAccepted)

			var resp map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp["accepted"], ShouldEqual, 2)
		})

		Convey("When the rescore queue is full", func() {
			deps.rescoreOK = false
			w := do(mux, "POST", "/rescore", "")
			So(w.Code, ShouldEqual, http.StatusTooManyRequests)
		})

		Convey("When rescoring without a session", func() {
			deps.rescoreErr = service.ErrUnauthenticated
			w := do(mux, "POST", "/rescore", "")
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
		})
	})
}

func TestHealthAndStats(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newMux(&mockDependencies{})

		Convey("Then the health endpoint answers ok", func() {
			w := do(mux, "GET", "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "ok")
		})

		Convey("Then the stats endpoint serves the provider snapshot", func() {
			w := do(mux, "GET", "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "started")
		})

		Convey("Then the metrics endpoint serves the Prometheus registry", func() {
			w := do(mux, "GET", "/metrics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})
	})
}
