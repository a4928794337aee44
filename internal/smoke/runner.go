package smoke

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/okian/reten/internal/domain/model"
	"github.com/okian/reten/internal/domain/plan"
	"github.com/okian/reten/internal/domain/risk"
	"github.com/okian/reten/pkg/logger"
)

const planSectionCount = 5

// scenario is a canonical profile with its expected outcome.
type scenario struct {
	profile  model.Profile
	minScore int
	maxScore int
}

func scenarios() []scenario {
	return []scenario{
		{
			// Short tenure, weak rating, low pay. Every adjustment pushes up.
			profile: model.Profile{
				ID: "smoke-high", Name: "Smoke High", Department: "Sales",
				TenureYears: 1, PerformanceRating: 2.5, Compensation: 40000,
			},
			minScore: 85, maxScore: 100,
		},
		{
			// Settled top performer on good pay. Every adjustment pushes down.
			profile: model.Profile{
				ID: "smoke-low", Name: "Smoke Low", Department: "Engineering",
				TenureYears: 6, PerformanceRating: 4.5, Compensation: 90000,
			},
			minScore: 0, maxScore: 35,
		},
	}
}

type assessmentResponse struct {
	EmployeeID    string `json:"employee_id"`
	RiskScore     int    `json:"risk_score"`
	RiskLevel     string `json:"risk_level"`
	RetentionPlan string `json:"retention_plan"`
	Source        string `json:"source"`
}

// Run executes the complete smoke exercise against a running engine.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()

	log.Info(ctx, "starting reten smoke run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("profiles", config.NumProfiles),
		logger.String("timeout", config.Timeout.String()))

	client := newHTTPClient(config.Timeout)

	if err := checkServiceHealth(ctx, client, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	if err := openSession(ctx, client, config); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := runScenarios(ctx, client, config, stats); err != nil {
		return fmt.Errorf("canonical scenarios failed: %w", err)
	}

	if err := submitProfiles(ctx, client, config, stats); err != nil {
		return fmt.Errorf("profile submission failed: %w", err)
	}

	if err := verifyReadSurface(ctx, client, config, stats); err != nil {
		return fmt.Errorf("read surface verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	log.Info(ctx, "smoke run completed",
		logger.Int("submitted", stats.Submitted),
		logger.Int("succeeded", stats.Succeeded),
		logger.Int("failed", stats.Failed),
		logger.Int("highRisk", stats.HighRisk),
		logger.Int("withPlan", stats.WithPlan),
		logger.String("duration", stats.Duration.String()))
	return nil
}

func checkServiceHealth(ctx context.Context, client *httpClient, config *Config) error {
	var health map[string]string
	if err := client.getJSON(ctx, config.BaseURL+"/healthz", &health); err != nil {
		return err
	}
	if health["status"] != "ok" {
		return fmt.Errorf("unexpected health status %q", health["status"])
	}
	return nil
}

func openSession(ctx context.Context, client *httpClient, config *Config) error {
	body := map[string]string{"username": config.Username, "password": config.Password}
	return client.postJSON(ctx, config.BaseURL+"/login", body, nil)
}

// runScenarios submits the canonical profiles and pins their outcomes.
func runScenarios(ctx context.Context, client *httpClient, config *Config, stats *Stats) error {
	for _, sc := range scenarios() {
		var resp assessmentResponse
		stats.Submitted++
		if err := client.postJSON(ctx, config.BaseURL+"/predict", sc.profile, &resp); err != nil {
			stats.Failed++
			return err
		}
		if err := checkAssessment(resp, sc.minScore, sc.maxScore); err != nil {
			stats.Failed++
			return fmt.Errorf("profile %s: %w", sc.profile.ID, err)
		}
		stats.Succeeded++
		tallyAssessment(stats, resp)
		if config.Verbose {
			logger.Get().Info(ctx, "scenario assessed",
				logger.String("id", sc.profile.ID),
				logger.Int("score", resp.RiskScore),
				logger.String("level", resp.RiskLevel))
		}
	}
	return nil
}

// submitProfiles generates synthetic profiles and checks the invariants that
// hold regardless of which path scored them.
func submitProfiles(ctx context.Context, client *httpClient, config *Config, stats *Stats) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := 0; i < config.NumProfiles; i++ {
		profile := model.Profile{
			ID:                "smoke-" + uuid.NewString(),
			Name:              fmt.Sprintf("Synthetic %d", i),
			Department:        []string{"Sales", "Engineering", "Support"}[rng.Intn(3)],
			HireYear:          2018 + rng.Intn(8),
			TenureYears:       float64(rng.Intn(10)),
			PerformanceRating: 1 + rng.Float64()*4,
			Compensation:      35000 + rng.Float64()*70000,
		}

		var resp assessmentResponse
		stats.Submitted++
		if err := client.postJSON(ctx, config.BaseURL+"/predict", profile, &resp); err != nil {
			stats.Failed++
			return err
		}
		if err := checkAssessment(resp, 0, model.MaxRiskScore); err != nil {
			stats.Failed++
			return fmt.Errorf("profile %s: %w", profile.ID, err)
		}
		stats.Succeeded++
		tallyAssessment(stats, resp)
	}
	return nil
}

// checkAssessment enforces the engine's output invariants.
func checkAssessment(resp assessmentResponse, minScore, maxScore int) error {
	if resp.RiskScore < minScore || resp.RiskScore > maxScore {
		return fmt.Errorf("score %d outside [%d,%d]", resp.RiskScore, minScore, maxScore)
	}
	level, err := model.ParseRiskLevel(resp.RiskLevel)
	if err != nil {
		return err
	}
	if got := risk.Classify(resp.RiskScore); got != level {
		return fmt.Errorf("level %s disagrees with score %d (want %s)", level, resp.RiskScore, got)
	}
	if resp.RiskScore >= plan.Threshold && resp.RetentionPlan == "" {
		return fmt.Errorf("score %d warrants a plan but none came back", resp.RiskScore)
	}
	if resp.RetentionPlan != "" {
		if n := len(plan.Headings(resp.RetentionPlan)); n != planSectionCount {
			return fmt.Errorf("plan has %d sections, want %d", n, planSectionCount)
		}
	}
	return nil
}

func tallyAssessment(stats *Stats, resp assessmentResponse) {
	if resp.RiskLevel == string(model.LevelHigh) {
		stats.HighRisk++
	}
	if resp.RetentionPlan != "" {
		stats.WithPlan++
	}
}

// verifyReadSurface checks that submitted profiles show up in the read APIs.
func verifyReadSurface(ctx context.Context, client *httpClient, config *Config, stats *Stats) error {
	var groups []struct {
		Year      int `json:"year"`
		Employees []struct {
			ID string `json:"id"`
		} `json:"employees"`
	}
	if err := client.getJSON(ctx, config.BaseURL+"/employees", &groups); err != nil {
		return err
	}
	total := 0
	for i, g := range groups {
		if i > 0 && groups[i-1].Year < g.Year {
			return fmt.Errorf("year groups out of order: %d before %d", groups[i-1].Year, g.Year)
		}
		total += len(g.Employees)
	}
	if total == 0 {
		return fmt.Errorf("no employees listed after %d submissions", stats.Submitted)
	}

	var plans []struct {
		RiskScore int `json:"risk_score"`
	}
	if err := client.getJSON(ctx, config.BaseURL+"/retention-plans", &plans); err != nil {
		return err
	}
	for i := 1; i < len(plans); i++ {
		if plans[i-1].RiskScore < plans[i].RiskScore {
			return fmt.Errorf("plans out of order at index %d", i)
		}
	}
	return nil
}
