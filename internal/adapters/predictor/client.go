// Package predictor is the HTTP client for the remote attrition prediction
// service, which also issues session tokens.
package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/okian/reten/internal/domain/model"
	"github.com/okian/reten/pkg/logger"
	"github.com/okian/reten/pkg/metrics"
)

// Default client configuration.
const (
	defaultTimeout = 10 * time.Second
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithTimeout bounds each remote call. A timeout is treated as a transport
// failure by callers.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Prediction is the normalized result of a remote prediction call.
// Score is always in [0,100] regardless of which probability form the
// service returned.
type Prediction struct {
	EmployeeID string
	Attrition  bool
	Score      int
	Label      string
	Plan       string
}

// Client talks to the prediction service.
type Client struct {
	base    string
	hc      *http.Client
	timeout time.Duration
	logger  logger.Logger
}

// New creates a client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base:    baseURL,
		hc:      http.DefaultClient,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("predictor")
	}
	return c
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	start := time.Now()
	defer func() { metrics.RecordRemoteCallLatency("auth", float64(time.Since(start).Milliseconds())) }()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return "", fmt.Errorf("encode login request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		metrics.RecordRemoteCallError("auth")
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", ErrInvalidCredentials
	case resp.StatusCode != http.StatusOK:
		metrics.RecordRemoteCallError("auth")
		return "", fmt.Errorf("%w: login returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		metrics.RecordRemoteCallError("auth")
		return "", fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if lr.Token == "" {
		return "", fmt.Errorf("%w: login response missing token", ErrInvalidResponse)
	}
	return lr.Token, nil
}

// predictRequest is the numeric feature vector the service scores.
type predictRequest struct {
	EmployeeID        string  `json:"employee_id,omitempty"`
	Age               int     `json:"age,omitempty"`
	JobLevel          int     `json:"job_level,omitempty"`
	MonthlyIncome     float64 `json:"monthly_income"`
	TenureYears       float64 `json:"tenure_years"`
	PerformanceRating float64 `json:"performance_rating"`
	Satisfaction      float64 `json:"satisfaction,omitempty"`
	Overtime          bool    `json:"overtime"`
	MaritalStatus     string  `json:"marital_status,omitempty"`
	BusinessTravel    string  `json:"business_travel,omitempty"`
}

// predictResponse mirrors the service's wire shape. Probability arrives
// either as a fraction in [0,1] or as a percentage in [0,100].
type predictResponse struct {
	EmployeeID        string   `json:"employee_id"`
	Attrition         int      `json:"attrition"`
	Probability       *float64 `json:"probability"`
	Risk              string   `json:"risk"`
	RetentionStrategy string   `json:"retention_strategy"`
}

// Predict submits the profile's feature vector under the given token.
// HTTP 401/403 maps to ErrSessionExpired; every other failure is
// ErrUnavailable or ErrInvalidResponse.
func (c *Client) Predict(ctx context.Context, token string, p model.Profile) (Prediction, error) {
	start := time.Now()
	defer func() { metrics.RecordRemoteCallLatency("predict", float64(time.Since(start).Milliseconds())) }()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(predictRequest{
		EmployeeID:        p.ID,
		Age:               p.Age,
		JobLevel:          p.JobLevel,
		MonthlyIncome:     p.Compensation,
		TenureYears:       p.TenureYears,
		PerformanceRating: p.PerformanceRating,
		Satisfaction:      p.Satisfaction,
		Overtime:          p.Overtime,
		MaritalStatus:     p.MaritalStatus,
		BusinessTravel:    p.BusinessTravel,
	})
	if err != nil {
		return Prediction{}, fmt.Errorf("encode predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/predict", bytes.NewReader(body))
	if err != nil {
		return Prediction{}, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.hc.Do(req)
	if err != nil {
		metrics.RecordRemoteCallError("predict")
		return Prediction{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Prediction{}, ErrSessionExpired
	case resp.StatusCode != http.StatusOK:
		metrics.RecordRemoteCallError("predict")
		return Prediction{}, fmt.Errorf("%w: predict returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var pr predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		metrics.RecordRemoteCallError("predict")
		return Prediction{}, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if pr.Probability == nil {
		return Prediction{}, fmt.Errorf("%w: predict response missing probability", ErrInvalidResponse)
	}

	score, err := normalizeScore(*pr.Probability)
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return Prediction{
		EmployeeID: pr.EmployeeID,
		Attrition:  pr.Attrition == 1,
		Score:      score,
		Label:      pr.Risk,
		Plan:       pr.RetentionStrategy,
	}, nil
}

// normalizeScore folds both observed probability forms into one internal
// [0,100] integer representation.
func normalizeScore(p float64) (int, error) {
	if p < 0 || p > 100 {
		return 0, fmt.Errorf("probability %v outside both accepted ranges", p)
	}
	if p <= 1 {
		p *= 100
	}
	return int(math.Round(p)), nil
}
