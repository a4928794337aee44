// Package service provides the prediction orchestrator that implements
// the dependencies required by the HTTP API.
//
// Predict makes exactly one attempt at the remote prediction path and
// degrades silently to the heuristic path on anything except an
// authorization failure. Only ErrUnauthenticated and ErrSessionExpired
// ever cross this boundary as errors.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/reten/internal/adapters/mq/queue"
	workerpool "github.com/okian/reten/internal/adapters/mq/worker"
	"github.com/okian/reten/internal/adapters/predictor"
	"github.com/okian/reten/internal/adapters/repository"
	"github.com/okian/reten/internal/domain/model"
	"github.com/okian/reten/internal/domain/plan"
	"github.com/okian/reten/internal/domain/risk"
	"github.com/okian/reten/internal/domain/session"
	"github.com/okian/reten/pkg/logger"
	"github.com/okian/reten/pkg/metrics"
)

// Predictor is the remote prediction dependency.
type Predictor interface {
	Predict(ctx context.Context, token string, p model.Profile) (predictor.Prediction, error)
}

// Planner is the remote generative plan dependency.
type Planner interface {
	Generate(ctx context.Context, p model.Profile, score int, level model.RiskLevel) (string, error)
}

// Service is the engine facade. All HTTP handlers and workers go through
// it; it owns the session guard, the store and the fallback machinery.
type Service struct {
	mu sync.Mutex

	guard     *session.Guard
	remote    Predictor
	planner   Planner
	store     *repository.Store
	estimator *risk.Estimator

	rescoreQueue *queue.InMemoryQueue
	workers      *workerpool.Pool

	workerCount int
	queueSize   int

	started bool
	logger  logger.Logger
	now     func() time.Time
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of rescore workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the rescore queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithEstimator injects the heuristic estimator. Tests pass a seeded one.
func WithEstimator(e *risk.Estimator) Option {
	return func(s *Service) {
		if e != nil {
			s.estimator = e
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock injects the timestamp source. Tests fix it.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Default service configuration.
const (
	defaultWorkerCount = 4
	defaultQueueSize   = 1024
)

// New constructs the service. guard, remote and store are required;
// planner may be nil, in which case remote-path plans always come from
// the fallback template.
func New(guard *session.Guard, remote Predictor, planner Planner, store *repository.Store, opts ...Option) *Service {
	s := &Service{
		guard:       guard,
		remote:      remote,
		planner:     planner,
		store:       store,
		workerCount: defaultWorkerCount,
		queueSize:   defaultQueueSize,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.estimator == nil {
		s.estimator = risk.NewEstimator()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("engine")
	}
	return s
}

// Start restores persisted state and launches the rescore workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if err := s.guard.Restore(ctx); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if err := s.store.Load(ctx); err != nil {
		return fmt.Errorf("load store: %w", err)
	}

	s.rescoreQueue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.workers = workerpool.NewPool(s.rescoreQueue, s,
		workerpool.WithCount(s.workerCount),
		workerpool.WithLogger(s.logger),
	)
	// Workers run on a detached context so an abandoned HTTP request
	// cannot cancel an in-flight rescore; completed assessments are
	// applied regardless.
	s.workers.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "retention engine started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("records", s.store.Count(ctx)),
	)
	return nil
}

// Stop shuts down the rescore pipeline.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	_ = s.rescoreQueue.Close()
	s.workers.Stop()
	s.started = false
	s.logger.Info(context.Background(), "retention engine stopped")
}

// Login performs the credential exchange through the session guard.
func (s *Service) Login(ctx context.Context, username, password string) error {
	if _, err := s.guard.Authorize(ctx, username, password); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return nil
}

// Logout transitions the session to ABSENT.
func (s *Service) Logout(ctx context.Context) {
	s.guard.Invalidate(ctx)
}

// IsAuthorized reports whether a session token is present.
func (s *Service) IsAuthorized() bool {
	return s.guard.IsAuthorized()
}

// Predict turns a profile into a complete risk assessment and merges it
// into the store. One remote attempt, then the deterministic fallback;
// only authentication problems surface as errors.
func (s *Service) Predict(ctx context.Context, p model.Profile) (model.RiskAssessment, error) {
	if err := p.Validate(); err != nil {
		metrics.RecordInvalidInput()
		return model.RiskAssessment{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if !s.guard.IsAuthorized() {
		return model.RiskAssessment{}, ErrUnauthenticated
	}

	pred, err := s.remote.Predict(ctx, s.guard.Token(), p)
	switch {
	case err == nil:
		return s.applyRemote(ctx, p, pred)
	case errors.Is(err, predictor.ErrSessionExpired):
		// Mandatory re-auth signal; the store stays untouched.
		s.guard.Invalidate(ctx)
		metrics.RecordSessionExpiry()
		s.logger.Warn(ctx, "remote rejected session token", logger.String("id", p.ID))
		return model.RiskAssessment{}, ErrSessionExpired
	default:
		// Transport trouble and malformed responses are absorbed here:
		// log, fall back, and keep the caller's experience uninterrupted.
		metrics.RecordFallback()
		metrics.RecordErrorByComponent("orchestrator", "remote_unavailable")
		s.logger.Warn(ctx, "remote prediction failed; using heuristic path",
			logger.String("id", p.ID),
			logger.Error(err),
		)
		return s.applyFallback(ctx, p)
	}
}

// applyRemote builds the assessment from a validated remote prediction.
func (s *Service) applyRemote(ctx context.Context, p model.Profile, pred predictor.Prediction) (model.RiskAssessment, error) {
	score := pred.Score
	// Classify locally so level and score can never disagree, whatever
	// label the service attached.
	level := risk.Classify(score)

	planText := pred.Plan
	planSource := model.SourceRemote
	if planText == "" && score >= plan.Threshold {
		planText, planSource = s.generatePlan(ctx, p, score, level)
	}

	assessment := model.RiskAssessment{
		Score:       score,
		Level:       level,
		Plan:        planText,
		Source:      model.SourceRemote,
		GeneratedAt: s.now(),
	}
	if planText != "" {
		metrics.RecordPlanGeneration(string(planSource))
	}
	metrics.RecordPrediction(string(model.SourceRemote))
	s.upsert(ctx, p, assessment)
	return assessment, nil
}

// generatePlan asks the remote planner and degrades to the fallback
// template when it cannot deliver.
func (s *Service) generatePlan(ctx context.Context, p model.Profile, score int, level model.RiskLevel) (string, model.AssessmentSource) {
	if s.planner != nil {
		text, err := s.planner.Generate(ctx, p, score, level)
		if err == nil {
			return text, model.SourceRemote
		}
		s.logger.Warn(ctx, "plan generation failed; using template",
			logger.String("id", p.ID),
			logger.Error(err),
		)
		metrics.RecordErrorByComponent("orchestrator", "plan_unavailable")
	}
	text, _ := plan.Synthesize(p, score, level)
	return text, model.SourceFallback
}

// applyFallback computes the offline assessment. It never fails.
func (s *Service) applyFallback(ctx context.Context, p model.Profile) (model.RiskAssessment, error) {
	score := s.estimator.Estimate(p)
	level := risk.Classify(score)
	planText, _ := plan.Synthesize(p, score, level)

	assessment := model.RiskAssessment{
		Score:       score,
		Level:       level,
		Plan:        planText,
		Source:      model.SourceFallback,
		GeneratedAt: s.now(),
	}
	if planText != "" {
		metrics.RecordPlanGeneration(string(model.SourceFallback))
	}
	metrics.RecordPrediction(string(model.SourceFallback))
	s.upsert(ctx, p, assessment)
	return assessment, nil
}

func (s *Service) upsert(ctx context.Context, p model.Profile, a model.RiskAssessment) {
	if p.ID == "" {
		// Records need stable identity; ad-hoc predictions without one
		// are returned to the caller but not stored.
		return
	}
	if _, err := s.store.Upsert(ctx, model.Employee{Profile: p, Assessment: &a}); err != nil {
		metrics.RecordErrorByComponent("orchestrator", "store_write")
		s.logger.Error(ctx, "storing assessment failed",
			logger.String("id", p.ID),
			logger.Error(err),
		)
	}
}

// Rescore enqueues every stored profile for background re-assessment.
// Returns how many profiles were accepted; false signals backpressure.
func (s *Service) Rescore(ctx context.Context) (int, bool, error) {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return 0, false, ErrNotStarted
	}
	if !s.guard.IsAuthorized() {
		return 0, false, ErrUnauthenticated
	}

	accepted := 0
	for _, e := range s.store.All(ctx) {
		if !s.rescoreQueue.Enqueue(ctx, e.Profile) {
			return accepted, false, nil
		}
		accepted++
	}
	return accepted, true, nil
}

// Employees returns the store partitioned by hire year, years descending.
func (s *Service) Employees(ctx context.Context) []repository.YearGroup {
	return s.store.ListGroupedByHireYear(ctx)
}

// Employee returns one record by id.
func (s *Service) Employee(ctx context.Context, id string) (model.Employee, bool) {
	return s.store.Get(ctx, id)
}

// AtRisk returns records whose score warrants a retention plan.
func (s *Service) AtRisk(ctx context.Context) []model.Employee {
	return s.store.AtRisk(ctx, plan.Threshold)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":       s.started,
		"authenticated": s.guard.IsAuthorized(),
		"workerCount":   s.workerCount,
		"queueSize":     s.queueSize,
		"records":       s.store.Count(ctx),
	}
	if s.started {
		stats["queueLength"] = s.rescoreQueue.Len(ctx)
	}
	return stats
}
