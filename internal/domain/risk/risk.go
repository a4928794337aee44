// Package risk classifies attrition scores and provides the deterministic
// heuristic estimator used when the remote prediction service is down.
package risk

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/reten/internal/domain/model"
)

// Classification thresholds. Boundaries are inclusive: 70 is HIGH, 40 is
// MEDIUM, applied uniformly on every code path.
const (
	highThreshold   = 70
	mediumThreshold = 40
)

// Heuristic scoring constants.
const (
	baseScore = 50

	shortTenureYears   = 2.0
	longTenureYears    = 5.0
	shortTenureBump    = 20
	longTenureRelief   = -15
	lowPerformance     = 3.0
	highPerformance    = 4.0
	lowPerformanceBump = 15
	highPerfRelief     = -20
	lowCompensation    = 45000.0
	lowCompBump        = 10

	jitterSpan = 10 // perturbation drawn from [-jitterSpan, +jitterSpan]

	defaultTenure       = 1.0
	defaultPerformance  = 3.0
	defaultCompensation = 50000.0
)

// Classify maps a score in [0,100] to a risk level. Pure and total; scores
// outside the range are clamped first.
func Classify(score int) model.RiskLevel {
	switch {
	case score >= highThreshold:
		return model.LevelHigh
	case score >= mediumThreshold:
		return model.LevelMedium
	default:
		return model.LevelLow
	}
}

// Option applies a configuration option to the Estimator.
type Option func(*Estimator)

// WithRand injects the randomness source used for score jitter. Tests fix
// this to make estimates reproducible.
func WithRand(r *rand.Rand) Option {
	return func(e *Estimator) {
		if r != nil {
			e.rng = r
		}
	}
}

// WithSeed seeds the jitter source deterministically.
func WithSeed(seed int64) Option {
	return func(e *Estimator) {
		e.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // jitter, not crypto
	}
}

// Estimator derives a risk score from a profile without any network access.
// It never fails: missing fields are defaulted and the result is clamped
// to [0,100].
type Estimator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewEstimator creates an estimator with configuration options.
func NewEstimator(opts ...Option) *Estimator {
	e := &Estimator{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // jitter, not crypto
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate computes a heuristic attrition score in [0,100] for p.
// Repeated estimates for the same profile differ by the bounded jitter.
func (e *Estimator) Estimate(p model.Profile) int {
	tenure := p.TenureYears
	if tenure == 0 {
		tenure = defaultTenure
	}
	perf := p.PerformanceRating
	if perf == 0 {
		perf = defaultPerformance
	}
	comp := p.Compensation
	if comp == 0 {
		comp = defaultCompensation
	}

	// Defensive clamps; validation upstream should already hold these.
	tenure = math.Max(0, tenure)
	perf = math.Max(0, math.Min(model.MaxPerformanceRating, perf))
	comp = math.Max(0, comp)

	score := float64(baseScore)
	if tenure < shortTenureYears {
		score += shortTenureBump
	}
	if tenure > longTenureYears {
		score += longTenureRelief
	}
	if perf < lowPerformance {
		score += lowPerformanceBump
	}
	if perf >= highPerformance {
		score += highPerfRelief
	}
	if comp < lowCompensation {
		score += lowCompBump
	}

	e.mu.Lock()
	jitter := e.rng.Float64()*2*jitterSpan - jitterSpan
	e.mu.Unlock()

	score = math.Max(0, math.Min(model.MaxRiskScore, score+jitter))
	return int(math.Round(score))
}
