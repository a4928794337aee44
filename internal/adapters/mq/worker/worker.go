// Package worker drains the rescore queue through the prediction engine.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/reten/internal/adapters/mq/queue"
	"github.com/okian/reten/internal/domain/model"
	"github.com/okian/reten/pkg/logger"
	"github.com/okian/reten/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount  = 4
	poolShutdownTimeout = 30 * time.Second
)

// Assessor produces and applies a risk assessment for a profile. The
// orchestrator implements this; workers never talk to remotes directly.
type Assessor interface {
	Predict(ctx context.Context, p model.Profile) (model.RiskAssessment, error)
}

// Queue defines how workers receive profiles.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Profile
}

// Pool runs a fixed set of workers over the queue.
type Pool struct {
	queue    Queue
	assessor Assessor
	count    int

	wg     sync.WaitGroup
	cancel context.CancelFunc
	logger logger.Logger
}

// Option applies a configuration option to the Pool.
type Option func(*Pool)

// WithCount sets the number of workers.
func WithCount(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.count = n
		}
	}
}

// WithLogger sets a custom logger for the pool.
func WithLogger(l logger.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPool creates a worker pool draining q through a.
func NewPool(q Queue, a Assessor, opts ...Option) *Pool {
	p := &Pool{
		queue:    q,
		assessor: a,
		count:    defaultWorkerCount,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named("worker")
	}
	return p
}

// Start launches the workers. They run until the queue closes, Stop is
// called or ctx is canceled.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	metrics.UpdateWorkerCount(p.count)

	for i := 0; i < p.count; i++ {
		p.wg.Add(1)
		name := fmt.Sprintf("worker-%d", i)
		go func() {
			defer p.wg.Done()
			p.run(ctx, name)
		}()
	}
}

// Stop cancels the workers and waits for them to drain, bounded by
// poolShutdownTimeout.
func (p *Pool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(poolShutdownTimeout):
		p.logger.Warn(context.Background(), "worker pool shutdown timed out")
	}
	metrics.UpdateWorkerCount(0)
}

func (p *Pool) run(ctx context.Context, name string) {
	log := p.logger.Named(name)
	profiles := p.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case profile, ok := <-profiles:
			if !ok {
				return
			}
			p.process(ctx, log, profile)
		}
	}
}

func (p *Pool) process(ctx context.Context, log logger.Logger, profile model.Profile) {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	if _, err := p.assessor.Predict(ctx, profile); err != nil {
		// Session loss mid-run stops being recoverable here; log and move on.
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "predict_failed")
		log.Warn(ctx, "rescore failed for profile",
			logger.String("id", profile.ID),
			logger.Error(err),
		)
	}
}
