// Package repository holds the canonical employee records and writes every
// mutation through the persistence layer.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/reten/internal/adapters/persistence"
	"github.com/okian/reten/internal/domain/model"
	"github.com/okian/reten/pkg/logger"
	"github.com/okian/reten/pkg/metrics"
)

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSeed replaces the built-in seed dataset used when persistence holds
// no employee entry.
func WithSeed(seed []model.Employee) Option {
	return func(s *Store) {
		s.seed = seed
	}
}

// WithClock injects the timestamp source. Tests fix it.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// YearGroup is one hire-year partition of the store, for display.
type YearGroup struct {
	Year      int              `json:"year"`
	Employees []model.Employee `json:"employees"`
}

// Store is the process-wide employee collection. A single mutex serializes
// writers; reads serve the latest committed state.
type Store struct {
	mu      sync.RWMutex
	records map[string]model.Employee

	kv     persistence.KV
	seed   []model.Employee
	now    func() time.Time
	logger logger.Logger
}

// New creates a store backed by kv. Call Load before first use.
func New(kv persistence.KV, opts ...Option) *Store {
	s := &Store{
		records: make(map[string]model.Employee),
		kv:      kv,
		seed:    seedEmployees(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("store")
	}
	return s
}

// Load seeds the store from persistence, or from the built-in dataset when
// the persistence entry is absent.
func (s *Store) Load(ctx context.Context) error {
	raw, ok, err := s.kv.Load(ctx, persistence.KeyEmployees)
	if err != nil {
		return fmt.Errorf("load employees: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !ok {
		for _, e := range s.seed {
			s.records[e.ID] = e
		}
		s.logger.Info(ctx, "store seeded with built-in dataset", logger.Int("records", len(s.records)))
		metrics.UpdateStoreRecords(len(s.records))
		return nil
	}

	var list []model.Employee
	if err := json.Unmarshal(raw, &list); err != nil {
		return fmt.Errorf("decode employees entry: %w", err)
	}
	for _, e := range list {
		s.records[e.ID] = e
	}
	s.logger.Info(ctx, "store loaded from persistence", logger.Int("records", len(s.records)))
	metrics.UpdateStoreRecords(len(s.records))
	return nil
}

// Upsert merges in into the stored record with the same id, creating it if
// new, and persists the whole collection write-through. The applied record
// is returned with its bumped version.
func (s *Store) Upsert(ctx context.Context, in model.Employee) (model.Employee, error) {
	if in.ID == "" {
		return model.Employee{}, ErrMissingID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.records[in.ID]
	var next model.Employee
	if exists {
		next = current.Merge(in)
	} else {
		next = in
	}
	next.ID = in.ID
	next.Version = current.Version + 1
	next.UpdatedAt = s.now()
	s.records[in.ID] = next

	if err := s.persistLocked(ctx); err != nil {
		// Roll back so memory and persistence stay in step.
		if exists {
			s.records[in.ID] = current
		} else {
			delete(s.records, in.ID)
		}
		return model.Employee{}, fmt.Errorf("persist employees: %w", err)
	}

	metrics.UpdateStoreRecords(len(s.records))
	metrics.RecordStoreWrite()
	return next, nil
}

// Get returns a read-only copy of the record with the given id.
func (s *Store) Get(_ context.Context, id string) (model.Employee, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.records[id]
	return e, ok
}

// All returns copies of every record, ordered by id.
func (s *Store) All(_ context.Context) []model.Employee {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked()
}

// Count returns the number of records held.
func (s *Store) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// ListGroupedByHireYear returns the records partitioned by hire year,
// years descending, records within a year ordered by id. The grouping is
// derived on every call and never persisted.
func (s *Store) ListGroupedByHireYear(_ context.Context) []YearGroup {
	s.mu.RLock()
	byYear := make(map[int][]model.Employee)
	for _, e := range s.records {
		byYear[e.HireYear] = append(byYear[e.HireYear], e)
	}
	s.mu.RUnlock()

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	groups := make([]YearGroup, 0, len(years))
	for _, y := range years {
		emps := byYear[y]
		sort.Slice(emps, func(i, j int) bool { return emps[i].ID < emps[j].ID })
		groups = append(groups, YearGroup{Year: y, Employees: emps})
	}
	return groups
}

// AtRisk returns records whose latest score is at or above threshold,
// ordered by score descending then id.
func (s *Store) AtRisk(_ context.Context, threshold int) []model.Employee {
	s.mu.RLock()
	var out []model.Employee
	for _, e := range s.records {
		if e.Assessment != nil && e.Assessment.Score >= threshold {
			out = append(out, e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Assessment.Score != out[j].Assessment.Score {
			return out[i].Assessment.Score > out[j].Assessment.Score
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) sortedLocked() []model.Employee {
	out := make([]model.Employee, 0, len(s.records))
	for _, e := range s.records {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) persistLocked(ctx context.Context) error {
	raw, err := json.Marshal(s.sortedLocked())
	if err != nil {
		return fmt.Errorf("encode employees: %w", err)
	}
	if err := s.kv.Store(ctx, persistence.KeyEmployees, raw); err != nil {
		return fmt.Errorf("write employees entry: %w", err)
	}
	return nil
}
