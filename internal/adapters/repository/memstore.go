package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dspboard/driverrank/internal/domain/model"
	"github.com/dspboard/driverrank/pkg/metrics"
)

// snapshot is an immutable view of one cohort's ranking with O(1) driver
// lookups. It is built before the store lock is taken.
type snapshot struct {
	result     model.Result
	rankedAt   time.Time
	ranked     map[string]int
	ineligible map[string]int
}

func newSnapshot(res model.Result, at time.Time) *snapshot {
	s := &snapshot{
		result:     res,
		rankedAt:   at,
		ranked:     make(map[string]int, len(res.Ranked)),
		ineligible: make(map[string]int, len(res.Ineligible)),
	}
	for i, r := range res.Ranked {
		s.ranked[r.DriverID] = i
	}
	for i, r := range res.Ineligible {
		if _, ok := s.ineligible[r.DriverID]; !ok && r.DriverID != "" {
			s.ineligible[r.DriverID] = i
		}
	}
	return s
}

func (s *snapshot) summary() CohortSummary {
	return CohortSummary{
		Cohort:     s.result.Cohort,
		RunID:      s.result.RunID,
		Ranked:     len(s.result.Ranked),
		Ineligible: len(s.result.Ineligible),
		RankedAt:   s.rankedAt,
	}
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu      sync.RWMutex
	cohorts map[model.CohortKey]*snapshot
	now     func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		cohorts: make(map[model.CohortKey]*snapshot),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Put(_ context.Context, res model.Result) error {
	if err := res.Cohort.Validate(); err != nil {
		return err
	}
	snap := newSnapshot(res, s.now().UTC())

	s.mu.Lock()
	s.cohorts[res.Cohort] = snap
	n := len(s.cohorts)
	s.mu.Unlock()

	metrics.UpdateCohortsStored(n)
	return nil
}

func (s *MemoryStore) snapshot(key model.CohortKey) (*snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.cohorts[key]
	if !ok {
		return nil, fmt.Errorf("cohort %s: %w", key, ErrNotFound)
	}
	return snap, nil
}

func (s *MemoryStore) Get(_ context.Context, key model.CohortKey) (model.Result, error) {
	snap, err := s.snapshot(key)
	if err != nil {
		return model.Result{}, err
	}
	return snap.result, nil
}

func (s *MemoryStore) TopN(_ context.Context, key model.CohortKey, n int) (model.Result, error) {
	if n < 0 {
		return model.Result{}, fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}
	snap, err := s.snapshot(key)
	if err != nil {
		return model.Result{}, err
	}
	res := snap.result
	if n == 0 || n > len(res.Ranked) {
		n = len(res.Ranked)
	}
	res.Ranked = slices.Clone(res.Ranked[:n])
	return res, nil
}

func (s *MemoryStore) Driver(_ context.Context, key model.CohortKey, driverID string) (model.RankedDriver, error) {
	snap, err := s.snapshot(key)
	if err != nil {
		return model.RankedDriver{}, err
	}
	if i, ok := snap.ranked[driverID]; ok {
		return snap.result.Ranked[i], nil
	}
	if i, ok := snap.ineligible[driverID]; ok {
		return model.RankedDriver{}, &IneligibleError{Entry: snap.result.Ineligible[i]}
	}
	return model.RankedDriver{}, fmt.Errorf("driver %s in cohort %s: %w", driverID, key, ErrNotFound)
}

func (s *MemoryStore) Cohorts(_ context.Context) []CohortSummary {
	s.mu.RLock()
	out := make([]CohortSummary, 0, len(s.cohorts))
	for _, snap := range s.cohorts {
		out = append(out, snap.summary())
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b CohortSummary) int {
		return cmp.Or(
			cmp.Compare(b.Cohort.Week, a.Cohort.Week),
			cmp.Compare(a.Cohort.DSP, b.Cohort.DSP),
			cmp.Compare(a.Cohort.Station, b.Cohort.Station),
		)
	})
	return out
}

func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cohorts)
}
