// Package memory implements the repository ports in process memory. It is
// used by tests and by local runs with STORE_DRIVER=memory.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"videoab/internal/core/domain"
	"videoab/internal/core/port"
)

type experimentRecord struct {
	exp         domain.Experiment
	transitions []domain.TransitionFact
}

// ExperimentRepository implements port.ExperimentRepository.
type ExperimentRepository struct {
	mu   sync.RWMutex
	recs map[string]*experimentRecord
}

// NewExperimentRepository returns an empty repository.
func NewExperimentRepository() *ExperimentRepository {
	return &ExperimentRepository{recs: make(map[string]*experimentRecord)}
}

var _ port.ExperimentRepository = (*ExperimentRepository)(nil)

func (r *ExperimentRepository) CreateExperiment(_ context.Context, exp *domain.Experiment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.recs[exp.ID]; ok {
		return fmt.Errorf("experiment %s already exists", exp.ID)
	}
	r.recs[exp.ID] = &experimentRecord{
		exp: cloneExperiment(*exp),
		transitions: []domain.TransitionFact{{
			ExperimentID: exp.ID,
			To:           exp.Status,
			At:           exp.CreatedAt,
		}},
	}
	return nil
}

func (r *ExperimentRepository) GetExperiment(_ context.Context, id string) (*domain.Experiment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.recs[id]
	if !ok {
		return nil, nil
	}
	exp := cloneExperiment(rec.exp)
	return &exp, nil
}

func (r *ExperimentRepository) ListExperiments(_ context.Context, filter port.ListFilter) ([]domain.Experiment, error) {
	r.mu.RLock()
	out := make([]domain.Experiment, 0, len(r.recs))
	for _, rec := range r.recs {
		if len(filter.StoredStatuses) > 0 && !slices.Contains(filter.StoredStatuses, rec.exp.Status) {
			continue
		}
		out = append(out, cloneExperiment(rec.exp))
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b domain.Experiment) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *ExperimentRepository) UpdateExperiment(_ context.Context, exp *domain.Experiment, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, err := r.lockedRecord(exp.ID, expectedVersion)
	if err != nil {
		return err
	}
	next := cloneExperiment(*exp)
	next.Status = rec.exp.Status
	next.TotalGain = rec.exp.TotalGain
	next.CreatedAt = rec.exp.CreatedAt
	next.Version = expectedVersion + 1
	rec.exp = next
	exp.Version = next.Version
	return nil
}

func (r *ExperimentRepository) UpdateStatus(_ context.Context, fact domain.TransitionFact, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, err := r.lockedRecord(fact.ExperimentID, expectedVersion)
	if err != nil {
		return err
	}
	rec.exp.Status = fact.To
	rec.exp.Version++
	rec.exp.UpdatedAt = time.Now().UTC()
	rec.transitions = append(rec.transitions, fact)
	return nil
}

func (r *ExperimentRepository) SetTotalGain(_ context.Context, id string, gain *float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recs[id]
	if !ok {
		return &domain.NotFoundError{Entity: "experiment", ID: id}
	}
	rec.exp.TotalGain = cloneFloat(gain)
	return nil
}

func (r *ExperimentRepository) DeleteExperiment(_ context.Context, id string, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.lockedRecord(id, expectedVersion); err != nil {
		return err
	}
	delete(r.recs, id)
	return nil
}

func (r *ExperimentRepository) ListTransitions(_ context.Context, id string) ([]domain.TransitionFact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.recs[id]
	if !ok {
		return nil, nil
	}
	return slices.Clone(rec.transitions), nil
}

// lockedRecord must be called with r.mu held for writing.
func (r *ExperimentRepository) lockedRecord(id string, expectedVersion int64) (*experimentRecord, error) {
	rec, ok := r.recs[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "experiment", ID: id}
	}
	if rec.exp.Version != expectedVersion {
		return nil, port.ErrVersionConflict
	}
	return rec, nil
}

func cloneExperiment(e domain.Experiment) domain.Experiment {
	e.Variants = slices.Clone(e.Variants)
	e.TotalGain = cloneFloat(e.TotalGain)
	return e
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
