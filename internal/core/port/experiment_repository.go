package port

import (
	"context"
	"errors"

	"videoab/internal/core/domain"
)

// ErrVersionConflict is returned by repository writes whose expected
// version no longer matches the stored one.
var ErrVersionConflict = errors.New("experiment version conflict")

// ExperimentRepository defines the persistence layer for experiments and
// their variants. It is an outbound port in hexagonal architecture.
// Implementations must be concurrency-safe; every write is guarded by an
// optimistic version check so that check-then-set is atomic per experiment.
type ExperimentRepository interface {
	// CreateExperiment stores a new experiment together with its variants
	// and records the initial transition fact.
	CreateExperiment(ctx context.Context, exp *domain.Experiment) error
	// GetExperiment returns an experiment with its variants ordered by
	// position. It returns nil when the experiment does not exist.
	GetExperiment(ctx context.Context, id string) (*domain.Experiment, error)
	// ListExperiments returns experiments newest first.
	ListExperiments(ctx context.Context, filter ListFilter) ([]domain.Experiment, error)
	// UpdateExperiment replaces the configuration and variant set of exp if
	// its stored version equals expectedVersion. On success exp.Version is
	// advanced.
	UpdateExperiment(ctx context.Context, exp *domain.Experiment, expectedVersion int64) error
	// UpdateStatus moves the stored status and appends fact in one atomic
	// step, guarded by expectedVersion.
	UpdateStatus(ctx context.Context, fact domain.TransitionFact, expectedVersion int64) error
	// SetTotalGain stores the lift of the latest analysis. It does not
	// bump the version because it is derived data.
	SetTotalGain(ctx context.Context, id string, gain *float64) error
	// DeleteExperiment removes a draft experiment and everything it owns.
	DeleteExperiment(ctx context.Context, id string, expectedVersion int64) error
	// ListTransitions returns the audit facts of an experiment, oldest first.
	ListTransitions(ctx context.Context, id string) ([]domain.TransitionFact, error)
}

// ListFilter restricts ListExperiments by stored status. An empty slice
// means every status. Limit <= 0 means no limit.
type ListFilter struct {
	StoredStatuses []domain.Status
	Limit          int
}
