package port

import (
	"context"
	"time"

	"videoab/internal/core/domain"
)

// ExperimentUseCase is the experiment state machine and variant registry.
// This interface represents the primary port into the lifecycle side of
// the domain. Every returned experiment carries its effective status.
type ExperimentUseCase interface {
	// Create validates cfg and stores a new draft experiment. A
	// *domain.ValidationError lists every invalid field.
	Create(ctx context.Context, cfg domain.ExperimentConfig) (*domain.Experiment, error)

	// Get returns an experiment or *domain.NotFoundError.
	Get(ctx context.Context, id string) (*domain.Experiment, error)

	// List returns experiments newest first, optionally restricted to an
	// effective status.
	List(ctx context.Context, req ListExperimentsReq) ([]domain.Experiment, error)

	// Update replaces the configuration of an editable experiment. Editing
	// outside draft (or scheduled, under the relaxed policy) fails with
	// *domain.IllegalStateError.
	Update(ctx context.Context, id string, cfg domain.ExperimentConfig) (*domain.Experiment, error)

	// AttachVariants replaces the variant set of a draft experiment and
	// returns the stored variants with their ids.
	AttachVariants(ctx context.Context, id string, specs []domain.VariantSpec) ([]domain.Variant, error)

	// Activate moves a draft to scheduled (or straight to running when
	// its window has begun) and a scheduled experiment to running once its
	// start time has passed.
	Activate(ctx context.Context, id string) (*domain.Experiment, error)

	// Delete removes a draft experiment.
	Delete(ctx context.Context, id string) error

	// Transitions returns the audit trail of an experiment.
	Transitions(ctx context.Context, id string) ([]domain.TransitionFact, error)
}

// EventUseCase is the engagement ingestion pipeline.
type EventUseCase interface {
	// Record validates and appends one event. Resubmitting an event with
	// the same ClientEventID is acknowledged without writing it again.
	Record(ctx context.Context, req RecordEventReq) (*RecordAck, error)

	// RecordBatch records every request independently and returns one
	// result per request in the same order.
	RecordBatch(ctx context.Context, experimentID string, reqs []RecordEventReq) ([]BatchResult, error)
}

// AnalyticsUseCase serves the read side: bucketed series, the
// deterministic verdict and the prose analysis.
type AnalyticsUseCase interface {
	Query(ctx context.Context, experimentID string, q domain.RangeQuery) (*domain.Series, error)
	Recommend(ctx context.Context, experimentID string) (*domain.Verdict, error)
	Analyze(ctx context.Context, experimentID string) (*domain.AnalysisResult, error)
}

// UploadUseCase hands out upload slots for variant media.
type UploadUseCase interface {
	RequestUpload(ctx context.Context, req domain.UploadRequest) (*domain.UploadGrant, error)
}

// ListExperimentsReq filters List. A nil Status lists everything.
type ListExperimentsReq struct {
	Status *domain.Status
	Limit  int
}

// RecordEventReq is the input of the ingestion pipeline. A zero Timestamp
// means the time the event was received.
type RecordEventReq struct {
	ExperimentID  string
	VariantID     string
	Kind          domain.EventKind
	Timestamp     time.Time
	ClientEventID string
}

// RecordAck acknowledges a recorded event. Duplicate is set when the
// client event id had already been recorded and nothing was written.
type RecordAck struct {
	EventID    string
	Duplicate  bool
	ReceivedAt time.Time
}

// BatchResult is the outcome of one request of a batch. Exactly one of
// Ack and Err is set.
type BatchResult struct {
	Ack *RecordAck
	Err error
}
