package port

import (
	"context"
	"time"

	"videoab/internal/core/domain"
)

// EventRepository is the append-only engagement event log. Appends never
// wait for readers and counting never locks out appends.
type EventRepository interface {
	// AppendEvent stores ev. When ev.ClientEventID is set and an event with
	// the same client id already exists for the experiment, nothing is
	// written and inserted is false.
	AppendEvent(ctx context.Context, ev *domain.EngagementEvent) (inserted bool, err error)
	// CountEvents groups the events of q.ExperimentID with timestamps in
	// [q.From, q.To) into buckets of q.Width anchored at q.From and counts
	// them per variant and kind. Buckets without events are omitted.
	CountEvents(ctx context.Context, q CountQuery) ([]EventCount, error)
	// EventWatermark returns the number of events stored for an
	// experiment. It only grows and is used to key cached analyses.
	EventWatermark(ctx context.Context, experimentID string) (int64, error)
}

// CountQuery selects the events counted by CountEvents.
type CountQuery struct {
	ExperimentID string
	From         time.Time
	To           time.Time
	Width        time.Duration
}

// EventCount is one (bucket, variant, kind) counter.
type EventCount struct {
	BucketStart time.Time
	VariantID   string
	Kind        domain.EventKind
	Count       int64
}
