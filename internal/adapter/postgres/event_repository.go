package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"videoab/internal/core/domain"
	"videoab/internal/core/port"
)

// EventRepository implements port.EventRepository on an insert-only table.
// Deduplication relies on a partial unique index over
// (experiment_id, client_event_id).
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository returns a new repository instance.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

var _ port.EventRepository = (*EventRepository)(nil)

// AppendEvent inserts ev unless its client event id was already recorded.
func (r *EventRepository) AppendEvent(ctx context.Context, ev *domain.EngagementEvent) (bool, error) {
	var clientID *string
	if ev.ClientEventID != "" {
		clientID = &ev.ClientEventID
	}
	tag, err := r.pool.Exec(ctx, `INSERT INTO engagement_events
    (id, experiment_id, variant_id, kind, occurred_at, client_event_id, received_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (experiment_id, client_event_id) WHERE client_event_id IS NOT NULL DO NOTHING`,
		ev.ID, ev.ExperimentID, ev.VariantID, string(ev.Kind), ev.Timestamp, clientID, ev.ReceivedAt)
	if err != nil {
		return false, fmt.Errorf("insert event: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// CountEvents groups events with date_bin, which needs PostgreSQL 14 or
// later.
func (r *EventRepository) CountEvents(ctx context.Context, q port.CountQuery) ([]port.EventCount, error) {
	if q.Width <= 0 {
		return nil, fmt.Errorf("bucket width must be positive")
	}
	if !validID(q.ExperimentID) {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT date_bin(make_interval(secs => $4), occurred_at, $2::timestamptz) AS bucket,
       variant_id::text, kind, count(*)
FROM engagement_events
WHERE experiment_id = $1 AND occurred_at >= $2 AND occurred_at < $3
GROUP BY 1, 2, 3
ORDER BY 1, 2, 3`, q.ExperimentID, q.From, q.To, q.Width.Seconds())
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (port.EventCount, error) {
		var (
			c    port.EventCount
			kind string
		)
		err := row.Scan(&c.BucketStart, &c.VariantID, &kind, &c.Count)
		c.Kind = domain.EventKind(kind)
		c.BucketStart = c.BucketStart.UTC()
		return c, err
	})
}

// EventWatermark counts the stored events of an experiment.
func (r *EventRepository) EventWatermark(ctx context.Context, experimentID string) (int64, error) {
	if !validID(experimentID) {
		return 0, nil
	}
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM engagement_events WHERE experiment_id = $1`, experimentID).Scan(&n)
	return n, err
}
