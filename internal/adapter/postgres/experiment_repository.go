package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"videoab/internal/core/domain"
	"videoab/internal/core/port"
)

// ExperimentRepository implements port.ExperimentRepository using pgxpool
// for PostgreSQL. Writes use a version column for optimistic locking.
type ExperimentRepository struct {
	pool *pgxpool.Pool
}

// NewExperimentRepository returns a new repository instance.
func NewExperimentRepository(pool *pgxpool.Pool) *ExperimentRepository {
	return &ExperimentRepository{pool: pool}
}

var _ port.ExperimentRepository = (*ExperimentRepository)(nil)

// validID reports whether id can address a row. Ids are uuid columns, so
// anything else names no experiment and must not reach the database.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func notFound(id string) error {
	return &domain.NotFoundError{Entity: "experiment", ID: id}
}

const experimentColumns = `id::text, name, product_name, target_population, start_time, end_time,
    status, total_gain, version, created_at, updated_at`

// CreateExperiment inserts the experiment, its variants and the initial
// transition fact in one transaction.
func (r *ExperimentRepository) CreateExperiment(ctx context.Context, exp *domain.Experiment) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	_, err = tx.Exec(ctx, `INSERT INTO experiments
    (id, name, product_name, target_population, start_time, end_time, status, total_gain, version, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		exp.ID, exp.Name, exp.ProductName, exp.TargetPopulation, exp.StartTime, exp.EndTime,
		string(exp.Status), exp.TotalGain, exp.Version, exp.CreatedAt, exp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert experiment: %w", err)
	}
	if err = insertVariants(ctx, tx, exp.Variants); err != nil {
		return err
	}
	err = insertTransition(ctx, tx, domain.TransitionFact{ExperimentID: exp.ID, To: exp.Status, At: exp.CreatedAt})
	return err
}

// GetExperiment returns the experiment with its variants, or nil.
func (r *ExperimentRepository) GetExperiment(ctx context.Context, id string) (*domain.Experiment, error) {
	if !validID(id) {
		return nil, nil
	}
	row := r.pool.QueryRow(ctx, `SELECT `+experimentColumns+` FROM experiments WHERE id = $1`, id)
	exp, err := scanExperiment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	variants, err := r.variants(ctx, []string{exp.ID})
	if err != nil {
		return nil, err
	}
	exp.Variants = variants[exp.ID]
	return &exp, nil
}

// ListExperiments returns experiments newest first with their variants.
func (r *ExperimentRepository) ListExperiments(ctx context.Context, filter port.ListFilter) ([]domain.Experiment, error) {
	var statuses []string
	for _, s := range filter.StoredStatuses {
		statuses = append(statuses, string(s))
	}
	var limit *int
	if filter.Limit > 0 {
		limit = &filter.Limit
	}
	rows, err := r.pool.Query(ctx, `SELECT `+experimentColumns+`
FROM experiments
WHERE $1::text[] IS NULL OR status = ANY($1)
ORDER BY created_at DESC, id
LIMIT $2`, statuses, limit)
	if err != nil {
		return nil, err
	}
	exps, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Experiment, error) {
		return scanExperiment(row)
	})
	if err != nil {
		return nil, err
	}
	if len(exps) == 0 {
		return exps, nil
	}

	ids := make([]string, len(exps))
	for i := range exps {
		ids[i] = exps[i].ID
	}
	variants, err := r.variants(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range exps {
		exps[i].Variants = variants[exps[i].ID]
	}
	return exps, nil
}

// UpdateExperiment rewrites the configuration and replaces the variants.
func (r *ExperimentRepository) UpdateExperiment(ctx context.Context, exp *domain.Experiment, expectedVersion int64) (err error) {
	if !validID(exp.ID) {
		return notFound(exp.ID)
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	var version int64
	err = tx.QueryRow(ctx, `UPDATE experiments
SET name = $3, product_name = $4, target_population = $5, start_time = $6, end_time = $7,
    updated_at = $8, version = version + 1
WHERE id = $1 AND version = $2
RETURNING version`,
		exp.ID, expectedVersion, exp.Name, exp.ProductName, exp.TargetPopulation,
		exp.StartTime, exp.EndTime, exp.UpdatedAt).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		err = r.missOrConflict(ctx, tx, exp.ID)
		return err
	}
	if err != nil {
		return fmt.Errorf("update experiment: %w", err)
	}
	if _, err = tx.Exec(ctx, `DELETE FROM variants WHERE experiment_id = $1`, exp.ID); err != nil {
		return fmt.Errorf("delete variants: %w", err)
	}
	if err = insertVariants(ctx, tx, exp.Variants); err != nil {
		return err
	}
	exp.Version = version
	return nil
}

// UpdateStatus moves the stored status and records fact.
func (r *ExperimentRepository) UpdateStatus(ctx context.Context, fact domain.TransitionFact, expectedVersion int64) (err error) {
	if !validID(fact.ExperimentID) {
		return notFound(fact.ExperimentID)
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	tag, err := tx.Exec(ctx, `UPDATE experiments
SET status = $3, version = version + 1, updated_at = $4
WHERE id = $1 AND version = $2`,
		fact.ExperimentID, expectedVersion, string(fact.To), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		err = r.missOrConflict(ctx, tx, fact.ExperimentID)
		return err
	}
	err = insertTransition(ctx, tx, fact)
	return err
}

// SetTotalGain stores the latest lift without touching the version.
func (r *ExperimentRepository) SetTotalGain(ctx context.Context, id string, gain *float64) error {
	if !validID(id) {
		return notFound(id)
	}
	tag, err := r.pool.Exec(ctx, `UPDATE experiments SET total_gain = $2 WHERE id = $1`, id, gain)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return notFound(id)
	}
	return nil
}

// DeleteExperiment removes the experiment; variants, facts and events
// cascade.
func (r *ExperimentRepository) DeleteExperiment(ctx context.Context, id string, expectedVersion int64) error {
	if !validID(id) {
		return notFound(id)
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM experiments WHERE id = $1 AND version = $2`, id, expectedVersion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.missOrConflict(ctx, r.pool, id)
	}
	return nil
}

// ListTransitions returns the audit trail, oldest first.
func (r *ExperimentRepository) ListTransitions(ctx context.Context, id string) ([]domain.TransitionFact, error) {
	if !validID(id) {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT experiment_id::text, from_status, to_status, at
FROM experiment_transitions WHERE experiment_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TransitionFact, error) {
		var (
			f        domain.TransitionFact
			from, to string
		)
		err := row.Scan(&f.ExperimentID, &from, &to, &f.At)
		f.From, f.To, f.At = domain.Status(from), domain.Status(to), f.At.UTC()
		return f, err
	})
}

func (r *ExperimentRepository) variants(ctx context.Context, ids []string) (map[string][]domain.Variant, error) {
	rows, err := r.pool.Query(ctx, `SELECT id::text, experiment_id::text, position, name, video_ref, thumbnail_ref, description
FROM variants WHERE experiment_id = ANY($1::uuid[]) ORDER BY experiment_id, position`, ids)
	if err != nil {
		return nil, err
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Variant, error) {
		var v domain.Variant
		err := row.Scan(&v.ID, &v.ExperimentID, &v.Position, &v.Name, &v.VideoRef, &v.ThumbnailRef, &v.Description)
		return v, err
	})
	if err != nil {
		return nil, err
	}
	out := make(map[string][]domain.Variant, len(ids))
	for _, v := range list {
		out[v.ExperimentID] = append(out[v.ExperimentID], v)
	}
	return out, nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// missOrConflict explains why a versioned write matched no row.
func (r *ExperimentRepository) missOrConflict(ctx context.Context, q querier, id string) error {
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM experiments WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return notFound(id)
	}
	return port.ErrVersionConflict
}

func scanExperiment(row pgx.Row) (domain.Experiment, error) {
	var (
		e      domain.Experiment
		status string
	)
	err := row.Scan(&e.ID, &e.Name, &e.ProductName, &e.TargetPopulation, &e.StartTime, &e.EndTime,
		&status, &e.TotalGain, &e.Version, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return e, err
	}
	e.Status = domain.Status(status)
	e.StartTime = e.StartTime.UTC()
	e.EndTime = e.EndTime.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return e, nil
}

func insertVariants(ctx context.Context, tx pgx.Tx, variants []domain.Variant) error {
	if len(variants) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, v := range variants {
		batch.Queue(`INSERT INTO variants (id, experiment_id, position, name, video_ref, thumbnail_ref, description)
VALUES ($1,$2,$3,$4,$5,$6,$7)`, v.ID, v.ExperimentID, v.Position, v.Name, v.VideoRef, v.ThumbnailRef, v.Description)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert variants: %w", err)
	}
	return nil
}

func insertTransition(ctx context.Context, tx pgx.Tx, f domain.TransitionFact) error {
	_, err := tx.Exec(ctx, `INSERT INTO experiment_transitions (experiment_id, from_status, to_status, at)
VALUES ($1,$2,$3,$4)`, f.ExperimentID, string(f.From), string(f.To), f.At)
	if err != nil {
		return fmt.Errorf("insert transition: %w", err)
	}
	return nil
}
