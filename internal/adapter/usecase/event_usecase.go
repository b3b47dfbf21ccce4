package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"videoab/internal/core/domain"
	"videoab/internal/core/port"
)

const maxClientEventIDLen = 128

// EventUseCase implements port.EventUseCase. It never takes the experiment
// lock: acceptance is decided from a snapshot of the experiment and the
// append itself is atomic in the event repository.
type EventUseCase struct {
	experiments port.ExperimentRepository
	events      port.EventRepository
	policy      Policy
	deps
}

// NewEventUseCase wires the ingestion pipeline.
func NewEventUseCase(experiments port.ExperimentRepository, events port.EventRepository, policy Policy, opts ...Option) *EventUseCase {
	return &EventUseCase{
		experiments: experiments,
		events:      events,
		policy:      policy,
		deps:        newDeps(opts),
	}
}

var _ port.EventUseCase = (*EventUseCase)(nil)

// Record validates req and appends it to the event log.
func (u *EventUseCase) Record(ctx context.Context, req port.RecordEventReq) (*port.RecordAck, error) {
	ack, err := u.record(ctx, req)
	u.observe(req.Kind, ack, err)
	return ack, err
}

// RecordBatch applies Record to every request of one experiment. A
// failing request does not affect the others. The returned error is only
// set when the batch as a whole is rejected.
func (u *EventUseCase) RecordBatch(ctx context.Context, experimentID string, reqs []port.RecordEventReq) ([]port.BatchResult, error) {
	verr := &domain.ValidationError{}
	switch {
	case len(reqs) == 0:
		verr.Add("events", "at least one event is required")
	case len(reqs) > u.policy.MaxBatch:
		verr.Add("events", "at most %d events are allowed per batch", u.policy.MaxBatch)
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	exp, err := u.loadExperiment(ctx, experimentID)
	if err != nil {
		return nil, err
	}

	out := make([]port.BatchResult, len(reqs))
	for i, req := range reqs {
		if req.ExperimentID == "" {
			req.ExperimentID = experimentID
		}
		var ack *port.RecordAck
		if req.ExperimentID != experimentID {
			verr := &domain.ValidationError{}
			verr.Add("experimentId", "does not match the batch experiment")
			err = verr
		} else if err = validateRecord(req); err == nil {
			ack, err = u.recordFor(ctx, exp, req)
		}
		u.observe(req.Kind, ack, err)
		out[i] = port.BatchResult{Ack: ack, Err: err}
	}
	return out, nil
}

func (u *EventUseCase) record(ctx context.Context, req port.RecordEventReq) (*port.RecordAck, error) {
	if err := validateRecord(req); err != nil {
		return nil, err
	}
	exp, err := u.loadExperiment(ctx, req.ExperimentID)
	if err != nil {
		return nil, err
	}
	return u.recordFor(ctx, exp, req)
}

// recordFor accepts an event while the experiment runs and, for late
// arrivals, until the grace period after its end has elapsed. The event
// timestamp itself must always fall inside the experiment window. A
// timestamp at most one grace period ahead of the clock is stored as now.
func (u *EventUseCase) recordFor(ctx context.Context, exp *domain.Experiment, req port.RecordEventReq) (*port.RecordAck, error) {
	if _, ok := exp.Variant(req.VariantID); !ok {
		return nil, &domain.NotFoundError{Entity: "variant", ID: req.VariantID}
	}
	now := u.clock()
	status := exp.EffectiveStatus(now)
	switch {
	case status == domain.StatusRunning:
	case status == domain.StatusCompleted && !now.After(exp.EndTime.Add(u.policy.GracePeriod)):
	default:
		return nil, &domain.IllegalStateError{Op: "record event", Status: status}
	}

	ts := req.Timestamp
	if ts.IsZero() {
		ts = now
	}
	ts = ts.UTC()
	verr := &domain.ValidationError{}
	switch {
	case ts.After(now.Add(u.policy.GracePeriod)):
		verr.Add("timestamp", "must not be in the future")
	case ts.Before(exp.StartTime) || !ts.Before(exp.EndTime):
		verr.Add("timestamp", "must fall within the experiment window [%s, %s)",
			exp.StartTime.Format(time.RFC3339), exp.EndTime.Format(time.RFC3339))
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	// A client clock ahead of ours is skew; the event counts as received now.
	if ts.After(now) {
		ts = now
	}

	ev := &domain.EngagementEvent{
		ID:            uuid.NewString(),
		ExperimentID:  exp.ID,
		VariantID:     req.VariantID,
		Kind:          req.Kind,
		Timestamp:     ts,
		ClientEventID: req.ClientEventID,
		ReceivedAt:    now,
	}
	inserted, err := u.events.AppendEvent(ctx, ev)
	if err != nil {
		return nil, fmt.Errorf("append event: %w", err)
	}
	if !inserted {
		u.logger.DebugContext(ctx, "duplicate event", "experiment_id", exp.ID, "client_event_id", req.ClientEventID)
		return &port.RecordAck{Duplicate: true, ReceivedAt: now}, nil
	}
	return &port.RecordAck{EventID: ev.ID, ReceivedAt: now}, nil
}

func (u *EventUseCase) loadExperiment(ctx context.Context, id string) (*domain.Experiment, error) {
	exp, err := u.experiments.GetExperiment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get experiment: %w", err)
	}
	if exp == nil {
		return nil, &domain.NotFoundError{Entity: "experiment", ID: id}
	}
	return exp, nil
}

func (u *EventUseCase) observe(kind domain.EventKind, ack *port.RecordAck, err error) {
	label := string(kind)
	if !kind.Valid() {
		label = "invalid"
	}
	u.metrics.EventRecorded(label, outcome(ack, err))
}

func outcome(ack *port.RecordAck, err error) string {
	var (
		verr *domain.ValidationError
		serr *domain.IllegalStateError
		nerr *domain.NotFoundError
	)
	switch {
	case err == nil && ack.Duplicate:
		return "duplicate"
	case err == nil:
		return "accepted"
	case errors.As(err, &verr), errors.As(err, &nerr):
		return "invalid"
	case errors.As(err, &serr):
		return "rejected"
	default:
		return "error"
	}
}

func validateRecord(req port.RecordEventReq) error {
	verr := &domain.ValidationError{}
	if req.ExperimentID == "" {
		verr.Add("experimentId", "is required")
	}
	if req.VariantID == "" {
		verr.Add("variantId", "is required")
	}
	if !req.Kind.Valid() {
		verr.Add("kind", "must be view or conversion")
	}
	if len(req.ClientEventID) > maxClientEventIDLen {
		verr.Add("clientEventId", "must be at most %d characters", maxClientEventIDLen)
	}
	return verr.Err()
}
