package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"videoab/internal/core/domain"
	"videoab/internal/core/port"
)

// ExperimentUseCase implements port.ExperimentUseCase. Every mutation of an
// experiment runs under that experiment's lock and is additionally guarded
// by the repository's version check, so concurrent requests against the
// same experiment observe a single order of transitions.
type ExperimentUseCase struct {
	repo   port.ExperimentRepository
	policy Policy
	locks  *keyedMutex
	deps
}

// NewExperimentUseCase wires the state machine to its repository.
func NewExperimentUseCase(repo port.ExperimentRepository, policy Policy, opts ...Option) *ExperimentUseCase {
	return &ExperimentUseCase{
		repo:   repo,
		policy: policy,
		locks:  newKeyedMutex(),
		deps:   newDeps(opts),
	}
}

var _ port.ExperimentUseCase = (*ExperimentUseCase)(nil)

// Create validates cfg and stores a new draft together with its variants.
func (u *ExperimentUseCase) Create(ctx context.Context, cfg domain.ExperimentConfig) (*domain.Experiment, error) {
	now := u.clock()
	if err := cfg.Validate(u.policy.Variants, now); err != nil {
		return nil, err
	}
	start, end := cfg.Window(now)
	exp := &domain.Experiment{
		ID:               uuid.NewString(),
		Name:             strings.TrimSpace(cfg.Name),
		ProductName:      strings.TrimSpace(cfg.ProductName),
		TargetPopulation: cfg.TargetPopulation,
		StartTime:        start,
		EndTime:          end,
		Status:           domain.StatusDraft,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	exp.Variants = buildVariants(exp.ID, cfg.Variants)
	if err := u.repo.CreateExperiment(ctx, exp); err != nil {
		return nil, fmt.Errorf("create experiment: %w", err)
	}
	u.metrics.Transition("", string(domain.StatusDraft))
	u.logger.InfoContext(ctx, "experiment created", "experiment_id", exp.ID, "variants", len(exp.Variants))
	return present(exp, now), nil
}

// Get returns the experiment with its effective status.
func (u *ExperimentUseCase) Get(ctx context.Context, id string) (*domain.Experiment, error) {
	exp, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return present(exp, u.clock()), nil
}

// List returns experiments newest first. Filtering happens on the
// effective status, so the stored statuses that can produce it are
// fetched and narrowed afterwards.
func (u *ExperimentUseCase) List(ctx context.Context, req port.ListExperimentsReq) ([]domain.Experiment, error) {
	filter := port.ListFilter{}
	if req.Status != nil {
		if !req.Status.Valid() {
			verr := &domain.ValidationError{}
			verr.Add("status", "must be one of draft, scheduled, running or completed")
			return nil, verr
		}
		filter.StoredStatuses = storedStatusesFor(*req.Status)
	} else {
		filter.Limit = req.Limit
	}
	exps, err := u.repo.ListExperiments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list experiments: %w", err)
	}
	now := u.clock()
	out := make([]domain.Experiment, 0, len(exps))
	for i := range exps {
		e := present(&exps[i], now)
		if req.Status != nil && e.Status != *req.Status {
			continue
		}
		out = append(out, *e)
		if req.Limit > 0 && len(out) == req.Limit {
			break
		}
	}
	return out, nil
}

// Update replaces the configuration of a draft experiment, or of a
// scheduled one when the policy allows it.
func (u *ExperimentUseCase) Update(ctx context.Context, id string, cfg domain.ExperimentConfig) (*domain.Experiment, error) {
	unlock := u.locks.Lock(id)
	defer unlock()

	exp, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	now := u.clock()
	status := exp.EffectiveStatus(now)
	if !u.editable(status) {
		return nil, &domain.IllegalStateError{Op: "update", Status: status}
	}
	if err := cfg.Validate(u.policy.Variants, now); err != nil {
		return nil, err
	}
	start, end := cfg.Window(now)
	exp.Name = strings.TrimSpace(cfg.Name)
	exp.ProductName = strings.TrimSpace(cfg.ProductName)
	exp.TargetPopulation = cfg.TargetPopulation
	exp.StartTime = start
	exp.EndTime = end
	exp.Variants = buildVariants(exp.ID, cfg.Variants)
	exp.UpdatedAt = now
	if err := u.save(ctx, exp, "update", status); err != nil {
		return nil, err
	}
	u.logger.InfoContext(ctx, "experiment updated", "experiment_id", exp.ID)
	return present(exp, now), nil
}

// AttachVariants replaces the whole variant set of a draft. Ids are
// assigned here and returned in position order.
func (u *ExperimentUseCase) AttachVariants(ctx context.Context, id string, specs []domain.VariantSpec) ([]domain.Variant, error) {
	unlock := u.locks.Lock(id)
	defer unlock()

	exp, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	now := u.clock()
	status := exp.EffectiveStatus(now)
	if status != domain.StatusDraft {
		return nil, &domain.IllegalStateError{Op: "attach variants", Status: status}
	}
	verr := &domain.ValidationError{}
	domain.ValidateVariants(specs, u.policy.Variants, verr)
	if err := verr.Err(); err != nil {
		return nil, err
	}
	exp.Variants = buildVariants(exp.ID, specs)
	exp.UpdatedAt = now
	if err := u.save(ctx, exp, "attach variants", status); err != nil {
		return nil, err
	}
	return exp.Variants, nil
}

// Activate implements the only manual transition. A draft whose window has
// not begun becomes scheduled; one whose window is open is scheduled and
// started at once. A stored scheduled experiment whose start has passed is
// persisted as running. Everything else is rejected.
func (u *ExperimentUseCase) Activate(ctx context.Context, id string) (*domain.Experiment, error) {
	unlock := u.locks.Lock(id)
	defer unlock()

	exp, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	now := u.clock()
	status := exp.EffectiveStatus(now)

	switch {
	case status == domain.StatusDraft:
		if !now.Before(exp.EndTime) {
			return nil, &domain.IllegalStateError{Op: "activate", Status: status, Reason: "the experiment window has already ended"}
		}
		if len(exp.Variants) < u.policy.Variants.Min {
			return nil, &domain.IllegalStateError{Op: "activate", Status: status, Reason: "not enough variants attached"}
		}
		if err := u.transition(ctx, exp, domain.StatusScheduled, now); err != nil {
			return nil, err
		}
		if !now.Before(exp.StartTime) {
			if err := u.transition(ctx, exp, domain.StatusRunning, now); err != nil {
				return nil, err
			}
		}
	case status == domain.StatusScheduled:
		return nil, &domain.IllegalStateError{
			Op:     "activate",
			Status: status,
			Reason: "start time " + exp.StartTime.Format(time.RFC3339) + " has not been reached",
		}
	case status == domain.StatusRunning && exp.Status == domain.StatusScheduled:
		if err := u.transition(ctx, exp, domain.StatusRunning, exp.StartTime); err != nil {
			return nil, err
		}
	default:
		return nil, &domain.IllegalStateError{Op: "activate", Status: status}
	}
	return present(exp, now), nil
}

// Delete removes a draft experiment.
func (u *ExperimentUseCase) Delete(ctx context.Context, id string) error {
	unlock := u.locks.Lock(id)
	defer unlock()

	exp, err := u.load(ctx, id)
	if err != nil {
		return err
	}
	status := exp.EffectiveStatus(u.clock())
	if status != domain.StatusDraft {
		return &domain.IllegalStateError{Op: "delete", Status: status}
	}
	if err := u.repo.DeleteExperiment(ctx, id, exp.Version); err != nil {
		return u.writeError(err, "delete", status)
	}
	u.logger.InfoContext(ctx, "experiment deleted", "experiment_id", id)
	return nil
}

// Transitions returns the audit trail, oldest first.
func (u *ExperimentUseCase) Transitions(ctx context.Context, id string) ([]domain.TransitionFact, error) {
	if _, err := u.load(ctx, id); err != nil {
		return nil, err
	}
	facts, err := u.repo.ListTransitions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list transitions: %w", err)
	}
	return facts, nil
}

func (u *ExperimentUseCase) load(ctx context.Context, id string) (*domain.Experiment, error) {
	exp, err := u.repo.GetExperiment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get experiment: %w", err)
	}
	if exp == nil {
		return nil, &domain.NotFoundError{Entity: "experiment", ID: id}
	}
	return exp, nil
}

func (u *ExperimentUseCase) editable(status domain.Status) bool {
	return status == domain.StatusDraft ||
		(u.policy.AllowScheduledEdits && status == domain.StatusScheduled)
}

func (u *ExperimentUseCase) save(ctx context.Context, exp *domain.Experiment, op string, status domain.Status) error {
	if err := u.repo.UpdateExperiment(ctx, exp, exp.Version); err != nil {
		return u.writeError(err, op, status)
	}
	return nil
}

// transition persists one step forward and the fact describing it.
func (u *ExperimentUseCase) transition(ctx context.Context, exp *domain.Experiment, to domain.Status, at time.Time) error {
	fact := domain.TransitionFact{ExperimentID: exp.ID, From: exp.Status, To: to, At: at}
	if err := u.repo.UpdateStatus(ctx, fact, exp.Version); err != nil {
		return u.writeError(err, "transition", exp.Status)
	}
	exp.Status = to
	exp.Version++
	u.metrics.Transition(string(fact.From), string(fact.To))
	u.logger.InfoContext(ctx, "experiment transitioned",
		"experiment_id", exp.ID, "from", fact.From, "to", fact.To, "at", fact.At)
	return nil
}

func (u *ExperimentUseCase) writeError(err error, op string, status domain.Status) error {
	if errors.Is(err, port.ErrVersionConflict) {
		return &domain.IllegalStateError{Op: op, Status: status, Reason: "the experiment was modified concurrently"}
	}
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		return nf
	}
	return fmt.Errorf("%s: %w", op, err)
}

func buildVariants(experimentID string, specs []domain.VariantSpec) []domain.Variant {
	out := make([]domain.Variant, len(specs))
	for i, s := range specs {
		out[i] = domain.Variant{
			ID:           uuid.NewString(),
			ExperimentID: experimentID,
			Position:     i,
			Name:         strings.TrimSpace(s.Name),
			VideoRef:     strings.TrimSpace(s.VideoRef),
			ThumbnailRef: strings.TrimSpace(s.ThumbnailRef),
			Description:  s.Description,
		}
	}
	return out
}

// present copies exp with its stored status replaced by the effective one.
func present(exp *domain.Experiment, now time.Time) *domain.Experiment {
	out := *exp
	out.Status = exp.EffectiveStatus(now)
	return &out
}

func storedStatusesFor(effective domain.Status) []domain.Status {
	switch effective {
	case domain.StatusDraft:
		return []domain.Status{domain.StatusDraft}
	case domain.StatusScheduled:
		return []domain.Status{domain.StatusScheduled}
	case domain.StatusRunning:
		return []domain.Status{domain.StatusScheduled, domain.StatusRunning}
	default:
		return []domain.Status{domain.StatusScheduled, domain.StatusRunning, domain.StatusCompleted}
	}
}
