package usecase

import (
	"context"
	"fmt"
	"time"

	"videoab/internal/core/domain"
	"videoab/internal/core/port"
)

// Sweep persists the transitions implied by the clock. Reads never depend
// on it since the effective status is derived on every read; the sweep
// only keeps the stored status and the audit trail in step. It returns the
// number of experiments it moved.
func (u *ExperimentUseCase) Sweep(ctx context.Context) (int, error) {
	exps, err := u.repo.ListExperiments(ctx, port.ListFilter{
		StoredStatuses: []domain.Status{domain.StatusScheduled, domain.StatusRunning},
	})
	if err != nil {
		return 0, fmt.Errorf("list experiments: %w", err)
	}
	now := u.clock()
	moved := 0
	for i := range exps {
		if exps[i].EffectiveStatus(now) == exps[i].Status {
			continue
		}
		ok, err := u.settle(ctx, exps[i].ID)
		if err != nil {
			u.logger.WarnContext(ctx, "sweep failed", "experiment_id", exps[i].ID, "error", err)
			continue
		}
		if ok {
			moved++
		}
	}
	return moved, nil
}

// settle walks the stored status forward to the effective one. Each
// implied step is recorded at the window boundary that caused it.
func (u *ExperimentUseCase) settle(ctx context.Context, id string) (bool, error) {
	unlock := u.locks.Lock(id)
	defer unlock()

	exp, err := u.repo.GetExperiment(ctx, id)
	if err != nil {
		return false, fmt.Errorf("get experiment: %w", err)
	}
	if exp == nil {
		return false, nil
	}
	target := exp.EffectiveStatus(u.clock())
	moved := false
	for exp.Status.Before(target) {
		var next domain.Status
		var at time.Time
		switch exp.Status {
		case domain.StatusScheduled:
			next, at = domain.StatusRunning, exp.StartTime
		case domain.StatusRunning:
			next, at = domain.StatusCompleted, exp.EndTime
		default:
			return moved, nil
		}
		if err := u.transition(ctx, exp, next, at); err != nil {
			return moved, err
		}
		moved = true
	}
	return moved, nil
}

// RunSweeper calls Sweep every interval until ctx is cancelled.
func (u *ExperimentUseCase) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := u.Sweep(ctx)
			if err != nil {
				u.logger.ErrorContext(ctx, "status sweep", "error", err)
				continue
			}
			if n > 0 {
				u.logger.InfoContext(ctx, "status sweep", "moved", n)
			}
		}
	}
}
