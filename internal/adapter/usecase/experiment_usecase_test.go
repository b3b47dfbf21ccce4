package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"videoab/internal/core/domain"
	"videoab/internal/core/port"
)

func TestCreateExperiment(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	ctx := context.Background()

	exp, err := f.lifecycle.Create(ctx, validConfig(t0.Add(time.Hour), 7))
	require.NoError(t, err)
	require.Equal(t, domain.StatusDraft, exp.Status)
	require.Equal(t, int64(1), exp.Version)
	require.Equal(t, t0.Add(time.Hour+7*24*time.Hour), exp.EndTime)
	require.Len(t, exp.Variants, 3)
	for i, v := range exp.Variants {
		require.Equal(t, i, v.Position)
		require.NotEmpty(t, v.ID)
		require.Equal(t, exp.ID, v.ExperimentID)
	}

	facts, err := f.lifecycle.Transitions(ctx, exp.ID)
	require.NoError(t, err)
	require.Equal(t, []domain.TransitionFact{{ExperimentID: exp.ID, To: domain.StatusDraft, At: t0}}, facts)
}

func TestCreateDefaultsStartToNow(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	cfg := validConfig(time.Time{}, 3)

	exp, err := f.lifecycle.Create(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, t0, exp.StartTime)
	require.Equal(t, t0.Add(3*24*time.Hour), exp.EndTime)
}

// TestCreateReportsEveryField ensures validation lists all violations at once.
func TestCreateReportsEveryField(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	cfg := validConfig(t0, 0)
	cfg.Name = " "
	cfg.TargetPopulation = 0
	cfg.Variants[1].Name = "control"
	cfg.Variants[2].VideoRef = "ftp://host/video.mp4"

	_, err := f.lifecycle.Create(context.Background(), cfg)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	for _, field := range []string{"name", "targetPopulation", "endTime", "variants[1].name", "variants[2].videoRef"} {
		require.True(t, verr.Has(field), "missing violation for %s: %v", field, verr)
	}

	list, err := f.lifecycle.List(context.Background(), port.ListExperimentsReq{})
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestCreateRejectsWrongVariantCount(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	cfg := validConfig(t0, 7)
	cfg.Variants = cfg.Variants[:2]

	_, err := f.lifecycle.Create(context.Background(), cfg)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.True(t, verr.Has("variants"))

	policy := DefaultPolicy()
	policy.Variants = domain.VariantPolicy{Min: 2, Max: 3}
	f = newFixture(t, policy)
	_, err = f.lifecycle.Create(context.Background(), cfg)
	require.NoError(t, err)
}

func TestActivateFutureStartSchedules(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	ctx := context.Background()
	start := t0.Add(time.Hour)

	exp, err := f.lifecycle.Create(ctx, validConfig(start, 7))
	require.NoError(t, err)

	exp, err = f.lifecycle.Activate(ctx, exp.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusScheduled, exp.Status)

	_, err = f.lifecycle.Activate(ctx, exp.ID)
	var serr *domain.IllegalStateError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, domain.StatusScheduled, serr.Status)

	// The effective status follows the clock without any write.
	f.clock.Set(start)
	got, err := f.lifecycle.Get(ctx, exp.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusRunning, got.Status)

	// Activating now persists the running state, recorded at the start time.
	got, err = f.lifecycle.Activate(ctx, exp.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusRunning, got.Status)

	_, err = f.lifecycle.Activate(ctx, exp.ID)
	require.ErrorAs(t, err, &serr)
	require.Equal(t, domain.StatusRunning, serr.Status)

	facts, err := f.lifecycle.Transitions(ctx, exp.ID)
	require.NoError(t, err)
	require.Len(t, facts, 3)
	require.Equal(t, domain.TransitionFact{ExperimentID: exp.ID, From: domain.StatusScheduled, To: domain.StatusRunning, At: start}, facts[2])

	f.clock.Set(start.Add(7 * 24 * time.Hour))
	got, err = f.lifecycle.Get(ctx, exp.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, got.Status)
}

func TestActivateOpenWindowRunsImmediately(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	exp := f.runningExperiment(t, 7)

	facts, err := f.lifecycle.Transitions(context.Background(), exp.ID)
	require.NoError(t, err)
	require.Len(t, facts, 3)
	require.Equal(t, domain.StatusDraft, facts[1].From)
	require.Equal(t, domain.StatusScheduled, facts[1].To)
	require.Equal(t, domain.StatusScheduled, facts[2].From)
	require.Equal(t, domain.StatusRunning, facts[2].To)
}

func TestActivateAfterEndFails(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	ctx := context.Background()
	exp, err := f.lifecycle.Create(ctx, validConfig(t0, 1))
	require.NoError(t, err)

	f.clock.Advance(48 * time.Hour)
	_, err = f.lifecycle.Activate(ctx, exp.ID)
	var serr *domain.IllegalStateError
	require.ErrorAs(t, err, &serr)

	got, err := f.lifecycle.Get(ctx, exp.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusDraft, got.Status)
}

func TestActivateUnknownExperiment(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	_, err := f.lifecycle.Activate(context.Background(), "missing")
	var nerr *domain.NotFoundError
	require.ErrorAs(t, err, &nerr)
}

// TestConcurrentActivate ensures exactly one of many concurrent activations
// performs the transition.
func TestConcurrentActivate(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	ctx := context.Background()
	exp, err := f.lifecycle.Create(ctx, validConfig(t0.Add(time.Hour), 7))
	require.NoError(t, err)

	const count = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		illegal   int
	)
	wg.Add(count)
	for i := 0; i < count; i++ {
		go func() {
			defer wg.Done()
			_, err := f.lifecycle.Activate(ctx, exp.ID)
			var serr *domain.IllegalStateError
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.As(err, &serr):
				illegal++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 || illegal != count-1 {
		t.Fatalf("got %d successes and %d rejections, want 1 and %d", succeeded, illegal, count-1)
	}
	facts, err := f.lifecycle.Transitions(ctx, exp.ID)
	require.NoError(t, err)
	require.Len(t, facts, 2)
}

func TestUpdateOnlyWhileEditable(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	ctx := context.Background()
	exp, err := f.lifecycle.Create(ctx, validConfig(t0.Add(time.Hour), 7))
	require.NoError(t, err)

	cfg := validConfig(t0.Add(2*time.Hour), 3)
	cfg.Name = "Homepage hero v2"
	updated, err := f.lifecycle.Update(ctx, exp.ID, cfg)
	require.NoError(t, err)
	require.Equal(t, "Homepage hero v2", updated.Name)
	require.Equal(t, int64(2), updated.Version)
	require.Equal(t, t0.Add(2*time.Hour+3*24*time.Hour), updated.EndTime)

	_, err = f.lifecycle.Activate(ctx, exp.ID)
	require.NoError(t, err)

	_, err = f.lifecycle.Update(ctx, exp.ID, cfg)
	var serr *domain.IllegalStateError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, domain.StatusScheduled, serr.Status)
}

func TestUpdateScheduledWhenRelaxed(t *testing.T) {
	policy := DefaultPolicy()
	policy.AllowScheduledEdits = true
	f := newFixture(t, policy)
	ctx := context.Background()
	exp, err := f.lifecycle.Create(ctx, validConfig(t0.Add(time.Hour), 7))
	require.NoError(t, err)
	_, err = f.lifecycle.Activate(ctx, exp.ID)
	require.NoError(t, err)

	cfg := validConfig(t0.Add(time.Hour), 14)
	updated, err := f.lifecycle.Update(ctx, exp.ID, cfg)
	require.NoError(t, err)
	require.Equal(t, domain.StatusScheduled, updated.Status)

	f.clock.Advance(2 * time.Hour)
	_, err = f.lifecycle.Update(ctx, exp.ID, cfg)
	var serr *domain.IllegalStateError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, domain.StatusRunning, serr.Status)
}

func TestAttachVariantsReplacesSet(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	ctx := context.Background()
	exp, err := f.lifecycle.Create(ctx, validConfig(t0.Add(time.Hour), 7))
	require.NoError(t, err)

	specs := []domain.VariantSpec{
		{Name: "A", VideoRef: "gs://bucket/a.mp4", ThumbnailRef: "gs://bucket/a.jpg"},
		{Name: "B", VideoRef: "gs://bucket/b.mp4", ThumbnailRef: "gs://bucket/b.jpg"},
		{Name: "C", VideoRef: "gs://bucket/c.mp4", ThumbnailRef: "gs://bucket/c.jpg"},
	}
	variants, err := f.lifecycle.AttachVariants(ctx, exp.ID, specs)
	require.NoError(t, err)
	require.Len(t, variants, 3)
	require.Equal(t, "C", variants[2].Name)

	got, err := f.lifecycle.Get(ctx, exp.ID)
	require.NoError(t, err)
	require.Equal(t, variants, got.Variants)

	_, err = f.lifecycle.AttachVariants(ctx, exp.ID, specs[:1])
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = f.lifecycle.Activate(ctx, exp.ID)
	require.NoError(t, err)
	_, err = f.lifecycle.AttachVariants(ctx, exp.ID, specs)
	var serr *domain.IllegalStateError
	require.ErrorAs(t, err, &serr)
}

func TestDeleteDraftOnly(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	ctx := context.Background()

	draft, err := f.lifecycle.Create(ctx, validConfig(t0.Add(time.Hour), 7))
	require.NoError(t, err)
	require.NoError(t, f.lifecycle.Delete(ctx, draft.ID))
	_, err = f.lifecycle.Get(ctx, draft.ID)
	var nerr *domain.NotFoundError
	require.ErrorAs(t, err, &nerr)

	running := f.runningExperiment(t, 7)
	err = f.lifecycle.Delete(ctx, running.ID)
	var serr *domain.IllegalStateError
	require.ErrorAs(t, err, &serr)
}

func TestListFiltersByEffectiveStatus(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	ctx := context.Background()

	draft, err := f.lifecycle.Create(ctx, validConfig(t0.Add(time.Hour), 7))
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	running := f.runningExperimentAt(t, f.clock.Now(), 1)

	status := domain.StatusRunning
	list, err := f.lifecycle.List(ctx, port.ListExperimentsReq{Status: &status})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, running.ID, list[0].ID)

	f.clock.Advance(25 * time.Hour)
	status = domain.StatusCompleted
	list, err = f.lifecycle.List(ctx, port.ListExperimentsReq{Status: &status})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, running.ID, list[0].ID)

	all, err := f.lifecycle.List(ctx, port.ListExperimentsReq{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, running.ID, all[0].ID)
	require.Equal(t, draft.ID, all[1].ID)

	bad := domain.Status("paused")
	_, err = f.lifecycle.List(ctx, port.ListExperimentsReq{Status: &bad})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestSweepPersistsImpliedTransitions(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	ctx := context.Background()
	start := t0.Add(time.Hour)
	exp, err := f.lifecycle.Create(ctx, validConfig(start, 1))
	require.NoError(t, err)
	_, err = f.lifecycle.Activate(ctx, exp.ID)
	require.NoError(t, err)

	n, err := f.lifecycle.Sweep(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	f.clock.Advance(48 * time.Hour)
	n, err = f.lifecycle.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	stored, err := f.experiments.GetExperiment(ctx, exp.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, stored.Status)

	facts, err := f.lifecycle.Transitions(ctx, exp.ID)
	require.NoError(t, err)
	require.Len(t, facts, 4)
	require.Equal(t, start, facts[2].At)
	require.Equal(t, domain.StatusRunning, facts[2].To)
	require.Equal(t, start.Add(24*time.Hour), facts[3].At)
	require.Equal(t, domain.StatusCompleted, facts[3].To)

	n, err = f.lifecycle.Sweep(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func (f *fixture) runningExperimentAt(t *testing.T, start time.Time, days int) *domain.Experiment {
	t.Helper()
	exp, err := f.lifecycle.Create(context.Background(), validConfig(start, days))
	require.NoError(t, err)
	exp, err = f.lifecycle.Activate(context.Background(), exp.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusRunning, exp.Status)
	return exp
}
