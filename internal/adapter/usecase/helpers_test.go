package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"videoab/internal/adapter/memory"
	"videoab/internal/core/domain"
)

var t0 = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(at time.Time) *testClock { return &testClock{now: at} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(at time.Time) {
	c.mu.Lock()
	c.now = at
	c.mu.Unlock()
}

func (c *testClock) Advance(d time.Duration) { c.Set(c.Now().Add(d)) }

func validConfig(start time.Time, days int) domain.ExperimentConfig {
	return domain.ExperimentConfig{
		Name:             "Homepage hero",
		ProductName:      "Trail runner",
		TargetPopulation: 5000,
		StartTime:        start,
		DurationDays:     days,
		Variants: []domain.VariantSpec{
			{Name: "Control", VideoRef: "s3://media/videos/control.mp4", ThumbnailRef: "s3://media/thumbs/control.jpg"},
			{Name: "Short cut", VideoRef: "s3://media/videos/short.mp4", ThumbnailRef: "s3://media/thumbs/short.jpg"},
			{Name: "Bold", VideoRef: "https://cdn.example.com/videos/bold.mp4", ThumbnailRef: "https://cdn.example.com/thumbs/bold.jpg"},
		},
	}
}

type fixture struct {
	clock       *testClock
	experiments *memory.ExperimentRepository
	events      *memory.EventRepository
	lifecycle   *ExperimentUseCase
	ingest      *EventUseCase
}

func newFixture(t *testing.T, policy Policy) *fixture {
	t.Helper()
	f := &fixture{
		clock:       newTestClock(t0),
		experiments: memory.NewExperimentRepository(),
		events:      memory.NewEventRepository(),
	}
	f.lifecycle = NewExperimentUseCase(f.experiments, policy, WithClock(f.clock.Now))
	f.ingest = NewEventUseCase(f.experiments, f.events, policy, WithClock(f.clock.Now))
	return f
}

// runningExperiment creates and activates an experiment whose window is
// [t0, t0+days) with the clock at t0.
func (f *fixture) runningExperiment(t *testing.T, days int) *domain.Experiment {
	t.Helper()
	ctx := context.Background()
	exp, err := f.lifecycle.Create(ctx, validConfig(t0, days))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	exp, err = f.lifecycle.Activate(ctx, exp.ID)
	if err != nil {
		t.Fatalf("Activate error: %v", err)
	}
	if exp.Status != domain.StatusRunning {
		t.Fatalf("expected running, got %s", exp.Status)
	}
	return exp
}

// seed appends n events of kind for variant at ts directly to the log.
func (f *fixture) seed(t *testing.T, exp *domain.Experiment, variant int, kind domain.EventKind, n int, ts time.Time) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := f.events.AppendEvent(context.Background(), &domain.EngagementEvent{
			ID:           exp.ID + "-" + string(kind) + "-" + time.Duration(i).String(),
			ExperimentID: exp.ID,
			VariantID:    exp.Variants[variant].ID,
			Kind:         kind,
			Timestamp:    ts,
			ReceivedAt:   ts,
		})
		if err != nil {
			t.Fatalf("AppendEvent error: %v", err)
		}
	}
}
