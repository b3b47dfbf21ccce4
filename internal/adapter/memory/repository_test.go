package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"videoab/internal/core/domain"
	"videoab/internal/core/port"
)

var t0 = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func TestUpdateStatusChecksVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewExperimentRepository()
	exp := &domain.Experiment{ID: "e1", Status: domain.StatusDraft, Version: 1, CreatedAt: t0}
	require.NoError(t, repo.CreateExperiment(ctx, exp))

	fact := domain.TransitionFact{ExperimentID: "e1", From: domain.StatusDraft, To: domain.StatusScheduled, At: t0}
	require.NoError(t, repo.UpdateStatus(ctx, fact, 1))
	require.ErrorIs(t, repo.UpdateStatus(ctx, fact, 1), port.ErrVersionConflict)

	got, err := repo.GetExperiment(ctx, "e1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusScheduled, got.Status)
	require.Equal(t, int64(2), got.Version)

	facts, err := repo.ListTransitions(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, facts, 2)

	var nerr *domain.NotFoundError
	require.ErrorAs(t, repo.DeleteExperiment(ctx, "missing", 1), &nerr)

	missing, err := repo.GetExperiment(ctx, "missing")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestCountEventsGroupsByBucket(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository()
	add := func(id, client string, kind domain.EventKind, at time.Time) bool {
		ok, err := repo.AppendEvent(ctx, &domain.EngagementEvent{
			ID: id, ExperimentID: "e1", VariantID: "v1", Kind: kind, Timestamp: at, ClientEventID: client,
		})
		require.NoError(t, err)
		return ok
	}
	require.True(t, add("a", "c1", domain.EventView, t0.Add(10*time.Second)))
	require.False(t, add("b", "c1", domain.EventView, t0.Add(20*time.Second)))
	require.True(t, add("c", "", domain.EventView, t0.Add(30*time.Second)))
	require.True(t, add("d", "", domain.EventConversion, t0.Add(90*time.Second)))
	require.True(t, add("e", "", domain.EventView, t0.Add(time.Hour)))

	counts, err := repo.CountEvents(ctx, port.CountQuery{
		ExperimentID: "e1",
		From:         t0,
		To:           t0.Add(5 * time.Minute),
		Width:        time.Minute,
	})
	require.NoError(t, err)
	require.Equal(t, []port.EventCount{
		{BucketStart: t0, VariantID: "v1", Kind: domain.EventView, Count: 2},
		{BucketStart: t0.Add(time.Minute), VariantID: "v1", Kind: domain.EventConversion, Count: 1},
	}, counts)

	watermark, err := repo.EventWatermark(ctx, "e1")
	require.NoError(t, err)
	require.Equal(t, int64(4), watermark)
}
