package memory

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"videoab/internal/core/domain"
	"videoab/internal/core/port"
)

// eventLog is the append-only log of one experiment. Readers take a
// snapshot of the slice header and scan it without holding the lock;
// appends never touch elements inside an earlier snapshot.
type eventLog struct {
	mu        sync.Mutex
	events    []domain.EngagementEvent
	clientIDs map[string]struct{}
}

// EventRepository implements port.EventRepository.
type EventRepository struct {
	mu   sync.RWMutex
	logs map[string]*eventLog
}

// NewEventRepository returns an empty event log.
func NewEventRepository() *EventRepository {
	return &EventRepository{logs: make(map[string]*eventLog)}
}

var _ port.EventRepository = (*EventRepository)(nil)

func (r *EventRepository) log(experimentID string, create bool) *eventLog {
	r.mu.RLock()
	l, ok := r.logs[experimentID]
	r.mu.RUnlock()
	if ok || !create {
		return l
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok = r.logs[experimentID]; ok {
		return l
	}
	l = &eventLog{clientIDs: make(map[string]struct{})}
	r.logs[experimentID] = l
	return l
}

func (r *EventRepository) AppendEvent(_ context.Context, ev *domain.EngagementEvent) (bool, error) {
	l := r.log(ev.ExperimentID, true)
	l.mu.Lock()
	defer l.mu.Unlock()
	if ev.ClientEventID != "" {
		if _, dup := l.clientIDs[ev.ClientEventID]; dup {
			return false, nil
		}
		l.clientIDs[ev.ClientEventID] = struct{}{}
	}
	l.events = append(l.events, *ev)
	return true, nil
}

func (r *EventRepository) snapshot(experimentID string) []domain.EngagementEvent {
	l := r.log(experimentID, false)
	if l == nil {
		return nil
	}
	l.mu.Lock()
	events := l.events[:len(l.events):len(l.events)]
	l.mu.Unlock()
	return events
}

type countKey struct {
	start   int64
	variant string
	kind    domain.EventKind
}

func (r *EventRepository) CountEvents(_ context.Context, q port.CountQuery) ([]port.EventCount, error) {
	if q.Width <= 0 {
		return nil, errors.New("bucket width must be positive")
	}
	counts := make(map[countKey]int64)
	for _, ev := range r.snapshot(q.ExperimentID) {
		if ev.Timestamp.Before(q.From) || !ev.Timestamp.Before(q.To) {
			continue
		}
		idx := ev.Timestamp.Sub(q.From) / q.Width
		start := q.From.Add(idx * q.Width)
		counts[countKey{start: start.UnixNano(), variant: ev.VariantID, kind: ev.Kind}]++
	}

	out := make([]port.EventCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, port.EventCount{
			BucketStart: time.Unix(0, k.start).UTC(),
			VariantID:   k.variant,
			Kind:        k.kind,
			Count:       n,
		})
	}
	slices.SortFunc(out, func(a, b port.EventCount) int {
		if c := a.BucketStart.Compare(b.BucketStart); c != 0 {
			return c
		}
		if a.VariantID != b.VariantID {
			if a.VariantID < b.VariantID {
				return -1
			}
			return 1
		}
		if a.Kind < b.Kind {
			return -1
		}
		if a.Kind > b.Kind {
			return 1
		}
		return 0
	})
	return out, nil
}

func (r *EventRepository) EventWatermark(_ context.Context, experimentID string) (int64, error) {
	return int64(len(r.snapshot(experimentID))), nil
}
