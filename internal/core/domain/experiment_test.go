package domain

import (
	"testing"
	"time"
)

func TestEffectiveStatus(t *testing.T) {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)

	cases := []struct {
		name   string
		stored Status
		now    time.Time
		want   Status
	}{
		{"draft stays draft after end", StatusDraft, end.Add(time.Hour), StatusDraft},
		{"scheduled before start", StatusScheduled, start.Add(-time.Second), StatusScheduled},
		{"scheduled at start runs", StatusScheduled, start, StatusRunning},
		{"scheduled past end completes", StatusScheduled, end, StatusCompleted},
		{"running inside window", StatusRunning, start.Add(time.Hour), StatusRunning},
		{"running at end completes", StatusRunning, end, StatusCompleted},
		{"completed stays completed", StatusCompleted, start, StatusCompleted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := EffectiveStatus(tc.stored, start, end, tc.now); got != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

// TestEffectiveStatusIsMonotonic walks the clock across the window and
// checks that the observed status never moves backwards.
func TestEffectiveStatusIsMonotonic(t *testing.T) {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Hour)
	prev := StatusScheduled
	for now := start.Add(-time.Hour); now.Before(end.Add(time.Hour)); now = now.Add(7 * time.Minute) {
		got := EffectiveStatus(StatusScheduled, start, end, now)
		if got.Before(prev) {
			t.Fatalf("status moved back from %s to %s at %s", prev, got, now)
		}
		prev = got
	}
	if prev != StatusCompleted {
		t.Fatalf("expected completed at the end, got %s", prev)
	}
}

func TestStatusBefore(t *testing.T) {
	if !StatusDraft.Before(StatusScheduled) || StatusCompleted.Before(StatusRunning) {
		t.Fatal("unexpected lifecycle order")
	}
	if Status("paused").Before(StatusCompleted) {
		t.Fatal("unknown status must not order")
	}
}
