package domain

import "time"

// Status is the lifecycle state of an experiment. Transitions only move
// forward: draft -> scheduled -> running -> completed.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusRunning, StatusCompleted:
		return true
	default:
		return false
	}
}

func (s Status) rank() int {
	switch s {
	case StatusDraft:
		return 0
	case StatusScheduled:
		return 1
	case StatusRunning:
		return 2
	case StatusCompleted:
		return 3
	default:
		return -1
	}
}

// Before reports whether s comes strictly earlier in the lifecycle than o.
func (s Status) Before(o Status) bool {
	return s.rank() >= 0 && s.rank() < o.rank()
}

// EffectiveStatus derives the status a caller should observe from the
// stored status, the experiment window and the clock. Only draft->scheduled
// is a manual transition; running and completed follow from the window.
func EffectiveStatus(stored Status, start, end, now time.Time) Status {
	switch stored {
	case StatusScheduled, StatusRunning:
		if !now.Before(end) {
			return StatusCompleted
		}
		if !now.Before(start) {
			return StatusRunning
		}
		return StatusScheduled
	default:
		return stored
	}
}

// Experiment represents a video A/B experiment. Status holds the stored
// status; use EffectiveStatus for anything user facing.
type Experiment struct {
	ID               string
	Name             string
	ProductName      string
	TargetPopulation int
	StartTime        time.Time
	EndTime          time.Time
	Status           Status
	Variants         []Variant
	TotalGain        *float64 // lift percentage of the last analysis
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// EffectiveStatus returns the status of e at now.
func (e *Experiment) EffectiveStatus(now time.Time) Status {
	return EffectiveStatus(e.Status, e.StartTime, e.EndTime, now)
}

// Variant returns the attached variant with the given id.
func (e *Experiment) Variant(id string) (Variant, bool) {
	for _, v := range e.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// TransitionFact is the audit record written for every status change.
type TransitionFact struct {
	ExperimentID string
	From         Status
	To           Status
	At           time.Time
}
