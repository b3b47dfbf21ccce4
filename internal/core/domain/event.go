package domain

import (
	"time"
)

// EventKind is the type of engagement recorded for a variant.
type EventKind string

const (
	EventView       EventKind = "view"
	EventConversion EventKind = "conversion"
)

// Valid reports whether k is a known event kind.
func (k EventKind) Valid() bool {
	return k == EventView || k == EventConversion
}

// EngagementEvent is an immutable record of a view or conversion.
// ClientEventID is optional and makes re-submission idempotent.
type EngagementEvent struct {
	ID            string
	ExperimentID  string
	VariantID     string
	Kind          EventKind
	Timestamp     time.Time
	ClientEventID string
	ReceivedAt    time.Time
}
