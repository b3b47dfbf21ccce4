package domain

import (
	"fmt"
	"time"
)

// Standing is a variant's position in a verdict.
type Standing struct {
	VariantID   string
	Name        string
	Position    int
	Views       int64
	Conversions int64
	Rate        float64
}

// Verdict is the deterministic outcome of an experiment. Standings are
// ranked best first. When InsufficientData is set no winner or lift is
// claimed.
type Verdict struct {
	ExperimentID      string
	Standings         []Standing
	WinningVariantID  string
	RunnerUpVariantID string
	LiftPercentage    *float64
	InsufficientData  bool
	MinSampleViews    int64
}

// Winner returns the standing of the winning variant.
func (v Verdict) Winner() (Standing, bool) {
	if v.WinningVariantID == "" || len(v.Standings) == 0 {
		return Standing{}, false
	}
	return v.Standings[0], true
}

// Headline renders the verdict as a single deterministic sentence.
func (v Verdict) Headline() string {
	if v.InsufficientData {
		return fmt.Sprintf("Insufficient data: every variant needs at least %d views before a winner can be called.", v.MinSampleViews)
	}
	w, ok := v.Winner()
	if !ok || len(v.Standings) < 2 {
		return "No winner could be determined."
	}
	r := v.Standings[1]
	if v.LiftPercentage == nil {
		return fmt.Sprintf("%s leads with a %.2f%% conversion rate; %s has no conversions yet.", w.Name, w.Rate*100, r.Name)
	}
	return fmt.Sprintf("%s leads with a %.2f%% conversion rate, %.1f%% above %s.", w.Name, w.Rate*100, *v.LiftPercentage, r.Name)
}

// ProseStatus tells whether the text generator produced the prose part of
// an analysis.
type ProseStatus string

const (
	ProseAvailable   ProseStatus = "available"
	ProseUnavailable ProseStatus = "unavailable"
)

// Prose is the generated summary and recommendation for a verdict.
type Prose struct {
	Summary        string
	Recommendation string
}

// AnalysisResult combines the verdict with generated prose. The numeric
// fields always come from the verdict.
type AnalysisResult struct {
	ExperimentID     string
	Summary          string
	Recommendation   string
	WinningVariantID string
	LiftPercentage   *float64
	InsufficientData bool
	ProseStatus      ProseStatus
	Verdict          Verdict
	GeneratedAt      time.Time
}
