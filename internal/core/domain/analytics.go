package domain

import (
	"fmt"
	"time"
)

// TimeRange selects the part of an experiment window an analytics query
// covers.
type TimeRange string

const (
	RangeHour   TimeRange = "1h"
	RangeDay    TimeRange = "1d"
	RangeWeek   TimeRange = "1w"
	RangeMonth  TimeRange = "1m"
	RangeAll    TimeRange = "all"
	RangeCustom TimeRange = "custom"
)

const day = 24 * time.Hour

// BucketLadder lists the widths tried, smallest first, for ranges without
// a fixed width.
var BucketLadder = []time.Duration{
	time.Minute,
	5 * time.Minute,
	15 * time.Minute,
	time.Hour,
	6 * time.Hour,
	day,
	7 * day,
	30 * day,
}

// ParseTimeRange parses the query form of a time range. The empty string
// selects the last week.
func ParseTimeRange(s string) (TimeRange, error) {
	switch TimeRange(s) {
	case "":
		return RangeWeek, nil
	case RangeHour, RangeDay, RangeWeek, RangeMonth, RangeAll:
		return TimeRange(s), nil
	default:
		return "", fmt.Errorf("unknown time range %q", s)
	}
}

// Span is how far back from now a relative range reaches. It is zero for
// RangeAll and RangeCustom.
func (r TimeRange) Span() time.Duration {
	switch r {
	case RangeHour:
		return time.Hour
	case RangeDay:
		return day
	case RangeWeek:
		return 7 * day
	case RangeMonth:
		return 30 * day
	default:
		return 0
	}
}

// Width is the fixed bucket width of a relative range, or zero when the
// width has to be chosen from BucketLadder.
func (r TimeRange) Width() time.Duration {
	switch r {
	case RangeHour:
		return time.Minute
	case RangeDay:
		return time.Hour
	case RangeWeek, RangeMonth:
		return day
	default:
		return 0
	}
}

// RangeQuery is the input of an analytics query. From and To are only
// read for RangeCustom.
type RangeQuery struct {
	Range TimeRange
	From  time.Time
	To    time.Time
}

// VariantCount holds the counters of one variant inside a bucket.
type VariantCount struct {
	VariantID   string
	Views       int64
	Conversions int64
}

// Bucket is a left-closed, right-open interval starting at Start.
type Bucket struct {
	Start    time.Time
	Variants []VariantCount
}

// VariantTotals aggregates a variant over the whole queried window.
type VariantTotals struct {
	VariantID      string
	Name           string
	Position       int
	Views          int64
	Conversions    int64
	ConversionRate float64
}

// Series is the result of an analytics query, ordered by ascending bucket
// start.
type Series struct {
	ExperimentID    string
	Range           TimeRange
	From            time.Time
	To              time.Time
	BucketWidth     time.Duration
	Buckets         []Bucket
	Totals          []VariantTotals
	LiftPercentage  *float64
	ConfidenceProxy float64
}

// TotalEvents returns the number of events counted in the series.
func (s Series) TotalEvents() int64 {
	var n int64
	for _, t := range s.Totals {
		n += t.Views + t.Conversions
	}
	return n
}

// ConversionRate returns conversions/views, or 0 when there are no views.
func ConversionRate(views, conversions int64) float64 {
	if views <= 0 {
		return 0
	}
	return float64(conversions) / float64(views)
}
