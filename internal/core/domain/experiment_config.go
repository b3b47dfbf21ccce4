package domain

import (
	"fmt"
	"strings"
	"time"
)

const maxDescriptionLen = 2000

// VariantPolicy bounds how many variants an experiment carries.
type VariantPolicy struct {
	Min int
	Max int
}

// VariantSpec is the caller supplied configuration of a variant.
type VariantSpec struct {
	Name         string
	VideoRef     string
	ThumbnailRef string
	Description  string
}

// ExperimentConfig describes the input of create and update. Either
// EndTime or DurationDays determines the end of the window; a zero
// StartTime means the experiment starts when it is created.
type ExperimentConfig struct {
	Name             string
	ProductName      string
	TargetPopulation int
	StartTime        time.Time
	EndTime          time.Time
	DurationDays     int
	Variants         []VariantSpec
}

// Window resolves the experiment window relative to now.
func (c ExperimentConfig) Window(now time.Time) (start, end time.Time) {
	start = c.StartTime
	if start.IsZero() {
		start = now
	}
	start = start.UTC()
	end = c.EndTime.UTC()
	if c.EndTime.IsZero() && c.DurationDays > 0 {
		end = start.Add(time.Duration(c.DurationDays) * 24 * time.Hour)
	}
	return start, end
}

// Validate checks every field of c and returns a *ValidationError listing
// all violations, or nil.
func (c ExperimentConfig) Validate(policy VariantPolicy, now time.Time) error {
	verr := &ValidationError{}
	if strings.TrimSpace(c.Name) == "" {
		verr.Add("name", "is required")
	}
	if strings.TrimSpace(c.ProductName) == "" {
		verr.Add("productName", "is required")
	}
	if c.TargetPopulation < 1 {
		verr.Add("targetPopulation", "must be at least 1")
	}
	switch {
	case c.DurationDays < 0:
		verr.Add("durationDays", "must be at least 1")
	case c.DurationDays > 0 && !c.EndTime.IsZero():
		verr.Add("durationDays", "cannot be combined with endTime")
	case c.DurationDays == 0 && c.EndTime.IsZero():
		verr.Add("endTime", "endTime or durationDays is required")
	default:
		start, end := c.Window(now)
		if !end.After(start) {
			verr.Add("endTime", "must be after startTime")
		}
	}
	ValidateVariants(c.Variants, policy, verr)
	return verr.Err()
}

// ValidateVariants appends to verr every violation of the variant set.
func ValidateVariants(specs []VariantSpec, policy VariantPolicy, verr *ValidationError) {
	if len(specs) < policy.Min || len(specs) > policy.Max {
		if policy.Min == policy.Max {
			verr.Add("variants", "exactly %d variants are required", policy.Min)
		} else {
			verr.Add("variants", "between %d and %d variants are required", policy.Min, policy.Max)
		}
	}
	seen := make(map[string]int, len(specs))
	for i, s := range specs {
		field := fmt.Sprintf("variants[%d]", i)
		name := strings.ToLower(strings.TrimSpace(s.Name))
		if name == "" {
			verr.Add(field+".name", "is required")
		} else if j, dup := seen[name]; dup {
			verr.Add(field+".name", "duplicates variants[%d].name", j)
		} else {
			seen[name] = i
		}
		if err := ValidateLocator(s.VideoRef); err != nil {
			verr.Add(field+".videoRef", "%s", err.Error())
		}
		if err := ValidateLocator(s.ThumbnailRef); err != nil {
			verr.Add(field+".thumbnailRef", "%s", err.Error())
		}
		if len(s.Description) > maxDescriptionLen {
			verr.Add(field+".description", "must be at most %d characters", maxDescriptionLen)
		}
	}
}
