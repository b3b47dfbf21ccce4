package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var policy3 = VariantPolicy{Min: 3, Max: 3}

func specs(names ...string) []VariantSpec {
	out := make([]VariantSpec, len(names))
	for i, n := range names {
		out[i] = VariantSpec{
			Name:         n,
			VideoRef:     "s3://bucket/videos/" + n + ".mp4",
			ThumbnailRef: "s3://bucket/thumbs/" + n + ".jpg",
		}
	}
	return out
}

func TestConfigWindow(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	cfg := ExperimentConfig{DurationDays: 2}
	start, end := cfg.Window(now)
	if !start.Equal(now) || !end.Equal(now.Add(48*time.Hour)) {
		t.Fatalf("unexpected window [%s, %s)", start, end)
	}

	cfg = ExperimentConfig{StartTime: now.Add(time.Hour), EndTime: now.Add(5 * time.Hour)}
	start, end = cfg.Window(now)
	if !start.Equal(now.Add(time.Hour)) || !end.Equal(now.Add(5*time.Hour)) {
		t.Fatalf("unexpected window [%s, %s)", start, end)
	}
}

func TestConfigValidate(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	valid := ExperimentConfig{
		Name:             "Launch",
		ProductName:      "Widget",
		TargetPopulation: 100,
		DurationDays:     7,
		Variants:         specs("a", "b", "c"),
	}
	if err := valid.Validate(policy3, now); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cases := []struct {
		name  string
		edit  func(*ExperimentConfig)
		field string
	}{
		{"missing product", func(c *ExperimentConfig) { c.ProductName = "" }, "productName"},
		{"negative duration", func(c *ExperimentConfig) { c.DurationDays = -1 }, "durationDays"},
		{"duration and end", func(c *ExperimentConfig) { c.EndTime = now.Add(time.Hour) }, "durationDays"},
		{"end before start", func(c *ExperimentConfig) {
			c.DurationDays = 0
			c.StartTime = now.Add(2 * time.Hour)
			c.EndTime = now.Add(time.Hour)
		}, "endTime"},
		{"two variants", func(c *ExperimentConfig) { c.Variants = specs("a", "b") }, "variants"},
		{"duplicate name", func(c *ExperimentConfig) { c.Variants = specs("a", "b", " A ") }, "variants[2].name"},
		{"bad thumbnail", func(c *ExperimentConfig) { c.Variants[1].ThumbnailRef = "thumb.jpg" }, "variants[1].thumbnailRef"},
		{"long description", func(c *ExperimentConfig) { c.Variants[0].Description = strings.Repeat("x", 2001) }, "variants[0].description"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			cfg.Variants = specs("a", "b", "c")
			tc.edit(&cfg)
			err := cfg.Validate(policy3, now)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if !verr.Has(tc.field) {
				t.Fatalf("expected violation for %s, got %v", tc.field, verr)
			}
		})
	}
}
