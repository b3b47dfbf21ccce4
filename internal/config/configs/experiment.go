package configs

import (
	"errors"
	"time"
)

// Experiment holds the lifecycle and analytics policy.
type Experiment struct {
	// VariantsMin and VariantsMax bound the variant count; both default
	// to 3 so every experiment carries exactly three variants.
	VariantsMin int `env:"VARIANTS_MIN" envDefault:"3"`
	VariantsMax int `env:"VARIANTS_MAX" envDefault:"3"`
	// GracePeriod is how long after the end of an experiment late events
	// are still accepted.
	GracePeriod time.Duration `env:"GRACE_PERIOD" envDefault:"5m"`
	// MinSampleViews is the per-variant view count below which no winner
	// is called.
	MinSampleViews int64 `env:"MIN_SAMPLE_VIEWS" envDefault:"30"`
	// MaxBuckets caps the length of an analytics series.
	MaxBuckets int `env:"MAX_BUCKETS" envDefault:"200"`
	// AllowScheduledEdits relaxes editing to scheduled experiments.
	AllowScheduledEdits bool `env:"ALLOW_SCHEDULED_EDITS" envDefault:"false"`
	// SweepInterval is the period of the status sweeper. Zero disables it.
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
	// MaxBatch caps the number of events in one batch request.
	MaxBatch int `env:"MAX_BATCH" envDefault:"500"`
	// AnalysisTimeout bounds the text generator call of an analysis.
	AnalysisTimeout time.Duration `env:"ANALYSIS_TIMEOUT" envDefault:"20s"`
	// AnalysisCacheTTL is how long a finished analysis is reused.
	AnalysisCacheTTL time.Duration `env:"ANALYSIS_CACHE_TTL" envDefault:"10m"`
}

// Validate rejects policies the engine cannot honour.
func (c Experiment) Validate() error {
	if c.VariantsMin < 2 || c.VariantsMax > 3 || c.VariantsMin > c.VariantsMax {
		return errors.New("variant policy must satisfy 2 <= min <= max <= 3")
	}
	if c.GracePeriod < 0 {
		return errors.New("grace period must not be negative")
	}
	if c.MinSampleViews < 0 {
		return errors.New("min sample views must not be negative")
	}
	if c.MaxBuckets < 1 {
		return errors.New("max buckets must be positive")
	}
	if c.MaxBatch < 1 {
		return errors.New("max batch must be positive")
	}
	return nil
}
