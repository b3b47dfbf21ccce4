package usecase

import (
	"log/slog"
	"time"

	"videoab/internal/core/domain"
	"videoab/internal/metrics"
)

// Policy carries the tunables shared by the usecases. main builds it from
// configs.Experiment and configs.Storage.
type Policy struct {
	Variants            domain.VariantPolicy
	AllowScheduledEdits bool
	GracePeriod         time.Duration
	MinSampleViews      int64
	MaxBuckets          int
	MaxBatch            int
	AnalysisTimeout     time.Duration
	AnalysisCacheTTL    time.Duration
	UploadKeyPrefix     string
	UploadURLTTL        time.Duration
}

// DefaultPolicy mirrors the configuration defaults.
func DefaultPolicy() Policy {
	return Policy{
		Variants:         domain.VariantPolicy{Min: 3, Max: 3},
		GracePeriod:      5 * time.Minute,
		MinSampleViews:   30,
		MaxBuckets:       200,
		MaxBatch:         500,
		AnalysisTimeout:  20 * time.Second,
		AnalysisCacheTTL: 10 * time.Minute,
		UploadKeyPrefix:  "media/",
		UploadURLTTL:     15 * time.Minute,
	}
}

type deps struct {
	now     func() time.Time
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option customises a usecase.
type Option func(*deps)

// WithClock replaces time.Now. Tests use it to pin the clock.
func WithClock(now func() time.Time) Option {
	return func(d *deps) { d.now = now }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(d *deps) { d.logger = l }
}

// WithMetrics sets the collectors the usecase reports to.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *deps) { d.metrics = m }
}

func newDeps(opts []Option) deps {
	d := deps{
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(&d)
	}
	return d
}

func (d deps) clock() time.Time {
	return d.now().UTC()
}
