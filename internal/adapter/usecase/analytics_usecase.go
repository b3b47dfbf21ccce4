package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"videoab/internal/core/domain"
	"videoab/internal/core/port"
)

// AnalyticsUseCase implements port.AnalyticsUseCase. Reads take no
// experiment lock; they aggregate whatever prefix of the event log the
// repository returns.
type AnalyticsUseCase struct {
	experiments port.ExperimentRepository
	events      port.EventRepository
	generator   port.TextGenerator
	cache       port.AnalysisCache
	policy      Policy
	group       singleflight.Group
	deps
}

// NewAnalyticsUseCase wires the read side. generator and cache may be nil;
// without a generator every analysis reports its prose as unavailable.
func NewAnalyticsUseCase(
	experiments port.ExperimentRepository,
	events port.EventRepository,
	generator port.TextGenerator,
	cache port.AnalysisCache,
	policy Policy,
	opts ...Option,
) *AnalyticsUseCase {
	return &AnalyticsUseCase{
		experiments: experiments,
		events:      events,
		generator:   generator,
		cache:       cache,
		policy:      policy,
		deps:        newDeps(opts),
	}
}

var _ port.AnalyticsUseCase = (*AnalyticsUseCase)(nil)

// Query returns the bucketed series of an experiment. The window is
// clamped to [start, min(now, end)], aligned to the bucket width and every
// bucket inside it is present, with zero counts when empty.
func (u *AnalyticsUseCase) Query(ctx context.Context, experimentID string, q domain.RangeQuery) (*domain.Series, error) {
	started := time.Now()
	exp, err := u.load(ctx, experimentID)
	if err != nil {
		return nil, err
	}
	if q.Range == "" {
		q.Range = domain.RangeWeek
	}
	series, err := u.query(ctx, exp, q, u.clock())
	if err != nil {
		return nil, err
	}
	u.metrics.ObserveQuery(string(q.Range), time.Since(started))
	return series, nil
}

// Recommend returns the deterministic verdict over the whole experiment.
func (u *AnalyticsUseCase) Recommend(ctx context.Context, experimentID string) (*domain.Verdict, error) {
	exp, err := u.load(ctx, experimentID)
	if err != nil {
		return nil, err
	}
	totals, err := u.totals(ctx, exp, u.clock())
	if err != nil {
		return nil, err
	}
	v := BuildVerdict(exp.ID, totals, u.policy.MinSampleViews)
	return &v, nil
}

// Analyze combines the verdict with generated prose. Results are cached
// per event watermark, and concurrent calls for the same watermark share
// one generator call. A generator failure never fails the analysis: the
// numeric part is returned with ProseStatus set to unavailable.
func (u *AnalyticsUseCase) Analyze(ctx context.Context, experimentID string) (*domain.AnalysisResult, error) {
	exp, err := u.load(ctx, experimentID)
	if err != nil {
		return nil, err
	}
	watermark, err := u.events.EventWatermark(ctx, exp.ID)
	if err != nil {
		return nil, fmt.Errorf("event watermark: %w", err)
	}
	key := fmt.Sprintf("analysis:%s:%d", exp.ID, watermark)

	if u.cache != nil {
		cached, err := u.cache.Get(ctx, key)
		switch {
		case err == nil:
			u.metrics.Analysis("cached")
			return cached, nil
		case !errors.Is(err, port.ErrCacheMiss):
			u.logger.WarnContext(ctx, "analysis cache read", "experiment_id", exp.ID, "error", err)
		}
	}

	v, err, _ := u.group.Do(key, func() (any, error) {
		return u.analyze(context.WithoutCancel(ctx), exp, key)
	})
	if err != nil {
		return nil, err
	}
	res := *v.(*domain.AnalysisResult)
	return &res, nil
}

func (u *AnalyticsUseCase) analyze(ctx context.Context, exp *domain.Experiment, key string) (*domain.AnalysisResult, error) {
	now := u.clock()
	totals, err := u.totals(ctx, exp, now)
	if err != nil {
		return nil, err
	}
	verdict := BuildVerdict(exp.ID, totals, u.policy.MinSampleViews)
	res := &domain.AnalysisResult{
		ExperimentID:     exp.ID,
		WinningVariantID: verdict.WinningVariantID,
		LiftPercentage:   verdict.LiftPercentage,
		InsufficientData: verdict.InsufficientData,
		ProseStatus:      domain.ProseUnavailable,
		Verdict:          verdict,
		GeneratedAt:      now,
	}

	if u.generator != nil {
		gctx, cancel := context.WithTimeout(ctx, u.policy.AnalysisTimeout)
		prose, err := u.generator.GenerateAnalysis(gctx, *exp, verdict)
		cancel()
		switch {
		case err != nil:
			derr := &domain.DependencyError{Dependency: "text generator", Err: err}
			u.logger.WarnContext(ctx, "analysis prose unavailable", "experiment_id", exp.ID, "error", derr)
		case strings.TrimSpace(prose.Summary) == "" || strings.TrimSpace(prose.Recommendation) == "":
			u.logger.WarnContext(ctx, "analysis prose unavailable", "experiment_id", exp.ID, "error", "empty prose")
		default:
			res.Summary = strings.TrimSpace(prose.Summary)
			res.Recommendation = strings.TrimSpace(prose.Recommendation)
			res.ProseStatus = domain.ProseAvailable
		}
	}
	u.metrics.Analysis(string(res.ProseStatus))

	if err := u.experiments.SetTotalGain(ctx, exp.ID, verdict.LiftPercentage); err != nil {
		u.logger.WarnContext(ctx, "store total gain", "experiment_id", exp.ID, "error", err)
	}
	if u.cache != nil && res.ProseStatus == domain.ProseAvailable {
		if err := u.cache.Set(ctx, key, *res, u.policy.AnalysisCacheTTL); err != nil {
			u.logger.WarnContext(ctx, "analysis cache write", "experiment_id", exp.ID, "error", err)
		}
	}
	return res, nil
}

func (u *AnalyticsUseCase) query(ctx context.Context, exp *domain.Experiment, q domain.RangeQuery, now time.Time) (*domain.Series, error) {
	if q.Range == "" {
		q.Range = domain.RangeWeek
	}
	from, to, err := window(exp, q, now)
	if err != nil {
		return nil, err
	}
	width, err := u.bucketWidth(q.Range, from, to)
	if err != nil {
		return nil, err
	}

	series := &domain.Series{
		ExperimentID: exp.ID,
		Range:        q.Range,
		BucketWidth:  width,
		Buckets:      []domain.Bucket{},
		Totals:       make([]domain.VariantTotals, len(exp.Variants)),
	}
	index := make(map[string]int, len(exp.Variants))
	for i, v := range exp.Variants {
		index[v.ID] = i
		series.Totals[i] = domain.VariantTotals{VariantID: v.ID, Name: v.Name, Position: v.Position}
	}

	alignedFrom := from.Truncate(width)
	n := bucketCount(alignedFrom, to, width)
	series.From = alignedFrom
	series.To = alignedFrom.Add(time.Duration(n) * width)
	if n == 0 {
		series.From, series.To = from, to
		summarize(series)
		return series, nil
	}

	counts, err := u.events.CountEvents(ctx, port.CountQuery{
		ExperimentID: exp.ID,
		From:         series.From,
		To:           series.To,
		Width:        width,
	})
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}

	series.Buckets = make([]domain.Bucket, n)
	for i := range series.Buckets {
		vc := make([]domain.VariantCount, len(exp.Variants))
		for j, v := range exp.Variants {
			vc[j].VariantID = v.ID
		}
		series.Buckets[i] = domain.Bucket{Start: alignedFrom.Add(time.Duration(i) * width), Variants: vc}
	}
	for _, c := range counts {
		b := int(c.BucketStart.Sub(alignedFrom) / width)
		v, ok := index[c.VariantID]
		if b < 0 || b >= n || !ok {
			continue
		}
		switch c.Kind {
		case domain.EventView:
			series.Buckets[b].Variants[v].Views += c.Count
			series.Totals[v].Views += c.Count
		case domain.EventConversion:
			series.Buckets[b].Variants[v].Conversions += c.Count
			series.Totals[v].Conversions += c.Count
		}
	}
	summarize(series)
	return series, nil
}

// totals counts the whole window in a single bucket, so the verdict does
// not depend on MaxBuckets however long the experiment runs.
func (u *AnalyticsUseCase) totals(ctx context.Context, exp *domain.Experiment, now time.Time) ([]domain.VariantTotals, error) {
	out := make([]domain.VariantTotals, len(exp.Variants))
	index := make(map[string]int, len(exp.Variants))
	for i, v := range exp.Variants {
		index[v.ID] = i
		out[i] = domain.VariantTotals{VariantID: v.ID, Name: v.Name, Position: v.Position}
	}

	from, to, err := window(exp, domain.RangeQuery{Range: domain.RangeAll}, now)
	if err != nil {
		return nil, err
	}
	if !to.After(from) {
		return out, nil
	}
	counts, err := u.events.CountEvents(ctx, port.CountQuery{
		ExperimentID: exp.ID,
		From:         from,
		To:           to,
		Width:        to.Sub(from),
	})
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	for _, c := range counts {
		v, ok := index[c.VariantID]
		if !ok {
			continue
		}
		switch c.Kind {
		case domain.EventView:
			out[v].Views += c.Count
		case domain.EventConversion:
			out[v].Conversions += c.Count
		}
	}
	for i := range out {
		out[i].ConversionRate = domain.ConversionRate(out[i].Views, out[i].Conversions)
	}
	return out, nil
}

// bucketWidth returns the fixed width of the range, or the smallest width
// of the ladder that keeps the series within MaxBuckets.
func (u *AnalyticsUseCase) bucketWidth(r domain.TimeRange, from, to time.Time) (time.Duration, error) {
	fixed := r.Width()
	if fixed > 0 && bucketCount(from.Truncate(fixed), to, fixed) <= u.policy.MaxBuckets {
		return fixed, nil
	}
	for _, w := range domain.BucketLadder {
		if w < fixed {
			continue
		}
		if bucketCount(from.Truncate(w), to, w) <= u.policy.MaxBuckets {
			return w, nil
		}
	}
	verr := &domain.ValidationError{}
	verr.Add("timeRange", "covers more than %d buckets", u.policy.MaxBuckets)
	return 0, verr
}

func (u *AnalyticsUseCase) load(ctx context.Context, id string) (*domain.Experiment, error) {
	exp, err := u.experiments.GetExperiment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get experiment: %w", err)
	}
	if exp == nil {
		return nil, &domain.NotFoundError{Entity: "experiment", ID: id}
	}
	return exp, nil
}

// window resolves q against the experiment window and the clock.
func window(exp *domain.Experiment, q domain.RangeQuery, now time.Time) (time.Time, time.Time, error) {
	var from, to time.Time
	switch q.Range {
	case domain.RangeCustom:
		verr := &domain.ValidationError{}
		if q.From.IsZero() {
			verr.Add("from", "is required")
		}
		if q.To.IsZero() {
			verr.Add("to", "is required")
		}
		if !q.From.IsZero() && !q.To.IsZero() && !q.To.After(q.From) {
			verr.Add("to", "must be after from")
		}
		if err := verr.Err(); err != nil {
			return time.Time{}, time.Time{}, err
		}
		from, to = q.From.UTC(), q.To.UTC()
	case domain.RangeAll:
		from, to = exp.StartTime, now
	case domain.RangeHour, domain.RangeDay, domain.RangeWeek, domain.RangeMonth:
		from, to = now.Add(-q.Range.Span()), now
	default:
		verr := &domain.ValidationError{}
		verr.Add("timeRange", "must be one of 1h, 1d, 1w, 1m or all")
		return time.Time{}, time.Time{}, verr
	}

	// Events stamped exactly now belong to the window.
	upper := exp.EndTime
	if now.Before(upper) {
		upper = now.Add(time.Nanosecond)
	}
	if from.Before(exp.StartTime) {
		from = exp.StartTime
	}
	if to.After(upper) {
		to = upper
	}
	if to.Before(from) {
		to = from
	}
	return from, to, nil
}

func bucketCount(from, to time.Time, width time.Duration) int {
	if !to.After(from) {
		return 0
	}
	d := to.Sub(from)
	return int((d + width - 1) / width)
}

func summarize(s *domain.Series) {
	for i := range s.Totals {
		s.Totals[i].ConversionRate = domain.ConversionRate(s.Totals[i].Views, s.Totals[i].Conversions)
	}
	v := BuildVerdict(s.ExperimentID, s.Totals, 0)
	if len(v.Standings) < 2 {
		return
	}
	s.LiftPercentage = lift(v.Standings[0], v.Standings[1])
	s.ConfidenceProxy = confidence(v.Standings[0], v.Standings[1])
}
