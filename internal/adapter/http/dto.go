package httpadapter

import (
	"time"

	"videoab/internal/core/domain"
	"videoab/internal/core/port"
)

type variantReq struct {
	Name         string `json:"name"`
	VideoRef     string `json:"videoRef"`
	ThumbnailRef string `json:"thumbnailRef"`
	Description  string `json:"description"`
}

type experimentReq struct {
	Name             string       `json:"name"`
	ProductName      string       `json:"productName"`
	TargetPopulation int          `json:"targetPopulation"`
	StartTime        *time.Time   `json:"startTime"`
	EndTime          *time.Time   `json:"endTime"`
	DurationDays     int          `json:"durationDays"`
	Variants         []variantReq `json:"variants"`
}

func (r experimentReq) config() domain.ExperimentConfig {
	cfg := domain.ExperimentConfig{
		Name:             r.Name,
		ProductName:      r.ProductName,
		TargetPopulation: r.TargetPopulation,
		DurationDays:     r.DurationDays,
		Variants:         variantSpecs(r.Variants),
	}
	if r.StartTime != nil {
		cfg.StartTime = *r.StartTime
	}
	if r.EndTime != nil {
		cfg.EndTime = *r.EndTime
	}
	return cfg
}

func variantSpecs(in []variantReq) []domain.VariantSpec {
	out := make([]domain.VariantSpec, len(in))
	for i, v := range in {
		out[i] = domain.VariantSpec(v)
	}
	return out
}

type variantResp struct {
	ID           string `json:"id"`
	Position     int    `json:"position"`
	Name         string `json:"name"`
	VideoRef     string `json:"videoRef"`
	ThumbnailRef string `json:"thumbnailRef"`
	Description  string `json:"description,omitempty"`
}

type experimentResp struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	ProductName      string        `json:"productName"`
	TargetPopulation int           `json:"targetPopulation"`
	StartTime        time.Time     `json:"startTime"`
	EndTime          time.Time     `json:"endTime"`
	Status           domain.Status `json:"status"`
	TotalGain        *float64      `json:"totalGain"`
	Version          int64         `json:"version"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
	Variants         []variantResp `json:"variants"`
}

func toVariantResps(vs []domain.Variant) []variantResp {
	out := make([]variantResp, len(vs))
	for i, v := range vs {
		out[i] = variantResp{
			ID:           v.ID,
			Position:     v.Position,
			Name:         v.Name,
			VideoRef:     v.VideoRef,
			ThumbnailRef: v.ThumbnailRef,
			Description:  v.Description,
		}
	}
	return out
}

func toExperimentResp(e *domain.Experiment) experimentResp {
	return experimentResp{
		ID:               e.ID,
		Name:             e.Name,
		ProductName:      e.ProductName,
		TargetPopulation: e.TargetPopulation,
		StartTime:        e.StartTime,
		EndTime:          e.EndTime,
		Status:           e.Status,
		TotalGain:        e.TotalGain,
		Version:          e.Version,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
		Variants:         toVariantResps(e.Variants),
	}
}

type transitionResp struct {
	From domain.Status `json:"from,omitempty"`
	To   domain.Status `json:"to"`
	At   time.Time     `json:"at"`
}

type eventReq struct {
	ExperimentID  string           `json:"experimentId,omitempty"`
	VariantID     string           `json:"variantId"`
	Kind          domain.EventKind `json:"kind"`
	Timestamp     *time.Time       `json:"timestamp"`
	ClientEventID string           `json:"clientEventId"`
}

func (e eventReq) record(experimentID string) port.RecordEventReq {
	req := port.RecordEventReq{
		ExperimentID:  experimentID,
		VariantID:     e.VariantID,
		Kind:          e.Kind,
		ClientEventID: e.ClientEventID,
	}
	if e.ExperimentID != "" {
		req.ExperimentID = e.ExperimentID
	}
	if e.Timestamp != nil {
		req.Timestamp = *e.Timestamp
	}
	return req
}

type ackResp struct {
	EventID    string    `json:"eventId,omitempty"`
	Duplicate  bool      `json:"duplicate"`
	ReceivedAt time.Time `json:"receivedAt"`
}

type batchReq struct {
	Events []eventReq `json:"events"`
}

type batchItemResp struct {
	Index   int        `json:"index"`
	Outcome string     `json:"outcome"`
	Ack     *ackResp   `json:"ack,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type batchResp struct {
	Accepted   int             `json:"accepted"`
	Duplicates int             `json:"duplicates"`
	Rejected   int             `json:"rejected"`
	Results    []batchItemResp `json:"results"`
}

type variantCountResp struct {
	VariantID   string `json:"variantId"`
	Views       int64  `json:"views"`
	Conversions int64  `json:"conversions"`
}

type bucketResp struct {
	Start    time.Time          `json:"start"`
	Variants []variantCountResp `json:"variants"`
}

type totalsResp struct {
	VariantID      string  `json:"variantId"`
	Name           string  `json:"name"`
	Position       int     `json:"position"`
	Views          int64   `json:"views"`
	Conversions    int64   `json:"conversions"`
	ConversionRate float64 `json:"conversionRate"`
}

type seriesResp struct {
	ExperimentID       string       `json:"experimentId"`
	TimeRange          string       `json:"timeRange"`
	From               time.Time    `json:"from"`
	To                 time.Time    `json:"to"`
	BucketWidthSeconds int64        `json:"bucketWidthSeconds"`
	Buckets            []bucketResp `json:"buckets"`
	Totals             []totalsResp `json:"totals"`
	LiftPercentage     *float64     `json:"liftPercentage"`
	ConfidenceProxy    float64      `json:"confidenceProxy"`
}

func toSeriesResp(s *domain.Series) seriesResp {
	out := seriesResp{
		ExperimentID:       s.ExperimentID,
		TimeRange:          string(s.Range),
		From:               s.From,
		To:                 s.To,
		BucketWidthSeconds: int64(s.BucketWidth / time.Second),
		Buckets:            make([]bucketResp, len(s.Buckets)),
		Totals:             make([]totalsResp, len(s.Totals)),
		LiftPercentage:     s.LiftPercentage,
		ConfidenceProxy:    s.ConfidenceProxy,
	}
	for i, b := range s.Buckets {
		vc := make([]variantCountResp, len(b.Variants))
		for j, c := range b.Variants {
			vc[j] = variantCountResp(c)
		}
		out.Buckets[i] = bucketResp{Start: b.Start, Variants: vc}
	}
	for i, t := range s.Totals {
		out.Totals[i] = totalsResp(t)
	}
	return out
}

type standingResp struct {
	VariantID   string  `json:"variantId"`
	Name        string  `json:"name"`
	Position    int     `json:"position"`
	Views       int64   `json:"views"`
	Conversions int64   `json:"conversions"`
	Rate        float64 `json:"conversionRate"`
}

type verdictResp struct {
	ExperimentID      string         `json:"experimentId"`
	WinningVariantID  string         `json:"winningVariantId,omitempty"`
	RunnerUpVariantID string         `json:"runnerUpVariantId,omitempty"`
	LiftPercentage    *float64       `json:"liftPercentage"`
	InsufficientData  bool           `json:"insufficientData"`
	MinSampleViews    int64          `json:"minSampleViews"`
	Headline          string         `json:"headline"`
	Standings         []standingResp `json:"standings"`
}

func toVerdictResp(v domain.Verdict) verdictResp {
	out := verdictResp{
		ExperimentID:      v.ExperimentID,
		WinningVariantID:  v.WinningVariantID,
		RunnerUpVariantID: v.RunnerUpVariantID,
		LiftPercentage:    v.LiftPercentage,
		InsufficientData:  v.InsufficientData,
		MinSampleViews:    v.MinSampleViews,
		Headline:          v.Headline(),
		Standings:         make([]standingResp, len(v.Standings)),
	}
	for i, s := range v.Standings {
		out.Standings[i] = standingResp(s)
	}
	return out
}

type analysisResp struct {
	ExperimentID     string             `json:"experimentId"`
	Summary          string             `json:"summary"`
	Recommendation   string             `json:"recommendation"`
	WinningVariantID string             `json:"winningVariantId,omitempty"`
	LiftPercentage   *float64           `json:"liftPercentage"`
	InsufficientData bool               `json:"insufficientData"`
	ProseStatus      domain.ProseStatus `json:"proseStatus"`
	Verdict          verdictResp        `json:"verdict"`
	GeneratedAt      time.Time          `json:"generatedAt"`
}

func toAnalysisResp(a *domain.AnalysisResult) analysisResp {
	return analysisResp{
		ExperimentID:     a.ExperimentID,
		Summary:          a.Summary,
		Recommendation:   a.Recommendation,
		WinningVariantID: a.WinningVariantID,
		LiftPercentage:   a.LiftPercentage,
		InsufficientData: a.InsufficientData,
		ProseStatus:      a.ProseStatus,
		Verdict:          toVerdictResp(a.Verdict),
		GeneratedAt:      a.GeneratedAt,
	}
}

type uploadReq struct {
	Kind        domain.MediaKind `json:"kind"`
	FileName    string           `json:"fileName"`
	ContentType string           `json:"contentType"`
}

type uploadResp struct {
	UploadURL string            `json:"uploadUrl"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers,omitempty"`
	Locator   string            `json:"locator"`
	ExpiresAt time.Time         `json:"expiresAt"`
}
