package port

import (
	"context"
	"errors"
	"time"

	"videoab/internal/core/domain"
)

// ErrCacheMiss is returned by AnalysisCache.Get when no entry exists.
var ErrCacheMiss = errors.New("analysis cache miss")

// TextGenerator turns a verdict into prose. It is slow and unreliable by
// nature; callers must bound it with a deadline and survive its failures.
// Implementations must not change the winner or the lift, only phrase them.
type TextGenerator interface {
	GenerateAnalysis(ctx context.Context, exp domain.Experiment, verdict domain.Verdict) (domain.Prose, error)
}

// UploadSigner issues direct-to-storage upload slots.
type UploadSigner interface {
	// PresignUpload returns a grant for uploading an object under key.
	PresignUpload(ctx context.Context, key, contentType string, ttl time.Duration) (domain.UploadGrant, error)
}

// AnalysisCache stores finished analyses.
type AnalysisCache interface {
	Get(ctx context.Context, key string) (*domain.AnalysisResult, error)
	Set(ctx context.Context, key string, result domain.AnalysisResult, ttl time.Duration) error
}
