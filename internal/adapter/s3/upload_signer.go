// Package s3 issues presigned upload URLs for variant media.
package s3

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"videoab/internal/config/configs"
	"videoab/internal/core/domain"
	"videoab/internal/core/port"
)

// UploadSigner implements port.UploadSigner with S3 presigned PUT requests.
type UploadSigner struct {
	presign *s3.PresignClient
	bucket  string
	now     func() time.Time
}

// NewUploadSigner builds the S3 client from cfg. Static keys are only used
// when both are set; otherwise the default AWS credential chain applies.
func NewUploadSigner(ctx context.Context, cfg configs.Storage) (*UploadSigner, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket is required")
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.UsePathStyle
		})
	}
	client := s3.NewFromConfig(awsCfg, s3Opts...)
	return &UploadSigner{
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		now:     time.Now,
	}, nil
}

var _ port.UploadSigner = (*UploadSigner)(nil)

// PresignUpload signs a PUT of key with the given content type. The client
// must send the returned headers unchanged.
func (s *UploadSigner) PresignUpload(ctx context.Context, key, contentType string, ttl time.Duration) (domain.UploadGrant, error) {
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return domain.UploadGrant{}, fmt.Errorf("presign put object: %w", err)
	}
	return domain.UploadGrant{
		UploadURL: req.URL,
		Method:    req.Method,
		Headers:   flattenHeaders(req.SignedHeader),
		Locator:   "s3://" + s.bucket + "/" + key,
		ExpiresAt: s.now().UTC().Add(ttl),
	}, nil
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) == 0 || http.CanonicalHeaderKey(k) == "Host" {
			continue
		}
		out[http.CanonicalHeaderKey(k)] = v[0]
	}
	return out
}
