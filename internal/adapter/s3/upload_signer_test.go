package s3

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"videoab/internal/config/configs"
)

func TestPresignUpload(t *testing.T) {
	signer, err := NewUploadSigner(context.Background(), configs.Storage{
		Bucket:          "media",
		Region:          "us-east-1",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio-secret",
		UsePathStyle:    true,
	})
	require.NoError(t, err)

	grant, err := signer.PresignUpload(context.Background(), "media/video/2026/03/02/abc.mp4", "video/mp4", 10*time.Minute)
	require.NoError(t, err)
	require.Equal(t, "PUT", grant.Method)
	require.Equal(t, "s3://media/media/video/2026/03/02/abc.mp4", grant.Locator)
	require.Equal(t, "video/mp4", grant.Headers["Content-Type"])

	u, err := url.Parse(grant.UploadURL)
	require.NoError(t, err)
	require.Equal(t, "localhost:9000", u.Host)
	require.True(t, strings.HasPrefix(u.Path, "/media/media/video/"), u.Path)
	require.Equal(t, "600", u.Query().Get("X-Amz-Expires"))
}

func TestNewUploadSignerRequiresBucket(t *testing.T) {
	_, err := NewUploadSigner(context.Background(), configs.Storage{Region: "us-east-1"})
	require.Error(t, err)
}
