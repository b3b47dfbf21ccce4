package domain

import (
	"strings"
	"testing"
)

func TestValidateLocator(t *testing.T) {
	valid := []string{
		"s3://bucket/videos/a.mp4",
		"gs://bucket/thumbs/a.jpg",
		"https://cdn.example.com/v/a.mp4",
		"HTTP://cdn.example.com/v/a.mp4",
	}
	for _, ref := range valid {
		if err := ValidateLocator(ref); err != nil {
			t.Errorf("%q: unexpected error %v", ref, err)
		}
	}

	invalid := map[string]string{
		"":                         "is required",
		"videos/a.mp4":             "schemes",
		"ftp://host/a.mp4":         "schemes",
		"s3:///a.mp4":              "bucket or host",
		"s3://bucket":              "object key",
		"s3://bucket/a b.mp4":      "whitespace",
		"s3://bucket/" + strings.Repeat("k", 2048): "too long",
	}
	for ref, want := range invalid {
		err := ValidateLocator(ref)
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Errorf("%.40q: got %v, want error containing %q", ref, err, want)
		}
	}
}
