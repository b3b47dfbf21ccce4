package textgen

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"videoab/internal/config/configs"
	"videoab/internal/core/domain"
)

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := New(configs.TextGen{
		APIKey:     "test-key",
		BaseURL:    url,
		Model:      "test-model",
		Timeout:    5 * time.Second,
		MaxRetries: 2,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	c.backoff = time.Millisecond
	return c
}

func testVerdict() (domain.Experiment, domain.Verdict) {
	lift := 50.0
	return domain.Experiment{Name: "Hero", ProductName: "Runner", TargetPopulation: 100},
		domain.Verdict{
			WinningVariantID: "a",
			Standings: []domain.Standing{
				{VariantID: "a", Name: "Control", Views: 100, Conversions: 60, Rate: 0.6},
				{VariantID: "b", Name: "Bold", Views: 100, Conversions: 40, Rate: 0.4},
			},
			LiftPercentage: &lift,
		}
}

func writeOutput(t *testing.T, w http.ResponseWriter, text string) {
	t.Helper()
	resp := map[string]any{
		"output": []any{map[string]any{
			"type": "message",
			"role": "assistant",
			"content": []any{map[string]any{
				"type": "output_text",
				"text": text,
			}},
		}},
	}
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(resp))
}

func TestGenerateAnalysis(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/responses", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req responsesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "test-model", req.Model)
		require.Equal(t, "json_schema", req.Text.Format["type"])
		require.Len(t, req.Input, 2)
		require.Contains(t, req.Input[1].Content, "Control leads")

		writeOutput(t, w, `{"summary":"Control converts best.","recommendation":"Roll out Control."}`)
	}))
	defer srv.Close()

	exp, v := testVerdict()
	prose, err := newTestClient(t, srv.URL).GenerateAnalysis(context.Background(), exp, v)
	require.NoError(t, err)
	require.Equal(t, "Control converts best.", prose.Summary)
	require.Equal(t, "Roll out Control.", prose.Recommendation)
}

func TestGenerateAnalysisRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		writeOutput(t, w, `{"summary":"s","recommendation":"r"}`)
	}))
	defer srv.Close()

	exp, v := testVerdict()
	_, err := newTestClient(t, srv.URL).GenerateAnalysis(context.Background(), exp, v)
	require.NoError(t, err)
	require.Equal(t, int32(3), calls.Load())
}

func TestGenerateAnalysisDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	exp, v := testVerdict()
	_, err := newTestClient(t, srv.URL).GenerateAnalysis(context.Background(), exp, v)
	var herr *httpError
	require.ErrorAs(t, err, &herr)
	require.Equal(t, http.StatusUnauthorized, herr.StatusCode)
	require.Equal(t, int32(1), calls.Load())
}

func TestNewWithoutKey(t *testing.T) {
	_, err := New(configs.TextGen{}, slog.Default())
	require.ErrorIs(t, err, ErrNotConfigured)
}
