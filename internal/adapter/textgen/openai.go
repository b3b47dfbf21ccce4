// Package textgen phrases experiment verdicts through an OpenAI compatible
// Responses API.
package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"videoab/internal/config/configs"
	"videoab/internal/core/domain"
	"videoab/internal/core/port"
)

// ErrNotConfigured is returned by New when no API key is set.
var ErrNotConfigured = errors.New("text generator API key is not configured")

const systemPrompt = `You write short analyses of video A/B experiments for marketing teams.
You receive the experiment and a verdict computed by the analytics engine.
Never change the winner, the lift or any number; only explain them.
If the verdict reports insufficient data, say so and recommend collecting more views.
Answer with JSON containing "summary" (at most three sentences) and "recommendation" (one sentence).`

var analysisSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"summary":        map[string]any{"type": "string"},
		"recommendation": map[string]any{"type": "string"},
	},
	"required":             []string{"summary", "recommendation"},
	"additionalProperties": false,
}

// Client implements port.TextGenerator.
type Client struct {
	log        *slog.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
}

// New returns a client for cfg, or ErrNotConfigured without an API key.
func New(cfg configs.TextGen, log *slog.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if log == nil {
		return nil, errors.New("logger required")
	}
	return &Client{
		log:        log.With("service", "TextGenerator"),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     apiKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
		backoff:    time.Second,
	}, nil
}

var _ port.TextGenerator = (*Client)(nil)

type httpError struct {
	StatusCode int
	Body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("text generator http %d: %s", e.StatusCode, e.Body)
}

type responsesRequest struct {
	Model string `json:"model"`
	Input []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"input"`
	Text struct {
		Format map[string]any `json:"format,omitempty"`
	} `json:"text"`
	Temperature float64 `json:"temperature,omitempty"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role,omitempty"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
	Refusal string `json:"refusal,omitempty"`
}

// GenerateAnalysis asks the model for a summary and a recommendation of
// verdict. The numeric verdict is passed in verbatim and never read back.
func (c *Client) GenerateAnalysis(ctx context.Context, exp domain.Experiment, verdict domain.Verdict) (domain.Prose, error) {
	req := responsesRequest{Model: c.model, Temperature: 0.2}
	req.Input = append(req.Input,
		struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}{Role: "system", Content: systemPrompt},
		struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}{Role: "user", Content: describe(exp, verdict)},
	)
	req.Text.Format = map[string]any{
		"type":   "json_schema",
		"name":   "experiment_analysis",
		"schema": analysisSchema,
		"strict": true,
	}

	var resp responsesResponse
	if err := c.do(ctx, http.MethodPost, "/v1/responses", req, &resp); err != nil {
		return domain.Prose{}, err
	}
	if resp.Refusal != "" {
		return domain.Prose{}, fmt.Errorf("model refused: %s", resp.Refusal)
	}
	text := extractOutputText(resp)
	if strings.TrimSpace(text) == "" {
		return domain.Prose{}, errors.New("no output_text found in response")
	}
	var out struct {
		Summary        string `json:"summary"`
		Recommendation string `json:"recommendation"`
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return domain.Prose{}, fmt.Errorf("parse model JSON: %w", err)
	}
	return domain.Prose{Summary: out.Summary, Recommendation: out.Recommendation}, nil
}

func describe(exp domain.Experiment, v domain.Verdict) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Experiment %q for product %q, target population %d, window %s to %s.\n",
		exp.Name, exp.ProductName, exp.TargetPopulation,
		exp.StartTime.Format(time.RFC3339), exp.EndTime.Format(time.RFC3339))
	b.WriteString("Variants ranked best first:\n")
	for i, s := range v.Standings {
		fmt.Fprintf(&b, "%d. %s: %d views, %d conversions, conversion rate %.2f%%\n",
			i+1, s.Name, s.Views, s.Conversions, s.Rate*100)
	}
	fmt.Fprintf(&b, "Verdict: %s\n", v.Headline())
	return b.String()
}

func extractOutputText(resp responsesResponse) string {
	var out strings.Builder
	for _, item := range resp.Output {
		if item.Type == "message" && item.Role == "assistant" {
			for _, c := range item.Content {
				if c.Type == "output_text" && c.Text != "" {
					out.WriteString(c.Text)
				}
			}
		}
	}
	return out.String()
}

func (c *Client) doOnce(ctx context.Context, method, path string, body any) ([]byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return raw, &httpError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	backoff := c.backoff
	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		raw, err := c.doOnce(ctx, method, path, body)
		if err == nil {
			if out == nil {
				return nil
			}
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("text generator decode error: %w", uErr)
			}
			return nil
		}
		if !retryable(err) || attempt >= c.maxRetries {
			return err
		}

		c.log.Warn("text generator request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", backoff.String(),
			"error", err.Error(),
		)
		t := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		backoff *= 2
	}
}

func retryable(err error) bool {
	var herr *httpError
	if errors.As(err, &herr) {
		return herr.StatusCode == http.StatusTooManyRequests || herr.StatusCode >= 500
	}
	var nerr net.Error
	return errors.As(err, &nerr)
}
