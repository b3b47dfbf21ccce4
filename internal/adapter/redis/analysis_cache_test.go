package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"videoab/internal/core/domain"
	"videoab/internal/core/port"
)

// TestUnreachableRedisIsNotAMiss ensures connection failures surface as
// errors instead of being mistaken for an empty cache.
func TestUnreachableRedisIsNotAMiss(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewAnalysisCache(client)

	_, err := cache.Get(context.Background(), "analysis:x:0")
	require.Error(t, err)
	require.False(t, errors.Is(err, port.ErrCacheMiss))

	err = cache.Set(context.Background(), "analysis:x:0", domain.AnalysisResult{ExperimentID: "x"}, time.Minute)
	require.Error(t, err)
}

// memoryHook answers GET and SET from a map before any connection is
// dialled, so the client runs its real command encoding without a server.
type memoryHook struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newMemoryHook() *memoryHook {
	return &memoryHook{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (h *memoryHook) DialHook(next goredis.DialHook) goredis.DialHook {
	return func(context.Context, string, string) (net.Conn, error) {
		return nil, errors.New("dial not expected")
	}
}

func (h *memoryHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(_ context.Context, cmd goredis.Cmder) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		args := cmd.Args()
		switch c := cmd.(type) {
		case *goredis.StringCmd:
			v, ok := h.data[fmt.Sprint(args[1])]
			if !ok {
				c.SetErr(goredis.Nil)
				return goredis.Nil
			}
			c.SetVal(v)
		case *goredis.StatusCmd:
			key := fmt.Sprint(args[1])
			switch v := args[2].(type) {
			case []byte:
				h.data[key] = string(v)
			default:
				h.data[key] = fmt.Sprint(v)
			}
			if len(args) == 5 && strings.EqualFold(fmt.Sprint(args[3]), "px") {
				h.ttls[key] = time.Duration(args[4].(int64)) * time.Millisecond
			}
			if len(args) == 5 && strings.EqualFold(fmt.Sprint(args[3]), "ex") {
				h.ttls[key] = time.Duration(args[4].(int64)) * time.Second
			}
			c.SetVal("OK")
		default:
			return fmt.Errorf("unexpected command %v", args)
		}
		return nil
	}
}

func (h *memoryHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return next
}

func TestAnalysisCacheRoundTrip(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = client.Close() })
	hook := newMemoryHook()
	client.AddHook(hook)
	cache := NewAnalysisCache(client)
	ctx := context.Background()

	_, err := cache.Get(ctx, "analysis:e1:3")
	require.ErrorIs(t, err, port.ErrCacheMiss)

	lift := 50.0
	at := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	want := domain.AnalysisResult{
		ExperimentID:     "e1",
		Summary:          "B converts better.",
		Recommendation:   "Ship B.",
		WinningVariantID: "v2",
		LiftPercentage:   &lift,
		ProseStatus:      domain.ProseAvailable,
		Verdict: domain.Verdict{
			ExperimentID:      "e1",
			WinningVariantID:  "v2",
			RunnerUpVariantID: "v1",
			LiftPercentage:    &lift,
			MinSampleViews:    30,
			Standings: []domain.Standing{
				{VariantID: "v2", Name: "B", Position: 1, Views: 100, Conversions: 60, Rate: 0.6},
				{VariantID: "v1", Name: "A", Position: 0, Views: 100, Conversions: 40, Rate: 0.4},
			},
		},
		GeneratedAt: at,
	}
	require.NoError(t, cache.Set(ctx, "analysis:e1:3", want, 10*time.Minute))
	require.Equal(t, 10*time.Minute, hook.ttls["videoab:analysis:e1:3"])

	got, err := cache.Get(ctx, "analysis:e1:3")
	require.NoError(t, err)
	require.Equal(t, want, *got)

	_, err = cache.Get(ctx, "analysis:e1:4")
	require.ErrorIs(t, err, port.ErrCacheMiss)
}
