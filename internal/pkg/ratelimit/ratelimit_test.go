package ratelimit

import (
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, max int64, window time.Duration) (*FixedWindow, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewFixedWindow(client, "test:limit", max, window), srv
}

func TestFixedWindowAllow(t *testing.T) {
	t.Run("allows up to max then limits", func(t *testing.T) {
		limiter, _ := newTestLimiter(t, 3, time.Minute)

		for i := range 3 {
			if err := limiter.Allow(t.Context(), "ana@example.com"); err != nil {
				t.Fatalf("Allow attempt %d error = %v", i+1, err)
			}
		}

		if err := limiter.Allow(t.Context(), "ana@example.com"); !errors.Is(err, ErrLimited) {
			t.Fatalf("Allow after max error = %v, want ErrLimited", err)
		}
	})

	t.Run("keys are counted independently", func(t *testing.T) {
		limiter, _ := newTestLimiter(t, 1, time.Minute)

		if err := limiter.Allow(t.Context(), "ana@example.com"); err != nil {
			t.Fatalf("Allow first key error = %v", err)
		}
		if err := limiter.Allow(t.Context(), "bill@example.com"); err != nil {
			t.Fatalf("Allow second key error = %v", err)
		}
		if err := limiter.Allow(t.Context(), "ana@example.com"); !errors.Is(err, ErrLimited) {
			t.Fatalf("Allow exhausted key error = %v, want ErrLimited", err)
		}
	})

	t.Run("window expiry resets the counter", func(t *testing.T) {
		limiter, srv := newTestLimiter(t, 1, time.Minute)

		if err := limiter.Allow(t.Context(), "ana@example.com"); err != nil {
			t.Fatalf("Allow error = %v", err)
		}
		if err := limiter.Allow(t.Context(), "ana@example.com"); !errors.Is(err, ErrLimited) {
			t.Fatalf("Allow error = %v, want ErrLimited", err)
		}

		srv.FastForward(2 * time.Minute)

		if err := limiter.Allow(t.Context(), "ana@example.com"); err != nil {
			t.Fatalf("Allow after window error = %v", err)
		}
	})

	t.Run("fails open when redis is down", func(t *testing.T) {
		limiter, srv := newTestLimiter(t, 1, time.Minute)
		srv.Close()

		if err := limiter.Allow(t.Context(), "ana@example.com"); err != nil {
			t.Fatalf("Allow with redis down error = %v, want nil", err)
		}
	})
}
