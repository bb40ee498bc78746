package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ivankudzin/swipematch/internal/domain/model"
)

const (
	swipesMinuteWindow = time.Minute
	swipes10SecWindow  = 10 * time.Second
)

type WindowStore interface {
	Hit(ctx context.Context, key string, window time.Duration) (model.RateWindow, error)
	Peek(ctx context.Context, key string) (model.RateWindow, error)
}

// Limiter caps swipes per actor over a one-minute and a ten-second window.
// A zero limit disables that window.
type Limiter struct {
	store     WindowStore
	perMinute int
	per10Sec  int
}

func NewLimiter(store WindowStore, perMinute, per10Sec int) *Limiter {
	if perMinute < 0 {
		perMinute = 0
	}
	if per10Sec < 0 {
		per10Sec = 0
	}

	return &Limiter{
		store:     store,
		perMinute: perMinute,
		per10Sec:  per10Sec,
	}
}

// AllowSwipe counts one swipe and returns how many seconds the actor must wait
// when it exceeds a window.
func (l *Limiter) AllowSwipe(ctx context.Context, userID string) (int64, bool, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, false, fmt.Errorf("invalid user id")
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	retryAfterSec := int64(0)
	for _, w := range l.windows(userID) {
		state, err := l.store.Hit(ctx, w.key, w.length)
		if err != nil {
			return 0, false, err
		}
		if state.Count > int64(w.limit) {
			retryAfterSec = max(retryAfterSec, ceilSeconds(state.ResetIn))
		}
	}

	if retryAfterSec > 0 {
		return retryAfterSec, false, nil
	}
	return 0, true, nil
}

// RetryAfter reports the current wait without counting a swipe.
func (l *Limiter) RetryAfter(ctx context.Context, userID string) (int64, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, fmt.Errorf("invalid user id")
	}
	if l.store == nil {
		return 0, fmt.Errorf("rate limiter store is nil")
	}

	retryAfterSec := int64(0)
	for _, w := range l.windows(userID) {
		state, err := l.store.Peek(ctx, w.key)
		if err != nil {
			return 0, err
		}
		if state.Count >= int64(w.limit) {
			retryAfterSec = max(retryAfterSec, ceilSeconds(state.ResetIn))
		}
	}
	return retryAfterSec, nil
}

type window struct {
	key    string
	length time.Duration
	limit  int
}

func (l *Limiter) windows(userID string) []window {
	out := make([]window, 0, 2)
	if l.perMinute > 0 {
		out = append(out, window{key: "rate:swipes:min:" + userID, length: swipesMinuteWindow, limit: l.perMinute})
	}
	if l.per10Sec > 0 {
		out = append(out, window{key: "rate:swipes:10s:" + userID, length: swipes10SecWindow, limit: l.per10Sec})
	}
	return out
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	if sec <= 0 {
		sec = 1
	}
	return sec
}
