package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ivankudzin/swipematch/internal/domain/model"
)

type rateWindow struct {
	count    int64
	expireAt time.Time
}

const purgeInterval = time.Minute

// RateWindows is a fixed-window counter store for running without Redis.
// Expired windows are purged from Hit at most once per purgeInterval.
type RateWindows struct {
	mu         sync.Mutex
	windows    map[string]rateWindow
	lastPurged time.Time
	now        func() time.Time
}

func NewRateWindows() *RateWindows {
	return &RateWindows{
		windows: make(map[string]rateWindow),
		now:     time.Now,
	}
}

func (r *RateWindows) Hit(_ context.Context, key string, window time.Duration) (model.RateWindow, error) {
	if key == "" || window <= 0 {
		return model.RateWindow{}, fmt.Errorf("invalid rate window payload")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if now.Sub(r.lastPurged) >= purgeInterval {
		r.purgeLocked(now)
	}

	w, ok := r.windows[key]
	if !ok || !now.Before(w.expireAt) {
		w = rateWindow{expireAt: now.Add(window)}
	}
	w.count++
	r.windows[key] = w

	return model.RateWindow{Count: w.count, ResetIn: w.expireAt.Sub(now)}, nil
}

func (r *RateWindows) Peek(_ context.Context, key string) (model.RateWindow, error) {
	if key == "" {
		return model.RateWindow{}, fmt.Errorf("rate key is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	w, ok := r.windows[key]
	if !ok || !now.Before(w.expireAt) {
		delete(r.windows, key)
		return model.RateWindow{}, nil
	}
	return model.RateWindow{Count: w.count, ResetIn: w.expireAt.Sub(now)}, nil
}

func (r *RateWindows) purgeLocked(now time.Time) {
	for key, w := range r.windows {
		if !now.Before(w.expireAt) {
			delete(r.windows, key)
		}
	}
	r.lastPurged = now
}
