package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ivankudzin/swipematch/internal/domain/model"
)

type RateRepo struct {
	client *goredis.Client
}

func NewRateRepo(client *goredis.Client) *RateRepo {
	return &RateRepo{client: client}
}

// Hit counts one event in the window stored under key. The window starts with
// the first hit; later hits never extend it.
func (r *RateRepo) Hit(ctx context.Context, key string, window time.Duration) (model.RateWindow, error) {
	if r.client == nil {
		return model.RateWindow{}, fmt.Errorf("redis client is nil")
	}
	if key == "" || window <= 0 {
		return model.RateWindow{}, fmt.Errorf("invalid rate window payload")
	}

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return model.RateWindow{}, fmt.Errorf("increment rate key: %w", err)
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return model.RateWindow{}, fmt.Errorf("set rate key ttl: %w", err)
		}
	}

	ttl, err := r.ttl(ctx, key)
	if err != nil {
		return model.RateWindow{}, err
	}
	return model.RateWindow{Count: count, ResetIn: ttl}, nil
}

// Peek reads the window without counting.
func (r *RateRepo) Peek(ctx context.Context, key string) (model.RateWindow, error) {
	if r.client == nil {
		return model.RateWindow{}, fmt.Errorf("redis client is nil")
	}
	if key == "" {
		return model.RateWindow{}, fmt.Errorf("rate key is required")
	}

	count, err := r.client.Get(ctx, key).Int64()
	if err == goredis.Nil {
		return model.RateWindow{}, nil
	}
	if err != nil {
		return model.RateWindow{}, fmt.Errorf("get rate key state: %w", err)
	}

	ttl, err := r.ttl(ctx, key)
	if err != nil {
		return model.RateWindow{}, err
	}
	return model.RateWindow{Count: count, ResetIn: ttl}, nil
}

func (r *RateRepo) ttl(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := r.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("read rate key ttl: %w", err)
	}
	if ttl < 0 {
		ttl = 0
	}
	return ttl, nil
}
