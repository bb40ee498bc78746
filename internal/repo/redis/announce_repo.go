package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const announcedPairPrefix = "match:announced:"

// AnnounceRepo marks match pairs as announced with SET NX. A zero ttl keeps the
// marker until it is released.
type AnnounceRepo struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewAnnounceRepo(client *goredis.Client, ttl time.Duration) *AnnounceRepo {
	if ttl < 0 {
		ttl = 0
	}
	return &AnnounceRepo{client: client, ttl: ttl}
}

func (r *AnnounceRepo) TryAnnounce(ctx context.Context, pairKey string) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(pairKey) == "" {
		return false, fmt.Errorf("pair key is required")
	}

	won, err := r.client.SetNX(ctx, announcedPairPrefix+pairKey, time.Now().UTC().Unix(), r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("set announce marker: %w", err)
	}
	return won, nil
}

func (r *AnnounceRepo) Release(ctx context.Context, pairKey string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(pairKey) == "" {
		return fmt.Errorf("pair key is required")
	}

	if err := r.client.Del(ctx, announcedPairPrefix+pairKey).Err(); err != nil {
		return fmt.Errorf("delete announce marker: %w", err)
	}
	return nil
}
