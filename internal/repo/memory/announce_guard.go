package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// AnnounceGuard is a process-local record of announced match pairs.
type AnnounceGuard struct {
	pairs sync.Map
}

func NewAnnounceGuard() *AnnounceGuard {
	return &AnnounceGuard{}
}

func (g *AnnounceGuard) TryAnnounce(_ context.Context, pairKey string) (bool, error) {
	if strings.TrimSpace(pairKey) == "" {
		return false, fmt.Errorf("pair key is required")
	}
	_, loaded := g.pairs.LoadOrStore(pairKey, time.Now().UTC())
	return !loaded, nil
}

func (g *AnnounceGuard) Release(_ context.Context, pairKey string) error {
	g.pairs.Delete(pairKey)
	return nil
}
