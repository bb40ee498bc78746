package delivery

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ivankudzin/swipematch/internal/services/connections"
	"github.com/ivankudzin/swipematch/internal/services/eventbus"
)

type Source interface {
	SubscribeAll() (*eventbus.Subscription, error)
}

type Resolver interface {
	ConnectionsFor(userID string) []connections.Handle
}

// Pump forwards events published on user topics to that user's live
// connections. A handle that cannot take the message loses it.
type Pump struct {
	source   Source
	resolver Resolver
	logger   *zap.Logger
}

func NewPump(source Source, resolver Resolver, logger *zap.Logger) *Pump {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pump{source: source, resolver: resolver, logger: logger}
}

// Run delivers until ctx is done or the bus closes.
func (p *Pump) Run(ctx context.Context) error {
	if p.source == nil || p.resolver == nil {
		return fmt.Errorf("delivery pump dependencies are not configured")
	}

	sub, err := p.source.SubscribeAll()
	if err != nil {
		return fmt.Errorf("subscribe to event bus: %w", err)
	}
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case env, ok := <-sub.Events():
			if !ok {
				return nil
			}
			p.deliver(env)
		}
	}
}

func (p *Pump) deliver(env eventbus.Envelope) {
	userID, ok := eventbus.ParseUserTopic(env.Topic)
	if !ok {
		return
	}

	handles := p.resolver.ConnectionsFor(userID)
	if len(handles) == 0 {
		return
	}

	payload, err := Encode(env.Event)
	if err != nil {
		p.logger.Warn("encode event failed", zap.String("topic", env.Topic), zap.Error(err))
		return
	}

	for _, h := range handles {
		if !h.Send(payload) {
			p.logger.Warn("event delivery failed",
				zap.String("user_id", userID),
				zap.String("connection_id", h.ID()),
			)
		}
	}
}
