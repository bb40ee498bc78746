package eventbus

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

const (
	defaultQueueSize        = 1024
	defaultSubscriberBuffer = 256
)

var (
	ErrBusClosed    = errors.New("event bus is closed")
	ErrQueueFull    = errors.New("event bus queue is full")
	ErrInvalidTopic = errors.New("invalid topic")
)

// Envelope is one published event together with its topic.
type Envelope struct {
	Topic string
	Event any
}

// Bus is an in-process publish/subscribe hub. Publish only enqueues; a single
// dispatcher goroutine fans events out, so subscribers of one topic see events
// in publish order. A subscriber that falls behind loses events rather than
// slowing the publisher.
type Bus struct {
	logger *zap.Logger
	buffer int
	queue  chan Envelope
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
	topics map[string]map[*Subscription]struct{}
	all    map[*Subscription]struct{}

	dropped atomic.Uint64
}

func New(queueSize, subscriberBuffer int, logger *zap.Logger) *Bus {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if subscriberBuffer <= 0 {
		subscriberBuffer = defaultSubscriberBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	b := &Bus{
		logger: logger,
		buffer: subscriberBuffer,
		queue:  make(chan Envelope, queueSize),
		done:   make(chan struct{}),
		topics: make(map[string]map[*Subscription]struct{}),
		all:    make(map[*Subscription]struct{}),
	}
	go b.dispatch()
	return b
}

// Publish enqueues event for topic and returns without waiting for delivery.
// Events on topics nobody listens to are discarded before they reach the queue.
func (b *Bus) Publish(topic string, event any) error {
	if strings.TrimSpace(topic) == "" {
		return ErrInvalidTopic
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}
	if len(b.topics[topic]) == 0 && len(b.all) == 0 {
		return nil
	}

	select {
	case b.queue <- Envelope{Topic: topic, Event: event}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe starts receiving events published to topic after this call.
func (b *Bus) Subscribe(topic string) (*Subscription, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, ErrInvalidTopic
	}
	return b.subscribe(topic, false)
}

// SubscribeAll receives every event on every topic.
func (b *Bus) SubscribeAll() (*Subscription, error) {
	return b.subscribe("", true)
}

func (b *Bus) subscribe(topic string, all bool) (*Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBusClosed
	}

	sub := &Subscription{
		bus:   b,
		topic: topic,
		all:   all,
		ch:    make(chan Envelope, b.buffer),
	}
	if all {
		b.all[sub] = struct{}{}
		return sub, nil
	}

	set, ok := b.topics[topic]
	if !ok {
		set = make(map[*Subscription]struct{})
		b.topics[topic] = set
	}
	set[sub] = struct{}{}
	return sub, nil
}

// Dropped counts events discarded because a subscriber buffer was full.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// Close stops accepting events, delivers what is already queued and closes
// every subscription channel.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		<-b.done
		return
	}
	b.closed = true
	close(b.queue)
	b.mu.Unlock()

	<-b.done
}

func (b *Bus) dispatch() {
	defer close(b.done)

	for env := range b.queue {
		b.mu.RLock()
		for sub := range b.topics[env.Topic] {
			b.deliver(sub, env)
		}
		for sub := range b.all {
			b.deliver(sub, env)
		}
		b.mu.RUnlock()
	}

	b.mu.Lock()
	for _, set := range b.topics {
		for sub := range set {
			sub.closeLocked()
		}
	}
	for sub := range b.all {
		sub.closeLocked()
	}
	b.topics = make(map[string]map[*Subscription]struct{})
	b.all = make(map[*Subscription]struct{})
	b.mu.Unlock()
}

func (b *Bus) deliver(sub *Subscription, env Envelope) {
	select {
	case sub.ch <- env:
	default:
		n := b.dropped.Add(1)
		b.logger.Warn("event dropped for slow subscriber",
			zap.String("topic", env.Topic),
			zap.Uint64("dropped_total", n),
		)
	}
}

type Subscription struct {
	bus    *Bus
	topic  string
	all    bool
	ch     chan Envelope
	closed bool
}

// Events yields envelopes in publish order. The channel is closed when the
// subscription or the bus is closed.
func (s *Subscription) Events() <-chan Envelope {
	return s.ch
}

func (s *Subscription) Topic() string {
	return s.topic
}

func (s *Subscription) Close() {
	b := s.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if s.closed {
		return
	}

	if s.all {
		delete(b.all, s)
	} else if set, ok := b.topics[s.topic]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(b.topics, s.topic)
		}
	}
	s.closeLocked()
}

func (s *Subscription) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
