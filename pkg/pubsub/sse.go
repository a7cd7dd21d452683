package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/guptam/altimeter/pkg/logging"
)

// ErrClosed is returned by a closed publisher.
var ErrClosed = errors.New("publisher is closed")

// subscriberBuffer is the per-subscription channel capacity. A subscriber
// that falls this far behind starts losing events.
const subscriberBuffer = 64

// Option configures an SSEPublisher.
type Option func(*SSEPublisher)

// Retain keeps the last n events of topic and replays them, oldest first, to
// every new subscriber.
func Retain(topic string, n int) Option {
	return func(p *SSEPublisher) {
		p.topic(topic).retain = n
	}
}

type topicState struct {
	subs    map[*sseSubscription]struct{}
	version int
	retain  int
	history []Event
}

// SSEPublisher is an in-memory Publisher whose events are streamed to HTTP
// clients as server-sent events.
type SSEPublisher struct {
	mu     sync.Mutex
	topics map[string]*topicState
	closed bool
}

// NewSSEPublisher creates a publisher.
func NewSSEPublisher(opts ...Option) *SSEPublisher {
	p := &SSEPublisher{topics: make(map[string]*topicState)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// topic returns the state of name, creating it. Callers hold p.mu or own p.
func (p *SSEPublisher) topic(name string) *topicState {
	t, ok := p.topics[name]
	if !ok {
		t = &topicState{subs: make(map[*sseSubscription]struct{})}
		p.topics[name] = t
	}
	return t
}

// Subscribe registers a subscription to topic. It is closed when ctx ends.
func (p *SSEPublisher) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}

	t := p.topic(topic)
	sub := &sseSubscription{
		topic:     topic,
		events:    make(chan Event, subscriberBuffer),
		publisher: p,
	}
	t.subs[sub] = struct{}{}

	// Replayed under the lock so no live event can overtake the history.
	for _, ev := range t.history {
		sub.send(ev)
	}
	if len(t.history) > 0 {
		logging.Trace("replayed events to new subscriber", "topic", topic, "count", len(t.history))
	}

	go func() {
		<-ctx.Done()
		sub.Close()
	}()
	return sub, nil
}

// Publish marshals data and delivers it to every subscriber of topic without
// blocking.
func (p *SSEPublisher) Publish(topic string, eventType string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	t := p.topic(topic)
	t.version++
	ev := Event{Topic: topic, Type: eventType, Data: payload, Version: t.version}

	if t.retain > 0 {
		t.history = append(t.history, ev)
		if over := len(t.history) - t.retain; over > 0 {
			t.history = append([]Event(nil), t.history[over:]...)
		}
	}

	for sub := range t.subs {
		sub.send(ev)
	}
	return nil
}

// Close ends every subscription. Publishing afterwards fails with ErrClosed.
func (p *SSEPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	for _, t := range p.topics {
		for sub := range t.subs {
			close(sub.events)
		}
		t.subs = make(map[*sseSubscription]struct{})
	}
	return nil
}

// Subscribers returns the number of open subscriptions to topic.
func (p *SSEPublisher) Subscribers(topic string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.topics[topic]; ok {
		return len(t.subs)
	}
	return 0
}

func (p *SSEPublisher) unsubscribe(sub *sseSubscription) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.topics[sub.topic]; ok {
		delete(t.subs, sub)
	}
}

type sseSubscription struct {
	topic     string
	events    chan Event
	publisher *SSEPublisher

	mu     sync.Mutex
	closed bool
}

func (s *sseSubscription) Topic() string {
	return s.topic
}

func (s *sseSubscription) Events() <-chan Event {
	return s.events
}

// send delivers ev or drops it when the subscriber is behind. The caller
// holds the publisher lock, so events is still open.
func (s *sseSubscription) send(ev Event) {
	select {
	case s.events <- ev:
	default:
		logging.Warn("subscription channel full, dropping event", "topic", s.topic, "version", ev.Version)
	}
}

// Close detaches the subscription from its publisher.
func (s *sseSubscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.publisher.unsubscribe(s)
	return nil
}
