package pubsub

import (
	"context"
	"encoding/json"
)

// TopicGraphStatus carries GraphStatus events about the served graph.
const TopicGraphStatus = "graph_status"

// Graph status states, in the order a rebuild passes through them.
const (
	StateLoading  = "loading"
	StateParsing  = "parsing"
	StateEncoding = "encoding"
	StateReady    = "ready"
	StateFailed   = "failed"
)

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic, e.g. "graph_status"
	Type    string          `json:"type"`    // Event type, one of the State constants for graph_status
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Version number for ordering
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic
	// Context cancellation will close the subscription
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data interface{}) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// GraphStatus describes the state of the served graph.
type GraphStatus struct {
	State     string `json:"state"`
	Message   string `json:"message"`
	Artifact  string `json:"artifact,omitempty"`
	Resources int    `json:"resources"`
	Errors    int    `json:"errors"` // scan errors recorded in the artifact
}

// PublishStatus publishes s on TopicGraphStatus with s.State as event type.
func PublishStatus(p Publisher, s GraphStatus) error {
	return p.Publish(TopicGraphStatus, s.State, s)
}
