package pubsub

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRetainReplay(t *testing.T) {
	tests := []struct {
		name   string
		retain int
		want   []int
	}{
		{"keeps last three", 3, []int{3, 4, 5}},
		{"keeps last only", 1, []int{5}},
		{"keeps nothing", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := NewSSEPublisher(Retain("test", tt.retain))
			defer pub.Close()

			for i := 1; i <= 5; i++ {
				if err := pub.Publish("test", "event", map[string]int{"num": i}); err != nil {
					t.Fatalf("Failed to publish event %d: %v", i, err)
				}
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			sub, err := pub.Subscribe(ctx, "test")
			if err != nil {
				t.Fatalf("Failed to subscribe: %v", err)
			}
			defer sub.Close()

			for _, version := range tt.want {
				select {
				case event := <-sub.Events():
					if event.Version != version {
						t.Errorf("Expected version %d, got %d", version, event.Version)
					}
				case <-time.After(100 * time.Millisecond):
					t.Fatalf("Timeout waiting for version %d", version)
				}
			}

			select {
			case event := <-sub.Events():
				t.Errorf("Received unexpected extra event version %d", event.Version)
			case <-time.After(20 * time.Millisecond):
			}

			if err := pub.Publish("test", "event", map[string]int{"num": 6}); err != nil {
				t.Fatalf("Failed to publish live event: %v", err)
			}
			select {
			case event := <-sub.Events():
				if event.Version != 6 {
					t.Errorf("Expected live version 6, got %d", event.Version)
				}
			case <-time.After(100 * time.Millisecond):
				t.Fatal("Timeout waiting for live event")
			}
		})
	}
}

func TestCloseEndsSubscriptions(t *testing.T) {
	pub := NewSSEPublisher()
	sub, err := pub.Subscribe(context.Background(), "test")
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	pub.Close()

	select {
	case _, ok := <-sub.Events():
		if ok {
			t.Error("Expected closed channel")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Events channel not closed")
	}
	if err := sub.Close(); err != nil {
		t.Errorf("Close after publisher close: %v", err)
	}
}

func TestPublishStatus(t *testing.T) {
	pub := NewSSEPublisher(Retain(TopicGraphStatus, 1))
	defer pub.Close()

	if err := PublishStatus(pub, GraphStatus{State: StateReady, Resources: 12}); err != nil {
		t.Fatalf("PublishStatus: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub, err := pub.Subscribe(ctx, TopicGraphStatus)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	if n := pub.Subscribers(TopicGraphStatus); n != 1 {
		t.Errorf("Expected 1 subscriber, got %d", n)
	}

	select {
	case event := <-sub.Events():
		if event.Type != StateReady {
			t.Errorf("Expected type %q, got %q", StateReady, event.Type)
		}
		var status GraphStatus
		if err := json.Unmarshal(event.Data, &status); err != nil {
			t.Fatalf("Failed to decode status: %v", err)
		}
		if status.Resources != 12 {
			t.Errorf("Expected 12 resources, got %d", status.Resources)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for status")
	}

	sub.Close()
	if n := pub.Subscribers(TopicGraphStatus); n != 0 {
		t.Errorf("Expected 0 subscribers after close, got %d", n)
	}
}

func TestClosedPublisher(t *testing.T) {
	pub := NewSSEPublisher()
	pub.Close()

	if err := pub.Publish("test", "event", nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Publish after close = %v, want ErrClosed", err)
	}
	if _, err := pub.Subscribe(context.Background(), "test"); !errors.Is(err, ErrClosed) {
		t.Errorf("Subscribe after close = %v, want ErrClosed", err)
	}
}

func TestStream(t *testing.T) {
	pub := NewSSEPublisher(Retain(TopicGraphStatus, 1))
	defer pub.Close()
	if err := PublishStatus(pub, GraphStatus{State: StateParsing, Message: "parsing"}); err != nil {
		t.Fatalf("PublishStatus: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Stream(w, r, pub, TopicGraphStatus)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if line != "event: parsing\n" {
		t.Errorf("first line = %q", line)
	}
	line, err = reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(line, "data: ") || !strings.Contains(line, `"graph_status"`) {
		t.Errorf("data line = %q", line)
	}
}
