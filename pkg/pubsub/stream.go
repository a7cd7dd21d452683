package pubsub

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/guptam/altimeter/pkg/logging"
)

// WriteSSE writes event as one server-sent event frame:
// "event: {type}\ndata: {json}\n\n".
func WriteSSE(w io.Writer, event Event) error {
	frame, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, frame)
	return err
}

// Stream subscribes to topic and writes its events to w until the request
// ends or the publisher closes.
func Stream(w http.ResponseWriter, r *http.Request, p Publisher, topic string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub, err := p.Subscribe(r.Context(), topic)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer sub.Close()

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := WriteSSE(w, event); err != nil {
				logging.Debug("sse client went away", "topic", topic, "error", err)
				return
			}
			flusher.Flush()
		}
	}
}
