package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// SSE event names used by the generate stream
const (
	EventGenerating = "generating"
	EventComplete   = "complete"
	EventError      = "error"
)

// SSEWriter helps write Server-Sent Events
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates a new SSE writer
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends an SSE event
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteError sends an error event carrying the status the plain route
// would have answered with
func (s *SSEWriter) WriteError(err error) {
	status := HTTPStatus(err)
	s.WriteEvent(EventError, map[string]any{ //nolint:errcheck
		"error":  newErrorBody(err, status).Error,
		"status": status,
	})
}

// WriteComplete sends a completion event
func (s *SSEWriter) WriteComplete(sessionID string, resume any) {
	s.WriteEvent(EventComplete, map[string]any{ //nolint:errcheck
		"session_id": sessionID,
		"resume":     resume,
	})
}
