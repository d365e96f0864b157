package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/techtech-dev-team/stranger-backoffice/internal/liveevents"
)

// StreamLiveEvents serves the activity feed over SSE. A centre_id query
// parameter narrows the stream to one centre; without it the client gets
// every centre's events.
func (s *Server) StreamLiveEvents(c *gin.Context) {
	if s.liveEvents == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	key := liveevents.BroadcastKey
	if raw := strings.TrimSpace(c.Query("centre_id")); raw != "" {
		centreID, err := parseSnowflakeID(raw)
		if err != nil {
			AbortWithError(c, newValidationError("centre_id", "invalid_centre_id", "invalid centre_id"))
			return
		}
		key = centreID.String()
	}

	subscription, backlog, err := s.liveEvents.Subscribe(key)
	if err != nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}
	defer subscription.Close()

	writer := c.Writer
	headers := writer.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	headers.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	flusher, ok := writer.(http.Flusher)
	if !ok {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	if _, err := io.WriteString(writer, "retry: 2000\n\n"); err != nil {
		return
	}

	for _, event := range backlog {
		if err := writeLiveEvent(writer, event); err != nil {
			return
		}
	}
	flusher.Flush()

	ctx := c.Request.Context()
	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-subscription.Events():
			if err := writeLiveEvent(writer, event); err != nil {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := io.WriteString(writer, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeLiveEvent(w io.Writer, event liveevents.LiveEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
