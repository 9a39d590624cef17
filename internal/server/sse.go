package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/osce-insight/internal/progress"
)

// streamEvents writes progress events to the response as server-sent events
// until a terminal event arrives, the event channel closes, or the client
// disconnects. Each event is one "data:" frame carrying the JSON-encoded
// event.
func streamEvents(c *gin.Context, events <-chan progress.Event) {
	h := c.Writer.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			body, err := json.Marshal(event)
			if err != nil {
				continue
			}
			if _, err := c.Writer.Write([]byte("data: ")); err != nil {
				return
			}
			if _, err := c.Writer.Write(body); err != nil {
				return
			}
			if _, err := c.Writer.Write([]byte("\n\n")); err != nil {
				return
			}
			c.Writer.Flush()

			if event.Status.Terminal() {
				return
			}
		case <-c.Request.Context().Done():
			return
		}
	}
}
