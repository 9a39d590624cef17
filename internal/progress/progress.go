// Package progress carries pipeline stage notifications from long-running
// operations to interested observers, typically a streaming HTTP response.
package progress

import "sync"

// Status names a pipeline stage or terminal outcome.
type Status string

const (
	StatusUploading    Status = "uploading"
	StatusTranscribing Status = "transcribing"
	StatusSaving       Status = "saving"
	StatusAnalyzing    Status = "analyzing"
	StatusProcessing   Status = "processing"
	StatusComplete     Status = "complete"
	StatusError        Status = "error"
)

// Terminal reports whether no further events follow s.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusError
}

// Event is one progress notification.
type Event struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	// ReportID is set on completion of a single-report operation.
	ReportID string `json:"report_id,omitempty"`
	// ReportIDs is set on completion of a batch operation.
	ReportIDs []string `json:"report_ids,omitempty"`
	// FileKey is the stored audio object key, set once upload finishes.
	FileKey string `json:"file_key,omitempty"`
}

// Emitter receives progress events. Implementations must not block; slow
// observers see dropped events, never a stalled pipeline.
type Emitter interface {
	Emit(event Event)
}

// Nop discards all events.
type Nop struct{}

func (Nop) Emit(Event) {}

// defaultBuffer sizes a Channel's event buffer well beyond the event count of
// any single pipeline run.
const defaultBuffer = 64

// Channel buffers events for one observer. Emit never blocks: when the
// buffer is full the event is dropped. After Close, Emit is a no-op.
type Channel struct {
	mu     sync.Mutex
	events chan Event
	closed bool
}

// NewChannel creates a Channel emitter.
func NewChannel() *Channel {
	return &Channel{events: make(chan Event, defaultBuffer)}
}

// Emit delivers an event to the observer, dropping it if the buffer is full.
func (c *Channel) Emit(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.events <- event:
	default:
	}
}

// Events returns the receive side. The channel is closed by Close.
func (c *Channel) Events() <-chan Event {
	return c.events
}

// Close ends the stream. Safe to call more than once.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.events)
}
