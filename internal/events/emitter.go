package events

import (
	"sync"
	"time"
)

var buffer = newRingBuffer(256)

var (
	totalMu    sync.Mutex
	totalCount int64
)

// TotalCount returns how many events have been emitted since startup,
// including those the ring buffer has since dropped.
func TotalCount() int64 {
	totalMu.Lock()
	defer totalMu.Unlock()
	return totalCount
}

// Sink receives every emitted event, typically for telemetry persistence.
// Sinks must not call Emit.
type Sink interface {
	Append(ts time.Time, level, name, msg string, fields map[string]interface{}) error
}

var (
	sinkMu          sync.RWMutex
	sink            Sink
	sinkErrorLogged bool
)

// SetSink installs the telemetry sink. A nil sink disables persistence.
func SetSink(s Sink) {
	sinkMu.Lock()
	sink = s
	sinkErrorLogged = false
	sinkMu.Unlock()
}

// Event is a single structured engine event.
type Event struct {
	Timestamp string                 `json:"ts"`
	Level     string                 `json:"level"`
	Name      string                 `json:"event"`
	Message   string                 `json:"msg,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Emit records a named event in the ring buffer, forwards it to subscribers,
// and appends it to the telemetry sink when one is installed. Unknown names
// are dropped with an error so typos fail loudly in tests.
func Emit(level, name, msg string, fields map[string]interface{}) error {
	if err := Validate(name); err != nil {
		return err
	}

	ts := time.Now().UTC()
	e := Event{
		Timestamp: ts.Format(time.RFC3339Nano),
		Level:     level,
		Name:      name,
		Message:   msg,
		Fields:    fields,
	}

	buffer.add(e)
	broadcast(e)

	totalMu.Lock()
	totalCount++
	totalMu.Unlock()

	sinkMu.RLock()
	s := sink
	errorLogged := sinkErrorLogged
	sinkMu.RUnlock()

	if s != nil {
		if err := s.Append(ts, level, name, msg, fields); err != nil && !errorLogged {
			// Record the failure once, directly into the buffer, so a broken
			// sink cannot recurse through Emit.
			sinkMu.Lock()
			already := sinkErrorLogged
			sinkErrorLogged = true
			sinkMu.Unlock()
			if !already {
				buffer.add(Event{
					Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
					Level:     "error",
					Name:      "system.error",
					Message:   "telemetry append failed",
					Fields:    map[string]interface{}{"error": err.Error()},
				})
			}
		}
	}

	return nil
}

// Snapshot returns the buffered events, oldest first.
func Snapshot() []Event {
	return buffer.snapshot()
}

// Recent returns the last n buffered events.
func Recent(n int) []Event {
	all := buffer.snapshot()
	if n <= 0 || n >= len(all) {
		return all
	}
	return all[len(all)-n:]
}

// Clear resets the event buffer. Used by tests.
func Clear() {
	buffer.clear()
}

type ringBuffer struct {
	mu    sync.RWMutex
	slots []Event
	next  int
	full  bool
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{slots: make([]Event, capacity)}
}

func (rb *ringBuffer) add(e Event) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.slots[rb.next] = e
	rb.next = (rb.next + 1) % len(rb.slots)
	if rb.next == 0 {
		rb.full = true
	}
}

func (rb *ringBuffer) snapshot() []Event {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	if !rb.full {
		return append([]Event{}, rb.slots[:rb.next]...)
	}
	out := make([]Event, 0, len(rb.slots))
	out = append(out, rb.slots[rb.next:]...)
	out = append(out, rb.slots[:rb.next]...)
	return out
}

func (rb *ringBuffer) clear() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.slots = make([]Event, len(rb.slots))
	rb.next = 0
	rb.full = false
}
