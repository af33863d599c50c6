package events

import (
	"sync"

	"github.com/rs/zerolog"
)

// LogObserver writes events to a zerolog logger.
// Warnings are used for events that mean something was skipped or failed.
type LogObserver struct {
	Logger zerolog.Logger
}

func (o LogObserver) Emit(event *Event) {
	var e *zerolog.Event
	switch event.Type {
	case EventSpecMissing, EventDashboardCommandErr:
		e = o.Logger.Warn()
	default:
		e = o.Logger.Info()
	}
	e = e.Str("event", string(event.Type))
	for k, v := range event.Metadata {
		e = e.Str(k, v)
	}
	e.Msg(event.Message)
}

// Recorder keeps every event it receives
type Recorder struct {
	mu     sync.Mutex
	events []*Event
}

func (r *Recorder) Emit(event *Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []*Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Event(nil), r.events...)
}

// OfType returns the recorded events of one type
func (r *Recorder) OfType(eventType EventType) []*Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Event
	for _, e := range r.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
