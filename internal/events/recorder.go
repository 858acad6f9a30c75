package events

import (
	"context"
	"sync"
)

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []ApplicationEvent
}

func (r *Recorder) Publish(_ context.Context, e ApplicationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Events() []ApplicationEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ApplicationEvent(nil), r.events...)
}
