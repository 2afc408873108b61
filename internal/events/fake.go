package events

import "sync"

// Fake is an in-memory [Recorder] for testing. It captures all recorded
// events in the Events slice. Safe for concurrent use.
type Fake struct {
	mu     sync.Mutex
	Events []Event
}

// NewFake returns a ready-to-use [Fake] recorder.
func NewFake() *Fake {
	return &Fake{}
}

// Record appends the event to the Events slice.
func (f *Fake) Record(e Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Events = append(f.Events, e)
}

// Types returns the recorded event types in order.
func (f *Fake) Types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	types := make([]string, len(f.Events))
	for i, e := range f.Events {
		types[i] = e.Type
	}
	return types
}
