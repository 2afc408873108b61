// Package events records what the restart machinery did.
//
// Events are simple, synchronous, append-only records. The recorder
// writes JSON lines to the file named by INIRUN_EVENTS; the reader scans
// them back. Recording is best-effort: errors are logged to stderr but
// never returned to callers.
package events

import "time"

// Event type constants.
const (
	RestartSkipped   = "restart.skipped"
	RestartStarted   = "restart.started"
	RestartFailed    = "restart.failed"
	RestartCompleted = "restart.completed"
	RestartRestored  = "restart.restored"
)

// Event is a single recorded occurrence.
type Event struct {
	Seq     uint64    `json:"seq"`
	Type    string    `json:"type"`
	Ts      time.Time `json:"ts"`
	PID     int       `json:"pid,omitempty"`
	Subject string    `json:"subject,omitempty"` // extension name
	Message string    `json:"message,omitempty"`
}

// Recorder records events. Safe for concurrent use. Best-effort.
type Recorder interface {
	Record(e Event)
}

// Discard silently drops all events.
var Discard Recorder = discardRecorder{}

type discardRecorder struct{}

func (discardRecorder) Record(Event) {}
