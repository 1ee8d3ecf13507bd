package progress

import "fmt"

// Workflow states reported to a Tracker.
const (
	StateRegistering = "registering"
	StateUploading   = "uploading"
	StatePolling     = "polling"
	StateDone        = "done"
	StateFailed      = "failed"
)

// Tracker turns workflow state changes into progress messages.
type Tracker struct {
	progress Progress
	last     string
}

// NewTracker creates a tracker that drives p.
func NewTracker(p Progress) *Tracker {
	return &Tracker{progress: p}
}

// Observe reports a state change or, while polling, a new status.
func (t *Tracker) Observe(state, detail string) {
	message := t.message(state, detail)
	if message == "" || (message == t.last && state != StateDone && state != StateFailed) {
		return
	}
	t.last = message

	switch state {
	case StateDone:
		_ = t.progress.Success(message)
	case StateFailed:
		_ = t.progress.Failure(message)
	default:
		if !t.progress.IsActive() {
			_ = t.progress.Start(message)
			return
		}
		_ = t.progress.Update(message)
	}
}

// Message returns the last message shown.
func (t *Tracker) Message() string {
	return t.last
}

func (t *Tracker) message(state, detail string) string {
	switch state {
	case StateRegistering:
		return fmt.Sprintf("Registering %s media", detail)
	case StateUploading:
		return fmt.Sprintf("Uploading %s", detail)
	case StatePolling:
		if detail == "" {
			return "Waiting for processing"
		}
		return fmt.Sprintf("Processing: %s", detail)
	case StateDone:
		return fmt.Sprintf("Media %s ready", detail)
	case StateFailed:
		return fmt.Sprintf("Media upload failed: %s", detail)
	default:
		return ""
	}
}
