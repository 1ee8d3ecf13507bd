// Package progress shows terminal feedback for long-running operations.
package progress

import (
	"io"
	"os"
	"time"

	"golang.org/x/term"
)

// Progress is the interface for all progress indicators.
type Progress interface {
	// Start starts the progress indicator with a message.
	Start(message string) error

	// Update updates the progress message.
	Update(message string) error

	// Success marks the progress as successful.
	Success(message string) error

	// Failure marks the progress as failed.
	Failure(message string) error

	// Stop stops the progress indicator.
	Stop() error

	// IsActive returns true if the progress indicator is active.
	IsActive() bool
}

// Config contains configuration for progress indicators.
type Config struct {
	// Enabled determines if progress indicators are shown.
	Enabled bool

	// Writer is where to write progress output.
	Writer io.Writer

	// RefreshRate is how often to refresh the display (for spinners).
	RefreshRate time.Duration
}

// DefaultConfig writes to stderr and is enabled only when stderr is a
// terminal.
func DefaultConfig() *Config {
	return &Config{
		Enabled:     IsTerminal(os.Stderr),
		Writer:      os.Stderr,
		RefreshRate: 100 * time.Millisecond,
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}
