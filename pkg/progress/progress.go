package progress

import (
	"fmt"
	"sync"

	"github.com/pterm/pterm"
)

// New returns a spinner when config is enabled and a no-op otherwise.
func New(config *Config) Progress {
	if config == nil {
		config = DefaultConfig()
	}
	if !config.Enabled {
		return &Noop{}
	}
	return NewSpinner(config)
}

// Spinner implements a spinner progress indicator.
type Spinner struct {
	spinner *pterm.SpinnerPrinter
	config  *Config
	active  bool
	mu      sync.Mutex
}

// NewSpinner creates a new spinner progress indicator.
func NewSpinner(config *Config) *Spinner {
	if config == nil {
		config = DefaultConfig()
	}

	return &Spinner{
		config: config,
	}
}

// Start starts the spinner with a message.
func (s *Spinner) Start(message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.config.Enabled {
		return nil
	}

	if s.active {
		return fmt.Errorf("spinner already active")
	}

	printer := pterm.DefaultSpinner.WithRemoveWhenDone(false)
	if s.config.Writer != nil {
		printer = printer.WithWriter(s.config.Writer)
	}
	if s.config.RefreshRate > 0 {
		printer = printer.WithDelay(s.config.RefreshRate)
	}

	var err error
	s.spinner, err = printer.Start(message)
	if err != nil {
		return fmt.Errorf("failed to start spinner: %w", err)
	}

	s.active = true
	return nil
}

// Update updates the spinner message.
func (s *Spinner) Update(message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.config.Enabled || !s.active || s.spinner == nil {
		return nil
	}

	s.spinner.UpdateText(message)
	return nil
}

// Success marks the spinner as successful.
func (s *Spinner) Success(message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.config.Enabled || !s.active || s.spinner == nil {
		return nil
	}

	s.spinner.Success(message)
	s.active = false
	return nil
}

// Failure marks the spinner as failed.
func (s *Spinner) Failure(message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.config.Enabled || !s.active || s.spinner == nil {
		return nil
	}

	s.spinner.Fail(message)
	s.active = false
	return nil
}

// Stop stops the spinner.
func (s *Spinner) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active || s.spinner == nil {
		return nil
	}

	_ = s.spinner.Stop()
	s.active = false
	return nil
}

// IsActive returns true if the spinner is active.
func (s *Spinner) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Noop is a progress indicator that shows nothing.
type Noop struct {
	active bool
}

func (n *Noop) Start(string) error   { n.active = true; return nil }
func (n *Noop) Update(string) error  { return nil }
func (n *Noop) Success(string) error { n.active = false; return nil }
func (n *Noop) Failure(string) error { n.active = false; return nil }
func (n *Noop) Stop() error          { n.active = false; return nil }
func (n *Noop) IsActive() bool       { return n.active }
