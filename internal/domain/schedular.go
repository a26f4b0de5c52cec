package domain

import "context"

// Schedular repeatedly triggers distribution passes.
type Schedular interface {
	Start(ctx context.Context) error

	// Enable resumes triggering passes, Disable pauses it without stopping Start.
	Enable() error
	Disable()
	Enabled() bool
}
