package backup

import (
	"fmt"
	"time"
)

// Option configures a Manager.
type Option func(*Options) error

// Options contains optional configuration for a Manager.
type Options struct {
	// Now returns the time used to name snapshots.
	Now func() time.Time
}

// NewOptions returns Options with defaults, updated by any supplied options in order.
func NewOptions(opts ...Option) (Options, error) {
	o := Options{Now: time.Now}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&o); err != nil {
			return Options{}, err
		}
	}

	return o, nil
}

// WithClock sets the function used to read the current time.
func WithClock(now func() time.Time) Option {
	return func(o *Options) error {
		if now == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		o.Now = now
		return nil
	}
}
