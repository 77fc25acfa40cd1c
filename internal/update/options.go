package update

// Option configures an Updater.
type Option func(*Options) error

// Options contains optional configuration for an Updater.
type Options struct {
	// DryRun reports the changes without writing them.
	DryRun bool
}

// NewOptions returns Options with defaults, updated by any supplied options in order.
func NewOptions(opts ...Option) (Options, error) {
	var o Options

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

// WithDryRun sets whether changes are only reported.
func WithDryRun(dryRun bool) Option {
	return func(o *Options) error {
		o.DryRun = dryRun
		return nil
	}
}
