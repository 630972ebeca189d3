package loadsync

import "log/slog"

type centerOptions struct {
	logger *slog.Logger
}

type CenterOption func(opts *centerOptions)

// WithCenterLogger sets the logger a Center reports recovered handler panics to.
func WithCenterLogger(logger *slog.Logger) CenterOption {
	return func(opts *centerOptions) {
		if logger != nil {
			opts.logger = logger
		}
	}
}

func newCenterOptions(opts []CenterOption) *centerOptions {
	var nOpts = &centerOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(nOpts)
		}
	}
	if nOpts.logger == nil {
		nOpts.logger = slog.Default()
	}
	return nOpts
}

type options struct {
	logger *slog.Logger
	kinds  []string
}

type Option func(opts *options)

// WithLogger sets the logger used by a Synchronizer.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) {
		if logger != nil {
			opts.logger = logger
		}
	}
}

// WithKinds sets the allow-list of source kinds a Synchronizer counts.
func WithKinds(kinds ...string) Option {
	return func(opts *options) {
		opts.kinds = append(opts.kinds, kinds...)
	}
}

func newOptions(opts []Option) *options {
	var nOpts = &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(nOpts)
		}
	}
	if nOpts.logger == nil {
		nOpts.logger = slog.Default()
	}
	return nOpts
}
