package collide

import "go.uber.org/zap"

type options struct {
	logger *zap.Logger
}

// Option configures a Registry or a World.
type Option func(*options)

// WithLogger sets the logger used for lifecycle and refresh diagnostics.
// A nil logger keeps the default no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
