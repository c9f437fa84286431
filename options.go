package brepio

import "log/slog"

// Option configures a Session during creation.
//
// Example:
//
//	s, err := brepio.NewSession(kernel,
//	    brepio.WithLogger(logger),
//	    brepio.WithBatchSize(4096),
//	)
type Option func(*options)

// options holds optional Session configuration.
type options struct {
	logger    *slog.Logger
	batchSize int
	angular   float64
	identity  *Identity
}

// defaultOptions returns the default session options.
func defaultOptions() options {
	return options{
		logger:    nil, // falls back to the package Logger at call time
		batchSize: DefaultBatchSize,
		angular:   AngularDeflection,
		identity:  nil, // a private Identity is created if nil
	}
}

// WithLogger sets the logger used for diagnostics. A nil logger keeps the
// package default set by [SetLogger].
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithBatchSize sets the number of triangles processed per batch.
// Values <= 0 select DefaultBatchSize. Batching never changes output order.
func WithBatchSize(n int) Option {
	return func(o *options) {
		if n <= 0 {
			n = DefaultBatchSize
		}
		o.batchSize = n
	}
}

// WithAngularDeflection sets the angular tolerance, in radians, requested
// from the kernel when meshing. Non-positive values keep AngularDeflection.
func WithAngularDeflection(rad float64) Option {
	return func(o *options) {
		if rad > 0 {
			o.angular = rad
		}
	}
}

// WithIdentity shares an identity registry between sessions so that
// unkeyed shapes keep the same references across them.
func WithIdentity(id *Identity) Option {
	return func(o *options) {
		o.identity = id
	}
}
