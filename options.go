package docrender

import "log/slog"

// Option configures a Pipeline during creation.
//
// Example:
//
//	p := docrender.New(d, compose.NewSoftware(),
//		docrender.WithWorkers(4),
//		docrender.WithPreviewSize(64),
//	)
type Option func(*options)

type options struct {
	workers     int
	previewSize int
	logger      *slog.Logger
}

func defaultOptions() options {
	return options{
		workers:     0, // GOMAXPROCS
		previewSize: 0, // preview.DefaultSize
	}
}

// WithWorkers sets the number of goroutines used for tile compositing.
// Zero or negative means runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithPreviewSize sets the length in pixels of the longer side of every
// thumbnail. Zero or negative keeps the default.
func WithPreviewSize(px int) Option {
	return func(o *options) {
		o.previewSize = px
	}
}

// WithLogger sets the logger for this pipeline and its stages, overriding
// the package default set by [SetLogger].
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
