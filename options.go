package colorpick

import (
	"time"

	"github.com/gogpu/colorpick/surface"
)

// Option configures a Runtime during creation.
//
// Example:
//
//	rt := colorpick.NewRuntime(
//	    colorpick.WithAccelerator(accel),
//	    colorpick.WithRateLimit(40, time.Second),
//	)
type Option func(*runtimeOptions)

type runtimeOptions struct {
	clock         Clock
	accelerator   Accelerator
	gpuContext    func() (surface.GPUContext, error)
	captureActive func() bool
	rateLimit     int
	rateWindow    time.Duration
	table         *PlaceholderTable
	statsMaxDim   int
}

func defaultOptions() runtimeOptions {
	return runtimeOptions{
		clock: systemClock{},
		gpuContext: func() (surface.GPUContext, error) {
			return surface.NewSoftwareContext(), nil
		},
		table: DefaultPlaceholderTable(),
	}
}

// WithClock sets the time source used for animation, cooldowns and rate
// limiting.
func WithClock(c Clock) Option {
	return func(o *runtimeOptions) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithAccelerator sets the accelerated statistics path. Without one every
// sample takes the read-back path.
func WithAccelerator(a Accelerator) Option {
	return func(o *runtimeOptions) {
		o.accelerator = a
	}
}

// WithGPUContext sets the factory for the shared GPU context used to
// rebuild snapshot textures on the picker worker. It is called at most
// once, on first use.
func WithGPUContext(factory func() (surface.GPUContext, error)) Option {
	return func(o *runtimeOptions) {
		if factory != nil {
			o.gpuContext = factory
		}
	}
}

// WithCaptureStatus sets a probe reporting whether a screen capture is in
// progress. The accelerated path is skipped while it returns true.
func WithCaptureStatus(active func() bool) Option {
	return func(o *runtimeOptions) {
		o.captureActive = active
	}
}

// WithRateLimit sets how many rate-limited tasks may be posted per window.
// Non-positive values keep the defaults (20 per second).
func WithRateLimit(tasks int, window time.Duration) Option {
	return func(o *runtimeOptions) {
		o.rateLimit = tasks
		o.rateWindow = window
	}
}

// WithPlaceholderTable sets the placeholder colour table.
func WithPlaceholderTable(t *PlaceholderTable) Option {
	return func(o *runtimeOptions) {
		if t != nil {
			o.table = t
		}
	}
}

// WithStatsMaxDimension bounds the longest side of images passed to CPU
// statistics. Non-positive values keep the default of 100.
func WithStatsMaxDimension(n int) Option {
	return func(o *runtimeOptions) {
		o.statsMaxDim = n
	}
}
