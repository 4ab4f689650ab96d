package colorpick

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/colorpick/internal/worker"
	"github.com/gogpu/colorpick/surface"
)

// NodeID identifies a render node.
type NodeID uint64

// Clock is a time source.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Runtime owns everything colour picking shares between nodes: the picker
// worker and its rate limiter, the shared GPU context, the optional
// accelerator and the callbacks into the render graph. Create one per
// compositor and pass it to managers and drawables.
type Runtime struct {
	worker  *worker.Worker
	limiter *worker.RateLimiter
	clock   Clock
	accel   Accelerator
	table   *PlaceholderTable

	captureActive func() bool
	statsMaxDim   int

	// gpuContext yields the single shared context. gpuMu serialises all
	// use of it: the context is thread-aware but externally synchronised.
	gpuContext func() (surface.GPUContext, error)
	gpuMu      sync.Mutex

	nodeDirty    atomic.Pointer[func(NodeID)]
	notifyClient atomic.Pointer[func(NodeID, uint32)]

	closed atomic.Bool
}

// NewRuntime creates a runtime and starts its picker worker.
func NewRuntime(opts ...Option) *Runtime {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	rt := &Runtime{
		worker:        worker.New(Logger),
		clock:         o.clock,
		accel:         o.accelerator,
		table:         o.table,
		captureActive: o.captureActive,
		statsMaxDim:   o.statsMaxDim,
		gpuContext:    sync.OnceValues(o.gpuContext),
	}
	rt.limiter = worker.NewRateLimiter(o.rateLimit, o.rateWindow, rt.clock.Now)

	if rt.accel != nil {
		addLoggerSink(rt.accel)
	}
	Logger().Info("colorpick: runtime started",
		"rateLimit", rt.limiter.Ceiling(),
		"accelerated", rt.accel != nil)
	return rt
}

// Close stops the picker worker. Tasks already due still run; delayed
// tasks are dropped. Close is idempotent.
func (rt *Runtime) Close() error {
	if !rt.closed.CompareAndSwap(false, true) {
		return nil
	}
	rt.worker.Close()
	if rt.accel != nil {
		removeLoggerSink(rt.accel)
	}
	Logger().Info("colorpick: runtime stopped")
	return nil
}

// Clock returns the runtime's time source.
func (rt *Runtime) Clock() Clock {
	return rt.clock
}

func (rt *Runtime) nowMs() int64 {
	return rt.clock.Now().UnixMilli()
}

// Placeholders returns the placeholder colour table.
func (rt *Runtime) Placeholders() *PlaceholderTable {
	return rt.table
}

// PostTask queues task on the picker worker after delay.
//
// Unlimited tasks run at high priority and are always accepted while the
// runtime is open. Limited tasks count against the rate limit (20 per
// second by default); once the ceiling is reached they are dropped and
// PostTask returns false.
func (rt *Runtime) PostTask(task func(), limited bool, delay time.Duration) bool {
	if task == nil {
		return false
	}
	if !limited {
		return rt.worker.Post(task, worker.PriorityHigh, delay)
	}
	if !rt.limiter.Allow() {
		Logger().Debug("colorpick: task dropped by rate limit", "ceiling", rt.limiter.Ceiling())
		return false
	}
	return rt.worker.Post(task, worker.PriorityLow, delay)
}

// postCatchUp queues a low priority task that bypasses the rate limit.
func (rt *Runtime) postCatchUp(task func(), delay time.Duration) bool {
	return rt.worker.Post(task, worker.PriorityLow, delay)
}

// PendingTasks returns the number of tasks waiting on the picker worker.
func (rt *Runtime) PendingTasks() int {
	return rt.worker.Len()
}

// RegisterNodeDirtyCallback sets the callback that marks a node dirty in
// the render graph. Nil unregisters it.
func (rt *Runtime) RegisterNodeDirtyCallback(cb func(NodeID)) {
	if cb == nil {
		rt.nodeDirty.Store(nil)
		return
	}
	rt.nodeDirty.Store(&cb)
}

// NotifyNodeDirty asks the render graph to redraw node id.
func (rt *Runtime) NotifyNodeDirty(id NodeID) {
	if cb := rt.nodeDirty.Load(); cb != nil {
		(*cb)(id)
	}
}

// RegisterNotifyClientCallback sets the callback that forwards luminance
// zone changes to clients. Nil unregisters it.
func (rt *Runtime) RegisterNotifyClientCallback(cb func(NodeID, uint32)) {
	if cb == nil {
		rt.notifyClient.Store(nil)
		return
	}
	rt.notifyClient.Store(&cb)
}

// NotifyClient reports a new background luminance (0..255) for node id.
func (rt *Runtime) NotifyClient(id NodeID, luminance uint32) {
	if cb := rt.notifyClient.Load(); cb != nil {
		(*cb)(id, luminance)
	}
}

// GPUContext returns the shared GPU context, creating it on first use.
func (rt *Runtime) GPUContext() (surface.GPUContext, error) {
	return rt.gpuContext()
}

// buildImage rebuilds an image from a backend texture through the shared
// GPU context.
func (rt *Runtime) buildImage(info *PickerInfo) (surface.Image, error) {
	ctx, err := rt.gpuContext()
	if err != nil {
		return nil, fmt.Errorf("shared gpu context: %w", err)
	}
	if ctx == nil {
		return nil, fmt.Errorf("shared gpu context: unavailable")
	}
	rt.gpuMu.Lock()
	defer rt.gpuMu.Unlock()
	return ctx.BuildFromTexture(info.Texture, info.Origin, info.Format, info.ColorSpace)
}

func (rt *Runtime) isCaptureActive() bool {
	return rt.captureActive != nil && rt.captureActive()
}
