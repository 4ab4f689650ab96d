package colorpick

import (
	"errors"
	"sync/atomic"
	"weak"

	"github.com/gogpu/colorpick/internal/stats"
	"github.com/gogpu/colorpick/surface"
	"github.com/gogpu/gputypes"
	"github.com/google/uuid"
)

// UpdateTarget receives sampled colours for one manager. Samples in flight
// reference it weakly, so a manager that is released or collected before
// its sample completes simply never hears about it.
type UpdateTarget struct {
	handle   func(Color)
	released atomic.Bool
}

// NewUpdateTarget wraps handle, which is called on the picker worker.
func NewUpdateTarget(handle func(Color)) *UpdateTarget {
	return &UpdateTarget{handle: handle}
}

// Release stops further deliveries.
func (t *UpdateTarget) Release() {
	t.released.Store(true)
}

// Released reports whether Release was called.
func (t *UpdateTarget) Released() bool {
	return t.released.Load()
}

// deliverTo hands c to the target behind ref if it is still alive.
func deliverTo(ref weak.Pointer[UpdateTarget], c Color) bool {
	t := ref.Value()
	if t == nil || t.released.Load() || t.handle == nil {
		return false
	}
	t.handle(c)
	return true
}

// PickerInfo carries one read-back sample from the render goroutine to the
// picker worker. It pins the snapshot until Release.
type PickerInfo struct {
	ID         uuid.UUID
	ColorSpace surface.ColorSpace
	Format     gputypes.TextureFormat
	Texture    surface.BackendTexture
	Origin     surface.Origin
	Strategy   Strategy

	image    surface.Image
	target   weak.Pointer[UpdateTarget]
	released atomic.Bool
}

var errNoBackendTexture = errors.New("colorpick: snapshot has no backend texture")

func newPickerInfo(img surface.Image, target *UpdateTarget, strategy Strategy) (*PickerInfo, error) {
	if img == nil {
		return nil, errors.New("colorpick: nil snapshot")
	}
	tex, ok := img.BackendTexture()
	if !ok || !tex.IsValid() {
		return nil, errNoBackendTexture
	}
	return &PickerInfo{
		ID:         uuid.New(),
		ColorSpace: img.ColorSpace(),
		Format:     img.Format(),
		Texture:    tex,
		Origin:     surface.OriginTopLeft,
		Strategy:   strategy,
		image:      img,
		target:     weak.Make(target),
	}, nil
}

// Release unpins the snapshot. It is safe to call more than once.
func (p *PickerInfo) Release() {
	if p.released.CompareAndSwap(false, true) {
		p.image = nil
	}
}

func (p *PickerInfo) targetAlive() bool {
	t := p.target.Value()
	return t != nil && !t.released.Load()
}

func statsKind(s Strategy) stats.Kind {
	if s == StrategyDominant {
		return stats.Dominant
	}
	return stats.Average
}

// ExtractSnapshotAndScheduleColorPick snapshots the part of canvas inside
// rect and starts sampling it for target. It never blocks on the sample.
//
// The accelerator is tried first. Otherwise the snapshot's backend texture
// is handed to the picker worker once the surface flush completes, and the
// worker reads it back and computes the statistic for strategy on the CPU.
//
// It reports false when rect is nil, the clipped region is empty, the
// canvas has no surface or no snapshot could be taken.
func ExtractSnapshotAndScheduleColorPick(rt *Runtime, canvas surface.Canvas, rect *surface.Rect, target *UpdateTarget, strategy Strategy) bool {
	if rt == nil || canvas == nil || rect == nil || target == nil {
		return false
	}

	canvas.Save()
	canvas.ClipRect(*rect)
	bounds := canvas.DeviceClipBounds()
	canvas.Restore()
	if bounds.Empty() {
		Logger().Debug("colorpick: empty sample bounds", "rect", *rect)
		return false
	}

	src := canvas.Surface()
	if src == nil {
		Logger().Debug("colorpick: sample skipped", "err", surface.ErrNoSurface)
		return false
	}
	img, err := src.ImageSnapshot(bounds, false)
	if err != nil || img == nil {
		Logger().Debug("colorpick: snapshot failed", "bounds", bounds, "err", err)
		return false
	}

	if rt.sampleAccelerated(src, img, target, strategy) {
		return true
	}

	info, err := newPickerInfo(img, target, strategy)
	if err != nil {
		Logger().Warn("colorpick: cannot prepare read-back", "err", err)
		return false
	}
	err = src.Flush(surface.FlushInfo{
		BackendSurfaceAccess: true,
		FinishedProc:         func() { rt.onFlushFinished(info) },
	})
	if err != nil {
		info.Release()
		Logger().Warn("colorpick: flush failed", "id", info.ID, "err", err)
		return false
	}
	return true
}

// sampleAccelerated routes the snapshot to the accelerator. Results are
// delivered on the picker worker so HandleColorUpdate never runs
// concurrently for one manager.
func (rt *Runtime) sampleAccelerated(src surface.Surface, img surface.Image, target *UpdateTarget, strategy Strategy) bool {
	if rt.accel == nil {
		return false
	}
	if rt.isCaptureActive() {
		Logger().Debug("colorpick: accelerated path disabled during capture")
		return false
	}
	ref := weak.Make(target)
	return rt.accel.SampleColor(src, img, strategy, func(c Color) {
		rt.PostTask(func() { deliverTo(ref, c) }, false, 0)
	})
}

// onFlushFinished runs when the GPU work producing the snapshot is done.
// The read-back counts against the rate limit; a dropped sample is retried
// by the next cooldown.
func (rt *Runtime) onFlushFinished(info *PickerInfo) {
	if !rt.PostTask(func() { rt.pickOnWorker(info) }, true, 0) {
		Logger().Debug("colorpick: read-back dropped", "id", info.ID)
		info.Release()
	}
}

func (rt *Runtime) pickOnWorker(info *PickerInfo) {
	defer info.Release()
	if !info.targetAlive() {
		return
	}

	img, err := rt.buildImage(info)
	if err != nil {
		Logger().Warn("colorpick: build image from texture failed", "id", info.ID, "err", err)
		return
	}
	pm := surface.NewPixmap(img.Width(), img.Height())
	if pm.IsEmpty() || !img.ReadPixels(pm, 0, 0) {
		Logger().Warn("colorpick: read pixels failed", "id", info.ID)
		return
	}
	c, ok := stats.Compute(pm.RGBA(), statsKind(info.Strategy), rt.statsMaxDim)
	if !ok {
		Logger().Debug("colorpick: no opaque pixels sampled", "id", info.ID)
		return
	}
	if deliverTo(info.target, FromRGBA(c)) {
		Logger().Debug("colorpick: sample delivered", "id", info.ID, "color", FromRGBA(c))
	}
}
