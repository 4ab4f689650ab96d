package colorpick

import "github.com/gogpu/colorpick/surface"

// ColorPickedSink is implemented by canvases that consume picked colours.
// OnDraw hands it the placeholder colour resolved for the node.
type ColorPickedSink interface {
	SetColorPicked(id NodeID, placeholder Placeholder, c Color)
}

// Drawable ties a node's Scheduler and Manager into the render graph's
// prepare, sync and draw passes.
//
// Per frame the render graph calls PrepareForExecution, then OnSync, then
// OnDraw. All three run on the render goroutine.
type Drawable struct {
	rt      *Runtime
	nodeID  NodeID
	sched   *Scheduler
	manager Manager
	kind    Strategy // strategy the manager was built for
}

// NewDrawable returns a drawable for node, or nil if the node has no
// colour picker params or its strategy is StrategyNone.
func NewDrawable(rt *Runtime, node *Node) *Drawable {
	if rt == nil || node == nil {
		return nil
	}
	p, ok := node.ColorPickerParams()
	if !ok || !p.Enabled() {
		return nil
	}
	d := &Drawable{
		rt:     rt,
		nodeID: node.ID(),
		sched:  NewScheduler(rt, node.ID()),
	}
	d.setManager(p.Strategy)
	d.sched.SetParams(&p)
	return d
}

func managerKind(s Strategy) Strategy {
	if s == StrategyClientCallback {
		return StrategyClientCallback
	}
	return StrategyContrast
}

func (d *Drawable) setManager(s Strategy) {
	if d.manager != nil {
		d.manager.Release()
	}
	d.kind = managerKind(s)
	d.manager = NewManager(d.rt, d.nodeID, s)
}

// OnUpdate stages the node's current params. It reports false when colour
// picking is now disabled; the drawable then stops sampling and may be
// closed. A switch to or from StrategyClientCallback replaces the manager.
func (d *Drawable) OnUpdate(node *Node) bool {
	p, ok := node.ColorPickerParams()
	if !ok || !p.Enabled() {
		d.sched.SetParams(nil)
		return false
	}
	if managerKind(p.Strategy) != d.kind {
		d.setManager(p.Strategy)
	}
	d.sched.SetParams(&p)
	return true
}

// SetIsSystemDarkColorMode stages the system dark mode flag.
func (d *Drawable) SetIsSystemDarkColorMode(dark bool) {
	d.sched.SetIsSystemDarkColorMode(dark)
}

// PrepareForExecution runs the scheduler for this frame.
func (d *Drawable) PrepareForExecution(vsyncNanos int64, darkMode bool) (needColorPick, needSync bool) {
	return d.sched.PrepareForExecution(vsyncNanos, darkMode)
}

// OnSync publishes staged scheduler state to the draw pass.
func (d *Drawable) OnSync() {
	d.sched.Sync(d.manager)
}

// OnDraw publishes the current colour to canvas and starts a new sample
// when the scheduler asked for one. It never blocks on sampling.
func (d *Drawable) OnDraw(canvas surface.Canvas, rect surface.Rect) {
	if d == nil || canvas == nil || d.manager == nil {
		return
	}
	p, needColorPick := d.sched.Active()
	if c, ok := d.manager.ColorPick(); ok {
		if sink, isSink := canvas.(ColorPickedSink); isSink {
			sink.SetColorPicked(d.nodeID, p.Placeholder, d.rt.Placeholders().Resolve(p.Placeholder, c))
		}
	}
	if needColorPick && p.Enabled() {
		d.manager.ScheduleColorPick(canvas, &rect, p)
	}
}

// Manager returns the node's manager.
func (d *Drawable) Manager() Manager {
	return d.manager
}

// Scheduler returns the node's scheduler.
func (d *Drawable) Scheduler() *Scheduler {
	return d.sched
}

// Close releases the manager; samples still in flight are discarded.
func (d *Drawable) Close() {
	if d.manager != nil {
		d.manager.Release()
		d.manager = nil
	}
}
