package colorpick

import (
	"sync/atomic"

	"github.com/gogpu/colorpick/surface"
)

// ContrastManager drives an animated black or white contrast colour from
// the sampled background luminance.
//
// A new sample only changes the target when it crosses the hysteresis
// threshold for the current target (see ContrastColor). The change is
// animated over AnimationDuration starting from whatever colour is on
// screen at that moment.
type ContrastManager struct {
	rt     *Runtime
	nodeID NodeID
	target *UpdateTarget

	colorPicked atomic.Uint32 // target contrast colour, Transparent if unset
	prevColor   atomic.Uint32 // animation start colour
	animStart   atomic.Int64  // ms
	darkMode    atomic.Bool
}

// NewContrastManager creates a manager for node id.
func NewContrastManager(rt *Runtime, id NodeID) *ContrastManager {
	m := &ContrastManager{rt: rt, nodeID: id}
	m.target = NewUpdateTarget(m.HandleColorUpdate)
	return m
}

// ColorPick returns the current, possibly mid-animation, contrast colour.
// While the animation runs it also marks the node dirty so the next frame
// keeps interpolating.
func (m *ContrastManager) ColorPick() (Color, bool) {
	fraction := m.fraction()
	if fraction <= 1 {
		m.rt.NotifyNodeDirty(m.nodeID)
	}
	return m.interpolated(fraction), true
}

func (m *ContrastManager) fraction() float64 {
	elapsed := m.rt.nowMs() - m.animStart.Load()
	return float64(elapsed) / float64(AnimationDuration.Milliseconds())
}

// interpolated blends prevColor towards colorPicked. Past the end of the
// animation InterpolateColor yields the target itself.
func (m *ContrastManager) interpolated(fraction float64) Color {
	prev := m.substitute(Color(m.prevColor.Load()))
	cur := m.substitute(Color(m.colorPicked.Load()))
	return InterpolateColor(prev, cur, fraction)
}

// substitute replaces the unset sentinel with the theme default.
func (m *ContrastManager) substitute(c Color) Color {
	if c != Transparent {
		return c
	}
	if m.darkMode.Load() {
		return White
	}
	return Black
}

// HandleColorUpdate applies a sampled colour.
func (m *ContrastManager) HandleColorUpdate(c Color) {
	cur := Color(m.colorPicked.Load())
	next := ContrastColor(c, cur == Black)
	if next == cur {
		return
	}
	visual := m.interpolated(m.fraction())
	m.prevColor.Store(uint32(visual))
	m.colorPicked.Store(uint32(next))
	m.animStart.Store(m.rt.nowMs())
	m.rt.NotifyNodeDirty(m.nodeID)
}

// ScheduleColorPick samples rect, the node's draw bounds. p.Rect is only
// honoured by ZoneManager.
func (m *ContrastManager) ScheduleColorPick(canvas surface.Canvas, rect *surface.Rect, p Param) {
	if !p.Enabled() {
		return
	}
	ExtractSnapshotAndScheduleColorPick(m.rt, canvas, rect, m.target, p.Strategy)
}

// SetSystemDarkColorMode selects the default colour used while unset.
func (m *ContrastManager) SetSystemDarkColorMode(dark bool) {
	m.darkMode.Store(dark)
}

// ResetColorMemory returns to the unset state.
func (m *ContrastManager) ResetColorMemory() {
	m.colorPicked.Store(uint32(Transparent))
	m.prevColor.Store(uint32(Transparent))
	m.animStart.Store(0)
}

// Release detaches the manager from samples in flight.
func (m *ContrastManager) Release() {
	m.target.Release()
}

var _ Manager = (*ContrastManager)(nil)
