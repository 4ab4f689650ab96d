package colorpick

import (
	"time"

	"github.com/gogpu/colorpick/surface"
)

// AnimationDuration is how long a contrast colour change takes to blend in.
const AnimationDuration = 133 * time.Millisecond

// Manager owns the picked colour state of one node.
//
// The draw goroutine calls ColorPick and ScheduleColorPick; the picker
// worker calls HandleColorUpdate. Implementations keep that shared state in
// atomics.
type Manager interface {
	// ColorPick returns the colour to paint with, if this manager drives
	// paint-time colour.
	ColorPick() (Color, bool)

	// ScheduleColorPick starts an asynchronous sample of rect on canvas.
	ScheduleColorPick(canvas surface.Canvas, rect *surface.Rect, p Param)

	SetSystemDarkColorMode(dark bool)

	// ResetColorMemory forgets previously picked colours.
	ResetColorMemory()

	// HandleColorUpdate consumes a sampled background colour.
	HandleColorUpdate(c Color)

	// Release detaches the manager from samples still in flight.
	Release()
}

// NewManager returns a ZoneManager for StrategyClientCallback and a
// ContrastManager for every other strategy.
func NewManager(rt *Runtime, id NodeID, strategy Strategy) Manager {
	if strategy == StrategyClientCallback {
		return NewZoneManager(rt, id)
	}
	return NewContrastManager(rt, id)
}
