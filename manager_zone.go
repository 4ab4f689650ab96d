package colorpick

import (
	"sync/atomic"

	"github.com/gogpu/colorpick/surface"
)

// Zone classifies a background luminance.
type Zone uint8

const (
	ZoneUnknown Zone = iota
	ZoneDark
	ZoneNeutral
	ZoneLight
)

// String returns the zone name.
func (z Zone) String() string {
	switch z {
	case ZoneDark:
		return "dark"
	case ZoneNeutral:
		return "neutral"
	case ZoneLight:
		return "light"
	default:
		return "unknown"
	}
}

// unknownLuminance marks a luminance that was never read.
const unknownLuminance = 256

// ClassifyLuminance returns the zone of lum: unknown above 255, dark below
// t.Dark, light above t.Light, neutral otherwise.
func ClassifyLuminance(lum uint32, t NotifyThreshold) Zone {
	switch {
	case lum > 255:
		return ZoneUnknown
	case lum < t.Dark:
		return ZoneDark
	case lum > t.Light:
		return ZoneLight
	default:
		return ZoneNeutral
	}
}

// ZoneManager reports luminance zone changes to a client through
// Runtime.NotifyClient. It does not drive paint-time colour.
type ZoneManager struct {
	rt     *Runtime
	nodeID NodeID
	target *UpdateTarget

	pickedLuminance atomic.Uint32
	darkThreshold   atomic.Uint32
	lightThreshold  atomic.Uint32
}

// NewZoneManager creates a manager for node id with default thresholds.
func NewZoneManager(rt *Runtime, id NodeID) *ZoneManager {
	m := &ZoneManager{rt: rt, nodeID: id}
	m.pickedLuminance.Store(unknownLuminance)
	m.darkThreshold.Store(DefaultNotifyThreshold.Dark)
	m.lightThreshold.Store(DefaultNotifyThreshold.Light)
	m.target = NewUpdateTarget(m.HandleColorUpdate)
	return m
}

// ColorPick always reports no colour.
func (m *ZoneManager) ColorPick() (Color, bool) {
	return Transparent, false
}

// Luminance returns the last sampled luminance, or a value above 255 if
// none was read yet.
func (m *ZoneManager) Luminance() uint32 {
	return m.pickedLuminance.Load()
}

func (m *ZoneManager) thresholds() NotifyThreshold {
	return NotifyThreshold{Dark: m.darkThreshold.Load(), Light: m.lightThreshold.Load()}
}

// HandleColorUpdate stores the sample's luminance and notifies the client
// if its zone differs from the previous sample's.
func (m *ZoneManager) HandleColorUpdate(c Color) {
	lum := uint32(Luminance(c))
	prev := m.pickedLuminance.Swap(lum)
	t := m.thresholds()
	if ClassifyLuminance(prev, t) == ClassifyLuminance(lum, t) {
		return
	}
	m.rt.NotifyClient(m.nodeID, min(lum, 255))
}

// ScheduleColorPick refreshes the thresholds from p and samples rect, or
// p.Rect when set.
func (m *ZoneManager) ScheduleColorPick(canvas surface.Canvas, rect *surface.Rect, p Param) {
	if !p.Enabled() {
		return
	}
	m.darkThreshold.Store(p.NotifyThreshold.Dark)
	m.lightThreshold.Store(p.NotifyThreshold.Light)
	if p.Rect != nil {
		rect = p.Rect
	}
	ExtractSnapshotAndScheduleColorPick(m.rt, canvas, rect, m.target, p.Strategy)
}

// SetSystemDarkColorMode has no effect on zones.
func (m *ZoneManager) SetSystemDarkColorMode(bool) {}

// ResetColorMemory forgets the last luminance, so the next sample always
// notifies.
func (m *ZoneManager) ResetColorMemory() {
	m.pickedLuminance.Store(unknownLuminance)
}

// Release detaches the manager from samples in flight.
func (m *ZoneManager) Release() {
	m.target.Release()
}

var _ Manager = (*ZoneManager)(nil)
