package colorpick

import (
	"image"
	"image/color"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/colorpick/surface"
)

// fakeClock is a manually advanced Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(ms int64) *fakeClock {
	return &fakeClock{now: time.UnixMilli(ms)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// recorder collects dirty and client notifications.
type recorder struct {
	mu     sync.Mutex
	dirty  []NodeID
	client []uint32
}

func (r *recorder) onDirty(id NodeID) {
	r.mu.Lock()
	r.dirty = append(r.dirty, id)
	r.mu.Unlock()
}

func (r *recorder) onClient(_ NodeID, lum uint32) {
	r.mu.Lock()
	r.client = append(r.client, lum)
	r.mu.Unlock()
}

func (r *recorder) dirtyCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.dirty)
}

func (r *recorder) clientValues() []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uint32(nil), r.client...)
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.dirty = nil
	r.client = nil
	r.mu.Unlock()
}

func newTestRuntime(t *testing.T, opts ...Option) (*Runtime, *recorder) {
	t.Helper()
	rt := NewRuntime(opts...)
	rec := &recorder{}
	rt.RegisterNodeDirtyCallback(rec.onDirty)
	rt.RegisterNotifyClientCallback(rec.onClient)
	t.Cleanup(func() { _ = rt.Close() })
	return rt, rec
}

// drain waits until every task queued before the call has run. Delayed
// tasks that are not yet due are not waited for.
func drain(t *testing.T, rt *Runtime) {
	t.Helper()
	done := make(chan struct{})
	if !rt.postCatchUp(func() { close(done) }, 0) {
		t.Fatal("runtime closed")
	}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("picker worker did not drain")
	}
}

func gray(lum uint8) color.RGBA {
	return color.RGBA{R: lum, G: lum, B: lum, A: 0xff}
}

// filledSurface returns a w×h surface painted with c.
func filledSurface(w, h int, c color.Color) *surface.ImageSurface {
	s := surface.NewImageSurface(w, h)
	s.Clear(c)
	return s
}

// sinkCanvas records colours published by OnDraw.
type sinkCanvas struct {
	*surface.SurfaceCanvas

	mu     sync.Mutex
	picked []Color
}

func newSinkCanvas(s surface.Surface) *sinkCanvas {
	return &sinkCanvas{SurfaceCanvas: surface.NewCanvas(s)}
}

func (c *sinkCanvas) SetColorPicked(_ NodeID, _ Placeholder, col Color) {
	c.mu.Lock()
	c.picked = append(c.picked, col)
	c.mu.Unlock()
}

func (c *sinkCanvas) last() (Color, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.picked) == 0 {
		return 0, false
	}
	return c.picked[len(c.picked)-1], true
}

// stubCanvas has a fixed clip and an optional surface.
type stubCanvas struct {
	clip    image.Rectangle
	surface surface.Surface
	saves   int
	clipped []surface.Rect
}

func (c *stubCanvas) Save() int                { c.saves++; return c.saves - 1 }
func (c *stubCanvas) Restore()                 { c.saves-- }
func (c *stubCanvas) ClipRect(r surface.Rect)  { c.clipped = append(c.clipped, r) }
func (c *stubCanvas) Surface() surface.Surface { return c.surface }
func (c *stubCanvas) DeviceClipBounds() image.Rectangle {
	if len(c.clipped) == 0 {
		return c.clip
	}
	return c.clip.Intersect(c.clipped[len(c.clipped)-1].RoundIn())
}

// deferredSurface holds flush completions until complete is called.
type deferredSurface struct {
	*surface.ImageSurface

	mu    sync.Mutex
	procs []func()
}

func (s *deferredSurface) Flush(info surface.FlushInfo) error {
	s.mu.Lock()
	if info.FinishedProc != nil {
		s.procs = append(s.procs, info.FinishedProc)
	}
	s.mu.Unlock()
	return nil
}

func (s *deferredSurface) complete() {
	s.mu.Lock()
	procs := s.procs
	s.procs = nil
	s.mu.Unlock()
	for _, p := range procs {
		p()
	}
}

// fakeAccelerator reports a fixed colour.
type fakeAccelerator struct {
	mu     sync.Mutex
	accept bool
	color  Color
	calls  int
	logger *slog.Logger
}

func (a *fakeAccelerator) Name() string { return "fake" }

func (a *fakeAccelerator) SampleColor(_ surface.Surface, img surface.Image, _ Strategy, done func(Color)) bool {
	a.mu.Lock()
	a.calls++
	accept, c := a.accept, a.color
	a.mu.Unlock()
	if !accept || img == nil || done == nil {
		return false
	}
	go done(c)
	return true
}

func (a *fakeAccelerator) SetLogger(l *slog.Logger) {
	a.mu.Lock()
	a.logger = l
	a.mu.Unlock()
}

func (a *fakeAccelerator) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// fakeManager records calls from the scheduler and drawable.
type fakeManager struct {
	dark      bool
	darkCalls int
	scheduled []Param
	released  bool
}

func (m *fakeManager) ColorPick() (Color, bool) { return Transparent, false }
func (m *fakeManager) ScheduleColorPick(_ surface.Canvas, _ *surface.Rect, p Param) {
	m.scheduled = append(m.scheduled, p)
}
func (m *fakeManager) SetSystemDarkColorMode(dark bool) { m.dark = dark; m.darkCalls++ }
func (m *fakeManager) ResetColorMemory()                {}
func (m *fakeManager) HandleColorUpdate(Color)          {}
func (m *fakeManager) Release()                         { m.released = true }

// waitUntil polls cond for up to two seconds.
func waitUntil(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}

func image100() image.Rectangle {
	return image.Rect(0, 0, 100, 100)
}
