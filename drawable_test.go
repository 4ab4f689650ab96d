package colorpick

import (
	"testing"
	"time"

	"github.com/gogpu/colorpick/surface"
)

func TestNewDrawable(t *testing.T) {
	rt, _ := newTestRuntime(t)

	bare := NewNode(1)
	none := NewNode(2)
	none.SetColorPickerParams(PlaceholderSurface, StrategyNone, time.Second)
	contrast := NewNode(3)
	contrast.SetColorPickerParams(PlaceholderSurface, StrategyAverage, time.Second)
	zone := NewNode(4)
	zone.SetColorPickerParams(PlaceholderNone, StrategyClientCallback, time.Second)

	tests := []struct {
		name string
		rt   *Runtime
		node *Node
		want string
	}{
		{"nil runtime", nil, contrast, ""},
		{"nil node", rt, nil, ""},
		{"no params", rt, bare, ""},
		{"strategy none", rt, none, ""},
		{"contrast", rt, contrast, "contrast"},
		{"zone", rt, zone, "zone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDrawable(tt.rt, tt.node)
			var got string
			if d != nil {
				switch d.Manager().(type) {
				case *ContrastManager:
					got = "contrast"
				case *ZoneManager:
					got = "zone"
				default:
					got = "other"
				}
				d.Close()
			}
			if got != tt.want {
				t.Errorf("manager kind %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDrawable_OnDrawNoop(t *testing.T) {
	rt, rec := newTestRuntime(t)
	n := NewNode(1)
	n.SetColorPickerParams(PlaceholderSurface, StrategyAverage, 0)
	d := NewDrawable(rt, n)

	d.PrepareForExecution(ms(100), false)
	d.OnSync()
	d.OnDraw(nil, surface.Rect{Right: 10, Bottom: 10})

	var nilDrawable *Drawable
	nilDrawable.OnDraw(newSinkCanvas(nil), surface.Rect{})

	d.Close()
	c := newSinkCanvas(filledSurface(10, 10, gray(0)))
	d.OnDraw(c, surface.Rect{Right: 10, Bottom: 10})
	if _, ok := c.last(); ok {
		t.Error("closed drawable published a colour")
	}
	drain(t, rt)
	if rec.dirtyCount() != 0 {
		t.Error("no-op draws marked the node dirty")
	}
}

func TestDrawable_ResolvesPlaceholder(t *testing.T) {
	tests := []struct {
		placeholder Placeholder
		want        Color
	}{
		{PlaceholderNone, Black},
		{PlaceholderSurface, 0x33000000},
		{PlaceholderTextContrast, 0xE5000000},
		{PlaceholderForeground, Black},
	}
	for _, tt := range tests {
		t.Run(tt.placeholder.String(), func(t *testing.T) {
			rt, _ := newTestRuntime(t, WithClock(newFakeClock(10_000)))
			n := NewNode(1)
			n.SetColorPickerParams(tt.placeholder, StrategyContrast, time.Hour)
			d := NewDrawable(rt, n)
			defer d.Close()

			c := newSinkCanvas(nil)
			d.OnSync()
			d.OnDraw(c, surface.Rect{})
			got, ok := c.last()
			if !ok || got != tt.want {
				t.Errorf("published %v (%v), want %v", got, ok, tt.want)
			}
		})
	}
}

func TestDrawable_OnUpdate(t *testing.T) {
	rt, _ := newTestRuntime(t)
	n := NewNode(1)
	n.SetColorPickerParams(PlaceholderSurface, StrategyAverage, time.Second)
	d := NewDrawable(rt, n)
	defer d.Close()

	first := d.Manager().(*ContrastManager)
	n.SetColorPickerParams(PlaceholderSurface, StrategyDominant, time.Second)
	if !d.OnUpdate(n) || d.Manager() != Manager(first) {
		t.Fatal("strategy change within contrast kind replaced the manager")
	}

	n.SetColorPickerParams(PlaceholderNone, StrategyClientCallback, time.Second)
	if !d.OnUpdate(n) {
		t.Fatal("OnUpdate reported disabled")
	}
	if _, ok := d.Manager().(*ZoneManager); !ok {
		t.Fatalf("manager is %T, want *ZoneManager", d.Manager())
	}
	if !first.target.Released() {
		t.Error("replaced manager not released")
	}

	n.SetColorPickerParams(PlaceholderNone, StrategyNone, 0)
	if d.OnUpdate(n) {
		t.Error("OnUpdate with StrategyNone reported enabled")
	}
	if need, _ := d.PrepareForExecution(ms(99_000), false); need {
		t.Error("disabled drawable requested a sample")
	}
	if rt.PendingTasks() != 0 {
		t.Error("disabled drawable posted a task")
	}
}

func TestDrawable_DarkModeReachesManager(t *testing.T) {
	rt, _ := newTestRuntime(t, WithClock(newFakeClock(10_000)))
	n := NewNode(1)
	n.SetColorPickerParams(PlaceholderNone, StrategyContrast, time.Hour)
	d := NewDrawable(rt, n)
	defer d.Close()

	d.SetIsSystemDarkColorMode(true)
	d.OnSync()
	c := newSinkCanvas(nil)
	d.OnDraw(c, surface.Rect{})
	if got, _ := c.last(); got != White {
		t.Errorf("unset colour in dark mode = %v, want WHITE", got)
	}
}

// frame runs one prepare, sync and draw pass at the clock's current time.
func frame(d *Drawable, clk *fakeClock, c surface.Canvas, r surface.Rect) {
	d.PrepareForExecution(clk.Now().UnixNano(), false)
	d.OnSync()
	d.OnDraw(c, r)
}

func TestDrawable_EndToEnd(t *testing.T) {
	clk := newFakeClock(10_000)
	rt, rec := newTestRuntime(t, WithClock(clk))

	n := NewNode(1)
	n.SetColorPickerParams(PlaceholderSurface, StrategyAverage, 500*time.Millisecond)
	d := NewDrawable(rt, n)
	defer d.Close()
	m := d.Manager().(*ContrastManager)

	s := filledSurface(50, 50, gray(230))
	c := newSinkCanvas(s)
	r := surface.Rect{Right: 50, Bottom: 50}

	// A bright background picks black.
	frame(d, clk, c, r)
	waitUntil(t, func() bool { return Color(m.colorPicked.Load()) == Black }, "first sample not applied")
	if got, _ := c.last(); got != 0x33000000 {
		t.Errorf("first frame published %v, want the dark surface colour", got)
	}

	// The background darkens; the next sample after the interval flips to white.
	s.Clear(gray(100))
	clk.Advance(500 * time.Millisecond)
	frame(d, clk, c, r)
	waitUntil(t, func() bool { return Color(m.colorPicked.Load()) == White }, "second sample not applied")

	rec.reset()
	clk.Advance(66 * time.Millisecond)
	mid, _ := m.ColorPick()
	if mid.R() == 0 || mid.R() == 0xFF || mid.R() != mid.G() || mid.G() != mid.B() {
		t.Errorf("mid-animation colour %v, want a gray strictly between black and white", mid)
	}
	if rec.dirtyCount() == 0 {
		t.Error("running animation did not mark the node dirty")
	}

	clk.Advance(67 * time.Millisecond)
	if got, _ := m.ColorPick(); got != White {
		t.Errorf("colour at end of animation %v, want WHITE", got)
	}
	frame(d, clk, c, r)
	if got, _ := c.last(); got != 0x33FFFFFF {
		t.Errorf("published %v, want the light surface colour", got)
	}
}
