package main

import (
	"fmt"
	"image/color"
	"io"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"

	"github.com/gogpu/colorpick"
	"github.com/gogpu/colorpick/surface"
)

// pickCanvas is the canvas handed to OnDraw; it keeps the last colour
// published for its node.
type pickCanvas struct {
	*surface.SurfaceCanvas

	mu          sync.Mutex
	picked      colorpick.Color
	placeholder colorpick.Placeholder
	updates     int
}

func (c *pickCanvas) SetColorPicked(_ colorpick.NodeID, p colorpick.Placeholder, col colorpick.Color) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if col != c.picked {
		c.updates++
	}
	c.picked = col
	c.placeholder = p
}

func (c *pickCanvas) last() (colorpick.Color, colorpick.Placeholder, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.picked, c.placeholder, c.updates
}

type simNode struct {
	node     *colorpick.Node
	drawable *colorpick.Drawable
	surface  *surface.ImageSurface
	canvas   *pickCanvas
	bg       uint8
}

// simulation is a tiny compositor: each node owns a surface whose
// background luminance sweeps up and down, offset per node.
type simulation struct {
	rt    *colorpick.Runtime
	nodes []*simNode
	size  int
	dark  bool

	paramsChanged atomic.Bool
	dirty         atomic.Int64
	frames        int
}

func newSimulation(rt *colorpick.Runtime, count, size int, p colorpick.Param) *simulation {
	s := &simulation{rt: rt, size: size}
	rt.RegisterNodeDirtyCallback(func(colorpick.NodeID) { s.dirty.Add(1) })
	for i := range count {
		n := colorpick.NewNode(colorpick.NodeID(i + 1))
		n.SetColorPickerParams(p.Placeholder, p.Strategy, p.Interval)
		n.SetNotifyThreshold(p.NotifyThreshold)
		surf := surface.NewImageSurface(size, size)
		s.nodes = append(s.nodes, &simNode{
			node:    n,
			surface: surf,
			canvas:  &pickCanvas{SurfaceCanvas: surface.NewCanvas(surf)},
		})
	}
	return s
}

// attach creates the drawables. Callback registrations must happen first
// so that those nodes get a zone manager.
func (s *simulation) attach() {
	for _, sn := range s.nodes {
		sn.drawable = colorpick.NewDrawable(s.rt, sn.node)
	}
}

// applyParams updates every node; drawables pick it up on the next frame.
func (s *simulation) applyParams(p colorpick.Param) {
	for _, sn := range s.nodes {
		if isCallback(sn.node) {
			continue
		}
		sn.node.SetColorPickerParams(p.Placeholder, p.Strategy, p.Interval)
		sn.node.SetNotifyThreshold(p.NotifyThreshold)
	}
	s.paramsChanged.Store(true)
}

func isCallback(n *colorpick.Node) bool {
	p, ok := n.ColorPickerParams()
	return ok && p.Strategy == colorpick.StrategyClientCallback
}

// background returns a triangle wave over 0..255 with period 128 frames.
func background(frame, index int) uint8 {
	v := (frame*4 + index*85) % 510
	if v > 255 {
		v = 510 - v
	}
	return uint8(v)
}

// step runs one frame at vsync time vsyncNanos.
func (s *simulation) step(vsyncNanos int64) {
	update := s.paramsChanged.Swap(false)
	bounds := surface.RectFromSize(0, 0, float64(s.size), float64(s.size))
	for i, sn := range s.nodes {
		sn.bg = background(s.frames, i)
		sn.surface.Clear(color.RGBA{R: sn.bg, G: sn.bg, B: sn.bg, A: 0xff})

		if update {
			if sn.drawable == nil {
				sn.drawable = colorpick.NewDrawable(s.rt, sn.node)
			} else if !sn.drawable.OnUpdate(sn.node) {
				sn.drawable.Close()
				sn.drawable = nil
			}
		}
		if sn.drawable == nil {
			continue
		}
		sn.drawable.SetIsSystemDarkColorMode(s.dark)
		sn.drawable.PrepareForExecution(vsyncNanos, s.dark)
		sn.drawable.OnSync()
		sn.drawable.OnDraw(sn.canvas, bounds)
	}
	s.frames++
}

func (s *simulation) close() {
	for _, sn := range s.nodes {
		if sn.drawable != nil {
			sn.drawable.Close()
		}
	}
}

// hex formats c as #RRGGBB for terminal styles.
func hex(c colorpick.Color) string {
	return fmt.Sprintf("#%06X", uint32(c)&0xFFFFFF)
}

func swatch(c colorpick.Color, styled bool) string {
	if !styled {
		return "[" + c.String() + "]"
	}
	return lipgloss.NewStyle().Background(lipgloss.Color(hex(c))).Render("    ") + " " + c.String()
}

var labelStyle = lipgloss.NewStyle().Bold(true).Width(8)

// report writes one line per node.
func (s *simulation) report(w io.Writer, styled bool) {
	fmt.Fprintf(w, "frames: %d  dirty notifications: %d  pending tasks: %d\n",
		s.frames, s.dirty.Load(), s.rt.PendingTasks())
	for _, sn := range s.nodes {
		label := fmt.Sprintf("node %d", sn.node.ID())
		if styled {
			label = labelStyle.Render(label)
		}
		bg := colorpick.RGB(sn.bg, sn.bg, sn.bg)
		picked, placeholder, updates := sn.canvas.last()
		if sn.drawable == nil {
			fmt.Fprintf(w, "%s  background %s  disabled\n", label, swatch(bg, styled))
			continue
		}
		if isCallback(sn.node) {
			fmt.Fprintf(w, "%s  background %s  client callback\n", label, swatch(bg, styled))
			continue
		}
		fmt.Fprintf(w, "%s  background %s  picked %s  placeholder %s  changes %d\n",
			label, swatch(bg, styled), swatch(picked, styled), placeholder, updates)
	}
}
