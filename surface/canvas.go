// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import "image"

type canvasState struct {
	clip   image.Rectangle
	tx, ty float64
}

// SurfaceCanvas is a Canvas over a Surface tracking a clip and a
// translation. It is not safe for concurrent use.
type SurfaceCanvas struct {
	surface Surface
	state   canvasState
	stack   []canvasState
}

// NewCanvas creates a canvas clipped to the full surface. A nil surface
// gives a canvas with an empty clip.
func NewCanvas(s Surface) *SurfaceCanvas {
	c := &SurfaceCanvas{surface: s}
	if s != nil {
		c.state.clip = image.Rect(0, 0, s.Width(), s.Height())
	}
	return c
}

// Save pushes the current state.
func (c *SurfaceCanvas) Save() int {
	n := len(c.stack)
	c.stack = append(c.stack, c.state)
	return n
}

// Restore pops the last saved state. Unbalanced calls are ignored.
func (c *SurfaceCanvas) Restore() {
	if len(c.stack) == 0 {
		return
	}
	c.state = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
}

// SaveCount returns the depth of the save stack.
func (c *SurfaceCanvas) SaveCount() int {
	return len(c.stack)
}

// Translate moves the local origin by (dx, dy).
func (c *SurfaceCanvas) Translate(dx, dy float64) {
	c.state.tx += dx
	c.state.ty += dy
}

// ClipRect intersects the clip with r.
func (c *SurfaceCanvas) ClipRect(r Rect) {
	c.state.clip = c.state.clip.Intersect(r.Offset(c.state.tx, c.state.ty).RoundIn())
}

// DeviceClipBounds returns the clip in device pixels.
func (c *SurfaceCanvas) DeviceClipBounds() image.Rectangle {
	return c.state.clip
}

// Surface returns the backing surface.
func (c *SurfaceCanvas) Surface() Surface {
	return c.surface
}

var _ Canvas = (*SurfaceCanvas)(nil)
