// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/color"
)

// Pixmap is a rectangular RGBA pixel buffer used as a read-back target.
type Pixmap struct {
	width  int
	height int
	data   []uint8 // RGBA, 4 bytes per pixel, tightly packed
}

// NewPixmap creates a zeroed pixmap. Non-positive dimensions yield an
// empty pixmap.
func NewPixmap(width, height int) *Pixmap {
	if width <= 0 || height <= 0 {
		return &Pixmap{}
	}
	return &Pixmap{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}
}

// Width returns the width of the pixmap.
func (p *Pixmap) Width() int {
	return p.width
}

// Height returns the height of the pixmap.
func (p *Pixmap) Height() int {
	return p.height
}

// Stride returns the number of bytes per row.
func (p *Pixmap) Stride() int {
	return p.width * 4
}

// Data returns the raw pixel data.
func (p *Pixmap) Data() []uint8 {
	return p.data
}

// IsEmpty reports whether the pixmap holds no pixels.
func (p *Pixmap) IsEmpty() bool {
	return p.width == 0 || p.height == 0
}

// SetPixel sets a single pixel. Out of range coordinates are ignored.
func (p *Pixmap) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return
	}
	i := (y*p.width + x) * 4
	p.data[i+0] = c.R
	p.data[i+1] = c.G
	p.data[i+2] = c.B
	p.data[i+3] = c.A
}

// Pixel returns a single pixel, or transparent when out of range.
func (p *Pixmap) Pixel(x, y int) color.RGBA {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return color.RGBA{}
	}
	i := (y*p.width + x) * 4
	return color.RGBA{R: p.data[i+0], G: p.data[i+1], B: p.data[i+2], A: p.data[i+3]}
}

// Clear fills the entire pixmap with c.
func (p *Pixmap) Clear(c color.RGBA) {
	for i := 0; i < len(p.data); i += 4 {
		p.data[i+0] = c.R
		p.data[i+1] = c.G
		p.data[i+2] = c.B
		p.data[i+3] = c.A
	}
}

// RGBA returns an *image.RGBA sharing the pixmap's buffer.
func (p *Pixmap) RGBA() *image.RGBA {
	return &image.RGBA{
		Pix:    p.data,
		Stride: p.Stride(),
		Rect:   image.Rect(0, 0, p.width, p.height),
	}
}
