// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"image"
	"math"

	"github.com/gogpu/gputypes"
)

// Errors returned by surfaces and GPU contexts.
var (
	// ErrNoSurface is returned when a canvas has no backing surface.
	ErrNoSurface = errors.New("surface: no backing surface")

	// ErrEmptyBounds is returned when a snapshot region does not overlap
	// the surface.
	ErrEmptyBounds = errors.New("surface: empty snapshot bounds")

	// ErrUnsupportedTexture is returned when a backend texture cannot be
	// turned back into an image.
	ErrUnsupportedTexture = errors.New("surface: unsupported backend texture")

	// ErrClosed is returned by operations on a closed surface.
	ErrClosed = errors.New("surface: closed")
)

// Rect is an axis-aligned rectangle in floating point coordinates.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// NewRect creates a rectangle from its edges.
func NewRect(left, top, right, bottom float64) Rect {
	return Rect{Left: left, Top: top, Right: right, Bottom: bottom}
}

// RectFromSize creates a rectangle at (x, y) with the given size.
func RectFromSize(x, y, width, height float64) Rect {
	return Rect{Left: x, Top: y, Right: x + width, Bottom: y + height}
}

// Width returns the rectangle width.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the rectangle height.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// IsEmpty reports whether the rectangle encloses no area.
func (r Rect) IsEmpty() bool {
	return !(r.Right > r.Left) || !(r.Bottom > r.Top)
}

// Offset returns r translated by (dx, dy).
func (r Rect) Offset(dx, dy float64) Rect {
	return Rect{Left: r.Left + dx, Top: r.Top + dy, Right: r.Right + dx, Bottom: r.Bottom + dy}
}

// RoundIn returns the largest integer rectangle contained in r.
func (r Rect) RoundIn() image.Rectangle {
	if r.IsEmpty() {
		return image.Rectangle{}
	}
	x0, y0 := int(math.Ceil(r.Left)), int(math.Ceil(r.Top))
	x1, y1 := int(math.Floor(r.Right)), int(math.Floor(r.Bottom))
	// image.Rect would swap inverted bounds into a pixel outside r.
	if x0 >= x1 || y0 >= y1 {
		return image.Rectangle{}
	}
	return image.Rect(x0, y0, x1, y1)
}

// RoundOut returns the smallest integer rectangle containing r.
func (r Rect) RoundOut() image.Rectangle {
	if r.IsEmpty() {
		return image.Rectangle{}
	}
	return image.Rect(
		int(math.Floor(r.Left)), int(math.Floor(r.Top)),
		int(math.Ceil(r.Right)), int(math.Ceil(r.Bottom)),
	)
}

// FlushInfo controls a surface flush.
type FlushInfo struct {
	// BackendSurfaceAccess requests that pending work touching the backend
	// surface be submitted, so textures taken from snapshots are readable
	// from another context once FinishedProc runs.
	BackendSurfaceAccess bool

	// FinishedProc, if set, is called exactly once when the submitted work
	// has completed. It may run on any goroutine.
	FinishedProc func()
}

// Origin is the row order of a backend texture.
type Origin uint8

const (
	// OriginTopLeft means row 0 is the top of the image.
	OriginTopLeft Origin = iota

	// OriginBottomLeft means row 0 is the bottom of the image.
	OriginBottomLeft
)

// ColorSpace identifies the colour space of image data.
type ColorSpace uint8

const (
	// ColorSpaceSRGB is the sRGB colour space.
	ColorSpaceSRGB ColorSpace = iota

	// ColorSpaceDisplayP3 is the Display P3 colour space.
	ColorSpaceDisplayP3

	// ColorSpaceLinearSRGB is sRGB primaries with a linear transfer.
	ColorSpaceLinearSRGB
)

// String returns the colour space name.
func (c ColorSpace) String() string {
	switch c {
	case ColorSpaceSRGB:
		return "srgb"
	case ColorSpaceDisplayP3:
		return "display-p3"
	case ColorSpaceLinearSRGB:
		return "linear-srgb"
	default:
		return "unknown"
	}
}

// BackendTexture describes the GPU (or software) texture behind an image.
//
// Handle is backend specific. Software images use *image.RGBA.
type BackendTexture struct {
	Handle any
	Width  int
	Height int
	Format gputypes.TextureFormat
}

// IsValid reports whether the texture refers to real storage.
func (t BackendTexture) IsValid() bool {
	return t.Handle != nil && t.Width > 0 && t.Height > 0 &&
		t.Format != gputypes.TextureFormatUndefined
}
