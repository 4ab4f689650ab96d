// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/color"
	"image/draw"
	"sync"
)

// ImageSurface is a CPU-based surface backed by an *image.RGBA.
//
// Drawing methods are meant for the render goroutine. Snapshots are
// independent copies and may be read from any goroutine.
//
// Example:
//
//	s := surface.NewImageSurface(800, 600)
//	defer s.Close()
//
//	s.Clear(color.White)
//	s.FillRect(image.Rect(0, 0, 100, 100), color.Black)
//	img, err := s.ImageSnapshot(image.Rect(0, 0, 50, 50), false)
type ImageSurface struct {
	width  int
	height int
	img    *image.RGBA
	cs     ColorSpace

	mu sync.Mutex

	// generation increments on every draw and invalidates cached snapshots
	generation uint64

	// last snapshot handed out, reused when allowCache is set
	cached       *RasterImage
	cachedBounds image.Rectangle
	cachedGen    uint64

	flushes int

	closed bool
}

// NewImageSurface creates a new CPU-based surface with the given dimensions.
func NewImageSurface(width, height int) *ImageSurface {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	return &ImageSurface{
		width:  width,
		height: height,
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// NewImageSurfaceFromImage creates a surface backed by an existing image.
// The surface draws into img directly.
func NewImageSurfaceFromImage(img *image.RGBA) *ImageSurface {
	b := img.Bounds()
	return &ImageSurface{
		width:  b.Dx(),
		height: b.Dy(),
		img:    img,
	}
}

// Width returns the surface width.
func (s *ImageSurface) Width() int {
	return s.width
}

// Height returns the surface height.
func (s *ImageSurface) Height() int {
	return s.height
}

// SetColorSpace sets the colour space reported by snapshots.
func (s *ImageSurface) SetColorSpace(cs ColorSpace) {
	s.mu.Lock()
	s.cs = cs
	s.mu.Unlock()
}

// Clear fills the entire surface with c.
func (s *ImageSurface) Clear(c color.Color) {
	s.FillRect(s.img.Bounds(), c)
}

// FillRect fills r, clipped to the surface, with c.
func (s *ImageSurface) FillRect(r image.Rectangle, c color.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	draw.Draw(s.img, r.Intersect(s.img.Bounds()), image.NewUniform(c), image.Point{}, draw.Src)
	s.generation++
}

// DrawImage composites src over the surface with its origin at pt.
func (s *ImageSurface) DrawImage(src image.Image, pt image.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || src == nil {
		return
	}
	sb := src.Bounds()
	dr := image.Rectangle{Min: pt, Max: pt.Add(sb.Size())}
	draw.Draw(s.img, dr, src, sb.Min, draw.Over)
	s.generation++
}

// ImageSnapshot copies the pixels inside bounds into an immutable image.
func (s *ImageSurface) ImageSnapshot(bounds image.Rectangle, allowCache bool) (Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	b := bounds.Intersect(s.img.Bounds())
	if b.Empty() {
		return nil, ErrEmptyBounds
	}
	if allowCache && s.cached != nil && s.cachedBounds == b && s.cachedGen == s.generation {
		return s.cached, nil
	}

	pix := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(pix, pix.Bounds(), s.img, b.Min, draw.Src)
	snap := NewRasterImage(pix, s.cs)

	s.cached = snap
	s.cachedBounds = b
	s.cachedGen = s.generation
	return snap, nil
}

// Flush completes immediately: CPU drawing is synchronous, so FinishedProc
// is invoked before Flush returns.
func (s *ImageSurface) Flush(info FlushInfo) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.flushes++
	s.mu.Unlock()

	if info.FinishedProc != nil {
		info.FinishedProc()
	}
	return nil
}

// Flushes returns how many times Flush succeeded.
func (s *ImageSurface) Flushes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushes
}

// Snapshot returns a copy of the whole surface.
func (s *ImageSurface) Snapshot() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := image.NewRGBA(s.img.Bounds())
	copy(out.Pix, s.img.Pix)
	return out
}

// Image returns the backing image. Modifications bypass snapshot caching.
func (s *ImageSurface) Image() *image.RGBA {
	return s.img
}

// Close releases the surface. Later operations fail with ErrClosed or
// become no-ops.
func (s *ImageSurface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cached = nil
	return nil
}

var _ Surface = (*ImageSurface)(nil)
