// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"

	"github.com/gogpu/gputypes"
)

// RasterImage is an Image backed by CPU memory. Its backend texture handle
// is the underlying *image.RGBA.
type RasterImage struct {
	pix *image.RGBA
	cs  ColorSpace
}

// NewRasterImage wraps pix. The image must not be modified afterwards.
func NewRasterImage(pix *image.RGBA, cs ColorSpace) *RasterImage {
	return &RasterImage{pix: pix, cs: cs}
}

// Width returns the image width.
func (r *RasterImage) Width() int { return r.pix.Rect.Dx() }

// Height returns the image height.
func (r *RasterImage) Height() int { return r.pix.Rect.Dy() }

// ColorSpace returns the colour space of the pixels.
func (r *RasterImage) ColorSpace() ColorSpace { return r.cs }

// Format returns gputypes.TextureFormatRGBA8Unorm.
func (r *RasterImage) Format() gputypes.TextureFormat { return gputypes.TextureFormatRGBA8Unorm }

// BackendTexture exposes the pixel buffer as a software texture.
func (r *RasterImage) BackendTexture() (BackendTexture, bool) {
	if r.pix == nil || r.pix.Rect.Empty() {
		return BackendTexture{}, false
	}
	return BackendTexture{
		Handle: r.pix,
		Width:  r.Width(),
		Height: r.Height(),
		Format: r.Format(),
	}, true
}

// ReadPixels copies the overlap of dst placed at (srcX, srcY) in the image.
func (r *RasterImage) ReadPixels(dst *Pixmap, srcX, srcY int) bool {
	if dst == nil || dst.IsEmpty() || r.pix == nil {
		return false
	}
	b := r.pix.Rect
	src := image.Rect(srcX, srcY, srcX+dst.Width(), srcY+dst.Height()).
		Add(b.Min).Intersect(b)
	if src.Empty() {
		return false
	}
	out := dst.RGBA()
	for y := src.Min.Y; y < src.Max.Y; y++ {
		si := r.pix.PixOffset(src.Min.X, y)
		di := out.PixOffset(src.Min.X-b.Min.X-srcX, y-b.Min.Y-srcY)
		copy(out.Pix[di:di+src.Dx()*4], r.pix.Pix[si:si+src.Dx()*4])
	}
	return true
}

// Pixels returns the underlying buffer.
func (r *RasterImage) Pixels() *image.RGBA { return r.pix }
