// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
)

// SoftwareContext is a GPUContext for software backend textures, whose
// handle is an *image.RGBA. It is safe for concurrent use.
type SoftwareContext struct{}

// NewSoftwareContext returns a software GPU context.
func NewSoftwareContext() *SoftwareContext {
	return &SoftwareContext{}
}

// BuildFromTexture wraps the texture pixels in an Image. Bottom-left origin
// and BGRA textures are converted into a top-left RGBA copy.
func (*SoftwareContext) BuildFromTexture(tex BackendTexture, origin Origin, format gputypes.TextureFormat, cs ColorSpace) (Image, error) {
	if !tex.IsValid() {
		return nil, fmt.Errorf("build from texture: %w", ErrUnsupportedTexture)
	}
	pix, ok := tex.Handle.(*image.RGBA)
	if !ok {
		return nil, fmt.Errorf("build from texture: handle %T: %w", tex.Handle, ErrUnsupportedTexture)
	}
	if pix.Rect.Dx() < tex.Width || pix.Rect.Dy() < tex.Height {
		return nil, fmt.Errorf("build from texture: %dx%d exceeds buffer: %w", tex.Width, tex.Height, ErrUnsupportedTexture)
	}

	swap := false
	switch format {
	case gputypes.TextureFormatRGBA8Unorm:
	case gputypes.TextureFormatBGRA8Unorm:
		swap = true
	default:
		return nil, fmt.Errorf("build from texture: format %v: %w", format, ErrUnsupportedTexture)
	}

	if !swap && origin == OriginTopLeft {
		sub, _ := pix.SubImage(image.Rect(0, 0, tex.Width, tex.Height).Add(pix.Rect.Min)).(*image.RGBA)
		return NewRasterImage(sub, cs), nil
	}

	out := image.NewRGBA(image.Rect(0, 0, tex.Width, tex.Height))
	for y := 0; y < tex.Height; y++ {
		sy := y
		if origin == OriginBottomLeft {
			sy = tex.Height - 1 - y
		}
		si := pix.PixOffset(pix.Rect.Min.X, pix.Rect.Min.Y+sy)
		di := out.PixOffset(0, y)
		row := out.Pix[di : di+tex.Width*4]
		copy(row, pix.Pix[si:si+tex.Width*4])
		if swap {
			for i := 0; i < len(row); i += 4 {
				row[i], row[i+2] = row[i+2], row[i]
			}
		}
	}
	return NewRasterImage(out, cs), nil
}

var _ GPUContext = (*SoftwareContext)(nil)
