// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"

	"github.com/gogpu/gputypes"
)

// Surface is a rendering target that can produce snapshots of its content.
type Surface interface {
	// Width returns the surface width in pixels.
	Width() int

	// Height returns the surface height in pixels.
	Height() int

	// ImageSnapshot returns an immutable image of the pixels inside bounds.
	// When allowCache is true the surface may return a previously taken
	// snapshot of the same region if nothing was drawn since.
	ImageSnapshot(bounds image.Rectangle, allowCache bool) (Image, error)

	// Flush submits pending work. See FlushInfo.
	Flush(info FlushInfo) error
}

// Canvas is the drawing interface a node paints through.
type Canvas interface {
	// Save pushes the current clip and translation and returns the
	// save count before the push.
	Save() int

	// Restore pops the state pushed by the matching Save.
	Restore()

	// ClipRect intersects the clip with r, given in local coordinates.
	ClipRect(r Rect)

	// DeviceClipBounds returns the current clip in device pixels, rounded
	// inwards.
	DeviceClipBounds() image.Rectangle

	// Surface returns the backing surface, or nil.
	Surface() Surface
}

// Image is an immutable snapshot of surface pixels.
type Image interface {
	Width() int
	Height() int

	// BackendTexture returns the texture holding the pixels, if any.
	BackendTexture() (BackendTexture, bool)

	// ReadPixels copies pixels starting at (srcX, srcY) into dst, converting
	// to RGBA. It reports false when nothing could be copied.
	ReadPixels(dst *Pixmap, srcX, srcY int) bool

	ColorSpace() ColorSpace
	Format() gputypes.TextureFormat
}

// GPUContext rebuilds images from backend textures. Implementations are not
// safe for concurrent use unless they say so.
type GPUContext interface {
	BuildFromTexture(tex BackendTexture, origin Origin, format gputypes.TextureFormat, cs ColorSpace) (Image, error)
}
