// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface defines the rendering boundary the colour picker samples
// from.
//
// A compositor hands the picker a Canvas during its draw pass. The canvas
// exposes its device clip and its backing Surface. The picker asks the
// surface for an ImageSnapshot of the region under a node, pulls the
// snapshot's BackendTexture and later, on the picker worker, rebuilds an
// Image from that texture through a GPUContext and reads its pixels back.
//
// # Implementations
//
//   - ImageSurface: CPU surface backed by *image.RGBA. Its snapshots expose
//     the pixel buffer as a backend texture so the whole sampling path can
//     run without a GPU.
//   - SurfaceCanvas: Canvas over any Surface with a save/restore stack of
//     clips and translations.
//   - SoftwareContext: GPUContext that rebuilds images from software
//     backend textures.
//
// GPU-backed implementations live with the compositor; they only need to
// satisfy the interfaces in this package.
//
// # Usage
//
//	s := surface.NewImageSurface(800, 600)
//	s.Clear(color.White)
//
//	c := surface.NewCanvas(s)
//	c.Save()
//	c.ClipRect(surface.NewRect(10, 10, 110, 60))
//	bounds := c.DeviceClipBounds()
//	img, err := s.ImageSnapshot(bounds, true)
//	c.Restore()
package surface
