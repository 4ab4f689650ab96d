// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package stats computes summary colours of small images: the mean colour
// and the dominant colour of a 5-bit-per-channel histogram.
package stats

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// DefaultMaxDimension bounds the longest side an image is sampled at.
const DefaultMaxDimension = 100

const (
	quantBits  = 5
	quantShift = 8 - quantBits
	quantMask  = 1<<quantBits - 1

	// Pixels at or below this alpha do not contribute.
	alphaThreshold = 16
)

// Kind selects a statistic.
type Kind uint8

const (
	// Average is the mean of all contributing pixels.
	Average Kind = iota

	// Dominant is the mean of the most populated histogram bucket.
	Dominant
)

// Downscale returns src scaled so its longest side is at most maxDim,
// preserving the aspect ratio. Images already small enough are returned
// as is. Non-positive maxDim selects DefaultMaxDimension.
func Downscale(src *image.RGBA, maxDim int) *image.RGBA {
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return src
	}
	var tw, th int
	if w >= h {
		tw = maxDim
		th = max(h*maxDim/w, 1)
	} else {
		th = maxDim
		tw = max(w*maxDim/h, 1)
	}
	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

// Compute downscales img and returns the requested statistic. ok is false
// when no pixel is opaque enough to contribute.
func Compute(img *image.RGBA, kind Kind, maxDim int) (c color.RGBA, ok bool) {
	if img == nil || img.Bounds().Empty() {
		return color.RGBA{}, false
	}
	img = Downscale(img, maxDim)
	switch kind {
	case Dominant:
		return DominantColor(img)
	default:
		return AverageColor(img)
	}
}

// AverageColor returns the opaque mean colour of img. Premultiplied
// channels are unpremultiplied before averaging.
func AverageColor(img *image.RGBA) (color.RGBA, bool) {
	var r, g, b, n uint64
	forEachPixel(img, func(pr, pg, pb uint8) {
		r += uint64(pr)
		g += uint64(pg)
		b += uint64(pb)
		n++
	})
	if n == 0 {
		return color.RGBA{}, false
	}
	return color.RGBA{
		R: uint8((r + n/2) / n),
		G: uint8((g + n/2) / n),
		B: uint8((b + n/2) / n),
		A: 0xff,
	}, true
}

type bucket struct {
	count   uint64
	r, g, b uint64
}

// DominantColor quantises img to 5 bits per channel and returns the mean
// colour of the most populated bucket. Ties go to the lower bucket index.
func DominantColor(img *image.RGBA) (color.RGBA, bool) {
	hist := make([]bucket, 1<<(quantBits*3))
	forEachPixel(img, func(pr, pg, pb uint8) {
		idx := int(pr>>quantShift)<<(quantBits*2) | int(pg>>quantShift)<<quantBits | int(pb>>quantShift)
		hb := &hist[idx&(len(hist)-1)]
		hb.count++
		hb.r += uint64(pr)
		hb.g += uint64(pg)
		hb.b += uint64(pb)
	})

	best := -1
	for i := range hist {
		if hist[i].count == 0 {
			continue
		}
		if best < 0 || hist[i].count > hist[best].count {
			best = i
		}
	}
	if best < 0 {
		return color.RGBA{}, false
	}
	hb := hist[best]
	n := hb.count
	return color.RGBA{
		R: uint8((hb.r + n/2) / n),
		G: uint8((hb.g + n/2) / n),
		B: uint8((hb.b + n/2) / n),
		A: 0xff,
	}, true
}

func forEachPixel(img *image.RGBA, fn func(r, g, b uint8)) {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		i := img.PixOffset(bounds.Min.X, y)
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			a := img.Pix[i+3]
			if a > alphaThreshold {
				r, g, b := img.Pix[i], img.Pix[i+1], img.Pix[i+2]
				if a != 0xff {
					r = unpremul(r, a)
					g = unpremul(g, a)
					b = unpremul(b, a)
				}
				fn(r, g, b)
			}
			i += 4
		}
	}
}

func unpremul(c, a uint8) uint8 {
	v := (uint32(c)*0xff + uint32(a)/2) / uint32(a)
	if v > 0xff {
		v = 0xff
	}
	return uint8(v)
}
