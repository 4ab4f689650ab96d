// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"encoding/binary"
	"fmt"
	"image"

	"github.com/gogpu/colorpick"
	"github.com/gogpu/naga"
)

// MaxReduceDimension bounds the longest side of images uploaded for
// reduction. The per-channel sums then stay far below 2^32.
const MaxReduceDimension = 128

// alphaCutoff matches the CPU statistics: nearly transparent pixels do not
// count towards the mean.
const alphaCutoff = 16

// reduceShaderWGSL sums the unpremultiplied RGB of every visible pixel
// into sums[0..2] and counts them in sums[3].
const reduceShaderWGSL = `
struct Params {
    count: u32,
    cutoff: u32,
    _pad0: u32,
    _pad1: u32,
}

@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var<storage, read> pixels: array<u32>;
@group(0) @binding(2) var<storage, read_write> sums: array<atomic<u32>, 4>;

@compute @workgroup_size(64)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
    let i = id.x;
    if (i >= params.count) {
        return;
    }
    let p = pixels[i];
    if (((p >> 24u) & 0xffu) <= params.cutoff) {
        return;
    }
    atomicAdd(&sums[0], p & 0xffu);
    atomicAdd(&sums[1], (p >> 8u) & 0xffu);
    atomicAdd(&sums[2], (p >> 16u) & 0xffu);
    atomicAdd(&sums[3], 1u);
}
`

const (
	workgroupSize = 64
	paramsSize    = 16
	sumsSize      = 16
)

// compileReduceShader compiles the reduction shader to SPIR-V words.
func compileReduceShader() ([]uint32, error) {
	spirvBytes, err := naga.Compile(reduceShaderWGSL)
	if err != nil {
		return nil, fmt.Errorf("compile reduce shader: %w", err)
	}
	// SPIR-V is little-endian 32-bit words
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return words, nil
}

// packPixels flattens img into little-endian RGBA words with colour
// unpremultiplied, the layout the reduction shader reads.
func packPixels(img *image.RGBA) []byte {
	b := img.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy()*4)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, a := row[x*4], row[x*4+1], row[x*4+2], row[x*4+3]
			if a != 0 && a != 0xff {
				r = unpremul(r, a)
				g = unpremul(g, a)
				bl = unpremul(bl, a)
			}
			out = append(out, r, g, bl, a)
		}
	}
	return out
}

func unpremul(c, a uint8) uint8 {
	return uint8(min(uint32(c)*0xff/uint32(a), 0xff))
}

func makeParams(count uint32) []byte {
	buf := make([]byte, paramsSize)
	binary.LittleEndian.PutUint32(buf[0:], count)
	binary.LittleEndian.PutUint32(buf[4:], alphaCutoff)
	return buf
}

// meanColor turns the reduced sums into an opaque colour. It reports false
// when no pixel was counted.
func meanColor(sums [4]uint32) (colorpick.Color, bool) {
	n := sums[3]
	if n == 0 {
		return colorpick.Transparent, false
	}
	avg := func(s uint32) uint8 {
		return uint8((uint64(s) + uint64(n)/2) / uint64(n))
	}
	return colorpick.RGB(avg(sums[0]), avg(sums[1]), avg(sums[2])), true
}

// reduceOnCPU computes the same sums as the shader.
func reduceOnCPU(packed []byte) [4]uint32 {
	var sums [4]uint32
	for i := 0; i+3 < len(packed); i += 4 {
		if packed[i+3] <= alphaCutoff {
			continue
		}
		sums[0] += uint32(packed[i])
		sums[1] += uint32(packed[i+1])
		sums[2] += uint32(packed[i+2])
		sums[3]++
	}
	return sums
}
