// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/colorpick/surface"
	"github.com/gogpu/gputypes"
)

func TestNullDevice(t *testing.T) {
	var d NullDevice
	if d.Device() != nil || d.Queue() != nil || d.Adapter() != nil {
		t.Error("NullDevice returned a non-nil handle")
	}
	if d.SurfaceFormat() != gputypes.TextureFormatUndefined {
		t.Errorf("SurfaceFormat() = %v, want undefined", d.SurfaceFormat())
	}
}

func TestSharedContext_SoftwareTexture(t *testing.T) {
	pix := image.NewRGBA(image.Rect(0, 0, 4, 2))
	pix.Set(1, 1, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	factory := ContextFactory(nil)
	gctx, err := factory()
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	ctx := gctx.(*SharedContext)
	if _, ok := ctx.Provider().(NullDevice); !ok {
		t.Errorf("nil provider became %T, want NullDevice", ctx.Provider())
	}

	tex := surface.BackendTexture{Handle: pix, Width: 4, Height: 2, Format: gputypes.TextureFormatRGBA8Unorm}
	img, err := ctx.BuildFromTexture(tex, surface.OriginTopLeft, tex.Format, surface.ColorSpaceSRGB)
	if err != nil {
		t.Fatalf("BuildFromTexture: %v", err)
	}
	pm := surface.NewPixmap(4, 2)
	if !img.ReadPixels(pm, 0, 0) {
		t.Fatal("ReadPixels failed")
	}
	if got := pm.Pixel(1, 1); got != (color.RGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("pixel (1,1) = %v", got)
	}
	if ctx.Builds() != 1 {
		t.Errorf("Builds() = %d, want 1", ctx.Builds())
	}
}

func TestSharedContext_DeviceTexture(t *testing.T) {
	ctx := NewSharedContext(NullDevice{})
	tex := surface.BackendTexture{Handle: struct{}{}, Width: 4, Height: 4, Format: gputypes.TextureFormatRGBA8Unorm}
	_, err := ctx.BuildFromTexture(tex, surface.OriginTopLeft, tex.Format, surface.ColorSpaceSRGB)
	if !errors.Is(err, ErrNoDevice) {
		t.Errorf("err = %v, want ErrNoDevice", err)
	}
	if ctx.Builds() != 0 {
		t.Error("failed build counted")
	}
}
