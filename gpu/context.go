// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/colorpick/surface"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

var (
	// ErrNoDevice is returned when a GPU-resident texture arrives but the
	// provider has no device.
	ErrNoDevice = errors.New("gpu: no device")

	// ErrNotReady is returned when the accelerator has no pipeline.
	ErrNotReady = errors.New("gpu: accelerator not ready")
)

// NullDevice is a DeviceProvider without a GPU.
// Used for CPU-only hosts where every texture is a software one.
type NullDevice struct{}

// Device returns nil for the null device.
func (NullDevice) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDevice) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDevice) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDevice) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// Ensure NullDevice implements gpucontext.DeviceProvider.
var _ gpucontext.DeviceProvider = NullDevice{}

// SharedContext is the GPU context shared by every sample of a runtime.
// It rebuilds images from backend textures produced by the host's device.
//
// Software textures (an *image.RGBA handle) are wrapped directly. Any other
// handle must belong to the provider's device, and reading those back is
// left to the host's own surface implementation.
type SharedContext struct {
	mu       sync.Mutex
	provider gpucontext.DeviceProvider
	software *surface.SoftwareContext
	builds   int
}

// NewSharedContext creates a context over provider. A nil provider is
// treated as NullDevice.
func NewSharedContext(provider gpucontext.DeviceProvider) *SharedContext {
	if provider == nil {
		provider = NullDevice{}
	}
	return &SharedContext{provider: provider, software: surface.NewSoftwareContext()}
}

// ContextFactory returns a factory for colorpick.WithGPUContext.
func ContextFactory(provider gpucontext.DeviceProvider) func() (surface.GPUContext, error) {
	return func() (surface.GPUContext, error) {
		return NewSharedContext(provider), nil
	}
}

// Provider returns the device provider.
func (c *SharedContext) Provider() gpucontext.DeviceProvider {
	return c.provider
}

// Builds returns the number of images built so far.
func (c *SharedContext) Builds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.builds
}

// BuildFromTexture implements surface.GPUContext.
func (c *SharedContext) BuildFromTexture(tex surface.BackendTexture, origin surface.Origin, format gputypes.TextureFormat, cs surface.ColorSpace) (surface.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := tex.Handle.(*image.RGBA); ok {
		img, err := c.software.BuildFromTexture(tex, origin, format, cs)
		if err == nil {
			c.builds++
		}
		return img, err
	}
	if c.provider.Device() == nil {
		return nil, fmt.Errorf("gpu: build from %T texture: %w", tex.Handle, ErrNoDevice)
	}
	return nil, fmt.Errorf("gpu: build from %T texture: %w", tex.Handle, surface.ErrUnsupportedTexture)
}

var _ surface.GPUContext = (*SharedContext)(nil)
