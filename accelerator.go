package colorpick

import "github.com/gogpu/colorpick/surface"

// Accelerator computes snapshot statistics on the GPU.
//
// SampleColor starts an asynchronous reduction of img, which was taken
// from src, and reports whether the request was accepted. When it returns
// true done is called at most once with the result, from any goroutine; it
// is not called when the snapshot has no visible pixels. When it returns
// false done is never called and the caller falls back to CPU read-back.
//
// Implementations are provided by GPU packages, for example
// github.com/gogpu/colorpick/gpu.
type Accelerator interface {
	// Name returns the accelerator name (e.g., "wgpu-reduce").
	Name() string

	SampleColor(src surface.Surface, img surface.Image, strategy Strategy, done func(Color)) bool
}

// DeviceProviderAware is an optional interface for accelerators that can
// share a GPU device with the host instead of opening their own.
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

// SetAcceleratorDeviceProvider passes provider to the runtime's
// accelerator. It is a no-op if there is no accelerator or it cannot share
// devices.
func (rt *Runtime) SetAcceleratorDeviceProvider(provider any) error {
	if dpa, ok := rt.accel.(DeviceProviderAware); ok {
		return dpa.SetDeviceProvider(provider)
	}
	return nil
}
