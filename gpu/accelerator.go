// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/colorpick"
	"github.com/gogpu/colorpick/internal/stats"
	"github.com/gogpu/colorpick/surface"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// requestQueueSize bounds samples waiting for the reduction goroutine.
// A full queue makes SampleColor decline so the caller reads back instead.
const requestQueueSize = 8

type reduceRequest struct {
	img  surface.Image
	done func(colorpick.Color)
}

// ReductionAccelerator computes the mean colour of a snapshot with a
// wgpu/hal compute shader. It implements colorpick.Accelerator.
//
// Requests are handled on the accelerator's own goroutine, one at a time.
// Only mean-based strategies are accelerated; StrategyDominant is declined
// and takes the CPU read-back path.
type ReductionAccelerator struct {
	mu sync.Mutex // guards the device and pipeline

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline

	externalDevice bool // true when using shared device (don't destroy on Close)

	// sendMu orders SampleColor against Close so that every accepted
	// request is seen by the goroutine before it exits.
	sendMu sync.RWMutex
	closed bool
	ready  atomic.Bool

	requests chan reduceRequest
	stop     chan struct{}
	loopDone chan struct{}
	loopOnce sync.Once

	gpuReductions atomic.Int64
	cpuReductions atomic.Int64
}

var (
	_ colorpick.Accelerator         = (*ReductionAccelerator)(nil)
	_ colorpick.DeviceProviderAware = (*ReductionAccelerator)(nil)
)

// NewReductionAccelerator returns an accelerator that is not ready until
// Init or SetDeviceProvider succeeds.
func NewReductionAccelerator() *ReductionAccelerator {
	return &ReductionAccelerator{
		requests: make(chan reduceRequest, requestQueueSize),
		stop:     make(chan struct{}),
		loopDone: make(chan struct{}),
	}
}

func (a *ReductionAccelerator) Name() string { return "wgpu-reduce" }

// SetLogger sets the logger for the accelerator.
// Called by colorpick.SetLogger to propagate logging configuration.
func (a *ReductionAccelerator) SetLogger(l *slog.Logger) {
	setLogger(l)
}

// Ready reports whether samples are accepted.
func (a *ReductionAccelerator) Ready() bool {
	return a.ready.Load()
}

// Stats returns how many samples were reduced on the GPU and how many fell
// back to the CPU after a GPU failure.
func (a *ReductionAccelerator) Stats() (gpu, cpu int64) {
	return a.gpuReductions.Load(), a.cpuReductions.Load()
}

// Init opens a Vulkan device of its own. On failure the accelerator stays
// not ready and the error is returned; callers may ignore it and run
// without acceleration.
func (a *ReductionAccelerator) Init() error {
	a.mu.Lock()
	err := a.initGPU()
	a.mu.Unlock()
	if err != nil {
		slogger().Warn("gpu-reduce: GPU init failed, using CPU read-back", "err", err)
		return err
	}
	return a.markReady()
}

// SetDeviceProvider switches the accelerator to use a shared GPU device
// from an external provider. The provider must implement HalDevice() any
// and HalQueue() any returning hal.Device and hal.Queue.
func (a *ReductionAccelerator) SetDeviceProvider(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("gpu-reduce: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("gpu-reduce: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("gpu-reduce: provider HalQueue is not hal.Queue")
	}

	a.mu.Lock()
	a.destroyPipeline()
	if !a.externalDevice && a.device != nil {
		a.device.Destroy()
	}
	if a.instance != nil {
		a.instance.Destroy()
		a.instance = nil
	}
	a.device = device
	a.queue = queue
	a.externalDevice = true
	err := a.createPipeline()
	a.mu.Unlock()

	if err != nil {
		a.ready.Store(false)
		return fmt.Errorf("gpu-reduce: create pipeline with shared device: %w", err)
	}
	slogger().Info("gpu-reduce: switched to shared GPU device")
	return a.markReady()
}

func (a *ReductionAccelerator) markReady() error {
	a.sendMu.Lock()
	defer a.sendMu.Unlock()
	if a.closed {
		return errors.New("gpu-reduce: accelerator closed")
	}
	a.loopOnce.Do(func() { go a.loop() })
	a.ready.Store(true)
	return nil
}

// SampleColor queues img for reduction. It declines, returning false, when
// the accelerator is not ready, the strategy is not mean-based or the queue
// is full.
func (a *ReductionAccelerator) SampleColor(_ surface.Surface, img surface.Image, strategy colorpick.Strategy, done func(colorpick.Color)) bool {
	if img == nil || done == nil || strategy == colorpick.StrategyDominant {
		return false
	}
	a.sendMu.RLock()
	defer a.sendMu.RUnlock()
	if a.closed || !a.ready.Load() {
		return false
	}
	select {
	case a.requests <- reduceRequest{img: img, done: done}:
		return true
	default:
		slogger().Debug("gpu-reduce: queue full")
		return false
	}
}

// Close stops the reduction goroutine and releases GPU resources. Samples
// still queued are reduced on the CPU first.
func (a *ReductionAccelerator) Close() {
	a.sendMu.Lock()
	if a.closed {
		a.sendMu.Unlock()
		return
	}
	a.closed = true
	a.ready.Store(false)
	a.sendMu.Unlock()

	a.loopOnce.Do(func() { go a.loop() })
	close(a.stop)
	<-a.loopDone

	a.mu.Lock()
	defer a.mu.Unlock()
	a.destroyPipeline()
	if !a.externalDevice {
		if a.device != nil {
			a.device.Destroy()
		}
		if a.instance != nil {
			a.instance.Destroy()
		}
	}
	a.device = nil
	a.queue = nil
	a.instance = nil
	a.externalDevice = false
}

func (a *ReductionAccelerator) loop() {
	defer close(a.loopDone)
	for {
		select {
		case req := <-a.requests:
			a.handle(req, true)
		case <-a.stop:
			for {
				select {
				case req := <-a.requests:
					a.handle(req, false)
				default:
					return
				}
			}
		}
	}
}

func (a *ReductionAccelerator) handle(req reduceRequest, useGPU bool) {
	pm := surface.NewPixmap(req.img.Width(), req.img.Height())
	if pm.IsEmpty() || !req.img.ReadPixels(pm, 0, 0) {
		slogger().Warn("gpu-reduce: read pixels failed")
		return
	}
	packed := packPixels(stats.Downscale(pm.RGBA(), MaxReduceDimension))

	var sums [4]uint32
	var err error = ErrNotReady
	if useGPU {
		sums, err = a.reduce(packed)
	}
	if err != nil {
		if useGPU {
			slogger().Warn("gpu-reduce: dispatch failed, reducing on CPU", "err", err)
		}
		sums = reduceOnCPU(packed)
		a.cpuReductions.Add(1)
	} else {
		a.gpuReductions.Add(1)
	}

	if c, ok := meanColor(sums); ok {
		req.done(c)
	}
}

// reduce runs the shader over packed pixels and reads back the sums.
func (a *ReductionAccelerator) reduce(packed []byte) ([4]uint32, error) {
	var sums [4]uint32
	n := uint32(len(packed) / 4) //nolint:gosec // bounded by MaxReduceDimension²
	if n == 0 {
		return sums, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.device == nil || a.pipeline == nil {
		return sums, ErrNotReady
	}

	paramsBuf, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "reduce_params", Size: paramsSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return sums, fmt.Errorf("create params buffer: %w", err)
	}
	defer a.device.DestroyBuffer(paramsBuf)

	pixelBuf, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "reduce_pixels", Size: uint64(len(packed)),
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return sums, fmt.Errorf("create pixel buffer: %w", err)
	}
	defer a.device.DestroyBuffer(pixelBuf)

	sumsBuf, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "reduce_sums", Size: sumsSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return sums, fmt.Errorf("create sums buffer: %w", err)
	}
	defer a.device.DestroyBuffer(sumsBuf)

	stagingBuf, err := a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "reduce_staging", Size: sumsSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return sums, fmt.Errorf("create staging buffer: %w", err)
	}
	defer a.device.DestroyBuffer(stagingBuf)

	a.queue.WriteBuffer(paramsBuf, 0, makeParams(n))
	a.queue.WriteBuffer(pixelBuf, 0, packed)
	a.queue.WriteBuffer(sumsBuf, 0, make([]byte, sumsSize))

	bg, err := a.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "reduce_bind", Layout: a.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: paramsBuf.NativeHandle(), Offset: 0, Size: paramsSize}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: pixelBuf.NativeHandle(), Offset: 0, Size: uint64(len(packed))}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: sumsBuf.NativeHandle(), Offset: 0, Size: sumsSize}},
		},
	})
	if err != nil {
		return sums, fmt.Errorf("create bind group: %w", err)
	}
	defer a.device.DestroyBindGroup(bg)

	encoder, err := a.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "reduce_encoder"})
	if err != nil {
		return sums, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("reduce"); err != nil {
		return sums, fmt.Errorf("begin encoding: %w", err)
	}
	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "reduce_pass"})
	pass.SetPipeline(a.pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.Dispatch((n+workgroupSize-1)/workgroupSize, 1, 1)
	pass.End()
	encoder.CopyBufferToBuffer(sumsBuf, stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: sumsSize},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return sums, fmt.Errorf("end encoding: %w", err)
	}
	defer a.device.FreeCommandBuffer(cmdBuf)

	fence, err := a.device.CreateFence()
	if err != nil {
		return sums, fmt.Errorf("create fence: %w", err)
	}
	defer a.device.DestroyFence(fence)
	if err := a.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return sums, fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := a.device.Wait(fence, 1, 5*time.Second)
	if err != nil || !fenceOK {
		return sums, fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	readback := make([]byte, sumsSize)
	if err := a.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return sums, fmt.Errorf("readback: %w", err)
	}
	for i := range sums {
		sums[i] = binary.LittleEndian.Uint32(readback[i*4:])
	}
	return sums, nil
}

func (a *ReductionAccelerator) initGPU() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return fmt.Errorf("no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return fmt.Errorf("open device: %w", err)
	}
	a.instance = instance
	a.device = openDev.Device
	a.queue = openDev.Queue
	if err := a.createPipeline(); err != nil {
		a.device.Destroy()
		a.instance.Destroy()
		a.device, a.queue, a.instance = nil, nil, nil
		return fmt.Errorf("create pipeline: %w", err)
	}
	slogger().Info("gpu-reduce: GPU accelerator initialized", "adapter", selected.Info.Name)
	return nil
}

func (a *ReductionAccelerator) createPipeline() error {
	source := hal.ShaderSource{WGSL: reduceShaderWGSL}
	if spirv, err := compileReduceShader(); err == nil {
		source = hal.ShaderSource{SPIRV: spirv}
	} else {
		slogger().Debug("gpu-reduce: using WGSL source", "err", err)
	}
	shader, err := a.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "reduce",
		Source: source,
	})
	if err != nil {
		return fmt.Errorf("create reduce shader: %w", err)
	}
	a.shader = shader

	bindLayout, err := a.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "reduce_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	a.bindLayout = bindLayout

	pipeLayout, err := a.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "reduce_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{a.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	a.pipeLayout = pipeLayout

	pipeline, err := a.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "reduce_pipeline", Layout: a.pipeLayout,
		Compute: hal.ComputeState{Module: a.shader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("create compute pipeline: %w", err)
	}
	a.pipeline = pipeline
	return nil
}

func (a *ReductionAccelerator) destroyPipeline() {
	if a.device == nil {
		return
	}
	if a.pipeline != nil {
		a.device.DestroyComputePipeline(a.pipeline)
	}
	if a.pipeLayout != nil {
		a.device.DestroyPipelineLayout(a.pipeLayout)
	}
	if a.bindLayout != nil {
		a.device.DestroyBindGroupLayout(a.bindLayout)
	}
	if a.shader != nil {
		a.device.DestroyShaderModule(a.shader)
	}
	a.pipeline, a.pipeLayout, a.bindLayout, a.shader = nil, nil, nil, nil
}
