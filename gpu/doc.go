// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu provides the GPU side of colour picking: a shared GPU context
// for rebuilding snapshot textures on the picker worker, and a wgpu/hal
// compute accelerator that reduces a snapshot to its mean colour.
//
// If GPU initialization fails (no Vulkan available), the accelerator stays
// not ready and every sample falls back to CPU read-back.
//
// Usage:
//
//	accel := gpu.NewReductionAccelerator()
//	_ = accel.Init()
//	defer accel.Close()
//
//	rt := colorpick.NewRuntime(
//	    colorpick.WithAccelerator(accel),
//	    colorpick.WithGPUContext(gpu.ContextFactory(provider)),
//	)
//
// Build with the nogpu tag to leave out the accelerator and its Vulkan
// dependency.
package gpu
