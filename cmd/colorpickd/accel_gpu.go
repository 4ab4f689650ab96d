//go:build !nogpu

package main

import (
	"fmt"

	"github.com/gogpu/colorpick"
	"github.com/gogpu/colorpick/config"
	"github.com/gogpu/colorpick/gpu"
)

// newAccelerator opens the GPU reduction accelerator for mode. In auto
// mode a failed GPU init yields no accelerator and no error.
func newAccelerator(mode config.AcceleratorMode) (colorpick.Accelerator, func(), error) {
	if mode == config.AcceleratorCPU {
		return nil, func() {}, nil
	}
	accel := gpu.NewReductionAccelerator()
	if err := accel.Init(); err != nil {
		accel.Close()
		if mode == config.AcceleratorGPU {
			return nil, nil, fmt.Errorf("gpu accelerator: %w", err)
		}
		return nil, func() {}, nil
	}
	return accel, accel.Close, nil
}
