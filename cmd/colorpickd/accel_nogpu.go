//go:build nogpu

package main

import (
	"errors"

	"github.com/gogpu/colorpick"
	"github.com/gogpu/colorpick/config"
)

func newAccelerator(mode config.AcceleratorMode) (colorpick.Accelerator, func(), error) {
	if mode == config.AcceleratorGPU {
		return nil, nil, errors.New("gpu accelerator: built with nogpu")
	}
	return nil, func() {}, nil
}
