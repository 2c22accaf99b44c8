// SPDX-License-Identifier: MIT
package fft

import (
	"fmt"
	"strings"

	"golang.org/x/sys/cpu"
)

// DetectKernel picks the vector kernel when the CPU has a 128-bit float
// SIMD unit the compiler can target, otherwise the scalar kernel.
func DetectKernel() Kernel {
	if cpu.X86.HasSSE2 || cpu.ARM64.HasASIMD {
		return VectorKernel{}
	}
	return ScalarKernel{}
}

// KernelByName resolves "auto", "scalar" or "vector" (case-insensitive).
func KernelByName(name string) (Kernel, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return DetectKernel(), nil
	case "scalar":
		return ScalarKernel{}, nil
	case "vector", "simd":
		return VectorKernel{}, nil
	default:
		return nil, fmt.Errorf("unknown fft kernel: '%s'", name)
	}
}
