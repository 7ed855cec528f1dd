// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compute

import (
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
)

// CPUFeatures tracks the instruction set extensions relevant to block kernels
type CPUFeatures struct {
	HasAVX2    bool
	HasFMA     bool
	HasAVX512F bool
	HasASIMD   bool // arm64 NEON
	HasSVE     bool
}

// Global CPU feature detection
var cpuFeatures CPUFeatures

func init() {
	detectCPUFeatures()
}

func detectCPUFeatures() {
	cpuFeatures = CPUFeatures{
		HasAVX2:    cpu.X86.HasAVX2,
		HasFMA:     cpu.X86.HasFMA,
		HasAVX512F: cpu.X86.HasAVX512F,
		HasASIMD:   cpu.ARM64.HasASIMD,
		HasSVE:     cpu.ARM64.HasSVE,
	}
}

// Features returns the detected CPU features.
func Features() CPUFeatures {
	return cpuFeatures
}

// HasVectorUnit reports whether the CPU has SIMD support the gonum assembly
// kernels take advantage of.
func HasVectorUnit() bool {
	return (cpuFeatures.HasAVX2 && cpuFeatures.HasFMA) || cpuFeatures.HasASIMD
}

// CPUInfo returns a string describing the detected features
func CPUInfo() string {
	var features []string
	if cpuFeatures.HasAVX2 {
		features = append(features, "AVX2")
	}
	if cpuFeatures.HasFMA {
		features = append(features, "FMA")
	}
	if cpuFeatures.HasAVX512F {
		features = append(features, "AVX512F")
	}
	if cpuFeatures.HasASIMD {
		features = append(features, "ASIMD")
	}
	if cpuFeatures.HasSVE {
		features = append(features, "SVE")
	}
	if len(features) == 0 {
		return runtime.GOARCH + ": no SIMD extensions detected"
	}
	return runtime.GOARCH + ": " + strings.Join(features, ", ")
}
