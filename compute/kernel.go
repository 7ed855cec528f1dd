// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compute holds the local block kernels used by every grid cell.
//
// A kernel performs the multiply-accumulate C += A·B on three square,
// row-major bs×bs blocks. Kernels never allocate and never communicate.
package compute

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
)

// Kernel computes c += a·b for bs×bs row-major blocks.
type Kernel func(bs int, a, b, c []float64)

// Kernel names accepted by Lookup.
const (
	NameReference = "reference"
	NameGonum     = "gonum"
	NameAuto      = "auto"
)

var kernels = map[string]Kernel{
	NameReference: Reference,
	NameGonum:     Gonum,
}

// Reference is the scalar i-k-j loop. The inner loop streams rows of b and
// c, which keeps it reasonably cache friendly without blocking.
func Reference(bs int, a, b, c []float64) {
	for i := 0; i < bs; i++ {
		ci := c[i*bs : (i+1)*bs]
		for k := 0; k < bs; k++ {
			aik := a[i*bs+k]
			bk := b[k*bs : (k+1)*bs]
			for j, v := range bk {
				ci[j] += aik * v
			}
		}
	}
}

// Gonum hands the block to gonum's DGEMM with beta = 1.
//
// DGEMM skips zero elements of a, which drops 0·Inf and 0·NaN terms. Blocks
// holding a NaN or an Inf therefore go through Reference so every kernel
// produces the same IEEE result as the plain triple loop.
func Gonum(bs int, a, b, c []float64) {
	if bs == 0 {
		return
	}
	if !allFinite(a) || !allFinite(b) {
		Reference(bs, a, b, c)
		return
	}
	general := func(data []float64) blas64.General {
		return blas64.General{Rows: bs, Cols: bs, Stride: bs, Data: data}
	}
	blas64.Gemm(blas.NoTrans, blas.NoTrans, 1, general(a), general(b), 1, general(c))
}

func allFinite(s []float64) bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Best returns the name of the preferred kernel for this CPU.
func Best() string {
	if HasVectorUnit() {
		return NameGonum
	}
	return NameReference
}

// Lookup returns the kernel registered under name. "auto" and "" resolve to
// Best. The resolved name is returned alongside the kernel.
func Lookup(name string) (string, Kernel, error) {
	if name == "" || name == NameAuto {
		name = Best()
	}
	k, ok := kernels[name]
	if !ok {
		return "", nil, fmt.Errorf("compute: unknown kernel %q (have %v)", name, Names())
	}
	return name, k, nil
}

// Names lists the registered kernels.
func Names() []string {
	names := make([]string, 0, len(kernels))
	for n := range kernels {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
