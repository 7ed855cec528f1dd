// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cannon

import (
	"fmt"

	"github.com/LynnColeArt/cannon/comm"
)

// Layout describes how an n×n matrix is cut into GridDim² square blocks.
// The matrix is padded with zero rows and columns up to PaddedN so that
// every block has the same BlockSize.
type Layout struct {
	N         int
	GridDim   int
	BlockSize int
	PaddedN   int
}

// NewLayout computes the block layout of an n×n matrix on a gridDim torus.
func NewLayout(n, gridDim int) (Layout, error) {
	if n <= 0 {
		return Layout{}, NewDimensionError("NewLayout", fmt.Sprintf("n must be positive, got %d", n))
	}
	if gridDim <= 0 {
		return Layout{}, NewProcessCountError("NewLayout", fmt.Sprintf("grid dimension must be positive, got %d", gridDim), nil)
	}
	bs := (n + gridDim - 1) / gridDim
	return Layout{
		N:         n,
		GridDim:   gridDim,
		BlockSize: bs,
		PaddedN:   bs * gridDim,
	}, nil
}

// BlockLen is the number of values in one block.
func (l Layout) BlockLen() int { return l.BlockSize * l.BlockSize }

// Pad returns a PaddedN×PaddedN copy of the n×n matrix m with zero fill.
func (l Layout) Pad(m []float64) []float64 {
	if l.PaddedN == l.N {
		return append([]float64(nil), m...)
	}
	p := make([]float64, l.PaddedN*l.PaddedN)
	for i := 0; i < l.N; i++ {
		copy(p[i*l.PaddedN:i*l.PaddedN+l.N], m[i*l.N:(i+1)*l.N])
	}
	return p
}

// Split cuts a padded matrix into GridDim² contiguous row-major blocks,
// ordered row-major over the grid.
func (l Layout) Split(padded []float64) [][]float64 {
	d, bs, pn := l.GridDim, l.BlockSize, l.PaddedN
	blocks := make([][]float64, d*d)
	for br := 0; br < d; br++ {
		for bc := 0; bc < d; bc++ {
			blk := make([]float64, bs*bs)
			for i := 0; i < bs; i++ {
				src := (br*bs+i)*pn + bc*bs
				copy(blk[i*bs:(i+1)*bs], padded[src:src+bs])
			}
			blocks[br*d+bc] = blk
		}
	}
	return blocks
}

// Assemble is the inverse of Split.
func (l Layout) Assemble(blocks [][]float64) []float64 {
	d, bs, pn := l.GridDim, l.BlockSize, l.PaddedN
	padded := make([]float64, pn*pn)
	for br := 0; br < d; br++ {
		for bc := 0; bc < d; bc++ {
			blk := blocks[br*d+bc]
			for i := 0; i < bs; i++ {
				dst := (br*bs+i)*pn + bc*bs
				copy(padded[dst:dst+bs], blk[i*bs:(i+1)*bs])
			}
		}
	}
	return padded
}

// Crop copies the top-left n×n corner of padded into dst.
func (l Layout) Crop(padded, dst []float64) {
	for i := 0; i < l.N; i++ {
		copy(dst[i*l.N:(i+1)*l.N], padded[i*l.PaddedN:i*l.PaddedN+l.N])
	}
}

// operands holds the blocks a rank works on. a and b rotate, c accumulates.
type operands struct {
	a, b, c []float64
}

func newOperands(l Layout) *operands {
	n := l.BlockLen()
	return &operands{
		a: make([]float64, n),
		b: make([]float64, n),
		c: make([]float64, n),
	}
}

// scatterBlocks hands block i of aParts and bParts to group rank i. The
// parts are only read on the root.
func scatterBlocks(group comm.Comm, aParts, bParts [][]float64, ops *operands) error {
	if err := comm.Scatter(group, aParts, ops.a, comm.Root); err != nil {
		return NewCommunicationError("scatter", "A blocks", err)
	}
	if err := comm.Scatter(group, bParts, ops.b, comm.Root); err != nil {
		return NewCommunicationError("scatter", "B blocks", err)
	}
	return nil
}
