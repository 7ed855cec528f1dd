// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package grid builds the virtual 2-D torus that Cannon's algorithm runs on.
//
// A world of P processes is reduced to the largest perfect square
// active = Dim(P)² ≤ P. Ranks [0, active) are laid out row-major on a
// Dim×Dim torus; ranks ≥ active are Idle and take no part in the
// computation.
package grid

import (
	"errors"
	"fmt"
)

// ErrDegenerate is returned when a process count cannot host even a 1×1 grid.
var ErrDegenerate = errors.New("grid: process count must be at least 1")

// Dim returns ⌊√p⌋, the side of the largest square grid that fits in p
// processes.
func Dim(p int) (int, error) {
	if p < 1 {
		return 0, fmt.Errorf("%w (got %d)", ErrDegenerate, p)
	}
	// Integer Newton iteration, no float rounding at perfect squares.
	x := p
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + p/x) / 2
	}
	return x, nil
}

// ProcessGrid is the position of one cell on a Dim×Dim torus.
// All neighbour arithmetic wraps modulo Dim.
type ProcessGrid struct {
	Row, Col, Dim int
}

// Rank returns the group rank of the cell (row-major).
func (g ProcessGrid) Rank() int {
	return g.Row*g.Dim + g.Col
}

// RankOf returns the rank at (row, col), wrapping both coordinates.
func (g ProcessGrid) RankOf(row, col int) int {
	return wrap(row, g.Dim)*g.Dim + wrap(col, g.Dim)
}

// Left returns the rank one column to the left.
func (g ProcessGrid) Left() int { return g.RankOf(g.Row, g.Col-1) }

// Right returns the rank one column to the right.
func (g ProcessGrid) Right() int { return g.RankOf(g.Row, g.Col+1) }

// Up returns the rank one row up.
func (g ProcessGrid) Up() int { return g.RankOf(g.Row-1, g.Col) }

// Down returns the rank one row down.
func (g ProcessGrid) Down() int { return g.RankOf(g.Row+1, g.Col) }

// Shift returns the rank dRow rows down and dCol columns right.
func (g ProcessGrid) Shift(dRow, dCol int) int {
	return g.RankOf(g.Row+dRow, g.Col+dCol)
}

// String implements fmt.Stringer.
func (g ProcessGrid) String() string {
	return fmt.Sprintf("(%d,%d)/%d", g.Row, g.Col, g.Dim)
}

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
