// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grid

import "fmt"

// Topology is the torus laid over a world of processes. Cells are stored in
// a fixed array indexed by rank.
type Topology struct {
	world int
	dim   int
	cells []ProcessGrid
}

// Build lays a Dim(p)×Dim(p) torus over the first Dim(p)² ranks of p.
func Build(p int) (*Topology, error) {
	d, err := Dim(p)
	if err != nil {
		return nil, err
	}
	t := &Topology{
		world: p,
		dim:   d,
		cells: make([]ProcessGrid, d*d),
	}
	for r := 0; r < d; r++ {
		for c := 0; c < d; c++ {
			t.cells[r*d+c] = ProcessGrid{Row: r, Col: c, Dim: d}
		}
	}
	return t, nil
}

// Dim returns the grid side.
func (t *Topology) Dim() int { return t.dim }

// Active returns the number of ranks on the torus.
func (t *Topology) Active() int { return len(t.cells) }

// World returns the total number of processes the topology was built for.
func (t *Topology) World() int { return t.world }

// Idle returns the number of excluded processes.
func (t *Topology) Idle() int { return t.world - len(t.cells) }

// Cell returns the grid cell for an active rank.
func (t *Topology) Cell(rank int) (ProcessGrid, bool) {
	if rank < 0 || rank >= len(t.cells) {
		return ProcessGrid{}, false
	}
	return t.cells[rank], true
}

// Place returns the role of a world rank.
func (t *Topology) Place(rank int) (Role, error) {
	if rank < 0 || rank >= t.world {
		return nil, fmt.Errorf("grid: rank %d outside world of %d", rank, t.world)
	}
	if cell, ok := t.Cell(rank); ok {
		return Active{Cell: cell}, nil
	}
	return Idle{Rank: rank}, nil
}

// Role is either Active or Idle.
type Role interface {
	isRole()
	String() string
}

// Active is a rank that owns a cell of the torus.
type Active struct {
	Cell ProcessGrid
}

// Idle is a rank excluded because the world is not a perfect square.
type Idle struct {
	Rank int
}

func (Active) isRole() {}
func (Idle) isRole()   {}

func (a Active) String() string { return "active" + a.Cell.String() }
func (i Idle) String() string   { return fmt.Sprintf("idle(rank %d)", i.Rank) }
