// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cannon

import (
	"github.com/samber/lo"

	"github.com/LynnColeArt/cannon/comm"
	"github.com/LynnColeArt/cannon/grid"
)

// placement is where a world rank landed on the torus.
type placement struct {
	topo  *grid.Topology
	role  grid.Role
	group comm.Comm // nil for idle ranks
}

// place builds the torus over world and, for active ranks, the communicator
// over the first Dim² world ranks. Group rank equals world rank for members.
func place(world comm.Comm) (*placement, error) {
	topo, err := grid.Build(world.Size())
	if err != nil {
		return nil, NewProcessCountError("PreProcess", "cannot build grid", err)
	}
	role, err := topo.Place(world.Rank())
	if err != nil {
		return nil, NewProcessCountError("PreProcess", "cannot place rank", err)
	}
	p := &placement{topo: topo, role: role}
	if _, ok := role.(grid.Active); !ok {
		return p, nil
	}
	group, err := comm.NewGroup(world, lo.Range(topo.Active()))
	if err != nil {
		return nil, NewCommunicationError("PreProcess", "cannot split active group", err)
	}
	p.group = group
	return p, nil
}
