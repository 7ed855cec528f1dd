// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cannon

import (
	"fmt"

	"k8s.io/klog/v2"

	"github.com/LynnColeArt/cannon/comm"
	"github.com/LynnColeArt/cannon/compute"
	"github.com/LynnColeArt/cannon/grid"
)

// Stats counts the work one rank did.
type Stats struct {
	// Rounds completed by the systolic loop
	Rounds int
	// MultiplyAccumulates into the local C-block
	MultiplyAccumulates int
	// Shifts is the number of block exchanges, skew included
	Shifts int
}

// systolic drives the rounds of one active rank. Its state is Skewed before
// the first round, Round(k) while round k runs and Done after the last.
type systolic struct {
	group  comm.Comm
	cell   grid.ProcessGrid
	bs     int
	kernel compute.Kernel
	ops    *operands

	round int // -1 while Skewed, Dim when Done
	stats Stats
}

func newSystolic(group comm.Comm, cell grid.ProcessGrid, bs int, kernel compute.Kernel, ops *operands) *systolic {
	return &systolic{
		group:  group,
		cell:   cell,
		bs:     bs,
		kernel: kernel,
		ops:    ops,
		round:  -1,
	}
}

func (s *systolic) state() string {
	switch {
	case s.round < 0:
		return "Skewed"
	case s.round >= s.cell.Dim:
		return "Done"
	default:
		return fmt.Sprintf("Round(%d)", s.round)
	}
}

func (s *systolic) done() bool { return s.round >= s.cell.Dim }

// step enters the next round: multiply-accumulate, then rotate A one step
// left and B one step up. Stepping from Done is an error.
func (s *systolic) step() error {
	if s.done() {
		return NewLifecycleError("systolic", "step after Done")
	}
	if s.round < 0 {
		clear(s.ops.c)
	}
	s.round++
	k := s.round

	s.kernel(s.bs, s.ops.a, s.ops.b, s.ops.c)
	s.stats.MultiplyAccumulates++

	if s.cell.Dim > 1 {
		if err := comm.SendrecvReplace(s.group, s.ops.a, s.cell.Left(), s.cell.Right(), TagShiftA); err != nil {
			return NewCommunicationError("systolic", fmt.Sprintf("round %d A shift", k), err)
		}
		if err := comm.SendrecvReplace(s.group, s.ops.b, s.cell.Up(), s.cell.Down(), TagShiftB); err != nil {
			return NewCommunicationError("systolic", fmt.Sprintf("round %d B shift", k), err)
		}
		s.stats.Shifts += 2
	}
	s.stats.Rounds++
	if k == s.cell.Dim-1 {
		s.round = s.cell.Dim
	}
	klog.V(4).InfoS("round complete", "cell", s.cell, "round", k, "state", s.state())
	return nil
}

// run steps until Done.
func (s *systolic) run() error {
	for !s.done() {
		if err := s.step(); err != nil {
			return err
		}
	}
	return nil
}
