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

// Options tune a parallel task. The zero value is valid.
type Options struct {
	// Kernel names the block kernel in package compute; empty means auto
	Kernel string
	// Skew selects the alignment strategy; the zero value is DefaultSkew
	Skew SkewStrategy
	// Barriers adds a barrier over the active ranks after the skew and
	// before the gather
	Barriers bool
}

// Report summarizes what one rank did.
type Report struct {
	Rank   int
	Role   grid.Role
	Kernel string
	Stats  Stats
}

// ParallelTask multiplies with Cannon's algorithm over a communicator. Every
// rank of world builds its own ParallelTask and drives it through the same
// stages. Ranks beyond the largest perfect square take part in validation
// only and then report Idle.
type ParallelTask struct {
	lifecycle
	world  comm.Comm
	data   *TaskData
	opts   Options
	kernel compute.Kernel
	kname  string

	n      int
	place  *placement
	layout Layout
	ops    *operands
	aParts [][]float64 // root only, until scattered
	bParts [][]float64
	stats  Stats
}

var _ Task = (*ParallelTask)(nil)

// NewParallelTask returns a task for the calling rank of world. data is only
// read on the root.
func NewParallelTask(world comm.Comm, data *TaskData, opts Options) (*ParallelTask, error) {
	if world == nil {
		return nil, NewInvalidArgError("NewParallelTask", "nil communicator")
	}
	if _, ok := skewNames[opts.Skew]; !ok {
		return nil, NewInvalidArgError("NewParallelTask", fmt.Sprintf("unknown skew strategy %d", int(opts.Skew)))
	}
	name := opts.Kernel
	if name == "" {
		name = DefaultKernel
	}
	kname, kernel, err := compute.Lookup(name)
	if err != nil {
		return nil, NewInvalidArgError("NewParallelTask", err.Error())
	}
	return &ParallelTask{
		world:  world,
		data:   data,
		opts:   opts,
		kernel: kernel,
		kname:  kname,
	}, nil
}

func (t *ParallelTask) isRoot() bool { return t.world.Rank() == comm.Root }

// Validate checks the process count locally, then lets the root judge the
// operands and broadcast its verdict so every rank fails together.
func (t *ParallelTask) Validate() error {
	return t.enter("Validate", StageCreated, StageValidated, func() error {
		if _, err := grid.Dim(t.world.Size()); err != nil {
			return NewProcessCountError("Validate", fmt.Sprintf("world of %d processes", t.world.Size()), err)
		}
		msg := []int{verdictOK, 0}
		var rootErr error
		if t.isRoot() {
			if rootErr = validateData(t.data); rootErr != nil {
				msg[0] = verdictInvalidDimension
			} else {
				msg[1] = t.data.N
			}
		}
		if err := comm.BcastInts(t.world, msg, comm.Root); err != nil {
			return NewCommunicationError("Validate", "verdict broadcast", err)
		}
		if rootErr != nil {
			return rootErr
		}
		if msg[0] != verdictOK {
			return NewDimensionError("Validate", "root rejected the operands")
		}
		t.n = msg[1]
		return nil
	})
}

// PreProcess places the rank on the torus and, on the root, pads and splits
// the operands.
func (t *ParallelTask) PreProcess() error {
	return t.enter("PreProcess", StageValidated, StagePreProcessed, func() error {
		p, err := place(t.world)
		if err != nil {
			return err
		}
		t.place = p
		if p.group == nil {
			klog.V(2).InfoS("rank idle", "rank", t.world.Rank(), "world", t.world.Size())
			return nil
		}
		if t.layout, err = NewLayout(t.n, p.topo.Dim()); err != nil {
			return err
		}
		t.ops = newOperands(t.layout)
		if !t.isRoot() {
			return nil
		}
		t.aParts = t.layout.Split(t.layout.Pad(t.data.A))
		t.bParts = t.layout.Split(t.layout.Pad(t.data.B))
		if t.opts.Skew == SkewScatter {
			t.aParts, t.bParts = skewParts(t.layout.GridDim, t.aParts, t.bParts)
		}
		klog.V(2).InfoS("partitioned", "n", t.n, "grid", t.layout.GridDim,
			"block", t.layout.BlockSize, "padded", t.layout.PaddedN, "skew", t.opts.Skew)
		return nil
	})
}

// Run distributes and aligns the blocks and runs the systolic rounds.
func (t *ParallelTask) Run() error {
	return t.enter("Run", StagePreProcessed, StageRan, func() error {
		if t.place.group == nil {
			return nil
		}
		group := t.place.group
		cell := t.place.role.(grid.Active).Cell

		err := scatterBlocks(group, t.aParts, t.bParts, t.ops)
		t.aParts, t.bParts = nil, nil
		if err != nil {
			return err
		}
		if t.opts.Skew == SkewShift {
			n, err := skewShift(group, cell, t.ops)
			t.stats.Shifts += n
			if err != nil {
				return err
			}
		}
		if t.opts.Barriers {
			if err := comm.Barrier(group); err != nil {
				return NewCommunicationError("Run", "skew barrier", err)
			}
		}

		s := newSystolic(group, cell, t.layout.BlockSize, t.kernel, t.ops)
		err = s.run()
		t.stats.Rounds += s.stats.Rounds
		t.stats.MultiplyAccumulates += s.stats.MultiplyAccumulates
		t.stats.Shifts += s.stats.Shifts
		return err
	})
}

// PostProcess gathers the C-blocks and writes the product into the root's C.
func (t *ParallelTask) PostProcess() error {
	return t.enter("PostProcess", StageRan, StagePostProcessed, func() error {
		if t.place.group == nil {
			return nil
		}
		if t.opts.Barriers {
			if err := comm.Barrier(t.place.group); err != nil {
				return NewCommunicationError("PostProcess", "gather barrier", err)
			}
		}
		var dst []float64
		if t.isRoot() {
			dst = t.data.C
		}
		if err := gatherResult(t.place.group, t.layout, t.ops.c, dst); err != nil {
			return err
		}
		t.ops = nil
		return nil
	})
}

// Role reports where the rank landed. It is nil before PreProcess.
func (t *ParallelTask) Role() grid.Role {
	if t.place == nil {
		return nil
	}
	return t.place.role
}

// Stats returns the work counters of the rank.
func (t *ParallelTask) Stats() Stats { return t.stats }

// Layout returns the block layout. It is the zero Layout on idle ranks.
func (t *ParallelTask) Layout() Layout { return t.layout }

// Report returns a summary of the rank.
func (t *ParallelTask) Report() Report {
	return Report{
		Rank:   t.world.Rank(),
		Role:   t.Role(),
		Kernel: t.kname,
		Stats:  t.stats,
	}
}
