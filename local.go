// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cannon

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/LynnColeArt/cannon/comm"
	"github.com/LynnColeArt/cannon/grid"
)

// MultiplyLocal runs a parallel task on procs in-process ranks, one
// goroutine each, with data held by rank 0. It returns the reports of every
// rank in rank order. When any rank fails the whole world is closed so the
// others return instead of blocking.
func MultiplyLocal(procs int, data *TaskData, opts Options) ([]Report, error) {
	return MultiplyLocalContext(context.Background(), procs, data, opts)
}

// MultiplyLocalContext is MultiplyLocal with a context. Cancelling ctx closes
// the world.
func MultiplyLocalContext(ctx context.Context, procs int, data *TaskData, opts Options) ([]Report, error) {
	if _, err := grid.Dim(procs); err != nil {
		return nil, NewProcessCountError("MultiplyLocal", fmt.Sprintf("%d processes", procs), err)
	}
	world, err := comm.NewWorld(procs)
	if err != nil {
		return nil, NewProcessCountError("MultiplyLocal", "cannot create world", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	finished := make(chan struct{})
	defer close(finished)
	go func() {
		select {
		case <-ctx.Done():
			for _, c := range world {
				c.Close()
			}
		case <-finished:
		}
	}()

	reports := make([]Report, procs)
	for _, c := range world {
		g.Go(func() error {
			d := &TaskData{}
			if c.Rank() == comm.Root {
				d = data
			}
			task, err := NewParallelTask(c, d, opts)
			if err != nil {
				return err
			}
			err = Drive(task)
			reports[c.Rank()] = task.Report()
			if err != nil {
				return fmt.Errorf("rank %d: %w", c.Rank(), err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return reports, err
	}
	klog.V(1).InfoS("local run complete", "procs", procs, "active", activeCount(reports))
	return reports, nil
}

func activeCount(reports []Report) int {
	n := 0
	for _, r := range reports {
		if _, ok := r.Role.(grid.Active); ok {
			n++
		}
	}
	return n
}
