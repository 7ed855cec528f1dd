// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/LynnColeArt/cannon"
	"github.com/LynnColeArt/cannon/comm"
	"github.com/LynnColeArt/cannon/comm/wsnet"
	"github.com/LynnColeArt/cannon/config"
)

func newNodeCmd(job *config.Job) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Run one rank of a world connected over websockets",
		Long: `Run one rank of a world connected over websockets.

Every rank is started with the same --peers list, the listen address of
each rank in rank order, and its own --rank. Rank 0 holds the operands,
verifies the product and writes the outputs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNode(cmd, *job)
		},
	}
	bindJobFlags(cmd.Flags(), job)
	fs := cmd.Flags()
	fs.IntVar(&job.Rank, "rank", job.Rank, "rank of this process")
	fs.StringSliceVar(&job.Peers, "peers", job.Peers, "listen address of every rank, in rank order")
	fs.StringVar(&job.InitTimeout, "init-timeout", job.InitTimeout, "how long to wait for the other ranks")
	return cmd
}

func runNode(cmd *cobra.Command, job config.Job) error {
	if len(job.Peers) == 0 {
		return errors.New("node: --peers is required")
	}
	job.Procs = len(job.Peers)
	if err := job.Validate(); err != nil {
		return err
	}
	opts, err := options(job)
	if err != nil {
		return err
	}
	timeout, err := job.Timeout()
	if err != nil {
		return err
	}

	data := &cannon.TaskData{}
	var a, b []float64
	if job.Rank == comm.Root {
		var n int
		if n, a, b, err = operands(job); err != nil {
			return err
		}
		data = &cannon.TaskData{N: n, A: a, B: b, C: make([]float64, n*n)}
	}

	ln, err := wsnet.Listen(job.Peers[job.Rank])
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	c, err := ln.Connect(ctx, job.Rank, job.Peers)
	cancel()
	if err != nil {
		ln.Close()
		return err
	}
	defer c.Close()

	task, err := cannon.NewParallelTask(c, data, opts)
	if err != nil {
		return err
	}
	start := time.Now()
	ok := cannon.Execute(task)
	elapsed := time.Since(start)
	if !ok {
		return errors.New("node: multiplication failed")
	}
	klog.InfoS("rank done", "rank", job.Rank, "role", task.Role(), "stats", task.Stats())
	if job.Rank != comm.Root {
		return nil
	}
	rep := newRunReport("node", len(job.Peers), data.N, task.Layout(), opts, []cannon.Report{task.Report()}, elapsed)
	return finish(cmd, job, rep, data.N, a, b, data.C)
}
