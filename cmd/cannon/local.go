// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/LynnColeArt/cannon"
	"github.com/LynnColeArt/cannon/config"
	"github.com/LynnColeArt/cannon/grid"
)

func newLocalCmd(job *config.Job) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "local",
		Short: "Run every rank as a goroutine of this process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLocal(cmd, *job)
		},
	}
	bindJobFlags(cmd.Flags(), job)
	cmd.Flags().IntVarP(&job.Procs, "procs", "p", job.Procs, "number of ranks")
	return cmd
}

func runLocal(cmd *cobra.Command, job config.Job) error {
	if err := job.Validate(); err != nil {
		return err
	}
	opts, err := options(job)
	if err != nil {
		return err
	}
	n, a, b, err := operands(job)
	if err != nil {
		return err
	}
	data := &cannon.TaskData{N: n, A: a, B: b, C: make([]float64, n*n)}

	start := time.Now()
	reports, runErr := cannon.MultiplyLocalContext(cmd.Context(), job.Procs, data, opts)
	elapsed := time.Since(start)

	d, err := grid.Dim(job.Procs)
	if err != nil {
		return err
	}
	layout, err := cannon.NewLayout(n, d)
	if err != nil {
		return err
	}
	rep := newRunReport("local", job.Procs, n, layout, opts, reports, elapsed)
	if runErr != nil {
		rep.fail(runErr)
		if err := rep.write(job.Report); err != nil {
			klog.ErrorS(err, "cannot write report", "path", job.Report)
		}
		return runErr
	}
	klog.InfoS("multiplied", "n", n, "procs", job.Procs, "grid", d,
		"kernel", rep.Kernel, "elapsed", elapsed)

	return finish(cmd, job, rep, n, a, b, data.C)
}

// finish verifies the product, writes C and the report, and prints a
// summary line. It runs on the root only.
func finish(cmd *cobra.Command, job config.Job, rep *runReport, n int, a, b, c []float64) error {
	if job.Verify {
		rep.setVerification(verify(n, a, b, c, job.Tolerance))
	}
	if job.C != "" {
		if err := writeMatrixFile(job.C, n, c); err != nil {
			return err
		}
	}
	if err := rep.write(job.Report); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s n=%d grid=%dx%d active=%d/%d kernel=%s %v %.2f GFLOP/s\n",
		rep.Status, n, rep.GridDim, rep.GridDim, rep.Active, rep.Procs, rep.Kernel,
		rep.Duration.Round(time.Microsecond), rep.GFlops)
	if rep.Status != "pass" {
		return fmt.Errorf("%s", rep.Error)
	}
	return nil
}
