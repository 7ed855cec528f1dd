// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/samber/lo"

	"github.com/LynnColeArt/cannon"
)

// runReport is the JSON summary of one run.
type runReport struct {
	Mode      string        `json:"mode"`   // "local" or "node"
	Status    string        `json:"status"` // "pass", "fail"
	Procs     int           `json:"procs"`
	Active    int           `json:"active"`
	N         int           `json:"n"`
	GridDim   int           `json:"grid_dim"`
	BlockSize int           `json:"block_size"`
	Kernel    string        `json:"kernel"`
	Skew      string        `json:"skew"`
	Duration  time.Duration `json:"duration"`
	GFlops    float64       `json:"gflops,omitempty"`
	Verify    *verifyReport `json:"verify,omitempty"`
	Ranks     []rankReport  `json:"ranks,omitempty"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

type verifyReport struct {
	MaxAbsError float64 `json:"max_abs_error"`
	MaxRelError float64 `json:"max_rel_error"`
	MaxULPError uint64  `json:"max_ulp_error"`
	NumErrors   int     `json:"num_errors"`
	FirstError  int     `json:"first_error"`
}

type rankReport struct {
	Rank                int    `json:"rank"`
	Role                string `json:"role"`
	Rounds              int    `json:"rounds"`
	MultiplyAccumulates int    `json:"multiply_accumulates"`
	Shifts              int    `json:"shifts"`
}

func newRunReport(mode string, procs, n int, layout cannon.Layout, opts cannon.Options, reports []cannon.Report, elapsed time.Duration) *runReport {
	r := &runReport{
		Mode:      mode,
		Status:    "pass",
		Procs:     procs,
		N:         n,
		Active:    layout.GridDim * layout.GridDim,
		GridDim:   layout.GridDim,
		BlockSize: layout.BlockSize,
		Skew:      opts.Skew.String(),
		Duration:  elapsed,
		Timestamp: time.Now(),
	}
	if elapsed > 0 {
		r.GFlops = 2 * float64(n) * float64(n) * float64(n) / elapsed.Seconds() / 1e9
	}
	r.Ranks = lo.Map(reports, func(rep cannon.Report, _ int) rankReport {
		role := "unknown"
		if rep.Role != nil {
			role = rep.Role.String()
		}
		return rankReport{
			Rank:                rep.Rank,
			Role:                role,
			Rounds:              rep.Stats.Rounds,
			MultiplyAccumulates: rep.Stats.MultiplyAccumulates,
			Shifts:              rep.Stats.Shifts,
		}
	})
	if len(reports) > 0 {
		r.Kernel = reports[0].Kernel
	}
	return r
}

func (r *runReport) setVerification(v cannon.VerificationResult) {
	r.Verify = &verifyReport{
		MaxAbsError: v.MaxAbsError,
		MaxRelError: v.MaxRelError,
		MaxULPError: v.MaxULPError,
		NumErrors:   v.NumErrors,
		FirstError:  v.FirstError,
	}
	if !v.Passed() {
		r.fail(fmt.Errorf("verification failed: %s", v))
	}
}

func (r *runReport) fail(err error) {
	r.Status = "fail"
	r.Error = err.Error()
}

// write stores the report as indented JSON. An empty path is a no-op.
func (r *runReport) write(path string) error {
	if path == "" {
		return nil
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
