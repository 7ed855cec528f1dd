// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LynnColeArt/cannon"
	"github.com/LynnColeArt/cannon/compute"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build and CPU information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			version, sum, gonum := cannon.Version()
			if version == "" {
				version = "(devel)"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "cannon %s %s\n", version, sum)
			if gonum != "" {
				fmt.Fprintf(out, "gonum %s\n", gonum)
			}
			fmt.Fprintln(out, compute.CPUInfo())
			fmt.Fprintf(out, "kernels %v (auto: %s)\n", compute.Names(), compute.Best())
		},
	}
}
