// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command cannon multiplies square matrices with Cannon's algorithm, either
// on in-process ranks or as one rank of a websocket-connected world.
package main

import (
	"flag"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"

	"github.com/LynnColeArt/cannon"
	"github.com/LynnColeArt/cannon/config"
)

func main() {
	defer klog.Flush()
	if err := newRootCmd().Execute(); err != nil {
		klog.ErrorS(err, "cannon failed")
		klog.Flush()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	job := config.Default()
	var cfgPath string

	root := &cobra.Command{
		Use:           "cannon",
		Short:         "Distributed dense matrix multiplication on a 2-D torus",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cfgPath == "" {
				return nil
			}
			return overlay(cmd.Flags(), func() error {
				loaded, err := config.Load(cfgPath)
				if err != nil {
					return err
				}
				job = loaded
				return nil
			})
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "job file (.yaml, .yml or .toml); flags override it")
	goflags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(goflags)
	pf.AddGoFlagSet(goflags)

	root.AddCommand(newLocalCmd(&job), newNodeCmd(&job), newVersionCmd())
	return root
}

// bindJobFlags registers the flags shared by the run commands.
func bindJobFlags(fs *pflag.FlagSet, job *config.Job) {
	fs.IntVarP(&job.N, "size", "n", job.N, "size of generated operands")
	fs.Int64Var(&job.Seed, "seed", job.Seed, "seed for generated operands")
	fs.StringVar(&job.A, "a", job.A, "file holding A")
	fs.StringVar(&job.B, "b", job.B, "file holding B")
	fs.StringVarP(&job.C, "out", "o", job.C, "write C to this file")
	fs.StringVar(&job.Kernel, "kernel", job.Kernel, "block kernel (auto, gonum, reference)")
	fs.StringVar(&job.Skew, "skew", job.Skew, "skew strategy (shift, scatter)")
	fs.BoolVar(&job.Barriers, "barriers", job.Barriers, "synchronize after the skew and before the gather")
	fs.BoolVar(&job.Verify, "verify", job.Verify, "check the product against gonum")
	fs.Float64Var(&job.Tolerance.Abs, "abs-tol", job.Tolerance.Abs, "absolute verification tolerance")
	fs.Float64Var(&job.Tolerance.Rel, "rel-tol", job.Tolerance.Rel, "relative verification tolerance")
	fs.StringVar(&job.Report, "report", job.Report, "write a JSON run report to this file")
}

// overlay runs load, which replaces the values behind the flags, and then
// restores every flag the user set explicitly.
func overlay(fs *pflag.FlagSet, load func() error) error {
	var restore []func() error
	fs.Visit(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			vals := sv.GetSlice()
			restore = append(restore, func() error { return sv.Replace(vals) })
			return
		}
		val := f.Value.String()
		restore = append(restore, func() error { return f.Value.Set(val) })
	})
	if err := load(); err != nil {
		return err
	}
	for _, r := range restore {
		if err := r(); err != nil {
			return err
		}
	}
	return nil
}

// options turns a job into task options.
func options(job config.Job) (cannon.Options, error) {
	skew, err := cannon.ParseSkew(job.Skew)
	if err != nil {
		return cannon.Options{}, err
	}
	return cannon.Options{Kernel: job.Kernel, Skew: skew, Barriers: job.Barriers}, nil
}
