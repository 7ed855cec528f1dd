// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads the description of a multiplication job from a YAML
// or TOML file. Command line flags are applied on top of the loaded values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/LynnColeArt/cannon"
)

// Job describes one run. Field names follow the CLI flags.
type Job struct {
	// Procs is the number of in-process ranks for a local run
	Procs int `yaml:"procs" toml:"procs"`

	// N is the size of generated operands; ignored when A and B are files
	N    int   `yaml:"n" toml:"n"`
	Seed int64 `yaml:"seed" toml:"seed"`

	// A, B and C are matrix files in text form (n, then n² values)
	A string `yaml:"a" toml:"a"`
	B string `yaml:"b" toml:"b"`
	C string `yaml:"c" toml:"c"`

	Kernel   string `yaml:"kernel" toml:"kernel"`
	Skew     string `yaml:"skew" toml:"skew"`
	Barriers bool   `yaml:"barriers" toml:"barriers"`

	// Verify compares the product with a gonum reference on the root
	Verify    bool      `yaml:"verify" toml:"verify"`
	Tolerance Tolerance `yaml:"tolerance" toml:"tolerance"`

	// Report is where a JSON run report is written; empty disables it
	Report string `yaml:"report" toml:"report"`

	// Network run: this process's rank and the listen address of every rank
	Rank        int      `yaml:"rank" toml:"rank"`
	Peers       []string `yaml:"peers" toml:"peers"`
	InitTimeout string   `yaml:"init_timeout" toml:"init_timeout"`
}

// Tolerance bounds the verification error.
type Tolerance struct {
	Abs float64 `yaml:"abs" toml:"abs"`
	Rel float64 `yaml:"rel" toml:"rel"`
}

// Default returns a job with every field set to its default.
func Default() Job {
	return Job{
		Procs:       4,
		N:           256,
		Seed:        1,
		Kernel:      cannon.DefaultKernel,
		Skew:        cannon.DefaultSkew.String(),
		Verify:      true,
		Tolerance:   Tolerance{Abs: 1e-9, Rel: 1e-6},
		InitTimeout: "30s",
	}
}

// Load reads path on top of the defaults. The format is chosen by the file
// extension: .yaml, .yml or .toml.
func Load(path string) (Job, error) {
	job := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return job, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(&job); err != nil && !errors.Is(err, io.EOF) {
			return job, fmt.Errorf("config: %s: %w", path, err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&job); err != nil {
			return job, fmt.Errorf("config: %s: %w", path, err)
		}
	default:
		return job, fmt.Errorf("config: %s: unsupported format %q", path, ext)
	}
	return job, nil
}

// Timeout parses InitTimeout.
func (j Job) Timeout() (time.Duration, error) {
	d, err := time.ParseDuration(j.InitTimeout)
	if err != nil {
		return 0, fmt.Errorf("config: init_timeout: %w", err)
	}
	return d, nil
}

// Validate reports the first field that cannot describe a run.
func (j Job) Validate() error {
	switch {
	case j.Procs < 1:
		return fmt.Errorf("config: procs must be at least 1, got %d", j.Procs)
	case (j.A == "") != (j.B == ""):
		return errors.New("config: a and b must be given together")
	case j.A == "" && j.N < 1:
		return fmt.Errorf("config: n must be at least 1, got %d", j.N)
	case j.Tolerance.Abs < 0 || j.Tolerance.Rel < 0:
		return errors.New("config: tolerances must not be negative")
	}
	if len(j.Peers) > 0 && (j.Rank < 0 || j.Rank >= len(j.Peers)) {
		return fmt.Errorf("config: rank %d outside %d peers", j.Rank, len(j.Peers))
	}
	if _, err := j.Timeout(); err != nil {
		return err
	}
	return nil
}
