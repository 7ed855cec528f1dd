// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cannon

import (
	"fmt"

	"k8s.io/klog/v2"

	"github.com/LynnColeArt/cannon/comm"
)

// TaskData carries the operands of one multiplication. A, B and C are n×n
// row-major and C must be pre-allocated. In a parallel run only the root
// needs them; other ranks may pass an empty TaskData.
type TaskData struct {
	N int
	A []float64
	B []float64
	C []float64
}

// Task is a multiplication driven through four stages, in order:
// Validate, PreProcess, Run, PostProcess. Calling a stage out of order
// returns a lifecycle error and leaves the task unusable.
type Task interface {
	Validate() error
	PreProcess() error
	Run() error
	PostProcess() error
}

// Stage is a position in the task lifecycle.
type Stage int

const (
	StageCreated Stage = iota
	StageValidated
	StagePreProcessed
	StageRan
	StagePostProcessed
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageCreated:
		return "Created"
	case StageValidated:
		return "Validated"
	case StagePreProcessed:
		return "PreProcessed"
	case StageRan:
		return "Ran"
	case StagePostProcessed:
		return "PostProcessed"
	case StageFailed:
		return "Failed"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// lifecycle is the runtime guard embedded by every task.
type lifecycle struct {
	stage Stage
}

// Stage returns the current lifecycle stage.
func (l *lifecycle) Stage() Stage { return l.stage }

// enter runs fn if the task is in stage from, then moves it to to. Any
// error, from the guard or from fn, moves the task to StageFailed.
func (l *lifecycle) enter(op string, from, to Stage, fn func() error) error {
	if l.stage != from {
		err := NewLifecycleError(op, fmt.Sprintf("task is %s, want %s", l.stage, from))
		l.stage = StageFailed
		return err
	}
	if err := fn(); err != nil {
		l.stage = StageFailed
		return err
	}
	l.stage = to
	return nil
}

// Variant selects a Task implementation at construction.
type Variant int

const (
	// Sequential is the single-process triple loop
	Sequential Variant = iota
	// Parallel is Cannon's algorithm over a communicator
	Parallel
)

func (v Variant) String() string {
	switch v {
	case Sequential:
		return "sequential"
	case Parallel:
		return "parallel"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// NewTask constructs the task for a variant. world is ignored by Sequential.
func NewTask(v Variant, world comm.Comm, data *TaskData, opts Options) (Task, error) {
	switch v {
	case Sequential:
		return NewSequentialTask(data), nil
	case Parallel:
		return NewParallelTask(world, data, opts)
	default:
		return nil, NewInvalidArgError("NewTask", fmt.Sprintf("unknown variant %d", int(v)))
	}
}

// Drive runs every stage of t in order and returns the first error.
func Drive(t Task) error {
	stages := []struct {
		name string
		fn   func() error
	}{
		{"Validate", t.Validate},
		{"PreProcess", t.PreProcess},
		{"Run", t.Run},
		{"PostProcess", t.PostProcess},
	}
	for _, s := range stages {
		if err := s.fn(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

// Execute drives t and reports success as a boolean. The cause of a
// failure is logged.
func Execute(t Task) bool {
	if err := Drive(t); err != nil {
		klog.ErrorS(err, "task rejected")
		return false
	}
	return true
}
