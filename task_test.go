package cannon

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LynnColeArt/cannon/comm"
)

func TestSequentialTask(t *testing.T) {
	data := newData(3, []float64{2, 3, 1, 4, 0, 5, 1, 2, 3}, []float64{1, 2, 3, 0, 1, 0, 4, 0, 1})
	task, err := NewTask(Sequential, nil, data, Options{})
	require.NoError(t, err)
	assert.True(t, Execute(task))
	assert.Equal(t, []float64{6, 7, 7, 24, 8, 17, 13, 4, 6}, data.C)
	assert.Equal(t, StagePostProcessed, task.(*SequentialTask).Stage())
}

func TestExecuteReportsFailure(t *testing.T) {
	task := NewSequentialTask(&TaskData{N: 0})
	assert.False(t, Execute(task))
	assert.Equal(t, StageFailed, task.Stage())

	err := Drive(NewSequentialTask(&TaskData{N: 2, A: make([]float64, 4)}))
	assert.True(t, IsDimensionError(err))

	huge := NewSequentialTask(&TaskData{N: 1 << (strconv.IntSize / 2)})
	assert.False(t, Execute(huge))
	assert.Equal(t, StageFailed, huge.Stage())
}

func TestLifecycleOutOfOrder(t *testing.T) {
	data := newData(2, make([]float64, 4), make([]float64, 4))

	tests := []struct {
		name  string
		calls func(t Task) error
	}{
		{"run before validate", func(t Task) error { return t.Run() }},
		{"preprocess before validate", func(t Task) error { return t.PreProcess() }},
		{"postprocess before run", func(t Task) error {
			if err := t.Validate(); err != nil {
				return err
			}
			return t.PostProcess()
		}},
		{"validate twice", func(t Task) error {
			if err := t.Validate(); err != nil {
				return err
			}
			return t.Validate()
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := NewSequentialTask(data)
			err := tt.calls(task)
			assert.True(t, IsLifecycleError(err), "got %v", err)
			assert.Equal(t, StageFailed, task.Stage())

			// A failed task stays failed.
			assert.True(t, IsLifecycleError(task.Validate()))
		})
	}
}

func TestParallelLifecycleGuard(t *testing.T) {
	world, err := comm.NewWorld(1)
	require.NoError(t, err)
	task, err := NewTask(Parallel, world[0], newData(1, []float64{2}, []float64{3}), Options{})
	require.NoError(t, err)

	assert.True(t, IsLifecycleError(task.Run()))
	assert.False(t, Execute(task))
}

func TestParallelSingleRankExecute(t *testing.T) {
	world, err := comm.NewWorld(1)
	require.NoError(t, err)
	data := newData(1, []float64{2}, []float64{3})
	task, err := NewTask(Parallel, world[0], data, Options{})
	require.NoError(t, err)
	require.True(t, Execute(task))
	assert.Equal(t, []float64{6}, data.C)

	p := task.(*ParallelTask)
	assert.Equal(t, Stats{Rounds: 1, MultiplyAccumulates: 1}, p.Stats())
	assert.Equal(t, Layout{N: 1, GridDim: 1, BlockSize: 1, PaddedN: 1}, p.Layout())
}

func TestNewTaskUnknownVariant(t *testing.T) {
	_, err := NewTask(Variant(7), nil, nil, Options{})
	assert.True(t, IsInvalidArgError(err))
	assert.Equal(t, "Variant(7)", Variant(7).String())
	assert.Equal(t, "parallel", Parallel.String())
}

func TestStageString(t *testing.T) {
	names := map[Stage]string{
		StageCreated:       "Created",
		StageValidated:     "Validated",
		StagePreProcessed:  "PreProcessed",
		StageRan:           "Ran",
		StagePostProcessed: "PostProcessed",
		StageFailed:        "Failed",
		Stage(42):          "Stage(42)",
	}
	for s, want := range names {
		assert.Equal(t, want, s.String())
	}
}
