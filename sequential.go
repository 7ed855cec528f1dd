package cannon

import (
	"fmt"
	"math"
)

// SequentialTask multiplies on a single process with Reference.Multiply.
// It is the oracle the parallel variant is checked against.
type SequentialTask struct {
	lifecycle
	data   *TaskData
	result []float64
}

var _ Task = (*SequentialTask)(nil)

// NewSequentialTask returns a task over data.
func NewSequentialTask(data *TaskData) *SequentialTask {
	return &SequentialTask{data: data}
}

// Validate implements Task.
func (t *SequentialTask) Validate() error {
	return t.enter("Validate", StageCreated, StageValidated, func() error {
		return validateData(t.data)
	})
}

// PreProcess implements Task.
func (t *SequentialTask) PreProcess() error {
	return t.enter("PreProcess", StageValidated, StagePreProcessed, func() error {
		t.result = make([]float64, t.data.N*t.data.N)
		return nil
	})
}

// Run implements Task.
func (t *SequentialTask) Run() error {
	return t.enter("Run", StagePreProcessed, StageRan, func() error {
		Reference{}.Multiply(t.data.N, t.data.A, t.data.B, t.result)
		return nil
	})
}

// PostProcess implements Task.
func (t *SequentialTask) PostProcess() error {
	return t.enter("PostProcess", StageRan, StagePostProcessed, func() error {
		copy(t.data.C, t.result)
		return nil
	})
}

// validateData checks n and the three buffers against n².
func validateData(d *TaskData) error {
	if d == nil {
		return NewDimensionError("Validate", "no task data")
	}
	if d.N <= 0 {
		return NewDimensionError("Validate", fmt.Sprintf("n must be positive, got %d", d.N))
	}
	if d.N > math.MaxInt/d.N {
		return NewDimensionError("Validate", fmt.Sprintf("n=%d is too large: n² overflows", d.N))
	}
	want := d.N * d.N
	for _, buf := range []struct {
		name string
		len  int
	}{{"A", len(d.A)}, {"B", len(d.B)}, {"C", len(d.C)}} {
		if buf.len != want {
			return NewDimensionError("Validate",
				fmt.Sprintf("%s holds %d values, want n²=%d", buf.name, buf.len, want))
		}
	}
	return nil
}
