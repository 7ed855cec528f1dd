package cannon

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LynnColeArt/cannon/comm"
)

func TestStructuredErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType ErrorType
		wantOp   string
		checkFn  func(error) bool
	}{
		{
			name:     "Dimension",
			err:      NewDimensionError("Validate", "n must be positive"),
			wantType: ErrTypeInvalidDimension,
			wantOp:   "Validate",
			checkFn:  IsDimensionError,
		},
		{
			name:     "ProcessCount",
			err:      NewProcessCountError("Validate", "empty world", nil),
			wantType: ErrTypeProcessCount,
			wantOp:   "Validate",
			checkFn:  IsProcessCountError,
		},
		{
			name:     "Communication",
			err:      NewCommunicationError("Gather", "gather failed", comm.ErrClosed),
			wantType: ErrTypeCommunication,
			wantOp:   "Gather",
			checkFn:  IsCommunicationError,
		},
		{
			name:     "Lifecycle",
			err:      NewLifecycleError("Run", "called before PreProcess"),
			wantType: ErrTypeLifecycle,
			wantOp:   "Run",
			checkFn:  IsLifecycleError,
		},
		{
			name:     "InvalidArg",
			err:      NewInvalidArgError("NewParallelTask", "nil communicator"),
			wantType: ErrTypeInvalidArg,
			wantOp:   "NewParallelTask",
			checkFn:  IsInvalidArgError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ce *CannonError
			require.True(t, errors.As(tt.err, &ce), "expected CannonError, got %T", tt.err)
			assert.Equal(t, tt.wantType, ce.Type)
			assert.Equal(t, tt.wantOp, ce.Op)
			assert.True(t, tt.checkFn(tt.err))
			assert.Contains(t, tt.err.Error(), tt.wantType.String())

			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.True(t, tt.checkFn(wrapped), "predicate should see through wrapping")
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	err := NewCommunicationError("Skew", "exchange failed", comm.ErrClosed)
	assert.ErrorIs(t, err, comm.ErrClosed)
	assert.Contains(t, err.Error(), "caused by")
	assert.False(t, IsDimensionError(err))
	assert.False(t, IsDimensionError(nil))
	assert.Equal(t, "Unknown", ErrorType(99).String())
}
