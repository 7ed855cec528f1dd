package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDim(t *testing.T) {
	for p := 1; p <= 1000; p++ {
		d, err := Dim(p)
		require.NoError(t, err)
		assert.LessOrEqual(t, d*d, p, "p=%d", p)
		assert.Greater(t, (d+1)*(d+1), p, "p=%d", p)
	}
}

func TestDimDegenerate(t *testing.T) {
	for _, p := range []int{0, -1, -16} {
		_, err := Dim(p)
		assert.ErrorIs(t, err, ErrDegenerate)
	}
	_, err := Build(0)
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestNeighboursWrap(t *testing.T) {
	tests := []struct {
		name                  string
		cell                  ProcessGrid
		left, right, up, down int
	}{
		{"Centre", ProcessGrid{Row: 1, Col: 1, Dim: 3}, 3, 5, 1, 7},
		{"TopLeft", ProcessGrid{Row: 0, Col: 0, Dim: 3}, 2, 1, 6, 3},
		{"BottomRight", ProcessGrid{Row: 2, Col: 2, Dim: 3}, 7, 6, 5, 2},
		{"Single", ProcessGrid{Row: 0, Col: 0, Dim: 1}, 0, 0, 0, 0},
		{"TwoByTwo", ProcessGrid{Row: 0, Col: 1, Dim: 2}, 0, 0, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.left, tt.cell.Left())
			assert.Equal(t, tt.right, tt.cell.Right())
			assert.Equal(t, tt.up, tt.cell.Up())
			assert.Equal(t, tt.down, tt.cell.Down())
		})
	}
}

func TestShiftIsPermutation(t *testing.T) {
	topo, err := Build(16)
	require.NoError(t, err)
	for _, shift := range [][2]int{{0, -1}, {-1, 0}, {2, -3}, {-5, 7}} {
		seen := make([]bool, topo.Active())
		for rank := 0; rank < topo.Active(); rank++ {
			cell, ok := topo.Cell(rank)
			require.True(t, ok)
			dst := cell.Shift(shift[0], shift[1])
			assert.False(t, seen[dst], "rank %d hit twice for shift %v", dst, shift)
			seen[dst] = true
		}
	}
}

func TestPlace(t *testing.T) {
	topo, err := Build(7)
	require.NoError(t, err)
	assert.Equal(t, 2, topo.Dim())
	assert.Equal(t, 4, topo.Active())
	assert.Equal(t, 3, topo.Idle())

	for rank := 0; rank < 7; rank++ {
		role, err := topo.Place(rank)
		require.NoError(t, err)
		switch r := role.(type) {
		case Active:
			assert.Less(t, rank, 4)
			assert.Equal(t, rank, r.Cell.Rank())
		case Idle:
			assert.GreaterOrEqual(t, rank, 4)
			assert.Equal(t, rank, r.Rank)
		default:
			t.Fatalf("unexpected role %T", role)
		}
	}
	_, err = topo.Place(7)
	assert.Error(t, err)
}
