// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cannon

import (
	"fmt"

	"github.com/LynnColeArt/cannon/comm"
	"github.com/LynnColeArt/cannon/grid"
)

// SkewStrategy selects how blocks are aligned before the first round.
// Either way, the process at (r,c) starts Round(0) holding A-block
// (r, (c+r) mod d) and B-block ((r+c) mod d, c).
type SkewStrategy int

const (
	// SkewShift scatters blocks in grid order and then rotates A-block rows
	// left by r and B-block columns up by c with one exchange each.
	SkewShift SkewStrategy = iota
	// SkewScatter lets the root reorder the blocks so a single scatter
	// lands them already aligned.
	SkewScatter
)

var skewNames = map[SkewStrategy]string{
	SkewShift:   "shift",
	SkewScatter: "scatter",
}

func (s SkewStrategy) String() string {
	if name, ok := skewNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SkewStrategy(%d)", int(s))
}

// ParseSkew maps a strategy name to its value.
func ParseSkew(name string) (SkewStrategy, error) {
	for s, n := range skewNames {
		if n == name {
			return s, nil
		}
	}
	return 0, NewInvalidArgError("ParseSkew", fmt.Sprintf("unknown skew strategy %q", name))
}

// skewOrder returns, for every destination rank in grid order, the index of
// the A-block and the B-block it must hold at Round(0).
func skewOrder(d int) (aSrc, bSrc []int) {
	aSrc = make([]int, d*d)
	bSrc = make([]int, d*d)
	for r := 0; r < d; r++ {
		for c := 0; c < d; c++ {
			aSrc[r*d+c] = r*d + (c+r)%d
			bSrc[r*d+c] = ((r+c)%d)*d + c
		}
	}
	return aSrc, bSrc
}

// skewParts reorders split blocks into their Round(0) owners.
func skewParts(d int, aBlocks, bBlocks [][]float64) (aParts, bParts [][]float64) {
	aSrc, bSrc := skewOrder(d)
	aParts = make([][]float64, len(aSrc))
	bParts = make([][]float64, len(bSrc))
	for dst := range aSrc {
		aParts[dst] = aBlocks[aSrc[dst]]
		bParts[dst] = bBlocks[bSrc[dst]]
	}
	return aParts, bParts
}

// skewShift rotates the locally held blocks into alignment. The cell at
// (r,c) sends its A-block to (r, c-r) and receives from (r, c+r); it sends
// its B-block to (r-c, c) and receives from (r+c, c). Row 0 of A and
// column 0 of B are already aligned.
func skewShift(group comm.Comm, cell grid.ProcessGrid, ops *operands) (shifts int, err error) {
	if cell.Row%cell.Dim != 0 {
		if err := comm.SendrecvReplace(group, ops.a, cell.Shift(0, -cell.Row), cell.Shift(0, cell.Row), TagSkewA); err != nil {
			return shifts, NewCommunicationError("skew", "A blocks", err)
		}
		shifts++
	}
	if cell.Col%cell.Dim != 0 {
		if err := comm.SendrecvReplace(group, ops.b, cell.Shift(-cell.Col, 0), cell.Shift(cell.Col, 0), TagSkewB); err != nil {
			return shifts, NewCommunicationError("skew", "B blocks", err)
		}
		shifts++
	}
	return shifts, nil
}
