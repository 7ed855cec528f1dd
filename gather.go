// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cannon

import (
	"github.com/LynnColeArt/cannon/comm"
)

// gatherResult collects every C-block on the root in group rank order, which
// is grid row-major, and crops the assembled product into dst. Non-root
// ranks only send.
func gatherResult(group comm.Comm, l Layout, cBlock, dst []float64) error {
	var parts [][]float64
	if group.Rank() == comm.Root {
		parts = make([][]float64, group.Size())
		for i := range parts {
			parts[i] = make([]float64, l.BlockLen())
		}
	}
	if err := comm.Gather(group, cBlock, parts, comm.Root); err != nil {
		return NewCommunicationError("gather", "C blocks", err)
	}
	if group.Rank() == comm.Root {
		l.Crop(l.Assemble(parts), dst)
	}
	return nil
}
