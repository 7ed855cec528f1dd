// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package comm

import "fmt"

// group is a sub-communicator over a subset of a parent's ranks. Group rank
// i is parent rank ranks[i]. It shares the parent's transport.
type group struct {
	parent Comm
	rank   int
	ranks  []int
}

// NewGroup creates a communicator for the given parent ranks, in order.
// Every member must call NewGroup with the same ranks. A caller that is not
// listed gets ErrNotMember.
func NewGroup(parent Comm, ranks []int) (Comm, error) {
	seen := make(map[int]bool, len(ranks))
	self := -1
	for i, r := range ranks {
		if r < 0 || r >= parent.Size() {
			return nil, fmt.Errorf("comm: group rank %d: %w", r, ErrRank)
		}
		if seen[r] {
			return nil, fmt.Errorf("comm: rank %d listed twice in group", r)
		}
		seen[r] = true
		if r == parent.Rank() {
			self = i
		}
	}
	if self < 0 {
		return nil, ErrNotMember
	}
	return &group{parent: parent, rank: self, ranks: append([]int(nil), ranks...)}, nil
}

func (g *group) Rank() int { return g.rank }
func (g *group) Size() int { return len(g.ranks) }

func (g *group) Send(data []float64, dest, tag int) error {
	if err := checkPeer("send", g.rank, dest, len(g.ranks), tag); err != nil {
		return err
	}
	return g.parent.Send(data, g.ranks[dest], tag)
}

func (g *group) Recv(buf []float64, src, tag int) error {
	if err := checkPeer("recv", g.rank, src, len(g.ranks), tag); err != nil {
		return err
	}
	return g.parent.Recv(buf, g.ranks[src], tag)
}

// Close is a no-op: the parent owns the transport.
func (g *group) Close() error { return nil }
