// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package comm

import (
	"fmt"
	"slices"
)

// local is a rank of an in-process world. Every rank owns a mailbox; Send
// copies the payload straight into the destination's mailbox.
type local struct {
	rank  int
	boxes []*Mailbox
}

// NewWorld connects size in-process ranks. The i-th communicator has rank i.
// Each communicator should be driven by its own goroutine.
func NewWorld(size int) ([]Comm, error) {
	if size < 1 {
		return nil, fmt.Errorf("comm: world size must be at least 1, got %d", size)
	}
	boxes := make([]*Mailbox, size)
	for i := range boxes {
		boxes[i] = NewMailbox()
	}
	world := make([]Comm, size)
	for i := range world {
		world[i] = &local{rank: i, boxes: boxes}
	}
	return world, nil
}

func (l *local) Rank() int { return l.rank }
func (l *local) Size() int { return len(l.boxes) }

func (l *local) Send(data []float64, dest, tag int) error {
	if err := checkPeer("send", l.rank, dest, len(l.boxes), tag); err != nil {
		return err
	}
	if err := l.boxes[dest].Deliver(l.rank, tag, slices.Clone(data)); err != nil {
		return &OpError{Op: "send", Rank: l.rank, Peer: dest, Tag: tag, Err: err}
	}
	return nil
}

func (l *local) Recv(buf []float64, src, tag int) error {
	if err := checkPeer("recv", l.rank, src, len(l.boxes), tag); err != nil {
		return err
	}
	msg, err := l.boxes[l.rank].Receive(src, tag)
	if err == nil {
		err = CopyMessage(buf, msg)
	}
	if err != nil {
		return &OpError{Op: "recv", Rank: l.rank, Peer: src, Tag: tag, Err: err}
	}
	return nil
}

func (l *local) Close() error {
	l.boxes[l.rank].Close(ErrClosed)
	return nil
}
