// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package comm

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by operations on a closed communicator.
	ErrClosed = errors.New("comm: communicator closed")

	// ErrRank is returned when a peer rank is outside the communicator.
	ErrRank = errors.New("comm: rank out of range")

	// ErrSize is returned when a received message does not fit the buffer.
	ErrSize = errors.New("comm: message size mismatch")

	// ErrNotMember is returned by NewGroup for a caller outside the group.
	ErrNotMember = errors.New("comm: caller is not a member of the group")
)

// OpError records a failed point-to-point operation.
type OpError struct {
	Op   string // "send" or "recv"
	Rank int    // local rank
	Peer int    // destination or source
	Tag  int
	Err  error
}

// Error implements the error interface
func (e *OpError) Error() string {
	return fmt.Sprintf("comm: %s rank %d peer %d tag %d: %v", e.Op, e.Rank, e.Peer, e.Tag, e.Err)
}

// Unwrap allows error chain inspection
func (e *OpError) Unwrap() error {
	return e.Err
}

func checkPeer(op string, rank, peer, size, tag int) error {
	if peer < 0 || peer >= size {
		return &OpError{Op: op, Rank: rank, Peer: peer, Tag: tag, Err: ErrRank}
	}
	return nil
}

// CopyMessage copies a received message into buf, checking its length.
func CopyMessage(buf, msg []float64) error {
	if len(msg) != len(buf) {
		return fmt.Errorf("%w: got %d values, buffer holds %d", ErrSize, len(msg), len(buf))
	}
	copy(buf, msg)
	return nil
}
