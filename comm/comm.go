// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package comm provides MPI-style message passing between ranks.
//
// A Comm connects Size() ranks, each identified by 0 <= Rank() < Size().
// Ranks exchange []float64 payloads with Send and Recv. Matching is by
// (source, tag) and messages with the same (source, tag) arrive in the order
// they were sent.
//
// Send is eager: it hands the payload to the transport and returns without
// waiting for the matching Recv, so a rank may always Send and then Recv
// without deadlocking against a peer doing the same. Recv blocks until a
// matching message arrives or the communicator is closed. There are no
// timeouts: a peer that never sends leaves the receiver blocked.
//
// Negative tags are reserved for the collectives in this package.
//
// Two transports are provided: NewWorld connects ranks inside one process
// (one goroutine per rank) and package wsnet connects ranks running in
// separate OS processes.
package comm

// Root is the rank that owns input and output in the collectives.
const Root = 0

// Comm is a communicator. All methods are blocking from the caller's point of
// view. Send and Recv may be called concurrently from different goroutines
// but a single rank normally drives its communicator from one goroutine.
type Comm interface {
	// Rank returns the rank of the caller within the communicator.
	Rank() int

	// Size returns the number of ranks in the communicator.
	Size() int

	// Send transmits data to dest with the given tag. The transport does
	// not retain data after Send returns.
	Send(data []float64, dest, tag int) error

	// Recv blocks until a message from src with the given tag arrives and
	// copies it into buf. The message length must equal len(buf).
	Recv(buf []float64, src, tag int) error

	// Close releases the communicator. Pending and future Recv calls fail
	// with ErrClosed.
	Close() error
}
