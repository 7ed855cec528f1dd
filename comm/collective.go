// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package comm

import "fmt"

// Reserved tags for collectives.
const (
	tagBcast = -1 - iota
	tagScatter
	tagGather
	tagBarrierIn
	tagBarrierOut
)

// Sendrecv sends send to dest and then receives recv from src. Because Send
// is eager, a ring of ranks all calling Sendrecv cannot deadlock.
func Sendrecv(c Comm, send []float64, dest, sendTag int, recv []float64, src, recvTag int) error {
	if err := c.Send(send, dest, sendTag); err != nil {
		return err
	}
	return c.Recv(recv, src, recvTag)
}

// SendrecvReplace sends buf to dest and overwrites it with the message from
// src.
func SendrecvReplace(c Comm, buf []float64, dest, src, tag int) error {
	return Sendrecv(c, buf, dest, tag, buf, src, tag)
}

// Bcast copies buf on root into buf on every other rank.
func Bcast(c Comm, buf []float64, root int) error {
	if c.Rank() != root {
		return c.Recv(buf, root, tagBcast)
	}
	for r := 0; r < c.Size(); r++ {
		if r == root {
			continue
		}
		if err := c.Send(buf, r, tagBcast); err != nil {
			return err
		}
	}
	return nil
}

// BcastInts broadcasts small integers (|v| < 2^53) from root.
func BcastInts(c Comm, vals []int, root int) error {
	buf := make([]float64, len(vals))
	for i, v := range vals {
		buf[i] = float64(v)
	}
	if err := Bcast(c, buf, root); err != nil {
		return err
	}
	for i, v := range buf {
		vals[i] = int(v)
	}
	return nil
}

// Scatter sends parts[r] from root to rank r, which receives it into buf.
// parts is only read on root and must have Size() entries.
func Scatter(c Comm, parts [][]float64, buf []float64, root int) error {
	if c.Rank() != root {
		return c.Recv(buf, root, tagScatter)
	}
	if len(parts) != c.Size() {
		return fmt.Errorf("comm: scatter needs %d parts, got %d", c.Size(), len(parts))
	}
	for r, p := range parts {
		if r == root {
			if err := CopyMessage(buf, p); err != nil {
				return err
			}
			continue
		}
		if err := c.Send(p, r, tagScatter); err != nil {
			return err
		}
	}
	return nil
}

// Gather collects send from every rank into parts on root, ordered by rank.
// parts is only written on root and must have Size() entries of the right
// length.
func Gather(c Comm, send []float64, parts [][]float64, root int) error {
	if c.Rank() != root {
		return c.Send(send, root, tagGather)
	}
	if len(parts) != c.Size() {
		return fmt.Errorf("comm: gather needs %d parts, got %d", c.Size(), len(parts))
	}
	for r := range parts {
		if r == root {
			if err := CopyMessage(parts[r], send); err != nil {
				return err
			}
			continue
		}
		if err := c.Recv(parts[r], r, tagGather); err != nil {
			return err
		}
	}
	return nil
}

// Barrier returns once every rank has entered it.
func Barrier(c Comm) error {
	if c.Rank() != Root {
		if err := c.Send(nil, Root, tagBarrierIn); err != nil {
			return err
		}
		return c.Recv(nil, Root, tagBarrierOut)
	}
	for r := 1; r < c.Size(); r++ {
		if err := c.Recv(nil, r, tagBarrierIn); err != nil {
			return err
		}
	}
	for r := 1; r < c.Size(); r++ {
		if err := c.Send(nil, r, tagBarrierOut); err != nil {
			return err
		}
	}
	return nil
}
