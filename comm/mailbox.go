// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package comm

import "sync"

type envelope struct {
	src, tag int
}

// Mailbox is the receive side shared by the transports: an unbounded set of
// FIFO queues keyed by (source, tag). Deliver never blocks, Receive blocks
// until a matching message is queued.
type Mailbox struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queues map[envelope][][]float64
	dead   map[int]error // per-source failure, reported once its queue drains
	err    error         // whole mailbox closed
}

// NewMailbox returns an empty mailbox.
func NewMailbox() *Mailbox {
	m := &Mailbox{
		queues: make(map[envelope][][]float64),
		dead:   make(map[int]error),
	}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Deliver queues msg from src under tag. The mailbox takes ownership of msg.
func (m *Mailbox) Deliver(src, tag int, msg []float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	k := envelope{src: src, tag: tag}
	m.queues[k] = append(m.queues[k], msg)
	m.cond.Broadcast()
	return nil
}

// Receive removes and returns the oldest message from src under tag.
func (m *Mailbox) Receive(src, tag int) ([]float64, error) {
	k := envelope{src: src, tag: tag}
	m.mu.Lock()
	defer m.mu.Unlock()
	for {
		if q := m.queues[k]; len(q) > 0 {
			msg := q[0]
			q[0] = nil
			if len(q) == 1 {
				delete(m.queues, k)
			} else {
				m.queues[k] = q[1:]
			}
			return msg, nil
		}
		if m.err != nil {
			return nil, m.err
		}
		if err := m.dead[src]; err != nil {
			return nil, err
		}
		m.cond.Wait()
	}
}

// CloseSource marks src as gone. Messages already queued from src can still
// be received; afterwards Receive from src returns err.
func (m *Mailbox) CloseSource(src int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.dead[src]; !ok {
		m.dead[src] = err
	}
	m.cond.Broadcast()
}

// Close fails all pending and future operations with err.
func (m *Mailbox) Close(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err == nil {
		m.err = err
	}
	m.cond.Broadcast()
}

// Pending returns the number of queued messages.
func (m *Mailbox) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, q := range m.queues {
		n += len(q)
	}
	return n
}
