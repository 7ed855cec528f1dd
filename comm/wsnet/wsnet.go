// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wsnet is a comm.Comm transport for ranks running in separate OS
// processes. Ranks form a full mesh of WebSocket connections: every rank
// listens, and each rank dials all lower ranks. The first message on a
// connection is a JSON hello carrying the dialer's rank; after that every
// message is a binary data frame.
//
// Typical use:
//
//	ln, err := wsnet.Listen(peers[rank])
//	...
//	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//	defer cancel()
//	c, err := ln.Connect(ctx, rank, peers)
//	...
//	defer c.Close()
package wsnet

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/LynnColeArt/cannon/comm"
)

const (
	// Path is the HTTP path ranks upgrade on.
	Path = "/cannon"

	retryInterval = 50 * time.Millisecond
	closeGrace    = time.Second
)

// Listener accepts connections from higher ranks.
type Listener struct {
	ln       net.Listener
	srv      *http.Server
	upgrader websocket.Upgrader
	accepted chan *websocket.Conn
	done     chan struct{}
	once     sync.Once
}

// Listen starts accepting rank connections on addr ("host:port"; port 0
// picks a free port, see Addr).
func Listen(addr string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "wsnet: listen on %s", addr)
	}
	l := &Listener{
		ln: ln,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1 << 16,
			WriteBufferSize: 1 << 16,
		},
		accepted: make(chan *websocket.Conn),
		done:     make(chan struct{}),
	}
	mux := http.NewServeMux()
	mux.HandleFunc(Path, l.serve)
	l.srv = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := l.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			klog.ErrorS(err, "wsnet: serve stopped", "addr", l.Addr())
		}
	}()
	return l, nil
}

// Addr returns the address the listener is bound to.
func (l *Listener) Addr() string {
	return l.ln.Addr().String()
}

// Close stops accepting connections. Established connections stay open.
func (l *Listener) Close() error {
	var err error
	l.once.Do(func() {
		close(l.done)
		err = l.srv.Close()
	})
	return err
}

func (l *Listener) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		klog.ErrorS(err, "wsnet: upgrade failed", "remote", r.RemoteAddr)
		return
	}
	select {
	case l.accepted <- conn:
	case <-l.done:
		conn.Close()
	}
}

// Connect joins the mesh as rank. peers lists every rank's listen address
// in rank order; peers[rank] is this listener's own address. Connect returns
// once a connection to every other rank is up, or fails when ctx ends.
// The returned Comm owns the listener.
func (l *Listener) Connect(ctx context.Context, rank int, peers []string) (*Comm, error) {
	size := len(peers)
	if rank < 0 || rank >= size {
		return nil, errors.Errorf("wsnet: rank %d outside %d peers", rank, size)
	}
	c := &Comm{
		rank:  rank,
		size:  size,
		peers: make([]*peer, size),
		box:   comm.NewMailbox(),
		ln:    l,
	}

	g, gctx := errgroup.WithContext(ctx)
	for j := 0; j < rank; j++ {
		g.Go(func() error {
			conn, err := dial(gctx, peers[j])
			if err != nil {
				return err
			}
			if err := conn.WriteJSON(hello{Rank: rank, Size: size}); err != nil {
				conn.Close()
				return errors.Wrapf(err, "wsnet: hello to rank %d", j)
			}
			c.peers[j] = &peer{conn: conn}
			return nil
		})
	}
	g.Go(func() error {
		for need := size - 1 - rank; need > 0; need-- {
			var conn *websocket.Conn
			select {
			case conn = <-l.accepted:
			case <-gctx.Done():
				return errors.Wrap(gctx.Err(), "wsnet: waiting for higher ranks")
			}
			src, err := c.greet(gctx, conn)
			if err != nil {
				conn.Close()
				return err
			}
			c.peers[src] = &peer{conn: conn}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		c.Close()
		return nil, err
	}

	for src, p := range c.peers {
		if p != nil {
			go c.readLoop(src, p)
		}
	}
	klog.V(1).InfoS("wsnet: mesh connected", "rank", rank, "size", size, "addr", l.Addr())
	return c, nil
}

func (c *Comm) greet(ctx context.Context, conn *websocket.Conn) (int, error) {
	if dl, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(dl)
		defer conn.SetReadDeadline(time.Time{})
	}
	var h hello
	if err := conn.ReadJSON(&h); err != nil {
		return 0, errors.Wrap(err, "wsnet: reading hello")
	}
	switch {
	case h.Size != c.size:
		return 0, errors.Errorf("wsnet: rank %d reports world size %d, want %d", h.Rank, h.Size, c.size)
	case h.Rank <= c.rank || h.Rank >= c.size:
		return 0, errors.Errorf("wsnet: unexpected hello from rank %d", h.Rank)
	case c.peers[h.Rank] != nil:
		return 0, errors.Errorf("wsnet: rank %d connected twice", h.Rank)
	}
	return h.Rank, nil
}

func dial(ctx context.Context, addr string) (*websocket.Conn, error) {
	u := url.URL{Scheme: "ws", Host: addr, Path: Path}
	for {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
		if err == nil {
			return conn, nil
		}
		select {
		case <-ctx.Done():
			return nil, errors.Wrapf(err, "wsnet: dial %s", addr)
		case <-time.After(retryInterval):
		}
	}
}

type peer struct {
	mu   sync.Mutex // one writer at a time
	conn *websocket.Conn
}

// Comm is one rank of a WebSocket mesh. It implements comm.Comm.
type Comm struct {
	rank, size int
	peers      []*peer
	box        *comm.Mailbox
	ln         *Listener
	closing    atomic.Bool
	once       sync.Once
}

var _ comm.Comm = (*Comm)(nil)

// Rank implements comm.Comm.
func (c *Comm) Rank() int { return c.rank }

// Size implements comm.Comm.
func (c *Comm) Size() int { return c.size }

// Send implements comm.Comm. Frames to other ranks are written before Send
// returns; the peer's reader queues them without waiting for its Recv.
func (c *Comm) Send(data []float64, dest, tag int) error {
	if dest < 0 || dest >= c.size {
		return &comm.OpError{Op: "send", Rank: c.rank, Peer: dest, Tag: tag, Err: comm.ErrRank}
	}
	if dest == c.rank {
		if err := c.box.Deliver(c.rank, tag, slices.Clone(data)); err != nil {
			return &comm.OpError{Op: "send", Rank: c.rank, Peer: dest, Tag: tag, Err: err}
		}
		return nil
	}
	if c.closing.Load() {
		return &comm.OpError{Op: "send", Rank: c.rank, Peer: dest, Tag: tag, Err: comm.ErrClosed}
	}
	p := c.peers[dest]
	p.mu.Lock()
	err := p.conn.WriteMessage(websocket.BinaryMessage, encodeFrame(tag, data))
	p.mu.Unlock()
	if err != nil {
		return &comm.OpError{Op: "send", Rank: c.rank, Peer: dest, Tag: tag, Err: errors.WithStack(err)}
	}
	return nil
}

// Recv implements comm.Comm.
func (c *Comm) Recv(buf []float64, src, tag int) error {
	if src < 0 || src >= c.size {
		return &comm.OpError{Op: "recv", Rank: c.rank, Peer: src, Tag: tag, Err: comm.ErrRank}
	}
	msg, err := c.box.Receive(src, tag)
	if err == nil {
		err = comm.CopyMessage(buf, msg)
	}
	if err != nil {
		return &comm.OpError{Op: "recv", Rank: c.rank, Peer: src, Tag: tag, Err: err}
	}
	return nil
}

// Close says goodbye to every peer, drops the connections and the listener.
func (c *Comm) Close() error {
	c.once.Do(func() {
		c.closing.Store(true)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		for _, p := range c.peers {
			if p == nil {
				continue
			}
			p.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGrace))
			p.conn.Close()
		}
		c.box.Close(comm.ErrClosed)
		c.ln.Close()
	})
	return nil
}

func (c *Comm) readLoop(src int, p *peer) {
	for {
		typ, msg, err := p.conn.ReadMessage()
		if err != nil {
			if c.closing.Load() || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				c.box.CloseSource(src, comm.ErrClosed)
				return
			}
			klog.ErrorS(err, "wsnet: connection lost", "rank", c.rank, "peer", src)
			c.box.CloseSource(src, errors.Wrapf(err, "wsnet: connection to rank %d", src))
			return
		}
		if typ != websocket.BinaryMessage {
			continue
		}
		tag, data, err := decodeFrame(msg)
		if err != nil {
			klog.ErrorS(err, "wsnet: bad frame", "rank", c.rank, "peer", src)
			c.box.CloseSource(src, err)
			return
		}
		if err := c.box.Deliver(src, tag, data); err != nil {
			return
		}
	}
}
