package comm

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// runWorld drives every rank of a fresh in-process world with fn.
func runWorld(t testing.TB, size int, fn func(c Comm) error) {
	t.Helper()
	world, err := NewWorld(size)
	require.NoError(t, err)
	var g errgroup.Group
	for _, c := range world {
		g.Go(func() error { return fn(c) })
	}
	require.NoError(t, g.Wait())
}

func TestNewWorldRejectsEmpty(t *testing.T) {
	_, err := NewWorld(0)
	assert.Error(t, err)
}

func TestSendRecvFIFO(t *testing.T) {
	runWorld(t, 2, func(c Comm) error {
		if c.Rank() == 0 {
			for i := 0; i < 10; i++ {
				if err := c.Send([]float64{float64(i)}, 1, 7); err != nil {
					return err
				}
			}
			return c.Send([]float64{-1, -1}, 1, 8)
		}
		// Drain the other tag first: matching is per (source, tag).
		other := make([]float64, 2)
		if err := c.Recv(other, 0, 8); err != nil {
			return err
		}
		assert.Equal(t, []float64{-1, -1}, other)
		buf := make([]float64, 1)
		for i := 0; i < 10; i++ {
			if err := c.Recv(buf, 0, 7); err != nil {
				return err
			}
			assert.Equal(t, float64(i), buf[0])
		}
		return nil
	})
}

func TestSendCopiesPayload(t *testing.T) {
	world, err := NewWorld(1)
	require.NoError(t, err)
	c := world[0]
	data := []float64{1, 2, 3}
	require.NoError(t, c.Send(data, 0, 0))
	data[0] = 99
	got := make([]float64, 3)
	require.NoError(t, c.Recv(got, 0, 0))
	assert.Equal(t, []float64{1, 2, 3}, got)
}

func TestRecvSizeMismatch(t *testing.T) {
	world, err := NewWorld(1)
	require.NoError(t, err)
	require.NoError(t, world[0].Send([]float64{1, 2}, 0, 0))
	err = world[0].Recv(make([]float64, 3), 0, 0)
	assert.ErrorIs(t, err, ErrSize)
}

func TestBadRank(t *testing.T) {
	world, err := NewWorld(2)
	require.NoError(t, err)
	assert.ErrorIs(t, world[0].Send(nil, 2, 0), ErrRank)
	assert.ErrorIs(t, world[0].Recv(nil, -1, 0), ErrRank)
}

func TestCloseUnblocksRecv(t *testing.T) {
	world, err := NewWorld(2)
	require.NoError(t, err)
	done := make(chan error, 1)
	go func() { done <- world[1].Recv(make([]float64, 1), 0, 0) }()
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, world[1].Close())
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, ErrClosed))
	case <-time.After(time.Second):
		t.Fatal("Recv still blocked after Close")
	}
}

func TestSendrecvRing(t *testing.T) {
	const size = 5
	runWorld(t, size, func(c Comm) error {
		buf := []float64{float64(c.Rank())}
		left := (c.Rank() + size - 1) % size
		right := (c.Rank() + 1) % size
		for step := 1; step <= size; step++ {
			if err := SendrecvReplace(c, buf, left, right, 3); err != nil {
				return err
			}
			assert.Equal(t, float64((c.Rank()+step)%size), buf[0])
		}
		return nil
	})
}

func TestCollectives(t *testing.T) {
	const size = 4
	runWorld(t, size, func(c Comm) error {
		vals := []int{0, 0}
		if c.Rank() == Root {
			vals = []int{42, -3}
		}
		if err := BcastInts(c, vals, Root); err != nil {
			return err
		}
		assert.Equal(t, []int{42, -3}, vals)

		var parts [][]float64
		if c.Rank() == Root {
			for r := 0; r < size; r++ {
				parts = append(parts, []float64{float64(r), float64(r * r)})
			}
		}
		mine := make([]float64, 2)
		if err := Scatter(c, parts, mine, Root); err != nil {
			return err
		}
		r := float64(c.Rank())
		assert.Equal(t, []float64{r, r * r}, mine)

		if err := Barrier(c); err != nil {
			return err
		}

		mine[0] *= 10
		var gathered [][]float64
		if c.Rank() == Root {
			gathered = make([][]float64, size)
			for i := range gathered {
				gathered[i] = make([]float64, 2)
			}
		}
		if err := Gather(c, mine, gathered, Root); err != nil {
			return err
		}
		if c.Rank() == Root {
			for i, g := range gathered {
				assert.Equal(t, []float64{float64(10 * i), float64(i * i)}, g)
			}
		}
		return nil
	})
}

func TestGroup(t *testing.T) {
	const size = 5
	members := []int{0, 1, 2, 3}
	runWorld(t, size, func(c Comm) error {
		g, err := NewGroup(c, members)
		if c.Rank() == 4 {
			assert.ErrorIs(t, err, ErrNotMember)
			return nil
		}
		if err != nil {
			return err
		}
		assert.Equal(t, 4, g.Size())
		assert.Equal(t, c.Rank(), g.Rank())
		buf := []float64{float64(g.Rank())}
		if err := SendrecvReplace(g, buf, (g.Rank()+1)%4, (g.Rank()+3)%4, 0); err != nil {
			return err
		}
		assert.Equal(t, float64((g.Rank()+3)%4), buf[0])
		return Barrier(g)
	})
}

func TestGroupValidation(t *testing.T) {
	world, err := NewWorld(3)
	require.NoError(t, err)
	_, err = NewGroup(world[0], []int{0, 0})
	assert.Error(t, err)
	_, err = NewGroup(world[0], []int{0, 3})
	assert.ErrorIs(t, err, ErrRank)
}

func TestMailboxCloseSource(t *testing.T) {
	m := NewMailbox()
	require.NoError(t, m.Deliver(1, 0, []float64{5}))
	m.CloseSource(1, ErrClosed)
	msg, err := m.Receive(1, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{5}, msg)
	_, err = m.Receive(1, 0)
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, 0, m.Pending())

	m.Close(ErrClosed)
	assert.ErrorIs(t, m.Deliver(2, 0, nil), ErrClosed)
}
