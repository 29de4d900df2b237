package transport

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/rpschat/internal/model"
)

type countingCloser struct {
	calls atomic.Int32
}

func (c *countingCloser) Close() error {
	c.calls.Add(1)
	return nil
}

func TestDeliverQueuesInOrder(t *testing.T) {
	p := NewPeer("c1", 4, nil)

	require.NoError(t, p.Deliver("one\n"))
	require.NoError(t, p.Deliver("two\n"))

	assert.Equal(t, "one\n", <-p.Outbound())
	assert.Equal(t, "two\n", <-p.Outbound())
}

func TestDeliverFailsWhenFull(t *testing.T) {
	p := NewPeer("c1", 1, nil)

	require.NoError(t, p.Deliver("one\n"))
	err := p.Deliver("two\n")

	assert.ErrorIs(t, err, model.ErrTransportFailure)
}

func TestDeliverFailsAfterClose(t *testing.T) {
	closer := &countingCloser{}
	p := NewPeer("c1", 4, closer)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	assert.ErrorIs(t, p.Deliver("late\n"), model.ErrTransportFailure)
	assert.Equal(t, int32(1), closer.calls.Load())

	select {
	case <-p.Done():
	default:
		t.Fatal("Done not closed")
	}
}

func TestDefaultBuffer(t *testing.T) {
	p := NewPeer("c1", 0, nil)
	assert.Equal(t, DefaultSendBuffer, cap(p.send))
	assert.Equal(t, model.ConnID("c1"), p.ID())
}
