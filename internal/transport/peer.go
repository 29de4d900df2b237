package transport

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/mcoot/rpschat/internal/model"
)

const (
	// Time allowed to write a message to the peer
	WriteWait = 10 * time.Second

	// DefaultSendBuffer is the outbound queue size for one connection
	DefaultSendBuffer = 256
)

// Peer is the outbound side of one connection: a bounded queue of lines
// drained by the transport's write loop.
type Peer struct {
	id     model.ConnID
	send   chan string
	done   chan struct{}
	once   sync.Once
	closer io.Closer
}

// NewPeer creates a Peer whose Close also closes the underlying connection
func NewPeer(id model.ConnID, bufferSize int, closer io.Closer) *Peer {
	if bufferSize <= 0 {
		bufferSize = DefaultSendBuffer
	}
	return &Peer{
		id:     id,
		send:   make(chan string, bufferSize),
		done:   make(chan struct{}),
		closer: closer,
	}
}

func (p *Peer) ID() model.ConnID {
	return p.id
}

// Deliver enqueues a line without blocking
func (p *Peer) Deliver(line string) error {
	select {
	case <-p.done:
		return fmt.Errorf("%w: %s closed", model.ErrTransportFailure, p.id)
	default:
	}

	select {
	case p.send <- line:
		return nil
	default:
		return fmt.Errorf("%w: %s send buffer full", model.ErrTransportFailure, p.id)
	}
}

// Close stops the peer and closes the connection. It is safe to call more than once.
func (p *Peer) Close() error {
	var err error
	p.once.Do(func() {
		close(p.done)
		if p.closer != nil {
			err = p.closer.Close()
		}
	})
	return err
}

// Outbound yields queued lines for the write loop
func (p *Peer) Outbound() <-chan string {
	return p.send
}

// Done is closed once the peer is closed
func (p *Peer) Done() <-chan struct{} {
	return p.done
}
