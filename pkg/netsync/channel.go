package netsync

import (
	"errors"
	"sync"
)

// ErrChannelClosed is returned by channel operations after Close.
var ErrChannelClosed = errors.New("netsync: channel closed")

// Channel is the duplex transport an engine speaks over. Implementations
// carry opaque payloads; the engine owns the envelope format.
type Channel interface {
	// Send writes one message to the peer.
	Send(data []byte) error

	// Receive blocks until a message arrives or the channel closes.
	// After close it returns ErrChannelClosed (or the transport's own
	// terminal error).
	Receive() ([]byte, error)

	// Close tears the channel down. Idempotent.
	Close() error
}

// pipeChannel is one end of an in-memory duplex pair. The done channel
// and its closing Once are shared between both ends.
type pipeChannel struct {
	out chan<- []byte
	in  <-chan []byte

	closeOnce *sync.Once
	done      chan struct{}
}

// Pipe returns two cross-wired in-memory channels: what one end sends, the
// other receives. Used in tests and for same-process mirroring. Sends are
// buffered; closing either end terminates both directions.
func Pipe() (Channel, Channel) {
	ab := make(chan []byte, 64)
	ba := make(chan []byte, 64)
	done := make(chan struct{})
	once := new(sync.Once)

	a := &pipeChannel{out: ab, in: ba, closeOnce: once, done: done}
	b := &pipeChannel{out: ba, in: ab, closeOnce: once, done: done}
	return a, b
}

func (p *pipeChannel) Send(data []byte) error {
	select {
	case <-p.done:
		return ErrChannelClosed
	default:
	}

	msg := make([]byte, len(data))
	copy(msg, data)

	select {
	case p.out <- msg:
		return nil
	case <-p.done:
		return ErrChannelClosed
	}
}

func (p *pipeChannel) Receive() ([]byte, error) {
	select {
	case msg := <-p.in:
		return msg, nil
	case <-p.done:
		// Drain anything already in flight before reporting closure.
		select {
		case msg := <-p.in:
			return msg, nil
		default:
			return nil, ErrChannelClosed
		}
	}
}

func (p *pipeChannel) Close() error {
	p.closeOnce.Do(func() {
		close(p.done)
	})
	return nil
}
