package netsync

import (
	"errors"
	"sync"
	"testing"
)

func TestPipeCarriesBothDirections(t *testing.T) {
	a, b := Pipe()
	defer a.Close()

	if err := a.Send([]byte("ping")); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	msg, err := b.Receive()
	if err != nil {
		t.Fatalf("Receive() error: %v", err)
	}
	if string(msg) != "ping" {
		t.Errorf("Receive() = %q, want %q", msg, "ping")
	}

	if err := b.Send([]byte("pong")); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	msg, err = a.Receive()
	if err != nil {
		t.Fatalf("Receive() error: %v", err)
	}
	if string(msg) != "pong" {
		t.Errorf("Receive() = %q, want %q", msg, "pong")
	}
}

func TestPipeCloseTerminatesBothEnds(t *testing.T) {
	a, b := Pipe()

	if err := a.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}

	if err := a.Send([]byte("x")); !errors.Is(err, ErrChannelClosed) {
		t.Errorf("Send() after close = %v, want ErrChannelClosed", err)
	}
	if _, err := b.Receive(); !errors.Is(err, ErrChannelClosed) {
		t.Errorf("Receive() after close = %v, want ErrChannelClosed", err)
	}
}

func TestPipeDrainsInFlightMessagesAfterClose(t *testing.T) {
	a, b := Pipe()

	if err := a.Send([]byte("last words")); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	a.Close()

	msg, err := b.Receive()
	if err != nil {
		t.Fatalf("Receive() error: %v", err)
	}
	if string(msg) != "last words" {
		t.Errorf("Receive() = %q, want %q", msg, "last words")
	}
	if _, err := b.Receive(); !errors.Is(err, ErrChannelClosed) {
		t.Errorf("Receive() = %v, want ErrChannelClosed once drained", err)
	}
}

func TestPipeSendCopiesPayload(t *testing.T) {
	a, b := Pipe()
	defer a.Close()

	buf := []byte("abc")
	a.Send(buf)
	buf[0] = 'z'

	msg, err := b.Receive()
	if err != nil {
		t.Fatalf("Receive() error: %v", err)
	}
	if string(msg) != "abc" {
		t.Errorf("Receive() = %q, want the payload copied on send", msg)
	}
}

func TestPipeConcurrentCloseBothEnds(t *testing.T) {
	for i := 0; i < 100; i++ {
		a, b := Pipe()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			a.Close()
		}()
		go func() {
			defer wg.Done()
			b.Close()
		}()
		wg.Wait()

		if err := a.Send([]byte("x")); !errors.Is(err, ErrChannelClosed) {
			t.Fatalf("Send() after close = %v, want ErrChannelClosed", err)
		}
	}
}
