package core

import "errors"

// ErrBackpressure is returned by Sender.TrySend when the target's
// outbound buffer is full. The frame is dropped, never queued.
var ErrBackpressure = errors.New("backpressure")

// Frame is a raw encoded payload.
type Frame []byte

// Sender abstracts one connection's outbound half of the transport.
// Owned by the adapter; the adapter must Close() it.
type Sender interface {
	TrySend(Frame) error
	Close()
}
