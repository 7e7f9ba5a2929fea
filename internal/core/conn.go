package core

import "errors"

// Frame is a marshaled event ready for the wire.
type Frame []byte

// SessionID identifies one live transport connection. It comes from the
// client-token cookie, so the same browser keeps its id across reconnects.
type SessionID string

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = errors.New("connection closed")
)

// SignalConnection abstracts the messaging transport for one session.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// PublishResult reports delivery stats/backpressure to the dispatcher.
type PublishResult struct {
	SentTo  int
	Dropped []SessionID
}
