package transport

import (
	"errors"
	"net"

	"github.com/luma/auctioneer/protocol"
)

var (
	ErrMessageSend       = errors.New("Failed to send message")
	ErrMessageReceive    = errors.New("Failed to receive message")
	ErrConnectionTimeout = errors.New("Connection timed out")
	ErrCancelled         = errors.New("Exchange was cancelled")
	ErrAccept            = errors.New("Failed to accept connection")
	ErrTooManyFailures   = errors.New("Too many consecutive failures")
	ErrHandlerPanic      = errors.New("Handler panicked")
)

// Exchange is one request read from a Source and the single reply sent
// back over the same transport.
type Exchange struct {
	Source protocol.Source
	Remote net.Addr

	// Code is set by Registry.Dispatch once the type code has been read.
	Code protocol.Code

	send    func([]byte) error
	replied bool
}

func NewExchange(src protocol.Source, remote net.Addr, send func([]byte) error) *Exchange {
	return &Exchange{
		Source: src,
		Remote: remote,
		send:   send,
	}
}

// Decode reads the request body that follows the type code into m.
func (e *Exchange) Decode(m protocol.Message) error {
	return protocol.UnmarshalBody(e.Source, m)
}

// Reply encodes m and sends it to the peer.
func (e *Exchange) Reply(m protocol.Message) error {
	b, err := protocol.Marshal(m)
	if err != nil {
		return err
	}

	e.replied = true
	return e.send(b)
}

// Replied reports whether Reply has been attempted.
func (e *Exchange) Replied() bool {
	return e.replied
}
