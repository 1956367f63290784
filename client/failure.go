package client

import (
	"errors"

	"github.com/luma/auctioneer/protocol"
	"github.com/luma/auctioneer/transport"
)

// Failure is the category of a failed exchange, as reported to the user.
type Failure int

const (
	Unknown Failure = iota
	NoAnswer
	InvalidFormat
	UnexpectedType
	PeerRejected
	SendFailed
	ReceiveFailed
)

func (f Failure) String() string {
	switch f {
	case NoAnswer:
		return "no answer"
	case InvalidFormat:
		return "invalid format"
	case UnexpectedType:
		return "unexpected type"
	case PeerRejected:
		return "rejected by peer"
	case SendFailed:
		return "send failed"
	case ReceiveFailed:
		return "receive failed"
	}

	return "unknown"
}

// Message is the one line shown to the user for f.
func (f Failure) Message() string {
	switch f {
	case NoAnswer:
		return "The server did not answer in time"
	case InvalidFormat:
		return "The message was not in a valid format"
	case UnexpectedType:
		return "The server answered with an unexpected message"
	case PeerRejected:
		return "The server could not understand the request"
	case SendFailed:
		return "The request could not be sent"
	case ReceiveFailed:
		return "The answer could not be received"
	}

	return "Something went wrong"
}

// Classify maps an error returned by the Client to its Failure.
func Classify(err error) Failure {
	switch {
	case err == nil:
		return Unknown
	case errors.Is(err, protocol.ErrProtocolError):
		return PeerRejected
	case errors.Is(err, protocol.ErrUnexpectedType):
		return UnexpectedType
	case errors.Is(err, protocol.ErrMalformedMessage), errors.Is(err, protocol.ErrBuild):
		return InvalidFormat
	case errors.Is(err, transport.ErrConnectionTimeout):
		return NoAnswer
	case errors.Is(err, transport.ErrMessageSend):
		return SendFailed
	case errors.Is(err, transport.ErrMessageReceive):
		return ReceiveFailed
	}

	return Unknown
}
