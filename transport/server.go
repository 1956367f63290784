package transport

import (
	"context"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Server runs the datagram loop and the stream accept loop side by side.
// They share nothing but the handlers' collaborators.
type Server struct {
	UDP *UDP
	TCP *TCP
}

func NewServer(datagram, stream Options) *Server {
	return &Server{
		UDP: NewUDP(datagram),
		TCP: NewTCP(stream),
	}
}

// Listen binds both sockets, or neither.
func (s *Server) Listen() error {
	if err := s.UDP.Listen(); err != nil {
		return err
	}

	if err := s.TCP.Listen(); err != nil {
		return multierr.Append(err, s.UDP.Close())
	}

	return nil
}

// Serve blocks until ctx is cancelled or either loop gives up. A loop
// giving up stops the other one too, and its error is returned.
func (s *Server) Serve(ctx context.Context) error {
	group, child := errgroup.WithContext(ctx)

	group.Go(func() error {
		return s.UDP.Serve(child)
	})

	group.Go(func() error {
		return s.TCP.Serve(child)
	})

	return group.Wait()
}

func (s *Server) Close() error {
	return multierr.Combine(s.UDP.Close(), s.TCP.Close())
}
