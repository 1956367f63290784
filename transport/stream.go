package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/luma/auctioneer/protocol"
)

const streamBufferSize = 4096

// Stream is a protocol.Source over a live connection. Bytes are pulled
// through a read-ahead buffer and every socket read or write is bounded
// by its own deadline.
//
// Cancelling the context the Stream was made with unblocks pending I/O,
// which then fails with ErrCancelled.
type Stream struct {
	ctx  context.Context
	conn net.Conn

	r *bufio.Reader

	writeTimeout time.Duration
	stop         func() bool
}

func NewStream(ctx context.Context, conn net.Conn, readTimeout, writeTimeout time.Duration) *Stream {
	s := &Stream{
		ctx:          ctx,
		conn:         conn,
		writeTimeout: writeTimeout,
	}

	s.r = bufio.NewReaderSize(&deadlineReader{stream: s, timeout: readTimeout}, streamBufferSize)
	s.stop = context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})

	return s
}

// Release detaches the Stream from its context. The connection itself
// belongs to the caller.
func (s *Stream) Release() {
	s.stop()
}

func (s *Stream) ReadByte() (byte, error) {
	b, err := s.r.ReadByte()
	return b, s.mapError(err, ErrMessageReceive)
}

func (s *Stream) UnreadByte() error {
	return s.r.UnreadByte()
}

func (s *Stream) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	return n, s.mapError(err, ErrMessageReceive)
}

// Send writes b in full before the write deadline.
func (s *Stream) Send(b []byte) error {
	if err := s.ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}

	if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		return fmt.Errorf("%w: %v", ErrMessageSend, err)
	}

	_, err := s.conn.Write(b)
	return s.mapError(err, ErrMessageSend)
}

// mapError turns I/O errors into the transport taxonomy: cancellation,
// deadline expiry, and everything else as a send or receive failure.
func (s *Stream) mapError(err error, failure error) error {
	if err == nil {
		return nil
	}

	if ctxErr := s.ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, ctxErr)
	}

	if isTimeout(err) {
		return fmt.Errorf("%w: %v", ErrConnectionTimeout, err)
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: connection closed by peer", failure)
	}

	return fmt.Errorf("%w: %v", failure, err)
}

// deadlineReader arms the read deadline before every socket read made by
// the read-ahead buffer.
type deadlineReader struct {
	stream  *Stream
	timeout time.Duration
}

func (d *deadlineReader) Read(p []byte) (int, error) {
	if err := d.stream.ctx.Err(); err != nil {
		return 0, err
	}

	if err := d.stream.conn.SetReadDeadline(time.Now().Add(d.timeout)); err != nil {
		return 0, err
	}

	n, err := d.stream.conn.Read(p)
	if n == 0 && err == nil {
		return 0, io.ErrNoProgress
	}

	return n, err
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

var _ protocol.Source = (*Stream)(nil)
