package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/luma/auctioneer/protocol"
	"github.com/luma/auctioneer/transport"
)

const (
	DefaultTimeout       = 2 * time.Second
	DefaultAttempts      = 5
	DefaultStreamTimeout = 10 * time.Second
)

type Options struct {
	// Host and Port of the auction server, shared by both transports
	Host string
	Port int

	// Timeout bounds a single datagram attempt
	Timeout time.Duration

	// Attempts is how many times a datagram request is sent before giving up
	Attempts int

	// StreamTimeout bounds dialing and every read and write of a stream exchange
	StreamTimeout time.Duration

	Log *zap.Logger
}

// Client runs request/response exchanges against one server. Every call
// is a complete exchange; nothing is kept open between calls.
type Client struct {
	options Options
	log     *zap.Logger
}

func New(options Options) *Client {
	if options.Timeout <= 0 {
		options.Timeout = DefaultTimeout
	}

	if options.Attempts < 1 {
		options.Attempts = DefaultAttempts
	}

	if options.StreamTimeout <= 0 {
		options.StreamTimeout = DefaultStreamTimeout
	}

	if options.Log == nil {
		options.Log = zap.NewNop()
	}

	return &Client{
		options: options,
		log:     options.Log.Named("client"),
	}
}

func (c *Client) addr() string {
	return net.JoinHostPort(c.options.Host, strconv.Itoa(c.options.Port))
}

// ExchangeError is the terminal failure of one exchange.
type ExchangeError struct {
	Code protocol.Code
	Err  error
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("%s exchange failed: %v", e.Code, e.Err)
}

func (e *ExchangeError) Unwrap() error {
	return e.Err
}

// Datagram sends req over UDP and decodes the answer into resp. Only an
// attempt that gets no answer at all is retried.
func (c *Client) Datagram(ctx context.Context, req, resp protocol.Message) error {
	if err := c.datagram(ctx, req, resp); err != nil {
		return &ExchangeError{Code: req.Code(), Err: err}
	}
	return nil
}

func (c *Client) datagram(ctx context.Context, req, resp protocol.Message) error {
	payload, err := protocol.Marshal(req)
	if err != nil {
		return err
	}

	server, err := net.ResolveUDPAddr("udp", c.addr())
	if err != nil {
		return fmt.Errorf("%w: %v", transport.ErrMessageSend, err)
	}

	// Unconnected, so an ICMP port unreachable never surfaces as a read
	// error and a dead server reads as silence.
	conn, err := net.ListenPacket("udp", ":0")
	if err != nil {
		return fmt.Errorf("%w: %v", transport.ErrMessageSend, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	buffer := make([]byte, transport.MaxDatagramSize)

	for attempt := 1; ; attempt++ {
		if _, err := conn.WriteTo(payload, server); err != nil {
			return c.ioError(ctx, err, transport.ErrMessageSend)
		}

		if err := conn.SetReadDeadline(time.Now().Add(c.options.Timeout)); err != nil {
			return fmt.Errorf("%w: %v", transport.ErrMessageReceive, err)
		}

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", transport.ErrCancelled, err)
		}

		n, err := c.readFrom(conn, server, buffer)
		if err == nil {
			return protocol.Unmarshal(transport.NewDatagram(buffer[:n]), resp)
		}

		if ctx.Err() != nil || !isTimeout(err) {
			return c.ioError(ctx, err, transport.ErrMessageReceive)
		}

		c.log.Debug("No answer",
			zap.String("code", string(req.Code())),
			zap.Int("attempt", attempt),
			zap.Int("attempts", c.options.Attempts))

		if attempt >= c.options.Attempts {
			return fmt.Errorf("%w: no answer after %d attempts", transport.ErrConnectionTimeout, attempt)
		}
	}
}

// readFrom reads until a datagram from server arrives or the read deadline
// passes. Datagrams from any other source are dropped.
func (c *Client) readFrom(conn net.PacketConn, server *net.UDPAddr, buffer []byte) (int, error) {
	for {
		n, from, err := conn.ReadFrom(buffer)
		if err != nil {
			return 0, err
		}

		if sameAddr(from, server) {
			return n, nil
		}

		c.log.Debug("Dropped datagram from a stranger", zap.Stringer("from", from))
	}
}

func sameAddr(from net.Addr, server *net.UDPAddr) bool {
	addr, ok := from.(*net.UDPAddr)
	return ok && addr.Port == server.Port && addr.IP.Equal(server.IP)
}

// Stream dials the server, sends req, decodes the answer into resp and
// closes the connection, whatever the outcome.
func (c *Client) Stream(ctx context.Context, req, resp protocol.Message) error {
	if err := c.stream(ctx, req, resp); err != nil {
		return &ExchangeError{Code: req.Code(), Err: err}
	}
	return nil
}

func (c *Client) stream(ctx context.Context, req, resp protocol.Message) error {
	payload, err := protocol.Marshal(req)
	if err != nil {
		return err
	}

	dialer := net.Dialer{Timeout: c.options.StreamTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.addr())
	if err != nil {
		return c.ioError(ctx, err, transport.ErrMessageSend)
	}

	defer func() {
		if err := conn.Close(); err != nil {
			c.log.Debug("Connection did not close cleanly", zap.Error(err))
		}
	}()

	stream := transport.NewStream(ctx, conn, c.options.StreamTimeout, c.options.StreamTimeout)
	defer stream.Release()

	if err := stream.Send(payload); err != nil {
		return err
	}

	return protocol.Unmarshal(stream, resp)
}

func (c *Client) ioError(ctx context.Context, err error, failure error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", transport.ErrCancelled, ctxErr)
	}

	if isTimeout(err) {
		return fmt.Errorf("%w: %v", transport.ErrConnectionTimeout, err)
	}

	return fmt.Errorf("%w: %v", failure, err)
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
