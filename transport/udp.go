package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	reuseport "github.com/kavu/go_reuseport"
	"go.uber.org/zap"
)

// UDP serves datagram exchanges strictly one at a time: a datagram is
// read, dispatched and answered before the next one is received.
type UDP struct {
	options Options
	conn    net.PacketConn
	log     *zap.Logger
}

func NewUDP(options Options) *UDP {
	options = options.withDefaults()

	return &UDP{
		options: options,
		log:     options.Log,
	}
}

// Listen binds the datagram socket.
func (u *UDP) Listen() (err error) {
	if u.options.Reuseport {
		u.conn, err = reuseport.ListenPacket("udp", u.options.addr())
	} else {
		u.conn, err = net.ListenPacket("udp", u.options.addr())
	}

	return err
}

func (u *UDP) Addr() net.Addr {
	return u.conn.LocalAddr()
}

// Serve runs the datagram loop until ctx is cancelled or MaxFailures
// consecutive exchanges have failed.
func (u *UDP) Serve(ctx context.Context) error {
	buffer := make([]byte, MaxDatagramSize)
	failed := failures{max: u.options.MaxFailures}

	u.log.Info("Serving datagrams", zap.Stringer("addr", u.Addr()))

	for {
		if ctx.Err() != nil {
			u.log.Info("Datagram loop stopped")
			return nil
		}

		if err := u.conn.SetReadDeadline(time.Now().Add(u.options.PollInterval)); err != nil {
			return fmt.Errorf("Failed to set read deadline: %w", err)
		}

		n, remote, err := u.conn.ReadFrom(buffer)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				u.log.Info("Datagram loop stopped")
				return nil
			}

			if isTimeout(err) {
				continue
			}

			u.log.Warn("Failed to receive datagram", zap.Error(err))
			if failed.add() {
				return fmt.Errorf("%w: datagram loop: %v", ErrTooManyFailures, err)
			}
			continue
		}

		payload := append([]byte(nil), buffer[:n]...)

		if u.options.Trace {
			u.log.Debug("Datagram received",
				zap.Stringer("remote", remote),
				zap.ByteString("payload", payload))
		}

		if err := u.exchange(ctx, payload, remote); err != nil {
			u.log.Warn("Datagram exchange failed",
				zap.Stringer("remote", remote),
				zap.Int("consecutiveFailures", failed.count+1),
				zap.Error(err))

			if failed.add() {
				return fmt.Errorf("%w: datagram loop: %v", ErrTooManyFailures, err)
			}
			continue
		}

		failed.reset()
	}
}

func (u *UDP) exchange(ctx context.Context, payload []byte, remote net.Addr) error {
	ex := NewExchange(NewDatagram(payload), remote, func(b []byte) error {
		if _, err := u.conn.WriteTo(b, remote); err != nil {
			return fmt.Errorf("%w: %v", ErrMessageSend, err)
		}
		return nil
	})

	return u.options.Registry.Dispatch(ctx, ex)
}

func (u *UDP) Close() error {
	if u.conn == nil {
		return nil
	}

	return u.conn.Close()
}
