package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	reuseport "github.com/kavu/go_reuseport"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type deadliner interface {
	SetDeadline(t time.Time) error
}

// TCP accepts stream connections and runs each one in its own worker
// goroutine. A worker serves exactly one exchange and closes its
// connection.
type TCP struct {
	options  Options
	listener net.Listener

	stopWaiter sync.WaitGroup

	mu     sync.Mutex
	active map[net.Conn]struct{}

	log *zap.Logger
}

func NewTCP(options Options) *TCP {
	options = options.withDefaults()

	return &TCP{
		options: options,
		active:  make(map[net.Conn]struct{}),
		log:     options.Log,
	}
}

// Listen binds the stream socket.
func (t *TCP) Listen() (err error) {
	if t.options.Reuseport {
		t.listener, err = reuseport.Listen("tcp", t.options.addr())
	} else {
		t.listener, err = net.Listen("tcp", t.options.addr())
	}

	return err
}

func (t *TCP) Addr() net.Addr {
	return t.listener.Addr()
}

// Serve runs the accept loop until ctx is cancelled or MaxFailures
// consecutive accepts have failed. Failures inside workers never count.
func (t *TCP) Serve(ctx context.Context) error {
	failed := failures{max: t.options.MaxFailures}

	// Workers finish their exchange even when the server is shutting down,
	// their own deadlines bound how long that takes.
	workerCtx := context.WithoutCancel(ctx)

	t.log.Info("Accepting connections", zap.Stringer("addr", t.Addr()))

	for {
		if ctx.Err() != nil {
			t.log.Info("Stopped accepting new connections")
			return nil
		}

		if d, ok := t.listener.(deadliner); ok {
			if err := d.SetDeadline(time.Now().Add(t.options.PollInterval)); err != nil {
				return fmt.Errorf("Failed to set accept deadline: %w", err)
			}
		}

		conn, err := t.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				t.log.Info("Stopped accepting new connections")
				return nil
			}

			if isTimeout(err) {
				continue
			}

			t.log.Warn("Failed to accept connection", zap.Error(err))
			if failed.add() {
				return fmt.Errorf("%w: %w: %v", ErrTooManyFailures, ErrAccept, err)
			}
			continue
		}

		failed.reset()

		t.addConn(conn)
		t.stopWaiter.Add(1)

		go func() {
			defer t.stopWaiter.Done()
			t.serveConn(workerCtx, conn)
		}()
	}
}

func (t *TCP) serveConn(ctx context.Context, conn net.Conn) {
	log := t.log.Named("conn").With(zap.Stringer("remote", conn.RemoteAddr()))

	defer func() {
		t.removeConn(conn)

		if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			log.Warn("Connection did not close cleanly", zap.Error(err))
		}
	}()

	stream := NewStream(ctx, conn, t.options.ReadTimeout, t.options.WriteTimeout)
	defer stream.Release()

	ex := NewExchange(stream, conn.RemoteAddr(), stream.Send)

	if err := t.options.Registry.Dispatch(ctx, ex); err != nil {
		log.Warn("Stream exchange failed",
			zap.String("code", string(ex.Code)),
			zap.Error(err))
		return
	}

	log.Debug("Stream exchange done", zap.String("code", string(ex.Code)))
}

// Close stops accepting connections and waits for running workers.
func (t *TCP) Close() error {
	var err error

	if t.listener != nil {
		if cerr := t.listener.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = multierr.Append(err, cerr)
		}
	}

	t.log.Info("Waiting for workers")
	t.stopWaiter.Wait()
	t.log.Info("Workers stopped")

	return err
}

// ActiveConns returns the number of connections with a running worker.
func (t *TCP) ActiveConns() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.active)
}

func (t *TCP) addConn(conn net.Conn) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.active[conn] = struct{}{}
}

func (t *TCP) removeConn(conn net.Conn) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.active, conn)
}
