package transport

import (
	"net"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultMaxFailures  = 5
	DefaultPollInterval = time.Second
	DefaultTimeout      = 10 * time.Second

	// MaxDatagramSize is the largest UDP payload we will read.
	MaxDatagramSize = 65535
)

type Options struct {
	// Host to listen on
	Host string

	// Port to listen on
	Port int

	// Reuseport controls setting SO_REUSEPORT
	Reuseport bool

	// Trace logs every datagram at debug level. This is only useful in local debugging
	Trace bool

	// ReadTimeout and WriteTimeout bound every socket operation of a stream worker
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// PollInterval bounds a single blocking receive or accept so that
	// cancellation is noticed. Expiry is not a failure.
	PollInterval time.Duration

	// MaxFailures is the number of consecutive failures after which a loop gives up
	MaxFailures int

	Registry *Registry

	Log *zap.Logger
}

func (o Options) addr() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

func (o Options) withDefaults() Options {
	if o.MaxFailures < 1 {
		o.MaxFailures = DefaultMaxFailures
	}

	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}

	if o.ReadTimeout <= 0 {
		o.ReadTimeout = DefaultTimeout
	}

	if o.WriteTimeout <= 0 {
		o.WriteTimeout = DefaultTimeout
	}

	if o.Log == nil {
		o.Log = zap.NewNop()
	}

	return o
}

// failures counts consecutive failures of a loop.
type failures struct {
	max   int
	count int
}

// add records a failure and reports whether the bound has been reached.
func (f *failures) add() bool {
	f.count++
	return f.count >= f.max
}

func (f *failures) reset() {
	f.count = 0
}
