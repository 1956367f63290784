package env

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	// Client side datagram resilience
	UDPTimeout  time.Duration `env:"AUCTION_UDP_TIMEOUT,default=2s"`
	UDPAttempts int           `env:"AUCTION_UDP_ATTEMPTS,default=5"`

	// TCPTimeout bounds dialing and every stream read and write, on both ends
	TCPTimeout time.Duration `env:"AUCTION_TCP_TIMEOUT,default=10s"`

	MaxFailures int `env:"AUCTION_MAX_FAILURES,default=5"`

	// StateFile is restored on start and written back on shutdown when set
	StateFile string `env:"AUCTION_STATE_FILE"`

	DebugHTTP bool `env:"AUCTION_DEBUG_HTTP"`
}

func LoadConfig(ctx context.Context) (*Config, error) {
	return loadConfig(ctx, envconfig.OsLookuper())
}

func loadConfig(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	config := Config{}

	if err := godotenv.Load(".env.local"); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("Failed to load .env.local: %w", err)
		}
	}

	if err := envconfig.ProcessWith(ctx, &config, lookuper); err != nil {
		return nil, err
	}

	if config.UDPAttempts < 1 {
		return nil, fmt.Errorf("AUCTION_UDP_ATTEMPTS must be at least 1, got %d", config.UDPAttempts)
	}

	if config.MaxFailures < 1 {
		return nil, fmt.Errorf("AUCTION_MAX_FAILURES must be at least 1, got %d", config.MaxFailures)
	}

	return &config, nil
}
