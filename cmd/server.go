package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/luma/auctioneer/dispatch"
	"github.com/luma/auctioneer/internal/env"
	"github.com/luma/auctioneer/internal/status"
	"github.com/luma/auctioneer/storage"
	"github.com/luma/auctioneer/transport"
)

var serverFlags struct {
	// The host to listen on
	host string

	// The port to listen for datagrams and stream connections on
	port int

	// The port to serve the status endpoints on, disabled when empty
	httpPort string

	reuseport bool
	trace     bool
}

func init() {
	flags := ServerCmd.PersistentFlags()

	flags.IntVarP(&serverFlags.port, "port", "p", DefaultPort, "The port to listen for clients on, over both UDP and TCP")
	flags.StringVarP(&serverFlags.host, "host", "a", "0.0.0.0", "The host to listen on")
	flags.StringVar(&serverFlags.httpPort, "http-port", "", "The port to serve HTTP status requests on")
	flags.BoolVar(&serverFlags.reuseport, "reuseport", true, "Set SO_REUSEPORT on the listening sockets")
	flags.BoolVar(&serverFlags.trace, "trace", false, "Log every datagram, only useful for local debugging")
}

var ServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start up the auction server",
	Long: `Start up the auction server

Usage
	auctioneer server -p 58011 -v

`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx, signalStop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer signalStop()

		log, err := env.MakeLogger(verbose)
		if err != nil {
			return err
		}
		defer func() {
			_ = log.Sync()
		}()

		if serverFlags.port < 1 || serverFlags.port > 65535 {
			return fmt.Errorf("Invalid port %d", serverFlags.port)
		}

		fileLimit, err := setFileLimit()
		if err != nil {
			return err
		}

		log.Info("Set file limit", zap.Uint64("fileLimit", fileLimit))

		conf, err := env.LoadConfig(ctx)
		if err != nil {
			return err
		}

		store := storage.NewInmemoryStore()
		defer store.Close()

		if err := restoreState(store, conf.StateFile); err != nil {
			return err
		}

		handlers := dispatch.New(store, log)

		datagram := serverOptions(conf, log.Named("udp"))
		datagram.Registry = handlers.DatagramRegistry()

		stream := serverOptions(conf, log.Named("tcp"))
		stream.Registry = handlers.StreamRegistry()

		server := transport.NewServer(datagram, stream)
		if err := server.Listen(); err != nil {
			return err
		}

		var statusServer *status.Server
		if serverFlags.httpPort != "" {
			statusServer = status.NewServer(
				net.JoinHostPort(serverFlags.host, serverFlags.httpPort),
				status.NewRouter(store, conf.DebugHTTP, log.Named("http")),
				log.Named("http"))
			statusServer.Start()
		}

		log.Info("Listening",
			zap.Any("config", conf),
			zap.String("host", serverFlags.host),
			zap.Int("port", serverFlags.port),
			zap.String("httpPort", serverFlags.httpPort))

		serveErr := server.Serve(ctx)

		// Restore default behavior on the interrupt signal and notify user of shutdown.
		signalStop()
		log.Info("Shutting down gracefully, press Ctrl+C again to force")

		if statusServer != nil {
			// The context is used to inform the server it has 5 seconds to finish
			// the request it is currently handling
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := statusServer.Shutdown(shutdownCtx); err != nil {
				log.Error("Http server forced to shutdown", zap.Error(err))
			}
		}

		err = multierr.Combine(serveErr, server.Close(), backupState(store, conf.StateFile))
		if err != nil {
			log.Error("Server stopped", zap.Error(err))
			return err
		}

		log.Info("Exiting")
		return nil
	},
}

func serverOptions(conf *env.Config, log *zap.Logger) transport.Options {
	return transport.Options{
		Host:         serverFlags.host,
		Port:         serverFlags.port,
		Reuseport:    serverFlags.reuseport,
		Trace:        serverFlags.trace,
		ReadTimeout:  conf.TCPTimeout,
		WriteTimeout: conf.TCPTimeout,
		MaxFailures:  conf.MaxFailures,
		Log:          log,
	}
}

func restoreState(store storage.Store, path string) error {
	if path == "" {
		return nil
	}

	values, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	return store.Restore(values)
}

func backupState(store storage.Store, path string) error {
	if path == "" {
		return nil
	}

	values, err := store.Backup()
	if err != nil {
		return err
	}

	tmp := path + "." + strconv.Itoa(os.Getpid())
	if err := os.WriteFile(tmp, values, 0600); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

func setFileLimit() (uint64, error) {
	var rLimit syscall.Rlimit

	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		return 0, err
	}

	rLimit.Cur = rLimit.Max
	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		return 0, err
	}

	return rLimit.Cur, nil
}
