package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/luma/auctioneer/client"
	"github.com/luma/auctioneer/internal/env"
	"github.com/luma/auctioneer/internal/shell"
)

var clientFlags struct {
	host     string
	port     int
	assetDir string
}

func init() {
	flags := ClientCmd.PersistentFlags()

	flags.StringVarP(&clientFlags.host, "host", "n", "localhost", "The host the auction server runs on")
	flags.IntVarP(&clientFlags.port, "port", "p", DefaultPort, "The port the auction server listens on")
	flags.StringVar(&clientFlags.assetDir, "assets", ".", "The directory show_asset saves assets to")
}

var ClientCmd = &cobra.Command{
	Use:   "client",
	Short: "Start an interactive auction client",
	Long: `Start an interactive auction client

Usage
	auctioneer client -n tejo.example.com -p 58011

Commands
	login UID password          unregister
	logout                      exit
	open name asset_file start_value timeactive
	close AID                   bid (b) AID value
	myauctions (ma)             mybids (mb)
	list (l)                    show_asset (sa) AID
	show_record (sr) AID
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, signalStop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer signalStop()

		if clientFlags.port < 1 || clientFlags.port > 65535 {
			return fmt.Errorf("Invalid port %d", clientFlags.port)
		}

		log, err := env.MakeLogger(verbose)
		if err != nil {
			return err
		}
		defer func() {
			_ = log.Sync()
		}()

		conf, err := env.LoadConfig(ctx)
		if err != nil {
			return err
		}

		c := client.New(client.Options{
			Host:          clientFlags.host,
			Port:          clientFlags.port,
			Timeout:       conf.UDPTimeout,
			Attempts:      conf.UDPAttempts,
			StreamTimeout: conf.TCPTimeout,
			Log:           log,
		})

		return shell.New(c, shell.Options{
			In:       os.Stdin,
			Out:      os.Stdout,
			Prompt:   shell.IsInteractive(os.Stdin),
			AssetDir: clientFlags.assetDir,
			Log:      log,
		}).Run(ctx)
	},
}
