package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/luma/auctioneer/cmd/gen"
)

// DefaultPort is shared by the datagram and stream sides of the server.
const DefaultPort = 58011

// verbose turns on debug logging
var verbose bool

var RootCmd = &cobra.Command{
	Use:   "auctioneer",
	Short: "An auction marketplace server and client",
	Long: `An auction marketplace server and client.

Users log in and list auctions over UDP; opening, closing, bidding and
fetching assets happen over TCP on the same port.`,
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")

	RootCmd.AddCommand(ServerCmd)
	RootCmd.AddCommand(ClientCmd)
	RootCmd.AddCommand(VersionCmd)
	RootCmd.AddCommand(gen.RootCmd)
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
