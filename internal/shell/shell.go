package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/luma/auctioneer/client"
	"github.com/luma/auctioneer/protocol"
)

// Client is the part of client.Client the shell drives.
type Client interface {
	Login(ctx context.Context, uid, password string) (protocol.Status, error)
	Logout(ctx context.Context, uid, password string) (protocol.Status, error)
	Unregister(ctx context.Context, uid, password string) (protocol.Status, error)
	MyAuctions(ctx context.Context, uid string) (*protocol.MyAuctionsResponse, error)
	MyBids(ctx context.Context, uid string) (*protocol.MyBidsResponse, error)
	List(ctx context.Context) (*protocol.ListResponse, error)
	ShowRecord(ctx context.Context, aid string) (*protocol.ShowRecordResponse, error)
	Open(ctx context.Context, req *protocol.OpenRequest) (*protocol.OpenResponse, error)
	Close(ctx context.Context, uid, password, aid string) (protocol.Status, error)
	ShowAsset(ctx context.Context, aid string) (*protocol.ShowAssetResponse, error)
	Bid(ctx context.Context, uid, password, aid string, value int) (protocol.Status, error)
}

var errUsage = errors.New("usage")

type Options struct {
	In  io.Reader
	Out io.Writer

	// Prompt prints "> " before every command
	Prompt bool

	// AssetDir is where show_asset writes the assets it fetches
	AssetDir string

	Log *zap.Logger
}

// Shell reads one command per line and runs it as a single exchange. A
// failed exchange is reported and the shell carries on.
type Shell struct {
	client  Client
	options Options
	log     *zap.Logger

	// credentials of the logged in user, empty when logged out
	uid      string
	password string
}

func New(c Client, options Options) *Shell {
	if options.In == nil {
		options.In = os.Stdin
	}

	if options.Out == nil {
		options.Out = os.Stdout
	}

	if options.AssetDir == "" {
		options.AssetDir = "."
	}

	if options.Log == nil {
		options.Log = zap.NewNop()
	}

	return &Shell{
		client:  c,
		options: options,
		log:     options.Log.Named("shell"),
	}
}

// IsInteractive reports whether f is a terminal a prompt makes sense on.
func IsInteractive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Run executes commands until exit, end of input or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.options.In)

	for {
		if ctx.Err() != nil {
			return nil
		}

		if s.options.Prompt {
			fmt.Fprint(s.options.Out, "> ")
		}

		if !scanner.Scan() {
			return scanner.Err()
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if exit := s.execute(ctx, fields[0], fields[1:]); exit {
			return nil
		}
	}
}

func (s *Shell) execute(ctx context.Context, name string, args []string) bool {
	if name == "exit" {
		if s.loggedIn() {
			s.println("Please logout before exiting")
			return false
		}
		return true
	}

	cmd, ok := lookup(name)
	if !ok {
		s.println("Unknown command %q", name)
		return false
	}

	if len(args) != len(cmd.args) {
		s.println("Usage: %s", cmd.usage(name))
		return false
	}

	if cmd.session && !s.loggedIn() {
		s.println("You are not logged in")
		return false
	}

	err := cmd.run(s, ctx, args)
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		s.println("Usage: %s", cmd.usage(name))
	default:
		failure := client.Classify(err)
		s.log.Debug("Command failed",
			zap.String("command", name),
			zap.Stringer("failure", failure),
			zap.Error(err))

		s.println("%s", failure.Message())
	}

	return false
}

func (s *Shell) loggedIn() bool {
	return s.uid != ""
}

func (s *Shell) println(format string, args ...interface{}) {
	fmt.Fprintf(s.options.Out, format+"\n", args...)
}
