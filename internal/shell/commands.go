package shell

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/luma/auctioneer/protocol"
)

type command struct {
	args []string

	// session commands need a logged in user
	session bool

	run func(s *Shell, ctx context.Context, args []string) error
}

func (c *command) usage(name string) string {
	if len(c.args) == 0 {
		return name
	}
	return name + " " + strings.Join(c.args, " ")
}

func lookup(name string) (*command, bool) {
	switch name {
	case "login":
		return &command{args: []string{"UID", "password"}, run: (*Shell).login}, true
	case "logout":
		return &command{session: true, run: (*Shell).logout}, true
	case "unregister":
		return &command{session: true, run: (*Shell).unregister}, true
	case "open":
		return &command{args: []string{"name", "asset_file", "start_value", "timeactive"}, session: true, run: (*Shell).open}, true
	case "close":
		return &command{args: []string{"AID"}, session: true, run: (*Shell).close}, true
	case "myauctions", "ma":
		return &command{session: true, run: (*Shell).myAuctions}, true
	case "mybids", "mb":
		return &command{session: true, run: (*Shell).myBids}, true
	case "list", "l":
		return &command{run: (*Shell).list}, true
	case "show_asset", "sa":
		return &command{args: []string{"AID"}, run: (*Shell).showAsset}, true
	case "bid", "b":
		return &command{args: []string{"AID", "value"}, session: true, run: (*Shell).bid}, true
	case "show_record", "sr":
		return &command{args: []string{"AID"}, run: (*Shell).showRecord}, true
	}

	return nil, false
}

func (s *Shell) login(ctx context.Context, args []string) error {
	uid, password := args[0], args[1]
	if !protocol.ValidUID(uid) || !protocol.ValidPassword(password) {
		return errUsage
	}

	if s.loggedIn() {
		s.println("Already logged in as %s", s.uid)
		return nil
	}

	status, err := s.client.Login(ctx, uid, password)
	if err != nil {
		return err
	}

	switch status {
	case protocol.StatusOK:
		s.println("Logged in")
	case protocol.StatusREG:
		s.println("New user registered")
	case protocol.StatusNOK:
		s.println("Incorrect password")
		return nil
	default:
		s.unexpected(status)
		return nil
	}

	s.uid, s.password = uid, password
	return nil
}

func (s *Shell) logout(ctx context.Context, args []string) error {
	status, err := s.client.Logout(ctx, s.uid, s.password)
	if err != nil {
		return err
	}

	s.account(status, "Logged out")
	return nil
}

func (s *Shell) unregister(ctx context.Context, args []string) error {
	status, err := s.client.Unregister(ctx, s.uid, s.password)
	if err != nil {
		return err
	}

	s.account(status, "Unregistered")
	return nil
}

// account reports a logout or unregister, both of which end the session.
func (s *Shell) account(status protocol.Status, done string) {
	switch status {
	case protocol.StatusOK:
		s.println("%s", done)
		s.uid, s.password = "", ""
	case protocol.StatusNOK:
		s.println("User not logged in")
		s.uid, s.password = "", ""
	case protocol.StatusUNR:
		s.println("Unknown user")
		s.uid, s.password = "", ""
	default:
		s.unexpected(status)
	}
}

func (s *Shell) open(ctx context.Context, args []string) error {
	startValue, err := strconv.Atoi(args[2])
	if err != nil || !protocol.ValidValue(startValue) {
		return errUsage
	}

	timeActive, err := strconv.Atoi(args[3])
	if err != nil || !protocol.ValidDuration(timeActive) {
		return errUsage
	}

	assetName := filepath.Base(args[1])
	if !protocol.ValidName(args[0]) || !protocol.ValidFilename(assetName) {
		return errUsage
	}

	asset, err := os.ReadFile(args[1])
	if err != nil {
		s.println("Cannot read asset: %v", err)
		return nil
	}

	resp, err := s.client.Open(ctx, &protocol.OpenRequest{
		UID:        s.uid,
		Password:   s.password,
		Name:       args[0],
		StartValue: startValue,
		TimeActive: timeActive,
		AssetName:  assetName,
		Asset:      asset,
	})
	if err != nil {
		return err
	}

	switch resp.Status {
	case protocol.StatusOK:
		s.println("Auction %s opened", resp.AID)
	case protocol.StatusNOK:
		s.println("Auction could not be started")
	case protocol.StatusNLG:
		s.println("User not logged in")
	default:
		s.unexpected(resp.Status)
	}

	return nil
}

func (s *Shell) close(ctx context.Context, args []string) error {
	if !protocol.ValidAID(args[0]) {
		return errUsage
	}

	status, err := s.client.Close(ctx, s.uid, s.password, args[0])
	if err != nil {
		return err
	}

	switch status {
	case protocol.StatusOK:
		s.println("Auction %s closed", args[0])
	case protocol.StatusNOK:
		s.println("Wrong credentials")
	case protocol.StatusNLG:
		s.println("User not logged in")
	case protocol.StatusEAU:
		s.println("Auction %s does not exist", args[0])
	case protocol.StatusEOW:
		s.println("Auction %s is not yours", args[0])
	case protocol.StatusEND:
		s.println("Auction %s has already ended", args[0])
	default:
		s.unexpected(status)
	}

	return nil
}

func (s *Shell) myAuctions(ctx context.Context, args []string) error {
	resp, err := s.client.MyAuctions(ctx, s.uid)
	if err != nil {
		return err
	}

	s.listing(resp.Status, resp.Auctions, "You have no auctions")
	return nil
}

func (s *Shell) myBids(ctx context.Context, args []string) error {
	resp, err := s.client.MyBids(ctx, s.uid)
	if err != nil {
		return err
	}

	s.listing(resp.Status, resp.Auctions, "You have not bid on any auction")
	return nil
}

func (s *Shell) list(ctx context.Context, args []string) error {
	resp, err := s.client.List(ctx)
	if err != nil {
		return err
	}

	s.listing(resp.Status, resp.Auctions, "There are no auctions")
	return nil
}

func (s *Shell) listing(status protocol.Status, auctions []protocol.AuctionState, none string) {
	switch status {
	case protocol.StatusOK:
		for _, a := range auctions {
			state := "ended"
			if a.Active {
				state = "active"
			}
			s.println("%s %s", a.AID, state)
		}
	case protocol.StatusNOK:
		s.println("%s", none)
	case protocol.StatusNLG:
		s.println("User not logged in")
	default:
		s.unexpected(status)
	}
}

func (s *Shell) showAsset(ctx context.Context, args []string) error {
	if !protocol.ValidAID(args[0]) {
		return errUsage
	}

	resp, err := s.client.ShowAsset(ctx, args[0])
	if err != nil {
		return err
	}

	switch resp.Status {
	case protocol.StatusOK:
		path := filepath.Join(s.options.AssetDir, filepath.Base(resp.AssetName))
		if err := os.WriteFile(path, resp.Asset, 0640); err != nil {
			s.println("Cannot save asset: %v", err)
			return nil
		}
		s.println("Saved %s (%d bytes)", path, len(resp.Asset))
	case protocol.StatusNOK:
		s.println("Auction %s has no asset", args[0])
	default:
		s.unexpected(resp.Status)
	}

	return nil
}

func (s *Shell) bid(ctx context.Context, args []string) error {
	value, err := strconv.Atoi(args[1])
	if err != nil || !protocol.ValidAID(args[0]) || !protocol.ValidValue(value) {
		return errUsage
	}

	status, err := s.client.Bid(ctx, s.uid, s.password, args[0], value)
	if err != nil {
		return err
	}

	switch status {
	case protocol.StatusACC:
		s.println("Bid accepted")
	case protocol.StatusREF:
		s.println("Bid refused, it is not above the current bid")
	case protocol.StatusNLG:
		s.println("User not logged in")
	case protocol.StatusILG:
		s.println("You cannot bid on your own auction")
	case protocol.StatusNOK:
		s.println("Auction %s is not active", args[0])
	default:
		s.unexpected(status)
	}

	return nil
}

func (s *Shell) showRecord(ctx context.Context, args []string) error {
	if !protocol.ValidAID(args[0]) {
		return errUsage
	}

	resp, err := s.client.ShowRecord(ctx, args[0])
	if err != nil {
		return err
	}

	switch resp.Status {
	case protocol.StatusOK:
		s.record(args[0], resp.Record)
	case protocol.StatusNOK:
		s.println("Auction %s does not exist", args[0])
	default:
		s.unexpected(resp.Status)
	}

	return nil
}

func (s *Shell) record(aid string, rec *protocol.Record) {
	s.println("Auction %s %q by %s, asset %s", aid, rec.Name, rec.Host, rec.AssetName)
	s.println("  started %s at %d, runs for %ds", rec.Start.Format(protocol.DateTimeLayout), rec.StartValue, rec.TimeActive)

	for _, b := range rec.Bids {
		s.println("  bid %d by %s at %s (+%ds)", b.Value, b.Bidder, b.Time.Format(protocol.DateTimeLayout), b.Seconds)
	}

	if rec.End != nil {
		s.println("  ended %s (+%ds)", rec.End.Time.Format(protocol.DateTimeLayout), rec.End.Seconds)
	}
}

func (s *Shell) unexpected(status protocol.Status) {
	s.println("Unexpected status %s", status)
}
