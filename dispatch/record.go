package dispatch

import (
	"time"

	"github.com/luma/auctioneer/protocol"
	"github.com/luma/auctioneer/storage"
)

// auctionStates only carries pairs on an OK listing.
func auctionStates(summaries []storage.Summary, status protocol.Status) []protocol.AuctionState {
	if status != protocol.StatusOK {
		return nil
	}

	states := make([]protocol.AuctionState, 0, len(summaries))
	for _, s := range summaries {
		states = append(states, protocol.AuctionState{AID: s.AID, Active: s.Active})
	}

	return states
}

// record converts an auction history to RRC form, keeping only the most
// recent bids.
func record(a *storage.Auction) *protocol.Record {
	rec := &protocol.Record{
		Host:       a.Host,
		Name:       a.Name,
		AssetName:  a.AssetName,
		StartValue: a.StartValue,
		Start:      a.Start,
		TimeActive: a.TimeActive,
	}

	bids := a.Bids
	if len(bids) > protocol.MaxBidsReported {
		bids = bids[len(bids)-protocol.MaxBidsReported:]
	}

	for _, b := range bids {
		rec.Bids = append(rec.Bids, protocol.BidEntry{
			Bidder:  b.Bidder,
			Value:   b.Value,
			Time:    b.Time,
			Seconds: secondsSince(a.Start, b.Time),
		})
	}

	if !a.Active {
		rec.End = &protocol.EndEntry{
			Time:    a.End,
			Seconds: secondsSince(a.Start, a.End),
		}
	}

	return rec
}

func secondsSince(start, t time.Time) int {
	if s := int(t.Sub(start) / time.Second); s > 0 {
		return s
	}
	return 0
}
