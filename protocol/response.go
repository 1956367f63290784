package protocol

import "time"

// AuctionState is one "AID state" pair of a listing.
type AuctionState struct {
	AID    string
	Active bool
}

// Record is the history of one auction as carried by RRC.
type Record struct {
	Host       string
	Name       string
	AssetName  string
	StartValue int
	Start      time.Time
	TimeActive int
	Bids       []BidEntry

	// End is set once the auction is no longer active.
	End *EndEntry
}

type BidEntry struct {
	Bidder  string
	Value   int
	Time    time.Time
	Seconds int
}

type EndEntry struct {
	Time    time.Time
	Seconds int
}

type LoginResponse struct {
	Status Status
}

func (*LoginResponse) Code() Code { return RLI }

func (m *LoginResponse) encode(w *writer) { w.status(m.Status, loginStatuses) }

func (m *LoginResponse) decode(r *reader) {
	r.space()
	m.Status = r.status(loginStatuses)
	r.end()
}

type LogoutResponse struct {
	Status Status
}

func (*LogoutResponse) Code() Code { return RLO }

func (m *LogoutResponse) encode(w *writer) { w.status(m.Status, logoutStatuses) }

func (m *LogoutResponse) decode(r *reader) {
	r.space()
	m.Status = r.status(logoutStatuses)
	r.end()
}

type UnregisterResponse struct {
	Status Status
}

func (*UnregisterResponse) Code() Code { return RUR }

func (m *UnregisterResponse) encode(w *writer) { w.status(m.Status, logoutStatuses) }

func (m *UnregisterResponse) decode(r *reader) {
	r.space()
	m.Status = r.status(logoutStatuses)
	r.end()
}

type MyAuctionsResponse struct {
	Status   Status
	Auctions []AuctionState
}

func (*MyAuctionsResponse) Code() Code { return RMA }

func (m *MyAuctionsResponse) encode(w *writer) {
	w.status(m.Status, listStatuses)
	w.auctionStates(m.Status, m.Auctions)
}

func (m *MyAuctionsResponse) decode(r *reader) {
	r.space()
	m.Status = r.status(listStatuses)
	m.Auctions = r.auctionStates(m.Status)
}

type MyBidsResponse struct {
	Status   Status
	Auctions []AuctionState
}

func (*MyBidsResponse) Code() Code { return RMB }

func (m *MyBidsResponse) encode(w *writer) {
	w.status(m.Status, listStatuses)
	w.auctionStates(m.Status, m.Auctions)
}

func (m *MyBidsResponse) decode(r *reader) {
	r.space()
	m.Status = r.status(listStatuses)
	m.Auctions = r.auctionStates(m.Status)
}

type ListResponse struct {
	Status   Status
	Auctions []AuctionState
}

func (*ListResponse) Code() Code { return RLS }

func (m *ListResponse) encode(w *writer) {
	w.status(m.Status, listAllStatuses)
	w.auctionStates(m.Status, m.Auctions)
}

func (m *ListResponse) decode(r *reader) {
	r.space()
	m.Status = r.status(listAllStatuses)
	m.Auctions = r.auctionStates(m.Status)
}

type ShowRecordResponse struct {
	Status Status
	Record *Record
}

func (*ShowRecordResponse) Code() Code { return RRC }

func (m *ShowRecordResponse) encode(w *writer) {
	w.status(m.Status, recordStatuses)
	if w.err != nil {
		return
	}

	if m.Status != StatusOK {
		if m.Record != nil {
			w.failf("%s record response must not carry a record", m.Status)
		}
		return
	}

	rec := m.Record
	if rec == nil {
		w.failf("OK record response needs a record")
		return
	}

	if len(rec.Bids) > MaxBidsReported {
		w.failf("%d bids exceed the %d reported", len(rec.Bids), MaxBidsReported)
		return
	}

	w.uid(rec.Host)
	w.name(rec.Name)
	w.filename(rec.AssetName)
	w.value(rec.StartValue)
	w.dateTime(rec.Start)
	w.duration(rec.TimeActive)

	for _, bid := range rec.Bids {
		w.field(true, "bid marker", "B")
		w.uid(bid.Bidder)
		w.value(bid.Value)
		w.dateTime(bid.Time)
		w.seconds(bid.Seconds)
	}

	if rec.End != nil {
		w.field(true, "end marker", "E")
		w.dateTime(rec.End.Time)
		w.seconds(rec.End.Seconds)
	}
}

func (m *ShowRecordResponse) decode(r *reader) {
	r.space()
	m.Status = r.status(recordStatuses)
	if r.err != nil || m.Status != StatusOK {
		r.end()
		return
	}

	rec := &Record{}
	r.space()
	rec.Host = r.uid()
	r.space()
	rec.Name = r.name()
	r.space()
	rec.AssetName = r.filename()
	r.space()
	rec.StartValue = r.value()
	r.space()
	rec.Start = r.dateTime()
	r.space()
	rec.TimeActive = r.duration()

	for r.err == nil {
		b := r.next()
		if r.err != nil || b == '\n' {
			break
		}

		if b != ' ' {
			r.failf("expected separator, got %q", b)
			break
		}

		switch marker := r.next(); {
		case r.err != nil:
		case marker == 'B' && rec.End == nil && len(rec.Bids) < MaxBidsReported:
			var bid BidEntry
			r.space()
			bid.Bidder = r.uid()
			r.space()
			bid.Value = r.value()
			r.space()
			bid.Time = r.dateTime()
			r.space()
			bid.Seconds = r.seconds()
			rec.Bids = append(rec.Bids, bid)

		case marker == 'E' && rec.End == nil:
			end := &EndEntry{}
			r.space()
			end.Time = r.dateTime()
			r.space()
			end.Seconds = r.seconds()
			rec.End = end

		default:
			r.failf("unexpected record entry %q", marker)
		}
	}

	if r.err == nil {
		m.Record = rec
	}
}

type OpenResponse struct {
	Status Status

	// AID is only present with StatusOK.
	AID string
}

func (*OpenResponse) Code() Code { return ROA }

func (m *OpenResponse) encode(w *writer) {
	w.status(m.Status, openStatuses)
	if m.Status == StatusOK {
		w.aid(m.AID)
	} else if m.AID != "" {
		w.failf("%s open response must not carry an AID", m.Status)
	}
}

func (m *OpenResponse) decode(r *reader) {
	r.space()
	m.Status = r.status(openStatuses)
	if m.Status == StatusOK {
		r.space()
		m.AID = r.aid()
	}
	r.end()
}

type CloseResponse struct {
	Status Status
}

func (*CloseResponse) Code() Code { return RCL }

func (m *CloseResponse) encode(w *writer) { w.status(m.Status, closeStatuses) }

func (m *CloseResponse) decode(r *reader) {
	r.space()
	m.Status = r.status(closeStatuses)
	r.end()
}

type ShowAssetResponse struct {
	Status    Status
	AssetName string
	Asset     []byte
}

func (*ShowAssetResponse) Code() Code { return RSA }

func (m *ShowAssetResponse) encode(w *writer) {
	w.status(m.Status, assetStatuses)
	if m.Status == StatusOK {
		w.filename(m.AssetName)
		w.asset(m.Asset)
	} else if m.AssetName != "" || m.Asset != nil {
		w.failf("%s asset response must not carry a file", m.Status)
	}
}

func (m *ShowAssetResponse) decode(r *reader) {
	r.space()
	m.Status = r.status(assetStatuses)
	if m.Status == StatusOK {
		r.space()
		m.AssetName = r.filename()
		r.space()
		m.Asset = r.asset()
	}
	r.end()
}

type BidResponse struct {
	Status Status
}

func (*BidResponse) Code() Code { return RBD }

func (m *BidResponse) encode(w *writer) { w.status(m.Status, bidStatuses) }

func (m *BidResponse) decode(r *reader) {
	r.space()
	m.Status = r.status(bidStatuses)
	r.end()
}

var _ Message = (*LoginResponse)(nil)
var _ Message = (*LogoutResponse)(nil)
var _ Message = (*UnregisterResponse)(nil)
var _ Message = (*MyAuctionsResponse)(nil)
var _ Message = (*MyBidsResponse)(nil)
var _ Message = (*ListResponse)(nil)
var _ Message = (*ShowRecordResponse)(nil)
var _ Message = (*OpenResponse)(nil)
var _ Message = (*CloseResponse)(nil)
var _ Message = (*ShowAssetResponse)(nil)
var _ Message = (*BidResponse)(nil)
