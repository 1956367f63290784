package storage

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("Record not found")
	ErrClosed   = errors.New("Store is closed")
)

// The zero value of every result type is not a valid result.

type LoginResult int

const (
	LoginOK LoginResult = iota + 1
	LoginCreated
	LoginRejected
)

// AccountResult is the outcome of logout and unregister.
type AccountResult int

const (
	AccountOK AccountResult = iota + 1
	AccountNotLoggedIn
	AccountUnknownUser
)

type OpenResult int

const (
	OpenOK OpenResult = iota + 1
	OpenNotLoggedIn
	OpenFailed
)

type CloseResult int

const (
	CloseOK CloseResult = iota + 1
	CloseNotLoggedIn
	CloseBadCredentials
	CloseNotFound
	CloseNotOwner
	CloseAlreadyClosed
)

type BidResult int

const (
	BidAccepted BidResult = iota + 1
	BidRefusedTooLow
	BidNotLoggedIn
	BidOwnerCannotBid
	BidNotFound
)

type ListResult int

const (
	ListOK ListResult = iota + 1
	ListNone
	ListNotLoggedIn
)

type Summary struct {
	AID    string
	Active bool
}

type Asset struct {
	Name string
	Data []byte
}

type Bid struct {
	Bidder string
	Value  int
	Time   time.Time
}

// Auction is the full history of one auction. Active and End are derived
// from the clock every time the auction is read.
type Auction struct {
	AID        string
	Host       string
	Name       string
	AssetName  string
	StartValue int
	TimeActive int
	Start      time.Time
	Bids       []Bid

	Active bool

	// End is the close time, or the scheduled end; meaningful once !Active.
	End time.Time
}

type NewAuction struct {
	Host       string
	Password   string
	Name       string
	AssetName  string
	Asset      []byte
	StartValue int
	TimeActive int
}

// Store holds every user, auction and bid. Implementations serialize
// concurrent calls themselves.
type Store interface {
	RegisterOrLogin(ctx context.Context, uid, password string) (LoginResult, error)
	Logout(ctx context.Context, uid, password string) (AccountResult, error)
	Unregister(ctx context.Context, uid, password string) (AccountResult, error)

	OpenAuction(ctx context.Context, auction NewAuction) (string, OpenResult, error)
	CloseAuction(ctx context.Context, aid, uid, password string) (CloseResult, error)
	Bid(ctx context.Context, uid, password, aid string, value int) (BidResult, error)

	ListOwned(ctx context.Context, uid string) ([]Summary, ListResult, error)
	ListBidOn(ctx context.Context, uid string) ([]Summary, ListResult, error)
	ListAll(ctx context.Context) ([]Summary, error)

	// GetAsset and GetRecord return ErrNotFound for unknown auctions
	GetAsset(ctx context.Context, aid string) (*Asset, error)
	GetRecord(ctx context.Context, aid string) (*Auction, error)

	Restore(values []byte) error
	Backup() ([]byte, error)

	Close() error
}
