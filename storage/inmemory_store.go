package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// MaxAuctions is the size of the three digit AID space.
const MaxAuctions = 999

// InmemoryStore keeps every fact in a single JSON document:
//
//   {
//     "users":    {"u<UID>": {"password", "registered", "loggedIn"}},
//     "auctions": {"a<AID>": {"host", "name", "asset", "data", "startValue",
//                             "timeActive", "start", "closedAt", "bids": [...]}},
//     "next":     <last AID handed out>
//   }
//
// Keys carry a letter prefix so numeric ids are never taken as array
// indexes by sjson.
type InmemoryStore struct {
	mu     sync.Mutex
	values []byte

	now func() time.Time

	// stop will be closed when Close() is called
	stop chan struct{}
}

func NewInmemoryStore() *InmemoryStore {
	return &InmemoryStore{
		values: []byte("{}"),
		now:    time.Now,
		stop:   make(chan struct{}),
	}
}

// SetClock replaces the clock used to stamp and age auctions.
func (i *InmemoryStore) SetClock(now func() time.Time) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.now = now
}

func (i *InmemoryStore) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.isRunning() {
		close(i.stop)
	}

	return nil
}

func (i *InmemoryStore) RegisterOrLogin(ctx context.Context, uid, password string) (LoginResult, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.usable(ctx); err != nil {
		return 0, err
	}

	u := i.user(uid)
	if u.registered {
		if u.password != password {
			return LoginRejected, nil
		}

		return LoginOK, i.set(userPath(uid, "loggedIn"), true)
	}

	err := i.setUser(uid, map[string]interface{}{
		"password":   password,
		"registered": true,
		"loggedIn":   true,
	})
	return LoginCreated, err
}

func (i *InmemoryStore) Logout(ctx context.Context, uid, password string) (AccountResult, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.usable(ctx); err != nil {
		return 0, err
	}

	u := i.user(uid)
	switch {
	case !u.registered:
		return AccountUnknownUser, nil
	case !u.authenticated(password):
		return AccountNotLoggedIn, nil
	}

	return AccountOK, i.set(userPath(uid, "loggedIn"), false)
}

func (i *InmemoryStore) Unregister(ctx context.Context, uid, password string) (AccountResult, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.usable(ctx); err != nil {
		return 0, err
	}

	u := i.user(uid)
	switch {
	case !u.registered:
		return AccountUnknownUser, nil
	case !u.authenticated(password):
		return AccountNotLoggedIn, nil
	}

	err := i.setUser(uid, map[string]interface{}{
		"password":   "",
		"registered": false,
		"loggedIn":   false,
	})
	return AccountOK, err
}

func (i *InmemoryStore) OpenAuction(ctx context.Context, a NewAuction) (string, OpenResult, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.usable(ctx); err != nil {
		return "", 0, err
	}

	if !i.user(a.Host).authenticated(a.Password) {
		return "", OpenNotLoggedIn, nil
	}

	next := int(i.get("next").Int()) + 1
	if next > MaxAuctions {
		return "", OpenFailed, nil
	}

	aid := fmt.Sprintf("%03d", next)
	err := i.set(auctionPath(aid), map[string]interface{}{
		"host":       a.Host,
		"name":       a.Name,
		"asset":      a.AssetName,
		"data":       base64.StdEncoding.EncodeToString(a.Asset),
		"startValue": a.StartValue,
		"timeActive": a.TimeActive,
		"start":      i.now().Unix(),
		"closedAt":   0,
		"bids":       []interface{}{},
	})
	if err != nil {
		return "", 0, err
	}

	if err := i.set("next", next); err != nil {
		return "", 0, err
	}

	return aid, OpenOK, nil
}

func (i *InmemoryStore) CloseAuction(ctx context.Context, aid, uid, password string) (CloseResult, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.usable(ctx); err != nil {
		return 0, err
	}

	u := i.user(uid)
	switch {
	case !u.registered || u.password != password:
		return CloseBadCredentials, nil
	case !u.loggedIn:
		return CloseNotLoggedIn, nil
	}

	a, ok := i.auction(aid)
	switch {
	case !ok:
		return CloseNotFound, nil
	case a.Host != uid:
		return CloseNotOwner, nil
	case !a.Active:
		return CloseAlreadyClosed, nil
	}

	return CloseOK, i.set(auctionPath(aid, "closedAt"), i.now().Unix())
}

func (i *InmemoryStore) Bid(ctx context.Context, uid, password, aid string, value int) (BidResult, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.usable(ctx); err != nil {
		return 0, err
	}

	if !i.user(uid).authenticated(password) {
		return BidNotLoggedIn, nil
	}

	a, ok := i.auction(aid)
	switch {
	case !ok || !a.Active:
		return BidNotFound, nil
	case a.Host == uid:
		return BidOwnerCannotBid, nil
	case len(a.Bids) == 0 && value < a.StartValue:
		return BidRefusedTooLow, nil
	case len(a.Bids) > 0 && value <= a.Bids[len(a.Bids)-1].Value:
		return BidRefusedTooLow, nil
	}

	err := i.set(auctionPath(aid, "bids.-1"), map[string]interface{}{
		"uid":   uid,
		"value": value,
		"at":    i.now().Unix(),
	})
	return BidAccepted, err
}

func (i *InmemoryStore) ListOwned(ctx context.Context, uid string) ([]Summary, ListResult, error) {
	return i.listFor(ctx, uid, func(a *Auction) bool {
		return a.Host == uid
	})
}

func (i *InmemoryStore) ListBidOn(ctx context.Context, uid string) ([]Summary, ListResult, error) {
	return i.listFor(ctx, uid, func(a *Auction) bool {
		for _, b := range a.Bids {
			if b.Bidder == uid {
				return true
			}
		}
		return false
	})
}

func (i *InmemoryStore) ListAll(ctx context.Context) ([]Summary, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.usable(ctx); err != nil {
		return nil, err
	}

	return i.summaries(func(*Auction) bool { return true }), nil
}

func (i *InmemoryStore) GetAsset(ctx context.Context, aid string) (*Asset, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.usable(ctx); err != nil {
		return nil, err
	}

	r := i.get(auctionPath(aid))
	if !r.Exists() {
		return nil, fmt.Errorf("auction %s: %w", aid, ErrNotFound)
	}

	data, err := base64.StdEncoding.DecodeString(r.Get("data").String())
	if err != nil {
		return nil, fmt.Errorf("auction %s has a corrupt asset: %w", aid, err)
	}

	return &Asset{Name: r.Get("asset").String(), Data: data}, nil
}

func (i *InmemoryStore) GetRecord(ctx context.Context, aid string) (*Auction, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.usable(ctx); err != nil {
		return nil, err
	}

	a, ok := i.auction(aid)
	if !ok {
		return nil, fmt.Errorf("auction %s: %w", aid, ErrNotFound)
	}

	return a, nil
}

func (i *InmemoryStore) Restore(values []byte) error {
	if !gjson.ValidBytes(values) {
		return errors.New("Cannot restore from invalid JSON")
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	i.values = append([]byte(nil), values...)
	return nil
}

func (i *InmemoryStore) Backup() ([]byte, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if len(i.values) == 0 {
		return []byte("{}"), nil
	}

	return append([]byte(nil), i.values...), nil
}

func (i *InmemoryStore) listFor(ctx context.Context, uid string, match func(*Auction) bool) ([]Summary, ListResult, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.usable(ctx); err != nil {
		return nil, 0, err
	}

	if u := i.user(uid); !u.registered || !u.loggedIn {
		return nil, ListNotLoggedIn, nil
	}

	summaries := i.summaries(match)
	if len(summaries) == 0 {
		return nil, ListNone, nil
	}

	return summaries, ListOK, nil
}

func (i *InmemoryStore) summaries(match func(*Auction) bool) []Summary {
	var summaries []Summary

	i.get("auctions").ForEach(func(key, value gjson.Result) bool {
		a := i.decodeAuction(key.String()[1:], value)
		if match(a) {
			summaries = append(summaries, Summary{AID: a.AID, Active: a.Active})
		}
		return true
	})

	sort.Slice(summaries, func(x, y int) bool {
		return summaries[x].AID < summaries[y].AID
	})

	return summaries
}

func (i *InmemoryStore) auction(aid string) (*Auction, bool) {
	r := i.get(auctionPath(aid))
	if !r.Exists() {
		return nil, false
	}

	return i.decodeAuction(aid, r), true
}

func (i *InmemoryStore) decodeAuction(aid string, r gjson.Result) *Auction {
	a := &Auction{
		AID:        aid,
		Host:       r.Get("host").String(),
		Name:       r.Get("name").String(),
		AssetName:  r.Get("asset").String(),
		StartValue: int(r.Get("startValue").Int()),
		TimeActive: int(r.Get("timeActive").Int()),
		Start:      time.Unix(r.Get("start").Int(), 0).UTC(),
	}

	for _, b := range r.Get("bids").Array() {
		a.Bids = append(a.Bids, Bid{
			Bidder: b.Get("uid").String(),
			Value:  int(b.Get("value").Int()),
			Time:   time.Unix(b.Get("at").Int(), 0).UTC(),
		})
	}

	deadline := a.Start.Add(time.Duration(a.TimeActive) * time.Second)
	a.End = deadline

	if closedAt := r.Get("closedAt").Int(); closedAt > 0 {
		if closed := time.Unix(closedAt, 0).UTC(); closed.Before(deadline) {
			a.End = closed
		}
		return a
	}

	a.Active = i.now().Before(deadline)
	return a
}

type user struct {
	registered bool
	loggedIn   bool
	password   string
}

func (u user) authenticated(password string) bool {
	return u.registered && u.loggedIn && u.password == password
}

func (i *InmemoryStore) user(uid string) user {
	r := i.get(userPath(uid))

	return user{
		registered: r.Get("registered").Bool(),
		loggedIn:   r.Get("loggedIn").Bool(),
		password:   r.Get("password").String(),
	}
}

func (i *InmemoryStore) setUser(uid string, fields map[string]interface{}) error {
	return i.set(userPath(uid), fields)
}

func (i *InmemoryStore) get(path string) gjson.Result {
	return gjson.GetBytes(i.values, path)
}

func (i *InmemoryStore) set(path string, value interface{}) (err error) {
	i.values, err = sjson.SetBytes(i.values, path, value)
	return err
}

func (i *InmemoryStore) usable(ctx context.Context) error {
	if !i.isRunning() {
		return ErrClosed
	}

	return ctx.Err()
}

// isRunning returns true if Close has not been called
func (i *InmemoryStore) isRunning() bool {
	select {
	case <-i.stop:
		return false

	default:
		return true
	}
}

func userPath(uid string, field ...string) string {
	return joinPath("users.u"+uid, field)
}

func auctionPath(aid string, field ...string) string {
	return joinPath("auctions.a"+aid, field)
}

func joinPath(base string, field []string) string {
	for _, f := range field {
		base += "." + f
	}
	return base
}

var _ Store = (*InmemoryStore)(nil)
