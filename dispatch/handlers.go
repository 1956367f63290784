package dispatch

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/luma/auctioneer/protocol"
	"github.com/luma/auctioneer/storage"
	"github.com/luma/auctioneer/transport"
)

// Handlers answers every request code against one Record Store.
type Handlers struct {
	store storage.Store
	log   *zap.Logger
}

func New(store storage.Store, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}

	return &Handlers{
		store: store,
		log:   log.Named("dispatch"),
	}
}

// DatagramRegistry routes the codes served over UDP. Anything else,
// including the stream codes, is answered with ERR.
func (h *Handlers) DatagramRegistry() *transport.Registry {
	return transport.NewRegistry(h.logged(h.unknown), map[protocol.Code]transport.Handler{
		protocol.LIN: h.logged(h.login),
		protocol.LOU: h.logged(h.logout),
		protocol.UNR: h.logged(h.unregister),
		protocol.LMA: h.logged(h.myAuctions),
		protocol.LMB: h.logged(h.myBids),
		protocol.LST: h.logged(h.list),
		protocol.SRC: h.logged(h.showRecord),
	})
}

// StreamRegistry routes the codes served over TCP.
func (h *Handlers) StreamRegistry() *transport.Registry {
	return transport.NewRegistry(h.logged(h.unknown), map[protocol.Code]transport.Handler{
		protocol.OPA: h.logged(h.open),
		protocol.CLS: h.logged(h.close),
		protocol.SAS: h.logged(h.showAsset),
		protocol.BID: h.logged(h.bid),
	})
}

func (h *Handlers) logged(next transport.Handler) transport.Handler {
	return func(ctx context.Context, ex *transport.Exchange) error {
		err := next(ctx, ex)

		h.log.Debug("Handled request",
			zap.String("code", string(ex.Code)),
			zap.Stringer("remote", ex.Remote),
			zap.Bool("replied", ex.Replied()),
			zap.Error(err))

		return err
	}
}

// decode reads the request body. A grammar error is answered with reply,
// the response carrying status ERR, and reported as handled; transport
// errors are returned as they are.
func (h *Handlers) decode(ex *transport.Exchange, req protocol.Message, reply protocol.Message) (bool, error) {
	err := ex.Decode(req)
	if err == nil {
		return true, nil
	}

	if !errors.Is(err, protocol.ErrMalformedMessage) {
		return false, err
	}

	h.log.Info("Rejected malformed request",
		zap.String("code", string(ex.Code)),
		zap.Stringer("remote", ex.Remote),
		zap.Error(err))

	return false, ex.Reply(reply)
}

func (h *Handlers) unknown(ctx context.Context, ex *transport.Exchange) error {
	h.log.Info("Unknown request",
		zap.String("code", string(ex.Code)),
		zap.Stringer("remote", ex.Remote))

	return ex.Reply(&protocol.ErrorMessage{})
}

func (h *Handlers) login(ctx context.Context, ex *transport.Exchange) error {
	var req protocol.LoginRequest
	if ok, err := h.decode(ex, &req, &protocol.LoginResponse{Status: protocol.StatusERR}); !ok {
		return err
	}

	result, err := h.store.RegisterOrLogin(ctx, req.UID, req.Password)
	if err != nil {
		return err
	}

	status, err := loginStatus(result)
	if err != nil {
		return err
	}

	return ex.Reply(&protocol.LoginResponse{Status: status})
}

func (h *Handlers) logout(ctx context.Context, ex *transport.Exchange) error {
	var req protocol.LogoutRequest
	if ok, err := h.decode(ex, &req, &protocol.LogoutResponse{Status: protocol.StatusERR}); !ok {
		return err
	}

	result, err := h.store.Logout(ctx, req.UID, req.Password)
	if err != nil {
		return err
	}

	status, err := accountStatus(result)
	if err != nil {
		return err
	}

	return ex.Reply(&protocol.LogoutResponse{Status: status})
}

func (h *Handlers) unregister(ctx context.Context, ex *transport.Exchange) error {
	var req protocol.UnregisterRequest
	if ok, err := h.decode(ex, &req, &protocol.UnregisterResponse{Status: protocol.StatusERR}); !ok {
		return err
	}

	result, err := h.store.Unregister(ctx, req.UID, req.Password)
	if err != nil {
		return err
	}

	status, err := accountStatus(result)
	if err != nil {
		return err
	}

	return ex.Reply(&protocol.UnregisterResponse{Status: status})
}

func (h *Handlers) myAuctions(ctx context.Context, ex *transport.Exchange) error {
	var req protocol.MyAuctionsRequest
	if ok, err := h.decode(ex, &req, &protocol.MyAuctionsResponse{Status: protocol.StatusERR}); !ok {
		return err
	}

	summaries, result, err := h.store.ListOwned(ctx, req.UID)
	if err != nil {
		return err
	}

	status, err := listStatus(result)
	if err != nil {
		return err
	}

	return ex.Reply(&protocol.MyAuctionsResponse{Status: status, Auctions: auctionStates(summaries, status)})
}

func (h *Handlers) myBids(ctx context.Context, ex *transport.Exchange) error {
	var req protocol.MyBidsRequest
	if ok, err := h.decode(ex, &req, &protocol.MyBidsResponse{Status: protocol.StatusERR}); !ok {
		return err
	}

	summaries, result, err := h.store.ListBidOn(ctx, req.UID)
	if err != nil {
		return err
	}

	status, err := listStatus(result)
	if err != nil {
		return err
	}

	return ex.Reply(&protocol.MyBidsResponse{Status: status, Auctions: auctionStates(summaries, status)})
}

func (h *Handlers) list(ctx context.Context, ex *transport.Exchange) error {
	var req protocol.ListRequest
	if ok, err := h.decode(ex, &req, &protocol.ListResponse{Status: protocol.StatusERR}); !ok {
		return err
	}

	summaries, err := h.store.ListAll(ctx)
	if err != nil {
		return err
	}

	if len(summaries) == 0 {
		return ex.Reply(&protocol.ListResponse{Status: protocol.StatusNOK})
	}

	return ex.Reply(&protocol.ListResponse{
		Status:   protocol.StatusOK,
		Auctions: auctionStates(summaries, protocol.StatusOK),
	})
}

func (h *Handlers) showRecord(ctx context.Context, ex *transport.Exchange) error {
	var req protocol.ShowRecordRequest
	if ok, err := h.decode(ex, &req, &protocol.ShowRecordResponse{Status: protocol.StatusERR}); !ok {
		return err
	}

	auction, err := h.store.GetRecord(ctx, req.AID)
	if errors.Is(err, storage.ErrNotFound) {
		return ex.Reply(&protocol.ShowRecordResponse{Status: protocol.StatusNOK})
	}
	if err != nil {
		return err
	}

	return ex.Reply(&protocol.ShowRecordResponse{Status: protocol.StatusOK, Record: record(auction)})
}

func (h *Handlers) open(ctx context.Context, ex *transport.Exchange) error {
	var req protocol.OpenRequest
	if ok, err := h.decode(ex, &req, &protocol.OpenResponse{Status: protocol.StatusERR}); !ok {
		return err
	}

	aid, result, err := h.store.OpenAuction(ctx, storage.NewAuction{
		Host:       req.UID,
		Password:   req.Password,
		Name:       req.Name,
		AssetName:  req.AssetName,
		Asset:      req.Asset,
		StartValue: req.StartValue,
		TimeActive: req.TimeActive,
	})
	if err != nil {
		return err
	}

	status, err := openStatus(result)
	if err != nil {
		return err
	}

	if status != protocol.StatusOK {
		aid = ""
	} else {
		h.log.Info("Auction opened", zap.String("aid", aid), zap.String("host", req.UID))
	}

	return ex.Reply(&protocol.OpenResponse{Status: status, AID: aid})
}

func (h *Handlers) close(ctx context.Context, ex *transport.Exchange) error {
	var req protocol.CloseRequest
	if ok, err := h.decode(ex, &req, &protocol.CloseResponse{Status: protocol.StatusERR}); !ok {
		return err
	}

	result, err := h.store.CloseAuction(ctx, req.AID, req.UID, req.Password)
	if err != nil {
		return err
	}

	status, err := closeStatus(result)
	if err != nil {
		return err
	}

	return ex.Reply(&protocol.CloseResponse{Status: status})
}

func (h *Handlers) showAsset(ctx context.Context, ex *transport.Exchange) error {
	var req protocol.ShowAssetRequest
	if ok, err := h.decode(ex, &req, &protocol.ShowAssetResponse{Status: protocol.StatusERR}); !ok {
		return err
	}

	asset, err := h.store.GetAsset(ctx, req.AID)
	if errors.Is(err, storage.ErrNotFound) {
		return ex.Reply(&protocol.ShowAssetResponse{Status: protocol.StatusNOK})
	}
	if err != nil {
		return err
	}

	return ex.Reply(&protocol.ShowAssetResponse{
		Status:    protocol.StatusOK,
		AssetName: asset.Name,
		Asset:     asset.Data,
	})
}

func (h *Handlers) bid(ctx context.Context, ex *transport.Exchange) error {
	var req protocol.BidRequest
	if ok, err := h.decode(ex, &req, &protocol.BidResponse{Status: protocol.StatusERR}); !ok {
		return err
	}

	result, err := h.store.Bid(ctx, req.UID, req.Password, req.AID, req.Value)
	if err != nil {
		return err
	}

	status, err := bidStatus(result)
	if err != nil {
		return err
	}

	return ex.Reply(&protocol.BidResponse{Status: status})
}
