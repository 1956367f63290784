package client

import (
	"context"
	"fmt"

	"github.com/luma/auctioneer/protocol"
)

// rejected turns a status level ERR into an error.
func rejected(code protocol.Code, status protocol.Status) error {
	if status != protocol.StatusERR {
		return nil
	}

	return &ExchangeError{Code: code, Err: fmt.Errorf("%w: %s carried status ERR", protocol.ErrProtocolError, code)}
}

func (c *Client) Login(ctx context.Context, uid, password string) (protocol.Status, error) {
	var resp protocol.LoginResponse
	if err := c.Datagram(ctx, &protocol.LoginRequest{UID: uid, Password: password}, &resp); err != nil {
		return "", err
	}

	return resp.Status, rejected(protocol.LIN, resp.Status)
}

func (c *Client) Logout(ctx context.Context, uid, password string) (protocol.Status, error) {
	var resp protocol.LogoutResponse
	if err := c.Datagram(ctx, &protocol.LogoutRequest{UID: uid, Password: password}, &resp); err != nil {
		return "", err
	}

	return resp.Status, rejected(protocol.LOU, resp.Status)
}

func (c *Client) Unregister(ctx context.Context, uid, password string) (protocol.Status, error) {
	var resp protocol.UnregisterResponse
	if err := c.Datagram(ctx, &protocol.UnregisterRequest{UID: uid, Password: password}, &resp); err != nil {
		return "", err
	}

	return resp.Status, rejected(protocol.UNR, resp.Status)
}

func (c *Client) MyAuctions(ctx context.Context, uid string) (*protocol.MyAuctionsResponse, error) {
	var resp protocol.MyAuctionsResponse
	if err := c.Datagram(ctx, &protocol.MyAuctionsRequest{UID: uid}, &resp); err != nil {
		return nil, err
	}

	return &resp, rejected(protocol.LMA, resp.Status)
}

func (c *Client) MyBids(ctx context.Context, uid string) (*protocol.MyBidsResponse, error) {
	var resp protocol.MyBidsResponse
	if err := c.Datagram(ctx, &protocol.MyBidsRequest{UID: uid}, &resp); err != nil {
		return nil, err
	}

	return &resp, rejected(protocol.LMB, resp.Status)
}

func (c *Client) List(ctx context.Context) (*protocol.ListResponse, error) {
	var resp protocol.ListResponse
	if err := c.Datagram(ctx, &protocol.ListRequest{}, &resp); err != nil {
		return nil, err
	}

	return &resp, rejected(protocol.LST, resp.Status)
}

func (c *Client) ShowRecord(ctx context.Context, aid string) (*protocol.ShowRecordResponse, error) {
	var resp protocol.ShowRecordResponse
	if err := c.Datagram(ctx, &protocol.ShowRecordRequest{AID: aid}, &resp); err != nil {
		return nil, err
	}

	return &resp, rejected(protocol.SRC, resp.Status)
}

func (c *Client) Open(ctx context.Context, req *protocol.OpenRequest) (*protocol.OpenResponse, error) {
	var resp protocol.OpenResponse
	if err := c.Stream(ctx, req, &resp); err != nil {
		return nil, err
	}

	return &resp, rejected(protocol.OPA, resp.Status)
}

func (c *Client) Close(ctx context.Context, uid, password, aid string) (protocol.Status, error) {
	var resp protocol.CloseResponse
	if err := c.Stream(ctx, &protocol.CloseRequest{UID: uid, Password: password, AID: aid}, &resp); err != nil {
		return "", err
	}

	return resp.Status, rejected(protocol.CLS, resp.Status)
}

func (c *Client) ShowAsset(ctx context.Context, aid string) (*protocol.ShowAssetResponse, error) {
	var resp protocol.ShowAssetResponse
	if err := c.Stream(ctx, &protocol.ShowAssetRequest{AID: aid}, &resp); err != nil {
		return nil, err
	}

	return &resp, rejected(protocol.SAS, resp.Status)
}

func (c *Client) Bid(ctx context.Context, uid, password, aid string, value int) (protocol.Status, error) {
	var resp protocol.BidResponse
	req := &protocol.BidRequest{UID: uid, Password: password, AID: aid, Value: value}
	if err := c.Stream(ctx, req, &resp); err != nil {
		return "", err
	}

	return resp.Status, rejected(protocol.BID, resp.Status)
}
