package dispatch

import (
	"errors"
	"fmt"

	"github.com/luma/auctioneer/protocol"
	"github.com/luma/auctioneer/storage"
)

// ErrUnknownResult is returned when the store answers with a result no
// response status exists for.
var ErrUnknownResult = errors.New("Record store returned an unknown result")

func loginStatus(r storage.LoginResult) (protocol.Status, error) {
	switch r {
	case storage.LoginOK:
		return protocol.StatusOK, nil
	case storage.LoginCreated:
		return protocol.StatusREG, nil
	case storage.LoginRejected:
		return protocol.StatusNOK, nil
	}

	return "", fmt.Errorf("%w: login result %d", ErrUnknownResult, r)
}

func accountStatus(r storage.AccountResult) (protocol.Status, error) {
	switch r {
	case storage.AccountOK:
		return protocol.StatusOK, nil
	case storage.AccountNotLoggedIn:
		return protocol.StatusNOK, nil
	case storage.AccountUnknownUser:
		return protocol.StatusUNR, nil
	}

	return "", fmt.Errorf("%w: account result %d", ErrUnknownResult, r)
}

func listStatus(r storage.ListResult) (protocol.Status, error) {
	switch r {
	case storage.ListOK:
		return protocol.StatusOK, nil
	case storage.ListNone:
		return protocol.StatusNOK, nil
	case storage.ListNotLoggedIn:
		return protocol.StatusNLG, nil
	}

	return "", fmt.Errorf("%w: list result %d", ErrUnknownResult, r)
}

func openStatus(r storage.OpenResult) (protocol.Status, error) {
	switch r {
	case storage.OpenOK:
		return protocol.StatusOK, nil
	case storage.OpenNotLoggedIn:
		return protocol.StatusNLG, nil
	case storage.OpenFailed:
		return protocol.StatusNOK, nil
	}

	return "", fmt.Errorf("%w: open result %d", ErrUnknownResult, r)
}

func closeStatus(r storage.CloseResult) (protocol.Status, error) {
	switch r {
	case storage.CloseOK:
		return protocol.StatusOK, nil
	case storage.CloseBadCredentials:
		return protocol.StatusNOK, nil
	case storage.CloseNotLoggedIn:
		return protocol.StatusNLG, nil
	case storage.CloseNotFound:
		return protocol.StatusEAU, nil
	case storage.CloseNotOwner:
		return protocol.StatusEOW, nil
	case storage.CloseAlreadyClosed:
		return protocol.StatusEND, nil
	}

	return "", fmt.Errorf("%w: close result %d", ErrUnknownResult, r)
}

func bidStatus(r storage.BidResult) (protocol.Status, error) {
	switch r {
	case storage.BidAccepted:
		return protocol.StatusACC, nil
	case storage.BidRefusedTooLow:
		return protocol.StatusREF, nil
	case storage.BidNotLoggedIn:
		return protocol.StatusNLG, nil
	case storage.BidOwnerCannotBid:
		return protocol.StatusILG, nil
	case storage.BidNotFound:
		return protocol.StatusNOK, nil
	}

	return "", fmt.Errorf("%w: bid result %d", ErrUnknownResult, r)
}
