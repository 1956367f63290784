package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/luma/auctioneer/protocol"
)

// Handler processes one Exchange. Errors are failures of the exchange
// itself; protocol level rejections are replies, not errors.
type Handler func(ctx context.Context, ex *Exchange) error

// Registry maps type codes to handlers for one transport. It is not
// modified after construction.
type Registry struct {
	handlers map[protocol.Code]Handler
	fallback Handler
}

// NewRegistry copies handlers. Codes without a handler, and messages whose
// code cannot be read at all, go to fallback.
func NewRegistry(fallback Handler, handlers map[protocol.Code]Handler) *Registry {
	r := &Registry{
		handlers: make(map[protocol.Code]Handler, len(handlers)),
		fallback: fallback,
	}

	for code, h := range handlers {
		r.handlers[code] = h
	}

	return r
}

func (r *Registry) Lookup(code protocol.Code) Handler {
	if h, ok := r.handlers[code]; ok {
		return h
	}

	return r.fallback
}

// Dispatch reads the type code of ex, resolves its handler and runs it.
// A panic in the handler is recovered and returned as ErrHandlerPanic.
func (r *Registry) Dispatch(ctx context.Context, ex *Exchange) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, p)
		}
	}()

	code, err := protocol.ReadCode(ex.Source)
	if err != nil {
		if !errors.Is(err, protocol.ErrMalformedMessage) {
			return err
		}

		return r.fallback(ctx, ex)
	}

	ex.Code = code
	return r.Lookup(code)(ctx, ex)
}
