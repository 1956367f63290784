package status

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Server runs the status router next to the auction server.
type Server struct {
	http *http.Server
	log  *zap.Logger
}

func NewServer(addr string, handler http.Handler, log *zap.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:    addr,
			Handler: handler,
		},
		log: log,
	}
}

// Start serves in the background. Failing to serve is logged, never fatal.
func (s *Server) Start() {
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("Http server errored", zap.Error(err))
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.http.SetKeepAlivesEnabled(false)
	return s.http.Shutdown(ctx)
}
