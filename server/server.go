package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/pterm/pterm"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

type Server struct {
	httpServer *http.Server
	logger     *pterm.Logger
}

// New serves handler over HTTP/1.1 and cleartext HTTP/2.
func New(address string, handler http.Handler, logger *pterm.Logger) *Server {
	if logger == nil {
		logger = pterm.DefaultLogger.WithLevel(pterm.LogLevelInfo)
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              address,
			Handler:           h2c.NewHandler(handler, &http2.Server{}),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("Starting static server", s.logger.Args("address", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down static server", s.logger.Args("address", s.httpServer.Addr))
	return s.httpServer.Shutdown(ctx)
}
