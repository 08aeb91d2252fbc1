// internal/server/server.go
package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"gitpanel/internal/api"
	"gitpanel/internal/cache"
	"gitpanel/internal/config"
	"gitpanel/internal/logging"
	"gitpanel/internal/middleware"
	"gitpanel/internal/service"

	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// NewService builds the git service described by cfg. The returned close
// function releases the history cache and is never nil.
func NewService(cfg *config.Config, logger *logging.Logger) (*service.Service, func() error, error) {
	scope, err := cfg.IdentityScope()
	if err != nil {
		return nil, nil, err
	}

	opts := service.Options{
		IdentityScope: scope,
		Logger:        logger.Logger,
	}
	closer := func() error { return nil }

	if cfg.Cache.Enabled {
		c, err := cache.Open(cache.Options{
			Path: cfg.Cache.Path,
			Size: cfg.Cache.Size,
		}, logger.Named("cache"))
		if err != nil {
			return nil, nil, fmt.Errorf("opening history cache: %w", err)
		}
		opts.HistoryCache = c
		closer = c.Close
	}

	return service.New(opts), closer, nil
}

type Server struct {
	logger *logging.Logger
	http   *http.Server
	close  func() error
}

func New(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	svc, closer, err := NewService(cfg, logger)
	if err != nil {
		return nil, err
	}

	handler := middleware.Chain(
		api.NewHandler(svc, logger).Routes(),
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recover(logger),
	)

	return &Server{
		logger: logger,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		close: closer,
	}, nil
}

func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	defer func() {
		if err := s.close(); err != nil {
			s.logger.Warn("closing history cache", zap.Error(err))
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", zap.String("address", s.http.Addr))
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
