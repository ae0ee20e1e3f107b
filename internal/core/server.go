// Package core provides the HTTP chassis of the OMC gateway. It builds a chi
// router that serves the event-source webhook, the delivery provider callback
// and the template preview, and enforces the cross-cutting concerns (panic
// recovery, request correlation, logging, timeouts and bearer authentication)
// before requests reach the handlers.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"omc/internal/config"
)

// Server encapsulates the dependencies of the HTTP layer.
type Server struct {
	Config *config.Config
	Logger *slog.Logger

	// Authenticator verifies bearer tokens. A nil Authenticator disables
	// authentication, which is only done in local mode.
	Authenticator *JWTAuthenticator

	// V1RouteRegistrars mount the domain handlers under /v1. They are
	// populated by the binary to keep handler packages out of core.
	V1RouteRegistrars []func(chi.Router)

	// HealthProbes are executed by GET /health.
	HealthProbes []HealthProbe

	router *chi.Mux
}

// NewServer validates its inputs and prepares an empty router. The caller
// mounts routes with MountRoutes once the registrars are in place.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	s := &Server{
		Config: cfg,
		Logger: logger,
		router: chi.NewRouter(),
	}

	if !cfg.UsesStubs() || cfg.Auth.JWTSecret != "" {
		auth, err := NewJWTAuthenticator(cfg.Auth)
		if err != nil {
			return nil, err
		}
		s.Authenticator = auth
	}

	return s, nil
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Shutdown releases server resources. Probes that hold connections are
// closed when they implement io.Closer.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.InfoContext(ctx, "server shutdown initiated")

	for _, probe := range s.HealthProbes {
		closer, ok := probe.(interface{ Close() error })
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			s.Logger.Error("error closing probe", "probe", probe.Name(), "error", err)
			return fmt.Errorf("closing %s: %w", probe.Name(), err)
		}
	}

	s.Logger.InfoContext(ctx, "server shutdown complete")
	return nil
}
