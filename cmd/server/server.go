package main

import (
	"time"

	"github.com/JaimeStill/document-center/internal/config"
	"github.com/JaimeStill/document-center/internal/infrastructure"
	"github.com/JaimeStill/document-center/internal/routes"
	"github.com/JaimeStill/document-center/internal/server"
)

// Server coordinates the lifecycle of all subsystems.
type Server struct {
	infra  *infrastructure.Infrastructure
	domain *Domain
	http   server.System
}

// NewServer creates and wires every subsystem without starting any of them.
func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	domain, err := NewDomain(infra, cfg)
	if err != nil {
		return nil, err
	}

	router := routes.New(infra.Logger)
	registerRoutes(router, infra, domain)

	mux, err := router.Build()
	if err != nil {
		return nil, err
	}
	handler := buildMiddleware(infra.Logger).Apply(mux)

	infra.Logger.Info("server initialized", "addr", cfg.Server.Addr())

	return &Server{
		infra:  infra,
		domain: domain,
		http:   server.New(&cfg.Server, handler, infra.Logger),
	}, nil
}

// Start begins all subsystems. Readiness flips once every startup hook has
// completed.
func (s *Server) Start() error {
	s.infra.Logger.Info("starting service")

	if err := s.infra.Start(); err != nil {
		return err
	}

	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("all subsystems ready")
	}()

	return nil
}

// Shutdown gracefully stops all subsystems within timeout.
func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}
