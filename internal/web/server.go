// Package web exposes the access-control API over HTTP.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/facegate/facegate/internal/audit"
	"github.com/facegate/facegate/internal/config"
	"github.com/facegate/facegate/internal/database"
	"github.com/facegate/facegate/internal/encoder"
	"github.com/facegate/facegate/internal/web/middleware"
)

// Server represents the web server
type Server struct {
	config     *config.Config
	router     *chi.Mux
	httpServer *http.Server
	store      database.Store
	encoder    encoder.Encoder
	index      *database.HNSWIndex
	audit      *audit.Logger
}

// NewServer creates a new web server. auditLog may be nil when auditing is
// disabled.
func NewServer(cfg *config.Config, port int, host string, store database.Store, enc encoder.Encoder, auditLog *audit.Logger) *Server {
	r := chi.NewRouter()

	s := &Server{
		config:  cfg,
		router:  r,
		store:   store,
		encoder: enc,
		index:   database.NewHNSWIndex(),
		audit:   auditLog,
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(middleware.CORS())

	// Set up routes
	s.setupRoutes()

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// WarmIndex builds the candidate index from the current roster so the first
// match query does not pay the build cost. Failures are logged only; match
// queries fall back to exact scans while the index is empty.
func (s *Server) WarmIndex(ctx context.Context) {
	entries, err := s.store.Entries(ctx)
	if err != nil {
		log.Printf("candidate index warmup failed: %v", err)
		return
	}
	if err := s.index.Build(entries); err != nil {
		log.Printf("candidate index warmup failed: %v", err)
		return
	}
	log.Printf("candidate index ready (%d entries)", s.index.Len())
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
