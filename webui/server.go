// Package webui provides the embedded web interface for the meme studio.
// This file contains the StudioServer organism that wires together all web UI components.
package webui

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"memestudio/webui/static"

	"go.uber.org/zap"
)

// AuthProvider is an interface for authentication middleware.
// This interface is implemented by auth.AuthMiddleware and allows
// the server to be decoupled from the auth package to avoid import cycles.
type AuthProvider interface {
	// Middleware wraps an http.Handler with authentication
	Middleware(next http.Handler) http.Handler
	// MiddlewareFunc wraps an http.HandlerFunc with authentication
	MiddlewareFunc(next http.HandlerFunc) http.HandlerFunc
	// IsAuthenticated reports whether the request carries a valid auth session
	IsAuthenticated(r *http.Request) bool
	// LoginHandler returns a handler for the login page
	LoginHandler() http.HandlerFunc
	// LogoutHandler returns a handler for logout
	LogoutHandler() http.HandlerFunc
}

// StudioServer is the main HTTP server organism for the meme studio.
// It wires together:
//   - StaticAssetHandler for serving embedded static files
//   - AuthProvider for session-based authentication (optional)
//   - LoggingMiddleware for request logging
//   - StudioAPI for REST API endpoints
//   - WebSocketBroadcaster for real-time updates
//
// Methods:
//   - NewServer() creates a configured server instance
//   - Start() begins listening on the configured port
//   - Shutdown() gracefully shuts down the server
type StudioServer struct {
	httpServer    *http.Server
	mux           *http.ServeMux
	config        ServerConfig
	logger        *zap.Logger
	authProvider  AuthProvider
	loggingMw     *LoggingMiddleware
	studioAPI     *StudioAPI
	wsBroadcaster *WebSocketBroadcaster
	staticHandler *StaticAssetHandler
}

// ServerConfig configures the StudioServer.
type ServerConfig struct {
	// Port to listen on (default: 3000)
	Port int

	// Host to bind to (default: "localhost")
	Host string

	// ReadTimeout for HTTP requests (default: 30s)
	ReadTimeout time.Duration

	// WriteTimeout for HTTP responses (default: 60s, image uploads and exports)
	WriteTimeout time.Duration

	// IdleTimeout for keep-alive connections (default: 120s)
	IdleTimeout time.Duration

	// ShutdownTimeout for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration

	// StaticConfig for static asset handler
	StaticConfig StaticAssetConfig

	// LogSkipPaths are paths to skip logging
	LogSkipPaths []string
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:            3000,
		Host:            "localhost",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    60 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		StaticConfig:    DefaultStaticAssetConfig(),
		LogSkipPaths:    []string{"/health", "/api/status"},
	}
}

// NewServer creates a new StudioServer with the given configuration.
// It wires together all the middleware and handlers.
// The authProvider is optional and can be nil for unauthenticated servers.
func NewServer(
	config ServerConfig,
	studioAPI *StudioAPI,
	authProvider AuthProvider,
	logger *zap.Logger,
) (*StudioServer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()

	staticHandler := NewStaticAssetHandler(config.StaticConfig)

	loggingConfig := LoggingMiddlewareConfig{
		SkipPaths: config.LogSkipPaths,
	}
	loggingMw := NewLoggingMiddlewareWithConfig(loggingConfig)

	wsBroadcaster := NewWebSocketBroadcaster()

	server := &StudioServer{
		mux:           mux,
		config:        config,
		logger:        logger,
		authProvider:  authProvider,
		loggingMw:     loggingMw,
		studioAPI:     studioAPI,
		wsBroadcaster: wsBroadcaster,
		staticHandler: staticHandler,
	}

	server.setupRoutes()

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server.httpServer = &http.Server{
		Addr:         addr,
		Handler:      server.rootHandler(),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	logger.Info("studio server created",
		zap.String("addr", addr),
		zap.Bool("auth_enabled", authProvider != nil),
	)

	return server, nil
}

// setupRoutes configures all the HTTP routes.
func (s *StudioServer) setupRoutes() {
	// Health check endpoint (no auth required)
	s.mux.HandleFunc("/health", s.handleHealth)

	// Static assets (no auth; the login page needs them too)
	s.staticHandler.RegisterRoutes(s.mux)

	// API endpoints, protected when auth is enabled
	apiMux := http.NewServeMux()
	s.studioAPI.RegisterRoutes(apiMux)
	s.mux.Handle("/api/", s.ProtectHandler(apiMux))

	// WebSocket endpoint
	s.mux.Handle("/ws", s.ProtectHandler(http.HandlerFunc(s.wsBroadcaster.HandleConnection)))

	// Auth routes (if enabled)
	if s.authProvider != nil {
		s.mux.HandleFunc("/login", s.authProvider.LoginHandler())
		s.mux.HandleFunc("/logout", s.authProvider.LogoutHandler())
	}

	// Studio page
	s.mux.HandleFunc("/studio", s.handleStudio)
	s.mux.HandleFunc("/", s.handleRoot)
}

// rootHandler wraps the mux with middleware.
func (s *StudioServer) rootHandler() http.Handler {
	var handler http.Handler = s.mux

	handler = s.loggingMw.Handler(handler)

	return handler
}

// handleRoot handles requests to the root path.
func (s *StudioServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	// Only handle exact root path
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.handleStudio(w, r)
}

// handleStudio serves the studio page, bouncing unauthenticated browsers to
// the login form instead of the middleware's bare 401.
func (s *StudioServer) handleStudio(w http.ResponseWriter, r *http.Request) {
	if s.authProvider != nil && !s.authProvider.IsAuthenticated(r) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	s.staticHandler.ServeStudio()(w, r)
}

// handleHealth handles health check requests.
func (s *StudioServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// Start begins listening for HTTP requests.
// It starts the WebSocket broadcaster and the HTTP server.
// This method blocks until the server is shut down.
func (s *StudioServer) Start(ctx context.Context) error {
	go s.wsBroadcaster.Start(ctx)

	s.logger.Info("studio server starting",
		zap.String("addr", s.httpServer.Addr),
	)

	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// StartTLS begins listening for HTTPS requests.
func (s *StudioServer) StartTLS(ctx context.Context, certFile, keyFile string) error {
	go s.wsBroadcaster.Start(ctx)

	s.logger.Info("studio server starting with TLS",
		zap.String("addr", s.httpServer.Addr),
	)

	err := s.httpServer.ListenAndServeTLS(certFile, keyFile)
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("https server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *StudioServer) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down studio server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown error: %w", err)
	}

	s.logger.Info("studio server stopped")
	return nil
}

// GetBroadcaster returns the WebSocket broadcaster for sending messages.
func (s *StudioServer) GetBroadcaster() *WebSocketBroadcaster {
	return s.wsBroadcaster
}

// GetStudioAPI returns the studio API for direct access.
func (s *StudioServer) GetStudioAPI() *StudioAPI {
	return s.studioAPI
}

// Addr returns the server's address.
func (s *StudioServer) Addr() string {
	return s.httpServer.Addr
}

// ProtectHandler wraps a handler with auth middleware if enabled.
func (s *StudioServer) ProtectHandler(handler http.Handler) http.Handler {
	if s.authProvider != nil {
		return s.authProvider.Middleware(handler)
	}
	return handler
}

// ProtectHandlerFunc wraps a handler function with auth middleware if enabled.
func (s *StudioServer) ProtectHandlerFunc(handler http.HandlerFunc) http.HandlerFunc {
	if s.authProvider != nil {
		return s.authProvider.MiddlewareFunc(handler)
	}
	return handler
}

// ServeEmbeddedFile serves a specific file from the embedded filesystem.
func (s *StudioServer) ServeEmbeddedFile(w http.ResponseWriter, name string) {
	data, err := static.ReadFile(name)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	contentType := s.staticHandler.detectContentType(name)
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// HasAuth returns whether authentication is enabled.
func (s *StudioServer) HasAuth() bool {
	return s.authProvider != nil
}
