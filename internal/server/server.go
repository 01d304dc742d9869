// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/cmdroute/internal/cmderr"
	"github.com/jeranaias/cmdroute/internal/commands"
	"github.com/jeranaias/cmdroute/internal/storage"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultAddr is the listen address used when none is configured.
	DefaultAddr = "127.0.0.1:8090"

	// MaxRequestBodySize bounds a /v1/route request body.
	MaxRequestBodySize = 64 * 1024

	// MaxTextLength bounds the text of one message.
	MaxTextLength = 4000

	// Version is the API version reported by /health.
	Version = "1.0.0"
)

// Dispatcher routes one chat message. *commands.Router implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, caller commands.Caller, text string) (*commands.Reply, error)
}

// ============================================================================
// WIRE TYPES
// ============================================================================

// RouteRequest is one chat message.
type RouteRequest struct {
	User  string `json:"user"`
	Name  string `json:"name,omitempty"`
	Level uint32 `json:"level"`
	Text  string `json:"text"`
}

// Caller returns the author of the message.
func (r RouteRequest) Caller() commands.Caller {
	return commands.Caller{ID: r.User, Name: r.Name, Level: r.Level}
}

// ErrorBody describes a rejected or failed dispatch.
type ErrorBody struct {
	// Kind is the dispatch outcome, e.g. "not_found" or "parse_error"
	Kind    string `json:"kind"`
	Message string `json:"message"`

	// Start and End locate parse errors in the message
	Start *int `json:"start,omitempty"`
	End   *int `json:"end,omitempty"`

	// Usage lists the accepted forms when arguments did not match
	Usage []string `json:"usage,omitempty"`
}

// RouteResponse carries either a reply or an error. Ignored is set for
// messages that are not commands.
type RouteResponse struct {
	Reply   *commands.Reply `json:"reply,omitempty"`
	Error   *ErrorBody      `json:"error,omitempty"`
	Ignored bool            `json:"ignored,omitempty"`
}

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// ============================================================================
// SERVER
// ============================================================================

// Server serves a Dispatcher over HTTP.
type Server struct {
	addr       string
	mux        *http.ServeMux
	server     *http.Server
	dispatcher Dispatcher
	auth       *AuthConfig
	logger     *zap.Logger
	started    time.Time
}

// Option is a functional option for configuring a Server.
type Option func(*Server)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithAuthToken requires "Authorization: Bearer <token>" on every endpoint
// except /health. An empty token disables authentication.
func WithAuthToken(token string) Option {
	return func(s *Server) {
		s.auth = &AuthConfig{Enabled: token != "", BearerToken: token}
	}
}

// WithLogger sets the logger for requests and dispatch failures.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a server dispatching through d.
func New(d Dispatcher, opts ...Option) *Server {
	s := &Server{
		addr:       DefaultAddr,
		mux:        http.NewServeMux(),
		dispatcher: d,
		auth:       DefaultAuthConfig(),
		logger:     zap.NewNop(),
		started:    time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	authed := AuthMiddleware(s.auth, s.logger)

	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.Handle("POST /v1/route", authed(http.HandlerFunc(s.handleRoute)))
	s.mux.Handle("GET /ws", authed(s.wsHandler()))
}

// Handler returns the routes wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return Chain(
		RecoveryMiddleware(s.logger),
		SecurityHeadersMiddleware(),
		LoggingMiddleware(s.logger),
	)(s.mux)
}

// ============================================================================
// HANDLERS
// ============================================================================

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		Version:       Version,
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
	})
}

// handleRoute handles POST /v1/route.
func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	var req RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, invalid("request body too large"))
			return
		}
		s.logger.Debug("Invalid request body", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, invalid("invalid request format"))
		return
	}
	if msg := validate(req); msg != "" {
		writeJSON(w, http.StatusBadRequest, invalid(msg))
		return
	}

	status, resp := s.route(r.Context(), req)
	writeJSON(w, status, resp)
}

// route dispatches req and maps the outcome to an HTTP status.
func (s *Server) route(ctx context.Context, req RouteRequest) (int, RouteResponse) {
	reply, err := s.dispatcher.Dispatch(ctx, req.Caller(), req.Text)
	if err == nil {
		return http.StatusOK, RouteResponse{Reply: reply}
	}
	if errors.Is(err, cmderr.ErrNotCommand) {
		return http.StatusOK, RouteResponse{Ignored: true}
	}

	body, status := DescribeError(err)
	if status == http.StatusInternalServerError {
		// handler failures stay in the log
		s.logger.Error("Dispatch failed", zap.String("user", req.User), zap.Error(err))
		body.Message = "command failed"
	}
	return status, RouteResponse{Error: body}
}

// DescribeError converts a dispatch error into its wire form and the HTTP
// status it is served with.
func DescribeError(err error) (*ErrorBody, int) {
	outcome := commands.OutcomeOf(err)
	body := &ErrorBody{Kind: string(outcome), Message: err.Error()}

	switch outcome {
	case storage.OutcomeParseError:
		var perr *cmderr.ParseError
		errors.As(err, &perr)
		body.Start, body.End = &perr.Start, &perr.End
		return body, http.StatusBadRequest
	case storage.OutcomeNotFound:
		return body, http.StatusNotFound
	case storage.OutcomeForbidden:
		return body, http.StatusForbidden
	case storage.OutcomeRateLimited:
		return body, http.StatusTooManyRequests
	case storage.OutcomeNoMatch:
		var usage *commands.UsageError
		if errors.As(err, &usage) {
			body.Usage = usage.Usage
		}
		return body, http.StatusUnprocessableEntity
	default:
		return body, http.StatusInternalServerError
	}
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully within timeout.
func (s *Server) Run(ctx context.Context, timeout time.Duration) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln, timeout)
}

// Serve is like Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, timeout time.Duration) error {
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", zap.String("addr", ln.Addr().String()), zap.String("version", Version))
		errCh <- s.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ============================================================================
// HELPERS
// ============================================================================

func validate(req RouteRequest) string {
	switch {
	case req.User == "":
		return "user is required"
	case len(req.Text) > MaxTextLength:
		return "text is too long"
	default:
		return ""
	}
}

func invalid(message string) RouteResponse {
	return RouteResponse{Error: &ErrorBody{Kind: "invalid_request", Message: message}}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
