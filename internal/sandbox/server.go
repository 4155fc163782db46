// Package sandbox provides a local stand-in for the remote authorization and
// field-creation endpoints.
//
// It issues bearer tokens for one configured client, accepts field-creation
// payloads, and can be told to reject specific labels with a given status and
// body. It backs the sandbox subcommand (a rehearsal target for real CSV
// files) and the end-to-end tests.
package sandbox

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/halofields/internal/fieldapi"
)

// Config configures a sandbox server.
type Config struct {
	ClientID     string
	ClientSecret string
	TokenTTL     time.Duration

	// RateLimit is the number of field-creation requests allowed per
	// RateWindow. Zero disables limiting.
	RateLimit  int
	RateWindow time.Duration
}

// Failure is a canned error answer for one label.
type Failure struct {
	Status int
	Body   string
}

// CreatedField is a field accepted by the sandbox.
type CreatedField struct {
	ID         int                   `json:"id"`
	RequestID  string                `json:"request_id"`
	ReceivedAt time.Time             `json:"received_at"`
	Payload    fieldapi.FieldPayload `json:"payload"`
}

// Server is the sandbox HTTP server.
type Server struct {
	cfg     Config
	router  *chi.Mux
	server  *http.Server
	limiter *rateLimiter
	now     func() time.Time

	mu            sync.Mutex
	tokens        map[string]time.Time
	fields        []CreatedField
	failures      map[string]Failure
	tokenRequests int
}

// New creates a sandbox server.
func New(cfg Config) *Server {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}

	s := &Server{
		cfg:      cfg,
		router:   chi.NewRouter(),
		now:      time.Now,
		tokens:   make(map[string]time.Time),
		failures: make(map[string]Failure),
	}
	if cfg.RateLimit > 0 && cfg.RateWindow > 0 {
		s.limiter = newRateLimiter(cfg.RateLimit, cfg.RateWindow)
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(Logger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Post("/auth/token", s.handleToken)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(s.requireBearer)
		if s.limiter != nil {
			r.Use(s.limiter.middleware)
		}
		r.Get("/fieldinfo", s.handleListFields)
		r.Post("/fieldinfo", s.handleCreateField)
	})
}

// Handler returns the root handler, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// FailLabel makes every creation request for label answer with status and
// body.
func (s *Server) FailLabel(label string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[label] = Failure{Status: status, Body: body}
}

// Fields returns the fields accepted so far, in arrival order.
func (s *Server) Fields() []CreatedField {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CreatedField, len(s.fields))
	copy(out, s.fields)
	return out
}

// TokenRequests returns how many token requests succeeded.
func (s *Server) TokenRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenRequests
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("sandbox listening", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
