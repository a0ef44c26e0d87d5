// Package gateway exposes the orchestrator over HTTP: session issuance,
// chat, history, tool discovery, health, and metrics.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/inkwell-ai/inkwell/internal/auth"
	"github.com/inkwell-ai/inkwell/internal/observability"
	"github.com/inkwell-ai/inkwell/internal/session"
	"github.com/inkwell-ai/inkwell/internal/tools"
	"github.com/inkwell-ai/inkwell/pkg/models"
)

// ChatService is the orchestrator surface the gateway needs.
type ChatService interface {
	HandleMessage(ctx context.Context, req models.ChatRequest) (models.ChatResponse, error)
	History(ctx context.Context, conversationID string, limit int) ([]*models.Message, error)
}

// ToolLister lists the tools the execution service advertises.
type ToolLister interface {
	List(ctx context.Context) ([]tools.ToolInfo, error)
}

// Options wires a Server.
type Options struct {
	Sessions     *session.Manager
	Operators    *auth.JWTService
	Chat         ChatService
	Tools        ToolLister
	HistoryLimit int
	Logger       *slog.Logger
	Metrics      *observability.Metrics
	Gatherer     prometheus.Gatherer
}

// Server is the HTTP gateway.
type Server struct {
	httpServer   *http.Server
	sessions     *session.Manager
	operators    *auth.JWTService
	chat         ChatService
	tools        ToolLister
	historyLimit int
	logger       *slog.Logger
	metrics      *observability.Metrics
}

// NewServer builds the gateway listening on addr.
func NewServer(addr string, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 200
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		sessions:     opts.Sessions,
		operators:    opts.Operators,
		chat:         opts.Chat,
		tools:        opts.Tools,
		historyLimit: opts.HistoryLimit,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/session", s.handleLogin)
	mux.HandleFunc("POST /api/session/logout", s.handleLogout)
	mux.HandleFunc("POST /api/chat", s.withSession(s.handleChat))
	mux.HandleFunc("GET /api/history", s.withSession(s.handleHistory))
	mux.HandleFunc("GET /api/tools", auth.RequireOperator(s.operators, s.handleTools))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

// Handler returns the gateway's HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until Shutdown is called or the listener fails.
func (s *Server) Start() error {
	s.logger.Info("gateway listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("gateway: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type contextKey string

const userContextKey contextKey = "inkwell.user"

// withSession authenticates the bearer session token and stores the bound
// user context on the request.
func (s *Server) withSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := auth.BearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing session token")
			return
		}
		user, err := s.sessions.Validate(token)
		if err != nil {
			if errors.Is(err, session.ErrExpired) {
				writeError(w, http.StatusUnauthorized, "session expired")
				return
			}
			writeError(w, http.StatusUnauthorized, "invalid session token")
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

func sessionUser(r *http.Request) models.UserContext {
	user, _ := r.Context().Value(userContextKey).(models.UserContext)
	return user
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
