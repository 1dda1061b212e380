package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/aretw0/sentinel"
	"github.com/aretw0/sentinel/internal/logging"
	"github.com/aretw0/sentinel/pkg/console"
	"github.com/aretw0/sentinel/pkg/domain"
	"github.com/aretw0/sentinel/pkg/runner"
	"github.com/aretw0/sentinel/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MaxBodyBytes caps request bodies. Input size is further limited by the console sanitizer.
const MaxBodyBytes = 64 << 10

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// TerminalRequest is the body of POST /terminal.
type TerminalRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Input     string `json:"input"`
}

// Server serves the chat and terminal widgets of one Console over HTTP.
type Server struct {
	Console *console.Console
	Streams *StreamManager
	Limiter *Limiter

	gatherer   prometheus.Gatherer
	apiVersion string
	logger     *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRateLimit limits turns per session (or per client address for new sessions).
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *Server) {
		s.Limiter = NewLimiter(perSecond, burst)
	}
}

// WithMetrics exposes g on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// NewServer creates a Server and subscribes it to the console's transcript updates.
// The OpenAPI document is validated here so a broken build fails at startup.
func NewServer(cons *console.Console, opts ...Option) (*Server, error) {
	s := &Server{
		Console: cons,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Limiter == nil {
		s.Limiter = NewLimiter(0, 0)
	}
	s.Streams = NewStreamManager(s.logger)

	doc, err := LoadSpec(context.Background())
	if err != nil {
		return nil, err
	}
	s.apiVersion = doc.Info.Version

	cons.Subscribe(func(u console.Update) {
		payload, err := json.Marshal(u)
		if err != nil {
			s.logger.Error("failed to encode update", "error", err)
			return
		}
		s.Streams.Broadcast(u.SessionID, payload)
	})
	return s, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Post("/chat", s.Chat)
	r.Post("/terminal", s.Terminal)
	r.Get("/sessions/{id}/{channel}", s.GetTranscript)
	r.Delete("/sessions/{id}", s.ResetSession)
	r.Get("/rules", s.ListRules)
	r.Get("/commands", s.ListCommands)
	r.Get("/events", s.SubscribeEvents)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Sentinel API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// Chat handles POST /chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var body ChatRequest
	if !s.decode(w, r, &body) {
		return
	}
	sessionID := s.sessionID(body.SessionID)
	if !s.allow(w, r, body.SessionID) {
		return
	}

	turn, err := s.Console.Chat(r.Context(), sessionID, body.Message)
	if err != nil {
		s.fail(w, "Chat", err)
		return
	}
	s.respond(w, http.StatusOK, turn)
}

// Terminal handles POST /terminal.
func (s *Server) Terminal(w http.ResponseWriter, r *http.Request) {
	var body TerminalRequest
	if !s.decode(w, r, &body) {
		return
	}
	sessionID := s.sessionID(body.SessionID)
	if !s.allow(w, r, body.SessionID) {
		return
	}

	turn, err := s.Console.Terminal(r.Context(), sessionID, body.Input)
	if err != nil {
		s.fail(w, "Terminal", err)
		return
	}
	s.respond(w, http.StatusOK, turn)
}

// GetTranscript handles GET /sessions/{id}/{channel}. It never starts a session.
func (s *Server) GetTranscript(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ch := domain.Channel(chi.URLParam(r, "channel"))

	t, err := s.Console.Sessions().Load(r.Context(), id, ch)
	if err != nil {
		s.fail(w, "GetTranscript", err)
		return
	}
	s.respond(w, http.StatusOK, t)
}

// ResetSession handles DELETE /sessions/{id}.
func (s *Server) ResetSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Console.Reset(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, "ResetSession", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListRules handles GET /rules.
func (s *Server) ListRules(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, s.Console.Engine().Profile().Rules.Rules())
}

// ListCommands handles GET /commands.
func (s *Server) ListCommands(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, s.Console.Engine().Profile().Commands.Commands())
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	engine := s.Console.Engine()
	mode := "offline"
	if engine.Online() {
		mode = "online"
	}
	s.respond(w, http.StatusOK, map[string]string{
		"app":         "sentinel-http",
		"version":     strings.TrimSpace(sentinel.Version),
		"api_version": s.apiVersion,
		"profile":     engine.Profile().Name,
		"mode":        mode,
	})
}

// SubscribeEvents handles GET /events (SSE). Each event carries one console.Update.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		s.writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	var filter domain.Channel
	if v := r.URL.Query().Get("channel"); v != "" {
		filter = domain.Channel(v)
		if !filter.Valid() {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown channel %q", v))
			return
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()
	s.logger.Info("SSE client subscribed", "session_id", sessionID, "channel", filter)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE client disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if filter != "" {
				var u console.Update
				if err := json.Unmarshal(msg, &u); err == nil && u.Channel != filter {
					continue
				}
			}
			fmt.Fprintf(w, "event: update\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// -- Helpers --

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.logger.Warn("invalid request body", "path", r.URL.Path, "error", err)
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// sessionID returns id, or a fresh one for clients starting a session.
func (s *Server) sessionID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

func (s *Server) allow(w http.ResponseWriter, r *http.Request, sessionID string) bool {
	key := sessionID
	if key == "" {
		key = "addr:" + clientAddr(r)
	}
	if s.Limiter.Allow(key) {
		return true
	}
	s.logger.Warn("rate limit exceeded", "key", key)
	w.Header().Set("Retry-After", "1")
	s.writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
	return false
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// fail maps console errors to HTTP statuses.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, session.ErrInvalidSession),
		errors.Is(err, runner.ErrInputTooLarge),
		errors.Is(err, runner.ErrInvalidUTF8):
		s.logger.Warn(op+": request rejected", "error", err)
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrSessionNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error(op+" failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.respond(w, status, map[string]string{"error": msg})
}

func (s *Server) respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}
