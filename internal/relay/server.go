package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/mkbright/sentry-relay/internal/transport"
)

// Server receives signed Sentry webhooks and relays them to chat channels.
type Server struct {
	config    Config
	router    *Router
	issues    IssueFetcher
	messenger transport.Messenger
	logger    *slog.Logger
	server    *http.Server
}

// New creates a relay server. The Router, issue fetcher, and messenger
// are constructed by the caller; the server only reads them.
func New(cfg Config, router *Router, issues IssueFetcher, messenger transport.Messenger, logger *slog.Logger) *Server {
	if cfg.MaxBodySize == 0 {
		cfg.MaxBodySize = DefaultMaxBodySize
	}

	return &Server{
		config:    cfg,
		router:    router,
		issues:    issues,
		messenger: messenger,
		logger:    logger,
	}
}

// DefaultMaxBodySize is the body limit applied when the config leaves it unset.
const DefaultMaxBodySize = 1048576 // 1 MB

// Start starts the relay HTTP server (blocking until ctx is cancelled).
func (s *Server) Start(ctx context.Context) error {
	router := s.setupRoutes()

	s.server = &http.Server{
		Addr:         s.config.Listen,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("relay server starting", "listen", s.config.Listen, "path", s.config.Path)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("relay server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("relay server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("relay server error: %w", err)
	}
}

// setupRoutes configures the HTTP router.
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Post(s.config.Path+"/{channel}", s.handleRelay)

	return r
}

// loggingMiddleware logs HTTP requests (excludes payload bodies).
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("relay request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// handleRelay runs one webhook through the relay pipeline. Every outcome
// is terminal: there are no retries and no resumption.
func (s *Server) handleRelay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	channel := chi.URLParam(r, "channel")
	destination := "#" + channel

	// Capture the raw bytes first: the signature covers the wire form,
	// so nothing may decode the body before verification.
	limitedReader := io.LimitReader(r.Body, s.config.MaxBodySize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to read request body")
		return
	}
	if int64(len(body)) > s.config.MaxBodySize {
		s.respondError(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}

	signature := r.Header.Get(s.config.SignatureHeader)
	if err := verifySignature(body, signature, s.config.Secret); err != nil {
		s.logger.Warn("invalid signature", "channel", destination)
		s.respondError(w, http.StatusForbidden, "forbidden")
		return
	}

	event := parseEvent(body)
	if event.Partial {
		// Keep going with the sentinel so malformed payloads stay observable.
		s.logger.Warn("malformed payload; no project slug", "channel", destination)
	}

	joined, err := s.messenger.Joined(ctx, destination)
	if err != nil {
		s.logger.Error("destination check failed", "channel", destination, "error", err)
		s.respondError(w, http.StatusBadGateway, "destination check failed")
		return
	}
	if !joined {
		s.logger.Warn("can't relay to non-present channel", "channel", destination)
		s.respondError(w, http.StatusNotFound, "unknown channel")
		return
	}

	if s.router.Ignored(event.ProjectSlug) {
		s.logger.Info("project ignored, not relaying", "project", event.ProjectSlug, "channel", destination)
		s.respondJSON(w, http.StatusOK, StatusResponse{Status: "valid message, not relayed"})
		return
	}

	token, ok := s.router.Token(event.ProjectSlug)
	if !ok {
		s.logger.Warn("no token for project, dropping event", "project", event.ProjectSlug)
		s.respondError(w, http.StatusForbidden, "valid message, but no token found")
		return
	}

	issue, err := s.issues.Issue(ctx, event.IssueID, token)
	if err != nil {
		s.logger.Error("issue enrichment failed",
			"project", event.ProjectSlug,
			"issue_id", event.IssueID,
			"error", err,
		)
		s.respondError(w, http.StatusBadGateway, "issue enrichment failed")
		return
	}

	message := FormatNotification(event.ProjectSlug, event.Action, event.IssueTitle, issue.Permalink)
	deliveryID := uuid.NewString()

	if err := s.messenger.Send(ctx, destination, message); err != nil {
		s.logger.Error("message delivery failed",
			"channel", destination,
			"delivery_id", deliveryID,
			"error", err,
		)
		s.respondError(w, http.StatusBadGateway, "message delivery failed")
		return
	}

	s.logger.Info("message relayed",
		"channel", destination,
		"project", event.ProjectSlug,
		"action", event.Action,
		"delivery_id", deliveryID,
	)

	s.respondJSON(w, http.StatusAccepted, RelayResponse{
		DeliveryID: deliveryID,
		Channel:    destination,
	})
}

// respondJSON sends a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends a JSON error response.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{Error: message})
}
