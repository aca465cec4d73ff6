package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mattjoyce/voicegw/internal/log"
	"github.com/mattjoyce/voicegw/internal/remote"
)

// Config holds webhook server configuration.
type Config struct {
	// Listen is the address the HTTP server binds.
	Listen string

	// Path is the URL path callbacks arrive at, derived from the
	// registered callback URL.
	Path string

	// Secret is the shared HMAC secret for signature verification.
	Secret string

	// MaxBodySize is the maximum allowed request body size in bytes.
	MaxBodySize int64
}

// Server receives signed completion callbacks and feeds them to the Dispatcher.
type Server struct {
	config     Config
	dispatcher *Dispatcher
	logger     *slog.Logger
	server     *http.Server
}

// NewServer creates a webhook server instance.
func NewServer(config Config, dispatcher *Dispatcher) *Server {
	if config.MaxBodySize == 0 {
		config.MaxBodySize = DefaultMaxBodySize
	}
	if config.Path == "" {
		config.Path = "/"
	}
	return &Server{
		config:     config,
		dispatcher: dispatcher,
		logger:     log.WithComponent("webhook"),
	}
}

// Start starts the webhook HTTP server (blocking).
func (s *Server) Start(ctx context.Context) error {
	router := s.setupRoutes()

	s.server = &http.Server{
		Addr:         s.config.Listen,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("webhook server starting", "listen", s.config.Listen, "path", s.config.Path)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("webhook server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("webhook server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("webhook server error: %w", err)
	}
}

// setupRoutes configures the HTTP router.
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Post(s.config.Path, s.handleCallback)

	return r
}

// loggingMiddleware logs HTTP requests (excludes payload content).
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("callback request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// handleCallback handles one signed completion callback.
//
// Expected non-events (bad signature, unknown event or operation type,
// reported operation failures) all answer 200 so the sender's retry policy
// stays quiet. Only genuine internal faults answer 5xx.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

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

	// Verify against the raw body bytes exactly as received. Re-parsing
	// before verification would break signatures over semantically equal
	// but byte-different JSON.
	signature := r.Header.Get(SignatureHeader)
	if err := verifySignature(body, signature, s.config.Secret); err != nil {
		s.logger.Warn("callback signature rejected",
			"request_id", middleware.GetReqID(ctx),
			"remote_addr", r.RemoteAddr,
		)
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "invalid signature; event ignored")
		return
	}

	// Echo the challenge so the sender can confirm liveness.
	if challenge := r.Header.Get(ChallengeHeader); challenge != "" {
		w.Header().Set(ChallengeHeader, challenge)
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		s.respondError(w, http.StatusBadRequest, "malformed callback payload")
		return
	}

	if err := s.dispatcher.Handle(ctx, &env); err != nil {
		s.logger.Error("callback handling failed",
			"request_id", middleware.GetReqID(ctx),
			"operation_id", env.Data.Operation.ID,
			"error", err,
		)
		s.respondError(w, classifyStatus(err), err.Error())
		return
	}

	w.WriteHeader(http.StatusOK)
}

// classifyStatus maps a handling failure to a response status. Failures
// carrying a remote status classification keep it; anything else is an
// internal fault.
func classifyStatus(err error) int {
	var serr *remote.StatusError
	if errors.As(err, &serr) && serr.Code >= 400 {
		return serr.Code
	}
	return http.StatusInternalServerError
}

// respondError sends a JSON error response.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Code: status, Err: message})
}
