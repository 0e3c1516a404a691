package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/jonathan/resume-reader/internal/config"
	"github.com/jonathan/resume-reader/internal/server/middleware"
	"github.com/jonathan/resume-reader/internal/server/quota"
	"github.com/jonathan/resume-reader/internal/server/ratelimit"
	"github.com/jonathan/resume-reader/internal/service"
)

// Server represents the HTTP server
type Server struct {
	httpServer     *http.Server
	handler        http.Handler
	service        *service.ResumeService
	rateLimiter    *ratelimit.Limiter
	downloads      *quota.Tracker
	jwtService     *JWTService
	authHandler    *AuthHandler
	logger         *slog.Logger
	maxUploadBytes int64
	closers        []io.Closer
}

// Deps are the collaborators the server is built on. Closers are closed on shutdown, in order.
type Deps struct {
	Service *service.ResumeService
	Auth    *config.AuthConfig
	Logger  *slog.Logger
	Closers []io.Closer
}

// New creates a new server instance
func New(cfg *config.Config, deps Deps) (*Server, error) {
	if deps.Service == nil {
		return nil, fmt.Errorf("resume service is required")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("auth config is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		service:        deps.Service,
		logger:         logger,
		maxUploadBytes: cfg.MaxUploadBytes,
		closers:        deps.Closers,
	}

	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig(cfg.UploadPerMinute, cfg.UploadBurst))

	s.jwtService = NewJWTService(deps.Auth.JWT)
	// Sessions must be remembered for as long as their tokens are valid.
	s.downloads = quota.NewTracker(cfg.DownloadLimit, s.jwtService.Lifetime())
	s.authHandler = NewAuthHandler(deps.Auth, s.jwtService, s.downloads, logger)

	requireAuth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator(), s.downloads)

	// Setup router
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Operator session
	mux.HandleFunc("POST /login", s.authHandler.Login)
	mux.Handle("POST /logout", requireAuth(http.HandlerFunc(s.authHandler.Logout)))

	// Résumé endpoints
	mux.HandleFunc("POST /resumes/upload", s.handleUpload)
	mux.HandleFunc("GET /resumes/search", s.handleSearch)
	mux.HandleFunc("GET /resumes/search/export", s.handleExport)
	mux.Handle("GET /resumes/by-email", requireAuth(http.HandlerFunc(s.handleByEmail)))
	mux.HandleFunc("GET /resumes/{id}/preview", s.handlePreview)
	mux.Handle("GET /resumes/{id}/download", requireAuth(http.HandlerFunc(s.handleDownload)))

	// Download acknowledgement pages
	mux.Handle("GET /download/thanks", requireAuth(http.HandlerFunc(s.handleThanks)))
	mux.Handle("GET /download/limit-reached", requireAuth(http.HandlerFunc(s.handleLimitReached)))

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server.start", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		s.release()
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("server.shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.release()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server.stopped")
	return nil
}

// release stops background goroutines and closes collaborators.
func (s *Server) release() {
	s.rateLimiter.Stop()
	s.downloads.Stop()
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			s.logger.Warn("server.close.failed", "error", err)
		}
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"remote", r.RemoteAddr,
			"duration", time.Since(start),
		)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("response.encode.failed", "error", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError answers with the status HTTPStatus assigns to err. Internal errors are logged and
// answered with a generic message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request.failed", "method", r.Method, "path", r.URL.Path, "error", err)
		s.errorResponse(w, status, "internal server error")
		return
	}
	s.errorResponse(w, status, fromServiceError(err).Error())
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; forwarded headers are not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	s.logger.Warn("rate_limit.exceeded",
		"limit", info.Limit,
		"remaining", info.Remaining,
		"reset", info.ResetTime.Format(time.RFC3339),
	)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
