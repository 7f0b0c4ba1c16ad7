package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/resume"
	"github.com/jonathan/resume-builder/internal/server/middleware"
	"github.com/jonathan/resume-builder/internal/server/ratelimit"
)

// Store is everything the server persists: sections, snapshots and users.
// *db.DB and *memstore.Store satisfy it.
type Store interface {
	resume.Store
	UserStore
	Close()
}

// Server represents the HTTP server
type Server struct {
	httpServer     *http.Server
	store          Store
	rateLimiter    *ratelimit.Limiter
	jwtService     *JWTService
	authMiddleware func(http.Handler) http.Handler
	authHandler    *AuthHandler
	sections       *resume.Sections
	snapshots      *resume.Snapshots
	allowedOrigins []string
	mux            *http.ServeMux
}

// Config holds server configuration
type Config struct {
	Port               int
	CORSAllowedOrigins []string
}

// Deps are the collaborators the server is built from.
type Deps struct {
	Store     Store
	Verifier  IdentityVerifier
	JWT       *config.JWTConfig
	RateLimit *ratelimit.Config
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if deps.Verifier == nil {
		return nil, fmt.Errorf("identity verifier is required")
	}
	if deps.JWT == nil {
		return nil, fmt.Errorf("JWT config is required")
	}

	sections := resume.NewSections(deps.Store)
	s := &Server{
		store:          deps.Store,
		rateLimiter:    ratelimit.NewLimiter(deps.RateLimit),
		jwtService:     NewJWTService(deps.JWT),
		sections:       sections,
		snapshots:      resume.NewSnapshots(deps.Store, sections),
		allowedOrigins: cfg.CORSAllowedOrigins,
		mux:            http.NewServeMux(),
	}
	s.authMiddleware = middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	s.authHandler = NewAuthHandler(deps.Verifier, NewUserService(deps.Store), s.jwtService)

	s.routes()

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	// Authentication
	s.mux.HandleFunc("POST /auth/google", s.authHandler.GoogleLogin)
	s.handleProtected("GET /auth/me", s.authHandler.Me)

	// Live profile sections
	s.handleProtected("GET /profile", s.handleProfile)
	sectionRoutes(s, s.sections.Personal)
	sectionRoutes(s, s.sections.Education)
	sectionRoutes(s, s.sections.Experience)
	sectionRoutes(s, s.sections.Skills)
	sectionRoutes(s, s.sections.Projects)
	sectionRoutes(s, s.sections.Certifications)

	// Named resume snapshots
	s.handleProtected("POST /resumes", s.handleCreateResume)
	s.handleProtected("GET /resumes", s.handleListResumes)
	s.handleProtected("POST /resumes/from-profile", s.handleCreateResumeFromProfile)
	s.handleProtected("GET /resumes/{id}", s.handleGetResume)
	s.handleProtected("PUT /resumes/{id}", s.handleUpdateResume)
	s.handleProtected("DELETE /resumes/{id}", s.handleDeleteResume)
}

// handleProtected registers a route behind the auth middleware.
func (s *Server) handleProtected(pattern string, h http.HandlerFunc) {
	s.mux.Handle(pattern, s.authMiddleware(h))
}

// Handler returns the full middleware chain around the router.
func (s *Server) Handler() http.Handler {
	return s.withRateLimit(s.withLogging(s.withCORS(s.mux)))
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-stop:
	case err := <-serveErr:
		if err != nil {
			s.release()
			return fmt.Errorf("server error: %w", err)
		}
	}
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}

// Shutdown stops accepting requests, waits for in-flight ones, and closes
// the store.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.release()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Println("Server stopped")
	return nil
}

func (s *Server) release() {
	// Stop rate limiter cleanup goroutine
	s.rateLimiter.Stop()
	s.store.Close()
}

// withCORS adds CORS headers for allowed origins
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := s.allowOrigin(r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if origin != "*" {
				w.Header().Add("Vary", "Origin")
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allowOrigin returns the value for Access-Control-Allow-Origin, or "" when
// origin is not allowed.
func (s *Server) allowOrigin(origin string) string {
	if slices.Contains(s.allowedOrigins, "*") {
		return "*"
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range s.allowedOrigins {
		if strings.EqualFold(strings.TrimSuffix(allowed, "/"), origin) {
			return origin
		}
	}
	return ""
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

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(rec, r)
		log.Printf("[%s] %s %d completed in %v", r.Method, r.URL.Path, rec.status, time.Since(start))
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

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	success(w, http.StatusOK, map[string]string{"status": "ok"})
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; X-Forwarded-For is not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	// Get IP from RemoteAddr (format: "IP:port")
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// If parsing fails, use the whole RemoteAddr
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
	data := map[string]any{
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		retryAfter := int(info.RetryAfter.Seconds()) + 1
		data["retry_after"] = retryAfter
		w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	jsonResponse(w, http.StatusTooManyRequests, envelope{
		Success: false,
		Message: "Rate limit exceeded. Please try again later.",
		Data:    data,
	})
}
