// Package server provides the HTTP REST API for the ad copy generator.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/akuzmenko/adsmith/internal/config"
	"github.com/akuzmenko/adsmith/internal/googleads"
	"github.com/akuzmenko/adsmith/internal/llm"
	"github.com/akuzmenko/adsmith/internal/server/ratelimit"
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	rateLimiter *ratelimit.Limiter
	validator   *validator.Validate

	// cfg holds the effective configuration; POST /api/config updates a
	// subset at runtime, so reads go through configSnapshot.
	mu  sync.RWMutex
	cfg config.Config

	authEnabled bool
	basicAuth   *basicAuthenticator
	jwtService  *JWTService

	// llmClient overrides per-request client creation when set (tests).
	llmClient llm.Client

	adsClient *googleads.Client
	adsErr    error
}

// New creates a new server instance
func New(cfg *config.Config) (*Server, error) {
	if cfg == nil {
		defaults := config.Defaults()
		cfg = &defaults
	}

	s := &Server{
		cfg:       *cfg,
		validator: validator.New(),
	}

	// Initialize rate limiter
	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	// Initialize authentication
	if cfg.AuthEnabled {
		passwordConfig, err := config.NewPasswordConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create password config: %w", err)
		}

		hash := cfg.AuthPasswordHash
		if hash == "" {
			if cfg.AuthPassword == "" {
				return nil, fmt.Errorf("auth is enabled but no password is configured")
			}
			hash, err = passwordConfig.HashPassword(cfg.AuthPassword)
			if err != nil {
				return nil, fmt.Errorf("failed to hash auth password: %w", err)
			}
		}

		s.authEnabled = true
		s.basicAuth = &basicAuthenticator{
			username:  cfg.AuthUsername,
			hash:      hash,
			passwords: passwordConfig,
		}

		// Bearer tokens are issued only when a signing secret exists;
		// basic auth keeps working without one.
		if os.Getenv("JWT_SECRET") != "" {
			jwtConfig, err := config.NewJWTConfig()
			if err != nil {
				return nil, fmt.Errorf("failed to create JWT config: %w", err)
			}
			s.jwtService = NewJWTService(jwtConfig)
		}
	}

	// Google Ads reporting is optional; endpoints report the configuration
	// error until credentials are in place.
	s.initAdsClient(context.Background(), cfg.GoogleAdsConfig)

	// Setup router
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/token", s.handleToken)

	// Analysis endpoints
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /api/download/{filename}", s.handleDownload)
	mux.HandleFunc("GET /api/ai-providers", s.handleProviders)
	mux.HandleFunc("GET /api/config", s.handleGetConfig)
	mux.HandleFunc("POST /api/config", s.handleUpdateConfig)

	// Google Ads reporting endpoints
	mux.HandleFunc("GET /api/googleads/status", s.handleAdsStatus)
	mux.HandleFunc("GET /api/googleads/accounts", s.handleAdsAccounts)
	mux.HandleFunc("GET /api/googleads/account/summary", s.handleAdsAccountSummary)
	mux.HandleFunc("GET /api/googleads/campaigns", s.handleAdsCampaigns)
	mux.HandleFunc("GET /api/googleads/ad-groups", s.handleAdsAdGroups)
	mux.HandleFunc("GET /api/googleads/keywords", s.handleAdsKeywords)
	mux.HandleFunc("GET /api/googleads/search-terms", s.handleAdsSearchTerms)
	mux.HandleFunc("GET /api/googleads/ads", s.handleAdsAds)
	mux.HandleFunc("GET /api/googleads/performance/geographic", s.handleAdsGeographic)
	mux.HandleFunc("GET /api/googleads/performance/device", s.handleAdsDevice)
	mux.HandleFunc("GET /api/googleads/diagnose/quality-score", s.handleAdsQualityScore)
	mux.HandleFunc("GET /api/googleads/diagnose/high-cost", s.handleAdsHighCost)
	mux.HandleFunc("GET /api/googleads/diagnose/disapproved-ads", s.handleAdsDisapprovedAds)
	mux.HandleFunc("POST /api/googleads/query", s.handleAdsQuery)

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.withAuth(mux)))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for pipeline runs
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// initAdsClient loads Google Ads credentials and builds the reporting
// client, recording the failure instead of aborting startup.
func (s *Server) initAdsClient(ctx context.Context, configPath string) {
	creds, err := googleads.LoadCredentials(configPath)
	if err != nil {
		s.adsErr = err
		return
	}
	client, err := googleads.NewClient(ctx, creds, nil)
	if err != nil {
		s.adsErr = err
		return
	}
	s.adsClient = client
}

// configSnapshot returns a copy of the current configuration.
func (s *Server) configSnapshot() config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// Stop rate limiter cleanup goroutine
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Extract client identifier (IP address)
		clientID := s.extractClientID(r)

		// Check rate limit
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		if !allowed {
			// Set rate limit headers
			s.setRateLimitHeaders(w, info)
			// Return 429 Too Many Requests
			s.rateLimitResponse(w, info)
			return
		}

		// Set rate limit headers for successful requests
		s.setRateLimitHeaders(w, info)
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
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
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractValidationErrors converts validator errors into a readable message.
func extractValidationErrors(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
		ve := validationErrors[0]
		return (&ErrValidation{Field: ve.Field(), Message: ve.Tag()}).Error()
	}
	return "validation failed"
}

// extractClientID extracts the client identifier from the request.
// For MVP, this uses the IP address from RemoteAddr.
// In the future, this could use X-Forwarded-For header (only from trusted proxies).
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

	// Log rate limit hit
	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
