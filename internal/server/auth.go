package server

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/akuzmenko/adsmith/internal/config"
)

// Claims represents JWT claims for the API operator.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTService provides JWT token generation and validation functionality.
type JWTService struct {
	config *config.JWTConfig
}

// NewJWTService creates a new JWT service with the given configuration.
func NewJWTService(cfg *config.JWTConfig) *JWTService {
	return &JWTService{
		config: cfg,
	}
}

// TokenTTL returns the configured token lifetime.
func (s *JWTService) TokenTTL() time.Duration {
	return time.Duration(s.config.ExpirationHours) * time.Hour
}

// GenerateToken generates a JWT token for the given username.
func (s *JWTService) GenerateToken(username string) (string, error) {
	now := time.Now()
	expiresAt := now.Add(s.TokenTTL())

	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates a JWT token and returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token string is empty")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})

	if err != nil {
		if err == jwt.ErrSignatureInvalid {
			return nil, fmt.Errorf("invalid token signature: %w", err)
		}
		if err == jwt.ErrTokenExpired {
			return nil, fmt.Errorf("token expired: %w", err)
		}
		if err == jwt.ErrTokenMalformed {
			return nil, fmt.Errorf("malformed token: %w", err)
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}

	return claims, nil
}

// basicAuthenticator verifies HTTP basic credentials against a bcrypt hash.
type basicAuthenticator struct {
	username  string
	hash      string
	passwords *config.PasswordConfig
}

// check verifies a username/password pair. Both comparisons run before the
// result is combined so a wrong username costs the same as a wrong password.
func (a *basicAuthenticator) check(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := a.passwords.VerifyPassword(password, a.hash)
	return userOK && passOK
}

// withAuth guards the API when authentication is enabled. Health and the
// token endpoint stay open; the token endpoint enforces basic auth itself.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.authEnabled || openRoute(r) {
			next.ServeHTTP(w, r)
			return
		}

		if s.checkBasicAuth(r) || s.checkBearerToken(r) {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("WWW-Authenticate", `Basic realm="adsmith", charset="UTF-8"`)
		s.errorResponse(w, http.StatusUnauthorized, "authentication required")
	})
}

// openRoute reports whether a request may bypass authentication.
func openRoute(r *http.Request) bool {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/health":
		return true
	case r.Method == http.MethodPost && r.URL.Path == "/api/token":
		return true
	case r.Method == http.MethodOptions:
		return true
	}
	return false
}

// checkBasicAuth validates the Authorization: Basic header.
func (s *Server) checkBasicAuth(r *http.Request) bool {
	if s.basicAuth == nil {
		return false
	}
	username, password, ok := r.BasicAuth()
	if !ok {
		return false
	}
	return s.basicAuth.check(username, password)
}

// checkBearerToken validates the Authorization: Bearer header.
func (s *Server) checkBearerToken(r *http.Request) bool {
	if s.jwtService == nil {
		return false
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return false
	}

	// Handle case-insensitive "Bearer" prefix
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return false
	}

	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return false
	}

	_, err := s.jwtService.ValidateToken(tokenString)
	return err == nil
}

// TokenResponse is the body returned by POST /api/token.
type TokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"` // seconds
}

// handleToken exchanges basic-auth credentials for a short-lived bearer
// token.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if !s.authEnabled {
		s.errorResponse(w, http.StatusBadRequest, "authentication is disabled")
		return
	}
	if s.jwtService == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "token auth is not configured (set JWT_SECRET)")
		return
	}

	if !s.checkBasicAuth(r) {
		w.Header().Set("WWW-Authenticate", `Basic realm="adsmith", charset="UTF-8"`)
		err := &ErrInvalidCredentials{}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	token, err := s.jwtService.GenerateToken(s.basicAuth.username)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	s.jsonResponse(w, http.StatusOK, TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int(s.jwtService.TokenTTL().Seconds()),
	})
}
