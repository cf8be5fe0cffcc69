package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akuzmenko/adsmith/internal/config"
)

// Cost 10 keeps the bcrypt work factor test-friendly.
func testPasswords() *config.PasswordConfig {
	return &config.PasswordConfig{BcryptCost: 10}
}

func testJWTService() *JWTService {
	return NewJWTService(&config.JWTConfig{Secret: "test-secret-for-signing-tokens", ExpirationHours: 1})
}

// newAuthedServer builds a server with basic auth (and optionally JWT)
// enabled for the given credentials.
func newAuthedServer(t *testing.T, username, password string, withJWT bool) *Server {
	t.Helper()

	passwords := testPasswords()
	hash, err := passwords.HashPassword(password)
	require.NoError(t, err)

	s := newTestServer()
	s.authEnabled = true
	s.basicAuth = &basicAuthenticator{username: username, hash: hash, passwords: passwords}
	if withJWT {
		s.jwtService = testJWTService()
	}
	return s
}

func TestBasicAuthenticator_Check(t *testing.T) {
	passwords := testPasswords()
	hash, err := passwords.HashPassword("hunter2")
	require.NoError(t, err)

	auth := &basicAuthenticator{username: "admin", hash: hash, passwords: passwords}

	assert.True(t, auth.check("admin", "hunter2"))
	assert.False(t, auth.check("admin", "wrong"))
	assert.False(t, auth.check("root", "hunter2"))
	assert.False(t, auth.check("", ""))
}

func TestWithAuth_Disabled(t *testing.T) {
	s := newTestServer()

	handler := s.withAuth(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "auth disabled should pass everything through")
}

func TestWithAuth_RequiresCredentials(t *testing.T) {
	s := newAuthedServer(t, "admin", "hunter2", false)

	handler := s.withAuth(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Basic")
}

func TestWithAuth_OpenRoutes(t *testing.T) {
	s := newAuthedServer(t, "admin", "hunter2", false)

	handler := s.withAuth(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/health"},
		{http.MethodPost, "/api/token"},
		{http.MethodOptions, "/api/analyze"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, "%s %s should be open", tt.method, tt.path)
	}

	// The same paths with guarded methods stay protected.
	req := httptest.NewRequest(http.MethodGet, "/api/analyze", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWithAuth_ValidBasic(t *testing.T) {
	s := newAuthedServer(t, "admin", "hunter2", false)

	handler := s.withAuth(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	req.SetBasicAuth("admin", "hunter2")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWithAuth_WrongPassword(t *testing.T) {
	s := newAuthedServer(t, "admin", "hunter2", false)

	handler := s.withAuth(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	req.SetBasicAuth("admin", "letmein")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWithAuth_BearerToken(t *testing.T) {
	s := newAuthedServer(t, "admin", "hunter2", true)

	token, err := s.jwtService.GenerateToken("admin")
	require.NoError(t, err)

	handler := s.withAuth(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	// Lowercase scheme is accepted too.
	req = httptest.NewRequest(http.MethodGet, "/api/config", nil)
	req.Header.Set("Authorization", "bearer "+token)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWithAuth_InvalidBearerToken(t *testing.T) {
	s := newAuthedServer(t, "admin", "hunter2", true)

	handler := s.withAuth(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, header := range []string{
		"Bearer not-a-token",
		"Bearer ",
		"Token abc",
		"Bearer",
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q should be rejected", header)
	}
}

func TestWithAuth_BearerRejectedWithoutJWTService(t *testing.T) {
	s := newAuthedServer(t, "admin", "hunter2", false)

	token, err := testJWTService().GenerateToken("admin")
	require.NoError(t, err)

	handler := s.withAuth(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleToken_Success(t *testing.T) {
	s := newAuthedServer(t, "admin", "hunter2", true)

	req := httptest.NewRequest(http.MethodPost, "/api/token", nil)
	req.SetBasicAuth("admin", "hunter2")
	w := httptest.NewRecorder()

	s.handleToken(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, 3600, resp.ExpiresIn)
	require.NotEmpty(t, resp.Token)

	claims, err := s.jwtService.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
}

func TestHandleToken_BadCredentials(t *testing.T) {
	s := newAuthedServer(t, "admin", "hunter2", true)

	req := httptest.NewRequest(http.MethodPost, "/api/token", nil)
	req.SetBasicAuth("admin", "wrong")
	w := httptest.NewRecorder()

	s.handleToken(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Basic")

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid username or password", resp["error"])
}

func TestHandleToken_AuthDisabled(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/token", nil)
	w := httptest.NewRecorder()

	s.handleToken(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleToken_JWTNotConfigured(t *testing.T) {
	s := newAuthedServer(t, "admin", "hunter2", false)

	req := httptest.NewRequest(http.MethodPost, "/api/token", nil)
	req.SetBasicAuth("admin", "hunter2")
	w := httptest.NewRecorder()

	s.handleToken(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "JWT_SECRET")
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := testJWTService()

	token, err := svc.GenerateToken("admin")
	require.NoError(t, err)
	assert.Equal(t, 3, len(strings.Split(token, ".")), "JWT should have three segments")

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	require.NotNil(t, claims.ExpiresAt)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt.Time))
}

func TestJWTService_RejectsWrongSecret(t *testing.T) {
	token, err := testJWTService().GenerateToken("admin")
	require.NoError(t, err)

	other := NewJWTService(&config.JWTConfig{Secret: "different-secret", ExpirationHours: 1})
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsMalformed(t *testing.T) {
	svc := testJWTService()

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.ValidateToken(token)
		assert.Error(t, err, "token %q should be rejected", token)
	}
}
