package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-recruiting-platform/internal/delivery/http/middleware"
	"go-recruiting-platform/internal/domain"
	"go-recruiting-platform/pkg/apperror"
	"go-recruiting-platform/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Error     struct {
		Kind    string   `json:"kind"`
		Details []string `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func newTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	tokens, err := auth.NewTokenService(auth.Config{AccessSecret: "access-secret", RefreshSecret: "refresh-secret"})
	require.NoError(t, err)
	return tokens
}

func bearer(t *testing.T, tokens *auth.TokenService, role domain.Role) string {
	t.Helper()
	pair, err := tokens.Issue(domain.Identity{UserID: "u1", Email: "u1@x.com", Role: role})
	require.NoError(t, err)
	return "Bearer " + pair.AccessToken
}

func TestAuthorize(t *testing.T) {
	tokens := newTokens(t)

	testCases := []struct {
		name       string
		authHeader string
		wantCode   int
		wantKind   string
		wantCalled bool
	}{
		{name: "missing token", wantCode: http.StatusUnauthorized, wantKind: "unauthenticated"},
		{name: "wrong scheme", authHeader: "Basic abc", wantCode: http.StatusUnauthorized, wantKind: "unauthenticated"},
		{name: "garbage token", authHeader: "Bearer not-a-jwt", wantCode: http.StatusUnauthorized, wantKind: "unauthenticated"},
		{name: "refresh token is not an access token", wantCode: http.StatusUnauthorized, wantKind: "unauthenticated"},
		{name: "role not allowed", authHeader: bearer(t, tokens, domain.RoleCandidate), wantCode: http.StatusForbidden, wantKind: "forbidden"},
		{name: "recruiter allowed", authHeader: bearer(t, tokens, domain.RoleRecruiter), wantCode: http.StatusOK, wantCalled: true},
		{name: "admin allowed", authHeader: "bearer " + bearer(t, tokens, domain.RoleAdmin)[len("Bearer "):], wantCode: http.StatusOK, wantCalled: true},
	}
	pair, err := tokens.Issue(domain.Identity{UserID: "u1", Role: domain.RoleRecruiter})
	require.NoError(t, err)
	testCases[3].authHeader = "Bearer " + pair.RefreshToken

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			r := gin.New()
			r.GET("/x", middleware.Authorize(tokens, domain.RoleRecruiter, domain.RoleAdmin), func(c *gin.Context) {
				called = true
				identity, ok := middleware.IdentityFrom(c)
				assert.True(t, ok)
				fromCtx, ok := domain.IdentityFromContext(c.Request.Context())
				assert.True(t, ok)
				assert.Equal(t, identity, fromCtx)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.wantCode, w.Code)
			assert.Equal(t, tc.wantCalled, called)
			if tc.wantKind != "" {
				env := decode(t, w)
				assert.False(t, env.Success)
				assert.Equal(t, tc.wantKind, env.Error.Kind)
			}
		})
	}
}

func TestUnauthenticatedMessageIsGeneric(t *testing.T) {
	tokens := newTokens(t)
	r := gin.New()
	r.GET("/x", middleware.Authenticate(tokens), func(c *gin.Context) { c.Status(http.StatusOK) })

	messages := map[string]bool{}
	for _, header := range []string{"", "Token abc", "Bearer expired.or.bad"} {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		messages[decode(t, w).Message] = true
	}
	assert.Len(t, messages, 1)
}

func TestOptionalAuthenticate(t *testing.T) {
	tokens := newTokens(t)
	r := gin.New()
	r.GET("/x", middleware.OptionalAuthenticate(tokens), func(c *gin.Context) {
		identity, ok := middleware.IdentityFrom(c)
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, string(identity.Role))
	})

	for header, want := range map[string]string{
		"":                                     "anonymous",
		"Bearer junk":                          "anonymous",
		bearer(t, tokens, domain.RoleCandidate): "candidate",
	} {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, want, w.Body.String())
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	t.Run("reuses a well-formed id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(middleware.RequestIDHeader, "req_12345678")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "req_12345678", w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("replaces a malformed id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(middleware.RequestIDHeader, "bad id\n")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		got := w.Header().Get(middleware.RequestIDHeader)
		assert.NotEmpty(t, got)
		assert.NotEqual(t, "bad id\n", got)
	})
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ErrorHandler())
	r.GET("/conflict", func(c *gin.Context) { c.Error(apperror.Conflict("Tenant slug already exists")) })
	r.GET("/validation", func(c *gin.Context) {
		c.Error(apperror.Validation("Validation failed", "slug: invalid"))
	})
	r.GET("/boom", func(c *gin.Context) { c.Error(errors.New("pq: connection refused")) })
	r.GET("/internal", func(c *gin.Context) { c.Error(apperror.Internal(errors.New("disk full"))) })

	testCases := []struct {
		path        string
		wantCode    int
		wantKind    string
		wantMessage string
	}{
		{"/conflict", http.StatusConflict, "conflict", "Tenant slug already exists"},
		{"/validation", http.StatusBadRequest, "validation", "Validation failed"},
		{"/boom", http.StatusInternalServerError, "internal", "An unexpected error occurred. Please try again later."},
		{"/internal", http.StatusInternalServerError, "internal", "An unexpected error occurred. Please try again later."},
	}
	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))

			assert.Equal(t, tc.wantCode, w.Code)
			env := decode(t, w)
			assert.Equal(t, tc.wantKind, env.Error.Kind)
			assert.Equal(t, tc.wantMessage, env.Message)
			assert.NotEmpty(t, env.RequestID)
			assert.NotContains(t, w.Body.String(), "pq:")
			assert.NotContains(t, w.Body.String(), "disk full")
		})
	}
}

func TestRateLimitInMemory(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/x", middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Limit:     2,
		Window:    time.Minute,
		KeyPrefix: "rl:test:",
		KeyFunc:   func(c *gin.Context) string { return c.ClientIP() },
	}), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = "203.0.113.7:5555"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests {
			assert.NotEmpty(t, w.Header().Get("Retry-After"))
			assert.Equal(t, "rate_limited", decode(t, w).Error.Kind)
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestSecurityHeaders(t *testing.T) {
	for _, production := range []bool{false, true} {
		r := gin.New()
		r.Use(middleware.SecurityHeadersMiddleware(production))
		r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, production, w.Header().Get("Strict-Transport-Security") != "")
	}
}
