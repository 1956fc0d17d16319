package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubhamprakash681/truefeed/internal/domain/entity"
	"github.com/shubhamprakash681/truefeed/internal/metrics"
	"github.com/shubhamprakash681/truefeed/pkg/helpers"
)

func init() { gin.SetMode(gin.TestMode) }

var testTokens = helpers.NewSessionTokenManager("middleware-secret", time.Hour)

func validToken(t *testing.T) string {
	t.Helper()
	tok, _, err := testTokens.Encode(entity.Principal{ID: "u-1", Username: "alice", IsUserVerified: true, IsAcceptingMessage: true})
	require.NoError(t, err)
	return tok
}

func serve(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: helpers.SessionCookieName, Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAccessGuard(t *testing.T) {
	r := gin.New()
	r.Use(AccessGuard(testTokens))
	r.NoRoute(func(c *gin.Context) { c.String(http.StatusOK, "page") })

	good := validToken(t)
	tests := []struct {
		name     string
		path     string
		token    string
		wantCode int
		wantLoc  string
	}{
		{"signed in on login", "/login", good, http.StatusFound, "/dashboard"},
		{"signed in on signup", "/signup", good, http.StatusFound, "/dashboard"},
		{"signed in on verify", "/verify/alice", good, http.StatusFound, "/dashboard"},
		{"signed in on root", "/", good, http.StatusFound, "/dashboard"},
		{"signed in on dashboard", "/dashboard", good, http.StatusOK, ""},
		{"signed in elsewhere", "/u/alice", good, http.StatusOK, ""},
		{"guest on dashboard", "/dashboard", "", http.StatusFound, "/login"},
		{"guest on nested dashboard", "/dashboard/settings", "", http.StatusFound, "/login"},
		{"guest on login", "/login", "", http.StatusOK, ""},
		{"guest on root", "/", "", http.StatusOK, ""},
		{"garbage token on dashboard", "/dashboard", "garbage", http.StatusFound, "/login"},
		{"garbage token on login", "/login", "garbage", http.StatusOK, ""},
		{"root is exact", "/about", good, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, http.MethodGet, tt.path, tt.token)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantLoc, w.Header().Get("Location"))
		})
	}
}

func TestRequireSession(t *testing.T) {
	r := gin.New()
	r.GET("/me", RequireSession(testTokens), func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		require.True(t, ok)
		assert.Equal(t, "u-1", c.GetString(CtxUserIDKey))
		c.String(http.StatusOK, p.Username)
	})

	w := serve(r, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Please login to access")

	w = serve(r, http.MethodGet, "/me", "tampered.token.value")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodGet, "/me", validToken(t))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", w.Body.String())
}

func TestSession_SetsPrincipalWithoutRejecting(t *testing.T) {
	r := gin.New()
	r.Use(Session(testTokens))
	r.GET("/x", func(c *gin.Context) {
		_, ok := PrincipalFrom(c)
		c.String(http.StatusOK, map[bool]string{true: "in", false: "out"}[ok])
	})
	assert.Equal(t, "out", serve(r, http.MethodGet, "/x", "").Body.String())
	assert.Equal(t, "in", serve(r, http.MethodGet, "/x", validToken(t)).Body.String())
}

func TestRateLimit_LocalLimiter(t *testing.T) {
	lim := NewLocalLimiter(time.Minute)
	defer lim.Stop()

	r := gin.New()
	r.Use(RealIP())
	r.POST("/api/auth/login", RateLimit(lim, 3, time.Minute, KeyByIPAndPath(), nil), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		w := serve(r, http.MethodPost, "/api/auth/login", "")
		require.Equal(t, http.StatusOK, w.Code, "request %d", i)
		assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
	}
	w := serve(r, http.MethodPost, "/api/auth/login", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, 1, lim.Len())

	// another client is unaffected
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLocalLimiter_Prune(t *testing.T) {
	lim := NewLocalLimiter(time.Hour)
	defer lim.Stop()
	_, err := lim.Take(context.Background(), "k", 1, time.Minute)
	require.NoError(t, err)
	lim.prune(time.Now().Add(2 * time.Hour))
	assert.Equal(t, 0, lim.Len())
}

type failingLimiter struct{}

func (failingLimiter) Take(context.Context, string, int, time.Duration) (Decision, error) {
	return Decision{}, errors.New("redis down")
}

func TestRateLimit_FailsOpenAndBypass(t *testing.T) {
	r := gin.New()
	r.GET("/a", RateLimit(failingLimiter{}, 1, time.Minute, KeyByIP(), nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	lim := NewLocalLimiter(time.Minute)
	defer lim.Stop()
	r.GET("/b", RateLimit(lim, 1, time.Minute, KeyByIP(), AllowPrivateIP()), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/a", "").Code)
	}
	// httptest requests come from 192.0.2.1 (TEST-NET), which is not private
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/b", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodGet, "/b", "").Code)
}

func TestHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	col := metrics.NewCollector(reg)
	r := gin.New()
	r.Use(HTTPMetrics(col))
	r.GET("/api/healthcheck", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodGet, "/api/healthcheck", "")
	serve(r, http.MethodGet, "/nope", "")

	n, err := testutil.GatherAndCount(reg, "truefeed_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := serve(r, http.MethodGet, "/x", "")
	_, err := uuid.Parse(w.Body.String())
	assert.NoError(t, err)
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, incoming)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, incoming, w.Body.String())
}

func TestRealIP(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	r.GET("/ip", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("real_ip")) })

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "198.51.100.7", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.Header.Set("CF-Connecting-IP", "203.0.113.5")
	req.Header.Set("X-Forwarded-For", "198.51.100.7")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "203.0.113.5", w.Body.String())
}
