package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"siddhaka-portal/internal/backend"
	"siddhaka-portal/internal/data/entity"
	"siddhaka-portal/internal/data/repository"
	"siddhaka-portal/internal/usecase"
	"siddhaka-portal/pkg/utils"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) utils.Response {
	t.Helper()
	var body utils.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// newTestRegistry builds a registry whose stores talk to an empty backend and
// persist credentials in miniredis.
func newTestRegistry(t *testing.T) (usecase.SessionRegistry, repository.CredentialRepository) {
	t.Helper()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(api.Close)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sealer, err := utils.NewSealer("middleware-test-secret")
	require.NoError(t, err)
	credentials := repository.NewRedisCredentialRepository(rdb, sealer, time.Hour, zap.NewNop())

	client := backend.NewClient(api.URL)
	newStore := func(visitorID uuid.UUID) usecase.SessionStore {
		return usecase.NewSessionStore(visitorID, client, credentials, zap.NewNop())
	}
	return usecase.NewSessionRegistry(newStore, credentials, nil, time.Hour, time.Hour, zap.NewNop()), credentials
}

func TestVisitor(t *testing.T) {
	t.Run("issues cookie to new browser", func(t *testing.T) {
		registry, _ := newTestRegistry(t)

		var seen uuid.UUID
		handler := Visitor(registry, true, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v, ok := usecase.VisitorFromContext(r.Context())
			require.True(t, ok)
			seen = v.ID

			id, ok := utils.GetVisitorIDFromContext(r.Context())
			assert.True(t, ok)
			assert.Equal(t, v.ID, id)

			_, hasRole := utils.GetRoleFromContext(r.Context())
			assert.False(t, hasRole)
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, utils.VisitorCookie, cookies[0].Name)
		assert.Equal(t, seen.String(), cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
		assert.True(t, cookies[0].Secure)
		assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
		assert.Equal(t, 1, registry.Len())
	})

	t.Run("reuses existing cookie", func(t *testing.T) {
		registry, _ := newTestRegistry(t)
		visitorID := uuid.New()

		handler := Visitor(registry, false, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v, _ := usecase.VisitorFromContext(r.Context())
			assert.Equal(t, visitorID, v.ID)
		}))

		for i := 0; i < 2; i++ {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: utils.VisitorCookie, Value: visitorID.String()})
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Empty(t, rec.Result().Cookies())
		}
		assert.Equal(t, 1, registry.Len())
	})

	t.Run("replaces malformed cookie", func(t *testing.T) {
		registry, _ := newTestRegistry(t)
		handler := Visitor(registry, false, zap.NewNop())(okHandler)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: utils.VisitorCookie, Value: "not-a-uuid"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		_, err := uuid.Parse(cookies[0].Value)
		assert.NoError(t, err)
	})

	t.Run("restores persisted role", func(t *testing.T) {
		registry, credentials := newTestRegistry(t)
		visitorID := uuid.New()
		require.NoError(t, credentials.Save(context.Background(), &entity.Credential{
			VisitorID: visitorID,
			Token:     "opaque-admin-token",
			Identity:  entity.Identity{Name: "Admin", Role: entity.RoleAdmin},
		}))

		var role string
		handler := Visitor(registry, false, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, _ = utils.GetRoleFromContext(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: utils.VisitorCookie, Value: visitorID.String()})
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, string(entity.RoleAdmin), role)
	})
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		required   entity.UserRole
		role       string
		wantStatus int
		wantMsg    string
	}{
		{name: "anonymous", required: entity.RolePatient, wantStatus: http.StatusUnauthorized, wantMsg: "Authentication required"},
		{name: "patient on admin route", required: entity.RoleAdmin, role: "patient", wantStatus: http.StatusForbidden, wantMsg: "Admin access required"},
		{name: "admin on patient route", required: entity.RolePatient, role: "admin", wantStatus: http.StatusForbidden, wantMsg: "Access denied"},
		{name: "matching role", required: entity.RoleAdmin, role: "admin", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			ctx := utils.SetVisitorContext(req.Context(), uuid.New())
			if tt.role != "" {
				ctx = utils.SetRoleContext(ctx, tt.role)
			}
			rec := httptest.NewRecorder()

			RequireRole(tt.required, zap.NewNop())(okHandler).ServeHTTP(rec, req.WithContext(ctx))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantMsg != "" {
				body := decodeEnvelope(t, rec)
				assert.False(t, body.Status)
				assert.Equal(t, tt.wantMsg, body.Message)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	handler := CORS([]string{"https://siddhaka.lk"})(okHandler)

	t.Run("allowed origin is echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://siddhaka.lk")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "https://siddhaka.lk", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown origin gets no headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", "https://siddhaka.lk")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("wildcard allows any origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		CORS([]string{"*"})(okHandler).ServeHTTP(rec, req)

		assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRateLimit(t *testing.T) {
	limiter := NewRateLimiter(60, 2)
	handler := RateLimit(limiter, zap.NewNop())(okHandler)

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = ip + ":51234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)

	rec := send("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// other clients have their own bucket
	assert.Equal(t, http.StatusOK, send("10.0.0.2").Code)
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	limiter := NewRateLimiter(60, 1)
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))

	now = now.Add(limiterIdleTTL + time.Minute)
	assert.True(t, limiter.Allow("10.0.0.2"))
	assert.Len(t, limiter.limiters, 1)
}

func TestRateLimiter_SweepsAtMostOncePerInterval(t *testing.T) {
	limiter := NewRateLimiter(60, 1)
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	limiter.Allow("10.0.0.1")

	// 10.0.0.1 goes idle, but no sweep is due yet.
	now = now.Add(limiterIdleTTL + time.Second)
	pending := now.Add(-limiterSweepInterval / 2)
	limiter.lastSweep = pending
	for i := 0; i < 100; i++ {
		limiter.Allow("10.0.1.1")
	}
	assert.Len(t, limiter.limiters, 2)
	assert.Equal(t, pending, limiter.lastSweep)

	now = now.Add(limiterSweepInterval)
	limiter.Allow("10.0.1.1")
	assert.Len(t, limiter.limiters, 1)
	assert.Equal(t, now, limiter.lastSweep)
}

func TestRealIP(t *testing.T) {
	var seen string
	capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = clientIP(r)
	})

	tests := []struct {
		name       string
		trusted    []string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "no trusted proxies ignores forwarding headers",
			remoteAddr: "198.51.100.9:4000",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7", "X-Real-IP": "203.0.113.8"},
			want:       "198.51.100.9",
		},
		{
			name:       "untrusted peer cannot spoof its address",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "198.51.100.9:4000",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7"},
			want:       "198.51.100.9",
		},
		{
			name:       "trusted proxy forwards the client",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.0.0.2:4000",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7"},
			want:       "203.0.113.7",
		},
		{
			name:       "spoofed leftmost hop is skipped",
			trusted:    []string{"10.0.0.2", "10.0.0.3"},
			remoteAddr: "10.0.0.2:4000",
			headers:    map[string]string{"X-Forwarded-For": "1.2.3.4, 203.0.113.7, 10.0.0.3"},
			want:       "203.0.113.7",
		},
		{
			name:       "x-real-ip from trusted proxy",
			trusted:    []string{"10.0.0.2"},
			remoteAddr: "10.0.0.2:4000",
			headers:    map[string]string{"X-Real-IP": "203.0.113.8"},
			want:       "203.0.113.8",
		},
		{
			name:       "malformed hop keeps the peer",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.0.0.2:4000",
			headers:    map[string]string{"X-Forwarded-For": "not-an-ip"},
			want:       "10.0.0.2",
		},
		{
			name:       "invalid trusted entries are ignored",
			trusted:    []string{"bogus", "10.0.0.0/33"},
			remoteAddr: "10.0.0.2:4000",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7"},
			want:       "10.0.0.2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			RealIP(tt.trusted, zap.NewNop())(capture).ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tt.want, seen)
		})
	}
}

func TestRateLimit_SpoofedForwardedForSharesBucket(t *testing.T) {
	limiter := NewRateLimiter(60, 1)
	handler := RealIP(nil, zap.NewNop())(RateLimit(limiter, zap.NewNop())(okHandler))

	send := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "198.51.100.9:4000"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.2"))
}

func TestRecover(t *testing.T) {
	handler := Recover(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Internal server error", decodeEnvelope(t, rec).Message)
}

func TestLogger_CapturesStatus(t *testing.T) {
	handler := Logger(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "short and stout", rec.Body.String())
}
