package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/serroba/url-mapper/internal/handlers"
	"github.com/serroba/url-mapper/internal/messaging"
	"github.com/serroba/url-mapper/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testOutput struct {
	Body string `json:"body"`
}

type captured struct {
	meta          handlers.RequestMeta
	correlationID string
}

func setupTestAPI(t *testing.T) (*chi.Mux, <-chan captured) {
	t.Helper()

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	api.UseMiddleware(middleware.RequestMeta(api))

	out := make(chan captured, 1)

	huma.Get(api, "/test", func(ctx context.Context, _ *struct{}) (*testOutput, error) {
		out <- captured{
			meta:          handlers.RequestMetaFromContext(ctx),
			correlationID: messaging.CorrelationIDFromContext(ctx),
		}

		return &testOutput{Body: "ok"}, nil
	})

	return router, out
}

func TestRequestMeta(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		wantIP     string
	}{
		{
			name:    "single X-Forwarded-For",
			headers: map[string]string{"X-Forwarded-For": "192.168.1.1"},
			wantIP:  "192.168.1.1",
		},
		{
			name:    "first of several X-Forwarded-For hops",
			headers: map[string]string{"X-Forwarded-For": "192.168.1.1, 10.0.0.1, 172.16.0.1"},
			wantIP:  "192.168.1.1",
		},
		{
			name:    "X-Real-IP when X-Forwarded-For is absent",
			headers: map[string]string{"X-Real-IP": "10.0.0.1"},
			wantIP:  "10.0.0.1",
		},
		{
			name:       "remote address without port",
			remoteAddr: "172.16.0.9:51234",
			wantIP:     "172.16.0.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, out := setupTestAPI(t)

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			if tt.remoteAddr != "" {
				req.RemoteAddr = tt.remoteAddr
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)

			got := <-out
			assert.Equal(t, tt.wantIP, got.meta.ClientIP)
		})
	}
}

func TestRequestMeta_UserAgent(t *testing.T) {
	router, out := setupTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("User-Agent", "TestAgent/1.0")

	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "TestAgent/1.0", (<-out).meta.UserAgent)
}

func TestRequestMeta_RequestID(t *testing.T) {
	t.Run("generates an id when none is sent", func(t *testing.T) {
		router, out := setupTestAPI(t)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		got := <-out
		_, err := uuid.Parse(got.meta.RequestID)
		require.NoError(t, err)
		assert.Equal(t, got.meta.RequestID, got.correlationID)
		assert.Equal(t, got.meta.RequestID, w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("propagates the client id", func(t *testing.T) {
		router, out := setupTestAPI(t)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(middleware.RequestIDHeader, "abc-123")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		got := <-out
		assert.Equal(t, "abc-123", got.meta.RequestID)
		assert.Equal(t, "abc-123", got.correlationID)
		assert.Equal(t, "abc-123", w.Header().Get(middleware.RequestIDHeader))
	})
}
