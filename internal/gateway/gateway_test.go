// ABOUTME: Tests for gateway lifecycle and middleware.
// ABOUTME: Covers run/shutdown over a real listener and CORS header behavior.

package gateway

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebridge/adk-gateway/internal/config"
)

func TestRun_GracefulShutdown(t *testing.T) {
	fb := newFakeBackend()
	defer fb.Close()
	gw := newTestGateway(t, fb.URL)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- gw.Run(ctx)
	}()

	// Give the server a moment to bind, then cancel.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err, "graceful shutdown should return nil")
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestRun_ListenFailure(t *testing.T) {
	fb := newFakeBackend()
	defer fb.Close()

	cfg, err := config.Parse([]byte(`
server:
  http_addr: "256.256.256.256:99999"
backend:
  base_url: "` + fb.URL + `"
`))
	require.NoError(t, err)
	gw := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.Error(t, gw.Run(context.Background()))
}

func TestCORSMiddleware(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := corsMiddleware("*", inner)

	// Preflight short-circuits before the inner handler.
	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")

	// Regular requests pass through with the headers attached.
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNew_CORSDisabledByDefault(t *testing.T) {
	fb := newFakeBackend()
	defer fb.Close()
	gw := newTestGateway(t, fb.URL)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	gw.httpServer.Handler.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNew_UIDisabled(t *testing.T) {
	fb := newFakeBackend()
	defer fb.Close()

	cfg, err := config.Parse([]byte(`
server:
  http_addr: "localhost:0"
backend:
  base_url: "` + fb.URL + `"
ui:
  enabled: false
`))
	require.NoError(t, err)
	gw := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	gw.httpServer.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNew_UIServedByDefault(t *testing.T) {
	fb := newFakeBackend()
	defer fb.Close()
	gw := newTestGateway(t, fb.URL)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	gw.httpServer.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Assistant Chat")
}
