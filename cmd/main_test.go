package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/maintenance-tracker/internal/auth"
	"github.com/ukydev/maintenance-tracker/internal/config"
	"github.com/ukydev/maintenance-tracker/internal/db"
	"github.com/ukydev/maintenance-tracker/internal/logging"
)

func testConfig() config.Config {
	return config.Config{
		Port:                   "0",
		StoreDriver:            db.DriverSQLite,
		SQLitePath:             ":memory:",
		JWTSecret:              "test-secret",
		Timezone:               "Asia/Tehran",
		MQTTTopicPrefix:        "maintenance/notifications",
		RateLimitRequests:      100,
		RateLimitWindowSeconds: 60,
	}
}

func TestNewServer(t *testing.T) {
	cfg := testConfig()
	store, err := db.Open(context.Background(), db.Options{Driver: cfg.StoreDriver, SQLitePath: cfg.SQLitePath})
	require.NoError(t, err)

	srv, cleanup, err := newServer(cfg, store, logging.Discard())
	require.NoError(t, err)
	defer cleanup()
	assert.Equal(t, ":0", srv.Addr)

	t.Run("health", func(t *testing.T) {
		w := httptest.NewRecorder()
		srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("session with token", func(t *testing.T) {
		authService, err := auth.NewService(cfg.JWTSecret, 0)
		require.NoError(t, err)
		token, err := authService.GenerateToken("user-1", "driver")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		srv.Handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"state":"no-vehicle"`)
	})

	t.Run("session without token", func(t *testing.T) {
		w := httptest.NewRecorder()
		srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/session", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestNewServer_EmptySecret(t *testing.T) {
	cfg := testConfig()
	cfg.JWTSecret = ""

	_, _, err := newServer(cfg, &db.Store{}, logging.Discard())
	assert.Error(t, err)
}

func TestNewServer_UnknownTimezone(t *testing.T) {
	cfg := testConfig()
	cfg.Timezone = "Nowhere/Special"

	_, _, err := newServer(cfg, &db.Store{}, logging.Discard())
	assert.Error(t, err)
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := testConfig()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	assert.NoError(t, run(ctx, cfg, logging.Discard()))
}

func TestRun_UnknownDriver(t *testing.T) {
	cfg := testConfig()
	cfg.StoreDriver = "postgres"

	assert.Error(t, run(context.Background(), cfg, logging.Discard()))
}
