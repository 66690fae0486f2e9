package server

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"copyflow-be/internal/bootstrap"
	"copyflow-be/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		App: config.AppConfig{
			Port:               "0",
			Environment:        "test",
			LogFilePath:        filepath.Join(dir, "app.log"),
			StageLogFilePath:   filepath.Join(dir, "stages.log"),
			CorsAllowedOrigins: "http://localhost:5173",
			StageTopic:         "STAGE_EVENTS_TEST",
		},
		Session: config.SessionConfig{Secret: "server-secret", TTL: time.Hour, Store: "memory"},
		Gateway: config.GatewayConfig{Mode: "fallback", Timeout: time.Second},
		Storage: config.StorageConfig{
			SqlitePath:    filepath.Join(dir, "copyflow.db"),
			MaxUploadSize: 1024 * 1024,
		},
	}
}

func TestServerRoutesWithoutExternalServices(t *testing.T) {
	cfg := testConfig(t)
	container := bootstrap.NewContainer(nil, cfg)
	t.Cleanup(container.Close)

	app := New(cfg, container).GetApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/system/v1/health", nil), 5000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/api/workflow/v1/sessions", nil), 5000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/ws/v1/stages", nil), 5000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestServerCorsOrigins(t *testing.T) {
	tests := []struct {
		name        string
		origins     string
		origin      string
		allowOrigin string
		credentials string
	}{
		{"explicit origin", "http://localhost:5173", "http://localhost:5173", "http://localhost:5173", "true"},
		{"wildcard", "*", "http://elsewhere.example", "*", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.App.CorsAllowedOrigins = tt.origins
			container := bootstrap.NewContainer(nil, cfg)
			t.Cleanup(container.Close)

			var app *fiber.App
			require.NotPanics(t, func() { app = New(cfg, container).GetApp() })

			req := httptest.NewRequest(http.MethodGet, "/api/system/v1/health", nil)
			req.Header.Set("Origin", tt.origin)
			resp, err := app.Test(req, 5000)
			require.NoError(t, err)
			assert.Equal(t, tt.allowOrigin, resp.Header.Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.credentials, resp.Header.Get("Access-Control-Allow-Credentials"))
		})
	}
}
