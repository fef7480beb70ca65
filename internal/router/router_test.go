package router_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/resultboard-api/internal/config"
	"github.com/noah-isme/resultboard-api/internal/handler"
	"github.com/noah-isme/resultboard-api/internal/router"
)

func newApp(checks map[string]handler.DependencyCheck) *fiber.App {
	app := fiber.New()
	router.Register(app, config.Config{AppName: "Resultboard API", AppEnv: "test", ResultRateLimit: 30}, router.Dependencies{
		HealthChecks: checks,
	})
	return app
}

func TestRegisterHealthRoute(t *testing.T) {
	app := newApp(map[string]handler.DependencyCheck{
		"database": func(context.Context) error { return nil },
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "Resultboard API", resp.Header.Get("X-Application"))
}

func TestRegisterHealthDegraded(t *testing.T) {
	app := newApp(map[string]handler.DependencyCheck{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestRegisterMetricsRoute(t *testing.T) {
	app := newApp(nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "result_mark_decode_failures_total")
}

func TestRegisterSkipsMissingHandlers(t *testing.T) {
	app := newApp(nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/results", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
