package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandlerExposesResultCollectors(t *testing.T) {
	before := testutil.ToFloat64(MarkDecodeFailures())
	MarkDecodeFailures().Inc()
	require.Equal(t, before+1, testutil.ToFloat64(MarkDecodeFailures()))

	ResultFetches().WithLabelValues("fetch_result", "success").Inc()

	app := fiber.New()
	app.Get("/metrics", MetricsHandler())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "result_mark_decode_failures_total")
	require.Contains(t, string(body), `result_fetch_total{operation="fetch_result",outcome="success"}`)
}
