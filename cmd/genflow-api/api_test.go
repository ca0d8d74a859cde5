package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/museloop/genflow/pkg/flow"
	"github.com/museloop/genflow/pkg/metrics"
	"github.com/museloop/genflow/pkg/persistence/file"
	"github.com/museloop/genflow/pkg/services"
	"github.com/museloop/genflow/pkg/testutil"
	"github.com/museloop/genflow/pkg/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T, backend *testutil.ScriptedBackend) *fiber.App {
	t.Helper()

	reg := prometheus.NewRegistry()
	flowRegistry := testutil.Registry(t, backend, flow.WithObserver(metrics.NewCollector(reg)))
	generation := services.NewGeneration(flowRegistry, file.NewPersistence(t.TempDir()))

	return NewAPI(slog.Default(), generation, flowRegistry, reg).App()
}

func get(t *testing.T, app *fiber.App, path string) (int, string) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(body)
}

func TestAPI_RootEndpoint(t *testing.T) {
	app := setupTestApp(t, testutil.NewScriptedBackend())

	status, body := get(t, app, "/")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "genflow API", body)
}

func TestAPI_HealthCheck(t *testing.T) {
	app := setupTestApp(t, testutil.NewScriptedBackend())

	status, body := get(t, app, "/livez")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", body)

	status, _ = get(t, app, "/readyz")
	assert.Equal(t, http.StatusOK, status)
}

func TestAPI_ListFlows(t *testing.T) {
	app := setupTestApp(t, testutil.NewScriptedBackend())

	status, body := get(t, app, "/flows")
	require.Equal(t, http.StatusOK, status)

	var response web.FlowsResponse
	require.NoError(t, json.Unmarshal([]byte(body), &response))
	assert.Len(t, response.Flows, 14)
}

func TestAPI_MetricsAfterInvocation(t *testing.T) {
	output := `{"shortBio":"Nova writes synth pop.","longBio":"Nova is a synth pop artist whose debut album charted."}`

	app := setupTestApp(t, testutil.NewScriptedBackend(testutil.JSONReply(output)))

	req := httptest.NewRequest(
		http.MethodPost,
		"/flows/creator-bio/invoke",
		strings.NewReader(`{"name":"Nova","discipline":"synth pop","achievements":["Debut album"],"tone":"witty"}`),
	)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	status, body := get(t, app, "/metrics")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "genflow_flow_invocations_total")
	assert.Contains(t, body, `flow="creator-bio"`)
}
