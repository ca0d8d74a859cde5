package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/museloop/genflow/pkg/flow"
	"github.com/museloop/genflow/pkg/flows"
	"github.com/museloop/genflow/pkg/models"
	"github.com/museloop/genflow/pkg/persistence/file"
	"github.com/museloop/genflow/pkg/protocol"
	"github.com/museloop/genflow/pkg/registry"
	"github.com/museloop/genflow/pkg/services"
	"github.com/museloop/genflow/pkg/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bioInput = `{"name":"Nova","discipline":"synth pop","achievements":["Debut album"],"tone":"witty"}`

const bioOutput = `{"shortBio":"Nova writes synth pop.","longBio":"Nova is a synth pop artist."}`

type backendResult struct {
	resp *models.GenerationResponse
	err  error
}

func setupTestApp(t *testing.T, result backendResult) *fiber.App {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	backend := protocol.BackendFunc(func(_ context.Context, _ *models.GenerationRequest) (*models.GenerationResponse, error) {
		return result.resp, result.err
	})

	reg := registry.NewRegistry(logger)
	require.NoError(t, flows.RegisterDefaults(reg, flow.NewOrchestrator(backend, flow.WithLogger(logger))))

	generation := services.NewGeneration(reg, file.NewPersistence(t.TempDir()), services.WithLogger(logger))
	handlers := web.NewAPIHandlers(generation, reg, validator.New(validator.WithRequiredStructEnabled()))

	app := fiber.New()
	handlers.RegisterRoutes(app)

	return app
}

func succeed() backendResult {
	return backendResult{resp: &models.GenerationResponse{Data: json.RawMessage(bioOutput)}}
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, data
}

func decode(t *testing.T, data []byte) map[string]any {
	t.Helper()

	var result map[string]any
	require.NoError(t, json.Unmarshal(data, &result))

	return result
}

func TestAPIHandlers_GetFlows(t *testing.T) {
	app := setupTestApp(t, succeed())

	status, body := do(t, app, http.MethodGet, "/flows", "")
	require.Equal(t, http.StatusOK, status)

	var response web.FlowsResponse
	require.NoError(t, json.Unmarshal(body, &response))
	assert.Len(t, response.Flows, 14)
	assert.Equal(t, flows.ArtworkFeedbackName, response.Flows[0].Name)
}

func TestAPIHandlers_GetFlow(t *testing.T) {
	app := setupTestApp(t, succeed())

	status, body := do(t, app, http.MethodGet, "/flows/creator-bio", "")
	require.Equal(t, http.StatusOK, status)

	descriptor := decode(t, body)
	assert.Equal(t, "creator-bio", descriptor["name"])
	assert.NotNil(t, descriptor["input"])

	status, body = do(t, app, http.MethodGet, "/flows/missing", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "flow_not_found", decode(t, body)["type"])
}

func TestAPIHandlers_InvokeFlow(t *testing.T) {
	app := setupTestApp(t, succeed())

	status, body := do(t, app, http.MethodPost, "/flows/creator-bio/invoke", bioInput)
	require.Equal(t, http.StatusOK, status)

	var response web.InvokeResponse
	require.NoError(t, json.Unmarshal(body, &response))
	assert.NotEmpty(t, response.InvocationID)
	assert.Equal(t, 1, response.Attempts)
	assert.JSONEq(t, bioOutput, string(response.Output))

	status, body = do(t, app, http.MethodGet, "/invocations/"+response.InvocationID, "")
	require.Equal(t, http.StatusOK, status)

	var record models.InvocationRecord
	require.NoError(t, json.Unmarshal(body, &record))
	assert.Equal(t, models.OutcomeSuccess, record.Outcome)
	assert.JSONEq(t, bioInput, string(record.Input))
}

func TestAPIHandlers_InvokeFlowErrors(t *testing.T) {
	tests := []struct {
		name           string
		result         backendResult
		body           string
		expectedStatus int
		expectedKind   string
		expectedReason string
	}{
		{
			name:           "invalid input",
			result:         succeed(),
			body:           `{"name":"Nova","discipline":"synth pop","achievements":[],"tone":"witty"}`,
			expectedStatus: http.StatusBadRequest,
			expectedKind:   "invalid_input",
		},
		{
			name:           "content filtered",
			result:         backendResult{err: models.NewContentFiltered("prompt blocked", nil)},
			body:           bioInput,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedKind:   "content_filtered",
		},
		{
			name:           "timeout",
			result:         backendResult{err: models.NewGenerationFailed(models.ReasonTimeout, "timed out", nil)},
			body:           bioInput,
			expectedStatus: http.StatusGatewayTimeout,
			expectedKind:   "generation_failed",
			expectedReason: "timeout",
		},
		{
			name:           "quota",
			result:         backendResult{err: models.NewGenerationFailed(models.ReasonQuota, "quota", nil)},
			body:           bioInput,
			expectedStatus: http.StatusBadGateway,
			expectedKind:   "generation_failed",
			expectedReason: "quota",
		},
		{
			name:           "invalid output",
			result:         backendResult{resp: &models.GenerationResponse{Text: "I cannot write that bio."}},
			body:           bioInput,
			expectedStatus: http.StatusBadGateway,
			expectedKind:   "invalid_output",
		},
		{
			name:           "empty payload",
			result:         backendResult{resp: &models.GenerationResponse{Data: json.RawMessage(`{"shortBio":"  ","longBio":"x"}`)}},
			body:           bioInput,
			expectedStatus: http.StatusBadGateway,
			expectedKind:   "generation_failed",
			expectedReason: "empty_payload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupTestApp(t, tt.result)

			status, body := do(t, app, http.MethodPost, "/flows/creator-bio/invoke", tt.body)
			assert.Equal(t, tt.expectedStatus, status)

			problem := decode(t, body)
			assert.Equal(t, tt.expectedKind, problem["kind"])
			assert.Equal(t, tt.expectedKind, problem["type"])
			assert.NotEmpty(t, problem["invocation_id"])

			if tt.expectedReason != "" {
				assert.Equal(t, tt.expectedReason, problem["reason"])
			}
		})
	}
}

func TestAPIHandlers_InvokeUnknownFlow(t *testing.T) {
	app := setupTestApp(t, succeed())

	status, body := do(t, app, http.MethodPost, "/flows/missing/invoke", bioInput)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "flow_not_found", decode(t, body)["type"])
}

func TestAPIHandlers_InvalidInputViolations(t *testing.T) {
	app := setupTestApp(t, succeed())

	status, body := do(t, app, http.MethodPost, "/flows/creator-bio/invoke", `{"name":"Nova"}`)
	require.Equal(t, http.StatusBadRequest, status)

	var problem web.FlowProblem
	require.NoError(t, json.Unmarshal(body, &problem))
	assert.Equal(t, models.ErrorKindInvalidInput, problem.Kind)
	assert.NotEmpty(t, problem.Violations)
}

func TestAPIHandlers_RenderFlow(t *testing.T) {
	app := setupTestApp(t, succeed())

	status, body := do(t, app, http.MethodPost, "/flows/creator-bio/render", bioInput)
	require.Equal(t, http.StatusOK, status)

	var prompt models.RenderedPrompt
	require.NoError(t, json.Unmarshal(body, &prompt))
	assert.Contains(t, prompt.Text, "Nova")
	assert.Contains(t, prompt.Text, "- Debut album")

	_, again := do(t, app, http.MethodPost, "/flows/creator-bio/render", bioInput)
	assert.Equal(t, body, again)

	status, _ = do(t, app, http.MethodPost, "/flows/creator-bio/render", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPIHandlers_GetInvocations(t *testing.T) {
	app := setupTestApp(t, succeed())

	for range 3 {
		status, _ := do(t, app, http.MethodPost, "/flows/creator-bio/invoke", bioInput)
		require.Equal(t, http.StatusOK, status)
	}

	status, body := do(t, app, http.MethodGet, "/invocations?flow=creator-bio&limit=2", "")
	require.Equal(t, http.StatusOK, status)

	var response web.InvocationsResponse
	require.NoError(t, json.Unmarshal(body, &response))
	assert.Len(t, response.Invocations, 2)
	assert.Equal(t, 2, response.Limit)

	status, _ = do(t, app, http.MethodGet, "/invocations?limit=500", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodGet, "/invocations?flow=missing", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, body = do(t, app, http.MethodGet, "/invocations/unknown", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "invocation_not_found", decode(t, body)["type"])
}

func TestAPIHandlers_HealthCheck(t *testing.T) {
	app := setupTestApp(t, succeed())

	status, body := do(t, app, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", decode(t, body)["status"])
}

func TestFlowErrorStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadGateway, web.FlowErrorStatus(models.NewIncompleteOutput("missing contact", nil)))
	assert.Equal(t, http.StatusBadGateway, web.FlowErrorStatus(models.NewInvalidOutput("bad", nil, nil)))
	assert.Equal(t, http.StatusGatewayTimeout, web.FlowErrorStatus(models.NewGenerationFailed(models.ReasonTimeout, "", nil)))
}
