package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/museloop/genflow/pkg/persistence"
	"github.com/museloop/genflow/pkg/registry"
	"github.com/museloop/genflow/pkg/services"
)

type APIHandlers struct {
	generation *services.Generation
	registry   *registry.Registry
	validator  *validator.Validate
}

func NewAPIHandlers(
	generation *services.Generation,
	registry *registry.Registry,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		generation: generation,
		registry:   registry,
		validator:  validator,
	}
}

// RegisterRoutes mounts the flow and invocation endpoints on app.
func (h *APIHandlers) RegisterRoutes(app *fiber.App) {
	f := app.Group("/flows")
	f.Get("/", h.GetFlows)
	f.Get("/:name", h.GetFlow)
	f.Post("/:name/invoke", h.InvokeFlow)
	f.Post("/:name/render", h.RenderFlow)

	i := app.Group("/invocations")
	i.Get("/", h.GetInvocations)
	i.Get("/:id", h.GetInvocation)

	app.Get("/health", h.HealthCheck)
}

func (h *APIHandlers) GetFlows(c fiber.Ctx) error {
	return c.JSON(FlowsResponse{Flows: h.generation.Flows()})
}

func (h *APIHandlers) GetFlow(c fiber.Ctx) error {
	descriptor, err := h.generation.Flow(c.Params("name"))
	if err != nil {
		return handleServiceError(c, err, "")
	}

	return c.JSON(descriptor)
}

func (h *APIHandlers) InvokeFlow(c fiber.Ctx) error {
	result, err := h.generation.Invoke(c.Context(), c.Params("name"), requestBody(c))
	if err != nil {
		invocationID := ""
		if result != nil {
			invocationID = result.InvocationID
		}

		return handleServiceError(c, err, invocationID)
	}

	return c.JSON(InvokeResponse{
		InvocationID: result.InvocationID,
		Flow:         result.Flow,
		Attempts:     result.Attempts,
		Output:       result.Output,
	})
}

func (h *APIHandlers) RenderFlow(c fiber.Ctx) error {
	prompt, err := h.generation.Render(c.Params("name"), requestBody(c))
	if err != nil {
		return handleServiceError(c, err, "")
	}

	return c.JSON(prompt)
}

func (h *APIHandlers) GetInvocation(c fiber.Ctx) error {
	record, err := h.generation.Invocation(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err, "")
	}

	return c.JSON(record)
}

func (h *APIHandlers) GetInvocations(c fiber.Ctx) error {
	var query ListInvocationsQuery
	if err := c.Bind().Query(&query); err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	if err := h.validator.Struct(query); err != nil {
		return badRequest(c, err.Error())
	}

	records, err := h.generation.Invocations(c.Context(), query.Flow, query.Limit)
	if err != nil {
		return handleServiceError(c, err, "")
	}

	return c.JSON(InvocationsResponse{
		Invocations: records,
		Limit:       persistence.NormalizeLimit(query.Limit),
	})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	registryCheck, regOk := h.registry.HealthCheck()
	repositoryCheck, repOk := h.generation.HealthCheck(c.Context())

	status := "unhealthy"
	message := "genflow API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if regOk && repOk {
		status = "healthy"
		message = "genflow API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"registry":   registryCheck,
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

// requestBody copies the body, which fiber reuses after the handler returns.
func requestBody(c fiber.Ctx) json.RawMessage {
	return append(json.RawMessage(nil), c.Body()...)
}
