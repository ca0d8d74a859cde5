package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
	"github.com/museloop/genflow/pkg/models"
	"github.com/museloop/genflow/pkg/services"
)

// FlowProblem is a problem document describing a failed flow invocation.
type FlowProblem struct {
	*problems.DefaultProblem

	Kind         models.ErrorKind   `json:"kind"`
	Reason       string             `json:"reason,omitempty"`
	InvocationID string             `json:"invocation_id,omitempty"`
	Violations   []models.Violation `json:"violations,omitempty"`
}

// FlowErrorStatus maps a flow error kind to an HTTP status.
func FlowErrorStatus(flowErr *models.FlowError) int {
	switch flowErr.Kind {
	case models.ErrorKindInvalidInput:
		return fiber.StatusBadRequest
	case models.ErrorKindContentFiltered:
		return fiber.StatusUnprocessableEntity
	case models.ErrorKindGenerationFailed:
		if flowErr.Reason == models.ReasonTimeout {
			return fiber.StatusGatewayTimeout
		}

		return fiber.StatusBadGateway
	default:
		return fiber.StatusBadGateway
	}
}

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, problemType, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType(problemType).
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func flowError(c fiber.Ctx, flowErr *models.FlowError, invocationID string) error {
	status := FlowErrorStatus(flowErr)

	problem := &FlowProblem{
		DefaultProblem: problems.NewStatusProblem(status).
			WithInstance(c.Path()).
			WithType(string(flowErr.Kind)).
			WithDetail(flowErr.Error()),
		Kind:         flowErr.Kind,
		Reason:       flowErr.Reason,
		InvocationID: invocationID,
		Violations:   flowErr.Violations,
	}

	return c.Status(status).JSON(problem)
}

// handleServiceError provides typed error handling for service layer errors.
func handleServiceError(c fiber.Ctx, err error, invocationID string) error {
	if flowErr, ok := models.AsFlowError(err); ok {
		return flowError(c, flowErr, invocationID)
	}

	switch {
	case errors.Is(err, services.ErrFlowNotFound):
		return notFound(c, "flow_not_found", "flow not found")

	case errors.Is(err, services.ErrInvocationNotFound):
		return notFound(c, "invocation_not_found", "invocation not found")

	case services.IsValidationError(err):
		return badRequest(c, err.Error())

	default:
		problem := problems.NewStatusProblem(500).
			WithInstance(c.Path()).
			WithType("internal_error").
			WithError(err)

		return c.Status(fiber.StatusInternalServerError).JSON(problem)
	}
}
