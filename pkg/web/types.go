// Package web provides the HTTP API for listing, rendering and invoking flows.
package web

import (
	"encoding/json"

	"github.com/museloop/genflow/pkg/models"
)

// ListInvocationsQuery holds the query parameters of GET /invocations.
type ListInvocationsQuery struct {
	Flow  string `query:"flow"`
	Limit int    `query:"limit" validate:"min=0,max=100"`
}

// FlowsResponse lists the registered flows.
type FlowsResponse struct {
	Flows []models.FlowDescriptor `json:"flows"`
}

// InvokeResponse is returned by a successful invocation.
type InvokeResponse struct {
	InvocationID string          `json:"invocation_id"`
	Flow         string          `json:"flow"`
	Attempts     int             `json:"attempts"`
	Output       json.RawMessage `json:"output"`
}

// InvocationsResponse lists invocation records.
type InvocationsResponse struct {
	Invocations []*models.InvocationRecord `json:"invocations"`
	Limit       int                        `json:"limit"`
}
