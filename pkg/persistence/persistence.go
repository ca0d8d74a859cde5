// Package persistence provides the storage abstraction for invocation records.
package persistence

import (
	"context"

	"github.com/museloop/genflow/pkg/models"
)

type Persistence interface {
	InvocationRepository() InvocationRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// InvocationRepository stores the records callers keep about invocations.
type InvocationRepository interface {
	// Save inserts or replaces a record.
	Save(ctx context.Context, record *models.InvocationRecord) error

	// GetByID returns ErrInvocationNotFound when no record has the id.
	GetByID(ctx context.Context, id string) (*models.InvocationRecord, error)

	// ListByFlow returns the newest records of a flow first. An empty flow
	// lists every flow.
	ListByFlow(ctx context.Context, flow string, limit int) ([]*models.InvocationRecord, error)
}

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// NormalizeLimit clamps a list limit to the supported range.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}

	if limit > MaxListLimit {
		return MaxListLimit
	}

	return limit
}
