// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"log/slog"

	"github.com/museloop/genflow/pkg/flow"
	"github.com/museloop/genflow/pkg/flows"
	"github.com/museloop/genflow/pkg/registry"
)

// NewRegistry returns a registry holding every built-in flow bound to o.
func NewRegistry(log *slog.Logger, o *flow.Orchestrator) *registry.Registry {
	reg := registry.NewRegistry(log)

	err := flows.RegisterDefaults(reg, o)
	if err != nil {
		panic(err)
	}

	return reg
}
