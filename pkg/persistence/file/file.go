// Package file provides file-based persistence for invocation records.
package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/museloop/genflow/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root           string
	invocationRepo *InvocationRepository
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) persistence.Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:           cleanRoot,
		invocationRepo: NewInvocationRepository(filepath.Join(cleanRoot, "invocations")),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// InvocationRepository returns the invocation repository implementation for file persistence.
func (fp *Persistence) InvocationRepository() persistence.InvocationRepository {
	return fp.invocationRepo
}
