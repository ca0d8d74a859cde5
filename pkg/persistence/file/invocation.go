package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/museloop/genflow/pkg/models"
	"github.com/museloop/genflow/pkg/persistence"
)

// InvocationRepository stores one JSON file per invocation record.
type InvocationRepository struct {
	root   string
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewInvocationRepository creates a new invocation repository.
func NewInvocationRepository(root string) *InvocationRepository {
	return &InvocationRepository{
		root:   root,
		logger: slog.Default().With("module", "file_invocation_repository"),
	}
}

// Save writes the record to <root>/<id>.json, replacing any previous version.
// Records without an ID get a UUIDv7.
func (r *InvocationRepository) Save(_ context.Context, record *models.InvocationRecord) error {
	if record.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate invocation ID: %w", err)
		}

		record.ID = id.String()
	}

	if strings.ContainsAny(record.ID, `/\`) || record.Flow == "" {
		return persistence.NewInvocationError("Save", record.ID, persistence.ErrInvalidRecord)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return persistence.NewInvocationError("Save", record.ID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.root, 0o750); err != nil {
		return persistence.NewInvocationError("Save", record.ID, err)
	}

	tmp := r.path(record.ID) + ".tmp"

	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return persistence.NewInvocationError("Save", record.ID, err)
	}

	if err := os.Rename(tmp, r.path(record.ID)); err != nil {
		return persistence.NewInvocationError("Save", record.ID, err)
	}

	return nil
}

func (r *InvocationRepository) GetByID(_ context.Context, id string) (*models.InvocationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.load(id)
}

// ListByFlow returns records newest first. Unreadable files are logged and skipped.
func (r *InvocationRepository) ListByFlow(ctx context.Context, flow string, limit int) ([]*models.InvocationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	files, err := fs.Glob(os.DirFS(r.root), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list invocation files: %w", err)
	}

	records := make([]*models.InvocationRecord, 0, len(files))

	for _, file := range files {
		record, err := r.load(strings.TrimSuffix(file, ".json"))
		if err != nil {
			r.logger.WarnContext(ctx, "Skipping unreadable invocation record", "file", file, "error", err)

			continue
		}

		if flow == "" || record.Flow == flow {
			records = append(records, record)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	if limit = persistence.NormalizeLimit(limit); len(records) > limit {
		records = records[:limit]
	}

	return records, nil
}

func (r *InvocationRepository) load(id string) (*models.InvocationRecord, error) {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil, persistence.NewInvocationError("GetByID", id, persistence.ErrInvocationNotFound)
	}

	data, err := os.ReadFile(r.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, persistence.NewInvocationError("GetByID", id, persistence.ErrInvocationNotFound)
		}

		return nil, persistence.NewInvocationError("GetByID", id, err)
	}

	var record models.InvocationRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, persistence.NewInvocationError("GetByID", id, err)
	}

	return &record, nil
}

func (r *InvocationRepository) path(id string) string {
	return filepath.Join(r.root, id+".json")
}
