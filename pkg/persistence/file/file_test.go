package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/museloop/genflow/pkg/models"
	"github.com/museloop/genflow/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id, flow string, createdAt time.Time) *models.InvocationRecord {
	return &models.InvocationRecord{
		ID:        id,
		Flow:      flow,
		Outcome:   models.OutcomeSuccess,
		Input:     json.RawMessage(`{"query":"lofi hip hop"}`),
		Output:    json.RawMessage(`{"centralLabel":"lofi hip hop"}`),
		Attempts:  1,
		CreatedAt: createdAt.UTC(),
		Duration:  120 * time.Millisecond,
	}
}

func TestPersistence_HealthCheck(t *testing.T) {
	p := NewPersistence("file://" + t.TempDir())
	require.NoError(t, p.HealthCheck(context.Background()))
	require.NoError(t, p.Close(context.Background()))

	missing := NewPersistence(t.TempDir() + "/missing")
	assert.Error(t, missing.HealthCheck(context.Background()))
}

func TestInvocationRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewPersistence(t.TempDir()).InvocationRepository()

	saved := record("inv-1", "visual-search", time.Now())
	require.NoError(t, repo.Save(ctx, saved))

	loaded, err := repo.GetByID(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, saved.Flow, loaded.Flow)
	assert.JSONEq(t, string(saved.Output), string(loaded.Output))
	assert.Equal(t, saved.Duration, loaded.Duration)

	saved.Attempts = 2
	require.NoError(t, repo.Save(ctx, saved))

	loaded, err = repo.GetByID(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Attempts)
}

func TestInvocationRepository_NotFound(t *testing.T) {
	repo := NewInvocationRepository(t.TempDir())

	_, err := repo.GetByID(context.Background(), "missing")
	assert.True(t, persistence.IsInvocationNotFound(err))

	_, err = repo.GetByID(context.Background(), "../etc/passwd")
	assert.True(t, persistence.IsInvocationNotFound(err))

	err = repo.Save(context.Background(), record("a/b", "x", time.Now()))
	assert.ErrorIs(t, err, persistence.ErrInvalidRecord)

	err = repo.Save(context.Background(), record("c", "", time.Now()))
	assert.ErrorIs(t, err, persistence.ErrInvalidRecord)
}

func TestInvocationRepository_GeneratesID(t *testing.T) {
	repo := NewInvocationRepository(t.TempDir())

	unsaved := record("", "creator-bio", time.Now())
	require.NoError(t, repo.Save(context.Background(), unsaved))
	require.NotEmpty(t, unsaved.ID)

	loaded, err := repo.GetByID(context.Background(), unsaved.ID)
	require.NoError(t, err)
	assert.Equal(t, "creator-bio", loaded.Flow)
}

func TestInvocationRepository_ListByFlow(t *testing.T) {
	ctx := context.Background()
	repo := NewInvocationRepository(t.TempDir())
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, record("a", "dj-commentary", base)))
	require.NoError(t, repo.Save(ctx, record("b", "dj-commentary", base.Add(time.Minute))))
	require.NoError(t, repo.Save(ctx, record("c", "cover-art", base.Add(2*time.Minute))))

	records, err := repo.ListByFlow(ctx, "dj-commentary", 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "b", records[0].ID)
	assert.Equal(t, "a", records[1].ID)

	all, err := repo.ListByFlow(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "c", all[0].ID)
}

func TestInvocationRepository_ListEmpty(t *testing.T) {
	repo := NewInvocationRepository(t.TempDir() + "/never-created")

	records, err := repo.ListByFlow(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestInvocationRepository_ListSkipsUnreadableFiles(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	repo := NewInvocationRepository(root)

	require.NoError(t, repo.Save(ctx, record("good", "visual-search", time.Now())))
	require.NoError(t, os.WriteFile(filepath.Join(root, "broken.json"), []byte("{not json"), 0o600))

	records, err := repo.ListByFlow(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "good", records[0].ID)

	_, err = repo.GetByID(ctx, "broken")
	assert.Error(t, err)
}
