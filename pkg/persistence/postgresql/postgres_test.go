package postgresql_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/museloop/genflow/pkg/models"
	"github.com/museloop/genflow/pkg/persistence"
	"github.com/museloop/genflow/pkg/persistence/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var postgresContainer *postgres.PostgresContainer

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	for _, table := range []string{"flow_invocations", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context, string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("genflow_test"),
			postgres.WithUsername("genflow"),
			postgres.WithPassword("genflow"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDb(ctx, t, databaseURL)

		err = p.Close(ctx)
		require.NoError(t, err)

		cancel()
	})

	return p, ctx, databaseURL
}

func newRecord(id, flow string, createdAt time.Time) *models.InvocationRecord {
	return &models.InvocationRecord{
		ID:        id,
		Flow:      flow,
		Outcome:   models.OutcomeSuccess,
		Input:     json.RawMessage(`{"artistName":"Nova"}`),
		Output:    json.RawMessage(`{"bio":"Nova makes synth pop."}`),
		Attempts:  1,
		CreatedAt: createdAt.UTC().Truncate(time.Microsecond),
		Duration:  250 * time.Millisecond,
	}
}

func TestNewPersistence_Migrations(t *testing.T) {
	p, ctx, databaseURL := setupTestDB(t)

	require.NoError(t, p.HealthCheck(ctx))

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() {
		err := db.Close()
		require.NoError(t, err)
	}()

	var exists bool

	err = db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = 'flow_invocations'
		)
	`).Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists)

	var version int

	err = db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestInvocationRepository_SaveAndGet(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.InvocationRepository()

	record := newRecord("", "creator-bio", time.Now())
	require.NoError(t, repo.Save(ctx, record))
	require.NotEmpty(t, record.ID)

	loaded, err := repo.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "creator-bio", loaded.Flow)
	assert.Equal(t, models.OutcomeSuccess, loaded.Outcome)
	assert.JSONEq(t, string(record.Input), string(loaded.Input))
	assert.JSONEq(t, string(record.Output), string(loaded.Output))
	assert.Equal(t, record.Duration, loaded.Duration)
	assert.True(t, record.CreatedAt.Equal(loaded.CreatedAt))
	assert.Empty(t, loaded.Violations)
}

func TestInvocationRepository_SaveFailure(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.InvocationRepository()

	record := newRecord("inv-failed", "profile-theme", time.Now())
	record.Outcome = models.OutcomeFailure
	record.Output = nil
	record.ErrorKind = models.ErrorKindInvalidOutput
	record.ErrorMessage = "output does not match the declared shape"
	record.Violations = []models.Violation{{Field: "primaryColor", Rule: "pattern", Message: "does not match pattern"}}
	record.Attempts = 3

	require.NoError(t, repo.Save(ctx, record))

	loaded, err := repo.GetByID(ctx, "inv-failed")
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeFailure, loaded.Outcome)
	assert.Equal(t, models.ErrorKindInvalidOutput, loaded.ErrorKind)
	assert.Nil(t, loaded.Output)
	assert.Equal(t, 3, loaded.Attempts)
	require.Len(t, loaded.Violations, 1)
	assert.Equal(t, "primaryColor", loaded.Violations[0].Field)

	record.Attempts = 4
	require.NoError(t, repo.Save(ctx, record))

	loaded, err = repo.GetByID(ctx, "inv-failed")
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.Attempts)
}

func TestInvocationRepository_GetByIDNotFound(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	_, err := p.InvocationRepository().GetByID(ctx, "missing")
	assert.True(t, persistence.IsInvocationNotFound(err))
}

func TestInvocationRepository_ListByFlow(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.InvocationRepository()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, newRecord("a", "creator-bio", base)))
	require.NoError(t, repo.Save(ctx, newRecord("b", "creator-bio", base.Add(time.Minute))))
	require.NoError(t, repo.Save(ctx, newRecord("c", "cover-art", base.Add(2*time.Minute))))

	records, err := repo.ListByFlow(ctx, "creator-bio", 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "b", records[0].ID)
	assert.Equal(t, "a", records[1].ID)

	all, err := repo.ListByFlow(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID)

	limited, err := repo.ListByFlow(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
