package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/museloop/genflow/pkg/models"
	"github.com/museloop/genflow/pkg/persistence"
)

// InvocationRepository handles invocation record database operations.
type InvocationRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewInvocationRepository creates a new invocation repository.
func NewInvocationRepository(db *sql.DB, logger *slog.Logger) *InvocationRepository {
	return &InvocationRepository{db: db, logger: logger}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// Save inserts or replaces an invocation record. Records without an ID get a UUIDv7.
func (r *InvocationRepository) Save(ctx context.Context, record *models.InvocationRecord) error {
	if record.Flow == "" {
		return persistence.NewInvocationError("Save", record.ID, persistence.ErrInvalidRecord)
	}

	if record.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate invocation ID: %w", err)
		}

		record.ID = id.String()
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	violations, err := json.Marshal(record.Violations)
	if err != nil {
		return persistence.NewInvocationError("Save", record.ID, err)
	}

	query := `
		INSERT INTO flow_invocations (
			id
		  , flow
		  , outcome
		  , input
		  , output
		  , error_kind
		  , error_reason
		  , error_message
		  , violations
		  , attempts
		  , created_at
		  , duration_ns
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			flow = EXCLUDED.flow
		  , outcome = EXCLUDED.outcome
		  , input = EXCLUDED.input
		  , output = EXCLUDED.output
		  , error_kind = EXCLUDED.error_kind
		  , error_reason = EXCLUDED.error_reason
		  , error_message = EXCLUDED.error_message
		  , violations = EXCLUDED.violations
		  , attempts = EXCLUDED.attempts
		  , created_at = EXCLUDED.created_at
		  , duration_ns = EXCLUDED.duration_ns
	`

	_, err = r.db.ExecContext(ctx, query,
		record.ID,
		record.Flow,
		string(record.Outcome),
		nullJSON(record.Input),
		nullJSON(record.Output),
		string(record.ErrorKind),
		record.ErrorReason,
		record.ErrorMessage,
		string(violations),
		record.Attempts,
		record.CreatedAt,
		record.Duration.Nanoseconds(),
	)
	if err != nil {
		return persistence.NewInvocationError("Save", record.ID, err)
	}

	return nil
}

func (r *InvocationRepository) GetByID(ctx context.Context, id string) (*models.InvocationRecord, error) {
	query := `
		SELECT
			id
		  , flow
		  , outcome
		  , input
		  , output
		  , error_kind
		  , error_reason
		  , error_message
		  , violations
		  , attempts
		  , created_at
		  , duration_ns
		FROM flow_invocations
		WHERE id = $1
	`

	record, err := r.scanRecord(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewInvocationError("GetByID", id, persistence.ErrInvocationNotFound)
		}

		return nil, persistence.NewInvocationError("GetByID", id, err)
	}

	return record, nil
}

func (r *InvocationRepository) ListByFlow(ctx context.Context, flow string, limit int) ([]*models.InvocationRecord, error) {
	query := `
		SELECT
			id
		  , flow
		  , outcome
		  , input
		  , output
		  , error_kind
		  , error_reason
		  , error_message
		  , violations
		  , attempts
		  , created_at
		  , duration_ns
		FROM flow_invocations
		WHERE ($1 = '' OR flow = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, flow, persistence.NormalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query invocations: %w", err)
	}

	defer func(ctx context.Context, r *InvocationRepository) {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}(ctx, r)

	records := make([]*models.InvocationRecord, 0)

	for rows.Next() {
		record, err := r.scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invocation: %w", err)
		}

		records = append(records, record)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating invocations: %w", err)
	}

	return records, nil
}

func (r *InvocationRepository) scanRecord(row rowScanner) (*models.InvocationRecord, error) {
	var (
		record     models.InvocationRecord
		outcome    string
		input      []byte
		output     []byte
		errorKind  sql.NullString
		reason     sql.NullString
		message    sql.NullString
		violations []byte
		durationNs int64
	)

	err := row.Scan(
		&record.ID,
		&record.Flow,
		&outcome,
		&input,
		&output,
		&errorKind,
		&reason,
		&message,
		&violations,
		&record.Attempts,
		&record.CreatedAt,
		&durationNs,
	)
	if err != nil {
		return nil, err
	}

	record.Outcome = models.Outcome(outcome)
	record.ErrorKind = models.ErrorKind(errorKind.String)
	record.ErrorReason = reason.String
	record.ErrorMessage = message.String
	record.Duration = time.Duration(durationNs)

	if len(input) > 0 {
		record.Input = json.RawMessage(input)
	}

	if len(output) > 0 {
		record.Output = json.RawMessage(output)
	}

	if len(violations) > 0 {
		err = json.Unmarshal(violations, &record.Violations)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal violations: %w", err)
		}
	}

	return &record, nil
}

func nullJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}

	return string(raw)
}
