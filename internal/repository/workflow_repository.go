package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/johnnyphung-laccd/calricula/internal/models"
)

// WorkflowRepository applies status transitions and reads workflow history.
type WorkflowRepository struct {
	db *sqlx.DB
}

// NewWorkflowRepository constructs the repository.
func NewWorkflowRepository(db *sqlx.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

// ApplyTransitionParams carries a transition accepted by the workflow core.
type ApplyTransitionParams struct {
	ExpectedVersion int
	Record          models.TransitionRecord
}

func recordTable(recordType models.RecordType) (string, error) {
	switch recordType {
	case models.RecordTypeCourse:
		return "courses", nil
	case models.RecordTypeProgram:
		return "programs", nil
	default:
		return "", fmt.Errorf("unsupported record type %q", recordType)
	}
}

// ApplyTransition moves the record from Record.FromStatus to Record.ToStatus
// and appends the history row in one transaction. If another transition won
// the race the status or version no longer match and sql.ErrNoRows is returned.
func (r *WorkflowRepository) ApplyTransition(ctx context.Context, params ApplyTransitionParams) (err error) {
	rec := params.Record
	table, err := recordTable(rec.RecordType)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin workflow transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	updateQuery := fmt.Sprintf(`UPDATE %s SET status = $1, version = version + 1, updated_at = $2
	WHERE id = $3 AND status = $4 AND version = $5`, table)
	result, err := tx.ExecContext(ctx, updateQuery, rec.ToStatus, rec.CreatedAt, rec.RecordID, rec.FromStatus, params.ExpectedVersion)
	if err != nil {
		return fmt.Errorf("update %s status: %w", rec.RecordType, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check %s status rows: %w", rec.RecordType, err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	const insertQuery = `INSERT INTO workflow_history (id, record_type, record_id, from_status, to_status, comment, actor_id, created_at)
	VALUES (:id, :record_type, :record_id, :from_status, :to_status, :comment, :actor_id, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insertQuery, rec); err != nil {
		return fmt.Errorf("insert workflow history: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit workflow transition: %w", err)
	}
	return nil
}

// ListHistory returns the transitions of a record ordered by creation time.
func (r *WorkflowRepository) ListHistory(ctx context.Context, recordType models.RecordType, recordID string) ([]models.TransitionRecord, error) {
	const query = `SELECT id, record_type, record_id, from_status, to_status, comment, actor_id, created_at
	FROM workflow_history WHERE record_type = $1 AND record_id = $2 ORDER BY created_at ASC, id ASC`
	var history []models.TransitionRecord
	if err := r.db.SelectContext(ctx, &history, query, recordType, recordID); err != nil {
		return nil, fmt.Errorf("list workflow history: %w", err)
	}
	return history, nil
}
