package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/johnnyphung-laccd/calricula/internal/models"
)

const programColumns = `id, title, description, program_type, total_units, status, version, created_by, department_id, created_at, updated_at`

// ProgramRepository persists degree and certificate programs.
type ProgramRepository struct {
	db *sqlx.DB
}

// NewProgramRepository constructs the repository.
func NewProgramRepository(db *sqlx.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// Create inserts a draft program.
func (r *ProgramRepository) Create(ctx context.Context, program *models.Program) error {
	if program.ID == "" {
		program.ID = uuid.NewString()
	}
	if program.Status == "" {
		program.Status = models.StatusDraft
	}
	if program.Version == 0 {
		program.Version = 1
	}
	now := time.Now().UTC()
	if program.CreatedAt.IsZero() {
		program.CreatedAt = now
	}
	program.UpdatedAt = now

	const query = `INSERT INTO programs
	(id, title, description, program_type, total_units, status, version, created_by, department_id, created_at, updated_at)
	VALUES (:id, :title, :description, :program_type, :total_units, :status, :version, :created_by, :department_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, program); err != nil {
		return fmt.Errorf("create program: %w", err)
	}
	return nil
}

// GetByID fetches a program by identifier.
func (r *ProgramRepository) GetByID(ctx context.Context, id string) (*models.Program, error) {
	query := fmt.Sprintf("SELECT %s FROM programs WHERE id = $1", programColumns)
	var program models.Program
	if err := r.db.GetContext(ctx, &program, query, id); err != nil {
		return nil, err
	}
	return &program, nil
}

// List returns programs of a department, optionally restricted by status.
func (r *ProgramRepository) List(ctx context.Context, departmentID string, statuses []models.RecordStatus) ([]models.Program, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 1+len(statuses))
	builder.WriteString(fmt.Sprintf("SELECT %s FROM programs", programColumns))

	conditions := make([]string, 0, 2)
	if departmentID != "" {
		args = append(args, departmentID)
		conditions = append(conditions, fmt.Sprintf("department_id = $%d", len(args)))
	}
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY title ASC")

	var programs []models.Program
	if err := r.db.SelectContext(ctx, &programs, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	return programs, nil
}

// UpdateDraft overwrites a Draft program still at expectedVersion.
func (r *ProgramRepository) UpdateDraft(ctx context.Context, program *models.Program, expectedVersion int) error {
	program.UpdatedAt = time.Now().UTC()
	query := fmt.Sprintf(`UPDATE programs SET title = :title, description = :description, program_type = :program_type,
	total_units = :total_units, version = version + 1, updated_at = :updated_at
	WHERE id = :id AND version = :expected_version AND status = '%s'`, models.StatusDraft)
	result, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":               program.ID,
		"title":            program.Title,
		"description":      program.Description,
		"program_type":     program.ProgramType,
		"total_units":      program.TotalUnits,
		"updated_at":       program.UpdatedAt,
		"expected_version": expectedVersion,
	})
	if err != nil {
		return fmt.Errorf("update program: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check program update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	program.Version = expectedVersion + 1
	return nil
}
