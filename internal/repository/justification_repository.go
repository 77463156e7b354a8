package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// JustificationRepository reads articulation justifications filed for courses
// that are not aligned to a C-ID descriptor.
type JustificationRepository struct {
	db *sqlx.DB
}

// NewJustificationRepository constructs the repository.
func NewJustificationRepository(db *sqlx.DB) *JustificationRepository {
	return &JustificationRepository{db: db}
}

// HasJustification reports whether a justification is on file for the course.
func (r *JustificationRepository) HasJustification(ctx context.Context, courseID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM cid_justifications WHERE course_id = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, courseID); err != nil {
		return false, fmt.Errorf("check cid justification: %w", err)
	}
	return exists, nil
}
