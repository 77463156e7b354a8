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

const courseColumns = `id, subject_code, course_number, title, description, units, lecture_hours, lab_hours, outside_hours,
       cb_codes, cid_number, status, version, created_by, department_id, created_at, updated_at`

// CourseRepository persists course outlines and their child collections.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// Create inserts a draft course together with its outcomes, content and requisites.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) (err error) {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	if course.Status == "" {
		course.Status = models.StatusDraft
	}
	if course.Version == 0 {
		course.Version = 1
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin course transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO courses
	(id, subject_code, course_number, title, description, units, lecture_hours, lab_hours, outside_hours, cb_codes, cid_number, status, version, created_by, department_id, created_at, updated_at)
	VALUES (:id, :subject_code, :course_number, :title, :description, :units, :lecture_hours, :lab_hours, :outside_hours, :cb_codes, :cid_number, :status, :version, :created_by, :department_id, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	if err = insertCourseChildren(ctx, tx, course); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit course: %w", err)
	}
	return nil
}

// GetByID fetches the course row without children.
func (r *CourseRepository) GetByID(ctx context.Context, id string) (*models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE id = $1", courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// LoadChildren populates outcomes, content and requisites ordered by sequence.
func (r *CourseRepository) LoadChildren(ctx context.Context, course *models.Course) error {
	const outcomesQuery = `SELECT id, course_id, sequence, outcome_text, bloom_level FROM course_outcomes WHERE course_id = $1 ORDER BY sequence`
	var outcomes []models.LearningOutcome
	if err := r.db.SelectContext(ctx, &outcomes, outcomesQuery, course.ID); err != nil {
		return fmt.Errorf("load course outcomes: %w", err)
	}

	const contentQuery = `SELECT id, course_id, sequence, topic, hours_allocated FROM course_content WHERE course_id = $1 ORDER BY sequence`
	var content []models.ContentItem
	if err := r.db.SelectContext(ctx, &content, contentQuery, course.ID); err != nil {
		return fmt.Errorf("load course content: %w", err)
	}

	const requisitesQuery = `SELECT id, course_id, sequence, requisite_type, requisite_course_id, content_review FROM course_requisites WHERE course_id = $1 ORDER BY sequence`
	var requisites []models.Requisite
	if err := r.db.SelectContext(ctx, &requisites, requisitesQuery, course.ID); err != nil {
		return fmt.Errorf("load course requisites: %w", err)
	}

	course.Outcomes = outcomes
	course.Content = content
	course.Requisites = requisites
	return nil
}

// List returns courses matching the filter, most recently updated first, or
// in id order when filter.ByID is set.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 4)
	builder.WriteString(fmt.Sprintf("SELECT %s FROM courses", courseColumns))

	conditions := make([]string, 0, 3)
	if filter.DepartmentID != "" {
		args = append(args, filter.DepartmentID)
		conditions = append(conditions, fmt.Sprintf("department_id = $%d", len(args)))
	}
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedBy != "" {
		args = append(args, filter.CreatedBy)
		conditions = append(conditions, fmt.Sprintf("created_by = $%d", len(args)))
	}
	if filter.ByID && filter.AfterID != "" {
		args = append(args, filter.AfterID)
		conditions = append(conditions, fmt.Sprintf("id > $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if filter.ByID {
		builder.WriteString(fmt.Sprintf(" ORDER BY id LIMIT %d", limit))
	} else {
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		builder.WriteString(fmt.Sprintf(" ORDER BY updated_at DESC LIMIT %d OFFSET %d", limit, offset))
	}

	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// UpdateDraft overwrites a Draft course and its children. The row must still
// be at expectedVersion; otherwise sql.ErrNoRows is returned.
func (r *CourseRepository) UpdateDraft(ctx context.Context, course *models.Course, expectedVersion int) (err error) {
	course.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin course transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := fmt.Sprintf(`UPDATE courses SET subject_code = :subject_code, course_number = :course_number, title = :title,
	description = :description, units = :units, lecture_hours = :lecture_hours, lab_hours = :lab_hours,
	outside_hours = :outside_hours, cb_codes = :cb_codes, cid_number = :cid_number, version = version + 1, updated_at = :updated_at
	WHERE id = :id AND version = :expected_version AND status = '%s'`, models.StatusDraft)
	result, err := tx.NamedExecContext(ctx, query, map[string]interface{}{
		"id":               course.ID,
		"subject_code":     course.SubjectCode,
		"course_number":    course.CourseNumber,
		"title":            course.Title,
		"description":      course.Description,
		"units":            course.Units,
		"lecture_hours":    course.LectureHours,
		"lab_hours":        course.LabHours,
		"outside_hours":    course.OutsideHours,
		"cb_codes":         course.Codes,
		"cid_number":       course.CIDNumber,
		"updated_at":       course.UpdatedAt,
		"expected_version": expectedVersion,
	})
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check course update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	for _, table := range []string{"course_outcomes", "course_content", "course_requisites"} {
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE course_id = $1", table), course.ID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if err = insertCourseChildren(ctx, tx, course); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit course: %w", err)
	}
	course.Version = expectedVersion + 1
	return nil
}

func insertCourseChildren(ctx context.Context, tx *sqlx.Tx, course *models.Course) error {
	for i := range course.Outcomes {
		outcome := &course.Outcomes[i]
		if outcome.ID == "" {
			outcome.ID = uuid.NewString()
		}
		outcome.CourseID = course.ID
		if outcome.Sequence == 0 {
			outcome.Sequence = i + 1
		}
		const query = `INSERT INTO course_outcomes (id, course_id, sequence, outcome_text, bloom_level) VALUES (:id, :course_id, :sequence, :outcome_text, :bloom_level)`
		if _, err := tx.NamedExecContext(ctx, query, outcome); err != nil {
			return fmt.Errorf("insert course outcome: %w", err)
		}
	}
	for i := range course.Content {
		item := &course.Content[i]
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		item.CourseID = course.ID
		if item.Sequence == 0 {
			item.Sequence = i + 1
		}
		const query = `INSERT INTO course_content (id, course_id, sequence, topic, hours_allocated) VALUES (:id, :course_id, :sequence, :topic, :hours_allocated)`
		if _, err := tx.NamedExecContext(ctx, query, item); err != nil {
			return fmt.Errorf("insert course content: %w", err)
		}
	}
	for i := range course.Requisites {
		req := &course.Requisites[i]
		if req.ID == "" {
			req.ID = uuid.NewString()
		}
		req.CourseID = course.ID
		if req.Sequence == 0 {
			req.Sequence = i + 1
		}
		const query = `INSERT INTO course_requisites (id, course_id, sequence, requisite_type, requisite_course_id, content_review) VALUES (:id, :course_id, :sequence, :requisite_type, :requisite_course_id, :content_review)`
		if _, err := tx.NamedExecContext(ctx, query, req); err != nil {
			return fmt.Errorf("insert course requisite: %w", err)
		}
	}
	return nil
}
