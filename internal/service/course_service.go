package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/johnnyphung-laccd/calricula/internal/dto"
	"github.com/johnnyphung-laccd/calricula/internal/models"
	appErrors "github.com/johnnyphung-laccd/calricula/pkg/errors"
)

type courseStore interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id string) (*models.Course, error)
	LoadChildren(ctx context.Context, course *models.Course) error
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	UpdateDraft(ctx context.Context, course *models.Course, expectedVersion int) error
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// CourseService manages draft course outlines.
type CourseService struct {
	repo      courseStore
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs the service.
func NewCourseService(repo courseStore, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// Create stores a new Draft course authored by the actor.
func (s *CourseService) Create(ctx context.Context, actor *models.JWTClaims, req dto.CourseRequest) (*models.Course, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	course := req.ToModel()
	course.CreatedBy = actor.UserID
	course.Status = models.StatusDraft

	if err := s.repo.Create(ctx, &course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	s.emitAudit(ctx, actor, models.AuditActionCourseCreate, course.ID, nil, &course)
	return &course, nil
}

// Get returns a course with outcomes, content and requisites.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if err := s.repo.LoadChildren(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course details")
	}
	return course, nil
}

// List returns courses matching the query.
func (s *CourseService) List(ctx context.Context, actor *models.JWTClaims, query dto.CourseQuery) ([]models.Course, error) {
	filter := models.CourseFilter{
		DepartmentID: query.DepartmentID,
		Limit:        query.Limit,
		Offset:       query.Offset,
	}
	for _, raw := range query.Status {
		filter.Status = append(filter.Status, models.RecordStatus(raw))
	}
	if query.Mine && actor != nil {
		filter.CreatedBy = actor.UserID
	}
	courses, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}

// Update replaces a Draft course. Only the author or an administrator may
// edit, and req.Version must match the stored version.
func (s *CourseService) Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.CourseRequest) (*models.Course, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.CreatedBy != actor.UserID && actor.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the author may edit this course")
	}
	if current.Status != models.StatusDraft {
		return nil, appErrors.Clone(appErrors.ErrRecordLocked, fmt.Sprintf("course is in %s and cannot be edited", current.Status))
	}
	if req.Version != 0 && req.Version != current.Version {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course was modified by another request")
	}
	if req.DepartmentID != current.DepartmentID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department_id cannot be changed on an existing course")
	}

	updated := req.ToModel()
	updated.ID = current.ID
	updated.CreatedBy = current.CreatedBy
	updated.CreatedAt = current.CreatedAt
	updated.Status = current.Status
	updated.DepartmentID = current.DepartmentID
	if err := s.repo.UpdateDraft(ctx, &updated, current.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "course changed status or version during update")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	s.emitAudit(ctx, actor, models.AuditActionCourseUpdate, updated.ID, current, &updated)
	return &updated, nil
}

func (s *CourseService) validate(req dto.CourseRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	hours := map[string]decimal.NullDecimal{
		"units":         req.Units,
		"lecture_hours": req.LectureHours,
		"lab_hours":     req.LabHours,
		"outside_hours": req.OutsideHours,
	}
	for field, value := range hours {
		if value.Valid && value.Decimal.IsNegative() {
			return appErrors.Clone(appErrors.ErrValidation, field+" must not be negative")
		}
	}
	for i, item := range req.Content {
		if item.HoursAllocated.Valid && item.HoursAllocated.Decimal.IsNegative() {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("content[%d].hours_allocated must not be negative", i))
		}
	}
	return nil
}

func (s *CourseService) emitAudit(ctx context.Context, actor *models.JWTClaims, action, courseID string, before, after interface{}) {
	if s.audit == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     action,
		Resource:   string(models.RecordTypeCourse),
		ResourceID: &courseID,
	}
	if before != nil {
		entry.OldValues, _ = json.Marshal(before)
	}
	if after != nil {
		entry.NewValues, _ = json.Marshal(after)
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to persist audit log", zap.String("course_id", courseID), zap.Error(err))
	}
}
