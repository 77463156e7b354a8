package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/johnnyphung-laccd/calricula/internal/dto"
	"github.com/johnnyphung-laccd/calricula/internal/models"
	appErrors "github.com/johnnyphung-laccd/calricula/pkg/errors"
)

type programStore interface {
	Create(ctx context.Context, program *models.Program) error
	GetByID(ctx context.Context, id string) (*models.Program, error)
	List(ctx context.Context, departmentID string, statuses []models.RecordStatus) ([]models.Program, error)
	UpdateDraft(ctx context.Context, program *models.Program, expectedVersion int) error
}

// ProgramService manages draft degree and certificate programs.
type ProgramService struct {
	repo      programStore
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProgramService constructs the service.
func NewProgramService(repo programStore, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *ProgramService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgramService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// Create stores a new Draft program.
func (s *ProgramService) Create(ctx context.Context, actor *models.JWTClaims, req dto.ProgramRequest) (*models.Program, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	program := req.ToModel()
	program.CreatedBy = actor.UserID
	program.Status = models.StatusDraft
	if err := s.repo.Create(ctx, &program); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create program")
	}
	s.emitAudit(ctx, actor, program.ID, &program)
	return &program, nil
}

// Get returns a program by id.
func (s *ProgramService) Get(ctx context.Context, id string) (*models.Program, error) {
	program, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	return program, nil
}

// List returns programs of a department.
func (s *ProgramService) List(ctx context.Context, departmentID string, statuses []string) ([]models.Program, error) {
	filter := make([]models.RecordStatus, 0, len(statuses))
	for _, raw := range statuses {
		filter = append(filter, models.RecordStatus(raw))
	}
	programs, err := s.repo.List(ctx, departmentID, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list programs")
	}
	if programs == nil {
		programs = []models.Program{}
	}
	return programs, nil
}

// Update replaces a Draft program on behalf of its author or an administrator.
func (s *ProgramService) Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.ProgramRequest) (*models.Program, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.CreatedBy != actor.UserID && actor.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the author may edit this program")
	}
	if current.Status != models.StatusDraft {
		return nil, appErrors.Clone(appErrors.ErrRecordLocked, fmt.Sprintf("program is in %s and cannot be edited", current.Status))
	}
	if req.Version != 0 && req.Version != current.Version {
		return nil, appErrors.Clone(appErrors.ErrConflict, "program was modified by another request")
	}
	if req.DepartmentID != current.DepartmentID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department_id cannot be changed on an existing program")
	}

	updated := req.ToModel()
	updated.ID = current.ID
	updated.CreatedBy = current.CreatedBy
	updated.CreatedAt = current.CreatedAt
	updated.Status = current.Status
	updated.DepartmentID = current.DepartmentID
	if err := s.repo.UpdateDraft(ctx, &updated, current.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "program changed status or version during update")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update program")
	}
	return &updated, nil
}

func (s *ProgramService) validate(req dto.ProgramRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid program payload")
	}
	if req.TotalUnits.Valid && req.TotalUnits.Decimal.IsNegative() {
		return appErrors.Clone(appErrors.ErrValidation, "total_units must not be negative")
	}
	return nil
}

func (s *ProgramService) emitAudit(ctx context.Context, actor *models.JWTClaims, programID string, program *models.Program) {
	if s.audit == nil {
		return
	}
	payload, _ := json.Marshal(program)
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     models.AuditActionProgramCreate,
		Resource:   string(models.RecordTypeProgram),
		ResourceID: &programID,
		NewValues:  payload,
	}); err != nil {
		s.logger.Warn("failed to persist audit log", zap.String("program_id", programID), zap.Error(err))
	}
}
