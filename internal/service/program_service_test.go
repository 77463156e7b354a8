package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnnyphung-laccd/calricula/internal/dto"
	"github.com/johnnyphung-laccd/calricula/internal/models"
	appErrors "github.com/johnnyphung-laccd/calricula/pkg/errors"
)

type programStoreStub struct {
	programs     map[string]*models.Program
	lastStatuses []models.RecordStatus
}

func (s *programStoreStub) Create(_ context.Context, program *models.Program) error {
	program.ID = "program-new"
	program.Version = 1
	stored := *program
	s.programs[program.ID] = &stored
	return nil
}

func (s *programStoreStub) GetByID(_ context.Context, id string) (*models.Program, error) {
	p, ok := s.programs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *p
	return &clone, nil
}

func (s *programStoreStub) List(_ context.Context, _ string, statuses []models.RecordStatus) ([]models.Program, error) {
	s.lastStatuses = statuses
	return nil, nil
}

func (s *programStoreStub) UpdateDraft(_ context.Context, program *models.Program, expectedVersion int) error {
	current, ok := s.programs[program.ID]
	if !ok || current.Version != expectedVersion {
		return sql.ErrNoRows
	}
	program.Version = expectedVersion + 1
	stored := *program
	s.programs[program.ID] = &stored
	return nil
}

func TestProgramServiceCreateAndUpdate(t *testing.T) {
	repo := &programStoreStub{programs: map[string]*models.Program{}}
	audit := &auditLogStub{}
	svc := NewProgramService(repo, audit, nil, nil)
	author := &models.JWTClaims{UserID: "author", Role: models.RoleFaculty}

	req := dto.ProgramRequest{
		Title:        "Mathematics AS-T",
		ProgramType:  string(models.ProgramTypeAST),
		TotalUnits:   decimal.NewNullDecimal(decimal.NewFromInt(60)),
		DepartmentID: "dept-math",
	}
	program, err := svc.Create(context.Background(), author, req)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, program.Status)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionProgramCreate, audit.entries[0].Action)

	req.Title = "Mathematics for Transfer"
	req.Version = 1
	updated, err := svc.Update(context.Background(), author, program.ID, req)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, "Mathematics for Transfer", updated.Title)
}

func TestProgramServiceUpdateKeepsDepartment(t *testing.T) {
	repo := &programStoreStub{programs: map[string]*models.Program{
		"p1": {ID: "p1", Status: models.StatusDraft, Version: 1, CreatedBy: "author", DepartmentID: "dept-math"},
	}}
	svc := NewProgramService(repo, nil, nil, nil)
	author := &models.JWTClaims{UserID: "author", Role: models.RoleFaculty}

	req := dto.ProgramRequest{ProgramType: string(models.ProgramTypeAA), DepartmentID: "dept-art", Version: 1}
	_, err := svc.Update(context.Background(), author, "p1", req)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Equal(t, "dept-math", repo.programs["p1"].DepartmentID)

	req.DepartmentID = "dept-math"
	updated, err := svc.Update(context.Background(), author, "p1", req)
	require.NoError(t, err)
	assert.Equal(t, "dept-math", updated.DepartmentID)
	assert.Equal(t, repo.programs["p1"].DepartmentID, updated.DepartmentID)
}

func TestProgramServiceValidation(t *testing.T) {
	svc := NewProgramService(&programStoreStub{programs: map[string]*models.Program{}}, nil, nil, nil)
	author := &models.JWTClaims{UserID: "author"}

	_, err := svc.Create(context.Background(), author, dto.ProgramRequest{ProgramType: "Diploma", DepartmentID: "d"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(context.Background(), author, dto.ProgramRequest{
		ProgramType:  string(models.ProgramTypeAA),
		DepartmentID: "d",
		TotalUnits:   decimal.NewNullDecimal(decimal.NewFromInt(-3)),
	})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestProgramServiceUpdateLocked(t *testing.T) {
	repo := &programStoreStub{programs: map[string]*models.Program{
		"p1": {ID: "p1", Status: models.StatusReview, Version: 2, CreatedBy: "author"},
	}}
	svc := NewProgramService(repo, nil, nil, nil)

	_, err := svc.Update(context.Background(), &models.JWTClaims{UserID: "author"}, "p1", dto.ProgramRequest{
		ProgramType:  string(models.ProgramTypeAA),
		DepartmentID: "d",
	})
	assert.Equal(t, appErrors.ErrRecordLocked.Code, appErrors.FromError(err).Code)

	_, err = svc.Get(context.Background(), "missing")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestProgramServiceListStatuses(t *testing.T) {
	repo := &programStoreStub{programs: map[string]*models.Program{}}
	svc := NewProgramService(repo, nil, nil, nil)

	programs, err := svc.List(context.Background(), "dept-math", []string{"Review"})
	require.NoError(t, err)
	assert.NotNil(t, programs)
	assert.Equal(t, []models.RecordStatus{models.StatusReview}, repo.lastStatuses)
}
