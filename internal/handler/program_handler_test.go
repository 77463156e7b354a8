package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnnyphung-laccd/calricula/internal/dto"
	"github.com/johnnyphung-laccd/calricula/internal/models"
)

type programServiceMock struct {
	department string
	statuses   []string
	created    dto.ProgramRequest
}

func (m *programServiceMock) Create(_ context.Context, _ *models.JWTClaims, req dto.ProgramRequest) (*models.Program, error) {
	m.created = req
	return &models.Program{ID: "p1", Title: req.Title, Status: models.StatusDraft}, nil
}

func (m *programServiceMock) Get(_ context.Context, id string) (*models.Program, error) {
	return &models.Program{ID: id}, nil
}

func (m *programServiceMock) List(_ context.Context, departmentID string, statuses []string) ([]models.Program, error) {
	m.department = departmentID
	m.statuses = statuses
	return []models.Program{}, nil
}

func (m *programServiceMock) Update(_ context.Context, _ *models.JWTClaims, id string, _ dto.ProgramRequest) (*models.Program, error) {
	return &models.Program{ID: id, Version: 2}, nil
}

func TestProgramHandlerCreateAndList(t *testing.T) {
	svc := &programServiceMock{}
	handler := NewProgramHandler(svc)

	c, w := newGinContext(http.MethodPost, "/programs", []byte(`{"title":"Mathematics AS-T","program_type":"AS-T","total_units":60,"department_id":"dept-math"}`))
	withUser(c, "author", models.RoleFaculty)
	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "AS-T", svc.created.ProgramType)
	assert.Equal(t, "60", svc.created.TotalUnits.Decimal.String())

	c, w = newGinContext(http.MethodGet, "/programs?department_id=dept-math&status=Review", nil)
	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dept-math", svc.department)
	assert.Equal(t, []string{"Review"}, svc.statuses)
}

func TestProgramHandlerUpdateRequiresUser(t *testing.T) {
	handler := NewProgramHandler(&programServiceMock{})
	c, w := newGinContext(http.MethodPut, "/programs/p1", []byte(`{}`))
	c.AddParam("id", "p1")

	handler.Update(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
