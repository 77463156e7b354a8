package handler

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnnyphung-laccd/calricula/internal/dto"
	"github.com/johnnyphung-laccd/calricula/internal/models"
	"github.com/johnnyphung-laccd/calricula/internal/service"
	appErrors "github.com/johnnyphung-laccd/calricula/pkg/errors"
)

type complianceServiceMock struct {
	report *models.ComplianceAuditReport
	err    error
}

func (m *complianceServiceMock) AuditCourse(_ context.Context, _ string) (*models.ComplianceAuditReport, error) {
	return m.report, m.err
}

func (m *complianceServiceMock) AuditProgram(_ context.Context, _ string) (*models.ComplianceAuditReport, error) {
	return m.report, m.err
}

func (m *complianceServiceMock) Rules() []dto.RuleInfo {
	return []dto.RuleInfo{{ID: "T5-001", Name: "Catalog description", RecordType: models.RecordTypeCourse}}
}

type exportServiceMock struct {
	lastFormat string
	path       string
	err        error
}

func (m *exportServiceMock) ExportCourse(_ context.Context, _ *models.JWTClaims, courseID string, req dto.ExportComplianceRequest, _, _ string) (*dto.ExportComplianceResponse, error) {
	m.lastFormat = req.Format
	if m.err != nil {
		return nil, m.err
	}
	return &dto.ExportComplianceResponse{ID: "e1", Format: req.Format, URL: "/api/v1/export/tok", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (m *exportServiceMock) Open(token string) (*service.ExportFile, error) {
	if token != "tok" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "download link is invalid or expired")
	}
	f, err := os.Open(m.path)
	if err != nil {
		return nil, err
	}
	info, _ := f.Stat()
	return &service.ExportFile{File: f, Name: filepath.Base(m.path), ContentType: "text/csv", Size: info.Size()}, nil
}

type sweepServiceMock struct {
	sweep *models.ComplianceSweep
	err   error
}

func (m *sweepServiceMock) Enqueue(_ context.Context, actor *models.JWTClaims, departmentID string) (*models.ComplianceSweep, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.ComplianceSweep{ID: "s1", DepartmentID: departmentID, RequestedBy: actor.UserID, Status: models.SweepStatusQueued}, nil
}

func (m *sweepServiceMock) Get(_ context.Context, _ string) (*models.ComplianceSweep, error) {
	return m.sweep, m.err
}

func TestComplianceHandlerCourseAudit(t *testing.T) {
	handler := NewComplianceHandler(&complianceServiceMock{report: &models.ComplianceAuditReport{OverallStatus: models.ComplianceWarn, Score: 87.5}}, nil, nil)
	c, w := newGinContext(http.MethodGet, "/courses/c1/compliance", nil)
	c.AddParam("id", "c1")

	handler.CourseAudit(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"overall_status":"WARN"`)
	assert.Contains(t, w.Body.String(), `"score":87.5`)
}

func TestComplianceHandlerRules(t *testing.T) {
	handler := NewComplianceHandler(&complianceServiceMock{}, nil, nil)
	c, w := newGinContext(http.MethodGet, "/compliance/rules", nil)

	handler.Rules(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeEnvelope(t, w).Meta["count"])
}

func TestComplianceHandlerExportAndDownload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "MATH_227.csv")
	require.NoError(t, os.WriteFile(path, []byte("Overall,PASS\n"), 0o600))
	exports := &exportServiceMock{path: path}
	handler := NewComplianceHandler(&complianceServiceMock{}, exports, nil)

	c, w := newGinContext(http.MethodPost, "/courses/c1/compliance/export", []byte(`{"format":"csv"}`))
	c.AddParam("id", "c1")
	withUser(c, "u1", models.RoleFaculty)
	handler.ExportCourse(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "csv", exports.lastFormat)

	c, w = newGinContext(http.MethodGet, "/export/tok", nil)
	c.AddParam("token", "tok")
	handler.Download(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "MATH_227.csv")
	body, _ := io.ReadAll(w.Body)
	assert.Equal(t, "Overall,PASS\n", string(body))

	c, w = newGinContext(http.MethodGet, "/export/bad", nil)
	c.AddParam("token", "bad")
	handler.Download(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestComplianceHandlerExportDisabled(t *testing.T) {
	handler := NewComplianceHandler(&complianceServiceMock{}, nil, nil)
	c, w := newGinContext(http.MethodPost, "/courses/c1/compliance/export", []byte(`{"format":"csv"}`))
	withUser(c, "u1", models.RoleFaculty)

	handler.ExportCourse(c)
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
}

func TestComplianceHandlerSweeps(t *testing.T) {
	sweeps := &sweepServiceMock{sweep: &models.ComplianceSweep{ID: "s1", Status: models.SweepStatusFinished}}
	handler := NewComplianceHandler(&complianceServiceMock{}, nil, sweeps)

	c, w := newGinContext(http.MethodPost, "/compliance/sweeps", []byte(`{"department_id":"dept-math"}`))
	withUser(c, "chair", models.RoleCurriculumChair)
	handler.StartSweep(c)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"QUEUED"`)

	c, w = newGinContext(http.MethodGet, "/compliance/sweeps/s1", nil)
	c.AddParam("id", "s1")
	handler.GetSweep(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"FINISHED"`)

	disabled := NewComplianceHandler(&complianceServiceMock{}, nil, nil)
	c, w = newGinContext(http.MethodGet, "/compliance/sweeps/s1", nil)
	disabled.GetSweep(c)
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
}
