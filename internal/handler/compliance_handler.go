package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/johnnyphung-laccd/calricula/internal/dto"
	"github.com/johnnyphung-laccd/calricula/internal/models"
	"github.com/johnnyphung-laccd/calricula/internal/service"
	appErrors "github.com/johnnyphung-laccd/calricula/pkg/errors"
	"github.com/johnnyphung-laccd/calricula/pkg/response"
)

type complianceService interface {
	AuditCourse(ctx context.Context, id string) (*models.ComplianceAuditReport, error)
	AuditProgram(ctx context.Context, id string) (*models.ComplianceAuditReport, error)
	Rules() []dto.RuleInfo
}

type exportService interface {
	ExportCourse(ctx context.Context, actor *models.JWTClaims, courseID string, req dto.ExportComplianceRequest, ip, userAgent string) (*dto.ExportComplianceResponse, error)
	Open(token string) (*service.ExportFile, error)
}

type sweepService interface {
	Enqueue(ctx context.Context, actor *models.JWTClaims, departmentID string) (*models.ComplianceSweep, error)
	Get(ctx context.Context, id string) (*models.ComplianceSweep, error)
}

// ComplianceHandler serves audits, report exports and department sweeps.
type ComplianceHandler struct {
	compliance complianceService
	exports    exportService
	sweeps     sweepService
}

// NewComplianceHandler constructs the handler. exports and sweeps may be nil
// when those features are disabled.
func NewComplianceHandler(compliance complianceService, exports exportService, sweeps sweepService) *ComplianceHandler {
	return &ComplianceHandler{compliance: compliance, exports: exports, sweeps: sweeps}
}

// CourseAudit godoc
// @Summary Run the compliance audit of a course
// @Tags Compliance
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/compliance [get]
func (h *ComplianceHandler) CourseAudit(c *gin.Context) {
	report, err := h.compliance.AuditCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, report)
}

// ProgramAudit godoc
// @Summary Run the compliance audit of a program
// @Tags Compliance
// @Produce json
// @Param id path string true "Program ID"
// @Success 200 {object} response.Envelope
// @Router /programs/{id}/compliance [get]
func (h *ComplianceHandler) ProgramAudit(c *gin.Context) {
	report, err := h.compliance.AuditProgram(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, report)
}

// Rules godoc
// @Summary List compliance rules
// @Tags Compliance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /compliance/rules [get]
func (h *ComplianceHandler) Rules(c *gin.Context) {
	rules := h.compliance.Rules()
	response.JSON(c, http.StatusOK, rules, map[string]interface{}{"count": len(rules)})
}

// ExportCourse godoc
// @Summary Render a course compliance report
// @Tags Compliance
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body dto.ExportComplianceRequest true "Export format"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /courses/{id}/compliance/export [post]
func (h *ComplianceHandler) ExportCourse(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrPreconditionFailed, "exports are not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ExportComplianceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}
	res, err := h.exports.ExportCourse(c.Request.Context(), claims, c.Param("id"), req, c.ClientIP(), c.GetHeader("User-Agent"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// Download godoc
// @Summary Download a rendered report via signed token
// @Tags Compliance
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /export/{token} [get]
func (h *ComplianceHandler) Download(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrPreconditionFailed, "exports are not configured"))
		return
	}
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	file, err := h.exports.Open(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.File.Close() //nolint:errcheck
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", file.Name))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, file.Size, file.ContentType, file.File, nil)
}

// StartSweep godoc
// @Summary Audit every course of a department in the background
// @Tags Compliance
// @Accept json
// @Produce json
// @Param payload body dto.StartSweepRequest true "Department"
// @Success 202 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /compliance/sweeps [post]
func (h *ComplianceHandler) StartSweep(c *gin.Context) {
	if h.sweeps == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrPreconditionFailed, "compliance sweeps are disabled"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.StartSweepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid sweep payload"))
		return
	}
	sweep, err := h.sweeps.Enqueue(c.Request.Context(), claims, req.DepartmentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, sweep)
}

// GetSweep godoc
// @Summary Get the state of a department sweep
// @Tags Compliance
// @Produce json
// @Param id path string true "Sweep ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /compliance/sweeps/{id} [get]
func (h *ComplianceHandler) GetSweep(c *gin.Context) {
	if h.sweeps == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrPreconditionFailed, "compliance sweeps are disabled"))
		return
	}
	sweep, err := h.sweeps.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, sweep)
}
