package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/johnnyphung-laccd/calricula/internal/dto"
	"github.com/johnnyphung-laccd/calricula/internal/models"
	appErrors "github.com/johnnyphung-laccd/calricula/pkg/errors"
	"github.com/johnnyphung-laccd/calricula/pkg/response"
)

type programService interface {
	Create(ctx context.Context, actor *models.JWTClaims, req dto.ProgramRequest) (*models.Program, error)
	Get(ctx context.Context, id string) (*models.Program, error)
	List(ctx context.Context, departmentID string, statuses []string) ([]models.Program, error)
	Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.ProgramRequest) (*models.Program, error)
}

// ProgramHandler exposes degree and certificate programs.
type ProgramHandler struct {
	service programService
}

// NewProgramHandler constructs the handler.
func NewProgramHandler(service programService) *ProgramHandler {
	return &ProgramHandler{service: service}
}

// List godoc
// @Summary List programs
// @Tags Programs
// @Produce json
// @Param department_id query string false "Department ID"
// @Param status query []string false "Workflow status" collectionFormat(multi)
// @Success 200 {object} response.Envelope
// @Router /programs [get]
func (h *ProgramHandler) List(c *gin.Context) {
	programs, err := h.service.List(c.Request.Context(), c.Query("department_id"), c.QueryArray("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, programs)
}

// Create godoc
// @Summary Create a draft program
// @Tags Programs
// @Accept json
// @Produce json
// @Param payload body dto.ProgramRequest true "Program payload"
// @Success 201 {object} response.Envelope
// @Router /programs [post]
func (h *ProgramHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid program payload"))
		return
	}
	program, err := h.service.Create(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, program)
}

// Get godoc
// @Summary Get a program
// @Tags Programs
// @Produce json
// @Param id path string true "Program ID"
// @Success 200 {object} response.Envelope
// @Router /programs/{id} [get]
func (h *ProgramHandler) Get(c *gin.Context) {
	program, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, program)
}

// Update godoc
// @Summary Replace a draft program
// @Tags Programs
// @Accept json
// @Produce json
// @Param id path string true "Program ID"
// @Param payload body dto.ProgramRequest true "Program payload"
// @Success 200 {object} response.Envelope
// @Router /programs/{id} [put]
func (h *ProgramHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid program payload"))
		return
	}
	program, err := h.service.Update(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, program)
}
