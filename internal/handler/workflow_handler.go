package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/johnnyphung-laccd/calricula/internal/dto"
	"github.com/johnnyphung-laccd/calricula/internal/models"
	"github.com/johnnyphung-laccd/calricula/internal/service"
	appErrors "github.com/johnnyphung-laccd/calricula/pkg/errors"
	"github.com/johnnyphung-laccd/calricula/pkg/response"
)

type workflowService interface {
	Transition(ctx context.Context, cmd service.TransitionCommand) (*service.TransitionOutcome, error)
	History(ctx context.Context, recordType models.RecordType, recordID string) ([]models.TransitionRecord, error)
}

// WorkflowHandler moves courses and programs through approval.
type WorkflowHandler struct {
	service workflowService
}

// NewWorkflowHandler constructs the handler.
func NewWorkflowHandler(service workflowService) *WorkflowHandler {
	return &WorkflowHandler{service: service}
}

// SubmitCourse godoc
// @Summary Submit a draft course for review
// @Tags Workflow
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body dto.TransitionRequest false "Optional comment"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /courses/{id}/submit [post]
func (h *WorkflowHandler) SubmitCourse(c *gin.Context) {
	h.transition(c, models.RecordTypeCourse, models.OperationSubmit)
}

// AdvanceCourse godoc
// @Summary Approve the current review stage of a course
// @Tags Workflow
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body dto.TransitionRequest false "Optional comment"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /courses/{id}/advance [post]
func (h *WorkflowHandler) AdvanceCourse(c *gin.Context) {
	h.transition(c, models.RecordTypeCourse, models.OperationAdvance)
}

// ReturnCourse godoc
// @Summary Return a course under review to Draft
// @Tags Workflow
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body dto.TransitionRequest true "Reviewer comment"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /courses/{id}/return [post]
func (h *WorkflowHandler) ReturnCourse(c *gin.Context) {
	h.transition(c, models.RecordTypeCourse, models.OperationReturn)
}

// CourseHistory godoc
// @Summary List workflow history of a course
// @Tags Workflow
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/history [get]
func (h *WorkflowHandler) CourseHistory(c *gin.Context) {
	h.history(c, models.RecordTypeCourse)
}

// SubmitProgram godoc
// @Summary Submit a draft program for review
// @Tags Workflow
// @Accept json
// @Produce json
// @Param id path string true "Program ID"
// @Param payload body dto.TransitionRequest false "Optional comment"
// @Success 200 {object} response.Envelope
// @Router /programs/{id}/submit [post]
func (h *WorkflowHandler) SubmitProgram(c *gin.Context) {
	h.transition(c, models.RecordTypeProgram, models.OperationSubmit)
}

// AdvanceProgram godoc
// @Summary Approve a program under review
// @Tags Workflow
// @Accept json
// @Produce json
// @Param id path string true "Program ID"
// @Param payload body dto.TransitionRequest false "Optional comment"
// @Success 200 {object} response.Envelope
// @Router /programs/{id}/advance [post]
func (h *WorkflowHandler) AdvanceProgram(c *gin.Context) {
	h.transition(c, models.RecordTypeProgram, models.OperationAdvance)
}

// ReturnProgram godoc
// @Summary Return a program under review to Draft
// @Tags Workflow
// @Accept json
// @Produce json
// @Param id path string true "Program ID"
// @Param payload body dto.TransitionRequest true "Reviewer comment"
// @Success 200 {object} response.Envelope
// @Router /programs/{id}/return [post]
func (h *WorkflowHandler) ReturnProgram(c *gin.Context) {
	h.transition(c, models.RecordTypeProgram, models.OperationReturn)
}

// ProgramHistory godoc
// @Summary List workflow history of a program
// @Tags Workflow
// @Produce json
// @Param id path string true "Program ID"
// @Success 200 {object} response.Envelope
// @Router /programs/{id}/history [get]
func (h *WorkflowHandler) ProgramHistory(c *gin.Context) {
	h.history(c, models.RecordTypeProgram)
}

func (h *WorkflowHandler) transition(c *gin.Context, recordType models.RecordType, op models.TransitionOperation) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid transition payload"))
		return
	}

	recordID := c.Param("id")
	outcome, err := h.service.Transition(c.Request.Context(), service.TransitionCommand{
		RecordType: recordType,
		RecordID:   recordID,
		Operation:  op,
		Comment:    req.Comment,
		Actor:      claims,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.GetHeader("User-Agent"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.TransitionResponse{
		RecordType: recordType,
		RecordID:   recordID,
		FromStatus: outcome.FromStatus,
		ToStatus:   outcome.ToStatus,
		Version:    outcome.Version,
		History:    outcome.Record,
	})
}

func (h *WorkflowHandler) history(c *gin.Context, recordType models.RecordType) {
	history, err := h.service.History(c.Request.Context(), recordType, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, map[string]interface{}{"count": len(history)})
}
