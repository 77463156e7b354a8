package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/johnnyphung-laccd/calricula/internal/models"
	"github.com/johnnyphung-laccd/calricula/internal/repository"
	"github.com/johnnyphung-laccd/calricula/internal/workflow"
	appErrors "github.com/johnnyphung-laccd/calricula/pkg/errors"
)

type workflowStore interface {
	ApplyTransition(ctx context.Context, params repository.ApplyTransitionParams) error
	ListHistory(ctx context.Context, recordType models.RecordType, recordID string) ([]models.TransitionRecord, error)
}

type workflowCourseReader interface {
	GetByID(ctx context.Context, id string) (*models.Course, error)
}

// TransitionCommand is a request to move a record through its workflow.
type TransitionCommand struct {
	RecordType models.RecordType
	RecordID   string
	Operation  models.TransitionOperation
	Comment    string
	Actor      *models.JWTClaims
	IPAddress  string
	UserAgent  string
}

// TransitionOutcome describes an applied transition.
type TransitionOutcome struct {
	FromStatus models.RecordStatus
	ToStatus   models.RecordStatus
	Version    int
	Record     models.TransitionRecord
}

// recordState is the slice of a course or program the workflow needs.
type recordState struct {
	Status   models.RecordStatus
	Version  int
	AuthorID string
}

// WorkflowService authorizes, validates and persists approval transitions.
type WorkflowService struct {
	store      workflowStore
	courses    workflowCourseReader
	programs   programReader
	audit      auditLogger
	authorizer *workflow.Authorizer
	recorder   *workflow.Recorder
	metrics    *MetricsService
	logger     *zap.Logger
}

// WorkflowServiceOption configures the service.
type WorkflowServiceOption func(*WorkflowService)

// WithAuthorizer replaces the default authorizer.
func WithAuthorizer(a *workflow.Authorizer) WorkflowServiceOption {
	return func(s *WorkflowService) {
		if a != nil {
			s.authorizer = a
		}
	}
}

// WithRecorder replaces the default history recorder.
func WithRecorder(r *workflow.Recorder) WorkflowServiceOption {
	return func(s *WorkflowService) {
		if r != nil {
			s.recorder = r
		}
	}
}

// NewWorkflowService constructs the service.
func NewWorkflowService(store workflowStore, courses workflowCourseReader, programs programReader, audit auditLogger, metrics *MetricsService, logger *zap.Logger, opts ...WorkflowServiceOption) *WorkflowService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &WorkflowService{
		store:      store,
		courses:    courses,
		programs:   programs,
		audit:      audit,
		authorizer: workflow.NewAuthorizer(),
		recorder:   workflow.NewRecorder(),
		metrics:    metrics,
		logger:     logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Transition applies submit, advance or return to a record. Authorization is
// checked first, then the state machine; nothing is written unless both pass.
func (s *WorkflowService) Transition(ctx context.Context, cmd TransitionCommand) (*TransitionOutcome, error) {
	if cmd.Actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	machine, err := workflow.For(cmd.RecordType)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unknown record type")
	}

	state, err := s.load(ctx, cmd.RecordType, cmd.RecordID)
	if err != nil {
		return nil, err
	}

	decision := s.authorizer.Authorize(workflow.Request{
		RecordType: cmd.RecordType,
		Current:    state.Status,
		Operation:  cmd.Operation,
		Actor:      workflow.Actor{UserID: cmd.Actor.UserID, Role: cmd.Actor.Role},
		AuthorID:   state.AuthorID,
	})
	if !decision.Allowed {
		s.metrics.ObserveTransition(cmd.RecordType, cmd.Operation, TransitionDenied)
		s.logger.Info("workflow transition denied",
			zap.String("record_type", string(cmd.RecordType)),
			zap.String("record_id", cmd.RecordID),
			zap.String("actor_id", cmd.Actor.UserID),
			zap.String("reason", decision.Reason),
		)
		return nil, appErrors.Clone(appErrors.ErrForbidden, decision.Reason)
	}

	to, err := machine.Target(cmd.Operation, state.Status, cmd.Comment)
	if err != nil {
		s.metrics.ObserveTransition(cmd.RecordType, cmd.Operation, TransitionInvalid)
		if errors.Is(err, workflow.ErrCommentRequired) {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "a comment is required when returning a record")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidTransition.Code, appErrors.ErrInvalidTransition.Status, err.Error())
	}

	rec := s.recorder.Record(cmd.RecordType, cmd.RecordID, state.Status, to, cmd.Actor.UserID, cmd.Comment)
	if err := s.store.ApplyTransition(ctx, repository.ApplyTransitionParams{ExpectedVersion: state.Version, Record: rec}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.ObserveTransition(cmd.RecordType, cmd.Operation, TransitionConflict)
			return nil, appErrors.Clone(appErrors.ErrConflict, "record changed while the transition was in flight")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply transition")
	}

	s.metrics.ObserveTransition(cmd.RecordType, cmd.Operation, TransitionApplied)
	s.emitAudit(ctx, cmd, rec)
	s.logger.Info("workflow transition applied",
		zap.String("record_type", string(cmd.RecordType)),
		zap.String("record_id", cmd.RecordID),
		zap.String("from", string(rec.FromStatus)),
		zap.String("to", string(rec.ToStatus)),
		zap.String("actor_id", cmd.Actor.UserID),
	)
	return &TransitionOutcome{
		FromStatus: rec.FromStatus,
		ToStatus:   rec.ToStatus,
		Version:    state.Version + 1,
		Record:     rec,
	}, nil
}

// History returns the transitions of a record in creation order.
func (s *WorkflowService) History(ctx context.Context, recordType models.RecordType, recordID string) ([]models.TransitionRecord, error) {
	if _, err := workflow.For(recordType); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unknown record type")
	}
	if _, err := s.load(ctx, recordType, recordID); err != nil {
		return nil, err
	}
	history, err := s.store.ListHistory(ctx, recordType, recordID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load workflow history")
	}
	if history == nil {
		history = []models.TransitionRecord{}
	}
	return history, nil
}

func (s *WorkflowService) load(ctx context.Context, recordType models.RecordType, id string) (*recordState, error) {
	var (
		state *recordState
		err   error
	)
	switch recordType {
	case models.RecordTypeCourse:
		var course *models.Course
		if course, err = s.courses.GetByID(ctx, id); err == nil {
			state = &recordState{Status: course.Status, Version: course.Version, AuthorID: course.CreatedBy}
		}
	case models.RecordTypeProgram:
		var program *models.Program
		if program, err = s.programs.GetByID(ctx, id); err == nil {
			state = &recordState{Status: program.Status, Version: program.Version, AuthorID: program.CreatedBy}
		}
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, strings.ToLower(string(recordType))+" not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load record")
	}
	if state == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "record not found")
	}
	return state, nil
}

func (s *WorkflowService) emitAudit(ctx context.Context, cmd TransitionCommand, rec models.TransitionRecord) {
	if s.audit == nil {
		return
	}
	oldValues, _ := json.Marshal(map[string]interface{}{"status": rec.FromStatus})
	newValues, _ := json.Marshal(map[string]interface{}{
		"status":     rec.ToStatus,
		"operation":  cmd.Operation,
		"history_id": rec.ID,
		"comment":    rec.Comment,
	})
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &cmd.Actor.UserID,
		Action:     models.AuditActionWorkflowTransition,
		Resource:   string(cmd.RecordType),
		ResourceID: &rec.RecordID,
		OldValues:  oldValues,
		NewValues:  newValues,
		IPAddress:  cmd.IPAddress,
		UserAgent:  cmd.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to persist audit log", zap.String("record_id", rec.RecordID), zap.Error(err))
	}
}
