package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/johnnyphung-laccd/calricula/internal/compliance"
	"github.com/johnnyphung-laccd/calricula/internal/dto"
	"github.com/johnnyphung-laccd/calricula/internal/models"
	appErrors "github.com/johnnyphung-laccd/calricula/pkg/errors"
)

type courseReader interface {
	GetByID(ctx context.Context, id string) (*models.Course, error)
	LoadChildren(ctx context.Context, course *models.Course) error
}

type programReader interface {
	GetByID(ctx context.Context, id string) (*models.Program, error)
}

type justificationReader interface {
	HasJustification(ctx context.Context, courseID string) (bool, error)
}

// ComplianceService loads curriculum records and runs the rule engine on them.
type ComplianceService struct {
	courses          courseReader
	programs         programReader
	justifications   justificationReader
	engine           *compliance.Engine
	cache            *CacheService
	metrics          *MetricsService
	logger           *zap.Logger
	justificationTTL time.Duration
}

// ComplianceServiceConfig tunes collaborator lookups.
type ComplianceServiceConfig struct {
	JustificationCacheTTL time.Duration
}

// NewComplianceService wires the compliance use cases.
func NewComplianceService(courses courseReader, programs programReader, justifications justificationReader, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg ComplianceServiceConfig) *ComplianceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComplianceService{
		courses:          courses,
		programs:         programs,
		justifications:   justifications,
		engine:           compliance.NewEngine(),
		cache:            cache,
		metrics:          metrics,
		logger:           logger,
		justificationTTL: cfg.JustificationCacheTTL,
	}
}

// LoadCourse fetches a course with its child collections.
func (s *ComplianceService) LoadCourse(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if err := s.courses.LoadChildren(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course details")
	}
	return course, nil
}

// AuditCourse loads a course and evaluates every course rule.
func (s *ComplianceService) AuditCourse(ctx context.Context, id string) (*models.ComplianceAuditReport, error) {
	course, err := s.LoadCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.AuditLoadedCourse(ctx, course)
}

// AuditLoadedCourse evaluates a course whose children are already loaded.
func (s *ComplianceService) AuditLoadedCourse(ctx context.Context, course *models.Course) (*models.ComplianceAuditReport, error) {
	in := compliance.Input{Course: *course}
	if !compliance.CIDAligned(*course) {
		onFile, err := s.justificationOnFile(ctx, course.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check articulation justification")
		}
		in.JustificationOnFile = onFile
	}

	report := s.engine.Audit(in)
	s.metrics.ObserveAudit(models.RecordTypeCourse, &report)
	s.logger.Debug("course audited",
		zap.String("course_id", course.ID),
		zap.String("overall_status", string(report.OverallStatus)),
		zap.Float64("score", report.Score),
	)
	return &report, nil
}

// AuditProgram loads a program and evaluates the program rules.
func (s *ComplianceService) AuditProgram(ctx context.Context, id string) (*models.ComplianceAuditReport, error) {
	program, err := s.programs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	report := s.engine.AuditProgram(*program)
	s.metrics.ObserveAudit(models.RecordTypeProgram, &report)
	return &report, nil
}

// Rules lists the course rules followed by the program rules.
func (s *ComplianceService) Rules() []dto.RuleInfo {
	courseRules := s.engine.Rules()
	programRules := compliance.ProgramRules()
	out := make([]dto.RuleInfo, 0, len(courseRules)+len(programRules))
	for _, r := range courseRules {
		out = append(out, dto.RuleInfo{ID: r.ID, Name: r.Name, Category: r.Category, Citation: r.Citation, RecordType: models.RecordTypeCourse})
	}
	for _, r := range programRules {
		out = append(out, dto.RuleInfo{ID: r.ID, Name: r.Name, Category: models.CategoryProgram, Citation: r.Citation, RecordType: models.RecordTypeProgram})
	}
	return out
}

func justificationCacheKey(courseID string) string {
	return "compliance:justification:" + courseID
}

func (s *ComplianceService) justificationOnFile(ctx context.Context, courseID string) (bool, error) {
	var cached bool
	if hit, err := s.cache.Get(ctx, justificationCacheKey(courseID), &cached); err == nil && hit {
		return cached, nil
	}
	if s.justifications == nil {
		return false, nil
	}
	onFile, err := s.justifications.HasJustification(ctx, courseID)
	if err != nil {
		return false, err
	}
	_ = s.cache.Set(ctx, justificationCacheKey(courseID), onFile, s.justificationTTL)
	return onFile, nil
}
