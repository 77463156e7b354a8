package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnnyphung-laccd/calricula/internal/models"
	appErrors "github.com/johnnyphung-laccd/calricula/pkg/errors"
	"github.com/johnnyphung-laccd/calricula/pkg/jobs"
)

const (
	sweepJobType  = "compliance_sweep"
	sweepPageSize = 200
)

type sweepCourseSource interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	LoadChildren(ctx context.Context, course *models.Course) error
}

type loadedCourseAuditor interface {
	AuditLoadedCourse(ctx context.Context, course *models.Course) (*models.ComplianceAuditReport, error)
}

// SweepConfig tunes the sweep worker pool.
type SweepConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
	JobTimeout time.Duration
	ResultTTL  time.Duration
}

// SweepService audits every course of a department in the background and
// keeps the progress in the cache.
type SweepService struct {
	courses   sweepCourseSource
	auditor   loadedCourseAuditor
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
	queue     *jobs.Queue
	resultTTL time.Duration
	now       func() time.Time
}

// NewSweepService wires the sweep queue. Call Start before enqueuing.
func NewSweepService(courses sweepCourseSource, auditor loadedCourseAuditor, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg SweepConfig) *SweepService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 10 * time.Minute
	}
	s := &SweepService{
		courses:   courses,
		auditor:   auditor,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		resultTTL: cfg.ResultTTL,
		now:       time.Now,
	}
	s.queue = jobs.NewQueue(sweepJobType, s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		JobTimeout: cfg.JobTimeout,
		OnGiveUp:   s.giveUp,
		Logger:     logger,
	})
	return s
}

// Start launches the workers.
func (s *SweepService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop waits for in-flight sweeps to return.
func (s *SweepService) Stop() {
	s.queue.Stop()
}

// Enqueue records a queued sweep for the department and schedules it.
func (s *SweepService) Enqueue(ctx context.Context, actor *models.JWTClaims, departmentID string) (*models.ComplianceSweep, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if departmentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department_id is required")
	}
	if !s.cache.Enabled() {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "compliance sweeps require the cache to be enabled")
	}

	sweep := &models.ComplianceSweep{
		ID:           uuid.NewString(),
		DepartmentID: departmentID,
		RequestedBy:  actor.UserID,
		Status:       models.SweepStatusQueued,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.save(ctx, sweep); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record sweep")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: sweep.ID, Type: sweepJobType, Payload: sweep.ID}); err != nil {
		if errors.Is(err, jobs.ErrNotRunning) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "compliance sweeps are not running")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue sweep")
	}
	s.logger.Info("compliance sweep queued", zap.String("sweep_id", sweep.ID), zap.String("department_id", departmentID))
	return sweep, nil
}

// Get returns the current state of a sweep.
func (s *SweepService) Get(ctx context.Context, id string) (*models.ComplianceSweep, error) {
	var sweep models.ComplianceSweep
	hit, err := s.cache.Get(ctx, sweepCacheKey(id), &sweep)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sweep")
	}
	if !hit {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "sweep not found")
	}
	return &sweep, nil
}

func sweepCacheKey(id string) string {
	return "compliance:sweep:" + id
}

func (s *SweepService) save(ctx context.Context, sweep *models.ComplianceSweep) error {
	return s.cache.Set(ctx, sweepCacheKey(sweep.ID), sweep, s.resultTTL)
}

func (s *SweepService) handle(ctx context.Context, job jobs.Job) error {
	started := s.now()
	sweep, err := s.Get(ctx, job.ID)
	if err != nil {
		return err
	}
	sweep.Status = models.SweepStatusRunning
	sweep.Courses = nil
	sweep.Error = ""
	if err := s.save(ctx, sweep); err != nil {
		return err
	}

	// Pages by id so concurrent edits cannot skip or repeat a course.
	filter := models.CourseFilter{DepartmentID: sweep.DepartmentID, Limit: sweepPageSize, ByID: true}
	for {
		page, err := s.courses.List(ctx, filter)
		if err != nil {
			return err
		}
		for i := range page {
			course := page[i]
			if err := s.courses.LoadChildren(ctx, &course); err != nil {
				return err
			}
			report, err := s.auditor.AuditLoadedCourse(ctx, &course)
			if err != nil {
				return err
			}
			sweep.Courses = append(sweep.Courses, models.SweepCourseSummary{
				CourseID:      course.ID,
				Title:         course.Title,
				Status:        course.Status,
				OverallStatus: report.OverallStatus,
				Score:         report.Score,
				Failed:        report.Failed,
				Warnings:      report.Warnings,
			})
		}
		if len(page) < filter.Limit {
			break
		}
		filter.AfterID = page[len(page)-1].ID
	}

	finished := s.now().UTC()
	sweep.Status = models.SweepStatusFinished
	sweep.FinishedAt = &finished
	if err := s.save(ctx, sweep); err != nil {
		return err
	}
	s.metrics.ObserveSweep(models.SweepStatusFinished, s.now().Sub(started))
	s.logger.Info("compliance sweep finished",
		zap.String("sweep_id", sweep.ID),
		zap.Int("courses", len(sweep.Courses)),
	)
	return nil
}

func (s *SweepService) giveUp(ctx context.Context, job jobs.Job, cause error) {
	var sweep models.ComplianceSweep
	if hit, err := s.cache.Get(ctx, sweepCacheKey(job.ID), &sweep); err != nil || !hit {
		s.logger.Warn("sweep state missing after failure", zap.String("sweep_id", job.ID), zap.Error(cause))
		return
	}
	finished := s.now().UTC()
	sweep.Status = models.SweepStatusFailed
	sweep.Error = cause.Error()
	sweep.Courses = nil
	sweep.FinishedAt = &finished
	if err := s.save(ctx, &sweep); err != nil {
		s.logger.Warn("failed to record sweep failure", zap.String("sweep_id", job.ID), zap.Error(err))
	}
	s.metrics.ObserveSweep(models.SweepStatusFailed, finished.Sub(sweep.CreatedAt))
}
