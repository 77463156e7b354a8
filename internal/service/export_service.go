package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnnyphung-laccd/calricula/internal/dto"
	"github.com/johnnyphung-laccd/calricula/internal/models"
	appErrors "github.com/johnnyphung-laccd/calricula/pkg/errors"
	"github.com/johnnyphung-laccd/calricula/pkg/export"
	"github.com/johnnyphung-laccd/calricula/pkg/storage"
)

type courseAuditor interface {
	LoadCourse(ctx context.Context, id string) (*models.Course, error)
	AuditLoadedCourse(ctx context.Context, course *models.Course) (*models.ComplianceAuditReport, error)
}

type fileStorage interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	// ResultTTL bounds how long rendered files stay on disk.
	ResultTTL time.Duration
}

// ExportFile is an opened export ready for download.
type ExportFile struct {
	File        *os.File
	Name        string
	ContentType string
	Size        int64
}

// ExportService renders compliance reports and issues signed download links.
type ExportService struct {
	auditor courseAuditor
	storage fileStorage
	signer  *storage.SignedURLSigner
	audit   auditLogger
	logger  *zap.Logger
	cfg     ExportConfig
	now     func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(auditor courseAuditor, files fileStorage, signer *storage.SignedURLSigner, audit auditLogger, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		auditor: auditor,
		storage: files,
		signer:  signer,
		audit:   audit,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// ExportCourse audits a course, renders the report and returns a signed URL.
func (s *ExportService) ExportCourse(ctx context.Context, actor *models.JWTClaims, courseID string, req dto.ExportComplianceRequest, ip, userAgent string) (*dto.ExportComplianceResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	renderer, err := export.RendererFor(strings.ToLower(req.Format))
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	course, err := s.auditor.LoadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	report, err := s.auditor.AuditLoadedCourse(ctx, course)
	if err != nil {
		return nil, err
	}

	payload, err := renderer.Render(complianceDocument(course, report, s.now()))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render compliance report")
	}

	exportID := uuid.NewString()
	relPath, err := s.storage.Save(s.filename(course, exportID, renderer.Extension()), payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store compliance report")
	}
	token, expiresAt, err := s.signer.Generate(exportID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}

	s.emitAudit(ctx, actor, course.ID, exportID, renderer.Extension(), ip, userAgent)
	s.logger.Info("compliance report exported",
		zap.String("course_id", course.ID),
		zap.String("export_id", exportID),
		zap.String("format", renderer.Extension()),
		zap.Int("bytes", len(payload)),
	)

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return &dto.ExportComplianceResponse{
		ID:        exportID,
		Format:    renderer.Extension(),
		URL:       fmt.Sprintf("%s/export/%s", prefix, token),
		ExpiresAt: expiresAt,
	}, nil
}

// Open resolves a download token to the stored file. The caller closes it.
func (s *ExportService) Open(token string) (*ExportFile, error) {
	_, relPath, err := s.signer.Parse(token)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "download link is invalid or expired")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export no longer available")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export")
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat export")
	}
	name := relPath
	if idx := strings.LastIndex(relPath, "/"); idx >= 0 {
		name = relPath[idx+1:]
	}
	contentType := "application/octet-stream"
	if dot := strings.LastIndex(name, "."); dot >= 0 {
		if renderer, err := export.RendererFor(name[dot+1:]); err == nil {
			contentType = renderer.ContentType()
		}
	}
	return &ExportFile{File: file, Name: name, ContentType: contentType, Size: info.Size()}, nil
}

// Cleanup removes files older than ttl, or the configured ResultTTL when ttl <= 0.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

// RunCleanup removes stale exports every interval until ctx is done.
func (s *ExportService) RunCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.Cleanup(0)
			if err != nil {
				s.logger.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(removed) > 0 {
				s.logger.Info("export cleanup removed files", zap.Int("count", len(removed)))
			}
		}
	}
}

func (s *ExportService) filename(course *models.Course, exportID, ext string) string {
	day := s.now().UTC().Format("20060102")
	code := sanitizeFilename(course.SubjectCode + "_" + course.CourseNumber)
	return fmt.Sprintf("%s/%s_%s.%s", day, code, exportID, ext)
}

func sanitizeFilename(raw string) string {
	if strings.Trim(raw, "_ ") == "" {
		return "course"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

var complianceReportHeaders = []string{"Rule", "Category", "Status", "Message", "Citation", "Recommendation"}

func complianceDocument(course *models.Course, report *models.ComplianceAuditReport, generatedAt time.Time) export.Document {
	rows := make([]map[string]string, 0, len(report.Results))
	for _, result := range report.Results {
		rows = append(rows, map[string]string{
			"Rule":           result.RuleID + " " + result.RuleName,
			"Category":       string(result.Category),
			"Status":         string(result.Status),
			"Message":        result.Message,
			"Citation":       derefString(result.Citation),
			"Recommendation": derefString(result.Recommendation),
		})
	}
	return export.Document{
		Title: fmt.Sprintf("Compliance Report %s %s %s", course.SubjectCode, course.CourseNumber, course.Title),
		Summary: []export.Field{
			{Label: "Course Status", Value: string(course.Status)},
			{Label: "Overall", Value: string(report.OverallStatus)},
			{Label: "Score", Value: strconv.FormatFloat(report.Score, 'f', 1, 64)},
			{Label: "Passed", Value: strconv.Itoa(report.Passed)},
			{Label: "Warnings", Value: strconv.Itoa(report.Warnings)},
			{Label: "Failed", Value: strconv.Itoa(report.Failed)},
			{Label: "Generated", Value: generatedAt.UTC().Format(time.RFC3339)},
		},
		Table: export.Dataset{Headers: complianceReportHeaders, Rows: rows},
	}
}

func (s *ExportService) emitAudit(ctx context.Context, actor *models.JWTClaims, courseID, exportID, format, ip, userAgent string) {
	if s.audit == nil {
		return
	}
	newValues, _ := json.Marshal(map[string]string{"export_id": exportID, "format": format})
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     models.AuditActionComplianceExport,
		Resource:   string(models.RecordTypeCourse),
		ResourceID: &courseID,
		NewValues:  newValues,
		IPAddress:  ip,
		UserAgent:  userAgent,
	}); err != nil {
		s.logger.Warn("failed to persist audit log", zap.String("course_id", courseID), zap.Error(err))
	}
}
