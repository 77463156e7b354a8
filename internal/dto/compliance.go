package dto

import (
	"time"

	"github.com/johnnyphung-laccd/calricula/internal/models"
)

// ExportComplianceRequest selects the rendered report format.
type ExportComplianceRequest struct {
	Format string `json:"format" validate:"required,oneof=csv pdf"`
}

// ExportComplianceResponse points at the rendered report.
type ExportComplianceResponse struct {
	ID        string    `json:"id"`
	Format    string    `json:"format"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// StartSweepRequest asks for a department-wide audit.
type StartSweepRequest struct {
	DepartmentID string `json:"department_id" validate:"required"`
}

// RuleInfo describes one registered compliance rule.
type RuleInfo struct {
	ID         string                    `json:"id"`
	Name       string                    `json:"name"`
	Category   models.ComplianceCategory `json:"category"`
	Citation   string                    `json:"citation"`
	RecordType models.RecordType         `json:"record_type"`
}
