package models

import "time"

// ComplianceStatus is the verdict of a single rule or of a whole audit.
type ComplianceStatus string

const (
	CompliancePass ComplianceStatus = "PASS"
	ComplianceWarn ComplianceStatus = "WARN"
	ComplianceFail ComplianceStatus = "FAIL"
)

// ComplianceCategory groups related rules in reports.
type ComplianceCategory string

const (
	CategoryCatalog      ComplianceCategory = "Catalog"
	CategoryUnits        ComplianceCategory = "Units"
	CategoryCodes        ComplianceCategory = "Codes"
	CategoryOutcomes     ComplianceCategory = "Outcomes"
	CategoryContent      ComplianceCategory = "Content"
	CategoryRequisites   ComplianceCategory = "Requisites"
	CategoryArticulation ComplianceCategory = "Articulation"
	CategoryProgram      ComplianceCategory = "Program"
)

// ComplianceResult is a single finding produced by a rule.
type ComplianceResult struct {
	RuleID         string             `json:"rule_id"`
	RuleName       string             `json:"rule_name"`
	Category       ComplianceCategory `json:"category"`
	Status         ComplianceStatus   `json:"status"`
	Message        string             `json:"message"`
	Citation       *string            `json:"citation,omitempty"`
	Recommendation *string            `json:"recommendation,omitempty"`
}

// ComplianceAuditReport summarises every result of one audit run.
type ComplianceAuditReport struct {
	OverallStatus     ComplianceStatus                          `json:"overall_status"`
	Score             float64                                   `json:"score"`
	Passed            int                                       `json:"passed"`
	Failed            int                                       `json:"failed"`
	Warnings          int                                       `json:"warnings"`
	Total             int                                       `json:"total"`
	Results           []ComplianceResult                        `json:"results"`
	Categories        []ComplianceCategory                      `json:"categories"`
	ResultsByCategory map[ComplianceCategory][]ComplianceResult `json:"results_by_category"`
}

// SweepStatus tracks a department-wide background audit.
type SweepStatus string

const (
	SweepStatusQueued   SweepStatus = "QUEUED"
	SweepStatusRunning  SweepStatus = "RUNNING"
	SweepStatusFinished SweepStatus = "FINISHED"
	SweepStatusFailed   SweepStatus = "FAILED"
)

// SweepCourseSummary condenses one course audit inside a sweep.
type SweepCourseSummary struct {
	CourseID      string           `json:"course_id"`
	Title         string           `json:"title"`
	Status        RecordStatus     `json:"status"`
	OverallStatus ComplianceStatus `json:"overall_status"`
	Score         float64          `json:"score"`
	Failed        int              `json:"failed"`
	Warnings      int              `json:"warnings"`
}

// ComplianceSweep is the cached state of a department sweep job.
type ComplianceSweep struct {
	ID           string               `json:"id"`
	DepartmentID string               `json:"department_id"`
	RequestedBy  string               `json:"requested_by"`
	Status       SweepStatus          `json:"status"`
	Courses      []SweepCourseSummary `json:"courses,omitempty"`
	Error        string               `json:"error,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	FinishedAt   *time.Time           `json:"finished_at,omitempty"`
}
