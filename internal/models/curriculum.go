package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BloomLevel tags the cognitive level of a learning outcome.
type BloomLevel string

const (
	BloomRemember   BloomLevel = "REMEMBER"
	BloomUnderstand BloomLevel = "UNDERSTAND"
	BloomApply      BloomLevel = "APPLY"
	BloomAnalyze    BloomLevel = "ANALYZE"
	BloomEvaluate   BloomLevel = "EVALUATE"
	BloomCreate     BloomLevel = "CREATE"
)

// HigherOrder reports whether the level is analyze, evaluate or create.
func (b BloomLevel) HigherOrder() bool {
	switch b {
	case BloomAnalyze, BloomEvaluate, BloomCreate:
		return true
	default:
		return false
	}
}

// RequisiteType distinguishes prerequisites, corequisites and advisories.
type RequisiteType string

const (
	RequisitePrerequisite RequisiteType = "PREREQUISITE"
	RequisiteCorequisite  RequisiteType = "COREQUISITE"
	RequisiteAdvisory     RequisiteType = "ADVISORY"
)

// ProgramType enumerates award types for programs.
type ProgramType string

const (
	ProgramTypeAA          ProgramType = "AA"
	ProgramTypeAS          ProgramType = "AS"
	ProgramTypeAAT         ProgramType = "AA-T"
	ProgramTypeAST         ProgramType = "AS-T"
	ProgramTypeCertificate ProgramType = "CERTIFICATE"
)

// Degree reports whether the program type awards an associate degree.
func (p ProgramType) Degree() bool {
	switch p {
	case ProgramTypeAA, ProgramTypeAS, ProgramTypeAAT, ProgramTypeAST:
		return true
	default:
		return false
	}
}

// Course is the course-outline record moved through approval.
type Course struct {
	ID           string              `db:"id" json:"id"`
	SubjectCode  string              `db:"subject_code" json:"subject_code"`
	CourseNumber string              `db:"course_number" json:"course_number"`
	Title        string              `db:"title" json:"title"`
	Description  string              `db:"description" json:"description"`
	Units        decimal.NullDecimal `db:"units" json:"units"`
	LectureHours decimal.NullDecimal `db:"lecture_hours" json:"lecture_hours"`
	LabHours     decimal.NullDecimal `db:"lab_hours" json:"lab_hours"`
	OutsideHours decimal.NullDecimal `db:"outside_hours" json:"outside_hours"`
	Codes        ClassificationCodes `db:"cb_codes" json:"cb_codes"`
	CIDNumber    *string             `db:"cid_number" json:"cid_number,omitempty"`
	Status       RecordStatus        `db:"status" json:"status"`
	Version      int                 `db:"version" json:"version"`
	CreatedBy    string              `db:"created_by" json:"created_by"`
	DepartmentID string              `db:"department_id" json:"department_id"`
	CreatedAt    time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `db:"updated_at" json:"updated_at"`

	Outcomes   []LearningOutcome `db:"-" json:"outcomes"`
	Content    []ContentItem     `db:"-" json:"content"`
	Requisites []Requisite       `db:"-" json:"requisites"`
}

// LearningOutcome is a student learning outcome of a course.
type LearningOutcome struct {
	ID         string     `db:"id" json:"id"`
	CourseID   string     `db:"course_id" json:"course_id"`
	Sequence   int        `db:"sequence" json:"sequence"`
	Text       string     `db:"outcome_text" json:"text"`
	BloomLevel BloomLevel `db:"bloom_level" json:"bloom_level"`
}

// ContentItem is one topic of the course content outline.
type ContentItem struct {
	ID             string              `db:"id" json:"id"`
	CourseID       string              `db:"course_id" json:"course_id"`
	Sequence       int                 `db:"sequence" json:"sequence"`
	Topic          string              `db:"topic" json:"topic"`
	HoursAllocated decimal.NullDecimal `db:"hours_allocated" json:"hours_allocated"`
}

// Requisite links a course to a prerequisite, corequisite or advisory.
type Requisite struct {
	ID                string        `db:"id" json:"id"`
	CourseID          string        `db:"course_id" json:"course_id"`
	Sequence          int           `db:"sequence" json:"sequence"`
	Type              RequisiteType `db:"requisite_type" json:"type"`
	RequisiteCourseID *string       `db:"requisite_course_id" json:"requisite_course_id,omitempty"`
	Justification     *string       `db:"content_review" json:"justification,omitempty"`
}

// CourseFilter constrains course listing queries.
type CourseFilter struct {
	DepartmentID string
	Status       []RecordStatus
	CreatedBy    string
	Limit        int
	Offset       int
	// ByID switches to keyset paging: rows are ordered by id and start after
	// AfterID. Offset is ignored.
	ByID    bool
	AfterID string
}

// Program is a degree or certificate program record.
type Program struct {
	ID           string              `db:"id" json:"id"`
	Title        string              `db:"title" json:"title"`
	Description  string              `db:"description" json:"description"`
	ProgramType  ProgramType         `db:"program_type" json:"program_type"`
	TotalUnits   decimal.NullDecimal `db:"total_units" json:"total_units"`
	Status       RecordStatus        `db:"status" json:"status"`
	Version      int                 `db:"version" json:"version"`
	CreatedBy    string              `db:"created_by" json:"created_by"`
	DepartmentID string              `db:"department_id" json:"department_id"`
	CreatedAt    time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `db:"updated_at" json:"updated_at"`
}
