package dto

import (
	"github.com/shopspring/decimal"

	"github.com/johnnyphung-laccd/calricula/internal/models"
)

// CourseRequest is the payload for creating or replacing a draft course.
type CourseRequest struct {
	SubjectCode  string              `json:"subject_code" validate:"required,max=10"`
	CourseNumber string              `json:"course_number" validate:"required,max=10"`
	Title        string              `json:"title" validate:"max=255"`
	Description  string              `json:"description"`
	Units        decimal.NullDecimal `json:"units" swaggertype:"number"`
	LectureHours decimal.NullDecimal `json:"lecture_hours" swaggertype:"number"`
	LabHours     decimal.NullDecimal `json:"lab_hours" swaggertype:"number"`
	OutsideHours decimal.NullDecimal `json:"outside_hours" swaggertype:"number"`
	Codes        map[string]string   `json:"cb_codes"`
	CIDNumber    *string             `json:"cid_number"`
	DepartmentID string              `json:"department_id" validate:"required"`
	Outcomes     []OutcomeRequest    `json:"outcomes" validate:"dive"`
	Content      []ContentRequest    `json:"content" validate:"dive"`
	Requisites   []RequisiteRequest  `json:"requisites" validate:"dive"`
	// Version must match the stored version on update.
	Version int `json:"version"`
}

// OutcomeRequest describes one student learning outcome.
type OutcomeRequest struct {
	Text       string `json:"text" validate:"required"`
	BloomLevel string `json:"bloom_level" validate:"omitempty,bloom_level"`
}

// ContentRequest describes one content topic.
type ContentRequest struct {
	Topic          string              `json:"topic" validate:"required"`
	HoursAllocated decimal.NullDecimal `json:"hours_allocated" swaggertype:"number"`
}

// RequisiteRequest describes a prerequisite, corequisite or advisory.
type RequisiteRequest struct {
	Type              string  `json:"type" validate:"required,requisite_type"`
	RequisiteCourseID *string `json:"requisite_course_id"`
	Justification     *string `json:"justification"`
}

// CourseQuery mirrors the supported listing filters.
type CourseQuery struct {
	DepartmentID string   `form:"department_id"`
	Status       []string `form:"status"`
	Mine         bool     `form:"mine"`
	Limit        int      `form:"limit"`
	Offset       int      `form:"offset"`
}

// ToModel maps the request onto a course. Identity fields are left to the caller.
func (r CourseRequest) ToModel() models.Course {
	course := models.Course{
		SubjectCode:  r.SubjectCode,
		CourseNumber: r.CourseNumber,
		Title:        r.Title,
		Description:  r.Description,
		Units:        r.Units,
		LectureHours: r.LectureHours,
		LabHours:     r.LabHours,
		OutsideHours: r.OutsideHours,
		Codes:        models.NormalizeCodes(r.Codes),
		CIDNumber:    r.CIDNumber,
		DepartmentID: r.DepartmentID,
	}
	for i, o := range r.Outcomes {
		course.Outcomes = append(course.Outcomes, models.LearningOutcome{
			Sequence:   i + 1,
			Text:       o.Text,
			BloomLevel: models.BloomLevel(o.BloomLevel),
		})
	}
	for i, c := range r.Content {
		course.Content = append(course.Content, models.ContentItem{
			Sequence:       i + 1,
			Topic:          c.Topic,
			HoursAllocated: c.HoursAllocated,
		})
	}
	for i, q := range r.Requisites {
		course.Requisites = append(course.Requisites, models.Requisite{
			Sequence:          i + 1,
			Type:              models.RequisiteType(q.Type),
			RequisiteCourseID: q.RequisiteCourseID,
			Justification:     q.Justification,
		})
	}
	return course
}
