package compliance

import (
	"github.com/shopspring/decimal"

	"github.com/johnnyphung-laccd/calricula/internal/models"
)

func dec(v string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(v), Valid: true}
}

func strPtr(v string) *string {
	return &v
}

func compliantCourse() models.Course {
	return models.Course{
		ID:           "course-1",
		SubjectCode:  "PSYCH",
		CourseNumber: "001",
		Title:        "Introduction to Psychology",
		Description: "This course surveys the scientific study of behavior and mental processes, including research methods, " +
			"biological bases of behavior, learning, memory, development, personality, social behavior, and psychological " +
			"disorders with applications to everyday life.",
		Units:        dec("3"),
		LectureHours: dec("3"),
		LabHours:     dec("0"),
		OutsideHours: dec("6"),
		Codes: models.ClassificationCodes{
			models.CodeTOP:                "2001.00",
			models.CodeCreditStatus:       "D",
			models.CodeTransferStatus:     "A",
			models.CodeBasicSkills:        "N",
			models.CodeSAMPriority:        "E",
			models.CodeCoopWorkExperience: "N",
			models.CodeClassification:     "A",
			models.CodePriorToTransfer:    "Y",
			models.CodeNoncreditCategory:  "Y",
			models.CodeFundingAgency:      "Y",
			models.CodeProgramStatus:      "2",
		},
		CIDNumber:    strPtr("PSY 110"),
		Status:       models.StatusDraft,
		Version:      1,
		CreatedBy:    "faculty-1",
		DepartmentID: "dept-psych",
		Outcomes: []models.LearningOutcome{
			{Sequence: 1, Text: "Describe the major theoretical perspectives in psychology.", BloomLevel: models.BloomRemember},
			{Sequence: 2, Text: "Analyze research findings using the scientific method.", BloomLevel: models.BloomAnalyze},
			{Sequence: 3, Text: "Apply psychological principles to personal and social situations.", BloomLevel: models.BloomApply},
		},
		Content: []models.ContentItem{
			{Sequence: 1, Topic: "Research methods", HoursAllocated: dec("18")},
			{Sequence: 2, Topic: "Biological bases of behavior", HoursAllocated: dec("18")},
			{Sequence: 3, Topic: "Social psychology", HoursAllocated: dec("18")},
		},
	}
}

func resultsFor(results []models.ComplianceResult, ruleID string) []models.ComplianceResult {
	out := make([]models.ComplianceResult, 0)
	for _, r := range results {
		if r.RuleID == ruleID {
			out = append(out, r)
		}
	}
	return out
}

func runRule(id string, in Input) []models.ComplianceResult {
	rule, ok := LookupCourseRule(id)
	if !ok {
		panic("unknown rule " + id)
	}
	return rule.Run(in)
}
