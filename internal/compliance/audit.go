package compliance

import (
	"math"

	"github.com/johnnyphung-laccd/calricula/internal/models"
)

// Engine runs the rule registries. It holds no mutable state and is safe to share.
type Engine struct {
	courseRules  []Rule
	programRules []ProgramRule
}

// NewEngine builds an engine over the standard registries.
func NewEngine() *Engine {
	return &Engine{courseRules: CourseRules(), programRules: ProgramRules()}
}

// Rules lists the course rules in evaluation order.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.courseRules))
	copy(out, e.courseRules)
	return out
}

// Audit evaluates every course rule and summarises the results.
func (e *Engine) Audit(in Input) models.ComplianceAuditReport {
	results := make([]models.ComplianceResult, 0, len(e.courseRules)+len(in.Course.Outcomes))
	for _, rule := range e.courseRules {
		results = append(results, rule.Run(in)...)
	}
	return Summarize(results)
}

// AuditProgram evaluates every program rule and summarises the results.
func (e *Engine) AuditProgram(p models.Program) models.ComplianceAuditReport {
	results := make([]models.ComplianceResult, 0, len(e.programRules))
	for _, rule := range e.programRules {
		results = append(results, rule.Run(p)...)
	}
	return Summarize(results)
}

// Summarize tallies results into a report. It is exported so callers can
// aggregate results from individually run rules. Score counts a warning as
// half a pass, is clamped to [0, 100] and is rounded to one decimal place;
// an empty result set scores 100.
func Summarize(results []models.ComplianceResult) models.ComplianceAuditReport {
	report := models.ComplianceAuditReport{
		Results:           make([]models.ComplianceResult, len(results)),
		Categories:        make([]models.ComplianceCategory, 0),
		ResultsByCategory: make(map[models.ComplianceCategory][]models.ComplianceResult),
	}
	copy(report.Results, results)

	for _, result := range results {
		switch result.Status {
		case models.ComplianceFail:
			report.Failed++
		case models.ComplianceWarn:
			report.Warnings++
		case models.CompliancePass:
			report.Passed++
		default:
			continue
		}
		if _, seen := report.ResultsByCategory[result.Category]; !seen {
			report.Categories = append(report.Categories, result.Category)
		}
		report.ResultsByCategory[result.Category] = append(report.ResultsByCategory[result.Category], result)
	}
	report.Total = report.Passed + report.Failed + report.Warnings
	report.Score = score(report.Passed, report.Warnings, report.Total)

	switch {
	case report.Failed > 0:
		report.OverallStatus = models.ComplianceFail
	case report.Warnings > 0:
		report.OverallStatus = models.ComplianceWarn
	default:
		report.OverallStatus = models.CompliancePass
	}
	return report
}

func score(passed, warnings, total int) float64 {
	if total == 0 {
		return 100
	}
	raw := (float64(passed) + 0.5*float64(warnings)) / float64(total) * 100
	raw = math.Max(0, math.Min(100, raw))
	return math.Round(raw*10) / 10
}
