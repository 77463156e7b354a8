// Package compliance evaluates curriculum records against the fixed body of
// regulatory rules and aggregates the findings into a scored report.
//
// Every rule is a pure function of its input. Missing or malformed data never
// produces an error; it produces a FAIL or WARN result instead.
package compliance

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/johnnyphung-laccd/calricula/internal/models"
)

// Input is the snapshot a course audit runs against.
type Input struct {
	Course models.Course
	// JustificationOnFile is resolved by the caller; the engine never looks it up.
	JustificationOnFile bool
}

// Rule is one named regulatory check.
type Rule struct {
	ID       string
	Name     string
	Category models.ComplianceCategory
	Citation string
	check    func(Input) []finding
}

// finding is the rule-local part of a result; Run attaches rule metadata.
type finding struct {
	status         models.ComplianceStatus
	message        string
	recommendation string
}

func pass(message string) finding {
	return finding{status: models.CompliancePass, message: message}
}

func warn(message, recommendation string) finding {
	return finding{status: models.ComplianceWarn, message: message, recommendation: recommendation}
}

func fail(message, recommendation string) finding {
	return finding{status: models.ComplianceFail, message: message, recommendation: recommendation}
}

// Run evaluates the rule and returns its results in emission order.
func (r Rule) Run(in Input) []models.ComplianceResult {
	if r.check == nil {
		return nil
	}
	findings := r.check(in)
	results := make([]models.ComplianceResult, 0, len(findings))
	for _, f := range findings {
		result := models.ComplianceResult{
			RuleID:   r.ID,
			RuleName: r.Name,
			Category: r.Category,
			Status:   f.status,
			Message:  f.message,
		}
		if r.Citation != "" {
			citation := r.Citation
			result.Citation = &citation
		}
		if f.status != models.CompliancePass && f.recommendation != "" {
			recommendation := f.recommendation
			result.Recommendation = &recommendation
		}
		results = append(results, result)
	}
	return results
}

// CourseRules returns the course rule registry in evaluation order.
func CourseRules() []Rule {
	return []Rule{
		titleRule,
		descriptionRule,
		unitRangeRule,
		contactHoursRule,
		nHourRule,
		outsideRatioRule,
		requiredCodesRule,
		codeValuesRule,
		samDependencyRule,
		transferDependencyRule,
		basicSkillsDependencyRule,
		outcomeCountRule,
		bloomCoverageRule,
		measurableVerbRule,
		topicCountRule,
		topicHoursRule,
		prerequisiteJustificationRule,
		cidTransferRule,
		cidJustificationRule,
	}
}

// LookupCourseRule finds a course rule by identifier.
func LookupCourseRule(id string) (Rule, bool) {
	for _, r := range CourseRules() {
		if strings.EqualFold(r.ID, id) {
			return r, true
		}
	}
	return Rule{}, false
}

// amount treats missing and negative values as absent.
func amount(n decimal.NullDecimal) (decimal.Decimal, bool) {
	if !n.Valid || n.Decimal.IsNegative() {
		return decimal.Zero, false
	}
	return n.Decimal, true
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

func formatDecimal(d decimal.Decimal) string {
	return d.Round(2).String()
}
