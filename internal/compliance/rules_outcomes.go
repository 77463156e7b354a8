package compliance

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/johnnyphung-laccd/calricula/internal/models"
)

// MinOutcomes is the minimum number of learning outcomes per course.
const MinOutcomes = 3

const outcomesCitation = "Title 5 §55002(a)(3)"

// nonMeasurableVerbs cannot be assessed directly and should not lead an outcome.
var nonMeasurableVerbs = []string{
	"understand",
	"know",
	"learn",
	"appreciate",
	"be aware of",
	"become familiar with",
	"comprehend",
	"believe",
	"realize",
	"grasp",
}

var nonMeasurablePatterns = compileVerbPatterns(nonMeasurableVerbs)

func compileVerbPatterns(verbs []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(verbs))
	for i, verb := range verbs {
		patterns[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(verb) + `\b`)
	}
	return patterns
}

var outcomeCountRule = Rule{
	ID:       "SLO-001",
	Name:     "Learning outcome count",
	Category: models.CategoryOutcomes,
	Citation: outcomesCitation,
	check: func(in Input) []finding {
		count := len(in.Course.Outcomes)
		if count < MinOutcomes {
			return []finding{fail(
				fmt.Sprintf("%d learning outcomes defined, at least %d required", count, MinOutcomes),
				"Add measurable student learning outcomes",
			)}
		}
		return []finding{pass(fmt.Sprintf("%d learning outcomes defined", count))}
	},
}

var bloomCoverageRule = Rule{
	ID:       "SLO-002",
	Name:     "Higher-order cognitive coverage",
	Category: models.CategoryOutcomes,
	Citation: outcomesCitation,
	check: func(in Input) []finding {
		for _, outcome := range in.Course.Outcomes {
			if models.BloomLevel(strings.ToUpper(string(outcome.BloomLevel))).HigherOrder() {
				return []finding{pass("At least one outcome targets analysis, evaluation or creation")}
			}
		}
		return []finding{warn(
			"No outcome reaches a higher-order cognitive level",
			"Include at least one outcome at the analyze, evaluate or create level",
		)}
	},
}

var measurableVerbRule = Rule{
	ID:       "SLO-003",
	Name:     "Measurable outcome verbs",
	Category: models.CategoryOutcomes,
	Citation: outcomesCitation,
	check: func(in Input) []finding {
		findings := make([]finding, 0)
		for i, outcome := range in.Course.Outcomes {
			verb, found := nonMeasurableVerb(outcome.Text)
			if !found {
				continue
			}
			seq := outcome.Sequence
			if seq == 0 {
				seq = i + 1
			}
			findings = append(findings, warn(
				fmt.Sprintf("Outcome %d uses the non-measurable verb %q", seq, verb),
				"Replace it with an observable action verb such as describe, apply or evaluate",
			))
		}
		if len(findings) == 0 && len(in.Course.Outcomes) > 0 {
			return []finding{pass("All outcomes use measurable verbs")}
		}
		return findings
	},
}

func nonMeasurableVerb(text string) (string, bool) {
	for i, pattern := range nonMeasurablePatterns {
		if pattern.MatchString(text) {
			return nonMeasurableVerbs[i], true
		}
	}
	return "", false
}
