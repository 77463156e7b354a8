package compliance

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/johnnyphung-laccd/calricula/internal/models"
)

const (
	minTopics       = 3
	contentCitation = "Title 5 §55002(a)(3)"
)

// TopicHoursTolerance is the allowed relative gap between topic hours and lecture hours.
var TopicHoursTolerance = decimal.RequireFromString("0.20")

var topicCountRule = Rule{
	ID:       "CON-001",
	Name:     "Content topic count",
	Category: models.CategoryContent,
	Citation: contentCitation,
	check: func(in Input) []finding {
		count := len(in.Course.Content)
		switch {
		case count == 0:
			return []finding{fail("No content topics are listed", "Outline the major topics covered in the course")}
		case count < minTopics:
			return []finding{warn(
				fmt.Sprintf("Only %d content topics are listed", count),
				fmt.Sprintf("List at least %d topics", minTopics),
			)}
		default:
			return []finding{pass(fmt.Sprintf("%d content topics are listed", count))}
		}
	},
}

var topicHoursRule = Rule{
	ID:       "CON-002",
	Name:     "Content hour allocation",
	Category: models.CategoryContent,
	Citation: contentCitation,
	check: func(in Input) []finding {
		lecture, ok := amount(in.Course.LectureHours)
		if !ok || !lecture.IsPositive() || len(in.Course.Content) == 0 {
			return nil
		}
		expected := lecture.Mul(LectureMultiplier)
		allocated := decimal.Zero
		for _, item := range in.Course.Content {
			if hours, ok := amount(item.HoursAllocated); ok {
				allocated = allocated.Add(hours)
			}
		}
		gap := allocated.Sub(expected).Abs().Div(expected)
		if gap.GreaterThan(TopicHoursTolerance) {
			return []finding{warn(
				fmt.Sprintf("Topics allocate %s hours but the semester has %s lecture hours", formatDecimal(allocated), formatDecimal(expected)),
				"Rebalance topic hours to match semester lecture hours",
			)}
		}
		return []finding{pass(fmt.Sprintf("Topics allocate %s of %s semester lecture hours", formatDecimal(allocated), formatDecimal(expected)))}
	},
}
