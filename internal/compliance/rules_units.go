package compliance

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/johnnyphung-laccd/calricula/internal/models"
)

// Semester multipliers and limits used by the N-hour rule.
var (
	LectureMultiplier = decimal.NewFromInt(18)
	LabMultiplier     = decimal.NewFromInt(54)
	OutsideMultiplier = decimal.NewFromInt(18)
	HoursPerUnit      = decimal.NewFromInt(54)

	UnitTolerance = decimal.RequireFromString("0.25")
	MinUnits      = decimal.RequireFromString("0.5")
	MaxUnits      = decimal.NewFromInt(18)

	minOutsideRatio = decimal.NewFromInt(2)
)

const unitsCitation = "Title 5 §55002.5"

var unitRangeRule = Rule{
	ID:       "UNT-001",
	Name:     "Unit value range",
	Category: models.CategoryUnits,
	Citation: unitsCitation,
	check: func(in Input) []finding {
		units, ok := amount(in.Course.Units)
		if !ok {
			return []finding{fail("Units are not declared", "Declare the credit value of the course")}
		}
		if units.LessThan(MinUnits) || units.GreaterThan(MaxUnits) {
			return []finding{fail(
				fmt.Sprintf("Units %s fall outside the allowed range %s to %s", formatDecimal(units), MinUnits, MaxUnits),
				"Correct the unit value",
			)}
		}
		return []finding{pass(fmt.Sprintf("Units %s are within the allowed range", formatDecimal(units)))}
	},
}

var contactHoursRule = Rule{
	ID:       "UNT-002",
	Name:     "Contact hours declared",
	Category: models.CategoryUnits,
	Citation: unitsCitation,
	check: func(in Input) []finding {
		lecture, _ := amount(in.Course.LectureHours)
		lab, _ := amount(in.Course.LabHours)
		if lecture.Add(lab).IsZero() {
			return []finding{fail("No lecture or lab contact hours are declared", "Enter weekly lecture and/or lab hours")}
		}
		return []finding{pass(fmt.Sprintf("Weekly contact hours: %s lecture, %s lab", formatDecimal(lecture), formatDecimal(lab)))}
	},
}

var nHourRule = Rule{
	ID:       "UNT-003",
	Name:     "Unit and hour arithmetic",
	Category: models.CategoryUnits,
	Citation: unitsCitation,
	check: func(in Input) []finding {
		units, ok := amount(in.Course.Units)
		if !ok {
			return []finding{fail("Cannot verify hour arithmetic without declared units", "Declare the credit value of the course")}
		}
		total := StudentLearningHours(in.Course)
		implied := ImpliedUnits(in.Course)
		diff := implied.Sub(units).Abs()
		if diff.GreaterThan(UnitTolerance) {
			return []finding{fail(
				fmt.Sprintf("%s total student learning hours imply %s units, but %s are declared", formatDecimal(total), formatDecimal(implied), formatDecimal(units)),
				"Adjust lecture, lab or outside-of-class hours so that total hours / 54 matches the units",
			)}
		}
		return []finding{pass(fmt.Sprintf("%s total student learning hours support %s units", formatDecimal(total), formatDecimal(units)))}
	},
}

var outsideRatioRule = Rule{
	ID:       "UNT-004",
	Name:     "Outside-of-class hour ratio",
	Category: models.CategoryUnits,
	Citation: unitsCitation,
	check: func(in Input) []finding {
		lecture, okLecture := amount(in.Course.LectureHours)
		outside, okOutside := amount(in.Course.OutsideHours)
		if !okLecture || !okOutside || !lecture.IsPositive() {
			return nil
		}
		ratio := outside.Div(lecture)
		if ratio.LessThan(minOutsideRatio) {
			return []finding{warn(
				fmt.Sprintf("Outside-of-class to lecture ratio is %s:1, below the expected 2:1", formatDecimal(ratio)),
				"Plan two hours of outside work per lecture hour",
			)}
		}
		return []finding{pass(fmt.Sprintf("Outside-of-class to lecture ratio is %s:1", formatDecimal(ratio)))}
	},
}

// StudentLearningHours computes semester hours from weekly lecture, lab and
// outside-of-class hours. Absent values count as zero.
func StudentLearningHours(c models.Course) decimal.Decimal {
	lecture, _ := amount(c.LectureHours)
	lab, _ := amount(c.LabHours)
	outside, _ := amount(c.OutsideHours)
	return lecture.Mul(LectureMultiplier).
		Add(lab.Mul(LabMultiplier)).
		Add(outside.Mul(OutsideMultiplier))
}

// ImpliedUnits converts total student learning hours into units.
func ImpliedUnits(c models.Course) decimal.Decimal {
	return StudentLearningHours(c).Div(HoursPerUnit)
}
