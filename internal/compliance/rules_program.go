package compliance

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/johnnyphung-laccd/calricula/internal/models"
)

// MinDegreeMajorUnits is the minimum unit total of a degree program.
var MinDegreeMajorUnits = decimal.NewFromInt(18)

// ProgramRule is a named check over a program record.
type ProgramRule struct {
	ID       string
	Name     string
	Citation string
	check    func(models.Program) []finding
}

// Run evaluates the rule against a program.
func (r ProgramRule) Run(p models.Program) []models.ComplianceResult {
	adapter := Rule{ID: r.ID, Name: r.Name, Category: models.CategoryProgram, Citation: r.Citation}
	adapter.check = func(Input) []finding { return r.check(p) }
	return adapter.Run(Input{})
}

// ProgramRules returns the program rule registry in evaluation order.
func ProgramRules() []ProgramRule {
	return []ProgramRule{
		{
			ID:       "PRG-001",
			Name:     "Program title",
			Citation: outlineCitation,
			check:    func(p models.Program) []finding { return checkTitle(p.Title) },
		},
		{
			ID:       "PRG-002",
			Name:     "Program description",
			Citation: catalogDescCitation,
			check:    func(p models.Program) []finding { return checkDescription(p.Description) },
		},
		{
			ID:       "PRG-003",
			Name:     "Program unit total",
			Citation: "Title 5 §55063",
			check:    checkProgramUnits,
		},
	}
}

func checkProgramUnits(p models.Program) []finding {
	units, ok := amount(p.TotalUnits)
	if !ok || units.IsZero() {
		return []finding{fail("Program unit total is not declared", "Declare the total units required for the award")}
	}
	if p.ProgramType.Degree() && units.LessThan(MinDegreeMajorUnits) {
		return []finding{warn(
			fmt.Sprintf("Degree program requires %s units, fewer than %s", formatDecimal(units), MinDegreeMajorUnits),
			"Degree majors require at least 18 semester units",
		)}
	}
	return []finding{pass(fmt.Sprintf("Program requires %s units", formatDecimal(units)))}
}
