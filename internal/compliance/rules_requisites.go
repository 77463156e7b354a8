package compliance

import (
	"fmt"
	"strings"

	"github.com/johnnyphung-laccd/calricula/internal/models"
)

var prerequisiteJustificationRule = Rule{
	ID:       "REQ-001",
	Name:     "Prerequisite content review",
	Category: models.CategoryRequisites,
	Citation: "Title 5 §55003",
	check: func(in Input) []finding {
		findings := make([]finding, 0)
		prerequisites := 0
		for i, req := range in.Course.Requisites {
			if models.RequisiteType(strings.ToUpper(string(req.Type))) != models.RequisitePrerequisite {
				continue
			}
			prerequisites++
			label := requisiteLabel(req, i)
			if req.Justification == nil || strings.TrimSpace(*req.Justification) == "" {
				findings = append(findings, warn(
					fmt.Sprintf("Prerequisite %s has no content review justification", label),
					"Document the content review that establishes the prerequisite",
				))
				continue
			}
			findings = append(findings, pass(fmt.Sprintf("Prerequisite %s is justified", label)))
		}
		if prerequisites == 0 {
			return []finding{pass("Course has no prerequisites; no content review is needed")}
		}
		return findings
	},
}

func requisiteLabel(req models.Requisite, index int) string {
	if req.RequisiteCourseID != nil && *req.RequisiteCourseID != "" {
		return *req.RequisiteCourseID
	}
	return fmt.Sprintf("#%d", index+1)
}
