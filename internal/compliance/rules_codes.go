package compliance

import (
	"fmt"
	"strings"

	"github.com/johnnyphung-laccd/calricula/internal/models"
)

const codesCitation = "PCAH 8th Ed., Course Data Elements (CB)"

var requiredCodesRule = Rule{
	ID:       "COD-001",
	Name:     "Required classification codes",
	Category: models.CategoryCodes,
	Citation: codesCitation,
	check: func(in Input) []finding {
		missing := make([]string, 0)
		for _, id := range models.RequiredCodes {
			if _, ok := in.Course.Codes.Get(id); !ok {
				missing = append(missing, string(id))
			}
		}
		if len(missing) > 0 {
			return []finding{fail(
				fmt.Sprintf("Missing classification codes: %s", strings.Join(missing, ", ")),
				"Complete every required CB code before submission",
			)}
		}
		return []finding{pass(fmt.Sprintf("All %d required classification codes are present", len(models.RequiredCodes)))}
	},
}

var codeValuesRule = Rule{
	ID:       "COD-002",
	Name:     "Classification code values",
	Category: models.CategoryCodes,
	Citation: codesCitation,
	check: func(in Input) []finding {
		findings := make([]finding, 0)
		for _, id := range in.Course.Codes.IDs() {
			value, ok := in.Course.Codes.Get(id)
			if !ok || !id.Known() {
				continue
			}
			if !id.ValidValue(value) {
				findings = append(findings, warn(
					fmt.Sprintf("%s has unrecognised value %q", id, value),
					fmt.Sprintf("Choose a valid value for %s", id),
				))
			}
		}
		if len(findings) == 0 {
			return []finding{pass("Classification code values are recognised")}
		}
		return findings
	},
}

var samDependencyRule = Rule{
	ID:       "COD-003",
	Name:     "TOP code and SAM priority consistency",
	Category: models.CategoryCodes,
	Citation: codesCitation,
	check: func(in Input) []finding {
		top, hasTop := in.Course.Codes.Get(models.CodeTOP)
		sam, hasSAM := in.Course.Codes.Get(models.CodeSAMPriority)
		if !hasTop || !hasSAM {
			return []finding{fail("CB03 and CB09 are both required to check occupational status", "Set the TOP code (CB03) and SAM priority code (CB09)")}
		}
		vocational := models.Vocational(top)
		switch {
		case !vocational && sam != models.SAMNonOccupational:
			return []finding{fail(
				fmt.Sprintf("TOP code %s is non-vocational, so CB09 must be %q (found %q)", top, models.SAMNonOccupational, sam),
				"Set CB09 to E (non-occupational)",
			)}
		case vocational && sam == models.SAMNonOccupational:
			return []finding{warn(
				fmt.Sprintf("TOP code %s is vocational but CB09 marks the course non-occupational", top),
				"Confirm the SAM priority code with the CTE dean",
			)}
		default:
			return []finding{pass(fmt.Sprintf("CB09 %q is consistent with TOP code %s", sam, top))}
		}
	},
}

var transferDependencyRule = Rule{
	ID:       "COD-004",
	Name:     "Credit status and transfer status consistency",
	Category: models.CategoryCodes,
	Citation: codesCitation,
	check: func(in Input) []finding {
		credit, hasCredit := in.Course.Codes.Get(models.CodeCreditStatus)
		transfer, hasTransfer := in.Course.Codes.Get(models.CodeTransferStatus)
		if !hasCredit || !hasTransfer {
			return []finding{warn("CB04 and CB05 are needed to check transfer status", "Set credit status (CB04) and transfer status (CB05)")}
		}
		if (credit == "C" || credit == "N") && transfer != "C" {
			return []finding{fail(
				fmt.Sprintf("CB04 %q is not degree applicable, so CB05 must be %q (found %q)", credit, "C", transfer),
				"Mark the course not transferable (CB05 = C) or make it degree applicable",
			)}
		}
		return []finding{pass(fmt.Sprintf("CB05 %q is consistent with CB04 %q", transfer, credit))}
	},
}

var basicSkillsDependencyRule = Rule{
	ID:       "COD-005",
	Name:     "Basic skills and prior-to-transfer consistency",
	Category: models.CategoryCodes,
	Citation: codesCitation,
	check: func(in Input) []finding {
		basic, hasBasic := in.Course.Codes.Get(models.CodeBasicSkills)
		if !hasBasic {
			return []finding{warn("CB08 is needed to check basic skills status", "Set the basic skills status (CB08)")}
		}
		if basic != "B" {
			return []finding{pass("Course is not a basic skills course")}
		}
		findings := make([]finding, 0, 2)
		if prior, ok := in.Course.Codes.Get(models.CodePriorToTransfer); !ok || prior == "Y" {
			findings = append(findings, fail(
				"Basic skills courses must declare a prior-to-transfer level in CB21",
				"Set CB21 to the level below transfer (A through H)",
			))
		}
		if credit, ok := in.Course.Codes.Get(models.CodeCreditStatus); ok && credit == "D" {
			findings = append(findings, warn(
				"Basic skills course is marked degree applicable",
				"Basic skills courses are normally non-degree applicable (CB04 = C)",
			))
		}
		if len(findings) == 0 {
			return []finding{pass("Basic skills codes are consistent")}
		}
		return findings
	},
}
