package compliance

import (
	"fmt"
	"strings"

	"github.com/johnnyphung-laccd/calricula/internal/models"
)

const articulationCitation = "C-ID Descriptor Alignment Policy"

var cidTransferRule = Rule{
	ID:       "ART-001",
	Name:     "C-ID alignment transferability",
	Category: models.CategoryArticulation,
	Citation: articulationCitation,
	check: func(in Input) []finding {
		cid, aligned := cidNumber(in.Course)
		if !aligned {
			return nil
		}
		transfer, ok := in.Course.Codes.Get(models.CodeTransferStatus)
		switch {
		case !ok:
			return []finding{warn(
				fmt.Sprintf("Course claims C-ID %s but CB05 is not set", cid),
				"Set CB05 to A or B for C-ID aligned courses",
			)}
		case transfer == "C":
			return []finding{fail(
				fmt.Sprintf("Course claims C-ID %s but CB05 marks it not transferable", cid),
				"C-ID aligned courses must be transferable (CB05 = A or B)",
			)}
		default:
			return []finding{pass(fmt.Sprintf("C-ID %s alignment matches CB05 %q", cid, transfer))}
		}
	},
}

var cidJustificationRule = Rule{
	ID:       "ART-002",
	Name:     "C-ID non-alignment justification",
	Category: models.CategoryArticulation,
	Citation: articulationCitation,
	check: func(in Input) []finding {
		if _, aligned := cidNumber(in.Course); aligned {
			return nil
		}
		if in.JustificationOnFile {
			return []finding{pass("Course is not C-ID aligned and a justification is on file")}
		}
		return []finding{warn(
			"Course is not C-ID aligned and no justification is on file",
			"Align to a C-ID descriptor or file a justification with the articulation officer",
		)}
	},
}

// CIDAligned reports whether the course carries a C-ID descriptor. Only
// unaligned courses need a justification lookup.
func CIDAligned(c models.Course) bool {
	_, aligned := cidNumber(c)
	return aligned
}

func cidNumber(c models.Course) (string, bool) {
	if c.CIDNumber == nil {
		return "", false
	}
	cid := strings.TrimSpace(*c.CIDNumber)
	return cid, cid != ""
}
