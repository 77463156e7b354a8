package compliance

import (
	"fmt"
	"strings"

	"github.com/johnnyphung-laccd/calricula/internal/models"
)

const (
	maxTitleLength      = 100
	minDescriptionWords = 25
	maxDescriptionWords = 100
	outlineCitation     = "Title 5 §55002"
	catalogDescCitation = "PCAH 8th Ed., Course Outline of Record"
)

var titleRule = Rule{
	ID:       "CAT-001",
	Name:     "Course title",
	Category: models.CategoryCatalog,
	Citation: outlineCitation,
	check: func(in Input) []finding {
		return checkTitle(in.Course.Title)
	},
}

var descriptionRule = Rule{
	ID:       "CAT-002",
	Name:     "Catalog description",
	Category: models.CategoryCatalog,
	Citation: catalogDescCitation,
	check: func(in Input) []finding {
		return checkDescription(in.Course.Description)
	},
}

func checkTitle(title string) []finding {
	title = strings.TrimSpace(title)
	switch {
	case title == "":
		return []finding{fail("Title is missing", "Provide a descriptive course title")}
	case len([]rune(title)) > maxTitleLength:
		return []finding{warn(
			fmt.Sprintf("Title is %d characters, longer than %d", len([]rune(title)), maxTitleLength),
			"Shorten the title so it fits catalog and transcript displays",
		)}
	default:
		return []finding{pass("Title is present")}
	}
}

func checkDescription(description string) []finding {
	description = strings.TrimSpace(description)
	if description == "" {
		return []finding{fail("Catalog description is missing", "Write a catalog description of 25 to 100 words")}
	}
	words := wordCount(description)
	switch {
	case words < minDescriptionWords:
		return []finding{warn(
			fmt.Sprintf("Catalog description has %d words, fewer than %d", words, minDescriptionWords),
			"Expand the description to summarise scope and major topics",
		)}
	case words > maxDescriptionWords:
		return []finding{warn(
			fmt.Sprintf("Catalog description has %d words, more than %d", words, maxDescriptionWords),
			"Condense the description; detail belongs in the content outline",
		)}
	default:
		return []finding{pass(fmt.Sprintf("Catalog description has %d words", words))}
	}
}
