package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// CodeID names a state classification (CB) code.
type CodeID string

const (
	CodeTOP                CodeID = "CB03"
	CodeCreditStatus       CodeID = "CB04"
	CodeTransferStatus     CodeID = "CB05"
	CodeBasicSkills        CodeID = "CB08"
	CodeSAMPriority        CodeID = "CB09"
	CodeCoopWorkExperience CodeID = "CB10"
	CodeClassification     CodeID = "CB11"
	CodePriorToTransfer    CodeID = "CB21"
	CodeNoncreditCategory  CodeID = "CB22"
	CodeFundingAgency      CodeID = "CB23"
	CodeProgramStatus      CodeID = "CB24"
	CodeGEStatus           CodeID = "CB25"
	CodeSupportCourse      CodeID = "CB26"
)

// RequiredCodes must be present on every course outline.
var RequiredCodes = []CodeID{
	CodeTOP,
	CodeCreditStatus,
	CodeTransferStatus,
	CodeBasicSkills,
	CodeSAMPriority,
	CodeCoopWorkExperience,
	CodeClassification,
	CodePriorToTransfer,
	CodeNoncreditCategory,
	CodeFundingAgency,
	CodeProgramStatus,
}

// SAM code marking a course as non-occupational.
const SAMNonOccupational = "E"

var topCodePattern = regexp.MustCompile(`^\d{4}\.\d{2}\*?$`)

var allowedCodeValues = map[CodeID][]string{
	CodeCreditStatus:       {"D", "C", "N"},
	CodeTransferStatus:     {"A", "B", "C"},
	CodeBasicSkills:        {"B", "N"},
	CodeSAMPriority:        {"A", "B", "C", "D", "E"},
	CodeCoopWorkExperience: {"C", "N"},
	CodeClassification:     {"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"},
	CodePriorToTransfer:    {"Y", "A", "B", "C", "D", "E", "F", "G", "H"},
	CodeNoncreditCategory:  {"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "Y"},
	CodeFundingAgency:      {"A", "B", "Y"},
	CodeProgramStatus:      {"1", "2"},
	CodeGEStatus:           {"A", "B", "C", "D", "E", "F", "Y"},
	CodeSupportCourse:      {"N", "S"},
}

// Known reports whether the code identifier is one this system validates.
func (c CodeID) Known() bool {
	if c == CodeTOP {
		return true
	}
	_, ok := allowedCodeValues[c]
	return ok
}

// ValidValue reports whether value is legal for the code. Unknown codes accept anything.
func (c CodeID) ValidValue(value string) bool {
	if c == CodeTOP {
		return topCodePattern.MatchString(value)
	}
	allowed, ok := allowedCodeValues[c]
	if !ok {
		return true
	}
	for _, v := range allowed {
		if v == value {
			return true
		}
	}
	return false
}

// ClassificationCodes maps CB code identifiers to their short values.
// Unknown identifiers are kept for forward compatibility.
type ClassificationCodes map[CodeID]string

// NormalizeCodes trims and upper-cases keys and values, dropping blank values.
func NormalizeCodes(raw map[string]string) ClassificationCodes {
	codes := make(ClassificationCodes, len(raw))
	for k, v := range raw {
		key := CodeID(strings.ToUpper(strings.TrimSpace(k)))
		value := strings.ToUpper(strings.TrimSpace(v))
		if key == "" || value == "" {
			continue
		}
		codes[key] = value
	}
	return codes
}

// Get returns the value for the code and whether it is set.
func (c ClassificationCodes) Get(id CodeID) (string, bool) {
	if c == nil {
		return "", false
	}
	v, ok := c[id]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.ToUpper(strings.TrimSpace(v)), true
}

// IDs returns the code identifiers in lexical order.
func (c ClassificationCodes) IDs() []CodeID {
	ids := make([]CodeID, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Vocational reports whether a TOP code is flagged vocational (trailing asterisk).
func Vocational(topCode string) bool {
	return strings.HasSuffix(strings.TrimSpace(topCode), "*")
}

// Value implements driver.Valuer storing the codes as JSON.
func (c ClassificationCodes) Value() (driver.Value, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	payload, err := json.Marshal(map[CodeID]string(c))
	if err != nil {
		return nil, fmt.Errorf("marshal classification codes: %w", err)
	}
	return payload, nil
}

// Scan implements sql.Scanner reading JSON objects.
func (c *ClassificationCodes) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*c = ClassificationCodes{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported classification codes type %T", src)
	}
	if len(raw) == 0 {
		*c = ClassificationCodes{}
		return nil
	}
	decoded := make(map[string]string)
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("unmarshal classification codes: %w", err)
	}
	*c = NormalizeCodes(decoded)
	return nil
}
