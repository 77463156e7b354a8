// Package workflow holds the approval lifecycle of curriculum records: the
// per-type state machine, the role-based transition authorizer and the
// history recorder. None of it touches storage; callers own the status
// field and persist the outcome.
package workflow

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/johnnyphung-laccd/calricula/internal/models"
)

var (
	// ErrInvalidTransition is returned when an operation is not legal from the current status.
	ErrInvalidTransition = errors.New("invalid workflow transition")
	// ErrCommentRequired is returned when a record is returned without a comment.
	ErrCommentRequired = errors.New("comment is required to return a record")
	// ErrUnknownRecordType is returned for record types without a workflow.
	ErrUnknownRecordType = errors.New("unknown record type")
)

// Machine is the stateless transition table of one record type.
type Machine struct {
	recordType models.RecordType
	states     []models.RecordStatus
	next       func(models.RecordStatus) (models.RecordStatus, bool)
}

var (
	courseMachine = Machine{
		recordType: models.RecordTypeCourse,
		states: []models.RecordStatus{
			models.StatusDraft,
			models.StatusDeptReview,
			models.StatusCurriculumCommittee,
			models.StatusArticulationReview,
			models.StatusApproved,
		},
		next: nextCourseStatus,
	}
	programMachine = Machine{
		recordType: models.RecordTypeProgram,
		states: []models.RecordStatus{
			models.StatusDraft,
			models.StatusReview,
			models.StatusApproved,
		},
		next: nextProgramStatus,
	}
)

func nextCourseStatus(s models.RecordStatus) (models.RecordStatus, bool) {
	switch s {
	case models.StatusDraft:
		return models.StatusDeptReview, true
	case models.StatusDeptReview:
		return models.StatusCurriculumCommittee, true
	case models.StatusCurriculumCommittee:
		return models.StatusArticulationReview, true
	case models.StatusArticulationReview:
		return models.StatusApproved, true
	default:
		return "", false
	}
}

func nextProgramStatus(s models.RecordStatus) (models.RecordStatus, bool) {
	switch s {
	case models.StatusDraft:
		return models.StatusReview, true
	case models.StatusReview:
		return models.StatusApproved, true
	default:
		return "", false
	}
}

// For returns the machine governing a record type.
func For(recordType models.RecordType) (Machine, error) {
	switch recordType {
	case models.RecordTypeCourse:
		return courseMachine, nil
	case models.RecordTypeProgram:
		return programMachine, nil
	default:
		return Machine{}, fmt.Errorf("%w: %q", ErrUnknownRecordType, recordType)
	}
}

// RecordType reports the record type the machine governs.
func (m Machine) RecordType() models.RecordType {
	return m.recordType
}

// Valid reports whether s is a status of this record type.
func (m Machine) Valid(s models.RecordStatus) bool {
	for _, state := range m.states {
		if state == s {
			return true
		}
	}
	return false
}

// Terminal reports whether s is the final status.
func (m Machine) Terminal(s models.RecordStatus) bool {
	return s == models.StatusApproved
}

// InReview reports whether s is a review status (neither Draft nor terminal).
func (m Machine) InReview(s models.RecordStatus) bool {
	return m.Valid(s) && s != models.StatusDraft && !m.Terminal(s)
}

// Advance returns the next status in the forward chain.
func (m Machine) Advance(current models.RecordStatus) (models.RecordStatus, error) {
	if !m.Valid(current) {
		return "", fmt.Errorf("%w: %q is not a %s status", ErrInvalidTransition, current, m.recordType)
	}
	next, ok := m.next(current)
	if !ok {
		return "", fmt.Errorf("%w: %s is final", ErrInvalidTransition, current)
	}
	return next, nil
}

// Return sends a record under review back to Draft.
func (m Machine) Return(current models.RecordStatus, comment string) (models.RecordStatus, error) {
	if !m.InReview(current) {
		return "", fmt.Errorf("%w: cannot return a %s record from %s", ErrInvalidTransition, m.recordType, current)
	}
	if strings.TrimSpace(comment) == "" {
		return "", ErrCommentRequired
	}
	return models.StatusDraft, nil
}

// Target resolves the status an operation leads to. Submit is advance from Draft.
func (m Machine) Target(op models.TransitionOperation, current models.RecordStatus, comment string) (models.RecordStatus, error) {
	switch op {
	case models.OperationSubmit:
		if current != models.StatusDraft {
			return "", fmt.Errorf("%w: only Draft records can be submitted (status %s)", ErrInvalidTransition, current)
		}
		return m.Advance(current)
	case models.OperationAdvance:
		return m.Advance(current)
	case models.OperationReturn:
		return m.Return(current, comment)
	default:
		return "", fmt.Errorf("%w: unknown operation %q", ErrInvalidTransition, op)
	}
}

// Legal reports whether from -> to is an edge of the state graph.
func (m Machine) Legal(from, to models.RecordStatus) bool {
	if next, err := m.Advance(from); err == nil && next == to {
		return true
	}
	return to == models.StatusDraft && m.InReview(from)
}

// Replay orders history by creation time and reconstructs the status
// sequence, starting from Draft. It fails on gaps or illegal edges.
func (m Machine) Replay(history []models.TransitionRecord) ([]models.RecordStatus, error) {
	ordered := make([]models.TransitionRecord, len(history))
	copy(ordered, history)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	statuses := []models.RecordStatus{models.StatusDraft}
	current := models.StatusDraft
	for _, rec := range ordered {
		if rec.FromStatus != current {
			return nil, fmt.Errorf("%w: history %s starts at %s but record was %s", ErrInvalidTransition, rec.ID, rec.FromStatus, current)
		}
		if !m.Legal(rec.FromStatus, rec.ToStatus) {
			return nil, fmt.Errorf("%w: history %s moves %s -> %s", ErrInvalidTransition, rec.ID, rec.FromStatus, rec.ToStatus)
		}
		current = rec.ToStatus
		statuses = append(statuses, current)
	}
	return statuses, nil
}
