package models

import "time"

// RecordType identifies which curriculum entity a workflow applies to.
type RecordType string

const (
	RecordTypeCourse  RecordType = "course"
	RecordTypeProgram RecordType = "program"
)

// RecordStatus is the approval lifecycle state of a curriculum record.
type RecordStatus string

const (
	StatusDraft               RecordStatus = "Draft"
	StatusDeptReview          RecordStatus = "DeptReview"
	StatusCurriculumCommittee RecordStatus = "CurriculumCommittee"
	StatusArticulationReview  RecordStatus = "ArticulationReview"
	StatusReview              RecordStatus = "Review"
	StatusApproved            RecordStatus = "Approved"
)

// TransitionOperation names a workflow action requested by a user.
type TransitionOperation string

const (
	OperationSubmit  TransitionOperation = "submit"
	OperationAdvance TransitionOperation = "advance"
	OperationReturn  TransitionOperation = "return"
)

// TransitionRecord is one append-only row of workflow history.
type TransitionRecord struct {
	ID         string       `db:"id" json:"id"`
	RecordType RecordType   `db:"record_type" json:"record_type"`
	RecordID   string       `db:"record_id" json:"record_id"`
	FromStatus RecordStatus `db:"from_status" json:"from_status"`
	ToStatus   RecordStatus `db:"to_status" json:"to_status"`
	Comment    *string      `db:"comment" json:"comment,omitempty"`
	ActorID    string       `db:"actor_id" json:"actor_id"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
}
