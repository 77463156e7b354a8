package workflow

import (
	"fmt"

	"github.com/johnnyphung-laccd/calricula/internal/models"
)

// Actor is the user requesting a transition.
type Actor struct {
	UserID string
	Role   models.UserRole
}

// Request describes a transition to authorize.
type Request struct {
	RecordType models.RecordType
	Current    models.RecordStatus
	Operation  models.TransitionOperation
	Actor      Actor
	AuthorID   string
}

// Decision is the outcome of an authorization check. Denials are values, not errors.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow(reason string) Decision { return Decision{Allowed: true, Reason: reason} }
func deny(reason string) Decision  { return Decision{Allowed: false, Reason: reason} }

// Authorizer decides which roles may act on a record in a given status.
type Authorizer struct {
	overrideRole     models.UserRole
	forbidSelfReview bool
}

// AuthorizerOption configures an Authorizer.
type AuthorizerOption func(*Authorizer)

// WithSelfReviewForbidden denies review actions to the record's author.
func WithSelfReviewForbidden(forbid bool) AuthorizerOption {
	return func(a *Authorizer) {
		a.forbidSelfReview = forbid
	}
}

// WithOverrideRole replaces the role permitted at every status.
func WithOverrideRole(role models.UserRole) AuthorizerOption {
	return func(a *Authorizer) {
		if role != "" {
			a.overrideRole = role
		}
	}
}

// NewAuthorizer builds an authorizer with ADMIN as the override role.
func NewAuthorizer(opts ...AuthorizerOption) *Authorizer {
	a := &Authorizer{overrideRole: models.RoleAdmin}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// ReviewerRoles returns the roles allowed to advance or return a record in
// the given status, excluding the override role.
func ReviewerRoles(recordType models.RecordType, status models.RecordStatus) []models.UserRole {
	switch recordType {
	case models.RecordTypeCourse:
		switch status {
		case models.StatusDeptReview, models.StatusCurriculumCommittee:
			return []models.UserRole{models.RoleCurriculumChair}
		case models.StatusArticulationReview:
			return []models.UserRole{models.RoleArticulationOfficer}
		}
	case models.RecordTypeProgram:
		if status == models.StatusReview {
			return []models.UserRole{models.RoleCurriculumChair}
		}
	}
	return nil
}

// Authorize checks the actor's role against the current status.
func (a *Authorizer) Authorize(req Request) Decision {
	if req.Actor.UserID == "" {
		return deny("actor is not identified")
	}
	if req.Actor.Role == a.overrideRole {
		return allow(fmt.Sprintf("%s may act at every status", a.overrideRole))
	}

	submitting := req.Operation == models.OperationSubmit ||
		(req.Operation == models.OperationAdvance && req.Current == models.StatusDraft)
	if submitting {
		if req.AuthorID != "" && req.Actor.UserID == req.AuthorID {
			return allow("author may submit their own draft")
		}
		return deny("only the author may submit this record")
	}

	roles := ReviewerRoles(req.RecordType, req.Current)
	if len(roles) == 0 {
		return deny(fmt.Sprintf("no reviewer may %s a %s in %s", req.Operation, req.RecordType, req.Current))
	}
	if !containsRole(roles, req.Actor.Role) {
		return deny(fmt.Sprintf("role %s may not %s a %s in %s", req.Actor.Role, req.Operation, req.RecordType, req.Current))
	}
	if a.forbidSelfReview && req.Actor.UserID == req.AuthorID {
		return deny("authors may not review their own record")
	}
	return allow(fmt.Sprintf("%s reviews %s", req.Actor.Role, req.Current))
}

func containsRole(roles []models.UserRole, role models.UserRole) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
