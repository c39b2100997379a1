// Package access decides which job and application rows an actor may see or
// change. Each filter renders as a SQL predicate for repositories and can also
// be checked against a loaded row.
package access

import (
	"fmt"

	"jobportal/internal/models"
)

type scopeKind int

const (
	scopeAll scopeKind = iota
	scopeEmployer
	scopeApplicant
	scopeNone
)

// JobFilter restricts the job rows an actor manages
type JobFilter struct {
	kind       scopeKind
	employerID string
}

// ApplicationFilter restricts the application rows an actor may see
type ApplicationFilter struct {
	kind       scopeKind
	employerID string
	userID     string
}

// JobsFor returns the job filter for an actor. Job listings are public, so
// only employers are narrowed, to the jobs they posted.
func JobsFor(actor *models.Actor) JobFilter {
	if actor.IsEmployer() {
		return JobFilter{kind: scopeEmployer, employerID: actor.Identity()}
	}
	return JobFilter{kind: scopeAll}
}

// ApplicationsFor returns the application filter for an actor. Employers see
// applications to their own jobs, applicants see their own submissions and
// anyone else sees nothing.
func ApplicationsFor(actor *models.Actor) ApplicationFilter {
	switch {
	case actor.IsAdmin():
		return ApplicationFilter{kind: scopeAll}
	case actor.IsEmployer():
		return ApplicationFilter{kind: scopeEmployer, employerID: actor.Identity()}
	case actor.IsApplicant() && actor.UserID != "":
		return ApplicationFilter{kind: scopeApplicant, userID: actor.UserID}
	default:
		return ApplicationFilter{kind: scopeNone}
	}
}

// SubmittedBy narrows applications to those the actor submitted, whatever
// the actor's role
func SubmittedBy(actor *models.Actor) ApplicationFilter {
	if actor == nil || actor.UserID == "" {
		return ApplicationFilter{kind: scopeNone}
	}
	return ApplicationFilter{kind: scopeApplicant, userID: actor.UserID}
}

// Unrestricted reports whether the filter admits every job
func (f JobFilter) Unrestricted() bool {
	return f.kind == scopeAll
}

// EmployerID is the owner identity the filter narrows to, if any
func (f JobFilter) EmployerID() string {
	return f.employerID
}

// Where renders the predicate over the jobs table aliased as alias, using
// placeholder $arg. An unrestricted filter renders an empty clause. The
// stored employer id is compared normalized, as in Job.IsOwnedBy.
func (f JobFilter) Where(alias string, arg int) (string, []interface{}) {
	if f.kind != scopeEmployer {
		return "", nil
	}
	return fmt.Sprintf("lower(btrim(%s.employer_id)) = $%d", alias, arg), []interface{}{f.employerID}
}

// Allows checks a loaded job against the filter
func (f JobFilter) Allows(job *models.Job) bool {
	if job == nil {
		return false
	}
	if f.kind == scopeEmployer {
		return job.IsOwnedBy(f.employerID)
	}
	return true
}

// Unrestricted reports whether the filter admits every application
func (f ApplicationFilter) Unrestricted() bool {
	return f.kind == scopeAll
}

// Where renders the predicate over the applications table aliased as alias,
// using placeholder $arg. An unrestricted filter renders an empty clause.
func (f ApplicationFilter) Where(alias string, arg int) (string, []interface{}) {
	switch f.kind {
	case scopeEmployer:
		return fmt.Sprintf("%s.job_id IN (SELECT id FROM jobs WHERE lower(btrim(employer_id)) = $%d)", alias, arg),
			[]interface{}{f.employerID}
	case scopeApplicant:
		return fmt.Sprintf("%s.user_id = $%d", alias, arg), []interface{}{f.userID}
	case scopeNone:
		return "FALSE", nil
	default:
		return "", nil
	}
}

// Allows checks a loaded application, and its parent job when the filter
// depends on ownership of the job
func (f ApplicationFilter) Allows(app *models.Application, job *models.Job) bool {
	if app == nil {
		return false
	}
	switch f.kind {
	case scopeAll:
		return true
	case scopeEmployer:
		return job != nil && job.ID == app.JobID && job.IsOwnedBy(f.employerID)
	case scopeApplicant:
		return app.UserID == f.userID
	default:
		return false
	}
}
