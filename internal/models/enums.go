package models

import "strings"

// JobType is the employment type of a job, stored by name
type JobType string

const (
	JobTypeFullTime   JobType = "FullTime"
	JobTypePartTime   JobType = "PartTime"
	JobTypeContract   JobType = "Contract"
	JobTypeTemporary  JobType = "Temporary"
	JobTypeInternship JobType = "Internship"
	JobTypeRemote     JobType = "Remote"
	JobTypeFreelance  JobType = "Freelance"
)

// JobTypes lists every job type in display order
var JobTypes = []JobType{
	JobTypeFullTime,
	JobTypePartTime,
	JobTypeContract,
	JobTypeTemporary,
	JobTypeInternship,
	JobTypeRemote,
	JobTypeFreelance,
}

// ParseJobType matches a job type name case-insensitively
func ParseJobType(s string) (JobType, bool) {
	for _, t := range JobTypes {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, true
		}
	}
	return "", false
}

// JobStatus is the posting state of a job
type JobStatus string

const (
	JobStatusActive  JobStatus = "Active"
	JobStatusExpired JobStatus = "Expired"
)

// ApplicationStatus is a stage in the application lifecycle
type ApplicationStatus string

const (
	ApplicationStatusSubmitted   ApplicationStatus = "Submitted"
	ApplicationStatusUnderReview ApplicationStatus = "UnderReview"
	ApplicationStatusShortlisted ApplicationStatus = "Shortlisted"
	ApplicationStatusInterviewed ApplicationStatus = "Interviewed"
	ApplicationStatusAccepted    ApplicationStatus = "Accepted"
	ApplicationStatusRejected    ApplicationStatus = "Rejected"
)

// ApplicationStatuses lists the lifecycle in its intended order
var ApplicationStatuses = []ApplicationStatus{
	ApplicationStatusSubmitted,
	ApplicationStatusUnderReview,
	ApplicationStatusShortlisted,
	ApplicationStatusInterviewed,
	ApplicationStatusAccepted,
	ApplicationStatusRejected,
}

// ParseApplicationStatus matches a status name case-insensitively
func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	for _, st := range ApplicationStatuses {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, true
		}
	}
	return "", false
}

// IsTerminal reports whether no further transitions are expected
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationStatusAccepted || s == ApplicationStatusRejected
}

// Role is the authorization role of an actor
type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleEmployer  Role = "Employer"
	RoleApplicant Role = "Applicant"
)

// Roles lists every role
var Roles = []Role{RoleAdmin, RoleEmployer, RoleApplicant}

// ParseRole matches a role name case-insensitively
func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r, true
		}
	}
	return "", false
}
