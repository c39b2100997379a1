package events

import "time"

// Event types
const (
	TypeJobPosted                = "job.posted"
	TypeJobDeleted               = "job.deleted"
	TypeApplicationSubmitted     = "application.submitted"
	TypeApplicationViewed        = "application.viewed"
	TypeApplicationStatusChanged = "application.status_changed"
	TypeApplicationDeleted       = "application.deleted"
)

// JobPostedEvent is published after a job is stored
type JobPostedEvent struct {
	BaseEvent
	JobID      int64  `json:"job_id"`
	Title      string `json:"title"`
	EmployerID string `json:"employer_id"`
}

// NewJobPostedEvent creates a JobPostedEvent
func NewJobPostedEvent(jobID int64, title, employerID, userID string, at time.Time) *JobPostedEvent {
	return &JobPostedEvent{
		BaseEvent:  newBaseEvent(TypeJobPosted, userID, at),
		JobID:      jobID,
		Title:      title,
		EmployerID: employerID,
	}
}

// JobDeletedEvent is published after an admin removes a job
type JobDeletedEvent struct {
	BaseEvent
	JobID int64 `json:"job_id"`
}

// NewJobDeletedEvent creates a JobDeletedEvent
func NewJobDeletedEvent(jobID int64, userID string, at time.Time) *JobDeletedEvent {
	return &JobDeletedEvent{
		BaseEvent: newBaseEvent(TypeJobDeleted, userID, at),
		JobID:     jobID,
	}
}

// ApplicationEvent covers the application lifecycle. From and To are set
// for status changes only.
type ApplicationEvent struct {
	BaseEvent
	ApplicationID int64  `json:"application_id"`
	JobID         int64  `json:"job_id"`
	From          string `json:"from,omitempty"`
	To            string `json:"to,omitempty"`
}

// NewApplicationSubmittedEvent creates an application.submitted event
func NewApplicationSubmittedEvent(applicationID, jobID int64, userID string, at time.Time) *ApplicationEvent {
	return &ApplicationEvent{
		BaseEvent:     newBaseEvent(TypeApplicationSubmitted, userID, at),
		ApplicationID: applicationID,
		JobID:         jobID,
	}
}

// NewApplicationViewedEvent creates an application.viewed event
func NewApplicationViewedEvent(applicationID, jobID int64, userID string, at time.Time) *ApplicationEvent {
	return &ApplicationEvent{
		BaseEvent:     newBaseEvent(TypeApplicationViewed, userID, at),
		ApplicationID: applicationID,
		JobID:         jobID,
	}
}

// NewApplicationStatusChangedEvent creates an application.status_changed event
func NewApplicationStatusChangedEvent(applicationID, jobID int64, from, to, userID string, at time.Time) *ApplicationEvent {
	return &ApplicationEvent{
		BaseEvent:     newBaseEvent(TypeApplicationStatusChanged, userID, at),
		ApplicationID: applicationID,
		JobID:         jobID,
		From:          from,
		To:            to,
	}
}

// NewApplicationDeletedEvent creates an application.deleted event
func NewApplicationDeletedEvent(applicationID, jobID int64, userID string, at time.Time) *ApplicationEvent {
	return &ApplicationEvent{
		BaseEvent:     newBaseEvent(TypeApplicationDeleted, userID, at),
		ApplicationID: applicationID,
		JobID:         jobID,
	}
}
