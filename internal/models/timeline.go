package models

import (
	"fmt"
	"time"
)

// TimelineEntry is one event in an application's history
type TimelineEntry struct {
	Label string    `json:"label"`
	At    time.Time `json:"at"`
}

// Timeline projects the application's timestamps in the order they happen in
// the lifecycle: submission, first employer view, last status change. Entries
// are not re-sorted by time.
func (a *Application) Timeline() []TimelineEntry {
	entries := []TimelineEntry{{Label: "Submitted", At: a.AppliedOn}}

	if a.IsViewed && a.ViewedOn != nil {
		entries = append(entries, TimelineEntry{Label: "Viewed by Employer", At: *a.ViewedOn})
	}

	if a.Status != ApplicationStatusSubmitted && a.LastUpdated != nil {
		entries = append(entries, TimelineEntry{
			Label: fmt.Sprintf("Status updated to %s", a.Status),
			At:    *a.LastUpdated,
		})
	}

	return entries
}
