package models

var allowedTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusSubmitted:   {ApplicationStatusUnderReview, ApplicationStatusRejected},
	ApplicationStatusUnderReview: {ApplicationStatusShortlisted, ApplicationStatusRejected},
	ApplicationStatusShortlisted: {ApplicationStatusInterviewed, ApplicationStatusRejected},
	ApplicationStatusInterviewed: {ApplicationStatusAccepted, ApplicationStatusRejected},
}

// CanTransition reports whether from → to follows the forward lifecycle.
// Re-applying the current status is always allowed.
func CanTransition(from, to ApplicationStatus) bool {
	if from == to {
		return true
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses lists the statuses reachable from s under the forward lifecycle
func NextStatuses(s ApplicationStatus) []ApplicationStatus {
	next := allowedTransitions[s]
	out := make([]ApplicationStatus, len(next))
	copy(out, next)
	return out
}
