package models

import "fmt"

// ApplicationStatus is the canonical lifecycle status of an admission
// application. The set is closed: anything not listed here is rejected at
// the boundary, never stored.
type ApplicationStatus string

const (
	StatusDraft              ApplicationStatus = "draft"
	StatusSubmitted          ApplicationStatus = "submitted"
	StatusUnderReview        ApplicationStatus = "under_review"
	StatusChangesRequested   ApplicationStatus = "changes_requested"
	StatusDocumentsPending   ApplicationStatus = "documents_pending"
	StatusTestScheduled      ApplicationStatus = "test_scheduled"
	StatusTestCompleted      ApplicationStatus = "test_completed"
	StatusInterviewScheduled ApplicationStatus = "interview_scheduled"
	StatusInterviewCompleted ApplicationStatus = "interview_completed"
	StatusDecisionMade       ApplicationStatus = "decision_made"
	StatusAccepted           ApplicationStatus = "accepted"
	StatusWaitlisted         ApplicationStatus = "waitlisted"
	StatusRejected           ApplicationStatus = "rejected"
	StatusEnrolled           ApplicationStatus = "enrolled"
)

// AllStatuses lists every legal status value in pipeline order.
var AllStatuses = []ApplicationStatus{
	StatusDraft,
	StatusSubmitted,
	StatusUnderReview,
	StatusChangesRequested,
	StatusDocumentsPending,
	StatusTestScheduled,
	StatusTestCompleted,
	StatusInterviewScheduled,
	StatusInterviewCompleted,
	StatusDecisionMade,
	StatusAccepted,
	StatusWaitlisted,
	StatusRejected,
	StatusEnrolled,
}

// IsValid reports whether s is a member of the closed status set.
func (s ApplicationStatus) IsValid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is permitted from s.
func (s ApplicationStatus) IsTerminal() bool {
	switch s {
	case StatusAccepted, StatusRejected, StatusEnrolled:
		return true
	}
	return false
}

// ParseApplicationStatus validates a raw status string from the API layer.
func ParseApplicationStatus(raw string) (ApplicationStatus, error) {
	s := ApplicationStatus(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown application status %q", raw)
	}
	return s, nil
}
