package models

import "fmt"

// ValidationError reports malformed or conflicting input. Always
// recoverable; Field names the offending field when known.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NewValidationError builds a ValidationError for a specific field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// InvalidTransitionError reports an illegal edge in the status graph.
type InvalidTransitionError struct {
	From ApplicationStatus
	To   ApplicationStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("illegal status transition %s -> %s", e.From, e.To)
}

// ConcurrentModificationError reports a lost-update race: another writer
// advanced the application past the version this request was validated
// against. The caller must reload and retry.
type ConcurrentModificationError struct {
	ApplicationID   int
	ExpectedVersion int
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("application %d was modified concurrently (expected version %d)",
		e.ApplicationID, e.ExpectedVersion)
}

// RecordLockedError reports a mutation attempt against a finalized record.
// No retry will succeed.
type RecordLockedError struct {
	Entity string
	ID     int
}

func (e *RecordLockedError) Error() string {
	return fmt.Sprintf("%s %d is locked and cannot be modified", e.Entity, e.ID)
}
