package models

// Lockable is implemented by records with one-way finalization semantics.
// Once IsLocked reports true, every mutation attempt must fail with
// RecordLockedError.
type Lockable interface {
	IsLocked() bool
	LockableEntity() (entity string, id int)
}
