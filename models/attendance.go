package models

import "time"

// AttendanceDay is a date-scoped staff attendance roster. It shares the
// one-way lock semantics of finalized applications: once locked, the day's
// counts can no longer be edited.
type AttendanceDay struct {
	AttendanceID   int        `gorm:"primaryKey;column:attendance_id" json:"attendance_id"`
	SchoolID       int        `gorm:"column:school_id" json:"school_id"`
	AttendanceDate time.Time  `gorm:"column:attendance_date" json:"attendance_date"`
	PresentCount   int        `gorm:"column:present_count" json:"present_count"`
	AbsentCount    int        `gorm:"column:absent_count" json:"absent_count"`
	LeaveCount     int        `gorm:"column:leave_count" json:"leave_count"`
	Notes          *string    `gorm:"column:notes" json:"notes"`
	Locked         bool       `gorm:"column:locked" json:"locked"`
	LockedBy       *int       `gorm:"column:locked_by" json:"locked_by,omitempty"`
	LockedAt       *time.Time `gorm:"column:locked_at" json:"locked_at,omitempty"`
	CreatedAt      time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`
}

// TableName overrides the table name for AttendanceDay.
func (AttendanceDay) TableName() string {
	return "attendance_days"
}

// IsLocked satisfies the Lockable contract.
func (d *AttendanceDay) IsLocked() bool {
	return d.Locked
}

// LockableEntity names the entity for RecordLockedError reporting.
func (d *AttendanceDay) LockableEntity() (string, int) {
	return "attendance_day", d.AttendanceID
}
