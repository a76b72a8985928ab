package models

import "time"

// Application represents the applications table. The status column is owned
// by the workflow state machine and only changes through validated
// transitions; Version is the optimistic-concurrency counter those
// transitions check.
type Application struct {
	ApplicationID     int               `gorm:"primaryKey;column:application_id" json:"application_id"`
	ApplicationNumber string            `gorm:"column:application_number;unique" json:"application_number"`
	SchoolID          int               `gorm:"column:school_id" json:"school_id"`
	ApplicantUserID   int               `gorm:"column:applicant_user_id" json:"applicant_user_id"`
	Status            ApplicationStatus `gorm:"column:status" json:"status"`
	Version           int               `gorm:"column:version" json:"version"`

	StudentFirstName string     `gorm:"column:student_first_name" json:"student_first_name"`
	StudentLastName  string     `gorm:"column:student_last_name" json:"student_last_name"`
	DateOfBirth      *time.Time `gorm:"column:date_of_birth" json:"date_of_birth,omitempty"`
	Gender           string     `gorm:"column:gender" json:"gender"`
	GradeApplying    string     `gorm:"column:grade_applying" json:"grade_applying"`
	PreviousSchool   string     `gorm:"column:previous_school" json:"previous_school"`
	GuardianName     string     `gorm:"column:guardian_name" json:"guardian_name"`
	GuardianPhone    string     `gorm:"column:guardian_phone" json:"guardian_phone"`
	Email            string     `gorm:"column:email" json:"email"`
	Phone            string     `gorm:"column:phone" json:"phone"`
	Address          string     `gorm:"column:address" json:"address"`

	SubmissionDate *time.Time `gorm:"column:submission_date" json:"submission_date,omitempty"`
	DecisionDate   *time.Time `gorm:"column:decision_date" json:"decision_date,omitempty"`
	DecisionReason *string    `gorm:"column:decision_reason" json:"decision_reason,omitempty"`

	Locked   bool       `gorm:"column:locked" json:"locked"`
	LockedBy *int       `gorm:"column:locked_by" json:"locked_by,omitempty"`
	LockedAt *time.Time `gorm:"column:locked_at" json:"locked_at,omitempty"`

	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`

	// Relations
	School    *School `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
	Applicant *User   `gorm:"foreignKey:ApplicantUserID" json:"applicant,omitempty"`
}

// TableName overrides the table name for Application.
func (Application) TableName() string {
	return "applications"
}

// IsLocked satisfies the Lockable contract: terminal statuses behave exactly
// like an explicit lock.
func (a *Application) IsLocked() bool {
	return a.Locked || a.Status.IsTerminal()
}

// LockableEntity names the entity for RecordLockedError reporting.
func (a *Application) LockableEntity() (string, int) {
	return "application", a.ApplicationID
}

// School represents the schools table.
type School struct {
	SchoolID   int        `gorm:"primaryKey;column:school_id" json:"school_id"`
	SchoolName string     `gorm:"column:school_name" json:"school_name"`
	SchoolCode string     `gorm:"column:school_code;unique" json:"school_code"`
	CreatedAt  time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`
}

// TableName overrides the table name for School.
func (School) TableName() string {
	return "schools"
}
