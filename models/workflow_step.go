package models

import "time"

// WorkflowStep is one configurable stage of a school's admission pipeline.
// StepOrder is unique among the school's active steps.
type WorkflowStep struct {
	StepID          int        `gorm:"primaryKey;column:step_id" json:"step_id"`
	SchoolID        int        `gorm:"column:school_id" json:"school_id"`
	StepName        string     `gorm:"column:step_name" json:"step_name"`
	StepDescription string     `gorm:"column:step_description" json:"step_description"`
	StepOrder       int        `gorm:"column:step_order" json:"step_order"`
	IsRequired      bool       `gorm:"column:is_required" json:"is_required"`
	IsActive        bool       `gorm:"column:is_active" json:"is_active"`
	CreatedAt       time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`
}

// TableName overrides the table name for WorkflowStep.
func (WorkflowStep) TableName() string {
	return "workflow_steps"
}

// ApplicationWorkflowTracker marks a configured step an application has
// passed. Rows referencing a deleted step are orphans and are skipped by
// readers, never treated as an error.
type ApplicationWorkflowTracker struct {
	TrackerID     int        `gorm:"primaryKey;column:tracker_id" json:"tracker_id"`
	ApplicationID int        `gorm:"column:application_id" json:"application_id"`
	StepID        int        `gorm:"column:step_id" json:"step_id"`
	CompletedAt   *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
}

// TableName overrides the table name for ApplicationWorkflowTracker.
func (ApplicationWorkflowTracker) TableName() string {
	return "application_workflow_trackers"
}

// DefaultWorkflowSteps returns the canonical 7-step sequence installed by a
// registry reset, orders 1-7. The names are load-bearing for schools
// migrating existing tracker data and must not be reworded.
func DefaultWorkflowSteps(schoolID int) []WorkflowStep {
	defaults := []struct {
		name        string
		description string
	}{
		{"Application Submitted", "Application form received and registered"},
		{"Documents Verification", "Supporting documents checked for completeness"},
		{"Entrance Test", "Entrance examination scheduled and taken"},
		{"Interview", "Family interview with admission staff"},
		{"Admission Decision", "Final decision by the admission committee"},
		{"Fee Payment", "Admission fee settled"},
		{"Enrollment Complete", "Student enrolled and onboarded"},
	}

	steps := make([]WorkflowStep, 0, len(defaults))
	for i, d := range defaults {
		steps = append(steps, WorkflowStep{
			SchoolID:        schoolID,
			StepName:        d.name,
			StepDescription: d.description,
			StepOrder:       i + 1,
			IsRequired:      true,
			IsActive:        true,
		})
	}
	return steps
}
