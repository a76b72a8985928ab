package services

import (
	"encoding/json"
	"errors"
	"time"

	"admission-workflow-api/models"

	"gorm.io/gorm"
)

// StepService owns the per-school workflow step registry.
type StepService struct {
	db *gorm.DB
}

// NewStepService builds a step service over db.
func NewStepService(db *gorm.DB) *StepService {
	return &StepService{db: db}
}

// CreateStepInput carries the fields accepted by CreateStep.
type CreateStepInput struct {
	SchoolID        int
	StepName        string
	StepDescription string
	StepOrder       int
	IsRequired      bool
	IsActive        bool
}

// validateOrder enforces the registry invariant: no two active steps of a
// school share an order. excludeStepID skips the step being updated.
func (s *StepService) validateOrder(tx *gorm.DB, schoolID, order, excludeStepID int) error {
	if order < 1 {
		return models.NewValidationError("step_order", "must be 1 or greater")
	}
	query := tx.Model(&models.WorkflowStep{}).
		Where("school_id = ? AND step_order = ? AND is_active = ?", schoolID, order, true)
	if excludeStepID > 0 {
		query = query.Where("step_id <> ?", excludeStepID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return models.NewValidationError("step_order", "an active step already uses this order")
	}
	return nil
}

// CreateStep adds a workflow step for a school.
func (s *StepService) CreateStep(input CreateStepInput) (*models.WorkflowStep, error) {
	if input.StepName == "" {
		return nil, models.NewValidationError("step_name", "is required")
	}

	step := models.WorkflowStep{
		SchoolID:        input.SchoolID,
		StepName:        input.StepName,
		StepDescription: input.StepDescription,
		StepOrder:       input.StepOrder,
		IsRequired:      input.IsRequired,
		IsActive:        input.IsActive,
		CreatedAt:       time.Now(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if input.IsActive {
			if err := s.validateOrder(tx, input.SchoolID, input.StepOrder, 0); err != nil {
				return err
			}
		} else if input.StepOrder < 1 {
			return models.NewValidationError("step_order", "must be 1 or greater")
		}
		return tx.Create(&step).Error
	})
	if err != nil {
		return nil, err
	}
	return &step, nil
}

// UpdateStepInput carries the optional fields accepted by UpdateStep; nil
// means leave unchanged.
type UpdateStepInput struct {
	StepName        *string
	StepDescription *string
	StepOrder       *int
	IsRequired      *bool
	IsActive        *bool
}

// UpdateStep applies a partial update, re-checking the order invariant
// against the school's other active steps.
func (s *StepService) UpdateStep(stepID int, input UpdateStepInput) (*models.WorkflowStep, error) {
	var step models.WorkflowStep
	if err := s.db.Where("step_id = ?", stepID).First(&step).Error; err != nil {
		return nil, err
	}

	if input.StepName != nil {
		if *input.StepName == "" {
			return nil, models.NewValidationError("step_name", "is required")
		}
		step.StepName = *input.StepName
	}
	if input.StepDescription != nil {
		step.StepDescription = *input.StepDescription
	}
	if input.StepOrder != nil {
		step.StepOrder = *input.StepOrder
	}
	if input.IsRequired != nil {
		step.IsRequired = *input.IsRequired
	}
	if input.IsActive != nil {
		step.IsActive = *input.IsActive
	}

	now := time.Now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if step.IsActive {
			if err := s.validateOrder(tx, step.SchoolID, step.StepOrder, step.StepID); err != nil {
				return err
			}
		} else if step.StepOrder < 1 {
			return models.NewValidationError("step_order", "must be 1 or greater")
		}
		return tx.Model(&models.WorkflowStep{}).
			Where("step_id = ?", step.StepID).
			Updates(map[string]interface{}{
				"is_active":        step.IsActive,
				"is_required":      step.IsRequired,
				"step_description": step.StepDescription,
				"step_name":        step.StepName,
				"step_order":       step.StepOrder,
				"updated_at":       now,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	step.UpdatedAt = &now
	return &step, nil
}

// DeleteStep removes a step unconditionally and reports how many tracker
// rows it orphans; the caller surfaces that count in its confirmation
// contract before and after the fact.
func (s *StepService) DeleteStep(stepID int) (orphanedTrackers int64, err error) {
	var step models.WorkflowStep
	if err := s.db.Where("step_id = ?", stepID).First(&step).Error; err != nil {
		return 0, err
	}

	if err := s.db.Model(&models.ApplicationWorkflowTracker{}).
		Where("step_id = ?", stepID).
		Count(&orphanedTrackers).Error; err != nil {
		return 0, err
	}

	if err := s.db.Where("step_id = ?", stepID).Delete(&models.WorkflowStep{}).Error; err != nil {
		return 0, err
	}
	return orphanedTrackers, nil
}

// ToggleActive flips is_active. Re-activation re-checks the order invariant
// so a dormant step cannot resurface onto an occupied slot.
func (s *StepService) ToggleActive(stepID int) (*models.WorkflowStep, error) {
	var step models.WorkflowStep
	if err := s.db.Where("step_id = ?", stepID).First(&step).Error; err != nil {
		return nil, err
	}

	next := !step.IsActive
	now := time.Now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if next {
			if err := s.validateOrder(tx, step.SchoolID, step.StepOrder, step.StepID); err != nil {
				return err
			}
		}
		return tx.Model(&models.WorkflowStep{}).
			Where("step_id = ?", step.StepID).
			Updates(map[string]interface{}{
				"is_active":  next,
				"updated_at": now,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	step.IsActive = next
	step.UpdatedAt = &now
	return &step, nil
}

// ResetToDefault atomically replaces a school's step set with the canonical
// seven-step sequence. Either every old step is removed and every default
// inserted, or nothing changes.
func (s *StepService) ResetToDefault(schoolID, actorID int, ipAddress string) ([]models.WorkflowStep, error) {
	steps := models.DefaultWorkflowSteps(schoolID)
	now := time.Now()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("school_id = ?", schoolID).Delete(&models.WorkflowStep{}).Error; err != nil {
			return err
		}
		for i := range steps {
			steps[i].CreatedAt = now
			if err := tx.Create(&steps[i]).Error; err != nil {
				return err
			}
		}

		values, _ := json.Marshal(map[string]interface{}{
			"school_id":  schoolID,
			"step_count": len(steps),
		})
		serialized := string(values)
		description := "workflow steps reset to default sequence"
		audit := models.AuditLog{
			UserID:      actorID,
			Action:      "reset_steps",
			EntityType:  "school",
			EntityID:    &schoolID,
			NewValues:   &serialized,
			Description: &description,
			IPAddress:   ipAddress,
			CreatedAt:   now,
		}
		return tx.Create(&audit).Error
	})
	if err != nil {
		return nil, err
	}
	return steps, nil
}

// ListSteps returns a school's steps ordered by step_order. Inactive steps
// are excluded unless requested; they stay queryable for history.
func (s *StepService) ListSteps(schoolID int, includeInactive bool) ([]models.WorkflowStep, error) {
	query := s.db.Where("school_id = ?", schoolID)
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var steps []models.WorkflowStep
	if err := query.Order("step_order ASC").Find(&steps).Error; err != nil {
		return nil, err
	}
	return steps, nil
}

// StepProgress pairs a configured step with an application's completion.
type StepProgress struct {
	Step        models.WorkflowStep `json:"step"`
	Completed   bool                `json:"completed"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
}

// Progress reports an application's position against its school's active
// steps. Tracker rows pointing at deleted steps are orphans and are
// ignored.
func (s *StepService) Progress(app *models.Application) ([]StepProgress, error) {
	steps, err := s.ListSteps(app.SchoolID, false)
	if err != nil {
		return nil, err
	}

	var trackers []models.ApplicationWorkflowTracker
	if err := s.db.Where("application_id = ?", app.ApplicationID).Find(&trackers).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	completedAt := make(map[int]*time.Time, len(trackers))
	for _, tracker := range trackers {
		if tracker.CompletedAt != nil {
			completedAt[tracker.StepID] = tracker.CompletedAt
		}
	}

	progress := make([]StepProgress, 0, len(steps))
	for _, step := range steps {
		entry := StepProgress{Step: step}
		if at, ok := completedAt[step.StepID]; ok {
			entry.Completed = true
			entry.CompletedAt = at
		}
		progress = append(progress, entry)
	}
	return progress, nil
}
