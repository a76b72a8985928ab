package services

import (
	"errors"
	"fmt"
	"time"

	"admission-workflow-api/models"

	"gorm.io/gorm"
)

// transitionGraph holds the forward pipeline edges. The two escape edges
// (any non-terminal -> rejected, any review-capable -> changes_requested)
// live in CanTransition so the table stays readable.
var transitionGraph = map[models.ApplicationStatus][]models.ApplicationStatus{
	models.StatusDraft:              {models.StatusSubmitted},
	models.StatusSubmitted:          {models.StatusUnderReview},
	models.StatusUnderReview:        {models.StatusDocumentsPending, models.StatusTestScheduled, models.StatusInterviewScheduled, models.StatusDecisionMade},
	models.StatusChangesRequested:   {models.StatusUnderReview},
	models.StatusDocumentsPending:   {models.StatusUnderReview, models.StatusTestScheduled},
	models.StatusTestScheduled:      {models.StatusTestCompleted},
	models.StatusTestCompleted:      {models.StatusInterviewScheduled, models.StatusDecisionMade},
	models.StatusInterviewScheduled: {models.StatusInterviewCompleted},
	models.StatusInterviewCompleted: {models.StatusDecisionMade},
	models.StatusDecisionMade:       {models.StatusAccepted, models.StatusWaitlisted},
	models.StatusWaitlisted:         {models.StatusAccepted},
	models.StatusAccepted:           {models.StatusEnrolled},
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to models.ApplicationStatus) bool {
	if !from.IsValid() || !to.IsValid() || from == to {
		return false
	}
	if from.IsTerminal() {
		// Enrollment completion is the single sanctioned exit from a
		// decided application.
		return from == models.StatusAccepted && to == models.StatusEnrolled
	}
	if to == models.StatusRejected {
		return true
	}
	if to == models.StatusChangesRequested {
		return from != models.StatusDraft
	}
	for _, next := range transitionGraph[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedTargets returns every status reachable from the given one.
func AllowedTargets(from models.ApplicationStatus) []models.ApplicationStatus {
	targets := make([]models.ApplicationStatus, 0, 4)
	for _, to := range models.AllStatuses {
		if CanTransition(from, to) {
			targets = append(targets, to)
		}
	}
	return targets
}

// NextPipelineStatus returns the primary forward successor used when an
// administrator approves a review. Statuses that require an explicit human
// decision (decision_made, waitlisted) and terminal statuses have none.
func NextPipelineStatus(from models.ApplicationStatus) (models.ApplicationStatus, error) {
	next, ok := map[models.ApplicationStatus]models.ApplicationStatus{
		models.StatusDraft:              models.StatusSubmitted,
		models.StatusSubmitted:          models.StatusUnderReview,
		models.StatusUnderReview:        models.StatusDocumentsPending,
		models.StatusChangesRequested:   models.StatusUnderReview,
		models.StatusDocumentsPending:   models.StatusTestScheduled,
		models.StatusTestScheduled:      models.StatusTestCompleted,
		models.StatusTestCompleted:      models.StatusInterviewScheduled,
		models.StatusInterviewScheduled: models.StatusInterviewCompleted,
		models.StatusInterviewCompleted: models.StatusDecisionMade,
	}[from]
	if !ok {
		return "", fmt.Errorf("no pipeline successor for status %s", from)
	}
	return next, nil
}

// statusStepNames maps an entered status to the default workflow step names
// it completes. Schools that renamed or removed a step simply get no
// tracker row for it.
var statusStepNames = map[models.ApplicationStatus][]string{
	models.StatusSubmitted:          {"Application Submitted"},
	models.StatusTestScheduled:      {"Documents Verification"},
	models.StatusInterviewScheduled: {"Documents Verification"},
	models.StatusTestCompleted:      {"Entrance Test"},
	models.StatusInterviewCompleted: {"Interview"},
	models.StatusDecisionMade:       {"Admission Decision"},
	models.StatusEnrolled:           {"Fee Payment", "Enrollment Complete"},
}

// StateMachine owns the application status column. Every change goes
// through Transition, which enforces the graph, the lock guard and the
// optimistic version check, and appends the history row in the same
// transaction.
type StateMachine struct {
	db         *gorm.DB
	dispatcher Dispatcher
}

// NewStateMachine builds a state machine over db. dispatcher may be nil
// when no post-commit notifications are wanted.
func NewStateMachine(db *gorm.DB, dispatcher Dispatcher) *StateMachine {
	return &StateMachine{db: db, dispatcher: dispatcher}
}

// Transition moves an application to target, appending the status history
// entry atomically. It returns ConcurrentModificationError when another
// writer advanced the row past the version read here.
func (m *StateMachine) Transition(applicationID int, target models.ApplicationStatus, reason string, actorID int) (*models.Application, error) {
	var app models.Application
	if err := m.db.Where("application_id = ? AND deleted_at IS NULL", applicationID).First(&app).Error; err != nil {
		return nil, err
	}

	if err := m.validate(&app, target); err != nil {
		return nil, err
	}

	tx := m.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	previous := app.Status
	if err := m.applyTransition(tx, &app, target, reason, actorID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	// Notification dispatch happens strictly after commit.
	if m.dispatcher != nil {
		m.dispatcher.ApplicationStatusChanged(&app, previous, target)
	}
	return &app, nil
}

// validate runs the lock guard and graph checks against the loaded row.
func (m *StateMachine) validate(app *models.Application, target models.ApplicationStatus) error {
	if app.Locked {
		entity, id := app.LockableEntity()
		return &models.RecordLockedError{Entity: entity, ID: id}
	}
	if !CanTransition(app.Status, target) {
		if app.Status.IsTerminal() && target == app.Status {
			entity, id := app.LockableEntity()
			return &models.RecordLockedError{Entity: entity, ID: id}
		}
		return &models.InvalidTransitionError{From: app.Status, To: target}
	}
	return nil
}

// applyTransition performs the version-guarded update, history append and
// tracker sync inside tx. On success app reflects the new state. The caller
// owns commit/rollback.
func (m *StateMachine) applyTransition(tx *gorm.DB, app *models.Application, target models.ApplicationStatus, reason string, actorID int) error {
	now := time.Now()
	previous := app.Status

	updates := map[string]interface{}{
		"status":     target,
		"updated_at": now,
		"version":    gorm.Expr("version + ?", 1),
	}
	if target == models.StatusSubmitted && app.SubmissionDate == nil {
		updates["submission_date"] = now
	}
	switch target {
	case models.StatusAccepted, models.StatusWaitlisted, models.StatusRejected:
		updates["decision_date"] = now
		if reason != "" {
			updates["decision_reason"] = reason
		}
	}

	result := tx.Model(&models.Application{}).
		Where("application_id = ? AND version = ?", app.ApplicationID, app.Version).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &models.ConcurrentModificationError{
			ApplicationID:   app.ApplicationID,
			ExpectedVersion: app.Version,
		}
	}

	history := models.StatusHistoryEntry{
		ApplicationID:  app.ApplicationID,
		PreviousStatus: &previous,
		NewStatus:      target,
		ChangeDate:     now,
		ActorID:        actorID,
	}
	if reason != "" {
		history.ChangeReason = &reason
	}
	if err := tx.Create(&history).Error; err != nil {
		return err
	}

	if err := m.syncTracker(tx, app, target, now); err != nil {
		return err
	}

	app.Status = target
	app.Version++
	app.UpdatedAt = now
	if target == models.StatusSubmitted && app.SubmissionDate == nil {
		app.SubmissionDate = &now
	}
	return nil
}

// syncTracker marks the configured steps completed by entering target.
// Steps the school deleted or deactivated are simply skipped.
func (m *StateMachine) syncTracker(tx *gorm.DB, app *models.Application, target models.ApplicationStatus, now time.Time) error {
	names, ok := statusStepNames[target]
	if !ok {
		return nil
	}

	var steps []models.WorkflowStep
	if err := tx.Where("school_id = ? AND is_active = ? AND step_name IN ?", app.SchoolID, true, names).
		Find(&steps).Error; err != nil {
		return err
	}

	for _, step := range steps {
		var existing models.ApplicationWorkflowTracker
		err := tx.Where("application_id = ? AND step_id = ?", app.ApplicationID, step.StepID).
			First(&existing).Error
		if err == nil {
			if existing.CompletedAt == nil {
				if err := tx.Model(&models.ApplicationWorkflowTracker{}).
					Where("tracker_id = ?", existing.TrackerID).
					Update("completed_at", now).Error; err != nil {
					return err
				}
			}
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		tracker := models.ApplicationWorkflowTracker{
			ApplicationID: app.ApplicationID,
			StepID:        step.StepID,
			CompletedAt:   &now,
			CreatedAt:     now,
		}
		if err := tx.Create(&tracker).Error; err != nil {
			return err
		}
	}
	return nil
}
