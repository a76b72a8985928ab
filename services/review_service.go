package services

import (
	"errors"
	"time"

	"admission-workflow-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReviewService owns field review sessions: the per-field correction
// markers an administrator produces in one review pass, and the
// resubmission cycle they drive.
type ReviewService struct {
	db         *gorm.DB
	machine    *StateMachine
	dispatcher Dispatcher
}

// NewReviewService builds a review service sharing the state machine's
// transition logic so review decisions and status changes commit together.
func NewReviewService(db *gorm.DB, machine *StateMachine, dispatcher Dispatcher) *ReviewService {
	return &ReviewService{db: db, machine: machine, dispatcher: dispatcher}
}

// OpenReview returns the application's open review session, creating and
// seeding one from the current field snapshot when none exists. Seeding is
// idempotent scaffolding: every reviewable field starts unmarked. The
// application row is locked for the duration of the transaction so two
// concurrent opens serialize and the second one sees the first's session,
// keeping at most one open session per application.
func (s *ReviewService) OpenReview(applicationID, actorID int) (*models.ReviewSession, error) {
	var session models.ReviewSession
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var app models.Application
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("application_id = ? AND deleted_at IS NULL", applicationID).
			First(&app).Error; err != nil {
			return err
		}
		if err := EnsureUnlocked(&app); err != nil {
			return err
		}

		err := tx.Preload("Fields").
			Where("application_id = ? AND session_status = ?", applicationID, models.ReviewSessionOpen).
			First(&session).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var round int64
		if err := tx.Model(&models.ReviewSession{}).
			Where("application_id = ?", applicationID).
			Count(&round).Error; err != nil {
			return err
		}

		session = models.ReviewSession{
			ApplicationID: applicationID,
			ReviewRound:   int(round) + 1,
			SessionStatus: models.ReviewSessionOpen,
			OpenedBy:      actorID,
			OpenedAt:      time.Now(),
		}
		if err := tx.Create(&session).Error; err != nil {
			return err
		}
		for _, field := range ReviewableFields() {
			entry := models.FieldReview{
				SessionID:          session.SessionID,
				FieldName:          field.Name,
				FieldLabel:         field.Label,
				FieldValueSnapshot: field.Get(&app),
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
			session.Fields = append(session.Fields, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// MarkField records a correction flag and comment on one field of an open
// session. Field names outside the reviewable registry are rejected.
func (s *ReviewService) MarkField(sessionID int, fieldName string, needsCorrection bool, comment string) (*models.FieldReview, error) {
	if _, ok := LookupReviewableField(fieldName); !ok {
		return nil, models.NewValidationError("field_name", "unknown reviewable field "+fieldName)
	}

	var session models.ReviewSession
	if err := s.db.Where("session_id = ?", sessionID).First(&session).Error; err != nil {
		return nil, err
	}
	if !session.IsOpen() {
		return nil, models.NewValidationError("session_id", "review session is not open")
	}

	var entry models.FieldReview
	if err := s.db.Where("session_id = ? AND field_name = ?", sessionID, fieldName).First(&entry).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.FieldReview{}).
		Where("review_id = ?", entry.ReviewID).
		Updates(map[string]interface{}{
			"admin_comment":    comment,
			"needs_correction": needsCorrection,
			"resolved_at":      nil,
		}).Error; err != nil {
		return nil, err
	}

	entry.NeedsCorrection = needsCorrection
	entry.AdminComment = comment
	entry.ResolvedAt = nil
	return &entry, nil
}

// FilterActionable keeps only the entries that carry review substance: a
// correction flag or a non-empty comment.
func FilterActionable(fields []models.FieldReview) []models.FieldReview {
	actionable := make([]models.FieldReview, 0, len(fields))
	for _, f := range fields {
		if f.Actionable() {
			actionable = append(actionable, f)
		}
	}
	return actionable
}

// SubmitReview finalizes a review pass. decision is approve or
// request_changes; the resulting status transition and the session writes
// commit in one transaction, and events dispatch only afterwards.
func (s *ReviewService) SubmitReview(sessionID int, overallRemarks, decision string, actorID int) (*models.Application, []string, error) {
	if decision != models.ReviewDecisionApprove && decision != models.ReviewDecisionRequestChanges {
		return nil, nil, models.NewValidationError("decision", "must be approve or request_changes")
	}

	var session models.ReviewSession
	if err := s.db.Preload("Fields").Where("session_id = ?", sessionID).First(&session).Error; err != nil {
		return nil, nil, err
	}
	if !session.IsOpen() {
		return nil, nil, models.NewValidationError("session_id", "review session is not open")
	}

	var app models.Application
	if err := s.db.Where("application_id = ? AND deleted_at IS NULL", session.ApplicationID).First(&app).Error; err != nil {
		return nil, nil, err
	}

	actionable := FilterActionable(session.Fields)
	if decision == models.ReviewDecisionRequestChanges && len(actionable) == 0 {
		return nil, nil, models.NewValidationError("fields", "nothing marked")
	}

	target := models.StatusChangesRequested
	if decision == models.ReviewDecisionApprove {
		next, err := NextPipelineStatus(app.Status)
		if err != nil {
			return nil, nil, &models.InvalidTransitionError{From: app.Status, To: ""}
		}
		target = next
	}

	if err := s.machine.validate(&app, target); err != nil {
		return nil, nil, err
	}

	previous := app.Status
	now := time.Now()
	fieldNames := make([]string, 0, len(actionable))
	for _, f := range actionable {
		fieldNames = append(fieldNames, f.FieldName)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.machine.applyTransition(tx, &app, target, overallRemarks, actorID); err != nil {
			return err
		}

		sessionUpdates := map[string]interface{}{
			"decision":        decision,
			"overall_remarks": overallRemarks,
		}
		if decision == models.ReviewDecisionApprove {
			// Approval archives the session and clears every marker.
			sessionUpdates["closed_at"] = now
			sessionUpdates["session_status"] = models.ReviewSessionArchived
			if err := tx.Model(&models.FieldReview{}).
				Where("session_id = ?", session.SessionID).
				Updates(map[string]interface{}{
					"needs_correction": false,
					"resolved_at":      now,
				}).Error; err != nil {
				return err
			}
		} else {
			// Only actionable entries survive as the open corrections.
			if err := tx.Where("session_id = ? AND needs_correction = ? AND admin_comment = ?",
				session.SessionID, false, "").
				Delete(&models.FieldReview{}).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.ReviewSession{}).
			Where("session_id = ?", session.SessionID).
			Updates(sessionUpdates).Error
	})
	if err != nil {
		return nil, nil, err
	}

	if s.dispatcher != nil {
		s.dispatcher.ApplicationStatusChanged(&app, previous, target)
		if decision == models.ReviewDecisionRequestChanges {
			s.dispatcher.CorrectionsRequested(&app, fieldNames)
		}
	}
	if decision == models.ReviewDecisionApprove {
		return &app, nil, nil
	}
	return &app, fieldNames, nil
}

// OpenCorrections returns the field names the applicant is currently
// allowed to edit: the unresolved needs_correction entries of the open
// session. An empty result with an open session means the application is
// ready for re-review.
func (s *ReviewService) OpenCorrections(applicationID int) ([]models.FieldReview, error) {
	var session models.ReviewSession
	err := s.db.Where("application_id = ? AND session_status = ?", applicationID, models.ReviewSessionOpen).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []models.FieldReview{}, nil
	}
	if err != nil {
		return nil, err
	}

	var fields []models.FieldReview
	if err := s.db.Where("session_id = ? AND needs_correction = ?", session.SessionID, true).
		Order("review_id ASC").
		Find(&fields).Error; err != nil {
		return nil, err
	}
	return fields, nil
}

// resubmissionPlan is the precomputed outcome of applying an applicant's
// corrected values against the open correction set.
type resubmissionPlan struct {
	columnUpdates map[string]interface{}
	clearedIDs    []int
	remaining     int
}

// planResubmission validates corrected values against the flagged fields.
// Only flagged fields may be edited, and a flag clears only when the new
// value actually differs from the reviewed snapshot.
func planResubmission(app *models.Application, flagged []models.FieldReview, values map[string]string) (*resubmissionPlan, error) {
	byName := make(map[string]models.FieldReview, len(flagged))
	for _, f := range flagged {
		byName[f.FieldName] = f
	}

	plan := &resubmissionPlan{columnUpdates: map[string]interface{}{}}
	for name, value := range values {
		entry, ok := byName[name]
		if !ok {
			return nil, models.NewValidationError(name, "field is not open for correction")
		}
		field, ok := LookupReviewableField(name)
		if !ok {
			return nil, models.NewValidationError(name, "unknown reviewable field")
		}
		if err := field.Set(app, value); err != nil {
			return nil, err
		}
		if value != entry.FieldValueSnapshot {
			// Field names double as column names for every reviewable
			// field, date_of_birth included.
			if name == "date_of_birth" {
				plan.columnUpdates[name] = app.DateOfBirth
			} else {
				plan.columnUpdates[name] = value
			}
			plan.clearedIDs = append(plan.clearedIDs, entry.ReviewID)
		}
	}

	plan.remaining = 0
	cleared := make(map[int]bool, len(plan.clearedIDs))
	for _, id := range plan.clearedIDs {
		cleared[id] = true
	}
	for _, f := range flagged {
		if !cleared[f.ReviewID] {
			plan.remaining++
		}
	}
	return plan, nil
}

// Resubmit applies an applicant's corrected values. Each flag clears once
// its new value differs from the reviewed snapshot; the status stays
// changes_requested until an administrator re-approves.
func (s *ReviewService) Resubmit(applicationID int, values map[string]string) (*models.ReviewSession, error) {
	var app models.Application
	if err := s.db.Where("application_id = ? AND deleted_at IS NULL", applicationID).First(&app).Error; err != nil {
		return nil, err
	}
	if err := EnsureUnlocked(&app); err != nil {
		return nil, err
	}
	if app.Status != models.StatusChangesRequested {
		return nil, models.NewValidationError("status", "application has no pending correction request")
	}

	var session models.ReviewSession
	if err := s.db.Where("application_id = ? AND session_status = ?", applicationID, models.ReviewSessionOpen).
		First(&session).Error; err != nil {
		return nil, err
	}

	var flagged []models.FieldReview
	if err := s.db.Where("session_id = ? AND needs_correction = ?", session.SessionID, true).
		Find(&flagged).Error; err != nil {
		return nil, err
	}

	plan, err := planResubmission(&app, flagged, values)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if len(plan.columnUpdates) > 0 {
			updates := make(map[string]interface{}, len(plan.columnUpdates)+2)
			for column, value := range plan.columnUpdates {
				updates[column] = value
			}
			updates["updated_at"] = now
			updates["version"] = gorm.Expr("version + ?", 1)

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
		}
		if len(plan.clearedIDs) > 0 {
			if err := tx.Model(&models.FieldReview{}).
				Where("review_id IN ?", plan.clearedIDs).
				Updates(map[string]interface{}{
					"needs_correction": false,
					"resolved_at":      now,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var refreshed models.ReviewSession
	if err := s.db.Preload("Fields").Where("session_id = ?", session.SessionID).First(&refreshed).Error; err != nil {
		return nil, err
	}
	return &refreshed, nil
}
