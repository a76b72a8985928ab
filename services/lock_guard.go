package services

import (
	"encoding/json"
	"time"

	"admission-workflow-api/models"

	"gorm.io/gorm"
)

// EnsureUnlocked is the shared finalization guard: it rejects any mutation
// attempt against a locked record with RecordLockedError.
func EnsureUnlocked(record models.Lockable) error {
	if !record.IsLocked() {
		return nil
	}
	entity, id := record.LockableEntity()
	return &models.RecordLockedError{Entity: entity, ID: id}
}

// LockGuard applies one-way locks to applications and date-scoped records.
// Locking is never undone through normal operation and is always audited.
type LockGuard struct {
	db *gorm.DB
}

// NewLockGuard builds a guard over db.
func NewLockGuard(db *gorm.DB) *LockGuard {
	return &LockGuard{db: db}
}

// LockApplication sets the application's lock flag and writes the audit
// trail in one transaction. Locking an already locked record fails with
// RecordLockedError.
func (g *LockGuard) LockApplication(applicationID, actorID int, reason, ipAddress string) (*models.Application, error) {
	var app models.Application
	if err := g.db.Where("application_id = ? AND deleted_at IS NULL", applicationID).First(&app).Error; err != nil {
		return nil, err
	}
	if app.Locked {
		entity, id := app.LockableEntity()
		return nil, &models.RecordLockedError{Entity: entity, ID: id}
	}

	now := time.Now()
	err := g.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Application{}).
			Where("application_id = ?", app.ApplicationID).
			Updates(map[string]interface{}{
				"locked":     true,
				"locked_at":  now,
				"locked_by":  actorID,
				"updated_at": now,
			}).Error; err != nil {
			return err
		}
		return g.writeLockAudit(tx, "application", app.ApplicationID, app.ApplicationNumber, actorID, reason, ipAddress, now)
	})
	if err != nil {
		return nil, err
	}

	app.Locked = true
	app.LockedAt = &now
	app.LockedBy = &actorID
	return &app, nil
}

// LockAttendanceDay finalizes a daily attendance roster with the same
// semantics as application locking.
func (g *LockGuard) LockAttendanceDay(attendanceID, actorID int, reason, ipAddress string) (*models.AttendanceDay, error) {
	var day models.AttendanceDay
	if err := g.db.Where("attendance_id = ?", attendanceID).First(&day).Error; err != nil {
		return nil, err
	}
	if day.Locked {
		entity, id := day.LockableEntity()
		return nil, &models.RecordLockedError{Entity: entity, ID: id}
	}

	now := time.Now()
	err := g.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.AttendanceDay{}).
			Where("attendance_id = ?", day.AttendanceID).
			Updates(map[string]interface{}{
				"locked":     true,
				"locked_at":  now,
				"locked_by":  actorID,
				"updated_at": now,
			}).Error; err != nil {
			return err
		}
		return g.writeLockAudit(tx, "attendance_day", day.AttendanceID, "", actorID, reason, ipAddress, now)
	})
	if err != nil {
		return nil, err
	}

	day.Locked = true
	day.LockedAt = &now
	day.LockedBy = &actorID
	return &day, nil
}

func (g *LockGuard) writeLockAudit(tx *gorm.DB, entityType string, entityID int, entityNumber string, actorID int, reason, ipAddress string, now time.Time) error {
	values, _ := json.Marshal(map[string]interface{}{
		"locked": true,
		"reason": reason,
	})
	serialized := string(values)

	audit := models.AuditLog{
		UserID:     actorID,
		Action:     "lock",
		EntityType: entityType,
		EntityID:   &entityID,
		NewValues:  &serialized,
		IPAddress:  ipAddress,
		CreatedAt:  now,
	}
	if entityNumber != "" {
		audit.EntityNumber = &entityNumber
	}
	if reason != "" {
		audit.Description = &reason
	}
	return tx.Create(&audit).Error
}
