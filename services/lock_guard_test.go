package services

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admission-workflow-api/models"
)

func TestEnsureUnlocked(t *testing.T) {
	assert.NoError(t, EnsureUnlocked(&models.Application{Status: models.StatusUnderReview}))

	err := EnsureUnlocked(&models.Application{ApplicationID: 7, Locked: true})
	var locked *models.RecordLockedError
	require.True(t, errors.As(err, &locked))
	assert.Equal(t, "application", locked.Entity)
	assert.Equal(t, 7, locked.ID)

	// Terminal statuses behave exactly like an explicit lock.
	for _, status := range []models.ApplicationStatus{
		models.StatusAccepted,
		models.StatusRejected,
		models.StatusEnrolled,
	} {
		err := EnsureUnlocked(&models.Application{ApplicationID: 7, Status: status})
		assert.True(t, errors.As(err, &locked), "expected %s to be treated as locked", status)
	}

	assert.NoError(t, EnsureUnlocked(&models.AttendanceDay{AttendanceID: 3}))
	err = EnsureUnlocked(&models.AttendanceDay{AttendanceID: 3, Locked: true})
	require.True(t, errors.As(err, &locked))
	assert.Equal(t, "attendance_day", locked.Entity)
}

func TestLockApplicationWritesAuditInOneTransaction(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT \\* FROM `applications` WHERE application_id = \\? AND deleted_at IS NULL").
		WillReturnRows(applicationRows(7, 1, "decision_made", 4, false))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `applications` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `audit_logs`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	guard := NewLockGuard(db)
	app, err := guard.LockApplication(7, 42, "records finalized for the term", "10.0.0.1")
	require.NoError(t, err)

	assert.True(t, app.Locked)
	require.NotNil(t, app.LockedBy)
	assert.Equal(t, 42, *app.LockedBy)
	require.NotNil(t, app.LockedAt)
	assert.WithinDuration(t, time.Now(), *app.LockedAt, time.Minute)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockApplicationAlreadyLocked(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT \\* FROM `applications` WHERE application_id = \\? AND deleted_at IS NULL").
		WillReturnRows(applicationRows(7, 1, "decision_made", 4, true))

	guard := NewLockGuard(db)
	_, err := guard.LockApplication(7, 42, "", "10.0.0.1")

	var locked *models.RecordLockedError
	require.True(t, errors.As(err, &locked))
	assert.Equal(t, "application", locked.Entity)
	assert.NoError(t, mock.ExpectationsWereMet())
}
