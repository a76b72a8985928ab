package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admission-workflow-api/models"
)

func TestCreateStepRejectsEmptyName(t *testing.T) {
	db, _, cleanup := newMockDB(t)
	defer cleanup()

	svc := NewStepService(db)
	_, err := svc.CreateStep(CreateStepInput{SchoolID: 1, StepOrder: 1, IsActive: true})

	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "step_name", verr.Field)
}

func TestCreateStepRejectsOrderCollision(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `workflow_steps`").
		WithArgs(1, 3, true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	svc := NewStepService(db)
	_, err := svc.CreateStep(CreateStepInput{
		SchoolID:  1,
		StepName:  "Aptitude Test",
		StepOrder: 3,
		IsActive:  true,
	})

	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "step_order", verr.Field)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateStepRejectsNonPositiveOrder(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := NewStepService(db)
	_, err := svc.CreateStep(CreateStepInput{
		SchoolID:  1,
		StepName:  "Aptitude Test",
		StepOrder: 0,
		IsActive:  true,
	})

	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "step_order", verr.Field)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateStepInactiveSkipsOrderCheck(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	// Inactive steps never hold an order slot, so no collision query runs.
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `workflow_steps`").
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectCommit()

	svc := NewStepService(db)
	step, err := svc.CreateStep(CreateStepInput{
		SchoolID:  1,
		StepName:  "Campus Tour",
		StepOrder: 3,
		IsActive:  false,
	})
	require.NoError(t, err)

	assert.Equal(t, 9, step.StepID)
	assert.False(t, step.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteStepReportsOrphanedTrackers(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT \\* FROM `workflow_steps` WHERE step_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"step_id", "school_id", "step_name", "step_order", "is_active"}).
			AddRow(4, 1, "Entrance Test", 3, true))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `application_workflow_trackers`").
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectExec("DELETE FROM `workflow_steps`").
		WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 1))

	svc := NewStepService(db)
	orphaned, err := svc.DeleteStep(4)
	require.NoError(t, err)

	assert.Equal(t, int64(12), orphaned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleActiveReactivationChecksOrder(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT \\* FROM `workflow_steps` WHERE step_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"step_id", "school_id", "step_name", "step_order", "is_active"}).
			AddRow(4, 1, "Entrance Test", 3, false))
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `workflow_steps`").
		WithArgs(1, 3, true, 4).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	svc := NewStepService(db)
	_, err := svc.ToggleActive(4)

	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "step_order", verr.Field)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetToDefaultReplacesStepsAtomically(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `workflow_steps`").
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 5))
	for i := 1; i <= 7; i++ {
		mock.ExpectExec("INSERT INTO `workflow_steps`").
			WillReturnResult(sqlmock.NewResult(int64(i), 1))
	}
	mock.ExpectExec("INSERT INTO `audit_logs`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	svc := NewStepService(db)
	steps, err := svc.ResetToDefault(3, 42, "10.0.0.1")
	require.NoError(t, err)

	require.Len(t, steps, 7)
	for i, step := range steps {
		assert.Equal(t, i+1, step.StepOrder)
		assert.Equal(t, 3, step.SchoolID)
		assert.True(t, step.IsActive)
	}
	assert.Equal(t, "Application Submitted", steps[0].StepName)
	assert.Equal(t, "Enrollment Complete", steps[6].StepName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetToDefaultRollsBackOnInsertFailure(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `workflow_steps`").
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec("INSERT INTO `workflow_steps`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO `workflow_steps`").
		WillReturnError(fmt.Errorf("duplicate key"))
	mock.ExpectRollback()

	svc := NewStepService(db)
	_, err := svc.ResetToDefault(3, 42, "10.0.0.1")

	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
