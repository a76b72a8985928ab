package controllers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"admission-workflow-api/config"
)

// swapMockDB points config.DB at a sqlmock-backed gorm instance for one test.
func swapMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	if err != nil {
		t.Fatalf("failed to open gorm over sqlmock: %v", err)
	}

	previous := config.DB
	config.DB = gormDB
	t.Cleanup(func() {
		config.DB = previous
		_ = sqlDB.Close()
	})
	return mock
}

func draftApplicationRows(appID, version int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"application_id", "application_number", "school_id", "applicant_user_id",
		"status", "version", "locked",
	}).AddRow(appID, "ADM-2026-TEST0001", 1, 10, "draft", version, false)
}

func updateDraftContext(t *testing.T, appID string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)

	body := []byte(`{
		"student_first_name": "Mina",
		"student_last_name":  "Sato",
		"gender":             "female",
		"grade_applying":     "7",
		"guardian_name":      "Kenji Sato",
		"email":              "parent@example.com"
	}`)
	c.Request = httptest.NewRequest(http.MethodPut, "/applications/"+appID, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: appID}}
	c.Set("userID", 10)
	return c, recorder
}

func TestUpdateApplicationTakesVersionGuard(t *testing.T) {
	mock := swapMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `applications` WHERE application_id = \\? AND applicant_user_id = \\? AND deleted_at IS NULL").
		WillReturnRows(draftApplicationRows(7, 1))
	// The draft edit must carry the version predicate, not a bare primary
	// key overwrite.
	mock.ExpectExec("UPDATE `applications` SET .* WHERE application_id = \\? AND version = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, recorder := updateDraftContext(t, "7")
	UpdateApplication(c)

	assert.Equal(t, http.StatusOK, recorder.Code)
	body := decodeBody(t, recorder)
	app, ok := body["application"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), app["version"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateApplicationStaleDraftConflicts(t *testing.T) {
	mock := swapMockDB(t)

	// The loaded row is stale: another writer (the applicant's own submit)
	// already advanced the version, so the guarded update matches nothing.
	mock.ExpectQuery("SELECT \\* FROM `applications` WHERE application_id = \\? AND applicant_user_id = \\? AND deleted_at IS NULL").
		WillReturnRows(draftApplicationRows(7, 1))
	mock.ExpectExec("UPDATE `applications` SET .* WHERE application_id = \\? AND version = \\?").
		WillReturnResult(sqlmock.NewResult(0, 0))

	c, recorder := updateDraftContext(t, "7")
	UpdateApplication(c)

	assert.Equal(t, http.StatusConflict, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, true, body["retryable"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateApplicationRejectsSubmittedRecord(t *testing.T) {
	mock := swapMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `applications` WHERE application_id = \\? AND applicant_user_id = \\? AND deleted_at IS NULL").
		WillReturnRows(sqlmock.NewRows([]string{
			"application_id", "application_number", "school_id", "applicant_user_id",
			"status", "version", "locked",
		}).AddRow(7, "ADM-2026-TEST0001", 1, 10, "submitted", 2, false))

	c, recorder := updateDraftContext(t, "7")
	UpdateApplication(c)

	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
