package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDB opens gorm over a sqlmock connection. SkipDefaultTransaction is
// set so only explicit transactions emit Begin/Commit, which keeps the
// expected statement sequences deterministic.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
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

	cleanup := func() {
		_ = sqlDB.Close()
	}
	return gormDB, mock, cleanup
}

// applicationRows builds a result set carrying the columns the state machine
// and review services read.
func applicationRows(appID, schoolID int, status string, version int, locked bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"application_id", "application_number", "school_id", "applicant_user_id",
		"status", "version", "locked",
	}).AddRow(appID, "ADM-2026-TEST0001", schoolID, 10, status, version, locked)
}
