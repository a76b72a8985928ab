package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"admission-workflow-api/models"
)

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	return c, recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func TestRespondErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", models.NewValidationError("step_order", "must be 1 or greater"), http.StatusBadRequest},
		{"invalid transition", &models.InvalidTransitionError{From: models.StatusDraft, To: models.StatusAccepted}, http.StatusConflict},
		{"version conflict", &models.ConcurrentModificationError{ApplicationID: 7, ExpectedVersion: 3}, http.StatusConflict},
		{"locked record", &models.RecordLockedError{Entity: "application", ID: 7}, http.StatusLocked},
		{"not found", gorm.ErrRecordNotFound, http.StatusNotFound},
		{"unknown", fmt.Errorf("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, recorder := newTestContext(t)
			respondError(c, tt.err)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			body := decodeBody(t, recorder)
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestRespondErrorVersionConflictIsRetryable(t *testing.T) {
	c, recorder := newTestContext(t)
	respondError(c, &models.ConcurrentModificationError{ApplicationID: 7, ExpectedVersion: 3})

	body := decodeBody(t, recorder)
	assert.Equal(t, true, body["retryable"])
}

func TestRespondErrorValidationNamesField(t *testing.T) {
	c, recorder := newTestContext(t)
	respondError(c, models.NewValidationError("decision", "must be approve or request_changes"))

	body := decodeBody(t, recorder)
	assert.Equal(t, "decision", body["field"])
}

func TestRespondErrorInvalidTransitionReportsEdge(t *testing.T) {
	c, recorder := newTestContext(t)
	respondError(c, &models.InvalidTransitionError{From: models.StatusDraft, To: models.StatusAccepted})

	body := decodeBody(t, recorder)
	assert.Equal(t, "draft", body["from"])
	assert.Equal(t, "accepted", body["to"])
}

func TestActorIDDefaultsToZero(t *testing.T) {
	c, _ := newTestContext(t)
	assert.Equal(t, 0, actorID(c))
	assert.Equal(t, 0, actorSchoolID(c))

	c.Set("userID", 42)
	c.Set("schoolID", 3)
	assert.Equal(t, 42, actorID(c))
	assert.Equal(t, 3, actorSchoolID(c))
}
