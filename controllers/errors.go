package controllers

import (
	"errors"
	"net/http"

	"admission-workflow-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// respondError maps domain errors onto HTTP status codes. Concurrent
// modification is flagged retryable so clients reload and resubmit instead
// of treating it as a hard failure.
func respondError(c *gin.Context, err error) {
	var validationErr *models.ValidationError
	var transitionErr *models.InvalidTransitionError
	var conflictErr *models.ConcurrentModificationError
	var lockedErr *models.RecordLockedError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   validationErr.Error(),
			"field":   validationErr.Field,
		})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   transitionErr.Error(),
			"from":    transitionErr.From,
			"to":      transitionErr.To,
		})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{
			"success":   false,
			"error":     conflictErr.Error(),
			"retryable": true,
		})
	case errors.As(err, &lockedErr):
		c.JSON(http.StatusLocked, gin.H{
			"success": false,
			"error":   lockedErr.Error(),
		})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Record not found",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Internal server error",
		})
	}
}

// actorID pulls the authenticated user ID set by the auth middleware.
func actorID(c *gin.Context) int {
	value, exists := c.Get("userID")
	if !exists {
		return 0
	}
	id, _ := value.(int)
	return id
}

// actorSchoolID pulls the authenticated user's school ID.
func actorSchoolID(c *gin.Context) int {
	value, exists := c.Get("schoolID")
	if !exists {
		return 0
	}
	id, _ := value.(int)
	return id
}
