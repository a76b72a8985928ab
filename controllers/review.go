package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"admission-workflow-api/models"
	"admission-workflow-api/utils"

	"github.com/gin-gonic/gin"
)

// OpenReview returns the application's open review session, seeding one
// from the current field snapshot when none exists.
func OpenReview(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid application ID"})
		return
	}

	session, err := reviewService().OpenReview(id, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": session,
	})
}

type markFieldRequest struct {
	FieldName       string `json:"field_name" binding:"required"`
	NeedsCorrection bool   `json:"needs_correction"`
	Comment         string `json:"comment"`
}

// MarkReviewField flags or unflags one field of an open session.
func MarkReviewField(c *gin.Context) {
	sessionID, err := strconv.Atoi(c.Param("session_id"))
	if err != nil || sessionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid session ID"})
		return
	}

	var req markFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	entry, err := reviewService().MarkField(sessionID, strings.TrimSpace(req.FieldName), req.NeedsCorrection, utils.SanitizeInput(req.Comment))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"field":   entry,
	})
}

type submitReviewRequest struct {
	Decision       string `json:"decision" binding:"required"`
	OverallRemarks string `json:"overall_remarks"`
}

// SubmitReview finalizes a review pass with approve or request_changes.
func SubmitReview(c *gin.Context) {
	sessionID, err := strconv.Atoi(c.Param("session_id"))
	if err != nil || sessionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid session ID"})
		return
	}

	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	decision := strings.ToLower(strings.TrimSpace(req.Decision))
	application, corrections, err := reviewService().SubmitReview(sessionID, utils.SanitizeInput(req.OverallRemarks), decision, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Application approved for the next stage"
	if decision == models.ReviewDecisionRequestChanges {
		message = "Corrections requested from applicant"
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"message":          message,
		"application":      application,
		"open_corrections": corrections,
	})
}

// GetOpenCorrections lists the fields currently unlocked for the
// applicant. This is the source of truth the form-editing UI consumes.
func GetOpenCorrections(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid application ID"})
		return
	}

	fields, err := reviewService().OpenCorrections(id)
	if err != nil {
		respondError(c, err)
		return
	}

	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.FieldName)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"fields":      fields,
		"field_names": names,
	})
}

// ResubmitCorrections applies an applicant's corrected values to the
// flagged fields. Status stays changes_requested until re-review.
func ResubmitCorrections(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid application ID"})
		return
	}

	var req struct {
		Values map[string]string `json:"values" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	session, err := reviewService().Resubmit(id, req.Values)
	if err != nil {
		respondError(c, err)
		return
	}

	remaining := 0
	for _, f := range session.Fields {
		if f.NeedsCorrection {
			remaining++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"session":            session,
		"remaining_flags":    remaining,
		"ready_for_rereview": remaining == 0,
	})
}
