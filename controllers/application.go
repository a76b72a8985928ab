package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"admission-workflow-api/config"
	"admission-workflow-api/models"
	"admission-workflow-api/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// newApplicationNumber builds the immutable human-readable identifier, e.g.
// ADM-2026-3F2A91C4.
func newApplicationNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("ADM-%d-%s", now.Year(), suffix)
}

// GetApplications returns list of applications
func GetApplications(c *gin.Context) {
	userID, _ := c.Get("userID")
	roleID, _ := c.Get("roleID")

	var applications []models.Application
	query := config.DB.Preload("School").Preload("Applicant").
		Where("applications.deleted_at IS NULL")

	// Applicants only see their own applications; staff and admins see the
	// whole school.
	if roleID.(int) == models.RoleApplicant {
		query = query.Where("applicant_user_id = ?", userID)
	} else {
		query = query.Where("school_id = ?", actorSchoolID(c))
	}

	// Apply filters from query params
	if status := c.Query("status"); status != "" {
		parsed, err := models.ParseApplicationStatus(status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid status filter"})
			return
		}
		query = query.Where("status = ?", parsed)
	}

	if err := query.Order("created_at DESC").Find(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch applications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"applications": applications,
		"total":        len(applications),
	})
}

// GetApplication returns single application by ID
func GetApplication(c *gin.Context) {
	id := c.Param("id")
	userID, _ := c.Get("userID")
	roleID, _ := c.Get("roleID")

	var application models.Application
	query := config.DB.Preload("School").Preload("Applicant").
		Where("application_id = ? AND deleted_at IS NULL", id)

	if roleID.(int) == models.RoleApplicant {
		query = query.Where("applicant_user_id = ?", userID)
	}

	if err := query.First(&application).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Application not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"application":     application,
		"allowed_targets": services.AllowedTargets(application.Status),
	})
}

type applicationFieldsRequest struct {
	StudentFirstName string `json:"student_first_name" binding:"required"`
	StudentLastName  string `json:"student_last_name" binding:"required"`
	DateOfBirth      string `json:"date_of_birth"`
	Gender           string `json:"gender"`
	GradeApplying    string `json:"grade_applying" binding:"required"`
	PreviousSchool   string `json:"previous_school"`
	GuardianName     string `json:"guardian_name" binding:"required"`
	GuardianPhone    string `json:"guardian_phone"`
	Email            string `json:"email" binding:"required,email"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
}

func (r *applicationFieldsRequest) apply(app *models.Application) error {
	app.StudentFirstName = r.StudentFirstName
	app.StudentLastName = r.StudentLastName
	app.Gender = r.Gender
	app.GradeApplying = r.GradeApplying
	app.PreviousSchool = r.PreviousSchool
	app.GuardianName = r.GuardianName
	app.GuardianPhone = r.GuardianPhone
	app.Email = r.Email
	app.Phone = r.Phone
	app.Address = r.Address

	if r.DateOfBirth == "" {
		app.DateOfBirth = nil
		return nil
	}
	parsed, err := time.Parse("2006-01-02", r.DateOfBirth)
	if err != nil {
		return models.NewValidationError("date_of_birth", "must be formatted YYYY-MM-DD")
	}
	app.DateOfBirth = &parsed
	return nil
}

// CreateApplication registers a new draft application for the caller.
func CreateApplication(c *gin.Context) {
	var req applicationFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	now := time.Now()
	application := models.Application{
		ApplicationNumber: newApplicationNumber(now),
		SchoolID:          actorSchoolID(c),
		ApplicantUserID:   actorID(c),
		Status:            models.StatusDraft,
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := req.apply(&application); err != nil {
		respondError(c, err)
		return
	}

	if err := config.DB.Create(&application).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create application"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"application": application,
	})
}

// UpdateApplication edits the caller's own draft. Anything past draft is
// corrected through the review resubmission cycle, never direct edits.
func UpdateApplication(c *gin.Context) {
	id := c.Param("id")
	userID, _ := c.Get("userID")

	var application models.Application
	if err := config.DB.
		Where("application_id = ? AND applicant_user_id = ? AND deleted_at IS NULL", id, userID).
		First(&application).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Application not found"})
		return
	}

	if err := services.EnsureUnlocked(&application); err != nil {
		respondError(c, err)
		return
	}
	if application.Status != models.StatusDraft {
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": "Only draft applications can be edited directly"})
		return
	}

	var req applicationFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if err := req.apply(&application); err != nil {
		respondError(c, err)
		return
	}

	// Draft edits take the same version guard as every other application
	// write, so an edit racing the applicant's own submit loses cleanly
	// instead of writing draft state back over the submitted row.
	now := time.Now()
	result := config.DB.Model(&models.Application{}).
		Where("application_id = ? AND version = ?", application.ApplicationID, application.Version).
		Updates(map[string]interface{}{
			"student_first_name": application.StudentFirstName,
			"student_last_name":  application.StudentLastName,
			"date_of_birth":      application.DateOfBirth,
			"gender":             application.Gender,
			"grade_applying":     application.GradeApplying,
			"previous_school":    application.PreviousSchool,
			"guardian_name":      application.GuardianName,
			"guardian_phone":     application.GuardianPhone,
			"email":              application.Email,
			"phone":              application.Phone,
			"address":            application.Address,
			"updated_at":         now,
			"version":            gorm.Expr("version + ?", 1),
		})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update application"})
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, &models.ConcurrentModificationError{
			ApplicationID:   application.ApplicationID,
			ExpectedVersion: application.Version,
		})
		return
	}
	application.Version++
	application.UpdatedAt = now

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"application": application,
	})
}

// SubmitApplication moves the caller's draft into the pipeline.
func SubmitApplication(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid application ID"})
		return
	}

	userID, _ := c.Get("userID")
	var application models.Application
	if err := config.DB.
		Where("application_id = ? AND applicant_user_id = ? AND deleted_at IS NULL", id, userID).
		First(&application).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Application not found"})
		return
	}

	updated, err := stateMachine().Transition(id, models.StatusSubmitted, "submitted by applicant", actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"application": updated,
	})
}

type transitionRequest struct {
	TargetStatus string `json:"target_status" binding:"required"`
	Reason       string `json:"reason"`
}

// RequestTransition moves an application to an explicit target status.
func RequestTransition(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid application ID"})
		return
	}

	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	target, err := models.ParseApplicationStatus(strings.TrimSpace(req.TargetStatus))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	application, err := stateMachine().Transition(id, target, req.Reason, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"application": application,
	})
}

// GetStatusHistory lists the append-only status ledger, oldest first.
func GetStatusHistory(c *gin.Context) {
	id := c.Param("id")

	var history []models.StatusHistoryEntry
	if err := config.DB.Preload("Actor").
		Where("application_id = ?", id).
		Order("change_date ASC, history_id ASC").
		Find(&history).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch status history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"history": history,
		"total":   len(history),
	})
}

// GetWorkflowProgress reports the application's position against its
// school's configured steps.
func GetWorkflowProgress(c *gin.Context) {
	id := c.Param("id")

	var application models.Application
	if err := config.DB.Where("application_id = ? AND deleted_at IS NULL", id).
		First(&application).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Application not found"})
		return
	}

	progress, err := stepService().Progress(&application)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"status":   application.Status,
		"progress": progress,
	})
}

// LockApplication finalizes an application record.
func LockApplication(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid application ID"})
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	application, err := lockGuard().LockApplication(id, actorID(c), req.Reason, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Application locked",
		"application": application,
	})
}
