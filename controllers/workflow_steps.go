package controllers

import (
	"net/http"
	"strconv"

	"admission-workflow-api/services"

	"github.com/gin-gonic/gin"
)

// GetWorkflowSteps lists the caller's school's steps in pipeline order.
// Inactive steps are included only when include_inactive=true.
func GetWorkflowSteps(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"

	steps, err := stepService().ListSteps(actorSchoolID(c), includeInactive)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"steps":   steps,
		"total":   len(steps),
	})
}

type createStepRequest struct {
	StepName        string `json:"step_name" binding:"required"`
	StepDescription string `json:"step_description"`
	StepOrder       int    `json:"step_order" binding:"required,gte=1"`
	IsRequired      *bool  `json:"is_required"`
	IsActive        *bool  `json:"is_active"`
}

// CreateWorkflowStep adds a step to the caller's school pipeline.
func CreateWorkflowStep(c *gin.Context) {
	var req createStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	input := services.CreateStepInput{
		SchoolID:        actorSchoolID(c),
		StepName:        req.StepName,
		StepDescription: req.StepDescription,
		StepOrder:       req.StepOrder,
		IsRequired:      true,
		IsActive:        true,
	}
	if req.IsRequired != nil {
		input.IsRequired = *req.IsRequired
	}
	if req.IsActive != nil {
		input.IsActive = *req.IsActive
	}

	step, err := stepService().CreateStep(input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"step":    step,
	})
}

type updateStepRequest struct {
	StepName        *string `json:"step_name"`
	StepDescription *string `json:"step_description"`
	StepOrder       *int    `json:"step_order"`
	IsRequired      *bool   `json:"is_required"`
	IsActive        *bool   `json:"is_active"`
}

// UpdateWorkflowStep applies a partial edit to one step.
func UpdateWorkflowStep(c *gin.Context) {
	stepID, err := strconv.Atoi(c.Param("id"))
	if err != nil || stepID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid step ID"})
		return
	}

	var req updateStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	step, err := stepService().UpdateStep(stepID, services.UpdateStepInput{
		StepName:        req.StepName,
		StepDescription: req.StepDescription,
		StepOrder:       req.StepOrder,
		IsRequired:      req.IsRequired,
		IsActive:        req.IsActive,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"step":    step,
	})
}

// DeleteWorkflowStep removes a step. The response reports how many tracker
// rows the deletion orphaned; clients must show this in their confirmation
// dialog.
func DeleteWorkflowStep(c *gin.Context) {
	stepID, err := strconv.Atoi(c.Param("id"))
	if err != nil || stepID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid step ID"})
		return
	}

	orphaned, err := stepService().DeleteStep(stepID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"message":           "Step deleted",
		"orphaned_trackers": orphaned,
	})
}

// ToggleWorkflowStep flips a step's active flag.
func ToggleWorkflowStep(c *gin.Context) {
	stepID, err := strconv.Atoi(c.Param("id"))
	if err != nil || stepID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid step ID"})
		return
	}

	step, err := stepService().ToggleActive(stepID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"step":    step,
	})
}

// ResetWorkflowSteps destructively replaces the school's step set with the
// canonical default sequence.
func ResetWorkflowSteps(c *gin.Context) {
	steps, err := stepService().ResetToDefault(actorSchoolID(c), actorID(c), c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Workflow steps reset to default sequence",
		"steps":   steps,
	})
}
