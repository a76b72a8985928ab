package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"admission-workflow-api/config"
	"admission-workflow-api/models"
	"admission-workflow-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type attendanceRequest struct {
	AttendanceDate string `json:"attendance_date" binding:"required"`
	PresentCount   int    `json:"present_count" binding:"gte=0"`
	AbsentCount    int    `json:"absent_count" binding:"gte=0"`
	LeaveCount     int    `json:"leave_count" binding:"gte=0"`
	Notes          string `json:"notes"`
}

// SaveAttendanceDay upserts the roster for one date. A locked day rejects
// the write with the same semantics as a finalized application.
func SaveAttendanceDay(c *gin.Context) {
	var req attendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", req.AttendanceDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "attendance_date must be formatted YYYY-MM-DD"})
		return
	}

	schoolID := actorSchoolID(c)
	now := time.Now()

	var day models.AttendanceDay
	err = config.DB.Where("school_id = ? AND attendance_date = ?", schoolID, date).First(&day).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load attendance"})
		return
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		day = models.AttendanceDay{
			SchoolID:       schoolID,
			AttendanceDate: date,
			CreatedAt:      now,
		}
	} else if guardErr := services.EnsureUnlocked(&day); guardErr != nil {
		respondError(c, guardErr)
		return
	}

	day.PresentCount = req.PresentCount
	day.AbsentCount = req.AbsentCount
	day.LeaveCount = req.LeaveCount
	if req.Notes != "" {
		day.Notes = &req.Notes
	} else {
		day.Notes = nil
	}
	day.UpdatedAt = &now

	if err := config.DB.Save(&day).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to save attendance"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"attendance": day,
	})
}

// GetAttendanceDay fetches the roster for one date.
func GetAttendanceDay(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "date must be formatted YYYY-MM-DD"})
		return
	}

	var day models.AttendanceDay
	if err := config.DB.Where("school_id = ? AND attendance_date = ?", actorSchoolID(c), date).
		First(&day).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "No attendance recorded for this date"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"attendance": day,
	})
}

// LockAttendanceDay finalizes one day's roster; the lock is one-way.
func LockAttendanceDay(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid attendance ID"})
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	day, err := lockGuard().LockAttendanceDay(id, actorID(c), req.Reason, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Attendance day locked",
		"attendance": day,
	})
}
