package services

import (
	"fmt"
	"log"
	"time"

	"admission-workflow-api/config"
	"admission-workflow-api/models"

	"gorm.io/gorm"
)

// Dispatcher receives workflow events after their transaction commits.
// Implementations must never be invoked before commit.
type Dispatcher interface {
	ApplicationStatusChanged(app *models.Application, previous, next models.ApplicationStatus)
	CorrectionsRequested(app *models.Application, fields []string)
}

// NotificationService persists in-app notifications for the applicant and
// mirrors them to email when SMTP is configured. Delivery failures are
// logged, never propagated: the workflow change already committed.
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService builds the default dispatcher.
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

var statusNotificationTitles = map[models.ApplicationStatus]string{
	models.StatusSubmitted:          "Application submitted",
	models.StatusUnderReview:        "Application under review",
	models.StatusChangesRequested:   "Corrections requested",
	models.StatusDocumentsPending:   "Documents required",
	models.StatusTestScheduled:      "Entrance test scheduled",
	models.StatusTestCompleted:      "Entrance test completed",
	models.StatusInterviewScheduled: "Interview scheduled",
	models.StatusInterviewCompleted: "Interview completed",
	models.StatusDecisionMade:       "Admission decision made",
	models.StatusAccepted:           "Application accepted",
	models.StatusWaitlisted:         "Application waitlisted",
	models.StatusRejected:           "Application not successful",
	models.StatusEnrolled:           "Enrollment complete",
}

// ApplicationStatusChanged implements Dispatcher.
func (n *NotificationService) ApplicationStatusChanged(app *models.Application, previous, next models.ApplicationStatus) {
	title, ok := statusNotificationTitles[next]
	if !ok {
		title = "Application status updated"
	}
	message := fmt.Sprintf("Application %s moved from %s to %s.", app.ApplicationNumber, previous, next)

	n.store(app, title, message, notificationType(next))
	n.email(app, title, message)
}

// CorrectionsRequested implements Dispatcher.
func (n *NotificationService) CorrectionsRequested(app *models.Application, fields []string) {
	message := fmt.Sprintf("Application %s needs corrections on %d field(s).", app.ApplicationNumber, len(fields))
	n.store(app, "Corrections requested", message, "warning")
	n.email(app, "Corrections requested", message)
}

func notificationType(status models.ApplicationStatus) string {
	switch status {
	case models.StatusAccepted, models.StatusEnrolled:
		return "success"
	case models.StatusRejected:
		return "error"
	case models.StatusChangesRequested, models.StatusDocumentsPending:
		return "warning"
	}
	return "info"
}

func (n *NotificationService) store(app *models.Application, title, message, kind string) {
	appID := uint(app.ApplicationID)
	notification := models.Notification{
		UserID:               uint(app.ApplicantUserID),
		Title:                title,
		Message:              message,
		Type:                 kind,
		RelatedApplicationID: &appID,
		CreateAt:             time.Now(),
	}
	if err := n.db.Create(&notification).Error; err != nil {
		log.Printf("Warning: failed to store notification for application %d: %v", app.ApplicationID, err)
	}
}

func (n *NotificationService) email(app *models.Application, subject, message string) {
	if app.Email == "" {
		return
	}
	body := fmt.Sprintf("<p>%s</p><p>Application number: <strong>%s</strong></p>", message, app.ApplicationNumber)
	if err := config.SendMail([]string{app.Email}, subject, body); err != nil {
		log.Printf("Warning: failed to send notification email for application %d: %v", app.ApplicationID, err)
	}
}
