package controllers

import (
	"admission-workflow-api/config"
	"admission-workflow-api/services"
)

// Service constructors are cheap struct wraps over the shared gorm handle,
// so controllers build them per request instead of holding globals.

func stateMachine() *services.StateMachine {
	return services.NewStateMachine(config.DB, services.NewNotificationService(config.DB))
}

func reviewService() *services.ReviewService {
	return services.NewReviewService(config.DB, stateMachine(), services.NewNotificationService(config.DB))
}

func stepService() *services.StepService {
	return services.NewStepService(config.DB)
}

func lockGuard() *services.LockGuard {
	return services.NewLockGuard(config.DB)
}
