package main

import (
	"flag"
	"log"

	"admission-workflow-api/config"
	"admission-workflow-api/models"
	"admission-workflow-api/services"

	"github.com/joho/godotenv"
)

// Creates or updates the schema and optionally seeds the default workflow
// steps for one school:
//
//	go run ./cmd/migrate -seed-school 1
func main() {
	seedSchool := flag.Int("seed-school", 0, "school ID to seed with the default workflow steps")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config.InitDB()

	err := config.DB.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.School{},
		&models.Application{},
		&models.WorkflowStep{},
		&models.ApplicationWorkflowTracker{},
		&models.StatusHistoryEntry{},
		&models.ReviewSession{},
		&models.FieldReview{},
		&models.AttendanceDay{},
		&models.Notification{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatal("Migration failed:", err)
	}
	log.Println("Schema migrated")

	if *seedSchool > 0 {
		steps, err := services.NewStepService(config.DB).ResetToDefault(*seedSchool, 0, "migrate-cli")
		if err != nil {
			log.Fatalf("Failed to seed workflow steps for school %d: %v", *seedSchool, err)
		}
		log.Printf("Seeded %d default workflow steps for school %d", len(steps), *seedSchool)
	}
}
