// database/migrate.go - Schema migrations
package database

import (
	"log"

	"hackhub/models"
)

// RunMigrations applies all schema migrations for the platform.
func RunMigrations() {
	log.Println("Running migrations...")

	if err := db.AutoMigrate(&models.User{}); err != nil {
		log.Fatalf("Failed to migrate users: %v", err)
	}

	if err := RunHackathonMigrations(db); err != nil {
		log.Fatalf("Failed to run hackathon migrations: %v", err)
	}

	log.Println("✅ Migrations completed successfully")
}
