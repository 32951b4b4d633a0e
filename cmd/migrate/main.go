package main

import (
	"log"
	"os"

	"wastewatch-backend/internal/database"

	"github.com/joho/godotenv"
)

// Standalone migration runner for deploy pipelines that migrate before
// rolling the server.
func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := database.Connect(dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	if err := database.SeedUsers(db); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Migration completed successfully!")
}
