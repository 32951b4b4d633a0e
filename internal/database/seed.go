package database

import (
	"log"
	"os"
	"time"

	"wastewatch-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// SeedUsers creates a default Admin and a Municipal worker account on first
// boot so the dashboard is reachable before any registration happens.
// Citizens always self-register.
func SeedUsers(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM users"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Users already seeded, skipping...")
		return nil
	}

	password := os.Getenv("SEED_USER_PASSWORD")
	if password == "" {
		password = "changeme123"
		log.Println("⚠️  SEED_USER_PASSWORD not set, seeding with default password")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	seeds := []struct {
		email string
		name  string
		role  string
	}{
		{"admin@wastewatch.local", "City Admin", models.RoleAdmin},
		{"municipal@wastewatch.local", "Collection Desk", models.RoleMunicipal},
	}

	now := time.Now().Unix()
	for _, s := range seeds {
		_, err := db.Exec(`INSERT INTO users (id, email, password, name, role, created_at, updated_at)
		                   VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New().String(), s.email, string(hashed), s.name, s.role, now, now)
		if err != nil {
			return err
		}
		log.Printf("🌱 Seeded %s user: %s", s.role, s.email)
	}

	return nil
}
