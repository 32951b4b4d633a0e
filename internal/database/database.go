package database

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func Connect(dbURL string) (*sqlx.DB, error) {
	log.Println("🔌 Connecting to Postgres...")

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Printf("❌ Database connection failed: %v", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		log.Printf("❌ Database ping failed: %v", err)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Database connection successful")
	return db, nil
}

func Migrate(db *sqlx.DB) error {
	migrations := []string{
		// Create users table. Gamification fields live on the user row and
		// are only ever written by that user's own submission path.
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL CHECK(role IN ('Citizen', 'Municipal', 'Admin')),
			points INT NOT NULL DEFAULT 0 CHECK(points >= 0),
			total_reports INT NOT NULL DEFAULT 0 CHECK(total_reports >= 0),
			badges JSONB NOT NULL DEFAULT '[]',
			level INT NOT NULL DEFAULT 1 CHECK(level >= 1),
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Create reports table. submitted_by survives user deletion as NULL
		// so report history is never cascaded away.
		`CREATE TABLE IF NOT EXISTS reports (
			id SERIAL PRIMARY KEY,
			image_url TEXT NOT NULL,
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			waste_type TEXT NOT NULL CHECK(waste_type IN ('Wet', 'Dry', 'E-Waste', 'Mixed')),
			status TEXT NOT NULL DEFAULT 'Pending' CHECK(status IN ('Pending', 'In Progress', 'Collected')),
			submitted_by TEXT REFERENCES users(id) ON DELETE SET NULL,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			collected_at BIGINT,
			CHECK ((status = 'Collected') = (collected_at IS NOT NULL))
		)`,

		// Create alerts table (immutable rows, read newest-first)
		`CREATE TABLE IF NOT EXISTS alerts (
			id SERIAL PRIMARY KEY,
			message TEXT NOT NULL,
			severity TEXT NOT NULL DEFAULT 'Low' CHECK(severity IN ('Low', 'Medium', 'High')),
			report_id INT REFERENCES reports(id) ON DELETE SET NULL,
			target_role TEXT NOT NULL DEFAULT 'All' CHECK(target_role IN ('Municipal', 'Admin', 'All')),
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Create FCM tokens table for municipal push notifications
		`CREATE TABLE IF NOT EXISTS fcm_tokens (
			id SERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			token TEXT NOT NULL UNIQUE,
			device_type TEXT NOT NULL CHECK(device_type IN ('ios', 'android')),
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_reports_submitted_by ON reports(submitted_by)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_status ON reports(status)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_target_role ON alerts(target_role, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_users_role_points ON users(role, points DESC)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}
