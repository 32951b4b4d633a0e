package services

import (
	"database/sql"
	"errors"
	"log"
	"time"

	"wastewatch-backend/internal/models"
	"wastewatch-backend/internal/scoring"

	"github.com/jmoiron/sqlx"
)

// ErrUserNotFound is returned when the submitting user's row is missing; the
// caller must roll back the surrounding transaction so no orphaned report is
// committed.
var ErrUserNotFound = errors.New("user not found")

// GamificationDelta is what a single submission changed for the user. It is
// returned to the submitting citizen alongside the created report view.
type GamificationDelta struct {
	PointsEarned int             `json:"points_earned"`
	TotalPoints  int             `json:"total_points"`
	Level        int             `json:"level"`
	NewBadges    []scoring.Badge `json:"new_badges"`
}

// ApplyReportSubmission updates the submitter's gamification ledger inside
// the same transaction that inserts the report: both commit or both roll
// back, and concurrent readers never see one without the other. The user row
// is locked FOR UPDATE so two in-flight submissions by the same user cannot
// lose an increment.
func ApplyReportSubmission(tx *sqlx.Tx, userID, category string) (*GamificationDelta, error) {
	var user models.User
	err := tx.Get(&user, `SELECT * FROM users WHERE id = $1 FOR UPDATE`, userID)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	pointsEarned, known := scoring.PointsFor(category)
	if !known {
		// Permissive by policy: unknown categories earn the base points,
		// but the submission is flagged for audit.
		log.Printf("⚠️ AUDIT: unknown waste category %q from classifier for user %s, defaulting to %d points", category, userID, pointsEarned)
	}

	totalPoints := user.Points + pointsEarned
	totalReports := user.TotalReports + 1
	level := scoring.LevelFor(totalPoints)
	newBadges := scoring.NewlyEarnedBadges(user.Badges, totalReports, totalPoints)

	badges := user.Badges
	for _, b := range newBadges {
		badges = append(badges, b.ID)
	}

	_, err = tx.Exec(`UPDATE users
	                  SET points = $1, total_reports = $2, level = $3, badges = $4, updated_at = $5
	                  WHERE id = $6`,
		totalPoints, totalReports, level, badges, time.Now().Unix(), userID)
	if err != nil {
		return nil, err
	}

	return &GamificationDelta{
		PointsEarned: pointsEarned,
		TotalPoints:  totalPoints,
		Level:        level,
		NewBadges:    newBadges,
	}, nil
}
