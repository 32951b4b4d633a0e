package handlers

import (
	"log"
	"net/http"

	"wastewatch-backend/internal/middleware"
	"wastewatch-backend/internal/models"
	"wastewatch-backend/internal/scoring"
	"wastewatch-backend/pkg/utils"

	"github.com/jmoiron/sqlx"
)

// leaderboardSize caps the leaderboard to the top citizens by points.
const leaderboardSize = 10

type GamificationStats struct {
	Name                string          `json:"name"`
	Points              int             `json:"points"`
	TotalReports        int             `json:"total_reports"`
	Level               int             `json:"level"`
	Badges              []scoring.Badge `json:"badges"`
	NextLevelPoints     int             `json:"next_level_points"`
	ProgressToNextLevel float64         `json:"progress_to_next_level"`
}

// GetGamificationStats returns the authenticated citizen's own ledger view,
// with badge ids expanded to their catalog entries and progress toward the
// next level.
func GetGamificationStats(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, utils.KindUnauthenticated, "Authentication required")
			return
		}

		var user models.User
		if err := db.Get(&user, `SELECT * FROM users WHERE id = $1`, userClaims.UserID); err != nil {
			utils.RespondError(w, http.StatusNotFound, utils.KindNotFound, "User not found")
			return
		}

		badges := make([]scoring.Badge, 0, len(user.Badges))
		for _, id := range user.Badges {
			if b, ok := scoring.BadgeByID(id); ok {
				badges = append(badges, b)
			}
		}

		nextLevelPoints := user.Level * scoring.PointsPerLevel
		currentLevelPoints := (user.Level - 1) * scoring.PointsPerLevel
		progress := float64(user.Points-currentLevelPoints) / float64(scoring.PointsPerLevel) * 100
		if progress > 100 {
			progress = 100
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"stats": GamificationStats{
				Name:                user.Name,
				Points:              user.Points,
				TotalReports:        user.TotalReports,
				Level:               user.Level,
				Badges:              badges,
				NextLevelPoints:     nextLevelPoints,
				ProgressToNextLevel: progress,
			},
		})
	}
}

type LeaderboardEntry struct {
	Rank         int    `json:"rank"`
	Name         string `json:"name"`
	Points       int    `json:"points"`
	TotalReports int    `json:"total_reports"`
	Level        int    `json:"level"`
	BadgeCount   int    `json:"badge_count"`
}

// GetLeaderboard returns the top citizens by points. Open to any
// authenticated role; only Citizen accounts are ranked.
func GetLeaderboard(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users := []models.User{}
		err := db.Select(&users, `SELECT id, name, points, total_reports, level, badges
		                          FROM users WHERE role = $1
		                          ORDER BY points DESC, total_reports DESC, created_at ASC
		                          LIMIT $2`,
			models.RoleCitizen, leaderboardSize)
		if err != nil {
			log.Printf("❌ Error fetching leaderboard: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, utils.KindInternal, "Failed to fetch leaderboard")
			return
		}

		leaderboard := make([]LeaderboardEntry, len(users))
		for i, u := range users {
			leaderboard[i] = LeaderboardEntry{
				Rank:         i + 1,
				Name:         u.Name,
				Points:       u.Points,
				TotalReports: u.TotalReports,
				Level:        u.Level,
				BadgeCount:   len(u.Badges),
			}
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": leaderboard})
	}
}
