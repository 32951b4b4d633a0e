package handlers

import (
	"log"
	"net/http"

	"wastewatch-backend/internal/models"
	"wastewatch-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
)

// GetUsers returns all registered users, newest first.
func GetUsers(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users := []models.User{}
		err := db.Select(&users, `SELECT id, email, name, role, created_at FROM users ORDER BY created_at DESC`)
		if err != nil {
			log.Printf("❌ Error fetching users: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, utils.KindInternal, "Failed to fetch users")
			return
		}

		responses := make([]models.UserResponse, len(users))
		for i := range users {
			responses[i] = users[i].ToUserResponse()
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"users": responses})
	}
}

// DeleteUser removes a user account. The user's reports and alerts are kept
// with their submitter reference nulled, so collection history stays intact.
func DeleteUser(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "id")
		if userID == "" {
			utils.RespondError(w, http.StatusBadRequest, utils.KindInvalidInput, "User id is required")
			return
		}

		result, err := db.Exec(`DELETE FROM users WHERE id = $1`, userID)
		if err != nil {
			log.Printf("❌ Error deleting user %s: %v", userID, err)
			utils.RespondError(w, http.StatusInternalServerError, utils.KindInternal, "Failed to delete user")
			return
		}

		rows, _ := result.RowsAffected()
		if rows == 0 {
			utils.RespondError(w, http.StatusNotFound, utils.KindNotFound, "User not found")
			return
		}

		log.Printf("🗑️  User deleted: %s", userID)

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "User deleted",
		})
	}
}

type AnalyticsResponse struct {
	TotalReports          int     `json:"total_reports"`
	AverageCollectionTime float64 `json:"average_collection_time"` // hours, 0 when nothing collected yet
}

// averageCollectionHours averages submission-to-collection spans, given in
// seconds. Zero collected reports average to 0, never a division error.
func averageCollectionHours(spans []int64) float64 {
	if len(spans) == 0 {
		return 0
	}
	var total int64
	for _, s := range spans {
		total += s
	}
	return float64(total) / float64(len(spans)) / 3600.0
}

// GetAnalytics returns the admin summary: total report count and the average
// hours from submission to collection over collected reports.
func GetAnalytics(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var resp AnalyticsResponse

		if err := db.Get(&resp.TotalReports, `SELECT COUNT(*) FROM reports`); err != nil {
			log.Printf("❌ Error counting reports: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, utils.KindInternal, "Failed to fetch analytics")
			return
		}

		spans := []int64{}
		err := db.Select(&spans, `SELECT collected_at - created_at FROM reports WHERE status = $1`,
			models.StatusCollected)
		if err != nil {
			log.Printf("❌ Error computing average collection time: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, utils.KindInternal, "Failed to fetch analytics")
			return
		}
		resp.AverageCollectionTime = averageCollectionHours(spans)

		utils.RespondJSON(w, http.StatusOK, resp)
	}
}
