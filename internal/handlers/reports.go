package handlers

import (
	"database/sql"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"wastewatch-backend/internal/middleware"
	"wastewatch-backend/internal/models"
	"wastewatch-backend/internal/services"
	"wastewatch-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
)

// maxImageBytes bounds a single report photo upload.
const maxImageBytes = 10 << 20 // 10 MB

// reportWithSubmitterQuery joins the submitter's public fields onto a report
// row. LEFT JOIN so reports outlive deleted users.
const reportWithSubmitterQuery = `
	SELECT r.*, u.name AS submitter_name, u.email AS submitter_email
	FROM reports r
	LEFT JOIN users u ON u.id = r.submitted_by`

type SubmitReportResponse struct {
	Success      bool                        `json:"success"`
	Report       models.ReportResponse       `json:"report"`
	Gamification *services.GamificationDelta `json:"gamification"`
}

// SubmitReport handles a citizen's geotagged photo submission. The report
// insert and the submitter's gamification update run in one transaction;
// alert dispatch happens only after that transaction commits.
func SubmitReport(db *sqlx.DB, classifier services.Classifier, store services.ImageStore, dispatcher *services.AlertDispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, utils.KindUnauthenticated, "Authentication required")
			return
		}

		if err := r.ParseMultipartForm(maxImageBytes); err != nil {
			utils.RespondError(w, http.StatusBadRequest, utils.KindInvalidInput, "Invalid multipart form")
			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, utils.KindInvalidInput, "No image uploaded")
			return
		}
		defer file.Close()

		lat, latErr := strconv.ParseFloat(r.FormValue("lat"), 64)
		lng, lngErr := strconv.ParseFloat(r.FormValue("lng"), 64)
		if latErr != nil || lngErr != nil {
			utils.RespondError(w, http.StatusBadRequest, utils.KindInvalidInput, "lat and lng are required and must be numbers")
			return
		}
		if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			utils.RespondError(w, http.StatusBadRequest, utils.KindInvalidInput, "lat/lng out of range")
			return
		}

		imageData, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
		if err != nil || len(imageData) == 0 {
			utils.RespondError(w, http.StatusBadRequest, utils.KindInvalidInput, "Failed to read image")
			return
		}

		imageURL, err := store.Save(imageData, filepath.Ext(header.Filename))
		if err != nil {
			log.Printf("❌ Error storing image: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, utils.KindInternal, "Failed to store image")
			return
		}

		// Classification is synchronous and never fails; the ledger flags
		// out-of-catalog values for audit.
		wasteType := classifier.Classify(imageData)
		log.Printf("🔎 Classified report image as %q for user %s", wasteType, userClaims.UserID)

		now := time.Now().Unix()

		// Report insert + gamification update must commit together.
		tx, err := db.Beginx()
		if err != nil {
			log.Printf("❌ Error starting transaction: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, utils.KindInternal, "Failed to submit report")
			return
		}
		defer tx.Rollback()

		var reportID int
		err = tx.QueryRow(`INSERT INTO reports (image_url, latitude, longitude, waste_type, status, submitted_by, created_at, updated_at)
		                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		                   RETURNING id`,
			imageURL, lat, lng, wasteType, models.StatusPending, userClaims.UserID, now, now).Scan(&reportID)
		if err != nil {
			log.Printf("❌ Error creating report: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, utils.KindInternal, "Failed to submit report")
			return
		}

		delta, err := services.ApplyReportSubmission(tx, userClaims.UserID, wasteType)
		if err == services.ErrUserNotFound {
			utils.RespondError(w, http.StatusNotFound, utils.KindNotFound, "User not found")
			return
		}
		if err != nil {
			log.Printf("❌ Error updating gamification ledger: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, utils.KindInternal, "Failed to submit report")
			return
		}

		if err := tx.Commit(); err != nil {
			log.Printf("❌ Error committing transaction: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, utils.KindInternal, "Failed to submit report")
			return
		}

		var report models.ReportWithSubmitter
		if err := db.Get(&report, reportWithSubmitterQuery+` WHERE r.id = $1`, reportID); err != nil {
			log.Printf("❌ Error fetching created report: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, utils.KindInternal, "Failed to fetch report")
			return
		}

		// Best-effort from here on: the submission is already committed.
		dispatcher.NotifyNewReport(report)
		dispatcher.NotifyGamification(userClaims.UserID, delta)

		log.Printf("✅ Report %d submitted by %s: %s (+%d pts, %d new badges)",
			reportID, userClaims.Email, wasteType, delta.PointsEarned, len(delta.NewBadges))

		utils.RespondJSON(w, http.StatusCreated, SubmitReportResponse{
			Success:      true,
			Report:       report.ToReportResponse(),
			Gamification: delta,
		})
	}
}

// GetMyReports returns the authenticated citizen's own reports, newest first.
func GetMyReports(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, utils.KindUnauthenticated, "Authentication required")
			return
		}

		reports := []models.Report{}
		err := db.Select(&reports, `SELECT * FROM reports WHERE submitted_by = $1 ORDER BY created_at DESC, id DESC`, userClaims.UserID)
		if err != nil {
			log.Printf("❌ Error fetching reports for %s: %v", userClaims.UserID, err)
			utils.RespondError(w, http.StatusInternalServerError, utils.KindInternal, "Failed to fetch reports")
			return
		}

		responses := make([]models.ReportResponse, len(reports))
		for i := range reports {
			responses[i] = reports[i].ToReportResponse()
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"reports": responses})
	}
}

// GetAllReports returns every report with submitter details, newest first.
// Shared by the municipal dashboard and the admin overview.
func GetAllReports(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listReports(w, db, reportWithSubmitterQuery+` ORDER BY r.created_at DESC, r.id DESC`)
	}
}

// GetActiveReports returns reports still awaiting collection (Pending or In Progress).
func GetActiveReports(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listReports(w, db, reportWithSubmitterQuery+` WHERE r.status IN ($1, $2) ORDER BY r.created_at DESC, r.id DESC`,
			models.StatusPending, models.StatusInProgress)
	}
}

// GetReportHistory returns collected reports, newest first.
func GetReportHistory(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listReports(w, db, reportWithSubmitterQuery+` WHERE r.status = $1 ORDER BY r.created_at DESC, r.id DESC`,
			models.StatusCollected)
	}
}

func listReports(w http.ResponseWriter, db *sqlx.DB, query string, args ...interface{}) {
	reports := []models.ReportWithSubmitter{}
	if err := db.Select(&reports, query, args...); err != nil {
		log.Printf("❌ Error fetching reports: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, utils.KindInternal, "Failed to fetch reports")
		return
	}

	responses := make([]models.ReportResponse, len(reports))
	for i := range reports {
		responses[i] = reports[i].ToReportResponse()
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"reports": responses})
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateReportStatus transitions a report forward through its lifecycle.
// The current status is re-read under a row lock inside the transaction, so
// a transition racing a concurrent one fails instead of overwriting it.
func UpdateReportStatus(db *sqlx.DB, dispatcher *services.AlertDispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reportID, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, utils.KindInvalidInput, "Invalid report id")
			return
		}

		var req UpdateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, utils.KindInvalidInput, "Invalid request body")
			return
		}

		target := models.ReportStatus(req.Status)
		if !models.ValidStatus(target) {
			utils.RespondError(w, http.StatusBadRequest, utils.KindInvalidTransition, "Unknown status value")
			return
		}

		tx, err := db.Beginx()
		if err != nil {
			log.Printf("❌ Error starting transaction: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, utils.KindInternal, "Failed to update status")
			return
		}
		defer tx.Rollback()

		var current models.Report
		err = tx.Get(&current, `SELECT * FROM reports WHERE id = $1 FOR UPDATE`, reportID)
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, utils.KindNotFound, "Report not found")
			return
		}
		if err != nil {
			log.Printf("❌ Error fetching report %d: %v", reportID, err)
			utils.RespondError(w, http.StatusInternalServerError, utils.KindInternal, "Failed to update status")
			return
		}

		if !current.Status.CanTransitionTo(target) {
			log.Printf("❌ Illegal transition for report %d: %s → %s", reportID, current.Status, target)
			utils.RespondError(w, http.StatusConflict, utils.KindInvalidTransition,
				"Cannot transition from '"+string(current.Status)+"' to '"+string(target)+"'")
			return
		}

		now := time.Now().Unix()
		if target == models.StatusCollected {
			_, err = tx.Exec(`UPDATE reports SET status = $1, updated_at = $2, collected_at = $2 WHERE id = $3`,
				target, now, reportID)
		} else {
			_, err = tx.Exec(`UPDATE reports SET status = $1, updated_at = $2 WHERE id = $3`,
				target, now, reportID)
		}
		if err != nil {
			log.Printf("❌ Error updating report %d: %v", reportID, err)
			utils.RespondError(w, http.StatusInternalServerError, utils.KindInternal, "Failed to update status")
			return
		}

		if err := tx.Commit(); err != nil {
			log.Printf("❌ Error committing transaction: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, utils.KindInternal, "Failed to update status")
			return
		}

		var report models.ReportWithSubmitter
		if err := db.Get(&report, reportWithSubmitterQuery+` WHERE r.id = $1`, reportID); err != nil {
			log.Printf("❌ Error fetching updated report: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, utils.KindInternal, "Failed to fetch report")
			return
		}

		dispatcher.NotifyStatusChange(report)

		log.Printf("✅ Report %d: %s → %s", reportID, current.Status, target)

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"report":  report.ToReportResponse(),
		})
	}
}
