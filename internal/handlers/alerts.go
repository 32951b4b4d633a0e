package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"wastewatch-backend/internal/middleware"
	"wastewatch-backend/internal/models"
	"wastewatch-backend/internal/services"
	"wastewatch-backend/pkg/utils"

	"github.com/jmoiron/sqlx"
)

// GetAlerts returns the recent alerts visible to the caller's role.
func GetAlerts(dispatcher *services.AlertDispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, utils.KindUnauthenticated, "Authentication required")
			return
		}

		alerts, err := dispatcher.ListAlerts(userClaims.Role)
		if err != nil {
			log.Printf("❌ Error fetching alerts for role %s: %v", userClaims.Role, err)
			utils.RespondError(w, http.StatusInternalServerError, utils.KindInternal, "Failed to fetch alerts")
			return
		}

		responses := make([]models.AlertResponse, len(alerts))
		for i := range alerts {
			responses[i] = alerts[i].ToAlertResponse()
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"alerts": responses})
	}
}

// RegisterFCMToken stores a municipal worker's device token so new-report
// alerts can be pushed to the field.
func RegisterFCMToken(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, utils.KindUnauthenticated, "Authentication required")
			return
		}

		var req struct {
			Token      string `json:"token"`
			DeviceType string `json:"device_type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, utils.KindInvalidInput, "Invalid request body")
			return
		}

		if req.Token == "" {
			utils.RespondError(w, http.StatusBadRequest, utils.KindInvalidInput, "Token is required")
			return
		}
		if req.DeviceType != "ios" && req.DeviceType != "android" {
			utils.RespondError(w, http.StatusBadRequest, utils.KindInvalidInput, "Invalid device_type (must be 'ios' or 'android')")
			return
		}

		now := time.Now().Unix()
		query := `INSERT INTO fcm_tokens (user_id, token, device_type, created_at, updated_at)
				  VALUES ($1, $2, $3, $4, $5)
				  ON CONFLICT(token) DO UPDATE SET
					  user_id = excluded.user_id,
					  device_type = excluded.device_type,
					  updated_at = excluded.updated_at`

		if _, err := db.Exec(query, userClaims.UserID, req.Token, req.DeviceType, now, now); err != nil {
			log.Printf("❌ Error registering FCM token: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, utils.KindInternal, "Failed to register FCM token")
			return
		}

		log.Printf("📱 FCM token registered: %s (%s)", userClaims.Email, req.DeviceType)

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "FCM token registered successfully",
		})
	}
}
