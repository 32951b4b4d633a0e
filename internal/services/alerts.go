package services

import (
	"fmt"
	"log"
	"time"

	"wastewatch-backend/internal/models"
	"wastewatch-backend/internal/websocket"

	"github.com/jmoiron/sqlx"
)

// listAlertsLimit caps the alert feed to the most recent entries.
const listAlertsLimit = 20

// AlertDispatcher persists alert records and fans real-time events out to
// websocket subscribers and municipal devices. Dispatch runs strictly after
// the report+ledger transaction has committed. Every failure in here is
// logged and swallowed; the submission already succeeded, so nothing in this
// path may surface an error to the citizen.
type AlertDispatcher struct {
	db  *sqlx.DB
	hub *websocket.Hub
	fcm *FCMService // nil when Firebase credentials are not configured
}

func NewAlertDispatcher(db *sqlx.DB, hub *websocket.Hub, fcm *FCMService) *AlertDispatcher {
	return &AlertDispatcher{db: db, hub: hub, fcm: fcm}
}

// NotifyNewReport records a High-severity alert targeted at the Municipal
// role, broadcasts the newReport event to all subscribers and pushes to
// registered municipal devices.
func (d *AlertDispatcher) NotifyNewReport(report models.ReportWithSubmitter) {
	submitter := "a citizen"
	if report.SubmitterName != nil {
		submitter = *report.SubmitterName
	}

	message := fmt.Sprintf("New %s waste report submitted by %s near Lat:%.4f/Lng:%.4f",
		report.WasteType, submitter, report.Latitude, report.Longitude)

	_, err := d.db.Exec(`INSERT INTO alerts (message, severity, report_id, target_role, created_at)
	                     VALUES ($1, $2, $3, $4, $5)`,
		message, models.SeverityHigh, report.ID, models.TargetMunicipal, time.Now().Unix())
	if err != nil {
		log.Printf("⚠️ Failed to persist alert for report %d: %v", report.ID, err)
	}

	d.hub.Broadcast("newReport", report.ToReportResponse())

	if d.fcm != nil {
		go d.pushToMunicipalDevices(report.ID, report.WasteType, message)
	}
}

// NotifyStatusChange broadcasts the updateReport event after a successful
// status transition. Status changes do not create alert rows.
func (d *AlertDispatcher) NotifyStatusChange(report models.ReportWithSubmitter) {
	d.hub.Broadcast("updateReport", report.ToReportResponse())
}

// NotifyGamification sends the submitter their own points/badge delta, so a
// connected citizen sees badge unlocks without refetching stats.
func (d *AlertDispatcher) NotifyGamification(userID string, delta *GamificationDelta) {
	d.hub.SendToUser(userID, "gamification", delta)
}

// ListAlerts returns the alerts visible to the caller's role: rows targeted
// at that role plus rows targeted at All, newest first, capped at 20.
func (d *AlertDispatcher) ListAlerts(role string) ([]models.Alert, error) {
	alerts := []models.Alert{}
	err := d.db.Select(&alerts, `SELECT * FROM alerts
	                             WHERE target_role = $1 OR target_role = $2
	                             ORDER BY created_at DESC, id DESC
	                             LIMIT $3`,
		role, models.TargetAll, listAlertsLimit)
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

func (d *AlertDispatcher) pushToMunicipalDevices(reportID int, wasteType, message string) {
	var tokens []string
	err := d.db.Select(&tokens, `SELECT t.token FROM fcm_tokens t
	                             JOIN users u ON u.id = t.user_id
	                             WHERE u.role = $1`, models.RoleMunicipal)
	if err != nil {
		log.Printf("⚠️ Failed to load municipal FCM tokens: %v", err)
		return
	}

	if err := d.fcm.SendNewReportNotification(tokens, reportID, wasteType, message); err != nil {
		log.Printf("⚠️ FCM push for report %d failed: %v", reportID, err)
	}
}
