package models

import "time"

// Alert severities
const (
	SeverityLow    = "Low"
	SeverityMedium = "Medium"
	SeverityHigh   = "High"
)

// Alert target roles. TargetAll alerts are visible to every role.
const (
	TargetMunicipal = "Municipal"
	TargetAdmin     = "Admin"
	TargetAll       = "All"
)

// Alert is a persisted, role-targeted notification record. Rows are immutable
// once created.
type Alert struct {
	ID         int    `json:"id" db:"id"`
	Message    string `json:"message" db:"message"`
	Severity   string `json:"severity" db:"severity"`
	ReportID   *int   `json:"report_id" db:"report_id"`
	TargetRole string `json:"target_role" db:"target_role"`
	CreatedAt  int64  `json:"created_at" db:"created_at"` // Unix timestamp
}

// AlertVisibleTo reports whether an alert targeted at targetRole should be
// shown to a caller with the given role.
func AlertVisibleTo(targetRole, callerRole string) bool {
	return targetRole == callerRole || targetRole == TargetAll
}

// AlertResponse is what we send to the client with ISO timestamps
type AlertResponse struct {
	ID         int    `json:"id"`
	Message    string `json:"message"`
	Severity   string `json:"severity"`
	ReportID   *int   `json:"report_id,omitempty"`
	TargetRole string `json:"target_role"`
	CreatedAt  string `json:"created_at"`
}

func (a *Alert) ToAlertResponse() AlertResponse {
	return AlertResponse{
		ID:         a.ID,
		Message:    a.Message,
		Severity:   a.Severity,
		ReportID:   a.ReportID,
		TargetRole: a.TargetRole,
		CreatedAt:  time.Unix(a.CreatedAt, 0).UTC().Format(time.RFC3339),
	}
}
