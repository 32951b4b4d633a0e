package models

import "time"

// ReportStatus represents the collection status of a waste report
type ReportStatus string

const (
	StatusPending    ReportStatus = "Pending"     // Just submitted, awaiting pickup
	StatusInProgress ReportStatus = "In Progress" // A crew is on it
	StatusCollected  ReportStatus = "Collected"   // Terminal
)

// ValidStatus reports whether s is one of the three known statuses.
func ValidStatus(s ReportStatus) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCollected:
		return true
	}
	return false
}

// CanTransitionTo reports whether a report may move from its current status
// to target. Transitions only run forward: Pending → In Progress → Collected,
// with Pending → Collected allowed directly. Collected is terminal.
func (s ReportStatus) CanTransitionTo(target ReportStatus) bool {
	if !ValidStatus(target) {
		return false
	}
	switch s {
	case StatusPending:
		return target == StatusInProgress || target == StatusCollected
	case StatusInProgress:
		return target == StatusCollected
	}
	return false
}

// Waste categories returned by the classifier
const (
	WasteWet    = "Wet"
	WasteDry    = "Dry"
	WasteEWaste = "E-Waste"
	WasteMixed  = "Mixed"
)

// WasteCategories is the fixed classifier output catalog.
var WasteCategories = []string{WasteWet, WasteDry, WasteEWaste, WasteMixed}

type Report struct {
	ID          int          `json:"id" db:"id"`
	ImageURL    string       `json:"image_url" db:"image_url"`
	Latitude    float64      `json:"latitude" db:"latitude"`
	Longitude   float64      `json:"longitude" db:"longitude"`
	WasteType   string       `json:"waste_type" db:"waste_type"`
	Status      ReportStatus `json:"status" db:"status"`
	SubmittedBy *string      `json:"submitted_by" db:"submitted_by"` // NULL after submitter deletion
	CreatedAt   int64        `json:"created_at" db:"created_at"`     // Unix timestamp
	UpdatedAt   int64        `json:"updated_at" db:"updated_at"`     // Unix timestamp
	CollectedAt *int64       `json:"collected_at" db:"collected_at"` // Set only when status = Collected
}

// ReportWithSubmitter joins the submitter's public fields for municipal/admin
// views and websocket events.
type ReportWithSubmitter struct {
	Report
	SubmitterName  *string `db:"submitter_name"`
	SubmitterEmail *string `db:"submitter_email"`
}

// SubmitterInfo is the public slice of the submitting user embedded in report views.
type SubmitterInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ReportResponse is what we send to the client with ISO timestamps
type ReportResponse struct {
	ID             int            `json:"id"`
	Classification string         `json:"classification"`
	Status         ReportStatus   `json:"status"`
	Latitude       float64        `json:"latitude"`
	Longitude      float64        `json:"longitude"`
	ImageURL       string         `json:"image_url"`
	CreatedAt      string         `json:"created_at"`
	UpdatedAt      string         `json:"updated_at"`
	CollectedAt    *string        `json:"collected_at,omitempty"`
	CreatedBy      *SubmitterInfo `json:"created_by,omitempty"`
}

// ToReportResponse converts a Report to ReportResponse
func (r *Report) ToReportResponse() ReportResponse {
	resp := ReportResponse{
		ID:             r.ID,
		Classification: r.WasteType,
		Status:         r.Status,
		Latitude:       r.Latitude,
		Longitude:      r.Longitude,
		ImageURL:       r.ImageURL,
		CreatedAt:      time.Unix(r.CreatedAt, 0).UTC().Format(time.RFC3339),
		UpdatedAt:      time.Unix(r.UpdatedAt, 0).UTC().Format(time.RFC3339),
	}

	if r.CollectedAt != nil {
		iso := time.Unix(*r.CollectedAt, 0).UTC().Format(time.RFC3339)
		resp.CollectedAt = &iso
	}

	return resp
}

// ToReportResponse includes the submitter block when the user still exists.
func (r *ReportWithSubmitter) ToReportResponse() ReportResponse {
	resp := r.Report.ToReportResponse()
	if r.SubmitterName != nil && r.SubmitterEmail != nil {
		resp.CreatedBy = &SubmitterInfo{Name: *r.SubmitterName, Email: *r.SubmitterEmail}
	}
	return resp
}
