package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		from    ReportStatus
		to      ReportStatus
		allowed bool
	}{
		{StatusPending, StatusInProgress, true},
		{StatusPending, StatusCollected, true}, // direct collection is allowed
		{StatusInProgress, StatusCollected, true},
		{StatusInProgress, StatusPending, false}, // no moving backwards
		{StatusCollected, StatusPending, false},  // Collected is terminal
		{StatusCollected, StatusInProgress, false},
		{StatusCollected, StatusCollected, false},
		{StatusPending, StatusPending, false},
		{StatusPending, ReportStatus("Archived"), false}, // unknown target
		{StatusPending, ReportStatus(""), false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s → %s", tc.from, tc.to)
	}
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusPending))
	assert.True(t, ValidStatus(StatusInProgress))
	assert.True(t, ValidStatus(StatusCollected))
	assert.False(t, ValidStatus(ReportStatus("Done")))
	assert.False(t, ValidStatus(ReportStatus("pending"))) // case-sensitive
}

func TestToReportResponse(t *testing.T) {
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC).Unix()
	collected := time.Date(2025, 3, 2, 15, 30, 0, 0, time.UTC).Unix()

	r := Report{
		ID:          7,
		ImageURL:    "/uploads/abc.jpg",
		Latitude:    12.9716,
		Longitude:   77.5946,
		WasteType:   WasteMixed,
		Status:      StatusCollected,
		CreatedAt:   created,
		UpdatedAt:   collected,
		CollectedAt: &collected,
	}

	resp := r.ToReportResponse()
	assert.Equal(t, 7, resp.ID)
	assert.Equal(t, WasteMixed, resp.Classification)
	assert.Equal(t, "2025-03-01T09:00:00Z", resp.CreatedAt)
	require.NotNil(t, resp.CollectedAt)
	assert.Equal(t, "2025-03-02T15:30:00Z", *resp.CollectedAt)
	assert.Nil(t, resp.CreatedBy)
}

func TestToReportResponseWithSubmitter(t *testing.T) {
	name := "Asha"
	email := "asha@example.com"

	r := ReportWithSubmitter{
		Report:         Report{ID: 1, Status: StatusPending, WasteType: WasteWet},
		SubmitterName:  &name,
		SubmitterEmail: &email,
	}

	resp := r.ToReportResponse()
	require.NotNil(t, resp.CreatedBy)
	assert.Equal(t, "Asha", resp.CreatedBy.Name)
	assert.Equal(t, "asha@example.com", resp.CreatedBy.Email)
	assert.Nil(t, resp.CollectedAt)

	// Deleted submitter: block omitted entirely
	r.SubmitterName = nil
	resp = r.ToReportResponse()
	assert.Nil(t, resp.CreatedBy)
}
