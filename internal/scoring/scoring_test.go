package scoring

import (
	"testing"

	"wastewatch-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointsFor(t *testing.T) {
	cases := []struct {
		category string
		points   int
		known    bool
	}{
		{models.WasteWet, 10, true},
		{models.WasteDry, 10, true},
		{models.WasteEWaste, 20, true},
		{models.WasteMixed, 15, true},
		{"Hazardous", 10, false},
		{"", 10, false},
		{"wet", 10, false}, // categories are case-sensitive
	}

	for _, tc := range cases {
		points, known := PointsFor(tc.category)
		assert.Equal(t, tc.points, points, "points for %q", tc.category)
		assert.Equal(t, tc.known, known, "known for %q", tc.category)
	}
}

func TestLevelFor(t *testing.T) {
	cases := map[int]int{
		0:   1,
		49:  1,
		50:  2,
		99:  2,
		100: 3,
		149: 3,
		500: 11,
	}
	for points, level := range cases {
		assert.Equal(t, level, LevelFor(points), "level for %d points", points)
	}
}

func TestNewlyEarnedBadgesFirstReport(t *testing.T) {
	earned := NewlyEarnedBadges(models.BadgeList{}, 1, 10)
	require.Len(t, earned, 1)
	assert.Equal(t, "first_report", earned[0].ID)
	assert.Equal(t, "First Step", earned[0].Name)
}

func TestNewlyEarnedBadgesOrderAndThresholds(t *testing.T) {
	// A user crossing several thresholds at once earns all of them, in
	// catalog order.
	earned := NewlyEarnedBadges(models.BadgeList{}, 10, 120)
	ids := make([]string, len(earned))
	for i, b := range earned {
		ids[i] = b.ID
	}
	assert.Equal(t, []string{"first_report", "reporter_5", "reporter_10", "points_100"}, ids)
}

func TestNewlyEarnedBadgesIdempotent(t *testing.T) {
	current := models.BadgeList{}
	earned := NewlyEarnedBadges(current, 5, 50)
	require.NotEmpty(t, earned)
	for _, b := range earned {
		current = append(current, b.ID)
	}

	// Re-evaluating with the same totals and the updated list awards nothing.
	again := NewlyEarnedBadges(current, 5, 50)
	assert.Empty(t, again)
}

func TestBadgeByID(t *testing.T) {
	b, ok := BadgeByID("points_500")
	require.True(t, ok)
	assert.Equal(t, "Points Master", b.Name)

	_, ok = BadgeByID("no_such_badge")
	assert.False(t, ok)
}

// ledgerState mirrors the arithmetic the gamification ledger applies per
// submission, without the database.
type ledgerState struct {
	points       int
	totalReports int
	level        int
	badges       models.BadgeList
}

func (s *ledgerState) submit(t *testing.T, category string) []Badge {
	t.Helper()
	pts, _ := PointsFor(category)
	s.points += pts
	s.totalReports++
	s.level = LevelFor(s.points)
	earned := NewlyEarnedBadges(s.badges, s.totalReports, s.points)
	for _, b := range earned {
		s.badges = append(s.badges, b.ID)
	}
	return earned
}

func TestSubmissionScenarioFirstWetReport(t *testing.T) {
	s := &ledgerState{level: 1}

	earned := s.submit(t, models.WasteWet)

	assert.Equal(t, 10, s.points)
	assert.Equal(t, 1, s.totalReports)
	assert.Equal(t, 1, s.level)
	require.Len(t, earned, 1)
	assert.Equal(t, "first_report", earned[0].ID)
}

func TestSubmissionScenarioFiveReportsReachLevelTwo(t *testing.T) {
	s := &ledgerState{level: 1}
	s.submit(t, models.WasteWet)

	var lastEarned []Badge
	for i := 0; i < 4; i++ {
		lastEarned = s.submit(t, models.WasteDry)
	}

	assert.Equal(t, 50, s.points)
	assert.Equal(t, 5, s.totalReports)
	assert.Equal(t, 2, s.level)

	ids := make([]string, len(lastEarned))
	for i, b := range lastEarned {
		ids[i] = b.ID
	}
	assert.Contains(t, ids, "reporter_5")
	assert.NotContains(t, ids, "points_100")
}

func TestSubmissionScenarioEWasteCrossesCentury(t *testing.T) {
	s := &ledgerState{points: 95, totalReports: 7, level: LevelFor(95), badges: models.BadgeList{"first_report", "reporter_5"}}

	earned := s.submit(t, models.WasteEWaste)

	assert.Equal(t, 115, s.points)
	assert.Equal(t, 3, s.level)

	ids := make([]string, len(earned))
	for i, b := range earned {
		ids[i] = b.ID
	}
	assert.Contains(t, ids, "points_100")
}
