// Package scoring holds the gamification rules: points per waste category,
// level thresholds and the badge catalog. Everything here is pure and
// deterministic: no I/O, no clock, no database.
package scoring

import "wastewatch-backend/internal/models"

// DefaultPoints is awarded when the classifier hands back a category outside
// the fixed catalog. Kept permissive on purpose; callers must log the case.
const DefaultPoints = 10

// PointsPerLevel is the flat level step: every 50 points is one level.
const PointsPerLevel = 50

var pointsByCategory = map[string]int{
	models.WasteWet:    10,
	models.WasteDry:    10,
	models.WasteEWaste: 20,
	models.WasteMixed:  15,
}

// PointsFor returns the points awarded for a report of the given waste
// category. known is false when the category is not in the catalog; the
// points then fall back to DefaultPoints and the caller should flag the
// submission for audit.
func PointsFor(category string) (points int, known bool) {
	if p, ok := pointsByCategory[category]; ok {
		return p, true
	}
	return DefaultPoints, false
}

// LevelFor computes a user's level from their total points.
func LevelFor(points int) int {
	return points/PointsPerLevel + 1
}

// Badge is a named achievement with a fixed unlock threshold. Unlock reports
// whether the badge is earned given post-submission totals.
type Badge struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Icon   string `json:"icon"`
	Unlock func(totalReports, points int) bool `json:"-"`
}

// Catalog is the fixed badge catalog, evaluated in order. New badges must be
// appended so earlier users' badge lists keep their meaning.
var Catalog = []Badge{
	{ID: "first_report", Name: "First Step", Icon: "🌱", Unlock: func(r, p int) bool { return r >= 1 }},
	{ID: "reporter_5", Name: "Eco Starter", Icon: "🌿", Unlock: func(r, p int) bool { return r >= 5 }},
	{ID: "reporter_10", Name: "Green Warrior", Icon: "🌳", Unlock: func(r, p int) bool { return r >= 10 }},
	{ID: "reporter_25", Name: "Eco Champion", Icon: "🏆", Unlock: func(r, p int) bool { return r >= 25 }},
	{ID: "reporter_50", Name: "Planet Saver", Icon: "🌍", Unlock: func(r, p int) bool { return r >= 50 }},
	{ID: "points_100", Name: "Century Club", Icon: "💯", Unlock: func(r, p int) bool { return p >= 100 }},
	{ID: "points_500", Name: "Points Master", Icon: "⭐", Unlock: func(r, p int) bool { return p >= 500 }},
}

// BadgeByID looks a badge up in the catalog. ok is false for unknown ids.
func BadgeByID(id string) (Badge, bool) {
	for _, b := range Catalog {
		if b.ID == id {
			return b, true
		}
	}
	return Badge{}, false
}

// NewlyEarnedBadges evaluates the catalog in order against post-submission
// totals and returns the badges the user just qualified for, skipping any id
// already in current. Calling it again with the updated list returns nothing,
// so badge awards are idempotent.
func NewlyEarnedBadges(current models.BadgeList, totalReports, points int) []Badge {
	var earned []Badge
	for _, b := range Catalog {
		if current.Contains(b.ID) {
			continue
		}
		if b.Unlock(totalReports, points) {
			earned = append(earned, b)
		}
	}
	return earned
}
