package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertVisibleTo(t *testing.T) {
	// Role-targeted alerts are visible to that role and nobody else.
	assert.True(t, AlertVisibleTo(TargetMunicipal, RoleMunicipal))
	assert.False(t, AlertVisibleTo(TargetMunicipal, RoleAdmin))
	assert.False(t, AlertVisibleTo(TargetAdmin, RoleMunicipal))
	assert.True(t, AlertVisibleTo(TargetAdmin, RoleAdmin))

	// All-targeted alerts are visible to every role.
	assert.True(t, AlertVisibleTo(TargetAll, RoleMunicipal))
	assert.True(t, AlertVisibleTo(TargetAll, RoleAdmin))
	assert.True(t, AlertVisibleTo(TargetAll, RoleCitizen))
}

func TestBadgeListRoundTrip(t *testing.T) {
	badges := BadgeList{"first_report", "reporter_5"}

	value, err := badges.Value()
	require.NoError(t, err)

	var scanned BadgeList
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, badges, scanned)

	// Empty and nil lists serialize as an empty JSON array.
	value, err = BadgeList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", value)

	require.NoError(t, scanned.Scan(nil))
	assert.Empty(t, scanned)
}

func TestBadgeListContains(t *testing.T) {
	badges := BadgeList{"first_report"}
	assert.True(t, badges.Contains("first_report"))
	assert.False(t, badges.Contains("reporter_5"))
	assert.False(t, BadgeList{}.Contains("first_report"))
}
