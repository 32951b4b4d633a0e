package handlers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	unique := &pq.Error{Code: pqUniqueViolation, Constraint: "users_email_key"}
	assert.True(t, isUniqueViolation(unique))

	// Wrapped errors still match: drivers and sqlx may add context.
	assert.True(t, isUniqueViolation(fmt.Errorf("insert user: %w", unique)))

	// Other Postgres errors stay internal.
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23514"})) // check_violation
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
	assert.False(t, isUniqueViolation(nil))
}

func TestEmailRegex(t *testing.T) {
	assert.True(t, emailRegex.MatchString("citizen@example.com"))
	assert.True(t, emailRegex.MatchString("a.b+c@city.gov.ua"))

	assert.False(t, emailRegex.MatchString("no-at-sign.example.com"))
	assert.False(t, emailRegex.MatchString("spaces in@example.com"))
	assert.False(t, emailRegex.MatchString("missing@tld"))
}
