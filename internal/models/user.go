package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Roles are a closed set, enforced both here and by the users table CHECK constraint.
const (
	RoleCitizen   = "Citizen"
	RoleMunicipal = "Municipal"
	RoleAdmin     = "Admin"
)

// ValidRole reports whether role is one of the three known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleCitizen, RoleMunicipal, RoleAdmin:
		return true
	}
	return false
}

// BadgeList is the ordered set of badge ids a user has earned, stored as a
// JSONB array. The list is append-only: badges are never removed or reordered.
type BadgeList []string

// Value implements driver.Valuer so sqlx can write the list as JSONB.
func (b BadgeList) Value() (driver.Value, error) {
	if b == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(b))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner so sqlx can read the JSONB column back.
func (b *BadgeList) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, (*[]string)(b))
	case string:
		return json.Unmarshal([]byte(v), (*[]string)(b))
	case nil:
		*b = BadgeList{}
		return nil
	}
	return fmt.Errorf("cannot scan %T into BadgeList", src)
}

// Contains reports whether the badge id is already in the list.
func (b BadgeList) Contains(id string) bool {
	for _, have := range b {
		if have == id {
			return true
		}
	}
	return false
}

type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Password     string    `json:"-" db:"password"` // Never return password in JSON
	Name         string    `json:"name" db:"name"`
	Role         string    `json:"role" db:"role"` // "Citizen", "Municipal" or "Admin"
	Points       int       `json:"points" db:"points"`
	TotalReports int       `json:"total_reports" db:"total_reports"`
	Badges       BadgeList `json:"badges" db:"badges"`
	Level        int       `json:"level" db:"level"`
	CreatedAt    int64     `json:"created_at" db:"created_at"` // Unix timestamp
	UpdatedAt    int64     `json:"updated_at" db:"updated_at"` // Unix timestamp
}

type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CreatedAt int64  `json:"created_at"`
}

func (u *User) ToUserResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
