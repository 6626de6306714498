package user

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleCoach = "coach"
	RoleAdmin = "admin"
)

func IsValidRole(role string) bool {
	switch role {
	case RoleUser, RoleCoach, RoleAdmin:
		return true
	default:
		return false
	}
}

// UserRole grants one role to one profile. A profile may hold several roles.
type UserRole struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_role,priority:1" json:"user_id"`
	Role      string    `gorm:"not null;uniqueIndex:idx_user_role,priority:2" json:"role"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (UserRole) TableName() string { return "user_roles" }

// RoleSet is the role-gated view of one identity.
type RoleSet struct {
	IsAdmin bool `json:"is_admin"`
	IsCoach bool `json:"is_coach"`
	IsStaff bool `json:"is_staff"`
}

// ResolveRoles derives the view flags from the raw role rows.
// is_admin is true only when an admin row exists.
func ResolveRoles(roles []string) RoleSet {
	var rs RoleSet
	for _, r := range roles {
		switch r {
		case RoleAdmin:
			rs.IsAdmin = true
		case RoleCoach:
			rs.IsCoach = true
		}
	}
	rs.IsStaff = rs.IsAdmin || rs.IsCoach
	return rs
}
