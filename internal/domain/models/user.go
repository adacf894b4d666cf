// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a CMS operator who signs in to manage content.
//
// Email is the login identifier (stored lowercase, unique).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	FullName     string             `bson:"fullName" json:"fullName"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"` // bcrypt hash (never in JSON)
	Role         string             `bson:"role" json:"role"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
	LastLoginAt  *time.Time         `bson:"lastLoginAt,omitempty" json:"lastLoginAt,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// User roles
const (
	RoleSuperAdmin = "super_admin"
	RoleEditor     = "editor"
)

// AllRoles returns all valid user roles.
func AllRoles() []string {
	return []string{
		RoleSuperAdmin,
		RoleEditor,
	}
}

// IsValidRole checks if a role is valid.
func IsValidRole(role string) bool {
	for _, r := range AllRoles() {
		if r == role {
			return true
		}
	}
	return false
}
