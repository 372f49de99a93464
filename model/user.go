package model

import (
	"time"

	"gorm.io/gorm"
)

// UserRole represents the role of a portal user
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleFaculty UserRole = "faculty"
	RoleStudent UserRole = "student"
)

// UserCodePrefix returns the human-readable code prefix for a role
func UserCodePrefix(role UserRole) string {
	switch role {
	case RoleAdmin:
		return "ADM"
	case RoleFaculty:
		return "FAC"
	default:
		return "STU"
	}
}

// IsValidRole reports whether the given role is one of the known roles
func IsValidRole(role string) bool {
	switch UserRole(role) {
	case RoleAdmin, RoleFaculty, RoleStudent:
		return true
	}
	return false
}

// User represents a registered portal user
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	// UserCode stays uniquely held by soft-deleted rows too: codes are
	// assigned once and never reused. Email is only unique among live
	// rows, so a deleted user's email can register again.
	UserCode     string         `gorm:"type:varchar(10);uniqueIndex;not null" json:"user_code"` // ADM0001, FAC0001, STU0001
	Email        string         `gorm:"uniqueIndex:idx_users_live_email,where:deleted_at IS NULL;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never expose password in JSON
	Name         string         `gorm:"not null" json:"name"`
	Role         UserRole       `gorm:"type:varchar(20);default:'student'" json:"role"`
	Department   string         `gorm:"type:varchar(100);index" json:"department"` // Required unless admin
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	TokenVersion int            `gorm:"default:0" json:"-"` // Increment to invalidate all user tokens

	// Relationships
	Enrollments        []CourseEnrollment  `gorm:"foreignKey:StudentID" json:"-"`
	OwnedCourses       []Course            `gorm:"foreignKey:FacultyID" json:"-"`
	OrganizedEvents    []Event             `gorm:"foreignKey:OrganizerID" json:"-"`
	EventRegistrations []EventRegistration `gorm:"foreignKey:StudentID" json:"-"`
	SentNotifications  []Notification      `gorm:"foreignKey:SenderID" json:"-"`
	ReadReceipts       []NotificationRead  `gorm:"foreignKey:UserID" json:"-"`
	TokenBlacklist     []JWTTokenBlacklist `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// RequiresDepartment reports whether the user's role mandates a department
func (u *User) RequiresDepartment() bool {
	return u.Role != RoleAdmin
}
