package model

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityType represents the type of audited action
type ActivityType string

const (
	ActivityUserRegistered    ActivityType = "user_registered"
	ActivityUserLogin         ActivityType = "user_login"
	ActivityUserUpdated       ActivityType = "user_updated"
	ActivityUserDeleted       ActivityType = "user_deleted"
	ActivityCourseCreated     ActivityType = "course_created"
	ActivityCourseUpdated     ActivityType = "course_updated"
	ActivityCourseDeleted     ActivityType = "course_deleted"
	ActivityCourseEnrolled    ActivityType = "course_enrolled"
	ActivityMaterialUploaded  ActivityType = "material_uploaded"
	ActivityEventCreated      ActivityType = "event_created"
	ActivityEventStatusChange ActivityType = "event_status_changed"
	ActivityEventRegistered   ActivityType = "event_registered"
	ActivityNotificationSent  ActivityType = "notification_sent"
	ActivityPlacementAdded    ActivityType = "placement_added"
	ActivityPlacementImported ActivityType = "placement_imported"
)

// Activity is an append-only audit log row. Rows are never mutated after
// creation; writes are fire-and-forget from the mutating handlers.
type Activity struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
	Type         ActivityType   `gorm:"type:varchar(50);not null;index" json:"type"`
	Description  string         `gorm:"type:text" json:"description"`
	UserID       uint           `gorm:"index" json:"user_id"`
	RelatedModel string         `gorm:"type:varchar(50)" json:"related_model,omitempty"`
	RelatedID    uint           `json:"related_id,omitempty"`
	Metadata     datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name for Activity
func (Activity) TableName() string {
	return "activities"
}
