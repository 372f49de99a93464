package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationAudience represents who a notification is addressed to
type NotificationAudience string

const (
	AudienceAll        NotificationAudience = "all"
	AudienceStudents   NotificationAudience = "students"
	AudienceFaculty    NotificationAudience = "faculty"
	AudienceDepartment NotificationAudience = "department"
	AudienceStudent    NotificationAudience = "student" // a single student, via RecipientID
	AudienceAdmin      NotificationAudience = "admin"
)

// IsValidAudience reports whether the given audience is one of the known values
func IsValidAudience(audience string) bool {
	switch NotificationAudience(audience) {
	case AudienceAll, AudienceStudents, AudienceFaculty, AudienceDepartment, AudienceStudent, AudienceAdmin:
		return true
	}
	return false
}

// NotificationPriority represents the urgency of a notification
type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityNormal NotificationPriority = "normal"
	PriorityHigh   NotificationPriority = "high"
)

// Notification represents an announcement sent to an audience.
// Department is set iff Audience is "department"; RecipientID is set
// iff Audience is "student".
type Notification struct {
	ID          uint                 `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	DeletedAt   gorm.DeletedAt       `gorm:"index" json:"-"`
	Title       string               `gorm:"type:varchar(255);not null" json:"title"`
	Message     string               `gorm:"type:text" json:"message"`
	SenderID    uint                 `gorm:"not null;index" json:"sender_id"`
	Audience    NotificationAudience `gorm:"type:varchar(20);not null;index" json:"audience"`
	Department  string               `gorm:"type:varchar(100);index" json:"department,omitempty"`
	RecipientID *uint                `gorm:"index" json:"recipient_id,omitempty"`
	Priority    NotificationPriority `gorm:"type:varchar(10);default:'normal'" json:"priority"`
	Metadata    datatypes.JSON       `gorm:"type:jsonb" json:"metadata,omitempty"`

	// Relationships
	Sender      User                     `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Recipient   *User                    `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`
	Attachments []NotificationAttachment `gorm:"foreignKey:NotificationID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
	Reads       []NotificationRead       `gorm:"foreignKey:NotificationID;constraint:OnDelete:CASCADE" json:"-"`
}

// NotificationAttachment represents a file attached to a notification.
// Bytes live in object storage; only metadata is kept here.
type NotificationAttachment struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	NotificationID uint      `gorm:"not null;index" json:"notification_id"`
	FileName       string    `gorm:"type:varchar(255);not null" json:"file_name"`
	ContentType    string    `gorm:"type:varchar(100)" json:"content_type"`
	FileSize       int64     `json:"file_size"`
	StorageKey     string    `gorm:"type:varchar(512)" json:"-"`
}

// NotificationRead is a read receipt. The composite primary key makes
// marking the same notification read twice a no-op at the database level.
type NotificationRead struct {
	NotificationID uint  `gorm:"primaryKey" json:"notification_id"`
	UserID         uint  `gorm:"primaryKey" json:"user_id"`
	ReadAt         int64 `gorm:"autoCreateTime" json:"read_at"`
}
