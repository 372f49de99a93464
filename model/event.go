package model

import (
	"time"

	"gorm.io/gorm"
)

// EventStatus represents the approval state of an event
type EventStatus string

const (
	EventStatusPending   EventStatus = "pending"
	EventStatusApproved  EventStatus = "approved"
	EventStatusRejected  EventStatus = "rejected"
	EventStatusCompleted EventStatus = "completed"
)

// Event represents a campus event organized by a faculty member.
// MaxParticipants of 0 means unlimited capacity.
type Event struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	Title           string         `gorm:"not null" json:"title"`
	Description     string         `gorm:"type:text" json:"description"`
	Date            time.Time      `gorm:"not null;index" json:"date"`
	Venue           string         `gorm:"type:varchar(255)" json:"venue"`
	OrganizerID     uint           `gorm:"not null;index" json:"organizer_id"`
	Status          EventStatus    `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	MaxParticipants int            `gorm:"default:0" json:"max_participants"`

	// Relationships
	Organizer     User                `gorm:"foreignKey:OrganizerID" json:"organizer,omitempty"`
	Registrations []EventRegistration `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`
}

// EventRegistration links a student to an event.
// The composite primary key makes double registration a constraint violation.
type EventRegistration struct {
	EventID      uint  `gorm:"primaryKey" json:"event_id"`
	StudentID    uint  `gorm:"primaryKey" json:"student_id"`
	RegisteredAt int64 `gorm:"autoCreateTime" json:"registered_at"`

	// Relationships
	Event   Event `gorm:"foreignKey:EventID" json:"-"`
	Student User  `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}
