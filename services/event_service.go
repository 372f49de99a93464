package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sahilchouksey/campus-portal-api/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrEventNotFound        = errors.New("event not found")
	ErrEventNotOpen         = errors.New("event is not open for registration")
	ErrEventFull            = errors.New("event has reached maximum participants")
	ErrAlreadyRegistered    = errors.New("already registered for this event")
	ErrNotRegistered        = errors.New("not registered for this event")
	ErrCapacityBelowCurrent = errors.New("capacity cannot be lowered below current registration count")
	ErrInvalidStatus        = errors.New("invalid event status")
)

// EventService handles event registration and capacity under concurrency.
// Capacity checks run inside a transaction holding a row lock on the event,
// so two registrations for the last seat cannot both succeed.
type EventService struct {
	db *gorm.DB
}

// NewEventService creates a new event service
func NewEventService(db *gorm.DB) *EventService {
	return &EventService{db: db}
}

// Register adds a student registration, enforcing approval and capacity
func (s *EventService) Register(ctx context.Context, eventID, studentID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event model.Event
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&event, eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return fmt.Errorf("failed to fetch event: %w", err)
		}

		if event.Status != model.EventStatusApproved {
			return ErrEventNotOpen
		}

		var registered int64
		if err := tx.Model(&model.EventRegistration{}).
			Where("event_id = ?", eventID).
			Count(&registered).Error; err != nil {
			return fmt.Errorf("failed to count registrations: %w", err)
		}

		if event.MaxParticipants > 0 && registered >= int64(event.MaxParticipants) {
			return ErrEventFull
		}

		result := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.EventRegistration{EventID: eventID, StudentID: studentID})
		if result.Error != nil {
			return fmt.Errorf("failed to register: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyRegistered
		}

		return nil
	})
}

// Unregister removes a student registration
func (s *EventService) Unregister(ctx context.Context, eventID, studentID uint) error {
	result := s.db.WithContext(ctx).
		Where("event_id = ? AND student_id = ?", eventID, studentID).
		Delete(&model.EventRegistration{})
	if result.Error != nil {
		return fmt.Errorf("failed to unregister: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotRegistered
	}
	return nil
}

// UpdateCapacity changes maxParticipants; lowering it below the current
// registration count is rejected (0 means unlimited).
func (s *EventService) UpdateCapacity(ctx context.Context, eventID uint, maxParticipants int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event model.Event
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&event, eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return fmt.Errorf("failed to fetch event: %w", err)
		}

		if maxParticipants > 0 {
			var registered int64
			if err := tx.Model(&model.EventRegistration{}).
				Where("event_id = ?", eventID).
				Count(&registered).Error; err != nil {
				return fmt.Errorf("failed to count registrations: %w", err)
			}
			if int64(maxParticipants) < registered {
				return ErrCapacityBelowCurrent
			}
		}

		return tx.Model(&event).Update("max_participants", maxParticipants).Error
	})
}

// SetStatus moves an event through the approval workflow
func (s *EventService) SetStatus(ctx context.Context, eventID uint, status model.EventStatus) (*model.Event, error) {
	switch status {
	case model.EventStatusApproved, model.EventStatusRejected, model.EventStatusPending:
	default:
		return nil, ErrInvalidStatus
	}

	var event model.Event
	if err := s.db.WithContext(ctx).First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to fetch event: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&event).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	event.Status = status
	return &event, nil
}

// RegistrationCount returns the current number of registrations for an event
func (s *EventService) RegistrationCount(ctx context.Context, eventID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.EventRegistration{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	return count, err
}
