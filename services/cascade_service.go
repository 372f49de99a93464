package services

import (
	"context"
	"fmt"
	"log"

	"github.com/sahilchouksey/campus-portal-api/model"
	"gorm.io/gorm"
)

// CascadeService removes every reference to a user when the user is deleted.
//
// The cascade is an explicit ordered list of steps, each attempted
// unconditionally with its failure caught individually: one failing step
// never blocks the rest, and never blocks removal of the user row itself.
// Failures are logged and reported back only as a count.
type CascadeService struct {
	db *gorm.DB
}

// NewCascadeService creates a new cascade service
func NewCascadeService(db *gorm.DB) *CascadeService {
	return &CascadeService{db: db}
}

// CascadeResult summarizes one user deletion
type CascadeResult struct {
	CleanedSteps  int      `json:"cleaned_steps"`
	CleanupErrors int      `json:"cleanup_errors"`
	FailedSteps   []string `json:"failed_steps,omitempty"`
}

type cascadeStep struct {
	name string
	run  func(ctx context.Context, user *model.User) error
}

// DeleteUser runs the full cascade and then removes the user row.
// Only the user-row deletion error is returned; step failures are
// collected into the result.
func (s *CascadeService) DeleteUser(ctx context.Context, user *model.User) (*CascadeResult, error) {
	steps := []cascadeStep{
		{"remove course enrollments", s.removeEnrollments},
		{"delete owned courses", s.deleteOwnedCourses},
		{"delete organized events", s.deleteOrganizedEvents},
		{"remove event registrations", s.removeEventRegistrations},
		{"delete sent notifications", s.deleteSentNotifications},
		{"remove read receipts", s.removeReadReceipts},
		{"delete added placements", s.deleteAddedPlacements},
	}

	result := &CascadeResult{}
	for _, step := range steps {
		if err := step.run(ctx, user); err != nil {
			log.Printf("Cascade step %q failed for user %s: %v", step.name, user.UserCode, err)
			result.CleanupErrors++
			result.FailedSteps = append(result.FailedSteps, step.name)
			continue
		}
		result.CleanedSteps++
	}

	if err := s.db.WithContext(ctx).Delete(user).Error; err != nil {
		return result, fmt.Errorf("failed to delete user: %w", err)
	}

	log.Printf("Deleted user %s (%d cascade steps ok, %d failed)", user.UserCode, result.CleanedSteps, result.CleanupErrors)
	return result, nil
}

func (s *CascadeService) removeEnrollments(ctx context.Context, user *model.User) error {
	return s.db.WithContext(ctx).
		Where("student_id = ?", user.ID).
		Delete(&model.CourseEnrollment{}).Error
}

// deleteOwnedCourses removes a faculty's courses together with their owned
// sub-records (materials, assignments, submissions, attendance, enrollments).
func (s *CascadeService) deleteOwnedCourses(ctx context.Context, user *model.User) error {
	if user.Role != model.RoleFaculty {
		return nil
	}

	var courseIDs []uint
	if err := s.db.WithContext(ctx).
		Model(&model.Course{}).
		Where("faculty_id = ?", user.ID).
		Pluck("id", &courseIDs).Error; err != nil {
		return err
	}
	if len(courseIDs) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var assignmentIDs []uint
		if err := tx.Model(&model.Assignment{}).
			Where("course_id IN ?", courseIDs).
			Pluck("id", &assignmentIDs).Error; err != nil {
			return err
		}
		if len(assignmentIDs) > 0 {
			if err := tx.Where("assignment_id IN ?", assignmentIDs).
				Delete(&model.AssignmentSubmission{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("course_id IN ?", courseIDs).Delete(&model.Assignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id IN ?", courseIDs).Delete(&model.CourseMaterial{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id IN ?", courseIDs).Delete(&model.AttendanceRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id IN ?", courseIDs).Delete(&model.CourseEnrollment{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", courseIDs).Delete(&model.Course{}).Error
	})
}

func (s *CascadeService) deleteOrganizedEvents(ctx context.Context, user *model.User) error {
	var eventIDs []uint
	if err := s.db.WithContext(ctx).
		Model(&model.Event{}).
		Where("organizer_id = ?", user.ID).
		Pluck("id", &eventIDs).Error; err != nil {
		return err
	}
	if len(eventIDs) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id IN ?", eventIDs).Delete(&model.EventRegistration{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", eventIDs).Delete(&model.Event{}).Error
	})
}

func (s *CascadeService) removeEventRegistrations(ctx context.Context, user *model.User) error {
	return s.db.WithContext(ctx).
		Where("student_id = ?", user.ID).
		Delete(&model.EventRegistration{}).Error
}

func (s *CascadeService) deleteSentNotifications(ctx context.Context, user *model.User) error {
	var notificationIDs []uint
	if err := s.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("sender_id = ?", user.ID).
		Pluck("id", &notificationIDs).Error; err != nil {
		return err
	}
	if len(notificationIDs) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("notification_id IN ?", notificationIDs).
			Delete(&model.NotificationAttachment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("notification_id IN ?", notificationIDs).
			Delete(&model.NotificationRead{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", notificationIDs).Delete(&model.Notification{}).Error
	})
}

func (s *CascadeService) removeReadReceipts(ctx context.Context, user *model.User) error {
	return s.db.WithContext(ctx).
		Where("user_id = ?", user.ID).
		Delete(&model.NotificationRead{}).Error
}

func (s *CascadeService) deleteAddedPlacements(ctx context.Context, user *model.User) error {
	if user.Role != model.RoleAdmin {
		return nil
	}
	return s.db.WithContext(ctx).
		Where("added_by_id = ?", user.ID).
		Delete(&model.Placement{}).Error
}
