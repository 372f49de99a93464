package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/sahilchouksey/campus-portal-api/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrDepartmentAudience   = errors.New("department must be set for department audience only")
	ErrRecipientRequired    = errors.New("recipient must be set for student audience only")
	ErrRecipientNotStudent  = errors.New("recipient is not a student")
)

// NotificationService handles audience-scoped notifications and read state
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a new notification service
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// CreateNotificationRequest represents a request to create a notification
type CreateNotificationRequest struct {
	Title       string
	Message     string
	SenderID    uint
	Audience    model.NotificationAudience
	Department  string
	RecipientID *uint
	Priority    model.NotificationPriority
}

// ListNotificationsOptions represents options for listing notifications
type ListNotificationsOptions struct {
	UnreadOnly bool
	Priority   string
	Limit      int
	Offset     int
}

// CreateNotification creates a new notification for an audience
func (s *NotificationService) CreateNotification(ctx context.Context, req CreateNotificationRequest) (*model.Notification, error) {
	if (req.Audience == model.AudienceDepartment) != (req.Department != "") {
		return nil, ErrDepartmentAudience
	}
	if (req.Audience == model.AudienceStudent) != (req.RecipientID != nil) {
		return nil, ErrRecipientRequired
	}
	if req.RecipientID != nil {
		var recipient model.User
		err := s.db.WithContext(ctx).
			Where("id = ? AND role = ?", *req.RecipientID, model.RoleStudent).
			First(&recipient).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipientNotStudent
		}
		if err != nil {
			return nil, fmt.Errorf("failed to check recipient: %w", err)
		}
	}

	if req.Priority == "" {
		req.Priority = model.PriorityNormal
	}

	notification := &model.Notification{
		Title:       req.Title,
		Message:     req.Message,
		SenderID:    req.SenderID,
		Audience:    req.Audience,
		Department:  req.Department,
		RecipientID: req.RecipientID,
		Priority:    req.Priority,
	}

	if err := s.db.WithContext(ctx).Create(notification).Error; err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	log.Printf("Created notification %d for audience %s: %s", notification.ID, req.Audience, req.Title)
	return notification, nil
}

// GetVisible fetches a single notification, applying the point-access
// visibility check. Invisible and missing documents are indistinguishable.
func (s *NotificationService) GetVisible(ctx context.Context, id uint, user *model.User) (*model.Notification, error) {
	var notification model.Notification
	err := s.db.WithContext(ctx).
		Preload("Attachments").
		First(&notification, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to fetch notification: %w", err)
	}

	if !CanSeeNotification(user, &notification) {
		return nil, ErrNotificationNotFound
	}

	return &notification, nil
}

// ListVisible lists notifications visible to the user, newest first
func (s *NotificationService) ListVisible(ctx context.Context, user *model.User, opts ListNotificationsOptions) ([]model.Notification, int64, error) {
	query := s.db.WithContext(ctx).
		Model(&model.Notification{}).
		Scopes(NotificationVisibilityScope(user))

	if opts.Priority != "" {
		query = query.Where("priority = ?", opts.Priority)
	}

	if opts.UnreadOnly {
		query = query.Where(
			"NOT EXISTS (SELECT 1 FROM notification_reads r WHERE r.notification_id = notifications.id AND r.user_id = ?)",
			user.ID,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	var notifications []model.Notification
	if err := query.
		Preload("Attachments").
		Order("created_at DESC").
		Limit(opts.Limit).
		Offset(opts.Offset).
		Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, total, nil
}

// GetUnreadCount returns the number of visible, unread notifications
func (s *NotificationService) GetUnreadCount(ctx context.Context, user *model.User) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Notification{}).
		Scopes(NotificationVisibilityScope(user)).
		Where(
			"NOT EXISTS (SELECT 1 FROM notification_reads r WHERE r.notification_id = notifications.id AND r.user_id = ?)",
			user.ID,
		).
		Count(&count).Error
	return count, err
}

// MarkAsRead records a read receipt for a visible notification.
// Repeating the call is a no-op, not an error.
func (s *NotificationService) MarkAsRead(ctx context.Context, id uint, user *model.User) error {
	if _, err := s.GetVisible(ctx, id, user); err != nil {
		return err
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.NotificationRead{NotificationID: id, UserID: user.ID}).
		Error
}

// MarkAllAsRead records read receipts for every visible, currently unread
// notification. Returns the number of documents actually updated, so a
// second consecutive call reports zero.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, user *model.User) (int64, error) {
	var ids []uint
	err := s.db.WithContext(ctx).
		Model(&model.Notification{}).
		Scopes(NotificationVisibilityScope(user)).
		Where(
			"NOT EXISTS (SELECT 1 FROM notification_reads r WHERE r.notification_id = notifications.id AND r.user_id = ?)",
			user.ID,
		).
		Pluck("notifications.id", &ids).Error
	if err != nil {
		return 0, fmt.Errorf("failed to list unread notifications: %w", err)
	}

	if len(ids) == 0 {
		return 0, nil
	}

	receipts := make([]model.NotificationRead, 0, len(ids))
	for _, id := range ids {
		receipts = append(receipts, model.NotificationRead{NotificationID: id, UserID: user.ID})
	}

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&receipts)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// DeleteNotification removes a notification the sender owns (admin may
// delete any). Attachments and read receipts go with it.
func (s *NotificationService) DeleteNotification(ctx context.Context, id uint, user *model.User) error {
	var notification model.Notification
	query := s.db.WithContext(ctx)
	if user.Role != model.RoleAdmin {
		query = query.Where("sender_id = ?", user.ID)
	}
	if err := query.First(&notification, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to fetch notification: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("notification_id = ?", id).Delete(&model.NotificationAttachment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("notification_id = ?", id).Delete(&model.NotificationRead{}).Error; err != nil {
			return err
		}
		return tx.Delete(&notification).Error
	})
}
