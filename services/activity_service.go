package services

import (
	"context"
	"encoding/json"
	"log"

	"github.com/sahilchouksey/campus-portal-api/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActivityService writes and reads the append-only audit log.
// Writes are fire-and-forget: a failed insert is logged server-side and
// never fails the request that triggered it.
type ActivityService struct {
	db *gorm.DB
}

// NewActivityService creates a new activity service
func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{db: db}
}

// Record appends one audit row. Errors are swallowed by design.
func (s *ActivityService) Record(ctx context.Context, activityType model.ActivityType, description string, userID uint, relatedModel string, relatedID uint, metadata map[string]interface{}) {
	activity := model.Activity{
		Type:         activityType,
		Description:  description,
		UserID:       userID,
		RelatedModel: relatedModel,
		RelatedID:    relatedID,
	}

	if metadata != nil {
		if raw, err := json.Marshal(metadata); err == nil {
			activity.Metadata = datatypes.JSON(raw)
		}
	}

	if err := s.db.WithContext(ctx).Create(&activity).Error; err != nil {
		log.Printf("Failed to record activity %s: %v", activityType, err)
	}
}

// ListActivitiesOptions represents filters for the admin activity listing
type ListActivitiesOptions struct {
	UserID uint
	Type   string
	Limit  int
	Offset int
}

// List returns audit rows, newest first
func (s *ActivityService) List(ctx context.Context, opts ListActivitiesOptions) ([]model.Activity, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.Activity{})

	if opts.UserID != 0 {
		query = query.Where("user_id = ?", opts.UserID)
	}
	if opts.Type != "" {
		query = query.Where("type = ?", opts.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var activities []model.Activity
	if err := query.
		Order("created_at DESC").
		Limit(opts.Limit).
		Offset(opts.Offset).
		Find(&activities).Error; err != nil {
		return nil, 0, err
	}

	return activities, total, nil
}
