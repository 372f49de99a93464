package services

import (
	"github.com/sahilchouksey/campus-portal-api/model"
	"gorm.io/gorm"
)

// Notification visibility is one rule with two projections: a GORM scope for
// list queries and a point check for single-document access (fetch, mark-read,
// attachment download). Both must agree, otherwise a user could list a
// notification they are denied reading, or the reverse.

// NotificationVisibilityScope returns a query scope restricting notifications
// to those the given user may read.
func NotificationVisibilityScope(user *model.User) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch user.Role {
		case model.RoleAdmin:
			return db
		case model.RoleFaculty:
			return db.Where(
				"audience IN ? OR (audience = ? AND department = ?) OR (audience = ? AND recipient_id = ?)",
				[]model.NotificationAudience{model.AudienceFaculty, model.AudienceAll},
				model.AudienceDepartment, user.Department,
				model.AudienceStudent, user.ID,
			)
		default: // student
			return db.Where(
				"audience IN ? OR (audience = ? AND department = ?) OR (audience = ? AND recipient_id = ?)",
				[]model.NotificationAudience{model.AudienceStudents, model.AudienceAll},
				model.AudienceDepartment, user.Department,
				model.AudienceStudent, user.ID,
			)
		}
	}
}

// CanSeeNotification is the point-access form of the visibility rule
func CanSeeNotification(user *model.User, n *model.Notification) bool {
	if n.Audience == model.AudienceStudent {
		return user.Role == model.RoleAdmin ||
			(n.RecipientID != nil && *n.RecipientID == user.ID)
	}

	switch user.Role {
	case model.RoleAdmin:
		return true
	case model.RoleFaculty:
		return n.Audience == model.AudienceFaculty ||
			n.Audience == model.AudienceAll ||
			(n.Audience == model.AudienceDepartment && n.Department == user.Department)
	default: // student
		return n.Audience == model.AudienceStudents ||
			n.Audience == model.AudienceAll ||
			(n.Audience == model.AudienceDepartment && n.Department == user.Department)
	}
}
