package course

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/campus-portal-api/model"
	"github.com/sahilchouksey/campus-portal-api/utils/middleware"
	"github.com/sahilchouksey/campus-portal-api/utils/response"
	"gorm.io/gorm/clause"
)

// MarkAttendanceRequest represents the request body for recording attendance
type MarkAttendanceRequest struct {
	Date    string            `json:"date" validate:"required"` // YYYY-MM-DD
	Entries []AttendanceEntry `json:"entries" validate:"required,min=1,dive"`
}

// AttendanceEntry marks one student present or absent
type AttendanceEntry struct {
	StudentID uint `json:"student_id" validate:"required,min=1"`
	Present   bool `json:"present"`
}

// MarkAttendance handles POST /api/v1/courses/:id/attendance.
// Re-marking the same (student, date) overwrites the earlier record.
func (h *CourseHandler) MarkAttendance(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	course, err := h.ownedCourse(c, user)
	if err != nil {
		return err
	}

	var req MarkAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return response.BadRequest(c, "Date must be in YYYY-MM-DD format")
	}

	// Only enrolled students count
	var enrolledIDs []uint
	if err := h.db.Model(&model.CourseEnrollment{}).
		Where("course_id = ?", course.ID).
		Pluck("student_id", &enrolledIDs).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch enrollments")
	}
	enrolled := make(map[uint]bool, len(enrolledIDs))
	for _, id := range enrolledIDs {
		enrolled[id] = true
	}

	records := make([]model.AttendanceRecord, 0, len(req.Entries))
	skipped := 0
	for _, entry := range req.Entries {
		if !enrolled[entry.StudentID] {
			skipped++
			continue
		}
		records = append(records, model.AttendanceRecord{
			CourseID:  course.ID,
			StudentID: entry.StudentID,
			Date:      req.Date,
			Present:   entry.Present,
		})
	}

	if len(records) > 0 {
		err := h.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "course_id"}, {Name: "student_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"present"}),
		}).Create(&records).Error
		if err != nil {
			return response.InternalServerError(c, "Failed to save attendance")
		}
	}

	return response.SuccessWithMessage(c, "Attendance recorded", fiber.Map{
		"recorded": len(records),
		"skipped":  skipped,
	})
}

// GetAttendance handles GET /api/v1/courses/:id/attendance.
// Faculty see the whole course; students see only their own records.
func (h *CourseHandler) GetAttendance(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	course, err := h.visibleCourse(c, user)
	if err != nil {
		return err
	}

	query := h.db.Model(&model.AttendanceRecord{}).Where("course_id = ?", course.ID)
	if user.Role == model.RoleStudent {
		query = query.Where("student_id = ?", user.ID)
	}
	if date := c.Query("date"); date != "" {
		query = query.Where("date = ?", date)
	}

	var records []model.AttendanceRecord
	if err := query.Order("date DESC").Find(&records).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch attendance")
	}

	// Students also get their percentage
	if user.Role == model.RoleStudent {
		var total, present int64
		if err := h.db.Model(&model.AttendanceRecord{}).
			Where("course_id = ? AND student_id = ?", course.ID, user.ID).
			Count(&total).Error; err != nil {
			return response.InternalServerError(c, "Failed to compute attendance")
		}
		if err := h.db.Model(&model.AttendanceRecord{}).
			Where("course_id = ? AND student_id = ? AND present = ?", course.ID, user.ID, true).
			Count(&present).Error; err != nil {
			return response.InternalServerError(c, "Failed to compute attendance")
		}
		percentage := 0.0
		if total > 0 {
			percentage = float64(present) / float64(total) * 100
		}
		return response.Success(c, fiber.Map{
			"records":    records,
			"total":      total,
			"present":    present,
			"percentage": percentage,
		})
	}

	return response.Success(c, records)
}
