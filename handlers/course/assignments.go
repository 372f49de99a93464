package course

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/campus-portal-api/model"
	"github.com/sahilchouksey/campus-portal-api/services/storage"
	"github.com/sahilchouksey/campus-portal-api/utils/middleware"
	"github.com/sahilchouksey/campus-portal-api/utils/pdfvalidation"
	"github.com/sahilchouksey/campus-portal-api/utils/response"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateAssignmentRequest represents the request body for creating an assignment
type CreateAssignmentRequest struct {
	Title       string    `json:"title" validate:"required,min=3,max=255"`
	Description string    `json:"description" validate:"omitempty,max=5000"`
	DueDate     time.Time `json:"due_date" validate:"required"`
	MaxMarks    int       `json:"max_marks" validate:"omitempty,min=1,max=1000"`
}

// GradeSubmissionRequest represents the request body for grading a submission
type GradeSubmissionRequest struct {
	Marks    int    `json:"marks" validate:"min=0"`
	Feedback string `json:"feedback" validate:"omitempty,max=5000"`
}

// ListAssignments handles GET /api/v1/courses/:id/assignments
func (h *CourseHandler) ListAssignments(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	course, err := h.visibleCourse(c, user)
	if err != nil {
		return err
	}

	var assignments []model.Assignment
	if err := h.db.Where("course_id = ?", course.ID).
		Order("due_date ASC").
		Find(&assignments).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch assignments")
	}

	return response.Success(c, assignments)
}

// CreateAssignment handles POST /api/v1/courses/:id/assignments
func (h *CourseHandler) CreateAssignment(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	course, err := h.ownedCourse(c, user)
	if err != nil {
		return err
	}

	var req CreateAssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	maxMarks := req.MaxMarks
	if maxMarks == 0 {
		maxMarks = 100
	}

	assignment := model.Assignment{
		CourseID:    course.ID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		MaxMarks:    maxMarks,
	}

	if err := h.db.Create(&assignment).Error; err != nil {
		return response.InternalServerError(c, "Failed to create assignment")
	}

	return response.Created(c, assignment)
}

// DeleteAssignment handles DELETE /api/v1/courses/:id/assignments/:assignment_id
func (h *CourseHandler) DeleteAssignment(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	course, err := h.ownedCourse(c, user)
	if err != nil {
		return err
	}

	var assignment model.Assignment
	if err := h.db.Where("id = ? AND course_id = ?", c.Params("assignment_id"), course.ID).
		First(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Assignment not found")
		}
		return response.InternalServerError(c, "Failed to fetch assignment")
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assignment_id = ?", assignment.ID).Delete(&model.AssignmentSubmission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&assignment).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to delete assignment")
	}

	return response.SuccessWithMessage(c, "Assignment deleted successfully", nil)
}

// SubmitAssignment handles POST /api/v1/courses/:id/assignments/:assignment_id/submissions.
// Resubmitting overwrites the student's previous submission.
func (h *CourseHandler) SubmitAssignment(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}
	if user.Role != model.RoleStudent {
		return response.Forbidden(c, "Only students can submit assignments")
	}

	course, err := h.visibleCourse(c, user)
	if err != nil {
		return err
	}

	var assignment model.Assignment
	if err := h.db.Where("id = ? AND course_id = ?", c.Params("assignment_id"), course.ID).
		First(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Assignment not found")
		}
		return response.InternalServerError(c, "Failed to fetch assignment")
	}

	if time.Now().After(assignment.DueDate) {
		return response.BadRequest(c, "The submission deadline has passed")
	}

	submission := model.AssignmentSubmission{
		AssignmentID: assignment.ID,
		StudentID:    user.ID,
		Content:      c.FormValue("content"),
	}

	if file, err := c.FormFile("file"); err == nil {
		src, err := file.Open()
		if err != nil {
			return response.InternalServerError(c, "Failed to open file")
		}
		content, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return response.InternalServerError(c, "Failed to read file")
		}

		if strings.HasSuffix(strings.ToLower(file.Filename), ".pdf") {
			result, err := pdfvalidation.ValidatePDFBytes(content, pdfvalidation.SubmissionLimits)
			if err != nil {
				return response.InternalServerError(c, "Failed to validate PDF: "+err.Error())
			}
			if !result.Valid {
				return response.BadRequest(c, result.Error)
			}
		} else if file.Size > int64(pdfvalidation.SubmissionLimits.MaxFileSizeMB)*1024*1024 {
			return response.BadRequest(c, "File size exceeds the maximum allowed")
		}

		contentType := file.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		key := storage.ObjectKey("submissions", user.ID, file.Filename)
		if err := h.storageClient.Upload(c.Context(), key, content, contentType); err != nil {
			return response.InternalServerError(c, "Failed to store file")
		}
		submission.FileName = file.Filename
		submission.StorageKey = key
	}

	if submission.Content == "" && submission.StorageKey == "" {
		return response.BadRequest(c, "A submission needs content or a file")
	}

	// One submission per student per assignment
	err = h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "assignment_id"}, {Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "file_name", "storage_key", "updated_at"}),
	}).Create(&submission).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to save submission")
	}

	return response.Created(c, submission)
}

// ListSubmissions handles GET /api/v1/courses/:id/assignments/:assignment_id/submissions
func (h *CourseHandler) ListSubmissions(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	course, err := h.ownedCourse(c, user)
	if err != nil {
		return err
	}

	var submissions []model.AssignmentSubmission
	if err := h.db.Preload("Student").
		Joins("JOIN assignments ON assignments.id = assignment_submissions.assignment_id").
		Where("assignment_submissions.assignment_id = ? AND assignments.course_id = ?",
			c.Params("assignment_id"), course.ID).
		Find(&submissions).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch submissions")
	}

	return response.Success(c, submissions)
}

// GradeSubmission handles PATCH /api/v1/courses/:id/assignments/:assignment_id/submissions/:submission_id
func (h *CourseHandler) GradeSubmission(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	course, err := h.ownedCourse(c, user)
	if err != nil {
		return err
	}

	var req GradeSubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	var assignment model.Assignment
	if err := h.db.Where("id = ? AND course_id = ?", c.Params("assignment_id"), course.ID).
		First(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Assignment not found")
		}
		return response.InternalServerError(c, "Failed to fetch assignment")
	}

	if req.Marks < 0 || req.Marks > assignment.MaxMarks {
		return response.BadRequest(c, "Marks must be between 0 and the assignment maximum")
	}

	var submission model.AssignmentSubmission
	if err := h.db.Where("id = ? AND assignment_id = ?", c.Params("submission_id"), assignment.ID).
		First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Submission not found")
		}
		return response.InternalServerError(c, "Failed to fetch submission")
	}

	submission.Marks = &req.Marks
	submission.Feedback = req.Feedback
	if err := h.db.Save(&submission).Error; err != nil {
		return response.InternalServerError(c, "Failed to grade submission")
	}

	return response.Success(c, submission)
}
