package course

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/campus-portal-api/model"
	"github.com/sahilchouksey/campus-portal-api/services"
	"github.com/sahilchouksey/campus-portal-api/services/storage"
	"github.com/sahilchouksey/campus-portal-api/utils/dberrors"
	"github.com/sahilchouksey/campus-portal-api/utils/middleware"
	"github.com/sahilchouksey/campus-portal-api/utils/response"
	"github.com/sahilchouksey/campus-portal-api/utils/validation"
	"gorm.io/gorm"
)

// CourseHandler handles course-related requests
type CourseHandler struct {
	db                *gorm.DB
	validator         *validation.Validator
	enrollmentService *services.EnrollmentService
	activityService   *services.ActivityService
	storageClient     *storage.SpacesClient
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(db *gorm.DB, storageClient *storage.SpacesClient) *CourseHandler {
	return &CourseHandler{
		db:                db,
		validator:         validation.NewValidator(),
		enrollmentService: services.NewEnrollmentService(db),
		activityService:   services.NewActivityService(db),
		storageClient:     storageClient,
	}
}

// CreateCourseRequest represents the request body for creating a course
type CreateCourseRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=255"`
	Code        string `json:"code" validate:"required,min=2,max=20"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	Department  string `json:"department" validate:"omitempty,max=100"`
	Credits     int    `json:"credits" validate:"omitempty,min=1,max=10"`
}

// UpdateCourseRequest represents the request body for updating a course
type UpdateCourseRequest struct {
	Title       string  `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Credits     *int    `json:"credits" validate:"omitempty,min=1,max=10"`
	IsActive    *bool   `json:"is_active"`
}

// ListCourses handles GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	search := c.Query("search", "")
	department := c.Query("department", "")

	query := h.db.Model(&model.Course{})

	if search != "" {
		query = query.Where("title ILIKE ? OR code ILIKE ?",
			"%"+search+"%", "%"+search+"%")
	}
	if department != "" {
		query = query.Where("department = ?", department)
	}
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count courses")
	}

	offset := (page - 1) * limit
	pagination := response.CalculatePagination(page, limit, total)

	var courses []model.Course
	if err := query.Preload("Faculty").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&courses).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}

	return response.Paginated(c, courses, pagination)
}

// GetCourse handles GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	id := c.Params("id")

	var course model.Course
	if err := h.db.Preload("Faculty").
		Preload("Materials").
		Preload("Assignments").
		First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	return response.Success(c, course)
}

// CreateCourse handles POST /api/v1/courses.
// Existing students of the course's department are enrolled automatically.
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	// Faculty create courses in their own department; admins must say whose
	department := user.Department
	if user.Role == model.RoleAdmin {
		if req.Department == "" {
			return response.BadRequest(c, "Department is required")
		}
		department = req.Department
	}

	credits := req.Credits
	if credits == 0 {
		credits = 4
	}

	course := model.Course{
		Title:       req.Title,
		Code:        req.Code,
		Description: req.Description,
		Department:  department,
		FacultyID:   user.ID,
		Credits:     credits,
		IsActive:    true,
	}

	if err := h.db.Create(&course).Error; err != nil {
		if dberrors.IsUniqueViolation(err) {
			return response.Conflict(c, "A course with this code already exists")
		}
		return response.InternalServerError(c, "Failed to create course")
	}

	enrolled, err := h.enrollmentService.EnrollDepartmentStudentsInCourse(c.Context(), &course)
	if err != nil {
		// The course exists either way; report the partial outcome
		return response.SuccessWithMessage(c, "Course created but auto-enrollment failed", fiber.Map{
			"course":            course,
			"students_enrolled": 0,
		})
	}

	h.activityService.Record(c.Context(), model.ActivityCourseCreated,
		"Course "+course.Code+" created", user.ID, "courses", course.ID,
		map[string]interface{}{"department": course.Department, "students_enrolled": enrolled})

	return response.Created(c, fiber.Map{
		"course":            course,
		"students_enrolled": enrolled,
	})
}

// UpdateCourse handles PUT /api/v1/courses/:id
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	course, err := h.ownedCourse(c, user)
	if err != nil {
		return err
	}

	var req UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	updates := map[string]interface{}{}
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Credits != nil {
		updates["credits"] = *req.Credits
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return response.Success(c, course)
	}

	if err := h.db.Model(course).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update course")
	}

	return response.Success(c, course)
}

// DeleteCourse handles DELETE /api/v1/courses/:id
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	course, err := h.ownedCourse(c, user)
	if err != nil {
		return err
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", course.ID).Delete(&model.CourseEnrollment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", course.ID).Delete(&model.AttendanceRecord{}).Error; err != nil {
			return err
		}
		var assignmentIDs []uint
		if err := tx.Model(&model.Assignment{}).Where("course_id = ?", course.ID).Pluck("id", &assignmentIDs).Error; err != nil {
			return err
		}
		if len(assignmentIDs) > 0 {
			if err := tx.Where("assignment_id IN ?", assignmentIDs).Delete(&model.AssignmentSubmission{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("course_id = ?", course.ID).Delete(&model.Assignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", course.ID).Delete(&model.CourseMaterial{}).Error; err != nil {
			return err
		}
		return tx.Delete(course).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to delete course")
	}

	return response.SuccessWithMessage(c, "Course deleted successfully", nil)
}

// Enroll handles POST /api/v1/courses/:id/enroll (student self-enrollment)
func (h *CourseHandler) Enroll(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	if err := h.enrollmentService.Enroll(c.Context(), user, uint(courseID)); err != nil {
		switch {
		case errors.Is(err, services.ErrEnrollOnlyStudents):
			return response.Forbidden(c, "Only students can enroll in courses")
		case errors.Is(err, gorm.ErrRecordNotFound):
			return response.NotFound(c, "Course not found")
		case errors.Is(err, services.ErrCourseNotActive):
			return response.BadRequest(c, "Course is not open for enrollment")
		case errors.Is(err, services.ErrWrongDepartment):
			return response.Forbidden(c, "Course belongs to a different department")
		case errors.Is(err, services.ErrAlreadyEnrolled):
			return response.Conflict(c, "Already enrolled in this course")
		}
		return response.InternalServerError(c, "Failed to enroll in course")
	}

	return response.SuccessWithMessage(c, "Enrolled successfully", nil)
}

// Unenroll handles DELETE /api/v1/courses/:id/enroll
func (h *CourseHandler) Unenroll(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	if err := h.enrollmentService.Unenroll(c.Context(), user.ID, uint(courseID)); err != nil {
		if errors.Is(err, services.ErrNotEnrolled) {
			return response.NotFound(c, "Not enrolled in this course")
		}
		return response.InternalServerError(c, "Failed to unenroll from course")
	}

	return response.SuccessWithMessage(c, "Unenrolled successfully", nil)
}

// ListEnrollments handles GET /api/v1/courses/:id/students
func (h *CourseHandler) ListEnrollments(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	course, err := h.ownedCourse(c, user)
	if err != nil {
		return err
	}

	var enrollments []model.CourseEnrollment
	if err := h.db.Preload("Student").
		Where("course_id = ?", course.ID).
		Find(&enrollments).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch enrollments")
	}

	students := make([]model.User, 0, len(enrollments))
	for _, e := range enrollments {
		students = append(students, e.Student)
	}

	return response.Success(c, fiber.Map{
		"course_id": course.ID,
		"count":     len(students),
		"students":  students,
	})
}

// MyCourses handles GET /api/v1/courses/mine
func (h *CourseHandler) MyCourses(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var courses []model.Course
	query := h.db.Model(&model.Course{}).Preload("Faculty")

	switch user.Role {
	case model.RoleStudent:
		query = query.
			Joins("JOIN course_enrollments ON course_enrollments.course_id = courses.id").
			Where("course_enrollments.student_id = ?", user.ID)
	case model.RoleFaculty:
		query = query.Where("faculty_id = ?", user.ID)
	}

	if err := query.Order("courses.created_at DESC").Find(&courses).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}

	return response.Success(c, courses)
}

// ownedCourse loads the course from the :id param and checks the caller may
// manage it. Admins may manage any course; faculty only their own.
func (h *CourseHandler) ownedCourse(c *fiber.Ctx, user *model.User) (*model.Course, error) {
	var course model.Course
	if err := h.db.First(&course, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NotFound(c, "Course not found")
		}
		return nil, response.InternalServerError(c, "Failed to fetch course")
	}

	if user.Role != model.RoleAdmin && course.FacultyID != user.ID {
		return nil, response.Forbidden(c, "You do not manage this course")
	}

	return &course, nil
}
