package course

import (
	"errors"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/campus-portal-api/model"
	"github.com/sahilchouksey/campus-portal-api/services/storage"
	"github.com/sahilchouksey/campus-portal-api/utils/middleware"
	"github.com/sahilchouksey/campus-portal-api/utils/pdfvalidation"
	"github.com/sahilchouksey/campus-portal-api/utils/response"
	"gorm.io/gorm"
)

// ListMaterials handles GET /api/v1/courses/:id/materials
func (h *CourseHandler) ListMaterials(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	course, err := h.visibleCourse(c, user)
	if err != nil {
		return err
	}

	var materials []model.CourseMaterial
	if err := h.db.Where("course_id = ?", course.ID).
		Order("created_at DESC").
		Find(&materials).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch materials")
	}

	return response.Success(c, materials)
}

// UploadMaterial handles POST /api/v1/courses/:id/materials.
// The file goes to object storage; only metadata lands in the database.
func (h *CourseHandler) UploadMaterial(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	course, err := h.ownedCourse(c, user)
	if err != nil {
		return err
	}

	title := c.FormValue("title")
	if title == "" {
		return response.BadRequest(c, "Title is required")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "File is required")
	}

	src, err := file.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to open file")
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return response.InternalServerError(c, "Failed to read file")
	}

	if strings.HasSuffix(strings.ToLower(file.Filename), ".pdf") {
		result, err := pdfvalidation.ValidatePDFBytes(content, pdfvalidation.MaterialLimits)
		if err != nil {
			return response.InternalServerError(c, "Failed to validate PDF: "+err.Error())
		}
		if !result.Valid {
			return response.BadRequest(c, result.Error)
		}
	} else if file.Size > int64(pdfvalidation.MaterialLimits.MaxFileSizeMB)*1024*1024 {
		return response.BadRequest(c, "File size exceeds the maximum allowed")
	}

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := storage.ObjectKey("materials", course.ID, file.Filename)
	if err := h.storageClient.Upload(c.Context(), key, content, contentType); err != nil {
		return response.InternalServerError(c, "Failed to store file")
	}

	material := model.CourseMaterial{
		CourseID:    course.ID,
		Title:       title,
		Description: c.FormValue("description"),
		FileName:    file.Filename,
		ContentType: contentType,
		FileSize:    file.Size,
		StorageKey:  key,
		UploadedBy:  user.ID,
	}

	if err := h.db.Create(&material).Error; err != nil {
		// Best effort: don't leave an orphaned object behind
		_ = h.storageClient.Delete(c.Context(), key)
		return response.InternalServerError(c, "Failed to save material")
	}

	h.activityService.Record(c.Context(), model.ActivityMaterialUploaded,
		"Material uploaded to "+course.Code, user.ID, "course_materials", material.ID,
		map[string]interface{}{"file_name": file.Filename, "file_size": file.Size})

	return response.Created(c, material)
}

// DownloadMaterial handles GET /api/v1/courses/:id/materials/:material_id/download
func (h *CourseHandler) DownloadMaterial(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	course, err := h.visibleCourse(c, user)
	if err != nil {
		return err
	}

	var material model.CourseMaterial
	if err := h.db.Where("id = ? AND course_id = ?", c.Params("material_id"), course.ID).
		First(&material).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Material not found")
		}
		return response.InternalServerError(c, "Failed to fetch material")
	}

	content, err := h.storageClient.Download(c.Context(), material.StorageKey)
	if err != nil {
		return response.InternalServerError(c, "Failed to retrieve file")
	}

	c.Set(fiber.HeaderContentType, material.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+material.FileName+`"`)
	return c.Send(content)
}

// DeleteMaterial handles DELETE /api/v1/courses/:id/materials/:material_id
func (h *CourseHandler) DeleteMaterial(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	course, err := h.ownedCourse(c, user)
	if err != nil {
		return err
	}

	var material model.CourseMaterial
	if err := h.db.Where("id = ? AND course_id = ?", c.Params("material_id"), course.ID).
		First(&material).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Material not found")
		}
		return response.InternalServerError(c, "Failed to fetch material")
	}

	if err := h.db.Delete(&material).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete material")
	}

	// Storage cleanup is best effort; the row is already gone
	_ = h.storageClient.Delete(c.Context(), material.StorageKey)

	return response.SuccessWithMessage(c, "Material deleted successfully", nil)
}

// visibleCourse loads the course from the :id param and checks the caller may
// view its contents: enrolled students, the owning faculty, or any admin.
func (h *CourseHandler) visibleCourse(c *fiber.Ctx, user *model.User) (*model.Course, error) {
	var course model.Course
	if err := h.db.First(&course, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NotFound(c, "Course not found")
		}
		return nil, response.InternalServerError(c, "Failed to fetch course")
	}

	switch user.Role {
	case model.RoleAdmin:
		return &course, nil
	case model.RoleFaculty:
		if course.FacultyID == user.ID {
			return &course, nil
		}
	case model.RoleStudent:
		var count int64
		if err := h.db.Model(&model.CourseEnrollment{}).
			Where("course_id = ? AND student_id = ?", course.ID, user.ID).
			Count(&count).Error; err != nil {
			return nil, response.InternalServerError(c, "Failed to check enrollment")
		}
		if count > 0 {
			return &course, nil
		}
	}

	return nil, response.Forbidden(c, "You do not have access to this course")
}
