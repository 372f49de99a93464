package notification

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/campus-portal-api/model"
	"github.com/sahilchouksey/campus-portal-api/services"
	"github.com/sahilchouksey/campus-portal-api/services/storage"
	"github.com/sahilchouksey/campus-portal-api/utils/middleware"
	"github.com/sahilchouksey/campus-portal-api/utils/pdfvalidation"
	"github.com/sahilchouksey/campus-portal-api/utils/response"
	"github.com/sahilchouksey/campus-portal-api/utils/validation"
	"gorm.io/gorm"
)

// NotificationHandler handles notification-related requests
type NotificationHandler struct {
	db                  *gorm.DB
	validator           *validation.Validator
	notificationService *services.NotificationService
	activityService     *services.ActivityService
	storageClient       *storage.SpacesClient
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(db *gorm.DB, storageClient *storage.SpacesClient) *NotificationHandler {
	return &NotificationHandler{
		db:                  db,
		validator:           validation.NewValidator(),
		notificationService: services.NewNotificationService(db),
		activityService:     services.NewActivityService(db),
		storageClient:       storageClient,
	}
}

// CreateNotificationRequest represents the request body for sending a notification.
// RecipientCode addresses a single student by user code when the audience
// is "student".
type CreateNotificationRequest struct {
	Title         string `json:"title" validate:"required,min=3,max=255"`
	Message       string `json:"message" validate:"required,max=10000"`
	Audience      string `json:"audience" validate:"required"`
	Department    string `json:"department" validate:"omitempty,max=100"`
	RecipientCode string `json:"recipient_code" validate:"omitempty,usercode"`
	Priority      string `json:"priority" validate:"omitempty,oneof=low normal high"`
}

// BroadcastRequest represents the request body for an admin broadcast
type BroadcastRequest struct {
	Title    string `json:"title" validate:"required,min=3,max=255"`
	Message  string `json:"message" validate:"required,max=10000"`
	Priority string `json:"priority" validate:"omitempty,oneof=low normal high"`
}

// ListNotifications handles GET /api/v1/notifications.
// The visibility filter is applied in the query, so invisible
// notifications never leave the database.
func (h *NotificationHandler) ListNotifications(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	notifications, total, err := h.notificationService.ListVisible(c.Context(), user, services.ListNotificationsOptions{
		UnreadOnly: c.Query("unread") == "true",
		Priority:   c.Query("priority"),
		Limit:      limit,
		Offset:     (page - 1) * limit,
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch notifications")
	}

	return response.Paginated(c, notifications, response.CalculatePagination(page, limit, total))
}

// GetNotification handles GET /api/v1/notifications/:id
func (h *NotificationHandler) GetNotification(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid notification ID")
	}

	notification, err := h.notificationService.GetVisible(c.Context(), uint(id), user)
	if err != nil {
		if errors.Is(err, services.ErrNotificationNotFound) {
			return response.NotFound(c, "Notification not found")
		}
		return response.InternalServerError(c, "Failed to fetch notification")
	}

	return response.Success(c, notification)
}

// GetUnreadCount handles GET /api/v1/notifications/unread-count
func (h *NotificationHandler) GetUnreadCount(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	count, err := h.notificationService.GetUnreadCount(c.Context(), user)
	if err != nil {
		return response.InternalServerError(c, "Failed to count notifications")
	}

	return response.Success(c, fiber.Map{"unread_count": count})
}

// MarkAsRead handles POST /api/v1/notifications/:id/read.
// Marking an already-read notification succeeds and changes nothing.
func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid notification ID")
	}

	if err := h.notificationService.MarkAsRead(c.Context(), uint(id), user); err != nil {
		if errors.Is(err, services.ErrNotificationNotFound) {
			return response.NotFound(c, "Notification not found")
		}
		return response.InternalServerError(c, "Failed to mark notification as read")
	}

	return response.SuccessWithMessage(c, "Notification marked as read", nil)
}

// MarkAllAsRead handles POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	marked, err := h.notificationService.MarkAllAsRead(c.Context(), user)
	if err != nil {
		return response.InternalServerError(c, "Failed to mark notifications as read")
	}

	return response.Success(c, fiber.Map{"marked_read": marked})
}

// CreateNotification handles POST /api/v1/notifications (faculty and admin)
func (h *NotificationHandler) CreateNotification(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req CreateNotificationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}
	if !model.IsValidAudience(req.Audience) {
		return response.BadRequest(c, "Invalid audience. Must be one of: all, students, faculty, department, student, admin")
	}

	// A single-student notification is addressed by user code
	var recipientID *uint
	if model.NotificationAudience(req.Audience) == model.AudienceStudent {
		if req.RecipientCode == "" {
			return response.BadRequest(c, "recipient_code is required when the audience is 'student'")
		}
		var recipient model.User
		if err := h.db.Where("user_code = ? AND role = ?", req.RecipientCode, model.RoleStudent).
			First(&recipient).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NotFound(c, "No student with this user code")
			}
			return response.InternalServerError(c, "Failed to look up recipient")
		}
		if user.Role == model.RoleFaculty && recipient.Department != user.Department {
			return response.Forbidden(c, "You can only notify students in your own department")
		}
		recipientID = &recipient.ID
	}

	// Faculty may only address their own department
	if user.Role == model.RoleFaculty {
		switch model.NotificationAudience(req.Audience) {
		case model.AudienceDepartment:
			if req.Department != "" && req.Department != user.Department {
				return response.Forbidden(c, "You can only notify your own department")
			}
			req.Department = user.Department
		case model.AudienceStudents, model.AudienceStudent:
			// Allowed (single students are department-checked above)
		default:
			return response.Forbidden(c, "Faculty can only notify students or their department")
		}
	}

	notification, err := h.notificationService.CreateNotification(c.Context(), services.CreateNotificationRequest{
		Title:       req.Title,
		Message:     req.Message,
		SenderID:    user.ID,
		Audience:    model.NotificationAudience(req.Audience),
		Department:  req.Department,
		RecipientID: recipientID,
		Priority:    model.NotificationPriority(req.Priority),
	})
	if err != nil {
		if errors.Is(err, services.ErrDepartmentAudience) {
			return response.BadRequest(c, "Department must be set exactly when the audience is 'department'")
		}
		if errors.Is(err, services.ErrRecipientRequired) {
			return response.BadRequest(c, "recipient_code must be set exactly when the audience is 'student'")
		}
		if errors.Is(err, services.ErrRecipientNotStudent) {
			return response.NotFound(c, "No student with this user code")
		}
		return response.InternalServerError(c, "Failed to create notification")
	}

	h.activityService.Record(c.Context(), model.ActivityNotificationSent,
		"Notification sent: "+notification.Title, user.ID, "notifications", notification.ID,
		map[string]interface{}{"audience": req.Audience, "department": req.Department})

	return response.Created(c, notification)
}

// Broadcast handles POST /api/v1/admin/broadcast — a campus-wide
// announcement to every user, admin only (route-gated).
func (h *NotificationHandler) Broadcast(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req BroadcastRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	notification, err := h.notificationService.CreateNotification(c.Context(), services.CreateNotificationRequest{
		Title:    req.Title,
		Message:  req.Message,
		SenderID: user.ID,
		Audience: model.AudienceAll,
		Priority: model.NotificationPriority(req.Priority),
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to send broadcast")
	}

	h.activityService.Record(c.Context(), model.ActivityNotificationSent,
		"Broadcast sent: "+notification.Title, user.ID, "notifications", notification.ID,
		map[string]interface{}{"audience": string(model.AudienceAll), "broadcast": true})

	return response.Created(c, notification)
}

// DeleteNotification handles DELETE /api/v1/notifications/:id
// (sender or admin only)
func (h *NotificationHandler) DeleteNotification(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid notification ID")
	}

	if err := h.notificationService.DeleteNotification(c.Context(), uint(id), user); err != nil {
		if errors.Is(err, services.ErrNotificationNotFound) {
			return response.NotFound(c, "Notification not found")
		}
		return response.InternalServerError(c, "Failed to delete notification")
	}

	return response.SuccessWithMessage(c, "Notification deleted successfully", nil)
}

// UploadAttachment handles POST /api/v1/notifications/:id/attachments
func (h *NotificationHandler) UploadAttachment(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var notification model.Notification
	if err := h.db.First(&notification, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Notification not found")
		}
		return response.InternalServerError(c, "Failed to fetch notification")
	}
	if user.Role != model.RoleAdmin && notification.SenderID != user.ID {
		return response.Forbidden(c, "Only the sender or an admin can attach files")
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
		result, err := pdfvalidation.ValidatePDFBytes(content, pdfvalidation.AttachmentLimits)
		if err != nil {
			return response.InternalServerError(c, "Failed to validate PDF: "+err.Error())
		}
		if !result.Valid {
			return response.BadRequest(c, result.Error)
		}
	} else if file.Size > int64(pdfvalidation.AttachmentLimits.MaxFileSizeMB)*1024*1024 {
		return response.BadRequest(c, "File size exceeds the maximum allowed")
	}

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := storage.ObjectKey("attachments", notification.ID, file.Filename)
	if err := h.storageClient.Upload(c.Context(), key, content, contentType); err != nil {
		return response.InternalServerError(c, "Failed to store file")
	}

	attachment := model.NotificationAttachment{
		NotificationID: notification.ID,
		FileName:       file.Filename,
		ContentType:    contentType,
		FileSize:       file.Size,
		StorageKey:     key,
	}

	if err := h.db.Create(&attachment).Error; err != nil {
		_ = h.storageClient.Delete(c.Context(), key)
		return response.InternalServerError(c, "Failed to save attachment")
	}

	return response.Created(c, attachment)
}

// DownloadAttachment handles GET /api/v1/notifications/:id/attachments/:attachment_id/download.
// Visibility of the parent notification gates access to its attachments.
func (h *NotificationHandler) DownloadAttachment(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid notification ID")
	}

	notification, err := h.notificationService.GetVisible(c.Context(), uint(id), user)
	if err != nil {
		if errors.Is(err, services.ErrNotificationNotFound) {
			return response.NotFound(c, "Notification not found")
		}
		return response.InternalServerError(c, "Failed to fetch notification")
	}

	var attachment model.NotificationAttachment
	if err := h.db.Where("id = ? AND notification_id = ?", c.Params("attachment_id"), notification.ID).
		First(&attachment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Attachment not found")
		}
		return response.InternalServerError(c, "Failed to fetch attachment")
	}

	content, err := h.storageClient.Download(c.Context(), attachment.StorageKey)
	if err != nil {
		return response.InternalServerError(c, "Failed to retrieve file")
	}

	c.Set(fiber.HeaderContentType, attachment.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+attachment.FileName+`"`)
	return c.Send(content)
}
