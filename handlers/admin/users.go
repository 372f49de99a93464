package admin

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/campus-portal-api/model"
	"github.com/sahilchouksey/campus-portal-api/services"
	authutil "github.com/sahilchouksey/campus-portal-api/utils/auth"
	"github.com/sahilchouksey/campus-portal-api/utils/middleware"
	"github.com/sahilchouksey/campus-portal-api/utils/response"
	"github.com/sahilchouksey/campus-portal-api/utils/validation"
	"gorm.io/gorm"
)

// AdminHandler handles admin-only user management requests
type AdminHandler struct {
	db              *gorm.DB
	validator       *validation.Validator
	userService     *services.UserService
	cascadeService  *services.CascadeService
	activityService *services.ActivityService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{
		db:              db,
		validator:       validation.NewValidator(),
		userService:     services.NewUserService(db),
		cascadeService:  services.NewCascadeService(db),
		activityService: services.NewActivityService(db),
	}
}

// CreateUserRequest represents the request body for creating a user as admin
type CreateUserRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	Name       string `json:"name" validate:"required,min=2"`
	Role       string `json:"role" validate:"required"`
	Department string `json:"department" validate:"omitempty,max=100"`
}

// UpdateUserRequest represents the request body for updating a user as admin
type UpdateUserRequest struct {
	Name       string `json:"name" validate:"omitempty,min=2"`
	Department string `json:"department" validate:"omitempty,max=100"`
	IsActive   *bool  `json:"is_active"`
}

// ListUsers handles GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	search := c.Query("search", "")

	query := h.db.Model(&model.User{})

	if role := c.Query("role"); role != "" {
		if !model.IsValidRole(role) {
			return response.BadRequest(c, "Invalid role filter")
		}
		query = query.Where("role = ?", role)
	}
	if department := c.Query("department"); department != "" {
		query = query.Where("department = ?", department)
	}
	if search != "" {
		query = query.Where("name ILIKE ? OR email ILIKE ? OR user_code ILIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count users")
	}

	offset := (page - 1) * limit
	pagination := response.CalculatePagination(page, limit, total)

	var users []model.User
	if err := query.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch users")
	}

	return response.Paginated(c, users, pagination)
}

// GetUser handles GET /api/v1/admin/users/:id
func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	var user model.User
	if err := h.db.First(&user, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to fetch user")
	}

	return response.Success(c, user)
}

// CreateUser handles POST /api/v1/admin/users.
// Unlike public registration, admins can create users of any role.
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	admin, ok := middleware.GetUser(c)
	if !ok || admin == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}
	if !model.IsValidRole(req.Role) {
		return response.BadRequest(c, "Invalid role. Must be one of: admin, faculty, student")
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	user := model.User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         model.UserRole(req.Role),
		Department:   req.Department,
		IsActive:     true,
	}

	if err := h.userService.CreateUser(c.Context(), &user); err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			return response.Conflict(c, "Email is already registered")
		case errors.Is(err, services.ErrDepartmentRequired):
			return response.BadRequest(c, "Department is required for this role")
		}
		return response.InternalServerError(c, "Failed to create user")
	}

	h.activityService.Record(c.Context(), model.ActivityUserRegistered,
		"User "+user.UserCode+" created by admin", admin.ID, "users", user.ID,
		map[string]interface{}{"role": user.Role})

	return response.Created(c, user)
}

// UpdateUser handles PUT /api/v1/admin/users/:id.
// Role and user code are immutable; deactivation locks the user out
// without touching their data.
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	admin, ok := middleware.GetUser(c)
	if !ok || admin == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var user model.User
	if err := h.db.First(&user, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to fetch user")
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Department != "" {
		updates["department"] = req.Department
	}
	if req.IsActive != nil {
		if user.ID == admin.ID && !*req.IsActive {
			return response.BadRequest(c, "You cannot deactivate your own account")
		}
		updates["is_active"] = *req.IsActive
		// Deactivation also invalidates outstanding tokens
		if !*req.IsActive {
			updates["token_version"] = user.TokenVersion + 1
		}
	}
	if len(updates) == 0 {
		return response.Success(c, user)
	}

	if err := h.db.Model(&user).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update user")
	}

	h.activityService.Record(c.Context(), model.ActivityUserUpdated,
		"User "+user.UserCode+" updated by admin", admin.ID, "users", user.ID, nil)

	return response.Success(c, user)
}

// DeleteUser handles DELETE /api/v1/admin/users/:id.
// All dependent records are cleaned up first; a failed cleanup step is
// reported but never blocks removal of the user itself.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	admin, ok := middleware.GetUser(c)
	if !ok || admin == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var user model.User
	if err := h.db.First(&user, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to fetch user")
	}

	if user.ID == admin.ID {
		return response.BadRequest(c, "You cannot delete your own account")
	}

	result, err := h.cascadeService.DeleteUser(c.Context(), &user)
	if err != nil {
		return response.InternalServerError(c, "Failed to delete user")
	}

	h.activityService.Record(c.Context(), model.ActivityUserDeleted,
		"User "+user.UserCode+" deleted by admin", admin.ID, "users", user.ID,
		map[string]interface{}{
			"cleaned_steps":  result.CleanedSteps,
			"cleanup_errors": result.CleanupErrors,
		})

	return response.SuccessWithMessage(c, "User deleted successfully", fiber.Map{
		"user_code":      user.UserCode,
		"cleaned_steps":  result.CleanedSteps,
		"cleanup_errors": result.CleanupErrors,
		"failed_steps":   result.FailedSteps,
	})
}

// PreviewUserCode handles GET /api/v1/admin/users/next-code?role=student.
// Useful for admission forms that want to show the code up front; the
// code is only reserved once the user is actually created.
func (h *AdminHandler) PreviewUserCode(c *fiber.Ctx) error {
	role := c.Query("role", "student")
	if !model.IsValidRole(role) {
		return response.BadRequest(c, "Invalid role. Must be one of: admin, faculty, student")
	}

	code, err := h.userService.NextUserCode(c.Context(), model.UserRole(role))
	if err != nil {
		return response.InternalServerError(c, "Failed to compute next user code")
	}

	return response.Success(c, fiber.Map{"role": role, "next_code": code})
}
