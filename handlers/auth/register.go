package auth

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/campus-portal-api/model"
	"github.com/sahilchouksey/campus-portal-api/services"
	authutil "github.com/sahilchouksey/campus-portal-api/utils/auth"
	"github.com/sahilchouksey/campus-portal-api/utils/middleware"
	"github.com/sahilchouksey/campus-portal-api/utils/response"
	"gorm.io/gorm"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	db                   *gorm.DB
	jwtManager           *authutil.JWTManager
	blacklistService     *authutil.BlacklistService
	userService          *services.UserService
	activityService      *services.ActivityService
	bruteForceProtection *middleware.BruteForceProtection
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, jwtManager *authutil.JWTManager, bruteForceProtection *middleware.BruteForceProtection) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		jwtManager:           jwtManager,
		blacklistService:     authutil.NewBlacklistService(db),
		userService:          services.NewUserService(db),
		activityService:      services.NewActivityService(db),
		bruteForceProtection: bruteForceProtection,
	}
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	Name       string `json:"name" validate:"required,min=2"`
	Role       string `json:"role,omitempty"` // Optional, defaults to "student"
	Department string `json:"department,omitempty"`
}

// AuthResponse represents a successful register/login response
type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID         uint           `json:"id"`
	UserCode   string         `json:"user_code"`
	Email      string         `json:"email"`
	Name       string         `json:"name"`
	Role       model.UserRole `json:"role"`
	Department string         `json:"department,omitempty"`
	IsActive   bool           `json:"is_active"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		UserCode:   user.UserCode,
		Email:      user.Email,
		Name:       user.Name,
		Role:       user.Role,
		Department: user.Department,
		IsActive:   user.IsActive,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
}

func (h *AuthHandler) issueTokens(user *model.User) (string, string, error) {
	subject := authutil.TokenSubject{
		UserID:       user.ID,
		UserCode:     user.UserCode,
		Email:        user.Email,
		Role:         string(user.Role),
		TokenVersion: user.TokenVersion,
	}

	accessToken, _, err := h.jwtManager.GenerateAccessToken(subject)
	if err != nil {
		return "", "", err
	}

	refreshToken, _, err := h.jwtManager.GenerateRefreshToken(subject)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// isSelfRegisterableRole reports whether an anonymous caller may register
// with the given role. Admin accounts are only created through the admin
// user-management endpoints.
func isSelfRegisterableRole(role string) bool {
	switch model.UserRole(role) {
	case model.RoleStudent, model.RoleFaculty:
		return true
	}
	return false
}

// Register handles user registration
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Email == "" || req.Password == "" || req.Name == "" {
		return response.BadRequest(c, "Email, password, and name are required")
	}

	if !authutil.IsPasswordValid(req.Password) {
		return response.BadRequest(c, "Password must be at least 8 characters long")
	}

	if req.Role == "" {
		req.Role = string(model.RoleStudent)
	}
	if !isSelfRegisterableRole(req.Role) {
		return response.BadRequest(c, "Invalid role. Must be 'faculty' or 'student'")
	}

	hashedPassword, err := authutil.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	user := model.User{
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Name:         req.Name,
		Role:         model.UserRole(req.Role),
		Department:   req.Department,
		IsActive:     true,
	}

	if err := h.userService.CreateUser(c.Context(), &user); err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			return response.Conflict(c, "User with this email already exists")
		case errors.Is(err, services.ErrDepartmentRequired):
			return response.BadRequest(c, "Department is required for faculty and student accounts")
		default:
			return response.InternalServerError(c, "Failed to create user")
		}
	}

	h.activityService.Record(c.Context(), model.ActivityUserRegistered,
		"User registered: "+user.UserCode, user.ID, "users", user.ID, nil)

	accessToken, refreshToken, err := h.issueTokens(&user)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate tokens")
	}

	return response.Created(c, AuthResponse{
		User:         toUserResponse(&user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    24 * 60 * 60,
	})
}
