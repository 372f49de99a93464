package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/sahilchouksey/campus-portal-api/model"
	"github.com/sahilchouksey/campus-portal-api/utils/dberrors"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrDepartmentRequired = errors.New("department is required for this role")
	ErrCodeSpaceExhausted = errors.New("could not allocate a unique user code")
)

// UserService handles user creation and the role-prefixed code generator
type UserService struct {
	db         *gorm.DB
	enrollment *EnrollmentService
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{
		db:         db,
		enrollment: NewEnrollmentService(db),
	}
}

const (
	codeProbeLimit    = 50
	createRetryLimit  = 3
	userCodePadFormat = "%s%04d"
)

// NextUserCode proposes a unique role-prefixed code (e.g. STU0042).
//
// The proposal is advisory: it counts existing users of the role, probes
// candidates until one is free, and relies on the unique index at persist
// time as the authoritative backstop under concurrent registrations.
// Soft-deleted users still occupy their code, so counting is unscoped —
// codes are assigned once and never reused.
func (s *UserService) NextUserCode(ctx context.Context, role model.UserRole) (string, error) {
	prefix := model.UserCodePrefix(role)

	var count int64
	if err := s.db.WithContext(ctx).Unscoped().
		Model(&model.User{}).
		Where("role = ?", role).
		Count(&count).Error; err != nil {
		return "", fmt.Errorf("failed to count %s users: %w", role, err)
	}

	for i := int64(0); i < codeProbeLimit; i++ {
		candidate := fmt.Sprintf(userCodePadFormat, prefix, count+1+i)

		var taken int64
		if err := s.db.WithContext(ctx).Unscoped().
			Model(&model.User{}).
			Where("user_code = ?", candidate).
			Count(&taken).Error; err != nil {
			return "", fmt.Errorf("failed to probe user code %s: %w", candidate, err)
		}
		if taken == 0 {
			return candidate, nil
		}
	}

	return "", ErrCodeSpaceExhausted
}

// CreateUser persists a new user with a generated code and, for students,
// auto-enrolls them into every active course of their department.
//
// A unique violation on user_code (a concurrent registration won the code)
// triggers regeneration and retry; a unique violation on email is final.
func (s *UserService) CreateUser(ctx context.Context, user *model.User) error {
	if user.RequiresDepartment() && user.Department == "" {
		return ErrDepartmentRequired
	}

	var existing model.User
	if err := s.db.WithContext(ctx).Where("email = ?", user.Email).First(&existing).Error; err == nil {
		return ErrEmailTaken
	} else if !dberrors.IsNotFound(err) {
		return fmt.Errorf("failed to check email: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < createRetryLimit; attempt++ {
		code, err := s.NextUserCode(ctx, user.Role)
		if err != nil {
			return err
		}
		user.UserCode = code

		err = s.db.WithContext(ctx).Create(user).Error
		if err == nil {
			if user.Role == model.RoleStudent {
				if enrolled, eErr := s.enrollment.EnrollStudentInDepartmentCourses(ctx, user); eErr != nil {
					log.Printf("Auto-enrollment failed for %s: %v", user.UserCode, eErr)
				} else if enrolled > 0 {
					log.Printf("Auto-enrolled %s into %d department courses", user.UserCode, enrolled)
				}
			}
			return nil
		}

		if !dberrors.IsUniqueViolation(err) {
			return fmt.Errorf("failed to create user: %w", err)
		}

		// A concurrent registration may have taken either the code or the
		// email; re-check email so we don't loop pointlessly.
		var clash model.User
		if cErr := s.db.WithContext(ctx).Where("email = ?", user.Email).First(&clash).Error; cErr == nil {
			return ErrEmailTaken
		}

		lastErr = err
		user.ID = 0
	}

	return fmt.Errorf("failed to allocate user code after %d attempts: %w", createRetryLimit, lastErr)
}
