package services

import (
	"fmt"
	"os"
	"testing"

	"github.com/sahilchouksey/campus-portal-api/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// setupTestDB connects to the integration test database and migrates a clean
// schema. Tests calling it are skipped unless RUN_INTEGRATION_TESTS=true.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		getEnvOrDefault("DB_HOST", "localhost"),
		getEnvOrDefault("DB_USER_NAME", "postgres"),
		getEnvOrDefault("DB_PASSWORD", "postgres"),
		getEnvOrDefault("DB_NAME", "campus_portal_test"),
		getEnvOrDefault("DB_PORT", "5432"),
		getEnvOrDefault("DB_SSL_MODE", "disable"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	models := []interface{}{
		&model.User{},
		&model.Course{},
		&model.CourseEnrollment{},
		&model.CourseMaterial{},
		&model.Assignment{},
		&model.AssignmentSubmission{},
		&model.AttendanceRecord{},
		&model.Event{},
		&model.EventRegistration{},
		&model.Notification{},
		&model.NotificationAttachment{},
		&model.NotificationRead{},
		&model.Placement{},
		&model.Activity{},
		&model.JWTTokenBlacklist{},
		&model.CronJobLog{},
	}

	if err := db.Migrator().DropTable(models...); err != nil {
		t.Fatalf("Failed to drop tables: %v", err)
	}
	if err := db.AutoMigrate(models...); err != nil {
		t.Fatalf("Failed to migrate tables: %v", err)
	}

	return db
}

// mustCreateUser inserts a user with a hashed-looking placeholder password
func mustCreateUser(t *testing.T, db *gorm.DB, code string, role model.UserRole, department string) *model.User {
	t.Helper()

	user := &model.User{
		UserCode:     code,
		Email:        code + "@campus.test",
		PasswordHash: "$2a$12$placeholderplaceholderplaceholderplaceh",
		Name:         "Test " + code,
		Role:         role,
		Department:   department,
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", code, err)
	}
	return user
}
