package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sahilchouksey/campus-portal-api/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrAlreadyEnrolled    = errors.New("student already enrolled in this course")
	ErrWrongDepartment    = errors.New("course belongs to a different department")
	ErrCourseNotActive    = errors.New("course is not active")
	ErrNotEnrolled        = errors.New("student is not enrolled in this course")
	ErrEnrollOnlyStudents = errors.New("only students can be enrolled")
)

// EnrollmentService maintains course enrollments, including the
// auto-enrollment symmetry between new students and new courses.
type EnrollmentService struct {
	db *gorm.DB
}

// NewEnrollmentService creates a new enrollment service
func NewEnrollmentService(db *gorm.DB) *EnrollmentService {
	return &EnrollmentService{db: db}
}

// EnrollStudentInDepartmentCourses enrolls a newly registered student into
// every active course of their department. Returns the number of courses
// the student was enrolled into.
func (s *EnrollmentService) EnrollStudentInDepartmentCourses(ctx context.Context, student *model.User) (int, error) {
	if student.Role != model.RoleStudent {
		return 0, ErrEnrollOnlyStudents
	}

	var courses []model.Course
	if err := s.db.WithContext(ctx).
		Where("department = ? AND is_active = ?", student.Department, true).
		Find(&courses).Error; err != nil {
		return 0, fmt.Errorf("failed to list department courses: %w", err)
	}

	if len(courses) == 0 {
		return 0, nil
	}

	enrollments := make([]model.CourseEnrollment, 0, len(courses))
	for _, course := range courses {
		enrollments = append(enrollments, model.CourseEnrollment{
			CourseID:  course.ID,
			StudentID: student.ID,
		})
	}

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&enrollments)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to enroll student: %w", result.Error)
	}

	return int(result.RowsAffected), nil
}

// EnrollDepartmentStudentsInCourse enrolls every active student of the
// course's department into a newly created course. Returns the number of
// students enrolled.
func (s *EnrollmentService) EnrollDepartmentStudentsInCourse(ctx context.Context, course *model.Course) (int, error) {
	var students []model.User
	if err := s.db.WithContext(ctx).
		Where("role = ? AND department = ? AND is_active = ?", model.RoleStudent, course.Department, true).
		Find(&students).Error; err != nil {
		return 0, fmt.Errorf("failed to list department students: %w", err)
	}

	if len(students) == 0 {
		return 0, nil
	}

	enrollments := make([]model.CourseEnrollment, 0, len(students))
	for _, student := range students {
		enrollments = append(enrollments, model.CourseEnrollment{
			CourseID:  course.ID,
			StudentID: student.ID,
		})
	}

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&enrollments)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to enroll students: %w", result.Error)
	}

	return int(result.RowsAffected), nil
}

// Enroll adds a single student to a course of their own department
func (s *EnrollmentService) Enroll(ctx context.Context, student *model.User, courseID uint) error {
	if student.Role != model.RoleStudent {
		return ErrEnrollOnlyStudents
	}

	var course model.Course
	if err := s.db.WithContext(ctx).First(&course, courseID).Error; err != nil {
		return err
	}
	if !course.IsActive {
		return ErrCourseNotActive
	}
	if course.Department != student.Department {
		return ErrWrongDepartment
	}

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.CourseEnrollment{CourseID: courseID, StudentID: student.ID})
	if result.Error != nil {
		return fmt.Errorf("failed to enroll: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAlreadyEnrolled
	}

	return nil
}

// Unenroll removes a student from a course
func (s *EnrollmentService) Unenroll(ctx context.Context, studentID, courseID uint) error {
	result := s.db.WithContext(ctx).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		Delete(&model.CourseEnrollment{})
	if result.Error != nil {
		return fmt.Errorf("failed to unenroll: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotEnrolled
	}
	return nil
}
