package services

import (
	"context"
	"errors"
	"testing"

	"github.com/sahilchouksey/campus-portal-api/model"
)

func TestEnrollDepartmentStudentsInCourse(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEnrollmentService(db)
	ctx := context.Background()

	faculty := mustCreateUser(t, db, "FAC0001", model.RoleFaculty, "Computer Science")
	mustCreateUser(t, db, "STU0001", model.RoleStudent, "Computer Science")
	mustCreateUser(t, db, "STU0002", model.RoleStudent, "Computer Science")
	mustCreateUser(t, db, "STU0003", model.RoleStudent, "Electronics")

	course := model.Course{Title: "Data Structures", Code: "CS301", Department: "Computer Science", FacultyID: faculty.ID, IsActive: true}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("Failed to create course: %v", err)
	}

	enrolled, err := svc.EnrollDepartmentStudentsInCourse(ctx, &course)
	if err != nil {
		t.Fatalf("EnrollDepartmentStudentsInCourse() error = %v", err)
	}
	if enrolled != 2 {
		t.Errorf("enrolled = %d, want 2 (Electronics student excluded)", enrolled)
	}

	// Running it again enrolls nobody new
	enrolled, err = svc.EnrollDepartmentStudentsInCourse(ctx, &course)
	if err != nil {
		t.Fatalf("EnrollDepartmentStudentsInCourse() second run error = %v", err)
	}
	if enrolled != 0 {
		t.Errorf("second run enrolled = %d, want 0", enrolled)
	}
}

func TestEnrollStudentInDepartmentCourses(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEnrollmentService(db)
	ctx := context.Background()

	faculty := mustCreateUser(t, db, "FAC0001", model.RoleFaculty, "Computer Science")
	courses := []model.Course{
		{Title: "Data Structures", Code: "CS301", Department: "Computer Science", FacultyID: faculty.ID, IsActive: true},
		{Title: "Inactive", Code: "CS100", Department: "Computer Science", FacultyID: faculty.ID, IsActive: false},
		{Title: "Circuits", Code: "EC301", Department: "Electronics", FacultyID: faculty.ID, IsActive: true},
	}
	if err := db.Create(&courses).Error; err != nil {
		t.Fatalf("Failed to create courses: %v", err)
	}

	student := mustCreateUser(t, db, "STU0001", model.RoleStudent, "Computer Science")

	enrolled, err := svc.EnrollStudentInDepartmentCourses(ctx, student)
	if err != nil {
		t.Fatalf("EnrollStudentInDepartmentCourses() error = %v", err)
	}
	if enrolled != 1 {
		t.Errorf("enrolled = %d, want 1 (only active same-department course)", enrolled)
	}
}

func TestEnrollChecks(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEnrollmentService(db)
	ctx := context.Background()

	faculty := mustCreateUser(t, db, "FAC0001", model.RoleFaculty, "Computer Science")
	csStudent := mustCreateUser(t, db, "STU0001", model.RoleStudent, "Computer Science")
	ecStudent := mustCreateUser(t, db, "STU0002", model.RoleStudent, "Electronics")

	active := model.Course{Title: "Data Structures", Code: "CS301", Department: "Computer Science", FacultyID: faculty.ID, IsActive: true}
	inactive := model.Course{Title: "Retired", Code: "CS100", Department: "Computer Science", FacultyID: faculty.ID, IsActive: false}
	if err := db.Create(&active).Error; err != nil {
		t.Fatalf("Failed to create course: %v", err)
	}
	if err := db.Create(&inactive).Error; err != nil {
		t.Fatalf("Failed to create course: %v", err)
	}

	if err := svc.Enroll(ctx, faculty, active.ID); !errors.Is(err, ErrEnrollOnlyStudents) {
		t.Errorf("Enroll(faculty) error = %v, want ErrEnrollOnlyStudents", err)
	}
	if err := svc.Enroll(ctx, ecStudent, active.ID); !errors.Is(err, ErrWrongDepartment) {
		t.Errorf("Enroll(other department) error = %v, want ErrWrongDepartment", err)
	}
	if err := svc.Enroll(ctx, csStudent, inactive.ID); !errors.Is(err, ErrCourseNotActive) {
		t.Errorf("Enroll(inactive course) error = %v, want ErrCourseNotActive", err)
	}

	if err := svc.Enroll(ctx, csStudent, active.ID); err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}
	if err := svc.Enroll(ctx, csStudent, active.ID); !errors.Is(err, ErrAlreadyEnrolled) {
		t.Errorf("Enroll() twice error = %v, want ErrAlreadyEnrolled", err)
	}

	if err := svc.Unenroll(ctx, csStudent.ID, active.ID); err != nil {
		t.Fatalf("Unenroll() error = %v", err)
	}
	if err := svc.Unenroll(ctx, csStudent.ID, active.ID); !errors.Is(err, ErrNotEnrolled) {
		t.Errorf("Unenroll() twice error = %v, want ErrNotEnrolled", err)
	}
}
