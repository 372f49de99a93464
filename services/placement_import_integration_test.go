package services

import (
	"context"
	"testing"

	"github.com/sahilchouksey/campus-portal-api/model"
)

func TestImportInsertThenUpdate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPlacementImportService(db)
	ctx := context.Background()

	admin := mustCreateUser(t, db, "ADM0001", model.RoleAdmin, "")
	mustCreateUser(t, db, "STU0001", model.RoleStudent, "Computer Science")

	// The same (student, year) row twice: first row inserts, second updates
	rows := [][]string{
		{"Student ID", "Student Name", "Company", "Package", "Year"},
		{"STU0001", "Asha Patel", "Acme", "10", "2026"},
		{"STU0001", "Asha Patel", "Acme", "10", "2026"},
	}

	result, err := svc.Import(ctx, rows, admin)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.Inserted != 1 || result.Updated != 1 {
		t.Errorf("Inserted = %d, Updated = %d, want 1 and 1", result.Inserted, result.Updated)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors = %v, want none", result.Errors)
	}

	var count int64
	db.Model(&model.Placement{}).
		Where("student_code = ? AND year_of_placement = ?", "STU0001", 2026).
		Count(&count)
	if count != 1 {
		t.Errorf("placement count = %d, want exactly 1", count)
	}
}

func TestImportUnknownStudentCreatesNothing(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPlacementImportService(db)
	ctx := context.Background()

	admin := mustCreateUser(t, db, "ADM0001", model.RoleAdmin, "")

	rows := [][]string{
		{"Student ID", "Student Name", "Company", "Package", "Year"},
		{"STU9999", "Ghost Student", "Acme", "12", "2026"},
	}

	result, err := svc.Import(ctx, rows, admin)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.Inserted != 0 || result.Updated != 0 {
		t.Errorf("Inserted = %d, Updated = %d, want 0 and 0", result.Inserted, result.Updated)
	}
	if len(result.InvalidStudents) != 1 || result.InvalidStudents[0] != "STU9999" {
		t.Errorf("InvalidStudents = %v, want [STU9999]", result.InvalidStudents)
	}
	if len(result.Errors) != 1 {
		t.Errorf("Errors = %v, want one row error", result.Errors)
	}

	var count int64
	db.Model(&model.Placement{}).Count(&count)
	if count != 0 {
		t.Errorf("placement count = %d, want 0", count)
	}
}

func TestImportAfterPlacementDeleted(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPlacementImportService(db)
	ctx := context.Background()

	admin := mustCreateUser(t, db, "ADM0001", model.RoleAdmin, "")
	mustCreateUser(t, db, "STU0001", model.RoleStudent, "Computer Science")

	old := model.Placement{
		StudentCode:     "STU0001",
		StudentName:     "Asha Patel",
		CompanyName:     "OldCorp",
		Package:         8,
		YearOfPlacement: 2026,
		AddedByID:       admin.ID,
	}
	if err := db.Create(&old).Error; err != nil {
		t.Fatalf("Failed to create placement: %v", err)
	}
	if err := db.Delete(&old).Error; err != nil {
		t.Fatalf("Failed to delete placement: %v", err)
	}

	// The soft-deleted record must not block re-importing the pair
	rows := [][]string{
		{"Student ID", "Student Name", "Company", "Package", "Year"},
		{"STU0001", "Asha Patel", "Acme", "10", "2026"},
	}

	result, err := svc.Import(ctx, rows, admin)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.Inserted != 1 || len(result.Errors) != 0 {
		t.Errorf("Inserted = %d, Errors = %v, want 1 insert and no errors", result.Inserted, result.Errors)
	}

	var live int64
	db.Model(&model.Placement{}).
		Where("student_code = ? AND year_of_placement = ?", "STU0001", 2026).
		Count(&live)
	if live != 1 {
		t.Errorf("live placement count = %d, want 1", live)
	}
}
