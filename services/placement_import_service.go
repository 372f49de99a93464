package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/sahilchouksey/campus-portal-api/model"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var (
	ErrNoHeaderRow    = errors.New("spreadsheet has no header row")
	ErrMissingColumns = errors.New("missing required column")
)

// Canonical spreadsheet fields and their accepted header aliases, in
// priority order. Headers are matched case- and separator-insensitively,
// so "Student ID", "student_id" and "StudentID" all resolve the same way.
var placementFieldAliases = map[string][]string{
	"student_code": {"StudentID", "studentId", "Student ID", "Student Code", "Roll No", "RollNo"},
	"student_name": {"StudentName", "Student Name", "Name"},
	"company_name": {"CompanyName", "Company Name", "Company"},
	"package":      {"Package", "Package (LPA)", "CTC", "Salary"},
	"year":         {"YearOfPlacement", "Year of Placement", "Year"},
	"department":   {"Department", "Dept", "Branch"},
	"role":         {"Role", "Designation", "Position"},
	"type":         {"Type", "PlacementType", "Placement Type"},
}

var placementRequiredFields = []string{"student_code", "student_name", "company_name", "package"}

// RowError describes one rejected spreadsheet row. Row numbers are
// 1-based spreadsheet rows (the header is row 1) for operator diagnosis.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult tallies the outcome of one upload
type ImportResult struct {
	Inserted        int        `json:"inserted"`
	Updated         int        `json:"updated"`
	Errors          []RowError `json:"errors,omitempty"`
	InvalidStudents []string   `json:"invalid_students,omitempty"`
}

// PlacementImportService imports placement spreadsheets. Each row is
// independently atomic: it either fully inserts/updates one placement or is
// recorded as an error, and a bad row never discards rows already processed.
type PlacementImportService struct {
	db *gorm.DB
}

// NewPlacementImportService creates a new placement import service
func NewPlacementImportService(db *gorm.DB) *PlacementImportService {
	return &PlacementImportService{db: db}
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "")
	h = strings.ReplaceAll(h, "_", "")
	h = strings.ReplaceAll(h, "-", "")
	return h
}

// ResolveHeaders maps canonical field names to column indexes using the
// ordered alias lists. The first alias that matches wins.
func ResolveHeaders(headers []string) map[string]int {
	normalized := make(map[string]int, len(headers))
	for i, h := range headers {
		key := normalizeHeader(h)
		if _, exists := normalized[key]; !exists && key != "" {
			normalized[key] = i
		}
	}

	resolved := make(map[string]int)
	for field, aliases := range placementFieldAliases {
		for _, alias := range aliases {
			if idx, ok := normalized[normalizeHeader(alias)]; ok {
				resolved[field] = idx
				break
			}
		}
	}
	return resolved
}

// ParseWorkbook reads the first sheet of an xlsx workbook into string rows
func ParseWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoHeaderRow
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Import processes spreadsheet rows (header first) and upserts one placement
// per (student_code, year_of_placement) pair.
func (s *PlacementImportService) Import(ctx context.Context, rows [][]string, addedBy *model.User) (*ImportResult, error) {
	if len(rows) == 0 {
		return nil, ErrNoHeaderRow
	}

	columns := ResolveHeaders(rows[0])
	for _, field := range placementRequiredFields {
		if _, ok := columns[field]; !ok {
			return nil, fmt.Errorf("%w for %q", ErrMissingColumns, field)
		}
	}

	result := &ImportResult{}
	currentYear := time.Now().Year()

	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, after the header

		studentCode := cellAt(row, columns["student_code"])
		studentName := cellAt(row, columns["student_name"])
		companyName := cellAt(row, columns["company_name"])
		packageStr := cellAt(row, columns["package"])

		var missing []string
		if studentCode == "" {
			missing = append(missing, "student id")
		}
		if studentName == "" {
			missing = append(missing, "student name")
		}
		if companyName == "" {
			missing = append(missing, "company name")
		}
		if packageStr == "" {
			missing = append(missing, "package")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, RowError{
				Row:     rowNum,
				Message: fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")),
			})
			continue
		}

		pkg, err := strconv.ParseFloat(strings.ReplaceAll(packageStr, ",", ""), 64)
		if err != nil || pkg < 0 {
			result.Errors = append(result.Errors, RowError{
				Row:     rowNum,
				Message: fmt.Sprintf("invalid package value %q", packageStr),
			})
			continue
		}

		year := currentYear
		if idx, ok := columns["year"]; ok {
			if yearStr := cellAt(row, idx); yearStr != "" {
				parsed, err := strconv.Atoi(yearStr)
				if err != nil {
					result.Errors = append(result.Errors, RowError{
						Row:     rowNum,
						Message: fmt.Sprintf("invalid year value %q", yearStr),
					})
					continue
				}
				year = parsed
			}
		}

		var student model.User
		err = s.db.WithContext(ctx).
			Where("user_code = ? AND role = ?", studentCode, model.RoleStudent).
			First(&student).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result.InvalidStudents = append(result.InvalidStudents, studentCode)
				result.Errors = append(result.Errors, RowError{
					Row:     rowNum,
					Message: fmt.Sprintf("no student found with id %s", studentCode),
				})
				continue
			}
			result.Errors = append(result.Errors, RowError{
				Row:     rowNum,
				Message: fmt.Sprintf("student lookup failed: %v", err),
			})
			continue
		}

		department := cellAt(row, columns["department"])
		if department == "" {
			department = student.Department
		}

		placementType := model.PlacementTypeCampus
		if idx, ok := columns["type"]; ok {
			if t := strings.ToLower(cellAt(row, idx)); t == string(model.PlacementTypeOffCampus) {
				placementType = model.PlacementTypeOffCampus
			}
		}

		placement := model.Placement{
			StudentCode:     studentCode,
			StudentName:     studentName,
			CompanyName:     companyName,
			Package:         pkg,
			YearOfPlacement: year,
			Department:      department,
			Role:            cellAt(row, columns["role"]),
			Type:            placementType,
			AddedByID:       addedBy.ID,
		}

		inserted, err := s.upsert(ctx, &placement)
		if err != nil {
			result.Errors = append(result.Errors, RowError{
				Row:     rowNum,
				Message: fmt.Sprintf("failed to save placement: %v", err),
			})
			continue
		}

		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
	}

	log.Printf("Placement import by %s: %d inserted, %d updated, %d errors",
		addedBy.UserCode, result.Inserted, result.Updated, len(result.Errors))
	return result, nil
}

// upsert inserts the placement, or overwrites the mutable fields of the
// existing record for the same (student_code, year). Returns true on insert.
func (s *PlacementImportService) upsert(ctx context.Context, placement *model.Placement) (bool, error) {
	var existing model.Placement
	err := s.db.WithContext(ctx).
		Where("student_code = ? AND year_of_placement = ?", placement.StudentCode, placement.YearOfPlacement).
		First(&existing).Error

	if err == nil {
		updates := map[string]interface{}{
			"student_name": placement.StudentName,
			"company_name": placement.CompanyName,
			"package":      placement.Package,
			"department":   placement.Department,
			"role":         placement.Role,
			"type":         placement.Type,
			"added_by_id":  placement.AddedByID,
		}
		if uErr := s.db.WithContext(ctx).Model(&existing).Updates(updates).Error; uErr != nil {
			return false, uErr
		}
		return false, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	if cErr := s.db.WithContext(ctx).Create(placement).Error; cErr != nil {
		return false, cErr
	}
	return true, nil
}
