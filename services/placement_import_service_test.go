package services

import (
	"testing"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Student ID", "studentid"},
		{"student_id", "studentid"},
		{"STUDENT-ID", "studentid"},
		{"  Package (LPA)  ", "package(lpa)"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := normalizeHeader(tt.in); got != tt.want {
			t.Errorf("normalizeHeader(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveHeaders(t *testing.T) {
	headers := []string{"Student ID", "Student Name", "Company", "Package (LPA)", "Year", "Branch"}

	resolved := ResolveHeaders(headers)

	want := map[string]int{
		"student_code": 0,
		"student_name": 1,
		"company_name": 2,
		"package":      3,
		"year":         4,
		"department":   5,
	}
	for field, idx := range want {
		got, ok := resolved[field]
		if !ok {
			t.Fatalf("field %q not resolved, got %v", field, resolved)
		}
		if got != idx {
			t.Errorf("field %q resolved to column %d, want %d", field, got, idx)
		}
	}

	if _, ok := resolved["role"]; ok {
		t.Error("role should not resolve when no matching header exists")
	}
}

func TestResolveHeadersCaseAndSeparatorInsensitive(t *testing.T) {
	variants := [][]string{
		{"StudentID", "StudentName", "CompanyName", "Package"},
		{"student_id", "student_name", "company_name", "package"},
		{"STUDENT ID", "STUDENT NAME", "COMPANY NAME", "PACKAGE"},
		{"roll-no", "name", "company", "ctc"},
	}

	for _, headers := range variants {
		resolved := ResolveHeaders(headers)
		for _, field := range placementRequiredFields {
			if _, ok := resolved[field]; !ok {
				t.Errorf("headers %v: required field %q not resolved", headers, field)
			}
		}
	}
}

func TestResolveHeadersFirstAliasWins(t *testing.T) {
	// Both "Roll No" and "Student ID" map to student_code; the earlier
	// alias in the priority list ("StudentID" before "Roll No") wins.
	headers := []string{"Roll No", "Student ID", "Name", "Company", "Package"}

	resolved := ResolveHeaders(headers)
	if got := resolved["student_code"]; got != 1 {
		t.Errorf("student_code resolved to column %d, want 1 (Student ID outranks Roll No)", got)
	}
}

func TestCellAt(t *testing.T) {
	row := []string{"STU0001", " Amit Kumar ", ""}

	if got := cellAt(row, 0); got != "STU0001" {
		t.Errorf("cellAt(0) = %q", got)
	}
	if got := cellAt(row, 1); got != "Amit Kumar" {
		t.Errorf("cellAt(1) = %q, want trimmed value", got)
	}
	if got := cellAt(row, 2); got != "" {
		t.Errorf("cellAt(2) = %q, want empty", got)
	}
	// Short rows are common in spreadsheets; out-of-range reads are empty
	if got := cellAt(row, 10); got != "" {
		t.Errorf("cellAt(10) = %q, want empty", got)
	}
	if got := cellAt(row, -1); got != "" {
		t.Errorf("cellAt(-1) = %q, want empty", got)
	}
}
