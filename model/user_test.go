package model

import "testing"

func TestUserCodePrefix(t *testing.T) {
	tests := []struct {
		role UserRole
		want string
	}{
		{RoleAdmin, "ADM"},
		{RoleFaculty, "FAC"},
		{RoleStudent, "STU"},
	}
	for _, tt := range tests {
		if got := UserCodePrefix(tt.role); got != tt.want {
			t.Errorf("UserCodePrefix(%q) = %q, want %q", tt.role, got, tt.want)
		}
	}
}

func TestIsValidRole(t *testing.T) {
	for _, role := range []string{"admin", "faculty", "student"} {
		if !IsValidRole(role) {
			t.Errorf("IsValidRole(%q) = false, want true", role)
		}
	}
	for _, role := range []string{"", "superadmin", "Student", "ADMIN"} {
		if IsValidRole(role) {
			t.Errorf("IsValidRole(%q) = true, want false", role)
		}
	}
}

func TestRequiresDepartment(t *testing.T) {
	if (&User{Role: RoleAdmin}).RequiresDepartment() {
		t.Error("admins should not require a department")
	}
	if !(&User{Role: RoleFaculty}).RequiresDepartment() {
		t.Error("faculty should require a department")
	}
	if !(&User{Role: RoleStudent}).RequiresDepartment() {
		t.Error("students should require a department")
	}
}
