package auth

import "testing"

func TestIsSelfRegisterableRole(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{"student", true},
		{"faculty", true},
		{"admin", false},
		{"", false},
		{"superadmin", false},
		{"Student", false}, // roles are case-sensitive
	}

	for _, tt := range tests {
		if got := isSelfRegisterableRole(tt.role); got != tt.want {
			t.Errorf("isSelfRegisterableRole(%q) = %v, want %v", tt.role, got, tt.want)
		}
	}
}
