package validation

import "testing"

func TestIsUserCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"STU0001", true},
		{"FAC0042", true},
		{"ADM0001", true},
		{"STU12345", true}, // sequence may outgrow four digits
		{"STU001", false},  // too short
		{"stu0001", false}, // prefixes are upper-case
		{"XYZ0001", false},
		{"STU00a1", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsUserCode(tt.code); got != tt.want {
			t.Errorf("IsUserCode(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestValidateStructUserCodeTag(t *testing.T) {
	v := NewValidator()

	type form struct {
		Code string `validate:"required,usercode"`
	}

	if err := v.ValidateStruct(form{Code: "STU0001"}); err != nil {
		t.Errorf("ValidateStruct(valid code) error = %v", err)
	}
	if err := v.ValidateStruct(form{Code: "nope"}); err == nil {
		t.Error("ValidateStruct(bad code) expected an error")
	}
}
