package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// userCodePattern matches portal user codes: a role prefix followed by a
// zero-padded sequence, e.g. STU0042.
var userCodePattern = regexp.MustCompile(`^(ADM|FAC|STU)[0-9]{4,}$`)

// Validator wraps go-playground/validator with the portal's custom rules
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with the "usercode" rule registered
func NewValidator() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("usercode", validUserCode)
	return &Validator{validate: v}
}

// ValidateStruct validates a struct using its validate tags
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

func validUserCode(fl validator.FieldLevel) bool {
	return IsUserCode(fl.Field().String())
}

// IsUserCode reports whether s is a well-formed user code
func IsUserCode(s string) bool {
	return userCodePattern.MatchString(s)
}
