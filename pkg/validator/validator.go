package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var teamNamePattern = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N} ._-]*$`)

// CustomValidator implements echo.Validator using go-playground/validator
type CustomValidator struct {
	v *validator.Validate
}

// New creates a new CustomValidator instance with the "teamname" tag registered
func New() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("teamname", func(fl validator.FieldLevel) bool {
		return teamNamePattern.MatchString(fl.Field().String())
	})
	return &CustomValidator{v: v}
}

// Validate performs struct validation
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}
