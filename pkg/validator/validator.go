package validator

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	RegisterCustomValidations(validate)
}

// ValidateStruct checks the struct's validate tags and returns a single
// field-level message suitable for an API error body.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return errors.New(describe(fieldErrs[0]))
	}
	return err
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "lat":
		return fmt.Sprintf("%s must be between -90 and 90", fe.Field())
	case "lng":
		return fmt.Sprintf("%s must be between -180 and 180", fe.Field())
	case "uuid":
		return fmt.Sprintf("%s must be a valid UUID", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	default:
		return fmt.Sprintf("%s failed validation on %q", fe.Field(), fe.Tag())
	}
}
