package validator

import (
	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidations adds the coordinate validations the request
// types use.
func RegisterCustomValidations(validate *validator.Validate) {
	validate.RegisterValidation("lat", validateLat)
	validate.RegisterValidation("lng", validateLng)
}

// validateLat bounds the range only; zero is a legal latitude, the equator.
func validateLat(fl validator.FieldLevel) bool {
	lat := fl.Field().Float()
	return lat >= -90.0 && lat <= 90.0
}

// validateLng bounds the range only; zero is a legal longitude, the prime
// meridian.
func validateLng(fl validator.FieldLevel) bool {
	lng := fl.Field().Float()
	return lng >= -180.0 && lng <= 180.0
}
