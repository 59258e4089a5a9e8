// Package utils provides utility functions used throughout the application.
package utils

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	validationErrorMessages = map[string]string{
		"required":  "is required",
		"min":       "must be at least %s",
		"gte":       "must be at least %s",
		"max":       "must be at most %s",
		"lte":       "must be at most %s",
		"oneof":     "must be one of: %s",
		"nocontrol": "must not contain control characters",
	}
)

func init() {
	validate = validator.New()

	// Report json field names rather than Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("nocontrol", validateNoControl)
}

// Validate performs validation on the given struct and returns validation errors.
func Validate(s any) error {
	return validate.Struct(s)
}

// FormatValidationErrors turns a validation error into one item per failed field.
func FormatValidationErrors(err error) []ValidationErrorItem {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []ValidationErrorItem{{Field: "general", Message: err.Error()}}
	}

	items := make([]ValidationErrorItem, 0, len(validationErrs))
	for _, fe := range validationErrs {
		message, exists := validationErrorMessages[fe.Tag()]
		if !exists {
			message = "failed validation: " + fe.Tag()
		}
		if strings.Contains(message, "%s") {
			param := fe.Param()
			if fe.Tag() == "oneof" {
				param = strings.Join(strings.Fields(param), ", ")
			}
			message = strings.Replace(message, "%s", param, 1)
		}
		items = append(items, ValidationErrorItem{Field: fe.Field(), Message: fe.Field() + " " + message})
	}

	return items
}

// validateNoControl rejects strings carrying control characters other than
// ordinary whitespace. Moods are interpolated into a model prompt.
func validateNoControl(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
