package validation

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		validate: validator.New(),
	}
}

// ValidateStruct validates a struct using struct tags
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

// FormatValidationErrors converts validation errors to a user-friendly format
func FormatValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			field := strings.ToLower(e.Field())
			switch e.Tag() {
			case "required":
				errors[field] = fmt.Sprintf("%s is required", e.Field())
			case "url":
				errors[field] = fmt.Sprintf("%s must be a valid URL", e.Field())
			case "min":
				errors[field] = fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param())
			case "max":
				errors[field] = fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param())
			case "oneof":
				errors[field] = fmt.Sprintf("%s must be one of: %s", e.Field(), e.Param())
			default:
				errors[field] = fmt.Sprintf("%s is invalid", e.Field())
			}
		}
	}

	return errors
}

// SanitizeString removes potentially dangerous characters
func SanitizeString(s string) string {
	// Remove null bytes
	s = strings.ReplaceAll(s, "\x00", "")
	// Trim whitespace
	s = strings.TrimSpace(s)
	return s
}

// MaxAttachmentSize is the upload ceiling for submission files.
const MaxAttachmentSize = 5 * 1024 * 1024 // 5MB

var allowedAttachmentExtensions = map[string]bool{
	".pdf":  true,
	".py":   true,
	".js":   true,
	".css":  true,
	".html": true,
	".ts":   true,
	".ppt":  true,
	".pptx": true,
	".txt":  true,
	".docx": true,
	".xlsx": true,
	".csv":  true,
	".rar":  true,
	".zip":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// ValidAttachmentType reports whether the filename has an accepted extension.
func ValidAttachmentType(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return allowedAttachmentExtensions[ext]
}
