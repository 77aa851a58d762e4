package httpx

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var volumeIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{4,32}$`)

func init() {
	validate = validator.New()

	_ = validate.RegisterValidation("volume_id", validateVolumeID)
	_ = validate.RegisterValidation("nonblank", validateNonBlank)
}

// validateVolumeID accepts provider volume identifiers such as "zyTCAlFPjgYC".
func validateVolumeID(fl validator.FieldLevel) bool {
	return volumeIDPattern.MatchString(fl.Field().String())
}

func validateNonBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// ValidateStruct runs struct tag validation and returns one detail per
// failing field.
func ValidateStruct(s interface{}) []ErrorDetail {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []ErrorDetail{{Field: "", Message: err.Error()}}
	}

	details := make([]ErrorDetail, 0, len(validationErrors))
	for _, fe := range validationErrors {
		field := fe.Field()
		param := fe.Param()

		var message string
		switch fe.Tag() {
		case "required", "nonblank":
			message = fmt.Sprintf("%s is required", field)
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", field, param)
		case "url":
			message = fmt.Sprintf("%s must be a valid URL", field)
		case "volume_id":
			message = fmt.Sprintf("%s must be a provider volume identifier", field)
		case "gte":
			message = fmt.Sprintf("%s must be at least %s", field, param)
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}

		details = append(details, ErrorDetail{
			Field:   jsonFieldName(field),
			Message: message,
		})
	}
	return details
}

// jsonFieldName turns "URLImage" or "Authors[1]" into the lower-case form
// used in request bodies.
func jsonFieldName(field string) string {
	if field == "" {
		return field
	}
	switch field {
	case "URLImage":
		return "url_image"
	case "ID", "ExternalID":
		return "id"
	}
	return strings.ToLower(field[:1]) + field[1:]
}
