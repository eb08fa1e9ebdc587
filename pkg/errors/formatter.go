package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var messageByTag = map[string]string{
	"required": "This field is required",
	"email":    "Invalid email format",
	"min":      "Value is too short or too small",
	"max":      "Value is too long or too large",
	"len":      "Value must be exact length",
	"numeric":  "Value must be numeric",
	"alphanum": "Value must contain only letters and numbers",
	"url":      "Invalid URL format",
	"oneof":    "Value is not one of the allowed options",
	"gte":      "Value must be greater than or equal to specified",
	"lte":      "Value must be less than or equal to specified",
}

func msgForTag(tag string) string {
	if msg, ok := messageByTag[tag]; ok {
		return msg
	}
	return "Invalid value"
}

func msgForParam(fieldError validator.FieldError) string {
	param := fieldError.Param()

	switch fieldError.Tag() {
	case "min":
		return fmt.Sprintf("Must be at least %s characters", param)
	case "max":
		return fmt.Sprintf("Must not exceed %s characters", param)
	case "len":
		return fmt.Sprintf("Must be exactly %s characters", param)
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", strings.Join(strings.Fields(param), ", "))
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", param)
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s", param)
	}

	return msgForTag(fieldError.Tag())
}

func getJSONFieldName(structType reflect.Type, fieldName string) string {
	if structType == nil || structType.Kind() != reflect.Struct {
		return fieldName
	}

	field, found := structType.FieldByName(fieldName)
	if !found {
		return fieldName
	}

	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "" {
		return fieldName
	}

	return name
}

// FormatValidationErrors turns binding failures into field-level messages keyed by JSON name.
func FormatValidationErrors(err error, model interface{}) []ValidationErrorResponse {
	var errorsList []ValidationErrorResponse

	if err == nil {
		return errorsList
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []ValidationErrorResponse{
			{
				Field:   typeErr.Field,
				Message: fmt.Sprintf("Invalid type for field %s. Expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value),
			},
		}
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return errorsList
	}

	var structType reflect.Type
	if model != nil {
		structType = reflect.TypeOf(model)
		if structType.Kind() == reflect.Ptr {
			structType = structType.Elem()
		}
	}

	errorsList = make([]ValidationErrorResponse, len(validationErrors))
	for i, fieldError := range validationErrors {
		message := msgForTag(fieldError.Tag())
		if fieldError.Param() != "" {
			message = msgForParam(fieldError)
		}

		errorsList[i] = ValidationErrorResponse{
			Field:   getJSONFieldName(structType, fieldError.Field()),
			Message: message,
		}
	}

	return errorsList
}
