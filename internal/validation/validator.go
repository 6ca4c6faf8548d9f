// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared by the whole process. Packages with
// form types register their own rules and messages at init time:
//
//	func init() {
//	    validation.RegisterStructValidation(validateForm, Form{})
//	    validation.RegisterMessage("genre_or_mood", "Please select at least one genre or a mood.")
//	}
//
//	if err := validation.ValidateStruct(&form); err != nil {
//	    fmt.Println(err.FieldMessage("genres"))
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	messagesMu sync.RWMutex
	messages   = map[string]string{}
)

// ValidationError is a single field validation failure.
type ValidationError struct {
	field   string
	message string
}

// Error returns a human-readable error message.
func (e *ValidationError) Error() string { return e.message }

// RequestValidationError is a collection of validation errors.
type RequestValidationError struct {
	errors []ValidationError
}

// Error implements the error interface, returning a combined error message.
func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}

	var msgs []string
	for _, err := range ve.errors {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// FieldMessage returns the first message reported for field, or "".
func (ve *RequestValidationError) FieldMessage(field string) string {
	for _, err := range ve.errors {
		if err.field == field {
			return err.message
		}
	}
	return ""
}

// Fields maps each failed field to its first message.
func (ve *RequestValidationError) Fields() map[string]string {
	out := make(map[string]string, len(ve.errors))
	for _, err := range ve.errors {
		if _, ok := out[err.field]; !ok {
			out[err.field] = err.message
		}
	}
	return out
}

// GetValidator returns the singleton validator instance.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// report json/form names so messages match what clients send
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
	})

	return validate
}

// RegisterValidation adds a field-level validation tag.
func RegisterValidation(tag string, fn validator.Func) error {
	if err := GetValidator().RegisterValidation(tag, fn); err != nil {
		return fmt.Errorf("register validation %s: %w", tag, err)
	}
	return nil
}

// RegisterStructValidation adds a struct-level rule for the given types.
func RegisterStructValidation(fn validator.StructLevelFunc, types ...any) {
	GetValidator().RegisterStructValidation(fn, types...)
}

// RegisterMessage sets the message reported for a failed tag. It takes
// precedence over the built-in templates.
func RegisterMessage(tag, message string) {
	messagesMu.Lock()
	defer messagesMu.Unlock()
	messages[tag] = message
}

// ValidateStruct validates a struct using the singleton validator.
// Returns nil if validation passes, or *RequestValidationError if validation fails.
func ValidateStruct(s any) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &RequestValidationError{
			errors: []ValidationError{
				{field: "unknown", message: err.Error()},
			},
		}
	}

	fieldErrors := make([]ValidationError, len(validationErrs))
	for i, fieldErr := range validationErrs {
		fieldErrors[i] = ValidationError{
			field:   fieldErr.Field(),
			message: translateError(fieldErr),
		}
	}

	return &RequestValidationError{errors: fieldErrors}
}

// paramMessages maps validation tags to templates that include the param.
var paramMessages = map[string]string{
	"gte": "%s must be greater than or equal to %s",
	"lte": "%s must be less than or equal to %s",
}

// translateError converts a validator.FieldError to a human-readable message.
func translateError(fe validator.FieldError) string {
	field, tag, param := fe.Field(), fe.Tag(), fe.Param()

	messagesMu.RLock()
	custom, ok := messages[tag]
	messagesMu.RUnlock()
	if ok {
		return custom
	}

	if template, ok := paramMessages[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}

	switch tag {
	case "required":
		return field + " is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
