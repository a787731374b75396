package validation

import (
	"errors"
	"fmt"
	"padelhub/pkg/logger"
	"padelhub/pkg/timeslot"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	TagHHMM = "hhmm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Details renders the errors for an AppError payload.
func (v ValidationErrors) Details() map[string]any {
	fields := make([]map[string]string, 0, len(v))
	for _, err := range v {
		fields = append(fields, map[string]string{"field": err.Field, "message": err.Message})
	}
	return map[string]any{"errors": fields}
}

func Single(field, message string) ValidationErrors {
	return ValidationErrors{ValidationError{Field: field, Message: message}}
}

// New builds a validator with the custom tags shared by every domain.
// JSON names are reported instead of Go field names.
func New(log *logger.Logger) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation(TagHHMM, validateHHMM); err != nil {
		log.Fatal("Failed to register 'hhmm' validator", "error", err)
	}

	return v
}

func validateHHMM(fl validator.FieldLevel) bool {
	_, err := timeslot.Parse(fl.Field().String())
	return err == nil
}

// Struct validates s and translates validator failures into ValidationErrors.
func Struct(v *validator.Validate, s any) error {
	if err := v.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return Translate(validationErrs)
		}
		return err
	}
	return nil
}

func Translate(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "gte":
			message = fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "unique":
			message = fmt.Sprintf("%s must not contain duplicates", err.Field())
		case "datetime":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", err.Field())
		case TagHHMM:
			message = fmt.Sprintf("%s must be a time in HH:MM 24-hour format", err.Field())
		case "after_start":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
