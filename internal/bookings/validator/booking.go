package validator

import (
	"padelhub/pkg/logger"
	"padelhub/pkg/model"
	"padelhub/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type BookingValidator struct {
	validate *validator.Validate
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	return &BookingValidator{
		validate: validation.New(log),
	}
}

// Validate checks the request shape only. Slot count, grid alignment and
// availability depend on venue settings and are checked by the service.
func (v *BookingValidator) Validate(req *model.BookingRequest) error {
	return validation.Struct(v.validate, req)
}

func (v *BookingValidator) ValidateCancel(req *model.BookingCancel) error {
	return validation.Struct(v.validate, req)
}

func (v *BookingValidator) ValidateStatusUpdate(req *model.BookingStatusUpdate) error {
	return validation.Struct(v.validate, req)
}
