package validator

import (
	"padelhub/pkg/logger"
	"padelhub/pkg/model"
	"padelhub/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type CourtValidator struct {
	validate *validator.Validate
}

func NewCourtValidator(log *logger.Logger) *CourtValidator {
	return &CourtValidator{
		validate: validation.New(log),
	}
}

func (v *CourtValidator) Validate(court *model.Court) error {
	return validation.Struct(v.validate, court)
}
