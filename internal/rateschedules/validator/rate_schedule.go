package validator

import (
	"padelhub/pkg/logger"
	"padelhub/pkg/model"
	"padelhub/pkg/timeslot"
	"padelhub/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type RateScheduleValidator struct {
	validate *validator.Validate
}

func NewRateScheduleValidator(log *logger.Logger) *RateScheduleValidator {
	v := validation.New(log)
	v.RegisterStructValidation(validateWindow, model.RateSchedule{})

	return &RateScheduleValidator{
		validate: v,
	}
}

// validateWindow rejects empty or inverted windows. Malformed times are
// already reported by the hhmm tag.
func validateWindow(sl validator.StructLevel) {
	sc := sl.Current().Interface().(model.RateSchedule)

	start, errStart := timeslot.Parse(sc.StartTime)
	end, errEnd := timeslot.Parse(sc.EndTime)
	if errStart != nil || errEnd != nil {
		return
	}
	if start >= end {
		sl.ReportError(sc.EndTime, "end_time", "EndTime", "after_start", sc.StartTime)
	}
}

func (v *RateScheduleValidator) Validate(sc *model.RateSchedule) error {
	return validation.Struct(v.validate, sc)
}
