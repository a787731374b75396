package validation

import (
	"errors"
	"padelhub/pkg/logger"
	"strings"
	"testing"
)

type sample struct {
	Start string `json:"start" validate:"required,hhmm"`
	Days  []int  `json:"days" validate:"required,min=1,unique,dive,min=1,max=7"`
	Date  string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

func TestStruct_CustomTagsAndJSONNames(t *testing.T) {
	log := logger.New(logger.Config{
		Level:     "info",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	v := New(log)

	tests := []struct {
		name      string
		input     sample
		wantField string
	}{
		{
			name:  "valid",
			input: sample{Start: "08:00", Days: []int{1, 2}, Date: "2025-06-10"},
		},
		{
			name:      "bad time",
			input:     sample{Start: "8am", Days: []int{1}},
			wantField: "start",
		},
		{
			name:      "duplicate weekdays",
			input:     sample{Start: "08:00", Days: []int{1, 1}},
			wantField: "days",
		},
		{
			name:      "weekday out of range",
			input:     sample{Start: "08:00", Days: []int{8}},
			wantField: "days[0]",
		},
		{
			name:      "bad date",
			input:     sample{Start: "08:00", Days: []int{1}, Date: "10/06/2025"},
			wantField: "date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(v, tt.input)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %T: %v", err, err)
			}
			if verrs[0].Field != tt.wantField {
				t.Errorf("expected field %q, got %q", tt.wantField, verrs[0].Field)
			}
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "slots", Message: "slots is required"},
		{Field: "court_id", Message: "court_id must be a valid MongoDB ObjectID"},
	}

	msg := errs.Error()
	if !strings.Contains(msg, "2 error(s)") {
		t.Errorf("expected error count in message, got %q", msg)
	}
	if !strings.Contains(msg, "court_id: court_id must be a valid MongoDB ObjectID") {
		t.Errorf("expected field message, got %q", msg)
	}

	details := errs.Details()
	fields, ok := details["errors"].([]map[string]string)
	if !ok || len(fields) != 2 {
		t.Fatalf("expected 2 detail entries, got %v", details["errors"])
	}
}
