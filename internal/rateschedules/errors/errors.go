package errors

import "errors"

var (
	ErrNotFound = errors.New("rate schedule not found")

	ErrInvalidID = errors.New("invalid rate schedule ID format")
)
