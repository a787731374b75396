package errors

import "errors"

var (
	ErrNotFound = errors.New("court not found")

	ErrInvalidID = errors.New("invalid court ID format")

	ErrDuplicateName = errors.New("court name already in use")
)
