package errors

import "errors"

var (
	ErrNotFound = errors.New("pickup request not found")

	ErrInvalidID = errors.New("invalid pickup request ID format")
)
