package errors

import "errors"

var (
	ErrNotFound  = errors.New("notification not found")
	ErrInvalidID = errors.New("invalid notification ID")

	// ErrUnsupportedEvent marks a pickup event that can never become a feed
	// entry, no matter how often it is retried.
	ErrUnsupportedEvent = errors.New("unsupported pickup event")
)
