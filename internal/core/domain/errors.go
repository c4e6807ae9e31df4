package domain

import "errors"

var (
	// ErrUpstreamUnavailable is returned when the device directory or the
	// alert source cannot be reached or answers with an error.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrAlertNotFound       = errors.New("alert not found")
	ErrInvalidAlertID      = errors.New("invalid alert id")
	ErrSchedulerStopped    = errors.New("refresh scheduler stopped")
	ErrInvalidInterval     = errors.New("refresh interval must be positive")
)
