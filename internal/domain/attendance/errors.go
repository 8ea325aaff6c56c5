package attendance

import "errors"

var (
	ErrAttendanceNotFound = errors.New("attendance record not found")

	// ErrUnknownEmployee is the per-row failure when a bulk row's employee
	// code does not resolve to a known employee.
	ErrUnknownEmployee = errors.New("unknown employee code")
)
