package leave

import "errors"

var (
	ErrLeaveRequestNotFound = errors.New("leave request not found")

	// ErrInvalidRange rejects requests where toDate precedes fromDate.
	ErrInvalidRange = errors.New("to_date must not be before from_date")

	// ErrInvalidTransition guards the state machine: only a pending
	// request can be approved or rejected, and only once.
	ErrInvalidTransition = errors.New("leave request has already been decided")
)
