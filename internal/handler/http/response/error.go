package response

import (
	"errors"
	"net/http"

	"github.com/tallyops/payroll-backend-go/internal/domain/attendance"
	"github.com/tallyops/payroll-backend-go/internal/domain/employee"
	"github.com/tallyops/payroll-backend-go/internal/domain/leave"
	"github.com/tallyops/payroll-backend-go/internal/domain/payroll"
	"github.com/tallyops/payroll-backend-go/internal/pkg/timeout"
	"github.com/tallyops/payroll-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeInactive):
		BadRequest(w, "Employee is inactive", nil)

	// Attendance domain errors
	case errors.Is(err, attendance.ErrUnknownEmployee):
		NotFound(w, "Unknown employee reference")
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")

	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrInvalidRange):
		BadRequest(w, "from_date must not be after to_date", nil)
	case errors.Is(err, leave.ErrInvalidTransition):
		Conflict(w, "Leave request already decided")

	// Payroll domain errors
	case errors.Is(err, payroll.ErrPayrollRecordNotFound):
		NotFound(w, "Payroll record not found")
	case errors.Is(err, payroll.ErrAlreadyPaid):
		Conflict(w, "Payroll record already paid")

	// Cross-cutting
	case errors.Is(err, timeout.ErrTimeout):
		GatewayTimeout(w, "Operation timed out")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
