package leave

import (
	"time"

	"github.com/tallyops/payroll-backend-go/internal/pkg/validator"
)

type ApplyLeaveRequest struct {
	EmployeeID string  `json:"employee_id"`
	FromDate   string  `json:"from_date"`
	ToDate     string  `json:"to_date"`
	Type       string  `json:"leave_type"`
	Reason     *string `json:"reason,omitempty"`
}

func (r *ApplyLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if _, ok := validator.IsValidDate(r.FromDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "from_date",
			Message: "from_date must be in YYYY-MM-DD format",
		})
	}
	if _, ok := validator.IsValidDate(r.ToDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "to_date",
			Message: "to_date must be in YYYY-MM-DD format",
		})
	}

	if !Type(r.Type).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type",
			Message: "leave_type must be one of sick, casual, earned, unpaid",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type LeaveResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName *string `json:"employee_name,omitempty"`
	FromDate     string  `json:"from_date"`
	ToDate       string  `json:"to_date"`
	Type         string  `json:"leave_type"`
	Status       string  `json:"status"`
	Days         int     `json:"days"`
	Reason       *string `json:"reason,omitempty"`
	DecidedBy    *string `json:"decided_by,omitempty"`
	DecidedAt    *string `json:"decided_at,omitempty"`
}

func ToResponse(r LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		FromDate:     r.FromDate.Format("2006-01-02"),
		ToDate:       r.ToDate.Format("2006-01-02"),
		Type:         string(r.Type),
		Status:       string(r.Status),
		Days:         r.Days(),
		Reason:       r.Reason,
		DecidedBy:    r.DecidedBy,
	}
	if r.DecidedAt != nil {
		s := r.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &s
	}
	return resp
}

type LeaveFilter struct {
	EmployeeID *string
	Status     *Status
	Page       int
	Limit      int
}
