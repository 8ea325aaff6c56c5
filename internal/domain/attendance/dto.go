package attendance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallyops/payroll-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type RecordAttendanceRequest struct {
	EmployeeID string  `json:"employee_id"`
	Date       string  `json:"date"`
	Status     string  `json:"status"`
	CheckIn    *string `json:"check_in,omitempty"`
	CheckOut   *string `json:"check_out,omitempty"`
	JobID      *string `json:"job_id,omitempty"`
	Remarks    *string `json:"remarks,omitempty"`
}

func (r *RecordAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date is required",
		})
	} else if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if !Status(r.Status).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of present, absent, leave, half_day",
		})
	}

	if r.CheckIn != nil {
		if _, ok := validator.IsValidDateTime(*r.CheckIn); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "check_in",
				Message: "check_in must be an ISO8601 timestamp",
			})
		}
	}
	if r.CheckOut != nil {
		if _, ok := validator.IsValidDateTime(*r.CheckOut); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "check_out",
				Message: "check_out must be an ISO8601 timestamp",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// BulkRow is one line of a bulk submission. Rows reference employees by
// their external code, not internal id.
type BulkRow struct {
	EmployeeCode string  `json:"employee_code"`
	Date         string  `json:"date"`
	Status       string  `json:"status"`
	CheckIn      *string `json:"check_in,omitempty"`
	CheckOut     *string `json:"check_out,omitempty"`
	Remarks      *string `json:"remarks,omitempty"`
}

type BulkIngestRequest struct {
	Rows []BulkRow `json:"rows"`
}

func (r *BulkIngestRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.Rows) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "rows",
			Message: "at least one row is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RowError reports one failed row by its zero-based position in the input.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type BulkIngestSummary struct {
	TotalRecords  int        `json:"total_records"`
	UploadedCount int        `json:"uploaded_count"`
	Errors        []RowError `json:"errors"`
}

type AttendanceResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName *string `json:"employee_name,omitempty"`
	Date         string  `json:"date"`
	Status       string  `json:"status"`
	CheckIn      *string `json:"check_in,omitempty"`
	CheckOut     *string `json:"check_out,omitempty"`
	WorkMinutes  int     `json:"work_minutes"`
	JobID        *string `json:"job_id,omitempty"`
	Remarks      *string `json:"remarks,omitempty"`
}

func ToResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:           a.ID,
		EmployeeID:   a.EmployeeID,
		EmployeeName: a.EmployeeName,
		Date:         a.Date.Format("2006-01-02"),
		Status:       string(a.Status),
		WorkMinutes:  a.WorkMinutes,
		JobID:        a.JobID,
		Remarks:      a.Remarks,
	}
	if a.CheckIn != nil {
		s := a.CheckIn.Format(time.RFC3339)
		resp.CheckIn = &s
	}
	if a.CheckOut != nil {
		s := a.CheckOut.Format(time.RFC3339)
		resp.CheckOut = &s
	}
	return resp
}

// AttendanceFilter narrows attendance queries by employee, date range and
// job reference.
type AttendanceFilter struct {
	EmployeeID *string
	From       *time.Time
	To         *time.Time
	JobID      *string
	Page       int
	Limit      int
}

// QueryTotals are the aggregate numbers returned next to a filtered list.
type QueryTotals struct {
	TotalDays   int             `json:"total_days"`
	TotalHours  decimal.Decimal `json:"total_hours"`
	PresentDays decimal.Decimal `json:"present_days"`
	AbsentDays  int             `json:"absent_days"`
}

type ListAttendanceResponse struct {
	Data       []AttendanceResponse `json:"data"`
	Totals     QueryTotals          `json:"totals"`
	TotalCount int64                `json:"total_count"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
}

// PeriodTotals is the aggregation consumed by payroll generation.
// DaysPresent moves in half-day steps; hour figures carry minute
// precision.
type PeriodTotals struct {
	DaysPresent     decimal.Decimal `json:"days_present"`
	DaysAbsent      int             `json:"days_absent"`
	DaysOnLeave     decimal.Decimal `json:"days_on_leave"`
	PaidLeaveDays   decimal.Decimal `json:"paid_leave_days"`
	UnpaidLeaveDays decimal.Decimal `json:"unpaid_leave_days"`
	TotalHours      decimal.Decimal `json:"total_hours"`
	OvertimeHours   decimal.Decimal `json:"overtime_hours"`
}
