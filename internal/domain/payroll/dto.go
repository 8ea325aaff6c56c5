package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallyops/payroll-backend-go/internal/pkg/validator"
)

type GeneratePayrollRequest struct {
	PeriodMonth int `json:"period_month"`
	PeriodYear  int `json:"period_year"`
	// EmployeeIDs empty = all active employees.
	EmployeeIDs []string `json:"employee_ids,omitempty"`
}

func (r *GeneratePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.PeriodMonth < 1 || r.PeriodMonth > 12 {
		errs = append(errs, validator.ValidationError{Field: "period_month", Message: "must be between 1 and 12"})
	}
	if r.PeriodYear < 2000 {
		errs = append(errs, validator.ValidationError{Field: "period_year", Message: "must be 2000 or later"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// EmployeeError reports one employee whose generation failed. The rest of
// the run is unaffected.
type EmployeeError struct {
	EmployeeName string `json:"employee_name"`
	Error        string `json:"error"`
}

type GenerateSummary struct {
	Generated int             `json:"generated"`
	Errors    []EmployeeError `json:"errors"`
}

type MarkPaidRequest struct {
	PayrollID  string  `json:"-"`
	PaidAt     *string `json:"paid_at,omitempty"`
	PaymentRef *string `json:"payment_ref,omitempty"`
}

func (r *MarkPaidRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.PayrollID) {
		errs = append(errs, validator.ValidationError{Field: "payroll_id", Message: "payroll_id is required"})
	}
	if r.PaidAt != nil {
		if _, ok := validator.IsValidDateTime(*r.PaidAt); !ok {
			errs = append(errs, validator.ValidationError{Field: "paid_at", Message: "paid_at must be an ISO8601 timestamp"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PayrollRecordResponse struct {
	ID            string          `json:"id"`
	EmployeeID    string          `json:"employee_id"`
	EmployeeName  string          `json:"employee_name"`
	EmployeeCode  string          `json:"employee_code"`
	PeriodMonth   int             `json:"period_month"`
	PeriodYear    int             `json:"period_year"`
	BasicSalary   decimal.Decimal `json:"basic_salary"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
	OvertimePay   decimal.Decimal `json:"overtime_pay"`
	Allowances    decimal.Decimal `json:"allowances"`
	Deductions    decimal.Decimal `json:"deductions"`
	DaysPresent   decimal.Decimal `json:"days_present"`
	GrossPay      decimal.Decimal `json:"gross_pay"`
	NetPay        decimal.Decimal `json:"net_pay"`
	Paid          bool            `json:"paid"`
	PaidAt        *string         `json:"paid_at,omitempty"`
	PaymentRef    *string         `json:"payment_ref,omitempty"`
	GeneratedAt   string          `json:"generated_at"`
}

func ToResponse(r PayrollRecord) PayrollRecordResponse {
	resp := PayrollRecordResponse{
		ID:            r.ID,
		EmployeeID:    r.EmployeeID,
		PeriodMonth:   r.PeriodMonth,
		PeriodYear:    r.PeriodYear,
		BasicSalary:   r.BasicSalary,
		OvertimeHours: r.OvertimeHours,
		OvertimePay:   r.OvertimePay,
		Allowances:    r.Allowances,
		Deductions:    r.Deductions,
		DaysPresent:   r.DaysPresent,
		GrossPay:      r.GrossPay,
		NetPay:        r.NetPay,
		Paid:          r.Paid,
		PaymentRef:    r.PaymentRef,
		GeneratedAt:   r.GeneratedAt.Format(time.RFC3339),
	}
	if r.EmployeeName != nil {
		resp.EmployeeName = *r.EmployeeName
	}
	if r.EmployeeCode != nil {
		resp.EmployeeCode = *r.EmployeeCode
	}
	if r.PaidAt != nil {
		s := r.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &s
	}
	return resp
}

type PayrollFilter struct {
	PeriodMonth *int
	PeriodYear  *int
	EmployeeID  *string
	Paid        *bool
	Page        int
	Limit       int
}

type ListPayrollResponse struct {
	Data       []PayrollRecordResponse `json:"data"`
	TotalCount int64                   `json:"total_count"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
}
