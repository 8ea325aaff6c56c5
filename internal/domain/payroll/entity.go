package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayrollRecord is the immutable-once-paid result of a payroll run for
// one employee and one calendar month. Identity is
// (EmployeeID, PeriodMonth, PeriodYear); regeneration replaces an unpaid
// record and must never touch a paid one. Corrections after payment are
// adjustment records owned by another system, not edits here.
type PayrollRecord struct {
	ID          string
	EmployeeID  string
	PeriodMonth int
	PeriodYear  int

	BasicSalary   decimal.Decimal
	OvertimeHours decimal.Decimal
	OvertimePay   decimal.Decimal
	Allowances    decimal.Decimal
	Deductions    decimal.Decimal
	// DaysPresent moves in half-day steps.
	DaysPresent decimal.Decimal
	// GrossPay = BasicSalary + OvertimePay + Allowances
	GrossPay decimal.Decimal
	// NetPay = GrossPay - Deductions
	NetPay decimal.Decimal

	Paid       bool
	PaidAt     *time.Time
	PaidBy     *string
	PaymentRef *string

	GeneratedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Joined for responses
	EmployeeName *string
	EmployeeCode *string
}

// Period returns the inclusive calendar bounds of the record's month,
// midnight UTC.
func Period(month, year int) (from, to time.Time) {
	from = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to = from.AddDate(0, 1, -1)
	return from, to
}

// DaysInMonth is the period's total working days for monthly proration:
// the literal calendar length of the month, matching the literal
// date-span rule used everywhere else in the engine.
func DaysInMonth(month, year int) int {
	from, to := Period(month, year)
	return int(to.Sub(from).Hours()/24) + 1
}
