package payroll

import (
	"context"
	"time"
)

// PayrollRepository persists payroll records. The store owns the
// (employee_id, period_month, period_year) uniqueness invariant, so
// concurrent generation for the same key can never create two records.
type PayrollRepository interface {
	GetByID(ctx context.Context, id string) (PayrollRecord, error)

	// GetByEmployeePeriod returns ErrPayrollRecordNotFound when no record
	// exists for the key.
	GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (PayrollRecord, error)

	// Replace atomically removes the unpaid record for the record's key
	// (if any) and inserts the new one. Fails with ErrAlreadyPaid when a
	// paid record holds the key.
	Replace(ctx context.Context, record PayrollRecord) (PayrollRecord, error)

	// MarkPaid is a compare-and-set on paid=false. Returns ErrAlreadyPaid
	// when the record is already paid (stored payment fields untouched)
	// and ErrPayrollRecordNotFound when id is unknown.
	MarkPaid(ctx context.Context, id string, paidAt time.Time, paidBy *string, paymentRef *string) (PayrollRecord, error)

	List(ctx context.Context, filter PayrollFilter) ([]PayrollRecord, int64, error)
}

// PayrollService covers generation and the paid/unpaid lifecycle.
type PayrollService interface {
	// Generate runs payroll for the period. Per-employee failures are
	// isolated and reported; the run itself only fails on invalid input.
	Generate(ctx context.Context, req GeneratePayrollRequest) (GenerateSummary, error)

	// MarkPaid transitions a record to paid exactly once.
	MarkPaid(ctx context.Context, req MarkPaidRequest) (PayrollRecordResponse, error)

	Get(ctx context.Context, id string) (PayrollRecordResponse, error)
	List(ctx context.Context, filter PayrollFilter) (ListPayrollResponse, error)
}
