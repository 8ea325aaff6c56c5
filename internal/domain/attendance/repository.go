package attendance

import (
	"context"
	"time"
)

// AttendanceRepository persists attendance records. Implementations must
// serialize writes per (employeeID, date) key: Upsert is the only write
// and behaves as an atomic replace, so re-submitting the same day can
// never produce a second row or a lost update.
type AttendanceRepository interface {
	// Upsert inserts the record or replaces the existing record for the
	// same (employeeID, date). Returns the stored state.
	Upsert(ctx context.Context, att Attendance) (Attendance, error)

	// GetByEmployeeAndDate returns nil (no error) when no record exists.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Attendance, error)

	// ListRange returns all records for one employee in [from, to],
	// ordered by date. Used by the aggregator.
	ListRange(ctx context.Context, employeeID string, from, to time.Time) ([]Attendance, error)

	// List applies an AttendanceFilter with pagination.
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)
}

// AttendanceService covers ingestion (single and bulk), queries and
// period aggregation.
type AttendanceService interface {
	// Record validates and upserts a single attendance record.
	Record(ctx context.Context, req RecordAttendanceRequest) (AttendanceResponse, error)

	// BulkIngest applies an ordered set of rows with per-row failure
	// isolation. Re-submitting the same rows is safe (idempotent upsert).
	BulkIngest(ctx context.Context, req BulkIngestRequest) (BulkIngestSummary, error)

	// List returns filtered records plus aggregate totals.
	List(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	// Aggregate derives per-employee totals over [from, to]. Pure read:
	// safe to call repeatedly and in parallel for different employees.
	Aggregate(ctx context.Context, employeeID string, from, to time.Time) (PeriodTotals, error)
}

// Aggregator is the narrow dependency payroll generation needs.
type Aggregator interface {
	Aggregate(ctx context.Context, employeeID string, from, to time.Time) (PeriodTotals, error)
}
