package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the closed set of per-day attendance outcomes. Raw input is
// parsed at the boundary; nothing downstream ever sees a free-form string.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLeave   Status = "leave"
	StatusHalfDay Status = "half_day"
)

var statuses = []Status{StatusPresent, StatusAbsent, StatusLeave, StatusHalfDay}

func (s Status) Valid() bool {
	for _, known := range statuses {
		if s == known {
			return true
		}
	}
	return false
}

// StatusValues lists the accepted status strings, for validation messages.
func StatusValues() []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// Attendance is one employee-day. At most one record exists per
// (EmployeeID, Date); writes for the same key replace the earlier record.
type Attendance struct {
	ID         string
	EmployeeID string
	// Date is the calendar day, normalized to midnight UTC.
	Date     time.Time
	Status   Status
	CheckIn  *time.Time
	CheckOut *time.Time
	// WorkMinutes is derived: checkOut-checkIn when both are set, else 0.
	WorkMinutes int
	// JobID optionally attributes the day to a project/job for costing.
	JobID     *string
	Remarks   *string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined for responses
	EmployeeName *string
}

// Hours returns the worked time in hours with minute precision.
func (a Attendance) Hours() decimal.Decimal {
	return decimal.NewFromInt(int64(a.WorkMinutes)).Div(decimal.NewFromInt(60))
}

// DeriveWorkMinutes computes the stored WorkMinutes for a record. Only a
// complete check-in/check-out pair counts; a negative span never occurs
// because validation rejects checkOut <= checkIn.
func DeriveWorkMinutes(checkIn, checkOut *time.Time) int {
	if checkIn == nil || checkOut == nil {
		return 0
	}
	minutes := int(checkOut.Sub(*checkIn).Minutes())
	if minutes < 0 {
		return 0
	}
	return minutes
}

// Day normalizes a timestamp to its calendar day in UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
