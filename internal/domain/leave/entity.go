package leave

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

type Type string

const (
	TypeSick   Type = "sick"
	TypeCasual Type = "casual"
	TypeEarned Type = "earned"
	TypeUnpaid Type = "unpaid"
)

var types = []Type{TypeSick, TypeCasual, TypeEarned, TypeUnpaid}

func (t Type) Valid() bool {
	for _, known := range types {
		if t == known {
			return true
		}
	}
	return false
}

// Paid reports whether days of this leave type count toward pay.
// Unpaid leave reduces a monthly employee's prorated salary.
func (t Type) Paid() bool {
	return t != TypeUnpaid
}

// LeaveRequest is a dated request for leave. It is created pending and
// receives exactly one decision; approved and rejected are final.
type LeaveRequest struct {
	ID         string
	EmployeeID string
	// FromDate and ToDate are inclusive calendar days, midnight UTC.
	FromDate  time.Time
	ToDate    time.Time
	Type      Type
	Status    Status
	Reason    *string
	DecidedBy *string
	DecidedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined for responses
	EmployeeName *string
}

// Days is the inclusive calendar span. Weekends and holidays are not
// excluded; the range is taken literally.
func (r LeaveRequest) Days() int {
	return int(r.ToDate.Sub(r.FromDate).Hours()/24) + 1
}

// Overlaps reports whether the request covers any day of [from, to].
func (r LeaveRequest) Overlaps(from, to time.Time) bool {
	return !r.FromDate.After(to) && !r.ToDate.Before(from)
}
