package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee is an externally managed master record. The engine only reads
// it: identity, compensation terms and activity status feed attendance
// resolution and payroll computation.
type Employee struct {
	ID         string
	Code       string
	FullName   string
	SalaryType SalaryType
	// Rate is interpreted per SalaryType: per month, per day or per hour.
	Rate       decimal.Decimal
	Allowances decimal.Decimal
	Deductions decimal.Decimal
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (e Employee) IsActive() bool {
	return e.Status == StatusActive
}

type SalaryType string

const (
	SalaryTypeMonthly SalaryType = "monthly"
	SalaryTypeDaily   SalaryType = "daily"
	SalaryTypeHourly  SalaryType = "hourly"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)
