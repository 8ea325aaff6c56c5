package payroll

import "errors"

var (
	ErrPayrollRecordNotFound = errors.New("payroll record not found")

	// ErrAlreadyPaid guards both double generation against a paid record
	// and double payment of the same record. It is a business-rule
	// violation, not a crash; batch operations report it per employee.
	ErrAlreadyPaid = errors.New("payroll record already paid")
)
