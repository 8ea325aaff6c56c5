package employee

import "github.com/shopspring/decimal"

type EmployeeResponse struct {
	ID         string          `json:"id"`
	Code       string          `json:"code"`
	FullName   string          `json:"full_name"`
	SalaryType string          `json:"salary_type"`
	Rate       decimal.Decimal `json:"rate"`
	Allowances decimal.Decimal `json:"allowances"`
	Deductions decimal.Decimal `json:"deductions"`
	Status     string          `json:"status"`
}

func ToResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:         e.ID,
		Code:       e.Code,
		FullName:   e.FullName,
		SalaryType: string(e.SalaryType),
		Rate:       e.Rate,
		Allowances: e.Allowances,
		Deductions: e.Deductions,
		Status:     string(e.Status),
	}
}
