package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tallyops/payroll-backend-go/internal/domain/attendance"
	"github.com/tallyops/payroll-backend-go/internal/domain/employee"
	"github.com/tallyops/payroll-backend-go/internal/domain/payroll"
	"github.com/tallyops/payroll-backend-go/internal/pkg/batch"
	"github.com/tallyops/payroll-backend-go/internal/pkg/jwt"
	"github.com/tallyops/payroll-backend-go/internal/pkg/timeout"
	"github.com/tallyops/payroll-backend-go/internal/pkg/validator"
)

type PayrollServiceImpl struct {
	payroll.PayrollRepository
	employee.EmployeeRepository
	aggregator          attendance.Aggregator
	logger              *slog.Logger
	standardDailyHours  decimal.Decimal
	overtimeMultiplier  decimal.Decimal
	generateConcurrency int
	opTimeout           time.Duration
}

func NewPayrollService(
	payrollRepository payroll.PayrollRepository,
	employeeRepository employee.EmployeeRepository,
	aggregator attendance.Aggregator,
	logger *slog.Logger,
	standardDailyHours decimal.Decimal,
	overtimeMultiplier decimal.Decimal,
	generateConcurrency int,
	opTimeout time.Duration,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		PayrollRepository:   payrollRepository,
		EmployeeRepository:  employeeRepository,
		aggregator:          aggregator,
		logger:              logger,
		standardDailyHours:  standardDailyHours,
		overtimeMultiplier:  overtimeMultiplier,
		generateConcurrency: generateConcurrency,
		opTimeout:           opTimeout,
	}
}

// Generate implements payroll.PayrollService. Employees run in parallel
// with bounded concurrency; one employee's failure never aborts the
// others. Regeneration replaces an unpaid record for the period; a paid
// record blocks the employee with ErrAlreadyPaid.
func (s *PayrollServiceImpl) Generate(ctx context.Context, req payroll.GeneratePayrollRequest) (payroll.GenerateSummary, error) {
	if err := req.Validate(); err != nil {
		return payroll.GenerateSummary{}, err
	}

	ctx, cancel := timeout.Guard(ctx, s.opTimeout)
	defer cancel()

	var summary payroll.GenerateSummary

	var employees []employee.Employee
	if len(req.EmployeeIDs) > 0 {
		found, err := s.EmployeeRepository.GetByIDs(ctx, req.EmployeeIDs)
		if err != nil {
			return payroll.GenerateSummary{}, timeout.Map(err)
		}
		byID := make(map[string]bool, len(found))
		for _, emp := range found {
			byID[emp.ID] = true
		}
		for _, id := range req.EmployeeIDs {
			if !byID[id] {
				summary.Errors = append(summary.Errors, payroll.EmployeeError{
					EmployeeName: id,
					Error:        employee.ErrEmployeeNotFound.Error(),
				})
			}
		}
		employees = found
	} else {
		all, err := s.EmployeeRepository.ListActive(ctx)
		if err != nil {
			return payroll.GenerateSummary{}, timeout.Map(err)
		}
		employees = all
	}

	results := batch.Run(ctx, s.generateConcurrency, employees,
		func(ctx context.Context, _ int, emp employee.Employee) (payroll.PayrollRecord, error) {
			return s.generateOne(ctx, emp, req.PeriodMonth, req.PeriodYear)
		})

	for i, res := range results {
		if res.Err != nil {
			summary.Errors = append(summary.Errors, payroll.EmployeeError{
				EmployeeName: employees[i].FullName,
				Error:        timeout.Map(res.Err).Error(),
			})
			continue
		}
		summary.Generated++
	}

	s.logger.Info("payroll generated",
		"period_month", req.PeriodMonth,
		"period_year", req.PeriodYear,
		"generated", summary.Generated,
		"failed", len(summary.Errors),
	)

	return summary, nil
}

func (s *PayrollServiceImpl) generateOne(ctx context.Context, emp employee.Employee, month, year int) (payroll.PayrollRecord, error) {
	if !emp.IsActive() {
		return payroll.PayrollRecord{}, employee.ErrEmployeeInactive
	}

	// Paid guard before any computation. Replace re-checks under the
	// store's uniqueness invariant, so a concurrent payment still loses.
	existing, err := s.PayrollRepository.GetByEmployeePeriod(ctx, emp.ID, month, year)
	if err != nil && err != payroll.ErrPayrollRecordNotFound {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to check existing payroll record: %w", err)
	}
	if err == nil && existing.Paid {
		return payroll.PayrollRecord{}, payroll.ErrAlreadyPaid
	}

	from, to := payroll.Period(month, year)
	totals, err := s.aggregator.Aggregate(ctx, emp.ID, from, to)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}

	basic := s.basicSalary(emp, totals, month, year)
	overtimePay := totals.OvertimeHours.
		Mul(s.hourlyRate(emp, month, year)).
		Mul(s.overtimeMultiplier).
		Round(2)
	gross := basic.Add(overtimePay).Add(emp.Allowances)
	net := gross.Sub(emp.Deductions)

	record := payroll.PayrollRecord{
		ID:            uuid.NewString(),
		EmployeeID:    emp.ID,
		PeriodMonth:   month,
		PeriodYear:    year,
		BasicSalary:   basic,
		OvertimeHours: totals.OvertimeHours,
		OvertimePay:   overtimePay,
		Allowances:    emp.Allowances,
		Deductions:    emp.Deductions,
		DaysPresent:   totals.DaysPresent,
		GrossPay:      gross,
		NetPay:        net,
		GeneratedAt:   time.Now().UTC(),
	}

	return s.PayrollRepository.Replace(ctx, record)
}

// basicSalary applies the employee's compensation terms to the period
// totals. Paid leave days count like presence for monthly and daily
// employees; unpaid leave never pays.
func (s *PayrollServiceImpl) basicSalary(emp employee.Employee, totals attendance.PeriodTotals, month, year int) decimal.Decimal {
	payableDays := totals.DaysPresent.Add(totals.PaidLeaveDays)

	switch emp.SalaryType {
	case employee.SalaryTypeMonthly:
		workingDays := decimal.NewFromInt(int64(payroll.DaysInMonth(month, year)))
		return emp.Rate.Mul(payableDays).Div(workingDays).Round(2)
	case employee.SalaryTypeDaily:
		return emp.Rate.Mul(payableDays).Round(2)
	case employee.SalaryTypeHourly:
		return emp.Rate.Mul(totals.TotalHours).Round(2)
	}
	return decimal.Zero
}

// hourlyRate is the hourly equivalent of the employee's rate, used for
// overtime valuation.
func (s *PayrollServiceImpl) hourlyRate(emp employee.Employee, month, year int) decimal.Decimal {
	switch emp.SalaryType {
	case employee.SalaryTypeMonthly:
		workingDays := decimal.NewFromInt(int64(payroll.DaysInMonth(month, year)))
		return emp.Rate.Div(workingDays.Mul(s.standardDailyHours))
	case employee.SalaryTypeDaily:
		return emp.Rate.Div(s.standardDailyHours)
	case employee.SalaryTypeHourly:
		return emp.Rate
	}
	return decimal.Zero
}

// MarkPaid implements payroll.PayrollService. The transition happens at
// most once; a repeated call reports ErrAlreadyPaid and the stored
// payment fields keep their first values.
func (s *PayrollServiceImpl) MarkPaid(ctx context.Context, req payroll.MarkPaidRequest) (payroll.PayrollRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	ctx, cancel := timeout.Guard(ctx, s.opTimeout)
	defer cancel()

	paidAt := time.Now().UTC()
	if req.PaidAt != nil {
		paidAt, _ = validator.IsValidDateTime(*req.PaidAt)
	}

	var paidBy *string
	if actor := jwt.ActorID(ctx); actor != "" {
		paidBy = &actor
	}

	if _, err := s.PayrollRepository.MarkPaid(ctx, req.PayrollID, paidAt, paidBy, req.PaymentRef); err != nil {
		return payroll.PayrollRecordResponse{}, timeout.Map(err)
	}

	s.logger.Info("payroll record paid",
		"payroll_id", req.PayrollID,
		"paid_at", paidAt.Format(time.RFC3339),
	)

	// Re-read with the employee join for the response.
	record, err := s.PayrollRepository.GetByID(ctx, req.PayrollID)
	if err != nil {
		return payroll.PayrollRecordResponse{}, timeout.Map(err)
	}

	return payroll.ToResponse(record), nil
}

// Get implements payroll.PayrollService.
func (s *PayrollServiceImpl) Get(ctx context.Context, id string) (payroll.PayrollRecordResponse, error) {
	ctx, cancel := timeout.Guard(ctx, s.opTimeout)
	defer cancel()

	record, err := s.PayrollRepository.GetByID(ctx, id)
	if err != nil {
		return payroll.PayrollRecordResponse{}, timeout.Map(err)
	}

	return payroll.ToResponse(record), nil
}

// List implements payroll.PayrollService.
func (s *PayrollServiceImpl) List(ctx context.Context, filter payroll.PayrollFilter) (payroll.ListPayrollResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}

	ctx, cancel := timeout.Guard(ctx, s.opTimeout)
	defer cancel()

	records, total, err := s.PayrollRepository.List(ctx, filter)
	if err != nil {
		return payroll.ListPayrollResponse{}, timeout.Map(err)
	}

	data := make([]payroll.PayrollRecordResponse, 0, len(records))
	for _, rec := range records {
		data = append(data, payroll.ToResponse(rec))
	}

	return payroll.ListPayrollResponse{
		Data:       data,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}
