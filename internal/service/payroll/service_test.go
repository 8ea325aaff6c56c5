package payroll

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyops/payroll-backend-go/internal/domain/attendance"
	"github.com/tallyops/payroll-backend-go/internal/domain/employee"
	"github.com/tallyops/payroll-backend-go/internal/domain/leave"
	"github.com/tallyops/payroll-backend-go/internal/domain/payroll"
	"github.com/tallyops/payroll-backend-go/internal/repository/memory"
	attendanceService "github.com/tallyops/payroll-backend-go/internal/service/attendance"
)

type payrollFixture struct {
	svc           payroll.PayrollService
	attendanceSvc attendance.AttendanceService
	payrollRepo   *memory.PayrollRepository
	leaveRepo     *memory.LeaveRequestRepository
}

func newPayrollFixture(emps ...employee.Employee) *payrollFixture {
	attRepo := memory.NewAttendanceRepository()
	leaveRepo := memory.NewLeaveRequestRepository()
	empRepo := memory.NewEmployeeRepository(emps...)
	payrollRepo := memory.NewPayrollRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	standardDailyHours := decimal.NewFromInt(8)
	attendanceSvc := attendanceService.NewAttendanceService(
		attRepo, leaveRepo, empRepo, logger, standardDailyHours, 4, 5*time.Second)
	svc := NewPayrollService(
		payrollRepo, empRepo, attendanceSvc, logger,
		standardDailyHours, decimal.NewFromFloat(1.5), 4, 5*time.Second)

	return &payrollFixture{
		svc:           svc,
		attendanceSvc: attendanceSvc,
		payrollRepo:   payrollRepo,
		leaveRepo:     leaveRepo,
	}
}

func monthlyEmployee(rate int64) employee.Employee {
	return employee.Employee{
		ID:         uuid.NewString(),
		Code:       "EMP-M01",
		FullName:   "Monthly Employee",
		SalaryType: employee.SalaryTypeMonthly,
		Rate:       decimal.NewFromInt(rate),
		Status:     employee.StatusActive,
	}
}

func (f *payrollFixture) seedPresent(t *testing.T, employeeID string, dates ...string) {
	t.Helper()
	for _, d := range dates {
		_, err := f.attendanceSvc.Record(context.Background(), attendance.RecordAttendanceRequest{
			EmployeeID: employeeID,
			Date:       d,
			Status:     "present",
		})
		require.NoError(t, err)
	}
}

func (f *payrollFixture) seedWorkedDay(t *testing.T, employeeID, date string, hours int) {
	t.Helper()
	checkIn := date + "T09:00:00Z"
	checkOut := fmt.Sprintf("%sT%02d:00:00Z", date, 9+hours)
	_, err := f.attendanceSvc.Record(context.Background(), attendance.RecordAttendanceRequest{
		EmployeeID: employeeID,
		Date:       date,
		Status:     "present",
		CheckIn:    &checkIn,
		CheckOut:   &checkOut,
	})
	require.NoError(t, err)
}

func (f *payrollFixture) seedApprovedLeave(t *testing.T, employeeID, from, to string, leaveType leave.Type) {
	t.Helper()
	fromDate, err := time.Parse("2006-01-02", from)
	require.NoError(t, err)
	toDate, err := time.Parse("2006-01-02", to)
	require.NoError(t, err)
	_, err = f.leaveRepo.Create(context.Background(), leave.LeaveRequest{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		FromDate:   fromDate,
		ToDate:     toDate,
		Type:       leaveType,
		Status:     leave.StatusApproved,
	})
	require.NoError(t, err)
}

// aprilDays lists April 2024 days 1..n as YYYY-MM-DD strings.
func aprilDays(n int) []string {
	out := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, fmt.Sprintf("2024-04-%02d", i))
	}
	return out
}

func TestPayrollService_Generate_MonthlyProration(t *testing.T) {
	ctx := context.Background()
	emp := monthlyEmployee(30000)
	f := newPayrollFixture(emp)

	// April 2024 has 30 days: 28 present plus 2 days of approved paid
	// leave pays the full monthly rate.
	f.seedPresent(t, emp.ID, aprilDays(28)...)
	f.seedApprovedLeave(t, emp.ID, "2024-04-29", "2024-04-30", leave.TypeEarned)

	summary, err := f.svc.Generate(ctx, payroll.GeneratePayrollRequest{PeriodMonth: 4, PeriodYear: 2024})

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Generated)
	assert.Empty(t, summary.Errors)

	rec, err := f.payrollRepo.GetByEmployeePeriod(ctx, emp.ID, 4, 2024)
	require.NoError(t, err)
	assert.True(t, rec.BasicSalary.Equal(decimal.NewFromInt(30000)), "basic salary = %s", rec.BasicSalary)
	assert.True(t, rec.DaysPresent.Equal(decimal.NewFromInt(28)), "days present = %s", rec.DaysPresent)
	assert.False(t, rec.Paid)
}

func TestPayrollService_Generate_MonthlyUnpaidLeaveReducesPay(t *testing.T) {
	ctx := context.Background()
	emp := monthlyEmployee(30000)
	f := newPayrollFixture(emp)

	f.seedPresent(t, emp.ID, aprilDays(27)...)
	f.seedApprovedLeave(t, emp.ID, "2024-04-28", "2024-04-30", leave.TypeUnpaid)

	summary, err := f.svc.Generate(ctx, payroll.GeneratePayrollRequest{PeriodMonth: 4, PeriodYear: 2024})

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Generated)

	// 27 payable days of 30: 30000 * 27/30 = 27000.
	rec, err := f.payrollRepo.GetByEmployeePeriod(ctx, emp.ID, 4, 2024)
	require.NoError(t, err)
	assert.True(t, rec.BasicSalary.Equal(decimal.NewFromInt(27000)), "basic salary = %s", rec.BasicSalary)
}

func TestPayrollService_Generate_Daily(t *testing.T) {
	ctx := context.Background()
	emp := employee.Employee{
		ID:         uuid.NewString(),
		Code:       "EMP-D01",
		FullName:   "Daily Employee",
		SalaryType: employee.SalaryTypeDaily,
		Rate:       decimal.NewFromInt(100),
		Status:     employee.StatusActive,
	}
	f := newPayrollFixture(emp)

	f.seedPresent(t, emp.ID, "2024-04-01", "2024-04-02", "2024-04-03")
	f.seedApprovedLeave(t, emp.ID, "2024-04-04", "2024-04-04", leave.TypeSick)

	summary, err := f.svc.Generate(ctx, payroll.GeneratePayrollRequest{PeriodMonth: 4, PeriodYear: 2024})

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Generated)

	rec, err := f.payrollRepo.GetByEmployeePeriod(ctx, emp.ID, 4, 2024)
	require.NoError(t, err)
	assert.True(t, rec.BasicSalary.Equal(decimal.NewFromInt(400)), "basic salary = %s", rec.BasicSalary)
}

func TestPayrollService_Generate_HourlyWithOvertime(t *testing.T) {
	ctx := context.Background()
	emp := employee.Employee{
		ID:         uuid.NewString(),
		Code:       "EMP-H01",
		FullName:   "Hourly Employee",
		SalaryType: employee.SalaryTypeHourly,
		Rate:       decimal.NewFromInt(10),
		Allowances: decimal.NewFromInt(50),
		Deductions: decimal.NewFromInt(20),
		Status:     employee.StatusActive,
	}
	f := newPayrollFixture(emp)

	// One 10 hour day: 2 hours beyond the 8 hour threshold.
	f.seedWorkedDay(t, emp.ID, "2024-04-01", 10)

	summary, err := f.svc.Generate(ctx, payroll.GeneratePayrollRequest{PeriodMonth: 4, PeriodYear: 2024})

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Generated)

	rec, err := f.payrollRepo.GetByEmployeePeriod(ctx, emp.ID, 4, 2024)
	require.NoError(t, err)
	assert.True(t, rec.BasicSalary.Equal(decimal.NewFromInt(100)), "basic salary = %s", rec.BasicSalary)
	assert.True(t, rec.OvertimeHours.Equal(decimal.NewFromInt(2)), "overtime hours = %s", rec.OvertimeHours)
	// 2h * 10/h * 1.5 = 30
	assert.True(t, rec.OvertimePay.Equal(decimal.NewFromInt(30)), "overtime pay = %s", rec.OvertimePay)
	assert.True(t, rec.GrossPay.Equal(decimal.NewFromInt(180)), "gross pay = %s", rec.GrossPay)
	assert.True(t, rec.NetPay.Equal(decimal.NewFromInt(160)), "net pay = %s", rec.NetPay)
}

func TestPayrollService_Generate_ReplacesUnpaidDraft(t *testing.T) {
	ctx := context.Background()
	emp := monthlyEmployee(30000)
	f := newPayrollFixture(emp)

	f.seedPresent(t, emp.ID, aprilDays(10)...)
	_, err := f.svc.Generate(ctx, payroll.GeneratePayrollRequest{PeriodMonth: 4, PeriodYear: 2024})
	require.NoError(t, err)
	firstRec, err := f.payrollRepo.GetByEmployeePeriod(ctx, emp.ID, 4, 2024)
	require.NoError(t, err)

	// Late attendance arrives; regeneration replaces the draft.
	f.seedPresent(t, emp.ID, aprilDays(20)...)
	summary, err := f.svc.Generate(ctx, payroll.GeneratePayrollRequest{PeriodMonth: 4, PeriodYear: 2024})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Generated)

	secondRec, err := f.payrollRepo.GetByEmployeePeriod(ctx, emp.ID, 4, 2024)
	require.NoError(t, err)
	assert.NotEqual(t, firstRec.ID, secondRec.ID)
	assert.True(t, secondRec.DaysPresent.Equal(decimal.NewFromInt(20)), "days present = %s", secondRec.DaysPresent)

	records, total, err := f.payrollRepo.List(ctx, payroll.PayrollFilter{EmployeeID: &emp.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, records, 1)
}

func TestPayrollService_Generate_SkipsPaidPeriod(t *testing.T) {
	ctx := context.Background()
	emp := monthlyEmployee(30000)
	f := newPayrollFixture(emp)

	f.seedPresent(t, emp.ID, aprilDays(10)...)
	_, err := f.svc.Generate(ctx, payroll.GeneratePayrollRequest{PeriodMonth: 4, PeriodYear: 2024})
	require.NoError(t, err)

	rec, err := f.payrollRepo.GetByEmployeePeriod(ctx, emp.ID, 4, 2024)
	require.NoError(t, err)
	_, err = f.svc.MarkPaid(ctx, payroll.MarkPaidRequest{PayrollID: rec.ID})
	require.NoError(t, err)

	summary, err := f.svc.Generate(ctx, payroll.GeneratePayrollRequest{PeriodMonth: 4, PeriodYear: 2024})

	require.NoError(t, err)
	assert.Equal(t, 0, summary.Generated)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, emp.FullName, summary.Errors[0].EmployeeName)
	assert.Equal(t, payroll.ErrAlreadyPaid.Error(), summary.Errors[0].Error)
}

func TestPayrollService_Generate_PerEmployeeIsolation(t *testing.T) {
	ctx := context.Background()
	good := monthlyEmployee(30000)
	f := newPayrollFixture(good)

	f.seedPresent(t, good.ID, aprilDays(5)...)

	unknown := uuid.NewString()
	summary, err := f.svc.Generate(ctx, payroll.GeneratePayrollRequest{
		PeriodMonth: 4,
		PeriodYear:  2024,
		EmployeeIDs: []string{good.ID, unknown},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Generated)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, unknown, summary.Errors[0].EmployeeName)
}

func TestPayrollService_Generate_InvalidPeriod(t *testing.T) {
	ctx := context.Background()
	f := newPayrollFixture(monthlyEmployee(30000))

	_, err := f.svc.Generate(ctx, payroll.GeneratePayrollRequest{PeriodMonth: 13, PeriodYear: 2024})

	assert.Error(t, err)
}

func TestPayrollService_MarkPaid_Success(t *testing.T) {
	ctx := context.Background()
	emp := monthlyEmployee(30000)
	f := newPayrollFixture(emp)

	f.seedPresent(t, emp.ID, aprilDays(10)...)
	_, err := f.svc.Generate(ctx, payroll.GeneratePayrollRequest{PeriodMonth: 4, PeriodYear: 2024})
	require.NoError(t, err)
	rec, err := f.payrollRepo.GetByEmployeePeriod(ctx, emp.ID, 4, 2024)
	require.NoError(t, err)

	ref := "PAY-2024-04-001"
	result, err := f.svc.MarkPaid(ctx, payroll.MarkPaidRequest{PayrollID: rec.ID, PaymentRef: &ref})

	assert.NoError(t, err)
	assert.True(t, result.Paid)
	assert.NotNil(t, result.PaidAt)
	require.NotNil(t, result.PaymentRef)
	assert.Equal(t, ref, *result.PaymentRef)
}

func TestPayrollService_MarkPaid_Twice(t *testing.T) {
	ctx := context.Background()
	emp := monthlyEmployee(30000)
	f := newPayrollFixture(emp)

	f.seedPresent(t, emp.ID, aprilDays(10)...)
	_, err := f.svc.Generate(ctx, payroll.GeneratePayrollRequest{PeriodMonth: 4, PeriodYear: 2024})
	require.NoError(t, err)
	rec, err := f.payrollRepo.GetByEmployeePeriod(ctx, emp.ID, 4, 2024)
	require.NoError(t, err)

	firstRef := "PAY-001"
	first, err := f.svc.MarkPaid(ctx, payroll.MarkPaidRequest{PayrollID: rec.ID, PaymentRef: &firstRef})
	require.NoError(t, err)

	secondRef := "PAY-002"
	_, err = f.svc.MarkPaid(ctx, payroll.MarkPaidRequest{PayrollID: rec.ID, PaymentRef: &secondRef})
	assert.ErrorIs(t, err, payroll.ErrAlreadyPaid)

	// The first payment's fields survive the repeated call untouched.
	stored, err := f.svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PaymentRef)
	assert.Equal(t, firstRef, *stored.PaymentRef)
	assert.Equal(t, first.PaidAt, stored.PaidAt)
}

func TestPayrollService_MarkPaid_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newPayrollFixture(monthlyEmployee(30000))

	_, err := f.svc.MarkPaid(ctx, payroll.MarkPaidRequest{PayrollID: uuid.NewString()})

	assert.ErrorIs(t, err, payroll.ErrPayrollRecordNotFound)
}

func TestPayrollService_Get_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newPayrollFixture(monthlyEmployee(30000))

	_, err := f.svc.Get(ctx, uuid.NewString())

	assert.ErrorIs(t, err, payroll.ErrPayrollRecordNotFound)
}

func TestPayrollService_List_FilterByPaid(t *testing.T) {
	ctx := context.Background()
	emp := monthlyEmployee(30000)
	f := newPayrollFixture(emp)

	f.seedPresent(t, emp.ID, aprilDays(10)...)
	_, err := f.svc.Generate(ctx, payroll.GeneratePayrollRequest{PeriodMonth: 4, PeriodYear: 2024})
	require.NoError(t, err)

	paid := true
	result, err := f.svc.List(ctx, payroll.PayrollFilter{Paid: &paid})
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.TotalCount)

	unpaid := false
	result, err = f.svc.List(ctx, payroll.PayrollFilter{Paid: &unpaid})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.TotalCount)
}
