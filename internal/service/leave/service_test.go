package leave

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyops/payroll-backend-go/internal/domain/employee"
	"github.com/tallyops/payroll-backend-go/internal/domain/leave"
	"github.com/tallyops/payroll-backend-go/internal/pkg/validator"
	"github.com/tallyops/payroll-backend-go/internal/repository/memory"
)

func testEmployee(code string) employee.Employee {
	return employee.Employee{
		ID:         uuid.NewString(),
		Code:       code,
		FullName:   "Employee " + code,
		SalaryType: employee.SalaryTypeMonthly,
		Rate:       decimal.NewFromInt(30000),
		Status:     employee.StatusActive,
	}
}

func newLeaveFixture(emps ...employee.Employee) (leave.LeaveService, *memory.LeaveRequestRepository) {
	leaveRepo := memory.NewLeaveRequestRepository()
	empRepo := memory.NewEmployeeRepository(emps...)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := NewLeaveService(leaveRepo, empRepo, logger, 5*time.Second)
	return svc, leaveRepo
}

func TestLeaveService_Apply_Success(t *testing.T) {
	ctx := context.Background()
	emp := testEmployee("EMP-001")
	svc, _ := newLeaveFixture(emp)

	result, err := svc.Apply(ctx, leave.ApplyLeaveRequest{
		EmployeeID: emp.ID,
		FromDate:   "2024-03-01",
		ToDate:     "2024-03-03",
		Type:       "sick",
	})

	assert.NoError(t, err)
	assert.Equal(t, "pending", result.Status)
	assert.Equal(t, 3, result.Days)
	assert.Equal(t, "2024-03-01", result.FromDate)
	assert.Equal(t, "2024-03-03", result.ToDate)
}

func TestLeaveService_Apply_SingleDay(t *testing.T) {
	ctx := context.Background()
	emp := testEmployee("EMP-001")
	svc, _ := newLeaveFixture(emp)

	result, err := svc.Apply(ctx, leave.ApplyLeaveRequest{
		EmployeeID: emp.ID,
		FromDate:   "2024-03-01",
		ToDate:     "2024-03-01",
		Type:       "casual",
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Days)
}

func TestLeaveService_Apply_InvalidRange(t *testing.T) {
	ctx := context.Background()
	emp := testEmployee("EMP-001")
	svc, _ := newLeaveFixture(emp)

	_, err := svc.Apply(ctx, leave.ApplyLeaveRequest{
		EmployeeID: emp.ID,
		FromDate:   "2024-03-10",
		ToDate:     "2024-03-05",
		Type:       "sick",
	})

	assert.ErrorIs(t, err, leave.ErrInvalidRange)
}

func TestLeaveService_Apply_UnknownEmployee(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLeaveFixture(testEmployee("EMP-001"))

	_, err := svc.Apply(ctx, leave.ApplyLeaveRequest{
		EmployeeID: uuid.NewString(),
		FromDate:   "2024-03-01",
		ToDate:     "2024-03-03",
		Type:       "sick",
	})

	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestLeaveService_Apply_InvalidType(t *testing.T) {
	ctx := context.Background()
	emp := testEmployee("EMP-001")
	svc, _ := newLeaveFixture(emp)

	_, err := svc.Apply(ctx, leave.ApplyLeaveRequest{
		EmployeeID: emp.ID,
		FromDate:   "2024-03-01",
		ToDate:     "2024-03-03",
		Type:       "sabbatical",
	})

	var validationErrs validator.ValidationErrors
	assert.ErrorAs(t, err, &validationErrs)
}

func TestLeaveService_Approve_Success(t *testing.T) {
	ctx := context.Background()
	emp := testEmployee("EMP-001")
	svc, _ := newLeaveFixture(emp)

	applied, err := svc.Apply(ctx, leave.ApplyLeaveRequest{
		EmployeeID: emp.ID,
		FromDate:   "2024-03-01",
		ToDate:     "2024-03-03",
		Type:       "earned",
	})
	require.NoError(t, err)

	result, err := svc.Approve(ctx, applied.ID)

	assert.NoError(t, err)
	assert.Equal(t, "approved", result.Status)
	assert.NotNil(t, result.DecidedAt)
}

func TestLeaveService_Reject_Success(t *testing.T) {
	ctx := context.Background()
	emp := testEmployee("EMP-001")
	svc, _ := newLeaveFixture(emp)

	applied, err := svc.Apply(ctx, leave.ApplyLeaveRequest{
		EmployeeID: emp.ID,
		FromDate:   "2024-03-01",
		ToDate:     "2024-03-03",
		Type:       "earned",
	})
	require.NoError(t, err)

	result, err := svc.Reject(ctx, applied.ID)

	assert.NoError(t, err)
	assert.Equal(t, "rejected", result.Status)
}

func TestLeaveService_Approve_AlreadyApproved(t *testing.T) {
	ctx := context.Background()
	emp := testEmployee("EMP-001")
	svc, _ := newLeaveFixture(emp)

	applied, err := svc.Apply(ctx, leave.ApplyLeaveRequest{
		EmployeeID: emp.ID,
		FromDate:   "2024-03-01",
		ToDate:     "2024-03-03",
		Type:       "sick",
	})
	require.NoError(t, err)
	_, err = svc.Approve(ctx, applied.ID)
	require.NoError(t, err)

	_, err = svc.Approve(ctx, applied.ID)

	assert.ErrorIs(t, err, leave.ErrInvalidTransition)
}

func TestLeaveService_Approve_AfterReject(t *testing.T) {
	ctx := context.Background()
	emp := testEmployee("EMP-001")
	svc, leaveRepo := newLeaveFixture(emp)

	applied, err := svc.Apply(ctx, leave.ApplyLeaveRequest{
		EmployeeID: emp.ID,
		FromDate:   "2024-03-01",
		ToDate:     "2024-03-03",
		Type:       "sick",
	})
	require.NoError(t, err)
	_, err = svc.Reject(ctx, applied.ID)
	require.NoError(t, err)

	// Rejected is final; a later approval must not resurrect the request.
	_, err = svc.Approve(ctx, applied.ID)
	assert.ErrorIs(t, err, leave.ErrInvalidTransition)

	stored, err := leaveRepo.GetByID(ctx, applied.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusRejected, stored.Status)
}

func TestLeaveService_Approve_NotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLeaveFixture(testEmployee("EMP-001"))

	_, err := svc.Approve(ctx, uuid.NewString())

	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
}

func TestLeaveService_List_FilterByStatus(t *testing.T) {
	ctx := context.Background()
	emp := testEmployee("EMP-001")
	svc, _ := newLeaveFixture(emp)

	first, err := svc.Apply(ctx, leave.ApplyLeaveRequest{
		EmployeeID: emp.ID,
		FromDate:   "2024-03-01",
		ToDate:     "2024-03-03",
		Type:       "sick",
	})
	require.NoError(t, err)
	_, err = svc.Apply(ctx, leave.ApplyLeaveRequest{
		EmployeeID: emp.ID,
		FromDate:   "2024-03-10",
		ToDate:     "2024-03-12",
		Type:       "casual",
	})
	require.NoError(t, err)
	_, err = svc.Approve(ctx, first.ID)
	require.NoError(t, err)

	status := leave.StatusApproved
	results, total, err := svc.List(ctx, leave.LeaveFilter{Status: &status})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, results, 1)
	assert.Equal(t, first.ID, results[0].ID)
}
