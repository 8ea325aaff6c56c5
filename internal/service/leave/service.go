package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tallyops/payroll-backend-go/internal/domain/employee"
	"github.com/tallyops/payroll-backend-go/internal/domain/leave"
	"github.com/tallyops/payroll-backend-go/internal/pkg/jwt"
	"github.com/tallyops/payroll-backend-go/internal/pkg/timeout"
	"github.com/tallyops/payroll-backend-go/internal/pkg/validator"
)

type LeaveServiceImpl struct {
	leave.LeaveRequestRepository
	employee.EmployeeRepository
	logger    *slog.Logger
	opTimeout time.Duration
}

func NewLeaveService(
	leaveRequestRepository leave.LeaveRequestRepository,
	employeeRepository employee.EmployeeRepository,
	logger *slog.Logger,
	opTimeout time.Duration,
) leave.LeaveService {
	return &LeaveServiceImpl{
		LeaveRequestRepository: leaveRequestRepository,
		EmployeeRepository:     employeeRepository,
		logger:                 logger,
		opTimeout:              opTimeout,
	}
}

// Apply implements leave.LeaveService. Requests are created pending; the
// decision is a separate, final step.
func (s *LeaveServiceImpl) Apply(ctx context.Context, req leave.ApplyLeaveRequest) (leave.LeaveResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveResponse{}, err
	}

	ctx, cancel := timeout.Guard(ctx, s.opTimeout)
	defer cancel()

	emp, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		if err == employee.ErrEmployeeNotFound {
			return leave.LeaveResponse{}, err
		}
		return leave.LeaveResponse{}, timeout.Map(fmt.Errorf("failed to resolve employee: %w", err))
	}
	if !emp.IsActive() {
		return leave.LeaveResponse{}, employee.ErrEmployeeInactive
	}

	fromDate, _ := validator.IsValidDate(req.FromDate)
	toDate, _ := validator.IsValidDate(req.ToDate)
	if toDate.Before(fromDate) {
		return leave.LeaveResponse{}, leave.ErrInvalidRange
	}

	request := leave.LeaveRequest{
		ID:         uuid.NewString(),
		EmployeeID: emp.ID,
		FromDate:   fromDate,
		ToDate:     toDate,
		Type:       leave.Type(req.Type),
		Status:     leave.StatusPending,
		Reason:     req.Reason,
	}

	created, err := s.LeaveRequestRepository.Create(ctx, request)
	if err != nil {
		return leave.LeaveResponse{}, timeout.Map(err)
	}

	s.logger.Info("leave request created",
		"leave_request_id", created.ID,
		"employee_id", created.EmployeeID,
		"leave_type", created.Type,
		"days", created.Days(),
	)

	return leave.ToResponse(created), nil
}

// Approve implements leave.LeaveService.
func (s *LeaveServiceImpl) Approve(ctx context.Context, id string) (leave.LeaveResponse, error) {
	return s.decide(ctx, id, leave.StatusApproved)
}

// Reject implements leave.LeaveService.
func (s *LeaveServiceImpl) Reject(ctx context.Context, id string) (leave.LeaveResponse, error) {
	return s.decide(ctx, id, leave.StatusRejected)
}

func (s *LeaveServiceImpl) decide(ctx context.Context, id string, status leave.Status) (leave.LeaveResponse, error) {
	ctx, cancel := timeout.Guard(ctx, s.opTimeout)
	defer cancel()

	var decidedBy *string
	if actor := jwt.ActorID(ctx); actor != "" {
		decidedBy = &actor
	}

	decided, err := s.LeaveRequestRepository.Decide(ctx, id, status, decidedBy, time.Now().UTC())
	if err != nil {
		return leave.LeaveResponse{}, timeout.Map(err)
	}

	s.logger.Info("leave request decided",
		"leave_request_id", decided.ID,
		"employee_id", decided.EmployeeID,
		"status", decided.Status,
	)

	return leave.ToResponse(decided), nil
}

// List implements leave.LeaveService.
func (s *LeaveServiceImpl) List(ctx context.Context, filter leave.LeaveFilter) ([]leave.LeaveResponse, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}

	ctx, cancel := timeout.Guard(ctx, s.opTimeout)
	defer cancel()

	requests, total, err := s.LeaveRequestRepository.List(ctx, filter)
	if err != nil {
		return nil, 0, timeout.Map(err)
	}

	responses := make([]leave.LeaveResponse, 0, len(requests))
	for _, req := range requests {
		responses = append(responses, leave.ToResponse(req))
	}

	return responses, total, nil
}
