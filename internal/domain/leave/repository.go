package leave

import (
	"context"
	"time"
)

// LeaveRequestRepository persists leave requests. Decide is the only
// state-changing write after Create and must be an atomic
// compare-and-set on status=pending, so two concurrent decisions can
// never both succeed.
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)

	GetByID(ctx context.Context, id string) (LeaveRequest, error)

	// Decide moves a pending request to approved or rejected. Returns
	// ErrLeaveRequestNotFound when id is unknown and ErrInvalidTransition
	// when the request is no longer pending.
	Decide(ctx context.Context, id string, status Status, decidedBy *string, decidedAt time.Time) (LeaveRequest, error)

	// ListApprovedOverlapping returns approved requests for the employee
	// that cover at least one day of [from, to].
	ListApprovedOverlapping(ctx context.Context, employeeID string, from, to time.Time) ([]LeaveRequest, error)

	List(ctx context.Context, filter LeaveFilter) ([]LeaveRequest, int64, error)
}

// LeaveService is the pending → approved/rejected workflow.
type LeaveService interface {
	Apply(ctx context.Context, req ApplyLeaveRequest) (LeaveResponse, error)
	Approve(ctx context.Context, id string) (LeaveResponse, error)
	Reject(ctx context.Context, id string) (LeaveResponse, error)
	List(ctx context.Context, filter LeaveFilter) ([]LeaveResponse, int64, error)
}
