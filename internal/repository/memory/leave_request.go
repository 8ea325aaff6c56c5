package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tallyops/payroll-backend-go/internal/domain/leave"
)

type LeaveRequestRepository struct {
	mu       sync.RWMutex
	requests map[string]leave.LeaveRequest
}

func NewLeaveRequestRepository() *LeaveRequestRepository {
	return &LeaveRequestRepository{
		requests: make(map[string]leave.LeaveRequest),
	}
}

func (r *LeaveRequestRepository) Create(_ context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	request.CreatedAt = now
	request.UpdatedAt = now
	r.requests[request.ID] = request
	return request, nil
}

func (r *LeaveRequestRepository) GetByID(_ context.Context, id string) (leave.LeaveRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return req, nil
}

// Decide performs the compare-and-set on status=pending under the store
// lock, matching the SQL predicate-update path.
func (r *LeaveRequestRepository) Decide(_ context.Context, id string, status leave.Status, decidedBy *string, decidedAt time.Time) (leave.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	if req.Status != leave.StatusPending {
		return leave.LeaveRequest{}, leave.ErrInvalidTransition
	}

	req.Status = status
	req.DecidedBy = decidedBy
	req.DecidedAt = &decidedAt
	req.UpdatedAt = time.Now()
	r.requests[id] = req
	return req, nil
}

func (r *LeaveRequestRepository) ListApprovedOverlapping(_ context.Context, employeeID string, from, to time.Time) ([]leave.LeaveRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []leave.LeaveRequest
	for _, req := range r.requests {
		if req.EmployeeID != employeeID || req.Status != leave.StatusApproved {
			continue
		}
		if !req.Overlaps(from, to) {
			continue
		}
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FromDate.Before(out[j].FromDate) })
	return out, nil
}

func (r *LeaveRequestRepository) List(_ context.Context, filter leave.LeaveFilter) ([]leave.LeaveRequest, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []leave.LeaveRequest
	for _, req := range r.requests {
		if filter.EmployeeID != nil && req.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && req.Status != *filter.Status {
			continue
		}
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	total := int64(len(out))
	if filter.Limit > 0 {
		start := 0
		if filter.Page > 1 {
			start = (filter.Page - 1) * filter.Limit
		}
		if start > len(out) {
			start = len(out)
		}
		end := start + filter.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, total, nil
}
