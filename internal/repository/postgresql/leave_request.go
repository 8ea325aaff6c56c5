package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tallyops/payroll-backend-go/internal/domain/leave"
	"github.com/tallyops/payroll-backend-go/internal/pkg/database"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

const leaveColumns = `
	l.id, l.employee_id, l.from_date, l.to_date, l.leave_type, l.status,
	l.reason, l.decided_by, l.decided_at, l.created_at, l.updated_at
`

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var req leave.LeaveRequest
	err := row.Scan(
		&req.ID, &req.EmployeeID, &req.FromDate, &req.ToDate, &req.Type, &req.Status,
		&req.Reason, &req.DecidedBy, &req.DecidedAt, &req.CreatedAt, &req.UpdatedAt,
	)
	return req, err
}

// Create implements leave.LeaveRequestRepository.
func (l *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, l.db)

	query := `
		INSERT INTO leave_requests (
			id, employee_id, from_date, to_date, leave_type, status, reason
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		request.ID,
		request.EmployeeID,
		request.FromDate,
		request.ToDate,
		request.Type,
		request.Status,
		request.Reason,
	).Scan(&request.CreatedAt, &request.UpdatedAt)

	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	return request, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (l *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, l.db)

	query := `SELECT ` + leaveColumns + ` FROM leave_requests l WHERE l.id = $1`

	req, err := scanLeaveRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request by id: %w", err)
	}

	return req, nil
}

// Decide implements leave.LeaveRequestRepository. The status predicate in
// the UPDATE makes the transition a compare-and-set: of two concurrent
// decisions exactly one matches a pending row.
func (l *leaveRequestRepositoryImpl) Decide(ctx context.Context, id string, status leave.Status, decidedBy *string, decidedAt time.Time) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, l.db)

	query := `
		UPDATE leave_requests l SET
			status     = $2,
			decided_by = $3,
			decided_at = $4,
			updated_at = NOW()
		WHERE l.id = $1 AND l.status = $5
		RETURNING ` + leaveColumns

	req, err := scanLeaveRequest(q.QueryRow(ctx, query, id, status, decidedBy, decidedAt, leave.StatusPending))
	if err == nil {
		return req, nil
	}
	if err != pgx.ErrNoRows {
		return leave.LeaveRequest{}, fmt.Errorf("failed to decide leave request: %w", err)
	}

	// No pending row matched: either the id is unknown or the request was
	// already decided.
	if _, getErr := l.GetByID(ctx, id); getErr != nil {
		return leave.LeaveRequest{}, getErr
	}
	return leave.LeaveRequest{}, leave.ErrInvalidTransition
}

// ListApprovedOverlapping implements leave.LeaveRequestRepository.
func (l *leaveRequestRepositoryImpl) ListApprovedOverlapping(ctx context.Context, employeeID string, from, to time.Time) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, l.db)

	query := `
		SELECT ` + leaveColumns + `
		FROM leave_requests l
		WHERE l.employee_id = $1
		  AND l.status = $2
		  AND l.from_date <= $3
		  AND l.to_date >= $4
		ORDER BY l.from_date
	`

	rows, err := q.Query(ctx, query, employeeID, leave.StatusApproved, to, from)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		req, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, req)
	}

	return requests, rows.Err()
}

// List implements leave.LeaveRequestRepository.
func (l *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.LeaveFilter) ([]leave.LeaveRequest, int64, error) {
	q := GetQuerier(ctx, l.db)

	var conditions []string
	var args []interface{}
	argIdx := 1

	if filter.EmployeeID != nil {
		conditions = append(conditions, fmt.Sprintf("l.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("l.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := `SELECT COUNT(*) FROM leave_requests l ` + where
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leave requests: %w", err)
	}

	query := `
		SELECT ` + leaveColumns + `, e.full_name
		FROM leave_requests l
		JOIN employees e ON e.id = l.employee_id
		` + where + `
		ORDER BY l.created_at DESC
	`

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filter.Limit)
		argIdx++
		if filter.Page > 1 {
			query += fmt.Sprintf(" OFFSET $%d", argIdx)
			args = append(args, (filter.Page-1)*filter.Limit)
		}
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		var req leave.LeaveRequest
		if err := rows.Scan(
			&req.ID, &req.EmployeeID, &req.FromDate, &req.ToDate, &req.Type, &req.Status,
			&req.Reason, &req.DecidedBy, &req.DecidedAt, &req.CreatedAt, &req.UpdatedAt,
			&req.EmployeeName,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, req)
	}

	return requests, total, rows.Err()
}
