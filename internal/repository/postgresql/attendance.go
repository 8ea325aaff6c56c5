package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tallyops/payroll-backend-go/internal/domain/attendance"
	"github.com/tallyops/payroll-backend-go/internal/pkg/database"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

// Upsert implements attendance.AttendanceRepository. ON CONFLICT on the
// (employee_id, date) unique index makes the write an atomic
// last-writer-wins replace, which is the per-key serialization the
// ingestor relies on.
func (a *attendanceRepositoryImpl) Upsert(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendances (
			id, employee_id, date, status, check_in, check_out,
			work_minutes, job_id, remarks
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			status       = EXCLUDED.status,
			check_in     = EXCLUDED.check_in,
			check_out    = EXCLUDED.check_out,
			work_minutes = EXCLUDED.work_minutes,
			job_id       = EXCLUDED.job_id,
			remarks      = EXCLUDED.remarks,
			updated_at   = NOW()
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		att.ID,
		att.EmployeeID,
		att.Date,
		att.Status,
		att.CheckIn,
		att.CheckOut,
		att.WorkMinutes,
		att.JobID,
		att.Remarks,
	).Scan(&att.ID, &att.CreatedAt, &att.UpdatedAt)

	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to upsert attendance: %w", err)
	}

	return att, nil
}

const attendanceColumns = `
	a.id, a.employee_id, a.date, a.status, a.check_in, a.check_out,
	a.work_minutes, a.job_id, a.remarks, a.created_at, a.updated_at
`

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	err := row.Scan(
		&att.ID, &att.EmployeeID, &att.Date, &att.Status, &att.CheckIn, &att.CheckOut,
		&att.WorkMinutes, &att.JobID, &att.Remarks, &att.CreatedAt, &att.UpdatedAt,
	)
	return att, err
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.employee_id = $1 AND a.date = $2
		LIMIT 1
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // No existing attendance found
		}
		return nil, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}

	return &att, nil
}

// ListRange implements attendance.AttendanceRepository.
func (a *attendanceRepositoryImpl) ListRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.employee_id = $1 AND a.date BETWEEN $2 AND $3
		ORDER BY a.date
	`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance range: %w", err)
	}
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, att)
	}

	return records, rows.Err()
}

// List implements attendance.AttendanceRepository with dynamic filters.
func (a *attendanceRepositoryImpl) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)

	var conditions []string
	var args []interface{}
	argIdx := 1

	if filter.EmployeeID != nil {
		conditions = append(conditions, fmt.Sprintf("a.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d", argIdx))
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("a.date <= $%d", argIdx))
		args = append(args, *filter.To)
		argIdx++
	}
	if filter.JobID != nil {
		conditions = append(conditions, fmt.Sprintf("a.job_id = $%d", argIdx))
		args = append(args, *filter.JobID)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := `SELECT COUNT(*) FROM attendances a ` + where
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	query := `
		SELECT a.id, a.employee_id, a.date, a.status, a.check_in, a.check_out,
		       a.work_minutes, a.job_id, a.remarks, a.created_at, a.updated_at,
		       e.full_name
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		` + where + `
		ORDER BY a.date DESC, e.full_name
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
		return nil, 0, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		var att attendance.Attendance
		if err := rows.Scan(
			&att.ID, &att.EmployeeID, &att.Date, &att.Status, &att.CheckIn, &att.CheckOut,
			&att.WorkMinutes, &att.JobID, &att.Remarks, &att.CreatedAt, &att.UpdatedAt,
			&att.EmployeeName,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, att)
	}

	return records, total, rows.Err()
}
