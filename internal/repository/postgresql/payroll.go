package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tallyops/payroll-backend-go/internal/domain/payroll"
	"github.com/tallyops/payroll-backend-go/internal/pkg/database"
)

type payrollRepositoryImpl struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepositoryImpl{db: db}
}

const payrollColumns = `
	p.id, p.employee_id, p.period_month, p.period_year,
	p.basic_salary, p.overtime_hours, p.overtime_pay, p.allowances, p.deductions,
	p.days_present, p.gross_pay, p.net_pay,
	p.paid, p.paid_at, p.paid_by, p.payment_ref,
	p.generated_at, p.created_at, p.updated_at
`

func scanPayrollRecord(row pgx.Row) (payroll.PayrollRecord, error) {
	var rec payroll.PayrollRecord
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.PeriodMonth, &rec.PeriodYear,
		&rec.BasicSalary, &rec.OvertimeHours, &rec.OvertimePay, &rec.Allowances, &rec.Deductions,
		&rec.DaysPresent, &rec.GrossPay, &rec.NetPay,
		&rec.Paid, &rec.PaidAt, &rec.PaidBy, &rec.PaymentRef,
		&rec.GeneratedAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}

// GetByID implements payroll.PayrollRepository.
func (p *payrollRepositoryImpl) GetByID(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		SELECT ` + payrollColumns + `, e.full_name, e.code
		FROM payroll_records p
		JOIN employees e ON e.id = p.employee_id
		WHERE p.id = $1
	`

	var rec payroll.PayrollRecord
	err := q.QueryRow(ctx, query, id).Scan(
		&rec.ID, &rec.EmployeeID, &rec.PeriodMonth, &rec.PeriodYear,
		&rec.BasicSalary, &rec.OvertimeHours, &rec.OvertimePay, &rec.Allowances, &rec.Deductions,
		&rec.DaysPresent, &rec.GrossPay, &rec.NetPay,
		&rec.Paid, &rec.PaidAt, &rec.PaidBy, &rec.PaymentRef,
		&rec.GeneratedAt, &rec.CreatedAt, &rec.UpdatedAt,
		&rec.EmployeeName, &rec.EmployeeCode,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record by id: %w", err)
	}

	return rec, nil
}

// GetByEmployeePeriod implements payroll.PayrollRepository.
func (p *payrollRepositoryImpl) GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		SELECT ` + payrollColumns + `
		FROM payroll_records p
		WHERE p.employee_id = $1 AND p.period_month = $2 AND p.period_year = $3
		LIMIT 1
	`

	rec, err := scanPayrollRecord(q.QueryRow(ctx, query, employeeID, month, year))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record by period: %w", err)
	}

	return rec, nil
}

// Replace implements payroll.PayrollRepository. Draft removal and insert
// run in one transaction; the unique index on
// (employee_id, period_month, period_year) turns a concurrent or paid
// survivor into a constraint violation, reported as ErrAlreadyPaid.
func (p *payrollRepositoryImpl) Replace(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	err := WithTransaction(ctx, p.db, func(txCtx context.Context) error {
		q := GetQuerier(txCtx, p.db)

		deleteQuery := `
			DELETE FROM payroll_records
			WHERE employee_id = $1 AND period_month = $2 AND period_year = $3 AND paid = FALSE
		`
		if _, err := q.Exec(txCtx, deleteQuery, record.EmployeeID, record.PeriodMonth, record.PeriodYear); err != nil {
			return fmt.Errorf("failed to remove draft payroll record: %w", err)
		}

		insertQuery := `
			INSERT INTO payroll_records (
				id, employee_id, period_month, period_year,
				basic_salary, overtime_hours, overtime_pay, allowances, deductions,
				days_present, gross_pay, net_pay, paid, generated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, FALSE, $13
			) RETURNING created_at, updated_at
		`
		return q.QueryRow(txCtx, insertQuery,
			record.ID, record.EmployeeID, record.PeriodMonth, record.PeriodYear,
			record.BasicSalary, record.OvertimeHours, record.OvertimePay, record.Allowances, record.Deductions,
			record.DaysPresent, record.GrossPay, record.NetPay, record.GeneratedAt,
		).Scan(&record.CreatedAt, &record.UpdatedAt)
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// Unique violation: a paid record holds this period key.
			return payroll.PayrollRecord{}, payroll.ErrAlreadyPaid
		}
		return payroll.PayrollRecord{}, err
	}

	return record, nil
}

// MarkPaid implements payroll.PayrollRepository. The paid=FALSE predicate
// makes the transition a compare-and-set, so a second call can never
// overwrite the first payment's fields.
func (p *payrollRepositoryImpl) MarkPaid(ctx context.Context, id string, paidAt time.Time, paidBy *string, paymentRef *string) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		UPDATE payroll_records p SET
			paid        = TRUE,
			paid_at     = $2,
			paid_by     = $3,
			payment_ref = $4,
			updated_at  = NOW()
		WHERE p.id = $1 AND p.paid = FALSE
		RETURNING ` + payrollColumns

	rec, err := scanPayrollRecord(q.QueryRow(ctx, query, id, paidAt, paidBy, paymentRef))
	if err == nil {
		return rec, nil
	}
	if err != pgx.ErrNoRows {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to mark payroll record paid: %w", err)
	}

	// No unpaid row matched: distinguish missing from already paid.
	existing, getErr := p.getByIDBare(ctx, id)
	if getErr != nil {
		return payroll.PayrollRecord{}, getErr
	}
	if existing.Paid {
		return payroll.PayrollRecord{}, payroll.ErrAlreadyPaid
	}
	return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
}

// getByIDBare is an unjoined lookup used by MarkPaid's
// postmortem path.
func (p *payrollRepositoryImpl) getByIDBare(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, p.db)

	query := `SELECT ` + payrollColumns + ` FROM payroll_records p WHERE p.id = $1`

	rec, err := scanPayrollRecord(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record: %w", err)
	}

	return rec, nil
}

// List implements payroll.PayrollRepository.
func (p *payrollRepositoryImpl) List(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.PayrollRecord, int64, error) {
	q := GetQuerier(ctx, p.db)

	var conditions []string
	var args []interface{}
	argIdx := 1

	if filter.PeriodMonth != nil {
		conditions = append(conditions, fmt.Sprintf("p.period_month = $%d", argIdx))
		args = append(args, *filter.PeriodMonth)
		argIdx++
	}
	if filter.PeriodYear != nil {
		conditions = append(conditions, fmt.Sprintf("p.period_year = $%d", argIdx))
		args = append(args, *filter.PeriodYear)
		argIdx++
	}
	if filter.EmployeeID != nil {
		conditions = append(conditions, fmt.Sprintf("p.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Paid != nil {
		conditions = append(conditions, fmt.Sprintf("p.paid = $%d", argIdx))
		args = append(args, *filter.Paid)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := `SELECT COUNT(*) FROM payroll_records p ` + where
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll records: %w", err)
	}

	query := `
		SELECT ` + payrollColumns + `, e.full_name, e.code
		FROM payroll_records p
		JOIN employees e ON e.id = p.employee_id
		` + where + `
		ORDER BY p.period_year DESC, p.period_month DESC, e.full_name
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
		return nil, 0, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	var records []payroll.PayrollRecord
	for rows.Next() {
		var rec payroll.PayrollRecord
		if err := rows.Scan(
			&rec.ID, &rec.EmployeeID, &rec.PeriodMonth, &rec.PeriodYear,
			&rec.BasicSalary, &rec.OvertimeHours, &rec.OvertimePay, &rec.Allowances, &rec.Deductions,
			&rec.DaysPresent, &rec.GrossPay, &rec.NetPay,
			&rec.Paid, &rec.PaidAt, &rec.PaidBy, &rec.PaymentRef,
			&rec.GeneratedAt, &rec.CreatedAt, &rec.UpdatedAt,
			&rec.EmployeeName, &rec.EmployeeCode,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}

	return records, total, rows.Err()
}
