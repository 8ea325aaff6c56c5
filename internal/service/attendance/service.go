package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tallyops/payroll-backend-go/internal/domain/attendance"
	"github.com/tallyops/payroll-backend-go/internal/domain/employee"
	"github.com/tallyops/payroll-backend-go/internal/domain/leave"
	"github.com/tallyops/payroll-backend-go/internal/pkg/batch"
	"github.com/tallyops/payroll-backend-go/internal/pkg/timeout"
	"github.com/tallyops/payroll-backend-go/internal/pkg/validator"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	leave.LeaveRequestRepository
	employee.EmployeeRepository
	logger             *slog.Logger
	standardDailyHours decimal.Decimal
	bulkConcurrency    int
	opTimeout          time.Duration
}

func NewAttendanceService(
	attendanceRepository attendance.AttendanceRepository,
	leaveRequestRepository leave.LeaveRequestRepository,
	employeeRepository employee.EmployeeRepository,
	logger *slog.Logger,
	standardDailyHours decimal.Decimal,
	bulkConcurrency int,
	opTimeout time.Duration,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		AttendanceRepository:   attendanceRepository,
		LeaveRequestRepository: leaveRequestRepository,
		EmployeeRepository:     employeeRepository,
		logger:                 logger,
		standardDailyHours:     standardDailyHours,
		bulkConcurrency:        bulkConcurrency,
		opTimeout:              opTimeout,
	}
}

// Record implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Record(ctx context.Context, req attendance.RecordAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	ctx, cancel := timeout.Guard(ctx, s.opTimeout)
	defer cancel()

	att, err := s.buildRecord(ctx, req)
	if err != nil {
		return attendance.AttendanceResponse{}, timeout.Map(err)
	}

	stored, err := s.AttendanceRepository.Upsert(ctx, att)
	if err != nil {
		return attendance.AttendanceResponse{}, timeout.Map(err)
	}

	s.logger.Info("attendance recorded",
		"employee_id", stored.EmployeeID,
		"date", stored.Date.Format("2006-01-02"),
		"status", stored.Status,
	)

	return attendance.ToResponse(stored), nil
}

// buildRecord resolves and validates one record against master data. The
// DTO-level Validate has already run, so dates and timestamps parse.
func (s *AttendanceServiceImpl) buildRecord(ctx context.Context, req attendance.RecordAttendanceRequest) (attendance.Attendance, error) {
	emp, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		if err == employee.ErrEmployeeNotFound {
			return attendance.Attendance{}, attendance.ErrUnknownEmployee
		}
		return attendance.Attendance{}, fmt.Errorf("failed to resolve employee: %w", err)
	}
	if !emp.IsActive() {
		return attendance.Attendance{}, employee.ErrEmployeeInactive
	}

	date, _ := validator.IsValidDate(req.Date)
	day := attendance.Day(date)
	if day.After(attendance.Day(time.Now().UTC())) {
		return attendance.Attendance{}, validator.ValidationErrors{{
			Field:   "date",
			Message: "date must not be in the future",
		}}
	}

	var checkIn, checkOut *time.Time
	if req.CheckIn != nil {
		t, _ := validator.IsValidDateTime(*req.CheckIn)
		checkIn = &t
	}
	if req.CheckOut != nil {
		t, _ := validator.IsValidDateTime(*req.CheckOut)
		checkOut = &t
	}
	if checkIn != nil && checkOut != nil && !checkOut.After(*checkIn) {
		return attendance.Attendance{}, validator.ValidationErrors{{
			Field:   "check_out",
			Message: "check_out must be after check_in",
		}}
	}

	return attendance.Attendance{
		ID:          uuid.NewString(),
		EmployeeID:  emp.ID,
		Date:        day,
		Status:      attendance.Status(req.Status),
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		WorkMinutes: attendance.DeriveWorkMinutes(checkIn, checkOut),
		JobID:       req.JobID,
		Remarks:     req.Remarks,
	}, nil
}

// BulkIngest implements attendance.AttendanceService. Rows run with
// bounded concurrency and per-row isolation: a bad row is reported by its
// position and the rest of the batch proceeds. Because the underlying
// write is an idempotent upsert, re-submitting the same file is safe.
func (s *AttendanceServiceImpl) BulkIngest(ctx context.Context, req attendance.BulkIngestRequest) (attendance.BulkIngestSummary, error) {
	if err := req.Validate(); err != nil {
		return attendance.BulkIngestSummary{}, err
	}

	ctx, cancel := timeout.Guard(ctx, s.opTimeout)
	defer cancel()

	results := batch.Run(ctx, s.bulkConcurrency, req.Rows,
		func(ctx context.Context, _ int, row attendance.BulkRow) (attendance.Attendance, error) {
			return s.ingestRow(ctx, row)
		})

	summary := attendance.BulkIngestSummary{TotalRecords: len(req.Rows)}
	for _, res := range results {
		if res.Err != nil {
			summary.Errors = append(summary.Errors, attendance.RowError{
				Row:   res.Index,
				Error: timeout.Map(res.Err).Error(),
			})
			continue
		}
		summary.UploadedCount++
	}

	s.logger.Info("bulk attendance ingested",
		"total", summary.TotalRecords,
		"uploaded", summary.UploadedCount,
		"failed", len(summary.Errors),
	)

	return summary, nil
}

func (s *AttendanceServiceImpl) ingestRow(ctx context.Context, row attendance.BulkRow) (attendance.Attendance, error) {
	if !validator.IsValidEmployeeCode(row.EmployeeCode) {
		return attendance.Attendance{}, validator.ValidationErrors{{
			Field:   "employee_code",
			Message: "employee_code is missing or malformed",
		}}
	}

	emp, err := s.EmployeeRepository.GetByCode(ctx, row.EmployeeCode)
	if err != nil {
		if err == employee.ErrEmployeeNotFound {
			return attendance.Attendance{}, attendance.ErrUnknownEmployee
		}
		return attendance.Attendance{}, fmt.Errorf("failed to resolve employee code: %w", err)
	}

	req := attendance.RecordAttendanceRequest{
		EmployeeID: emp.ID,
		Date:       row.Date,
		Status:     row.Status,
		CheckIn:    row.CheckIn,
		CheckOut:   row.CheckOut,
		Remarks:    row.Remarks,
	}
	if err := req.Validate(); err != nil {
		return attendance.Attendance{}, err
	}

	att, err := s.buildRecord(ctx, req)
	if err != nil {
		return attendance.Attendance{}, err
	}

	return s.AttendanceRepository.Upsert(ctx, att)
}

// List implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) List(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}

	ctx, cancel := timeout.Guard(ctx, s.opTimeout)
	defer cancel()

	records, total, err := s.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, timeout.Map(err)
	}

	// Totals cover the whole filtered set, not just the returned page.
	unpaged := filter
	unpaged.Page = 0
	unpaged.Limit = 0
	all, _, err := s.AttendanceRepository.List(ctx, unpaged)
	if err != nil {
		return attendance.ListAttendanceResponse{}, timeout.Map(err)
	}

	totals := attendance.QueryTotals{
		TotalDays:   len(all),
		TotalHours:  decimal.Zero,
		PresentDays: decimal.Zero,
	}
	half := decimal.NewFromFloat(0.5)
	for _, att := range all {
		totals.TotalHours = totals.TotalHours.Add(att.Hours())
		switch att.Status {
		case attendance.StatusPresent:
			totals.PresentDays = totals.PresentDays.Add(decimal.NewFromInt(1))
		case attendance.StatusHalfDay:
			totals.PresentDays = totals.PresentDays.Add(half)
		case attendance.StatusAbsent:
			totals.AbsentDays++
		}
	}

	data := make([]attendance.AttendanceResponse, 0, len(records))
	for _, att := range records {
		data = append(data, attendance.ToResponse(att))
	}

	return attendance.ListAttendanceResponse{
		Data:       data,
		Totals:     totals,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// Aggregate implements attendance.AttendanceService. Approved leave wins:
// a day covered by an approved request counts as a leave day even when an
// attendance record says otherwise, and the conflict is logged. Raw
// "leave" attendance with no covering approval still shows up in
// DaysOnLeave, but as unpaid, so it can never inflate a salary.
func (s *AttendanceServiceImpl) Aggregate(ctx context.Context, employeeID string, from, to time.Time) (attendance.PeriodTotals, error) {
	ctx, cancel := timeout.Guard(ctx, s.opTimeout)
	defer cancel()

	from = attendance.Day(from)
	to = attendance.Day(to)

	records, err := s.AttendanceRepository.ListRange(ctx, employeeID, from, to)
	if err != nil {
		return attendance.PeriodTotals{}, timeout.Map(err)
	}
	approvals, err := s.LeaveRequestRepository.ListApprovedOverlapping(ctx, employeeID, from, to)
	if err != nil {
		return attendance.PeriodTotals{}, timeout.Map(err)
	}

	// Clip each approval to the period and flatten to per-day coverage so
	// overlapping approvals count a day exactly once. A day covered by both
	// a paid and an unpaid approval counts as paid.
	leaveDays := make(map[time.Time]bool)
	for _, lr := range approvals {
		start, end := lr.FromDate, lr.ToDate
		if start.Before(from) {
			start = from
		}
		if end.After(to) {
			end = to
		}
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			leaveDays[d] = leaveDays[d] || lr.Type.Paid()
		}
	}

	one := decimal.NewFromInt(1)
	half := decimal.NewFromFloat(0.5)
	totals := attendance.PeriodTotals{
		DaysPresent:     decimal.Zero,
		DaysOnLeave:     decimal.Zero,
		PaidLeaveDays:   decimal.Zero,
		UnpaidLeaveDays: decimal.Zero,
		TotalHours:      decimal.Zero,
		OvertimeHours:   decimal.Zero,
	}

	for _, att := range records {
		day := attendance.Day(att.Date)
		if _, covered := leaveDays[day]; covered {
			if att.Status != attendance.StatusLeave {
				s.logger.Warn("attendance conflicts with approved leave",
					"employee_id", employeeID,
					"date", day.Format("2006-01-02"),
					"attendance_status", att.Status,
				)
			}
			continue
		}

		switch att.Status {
		case attendance.StatusPresent:
			totals.DaysPresent = totals.DaysPresent.Add(one)
		case attendance.StatusHalfDay:
			totals.DaysPresent = totals.DaysPresent.Add(half)
		case attendance.StatusAbsent:
			totals.DaysAbsent++
		case attendance.StatusLeave:
			totals.DaysOnLeave = totals.DaysOnLeave.Add(one)
			totals.UnpaidLeaveDays = totals.UnpaidLeaveDays.Add(one)
		}

		if att.Status == attendance.StatusPresent || att.Status == attendance.StatusHalfDay {
			hours := att.Hours()
			totals.TotalHours = totals.TotalHours.Add(hours)
			if hours.GreaterThan(s.standardDailyHours) {
				totals.OvertimeHours = totals.OvertimeHours.Add(hours.Sub(s.standardDailyHours))
			}
		}
	}

	for _, paid := range leaveDays {
		totals.DaysOnLeave = totals.DaysOnLeave.Add(one)
		if paid {
			totals.PaidLeaveDays = totals.PaidLeaveDays.Add(one)
		} else {
			totals.UnpaidLeaveDays = totals.UnpaidLeaveDays.Add(one)
		}
	}

	return totals, nil
}
