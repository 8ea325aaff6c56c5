package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tallyops/payroll-backend-go/internal/domain/attendance"
	"github.com/tallyops/payroll-backend-go/internal/domain/employee"
)

type AttendanceJobs struct {
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	logger         *slog.Logger
}

func NewAttendanceJobs(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	logger *slog.Logger,
) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		logger:         logger,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("mark_absent_employees", 1*time.Hour, j.MarkAbsentEmployees)
}

// MarkAbsentEmployees backfills an absent record for every active
// employee with no attendance yesterday, so aggregation never has to
// guess about missing days. Gated to the first hour after midnight UTC;
// the upsert makes a repeated run harmless.
func (j *AttendanceJobs) MarkAbsentEmployees(ctx context.Context) error {
	if time.Now().UTC().Hour() != 1 {
		return nil
	}

	yesterday := attendance.Day(time.Now().UTC().AddDate(0, 0, -1))

	employees, err := j.employeeRepo.ListActive(ctx)
	if err != nil {
		return err
	}

	marked := 0
	for _, emp := range employees {
		existing, err := j.attendanceRepo.GetByEmployeeAndDate(ctx, emp.ID, yesterday)
		if err != nil {
			j.logger.Error("cron: failed to check attendance",
				"employee_id", emp.ID, "date", yesterday.Format("2006-01-02"), "error", err)
			continue
		}
		if existing != nil {
			continue
		}

		_, err = j.attendanceRepo.Upsert(ctx, attendance.Attendance{
			ID:         uuid.NewString(),
			EmployeeID: emp.ID,
			Date:       yesterday,
			Status:     attendance.StatusAbsent,
		})
		if err != nil {
			j.logger.Error("cron: failed to mark employee absent",
				"employee_id", emp.ID, "date", yesterday.Format("2006-01-02"), "error", err)
			continue
		}
		marked++
	}

	if marked > 0 {
		j.logger.Info("cron: marked missing attendance as absent",
			"date", yesterday.Format("2006-01-02"), "count", marked)
	}
	return nil
}
