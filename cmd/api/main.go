package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/httplog/v3"

	"github.com/tallyops/payroll-backend-go/internal/config"
	"github.com/tallyops/payroll-backend-go/internal/domain/attendance"
	"github.com/tallyops/payroll-backend-go/internal/domain/employee"
	"github.com/tallyops/payroll-backend-go/internal/domain/leave"
	"github.com/tallyops/payroll-backend-go/internal/domain/payroll"
	appHTTP "github.com/tallyops/payroll-backend-go/internal/handler/http"
	"github.com/tallyops/payroll-backend-go/internal/pkg/cron"
	"github.com/tallyops/payroll-backend-go/internal/pkg/database"
	"github.com/tallyops/payroll-backend-go/internal/pkg/jwt"
	"github.com/tallyops/payroll-backend-go/internal/repository/memory"
	"github.com/tallyops/payroll-backend-go/internal/repository/postgresql"
	attendanceService "github.com/tallyops/payroll-backend-go/internal/service/attendance"
	leaveService "github.com/tallyops/payroll-backend-go/internal/service/leave"
	payrollService "github.com/tallyops/payroll-backend-go/internal/service/payroll"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       logLevel(cfg.App.LogLevel),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "tallyops-payroll"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)

	var (
		employeeRepo     employee.EmployeeRepository
		attendanceRepo   attendance.AttendanceRepository
		leaveRequestRepo leave.LeaveRequestRepository
		payrollRepo      payroll.PayrollRepository
	)
	switch cfg.Store.Type {
	case "postgres":
		db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
		if err != nil {
			log.Fatal("Error connecting to database: ", err)
		}
		employeeRepo = postgresql.NewEmployeeRepository(db)
		attendanceRepo = postgresql.NewAttendanceRepository(db)
		leaveRequestRepo = postgresql.NewLeaveRequestRepository(db)
		payrollRepo = postgresql.NewPayrollRepository(db)
	case "memory":
		employeeRepo = memory.NewEmployeeRepository()
		attendanceRepo = memory.NewAttendanceRepository()
		leaveRequestRepo = memory.NewLeaveRequestRepository()
		payrollRepo = memory.NewPayrollRepository()
	default:
		log.Fatal("Unsupported store type: ", cfg.Store.Type)
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)

	attendanceSvc := attendanceService.NewAttendanceService(
		attendanceRepo,
		leaveRequestRepo,
		employeeRepo,
		logger,
		cfg.Engine.StandardDailyHours,
		cfg.Engine.BulkConcurrency,
		cfg.Engine.OpTimeout,
	)
	leaveSvc := leaveService.NewLeaveService(
		leaveRequestRepo,
		employeeRepo,
		logger,
		cfg.Engine.OpTimeout,
	)
	payrollSvc := payrollService.NewPayrollService(
		payrollRepo,
		employeeRepo,
		attendanceSvc,
		logger,
		cfg.Engine.StandardDailyHours,
		cfg.Engine.OvertimeMultiplier,
		cfg.Engine.BulkConcurrency,
		cfg.Engine.OpTimeout,
	)

	scheduler := cron.NewScheduler(logger)
	cron.NewAttendanceJobs(attendanceRepo, employeeRepo, logger).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	leaveHandler := appHTTP.NewLeaveHandler(leaveSvc)
	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)
	employeeHandler := appHTTP.NewEmployeeHandler(employeeRepo)

	router := appHTTP.NewRouter(
		logger,
		JWTService,
		attendanceHandler,
		leaveHandler,
		payrollHandler,
		employeeHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
