package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/tallyops/payroll-backend-go/internal/handler/http/middleware"
	"github.com/tallyops/payroll-backend-go/internal/pkg/jwt"
)

func NewRouter(
	logger *slog.Logger,
	jwtService jwt.Service,
	attendanceHandler AttendanceHandler,
	leaveHandler LeaveHandler,
	payrollHandler PayrollHandler,
	employeeHandler EmployeeHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/attendances", func(r chi.Router) {
				r.Get("/", attendanceHandler.List)
				r.Post("/", attendanceHandler.Record)
				r.Post("/bulk", attendanceHandler.BulkIngest)
			})

			r.Route("/leaves", func(r chi.Router) {
				r.Get("/", leaveHandler.List)
				r.Post("/", leaveHandler.Apply)
				r.Post("/{id}/approve", leaveHandler.Approve)
				r.Post("/{id}/reject", leaveHandler.Reject)
			})

			r.Route("/payrolls", func(r chi.Router) {
				r.Get("/", payrollHandler.List)
				r.Post("/generate", payrollHandler.Generate)
				r.Get("/{id}", payrollHandler.Get)
				r.Post("/{id}/pay", payrollHandler.MarkPaid)
			})

			r.Get("/employees", employeeHandler.List)
		})
	})

	return r
}
