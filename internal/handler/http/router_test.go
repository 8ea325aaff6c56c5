package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyops/payroll-backend-go/internal/domain/employee"
	"github.com/tallyops/payroll-backend-go/internal/pkg/jwt"
	"github.com/tallyops/payroll-backend-go/internal/repository/memory"
	attendanceService "github.com/tallyops/payroll-backend-go/internal/service/attendance"
	leaveService "github.com/tallyops/payroll-backend-go/internal/service/leave"
	payrollService "github.com/tallyops/payroll-backend-go/internal/service/payroll"
)

const routerTestSecret = "test-secret-key-for-jwt"

type routerTestEnv struct {
	router *chi.Mux
	token  string
	emp    employee.Employee
}

func newRouterTestEnv(t *testing.T) *routerTestEnv {
	t.Helper()

	emp := employee.Employee{
		ID:         uuid.NewString(),
		Code:       "EMP-001",
		FullName:   "Router Test Employee",
		SalaryType: employee.SalaryTypeDaily,
		Rate:       decimal.NewFromInt(100),
		Status:     employee.StatusActive,
	}

	attRepo := memory.NewAttendanceRepository()
	leaveRepo := memory.NewLeaveRequestRepository()
	empRepo := memory.NewEmployeeRepository(emp)
	payrollRepo := memory.NewPayrollRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	standardDailyHours := decimal.NewFromInt(8)
	attendanceSvc := attendanceService.NewAttendanceService(
		attRepo, leaveRepo, empRepo, logger, standardDailyHours, 4, 5*time.Second)
	leaveSvc := leaveService.NewLeaveService(leaveRepo, empRepo, logger, 5*time.Second)
	payrollSvc := payrollService.NewPayrollService(
		payrollRepo, empRepo, attendanceSvc, logger,
		standardDailyHours, decimal.NewFromFloat(1.5), 4, 5*time.Second)

	jwtSvc := jwt.NewJWTService(routerTestSecret)
	router := NewRouter(
		logger,
		jwtSvc,
		NewAttendanceHandler(attendanceSvc),
		NewLeaveHandler(leaveSvc),
		NewPayrollHandler(payrollSvc),
		NewEmployeeHandler(empRepo),
	)

	_, token, err := jwtSvc.JWTAuth().Encode(map[string]interface{}{
		"user_id": uuid.NewString(),
		"type":    "access",
	})
	require.NoError(t, err)

	return &routerTestEnv{router: router, token: token, emp: emp}
}

func (e *routerTestEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)
	w := httptest.NewRecorder()

	e.router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	err := json.NewDecoder(w.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}

// Test that every engine route refuses unauthenticated requests
func TestRouter_Unauthenticated(t *testing.T) {
	env := newRouterTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/employees", nil)
	w := httptest.NewRecorder()

	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// Test Record Attendance - Success
func TestAttendanceHandler_Record_Success(t *testing.T) {
	env := newRouterTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/attendances", map[string]interface{}{
		"employee_id": env.emp.ID,
		"date":        "2024-04-01",
		"status":      "present",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp["success"].(bool))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "2024-04-01", data["date"])
}

// Test Record Attendance - Invalid JSON
func TestAttendanceHandler_Record_InvalidJSON(t *testing.T) {
	env := newRouterTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/attendances", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Authorization", "Bearer "+env.token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// Test Record Attendance - Unknown Employee
func TestAttendanceHandler_Record_UnknownEmployee(t *testing.T) {
	env := newRouterTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/attendances", map[string]interface{}{
		"employee_id": uuid.NewString(),
		"date":        "2024-04-01",
		"status":      "present",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp["success"].(bool))
}

// Test Record Attendance - Validation Error
func TestAttendanceHandler_Record_ValidationError(t *testing.T) {
	env := newRouterTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/attendances", map[string]interface{}{
		"employee_id": env.emp.ID,
		"date":        "not-a-date",
		"status":      "present",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

// Test Bulk Ingest - Partial Failure Reported Per Row
func TestAttendanceHandler_BulkIngest_PartialFailure(t *testing.T) {
	env := newRouterTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/attendances/bulk", map[string]interface{}{
		"rows": []map[string]interface{}{
			{"employee_code": "EMP-001", "date": "2024-04-01", "status": "present"},
			{"employee_code": "GHOST-99", "date": "2024-04-02", "status": "present"},
		},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["total_records"])
	assert.Equal(t, float64(1), data["uploaded_count"])
}

// Test Leave Approve - Conflict On Second Decision
func TestLeaveHandler_Approve_AlreadyDecided(t *testing.T) {
	env := newRouterTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/leaves", map[string]interface{}{
		"employee_id": env.emp.ID,
		"from_date":   "2024-03-01",
		"to_date":     "2024-03-03",
		"leave_type":  "sick",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	leaveID := decodeResponse(t, w)["data"].(map[string]interface{})["id"].(string)

	w = env.do(t, http.MethodPost, "/api/v1/leaves/"+leaveID+"/approve", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/leaves/"+leaveID+"/reject", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

// Test Payroll - Generate, Pay, And Double Pay Guard
func TestPayrollHandler_GenerateAndPay(t *testing.T) {
	env := newRouterTestEnv(t)

	for i := 1; i <= 3; i++ {
		w := env.do(t, http.MethodPost, "/api/v1/attendances", map[string]interface{}{
			"employee_id": env.emp.ID,
			"date":        fmt.Sprintf("2024-04-%02d", i),
			"status":      "present",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := env.do(t, http.MethodPost, "/api/v1/payrolls/generate", map[string]interface{}{
		"period_month": 4,
		"period_year":  2024,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeResponse(t, w)["data"].(map[string]interface{})["generated"])

	w = env.do(t, http.MethodGet, "/api/v1/payrolls?period_month=4&period_year=2024", nil)
	require.Equal(t, http.StatusOK, w.Code)
	records := decodeResponse(t, w)["data"].(map[string]interface{})["data"].([]interface{})
	require.Len(t, records, 1)
	payrollID := records[0].(map[string]interface{})["id"].(string)

	w = env.do(t, http.MethodPost, "/api/v1/payrolls/"+payrollID+"/pay", map[string]interface{}{
		"payment_ref": "PAY-001",
	})
	require.Equal(t, http.StatusOK, w.Code)
	paid := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, true, paid["paid"])

	// Second payment attempt must conflict, not double-pay.
	w = env.do(t, http.MethodPost, "/api/v1/payrolls/"+payrollID+"/pay", map[string]interface{}{
		"payment_ref": "PAY-002",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/payrolls/"+payrollID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stored := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "PAY-001", stored["payment_ref"])
}

// Test Payroll Get - Not Found
func TestPayrollHandler_Get_NotFound(t *testing.T) {
	env := newRouterTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/payrolls/"+uuid.NewString(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// Test Employee List
func TestEmployeeHandler_List(t *testing.T) {
	env := newRouterTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/employees", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data := resp["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, "EMP-001", data[0].(map[string]interface{})["code"])
}
