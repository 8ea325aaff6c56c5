package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/tallyops/payroll-backend-go/internal/domain/attendance"
	"github.com/tallyops/payroll-backend-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	Record(w http.ResponseWriter, r *http.Request)
	BulkIngest(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// Record implements AttendanceHandler.
func (h *attendanceHandlerImpl) Record(w http.ResponseWriter, r *http.Request) {
	var req attendance.RecordAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.attendanceService.Record(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance recorded", result)
}

// BulkIngest implements AttendanceHandler.
func (h *attendanceHandlerImpl) BulkIngest(w http.ResponseWriter, r *http.Request) {
	var req attendance.BulkIngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.attendanceService.BulkIngest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := attendance.AttendanceFilter{}
	query := r.URL.Query()

	if employeeID := query.Get("employee_id"); employeeID != "" {
		filter.EmployeeID = &employeeID
	}
	if from := query.Get("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			response.BadRequest(w, "from must be in YYYY-MM-DD format", nil)
			return
		}
		filter.From = &t
	}
	if to := query.Get("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			response.BadRequest(w, "to must be in YYYY-MM-DD format", nil)
			return
		}
		filter.To = &t
	}
	if jobID := query.Get("job_id"); jobID != "" {
		filter.JobID = &jobID
	}
	if page := query.Get("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil {
			filter.Page = v
		}
	}
	if limit := query.Get("limit"); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil {
			filter.Limit = v
		}
	}

	result, err := h.attendanceService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
