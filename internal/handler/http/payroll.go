package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tallyops/payroll-backend-go/internal/domain/payroll"
	"github.com/tallyops/payroll-backend-go/internal/handler/http/response"
)

type PayrollHandler interface {
	Generate(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	MarkPaid(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{
		payrollService: payrollService,
	}
}

// Generate implements PayrollHandler.
func (h *payrollHandlerImpl) Generate(w http.ResponseWriter, r *http.Request) {
	var req payroll.GeneratePayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.payrollService.Generate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Get implements PayrollHandler.
func (h *payrollHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	payrollID := chi.URLParam(r, "id")

	result, err := h.payrollService.Get(r.Context(), payrollID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements PayrollHandler.
func (h *payrollHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := payroll.PayrollFilter{}
	query := r.URL.Query()

	if month := query.Get("period_month"); month != "" {
		v, err := strconv.Atoi(month)
		if err != nil {
			response.BadRequest(w, "period_month must be a number", nil)
			return
		}
		filter.PeriodMonth = &v
	}
	if year := query.Get("period_year"); year != "" {
		v, err := strconv.Atoi(year)
		if err != nil {
			response.BadRequest(w, "period_year must be a number", nil)
			return
		}
		filter.PeriodYear = &v
	}
	if employeeID := query.Get("employee_id"); employeeID != "" {
		filter.EmployeeID = &employeeID
	}
	if paid := query.Get("paid"); paid != "" {
		v, err := strconv.ParseBool(paid)
		if err != nil {
			response.BadRequest(w, "paid must be true or false", nil)
			return
		}
		filter.Paid = &v
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

	result, err := h.payrollService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// MarkPaid implements PayrollHandler. The body is optional: paid_at
// defaults to now and payment_ref may be absent.
func (h *payrollHandlerImpl) MarkPaid(w http.ResponseWriter, r *http.Request) {
	req := payroll.MarkPaidRequest{
		PayrollID: chi.URLParam(r, "id"),
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.payrollService.MarkPaid(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
