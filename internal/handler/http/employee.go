package http

import (
	"net/http"

	"github.com/tallyops/payroll-backend-go/internal/domain/employee"
	"github.com/tallyops/payroll-backend-go/internal/handler/http/response"
)

type EmployeeHandler interface {
	List(w http.ResponseWriter, r *http.Request)
}

type employeeHandlerImpl struct {
	employeeRepository employee.EmployeeRepository
}

// NewEmployeeHandler exposes the externally managed employee master data
// as a read-only listing. There is no service layer in between because the
// engine performs no employee business logic.
func NewEmployeeHandler(employeeRepository employee.EmployeeRepository) EmployeeHandler {
	return &employeeHandlerImpl{
		employeeRepository: employeeRepository,
	}
}

// List implements EmployeeHandler.
func (h *employeeHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	employees, err := h.employeeRepository.ListActive(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	data := make([]employee.EmployeeResponse, 0, len(employees))
	for _, emp := range employees {
		data = append(data, employee.ToResponse(emp))
	}

	response.Success(w, data)
}
