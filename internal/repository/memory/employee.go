// Package memory provides in-memory implementations of the repository
// interfaces. They back STORE_TYPE=memory for local development and the
// engine's unit tests, and uphold the same serialization contracts as the
// PostgreSQL implementations via per-repository locking.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/tallyops/payroll-backend-go/internal/domain/employee"
)

type EmployeeRepository struct {
	mu     sync.RWMutex
	byID   map[string]employee.Employee
	byCode map[string]string
}

func NewEmployeeRepository(seed ...employee.Employee) *EmployeeRepository {
	r := &EmployeeRepository{
		byID:   make(map[string]employee.Employee),
		byCode: make(map[string]string),
	}
	for _, emp := range seed {
		r.Put(emp)
	}
	return r
}

// Put loads externally managed master data into the store. It is not part
// of employee.EmployeeRepository: the engine never writes employees.
func (r *EmployeeRepository) Put(emp employee.Employee) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[emp.ID] = emp
	r.byCode[emp.Code] = emp.ID
}

func (r *EmployeeRepository) GetByID(_ context.Context, id string) (employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	emp, ok := r.byID[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (r *EmployeeRepository) GetByCode(_ context.Context, code string) (employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byCode[code]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return r.byID[id], nil
}

func (r *EmployeeRepository) GetByIDs(_ context.Context, ids []string) ([]employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []employee.Employee
	for _, id := range ids {
		if emp, ok := r.byID[id]; ok {
			out = append(out, emp)
		}
	}
	sortEmployees(out)
	return out, nil
}

func (r *EmployeeRepository) ListActive(_ context.Context) ([]employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []employee.Employee
	for _, emp := range r.byID {
		if emp.IsActive() {
			out = append(out, emp)
		}
	}
	sortEmployees(out)
	return out, nil
}

func sortEmployees(emps []employee.Employee) {
	sort.Slice(emps, func(i, j int) bool {
		return emps[i].FullName < emps[j].FullName
	})
}
