package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tallyops/payroll-backend-go/internal/domain/payroll"
)

type periodKey struct {
	EmployeeID  string
	PeriodMonth int
	PeriodYear  int
}

type PayrollRepository struct {
	mu       sync.RWMutex
	byID     map[string]payroll.PayrollRecord
	byPeriod map[periodKey]string
}

func NewPayrollRepository() *PayrollRepository {
	return &PayrollRepository{
		byID:     make(map[string]payroll.PayrollRecord),
		byPeriod: make(map[periodKey]string),
	}
}

func (r *PayrollRepository) GetByID(_ context.Context, id string) (payroll.PayrollRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}
	return rec, nil
}

func (r *PayrollRepository) GetByEmployeePeriod(_ context.Context, employeeID string, month, year int) (payroll.PayrollRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byPeriod[periodKey{EmployeeID: employeeID, PeriodMonth: month, PeriodYear: year}]
	if !ok {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}
	return r.byID[id], nil
}

// Replace swaps the unpaid record for the period key under the store
// lock. A paid record occupying the key refuses the replacement, which
// is the same outcome the SQL unique index produces.
func (r *PayrollRepository) Replace(_ context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := periodKey{EmployeeID: record.EmployeeID, PeriodMonth: record.PeriodMonth, PeriodYear: record.PeriodYear}
	if existingID, ok := r.byPeriod[k]; ok {
		if r.byID[existingID].Paid {
			return payroll.PayrollRecord{}, payroll.ErrAlreadyPaid
		}
		delete(r.byID, existingID)
	}

	now := time.Now()
	record.Paid = false
	record.PaidAt = nil
	record.PaidBy = nil
	record.PaymentRef = nil
	record.CreatedAt = now
	record.UpdatedAt = now
	r.byID[record.ID] = record
	r.byPeriod[k] = record.ID
	return record, nil
}

// MarkPaid is the compare-and-set on paid=false. A repeated call finds
// the record already paid and leaves the stored payment fields alone.
func (r *PayrollRepository) MarkPaid(_ context.Context, id string, paidAt time.Time, paidBy *string, paymentRef *string) (payroll.PayrollRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[id]
	if !ok {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}
	if rec.Paid {
		return payroll.PayrollRecord{}, payroll.ErrAlreadyPaid
	}

	rec.Paid = true
	rec.PaidAt = &paidAt
	rec.PaidBy = paidBy
	rec.PaymentRef = paymentRef
	rec.UpdatedAt = time.Now()
	r.byID[id] = rec
	return rec, nil
}

func (r *PayrollRepository) List(_ context.Context, filter payroll.PayrollFilter) ([]payroll.PayrollRecord, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []payroll.PayrollRecord
	for _, rec := range r.byID {
		if filter.PeriodMonth != nil && rec.PeriodMonth != *filter.PeriodMonth {
			continue
		}
		if filter.PeriodYear != nil && rec.PeriodYear != *filter.PeriodYear {
			continue
		}
		if filter.EmployeeID != nil && rec.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Paid != nil && rec.Paid != *filter.Paid {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PeriodYear != out[j].PeriodYear {
			return out[i].PeriodYear > out[j].PeriodYear
		}
		if out[i].PeriodMonth != out[j].PeriodMonth {
			return out[i].PeriodMonth > out[j].PeriodMonth
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})

	total := int64(len(out))
	if filter.Limit > 0 {
		start := 0
		if filter.Page > 1 {
			start = (filter.Page - 1) * filter.Limit
		}
		if start > len(out) {
			start = len(out)
		}
		end := start + filter.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, total, nil
}
