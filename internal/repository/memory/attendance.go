package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tallyops/payroll-backend-go/internal/domain/attendance"
)

type attendanceKey struct {
	EmployeeID string
	Date       time.Time
}

type AttendanceRepository struct {
	mu      sync.RWMutex
	records map[attendanceKey]attendance.Attendance
}

func NewAttendanceRepository() *AttendanceRepository {
	return &AttendanceRepository{
		records: make(map[attendanceKey]attendance.Attendance),
	}
}

// Upsert replaces the record for (employeeID, date) under the store lock,
// giving the same last-writer-wins semantics as the SQL ON CONFLICT path.
func (r *AttendanceRepository) Upsert(_ context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := attendanceKey{EmployeeID: att.EmployeeID, Date: attendance.Day(att.Date)}
	now := time.Now()
	if existing, ok := r.records[k]; ok {
		att.ID = existing.ID
		att.CreatedAt = existing.CreatedAt
	} else {
		att.CreatedAt = now
	}
	att.UpdatedAt = now
	r.records[k] = att
	return att, nil
}

func (r *AttendanceRepository) GetByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	k := attendanceKey{EmployeeID: employeeID, Date: attendance.Day(date)}
	att, ok := r.records[k]
	if !ok {
		return nil, nil
	}
	return &att, nil
}

func (r *AttendanceRepository) ListRange(_ context.Context, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []attendance.Attendance
	for k, att := range r.records {
		if k.EmployeeID != employeeID {
			continue
		}
		if k.Date.Before(from) || k.Date.After(to) {
			continue
		}
		out = append(out, att)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *AttendanceRepository) List(_ context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []attendance.Attendance
	for _, att := range r.records {
		if filter.EmployeeID != nil && att.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.From != nil && att.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && att.Date.After(*filter.To) {
			continue
		}
		if filter.JobID != nil && (att.JobID == nil || *att.JobID != *filter.JobID) {
			continue
		}
		out = append(out, att)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })

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
