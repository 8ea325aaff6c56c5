package employee

import "context"

// EmployeeRepository reads externally supplied employee master data.
// There are intentionally no write methods: master data management lives
// in another system and reaches this store out of band.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)

	// GetByCode resolves a human-facing employee code, used by bulk
	// attendance rows.
	GetByCode(ctx context.Context, code string) (Employee, error)

	GetByIDs(ctx context.Context, ids []string) ([]Employee, error)

	ListActive(ctx context.Context) ([]Employee, error)
}
