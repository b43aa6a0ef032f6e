package employees

import (
	"context"
	"database/sql"

	"timeclock-backend/internal/attendance"
)

// DirectoryAdapter は attendance.Directory を満たす読み取り専用アダプタ。
// 見つからない場合は nil, nil（attendance側が UNKNOWN_BADGE 等に変換する）。
type DirectoryAdapter struct {
	store *Store
}

func NewDirectoryAdapter(d *sql.DB) *DirectoryAdapter {
	return &DirectoryAdapter{store: NewStore(d)}
}

var _ attendance.Directory = (*DirectoryAdapter)(nil)

func (a *DirectoryAdapter) ResolveByBadge(ctx context.Context, badgeCode string) (*attendance.Employee, error) {
	e, err := a.store.GetByBadge(ctx, badgeCode)
	if err != nil || e == nil {
		return nil, err
	}
	return toView(e), nil
}

func (a *DirectoryAdapter) ResolveByID(ctx context.Context, employeeID uint) (*attendance.Employee, error) {
	e, err := a.store.GetByID(ctx, employeeID)
	if err != nil || e == nil {
		return nil, err
	}
	return toView(e), nil
}

func toView(e *Employee) *attendance.Employee {
	return &attendance.Employee{
		ID:       e.EmployeeID,
		Name:     e.Name,
		AreaID:   e.AreaID,
		AreaName: e.AreaName,
		Active:   e.Active,
	}
}
