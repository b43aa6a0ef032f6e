package employees

import "time"

// Employee: 従業員（バッジ保持者）。Active=false はソフト削除。
type Employee struct {
	EmployeeID         uint
	Name               string
	RegistrationNumber string
	BadgeCode          string
	Email              *string
	Phone              *string
	Active             bool
	AreaID             uint
	AreaName           string
	CreatedAt          time.Time
	UpdatedAt          *time.Time
}

// DB行に対応（スキャン用）
type employeeRow struct {
	EmployeeID         uint
	Name               string
	RegistrationNumber string
	BadgeCode          string
	Email              *string
	Phone              *string
	Active             bool
	AreaID             uint
	AreaName           string
	CreatedAt          time.Time
	UpdatedAt          *time.Time
}

func (r employeeRow) toModel() Employee {
	return Employee{
		EmployeeID:         r.EmployeeID,
		Name:               r.Name,
		RegistrationNumber: r.RegistrationNumber,
		BadgeCode:          r.BadgeCode,
		Email:              r.Email,
		Phone:              r.Phone,
		Active:             r.Active,
		AreaID:             r.AreaID,
		AreaName:           r.AreaName,
		CreatedAt:          r.CreatedAt.UTC(),
		UpdatedAt:          r.UpdatedAt,
	}
}
