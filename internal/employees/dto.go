package employees

import "time"

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200

	// CSVインポートの上限（5MB）
	MaxImportBytes = 5 * 1024 * 1024
)

type CreateEmployeeRequest struct {
	Name               string  `json:"name" binding:"required"`
	RegistrationNumber string  `json:"registration_number" binding:"required"`
	BadgeCode          string  `json:"badge_code" binding:"required"`
	Email              *string `json:"email,omitempty"`
	Phone              *string `json:"phone,omitempty"`
	AreaID             uint    `json:"area_id" binding:"required"`
}

type UpdateEmployeeRequest struct {
	Name      *string `json:"name,omitempty"`
	BadgeCode *string `json:"badge_code,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	AreaID    *uint   `json:"area_id,omitempty"`
	Active    *bool   `json:"active,omitempty"`
}

type EmployeeResponse struct {
	EmployeeID         uint       `json:"employee_id"`
	Name               string     `json:"name"`
	RegistrationNumber string     `json:"registration_number"`
	BadgeCode          string     `json:"badge_code"`
	Email              *string    `json:"email,omitempty"`
	Phone              *string    `json:"phone,omitempty"`
	Active             bool       `json:"active"`
	AreaID             uint       `json:"area_id"`
	AreaName           string     `json:"area_name"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`
}

func (e Employee) toDTO() EmployeeResponse {
	return EmployeeResponse{
		EmployeeID:         e.EmployeeID,
		Name:               e.Name,
		RegistrationNumber: e.RegistrationNumber,
		BadgeCode:          e.BadgeCode,
		Email:              e.Email,
		Phone:              e.Phone,
		Active:             e.Active,
		AreaID:             e.AreaID,
		AreaName:           e.AreaName,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

type ListQuery struct {
	AreaID *uint
	Active *bool
	Search string // 名前・社員番号・メールの部分一致
	Limit  int
	Offset int
}

// ImportResult: CSV一括登録の結果。行単位で成否が独立している。
type ImportResult struct {
	Processed int      `json:"processed"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

// importRow: CSVの1行ぶんの登録候補
type importRow struct {
	line               int
	Name               string
	RegistrationNumber string
	BadgeCode          string
	AreaID             uint
	Email              *string
	Phone              *string
}
