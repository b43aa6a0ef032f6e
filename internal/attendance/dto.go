package attendance

import "time"

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
	DateLayout       = "2006-01-02"
)

// FailureKind: 登録が拒否された理由のタグ。呼び出し側のUI分岐用。
type FailureKind string

const (
	FailureUnknownBadge     FailureKind = "UNKNOWN_BADGE"
	FailureInactiveEmployee FailureKind = "INACTIVE_EMPLOYEE"
	FailureTooSoon          FailureKind = "TOO_SOON"
	FailureEmployeeNotFound FailureKind = "EMPLOYEE_NOT_FOUND"
	FailureInternal         FailureKind = "INTERNAL_ERROR"
)

type RegisterBadgeRequest struct {
	BadgeCode    string  `json:"badge_code" binding:"required"`
	OriginDevice *string `json:"origin_device,omitempty"`
}

type RegisterManualRequest struct {
	EmployeeID uint    `json:"employee_id" binding:"required"`
	Kind       string  `json:"kind" binding:"required"`
	Note       *string `json:"note,omitempty"`
}

type ValidateRequest struct {
	Accepted bool    `json:"accepted"`
	Note     *string `json:"note,omitempty"`
}

// RegistrationOutcome: 登録結果。REST応答とリアルタイム配信で同じ形を使う。
// 拒否は輸送エラーではなく Success=false + FailureKind で返す。
type RegistrationOutcome struct {
	Success      bool        `json:"success"`
	Message      string      `json:"message"`
	EmployeeID   uint        `json:"employee_id,omitempty"`
	EmployeeName string      `json:"employee_name,omitempty"`
	AreaName     string      `json:"area_name,omitempty"`
	Kind         Kind        `json:"kind,omitempty"`
	RegisteredAt *time.Time  `json:"registered_at,omitempty"`
	AttendanceID uint64      `json:"attendance_id,omitempty"`
	FailureKind  FailureKind `json:"failure_kind,omitempty"`
}

type AttendanceResponse struct {
	AttendanceID   uint64    `json:"attendance_id"`
	EmployeeID     uint      `json:"employee_id"`
	Kind           Kind      `json:"kind"`
	Method         Method    `json:"method"`
	Note           *string   `json:"note,omitempty"`
	OriginDevice   *string   `json:"origin_device,omitempty"`
	Validated      bool      `json:"validated"`
	RegisteredAt   time.Time `json:"registered_at"`
	AttendanceDate string    `json:"attendance_date"`
}

func (a Attendance) toDTO() AttendanceResponse {
	return AttendanceResponse{
		AttendanceID:   a.AttendanceID,
		EmployeeID:     a.EmployeeID,
		Kind:           a.Kind,
		Method:         a.Method,
		Note:           a.Note,
		OriginDevice:   a.OriginDevice,
		Validated:      a.Validated,
		RegisteredAt:   a.RegisteredAt,
		AttendanceDate: a.AttendanceDate,
	}
}

type ListQuery struct {
	EmployeeID *uint
	AreaID     *uint
	From       *string // YYYY-MM-DD
	To         *string // YYYY-MM-DD
	Validated  *bool
	Limit      int
	Offset     int
}

type StatsRequest struct {
	From string // YYYY-MM-DD
	To   string // YYYY-MM-DD
	Top  int
}

// 集計行はすべて明示的な型で返す（リフレクション投影はしない）。

type AreaTotalRow struct {
	AreaID       uint    `json:"area_id"`
	AreaName     string  `json:"area_name"`
	Total        int64   `json:"total"`
	DailyAverage float64 `json:"daily_average"`
}

type EmployeeRankRow struct {
	EmployeeID uint   `json:"employee_id"`
	Name       string `json:"name"`
	AreaName   string `json:"area_name"`
	Total      int64  `json:"total"`
}

type StatsResponse struct {
	From    string            `json:"from"`
	To      string            `json:"to"`
	ByArea  []AreaTotalRow    `json:"by_area"`
	Ranking []EmployeeRankRow `json:"ranking"`
}
