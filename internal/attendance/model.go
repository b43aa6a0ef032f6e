package attendance

import "time"

// Kind: 打刻の種別
type Kind string

const (
	KindEntry    Kind = "entry"
	KindExit     Kind = "exit"
	KindBreakOut Kind = "break_out"
	KindBreakIn  Kind = "break_in"
	KindManual   Kind = "manual"
)

func (k Kind) Valid() bool {
	switch k {
	case KindEntry, KindExit, KindBreakOut, KindBreakIn, KindManual:
		return true
	}
	return false
}

// Method: 打刻の登録経路（正しさには関与しない、出自の記録）
type Method string

const (
	MethodBadge       Method = "badge"
	MethodManual      Method = "manual"
	MethodMobile      Method = "mobile"
	MethodExternalAPI Method = "external_api"
	MethodBatchImport Method = "batch_import"
)

// Attendance: 打刻1件。作成後は Validated / Note 以外は変更しない。
type Attendance struct {
	AttendanceID uint64
	EmployeeID   uint
	Kind         Kind
	Method       Method
	Note         *string
	OriginDevice *string
	Validated    bool
	RegisteredAt time.Time
	// RegisteredAt から導出した暦日（日次の照会用）
	AttendanceDate string // YYYY-MM-DD
}

// DB行に対応（スキャン用）
type attendanceRow struct {
	AttendanceID   uint64
	EmployeeID     uint
	Kind           string
	Method         string
	Note           *string
	OriginDevice   *string
	Validated      bool
	RegisteredAt   time.Time
	AttendanceDate string
}

func (r attendanceRow) toModel() Attendance {
	return Attendance{
		AttendanceID:   r.AttendanceID,
		EmployeeID:     r.EmployeeID,
		Kind:           Kind(r.Kind),
		Method:         Method(r.Method),
		Note:           r.Note,
		OriginDevice:   r.OriginDevice,
		Validated:      r.Validated,
		RegisteredAt:   r.RegisteredAt.UTC(),
		AttendanceDate: r.AttendanceDate,
	}
}

// NextKind decides the kind for a new registration from the employee's
// history. First scan of the day (or ever) is always an entry; after that the
// kind alternates off the most recent event. Note the table cannot tell a
// lunch exit from an end-of-day exit: a third same-day scan oscillates
// exit/break_in with no distinct final-exit marker. That matches the shipped
// behavior and stays until the product owner decides otherwise.
func NextKind(last *Attendance, hasEventToday bool) Kind {
	if last == nil || !hasEventToday {
		return KindEntry
	}
	switch last.Kind {
	case KindEntry:
		return KindExit
	case KindExit:
		return KindBreakIn
	case KindBreakOut:
		return KindBreakIn
	case KindBreakIn:
		return KindExit
	default: // manual 等
		return KindEntry
	}
}
