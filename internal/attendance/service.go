package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"timeclock-backend/internal/events"
)

// ===== Error model (employees/areas/documents と同型) =====

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeNotFound:
			return 404
		case CodeConflict:
			return 409
		default:
			return 500
		}
	}
	return 500
}

// ===== 依存先インターフェース群 =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Employee: 従業員ディレクトリから引いた読み取り専用のビュー
type Employee struct {
	ID       uint
	Name     string
	AreaID   uint
	AreaName string
	Active   bool
}

// Directory resolves badge codes and employee ids. nil, nil means not found.
type Directory interface {
	ResolveByBadge(ctx context.Context, badgeCode string) (*Employee, error)
	ResolveByID(ctx context.Context, employeeID uint) (*Employee, error)
}

// Ledger stores attendance events. MostRecent and GetByID return nil, nil
// when no row exists.
type Ledger interface {
	MostRecent(ctx context.Context, employeeID uint) (*Attendance, error)
	ExistsOnDate(ctx context.Context, employeeID uint, date string) (bool, error)
	Insert(ctx context.Context, a *Attendance) (*Attendance, error)
	GetByID(ctx context.Context, attendanceID uint64) (*Attendance, error)
	Update(ctx context.Context, a *Attendance) error
	List(ctx context.Context, q ListQuery) ([]Attendance, int64, error)
	AreaTotals(ctx context.Context, from, to time.Time) ([]AreaTotalRow, error)
	Ranking(ctx context.Context, from, to time.Time, top int) ([]EmployeeRankRow, error)
}

// ===== Service =====

type Service struct {
	ledger    Ledger
	directory Directory
	pub       events.Publisher
	clock     Clock
}

func NewService(db *sql.DB, directory Directory, pub events.Publisher) *Service {
	return &Service{
		ledger:    NewStore(db),
		directory: directory,
		pub:       pub,
		clock:     realClock{},
	}
}

// RegisterByBadge: バッジ読み取りによる打刻。ガードは順番に評価し、最初に
// 落ちたところで打ち切る（イベントは作らない）。
//  1. バッジ未登録 → UNKNOWN_BADGE
//  2. 従業員が無効 → INACTIVE_EMPLOYEE
//  3. 直近イベントから minIntervalMinutes 未満 → TOO_SOON（リーダの二重読み対策）
//  4. 種別を決めて登録
//
// 「直近を読む→挿入する」の間は排他していない。同一従業員の同時打刻で
// entry が連続し得るが、read-committed + 単一行INSERTを前提にここでは
// 閉じない（運用上はガード間隔が実質の防波堤になる）。
func (s *Service) RegisterByBadge(ctx context.Context, badgeCode string, originDevice *string, minIntervalMinutes int) RegistrationOutcome {
	emp, err := s.directory.ResolveByBadge(ctx, badgeCode)
	if err != nil {
		log.Printf("[ERROR] badge registration: resolving badge %q: %v", badgeCode, err)
		return internalOutcome()
	}
	if emp == nil {
		log.Printf("[WARN] badge registration with unknown badge: %q", badgeCode)
		return RegistrationOutcome{
			Success:     false,
			Message:     "badge code not registered",
			FailureKind: FailureUnknownBadge,
		}
	}

	if !emp.Active {
		log.Printf("[WARN] badge registration for inactive employee: %d", emp.ID)
		return RegistrationOutcome{
			Success:     false,
			Message:     "employee is inactive",
			FailureKind: FailureInactiveEmployee,
		}
	}

	now := s.clock.Now().UTC()

	last, err := s.ledger.MostRecent(ctx, emp.ID)
	if err != nil {
		log.Printf("[ERROR] badge registration: most recent event for employee %d: %v", emp.ID, err)
		return internalOutcome()
	}
	if last != nil && now.Sub(last.RegisteredAt) < time.Duration(minIntervalMinutes)*time.Minute {
		return RegistrationOutcome{
			Success:      false,
			Message:      fmt.Sprintf("wait %d minutes between registrations", minIntervalMinutes),
			EmployeeName: emp.Name,
			FailureKind:  FailureTooSoon,
		}
	}

	hasEventToday, err := s.ledger.ExistsOnDate(ctx, emp.ID, now.Format(DateLayout))
	if err != nil {
		log.Printf("[ERROR] badge registration: events on date for employee %d: %v", emp.ID, err)
		return internalOutcome()
	}

	kind := NextKind(last, hasEventToday)

	created, err := s.ledger.Insert(ctx, &Attendance{
		EmployeeID:   emp.ID,
		Kind:         kind,
		Method:       MethodBadge,
		OriginDevice: originDevice,
		Validated:    true,
		RegisteredAt: now,
	})
	if err != nil {
		log.Printf("[ERROR] badge registration: inserting event for employee %d: %v", emp.ID, err)
		return internalOutcome()
	}

	log.Printf("[INFO] attendance registered: employee %d (%s), kind %s", emp.ID, emp.Name, kind)
	s.publishRegistered(ctx, emp, created)

	return successOutcome(fmt.Sprintf("attendance registered: %s", kind), emp, created)
}

// RegisterManual: 管理画面からの手入力。種別は呼び出し側指定、最小間隔の
// ガードは掛けない（手入力は意図的な操作とみなす）。
func (s *Service) RegisterManual(ctx context.Context, employeeID uint, kind Kind, note *string, registeredBy string) RegistrationOutcome {
	emp, err := s.directory.ResolveByID(ctx, employeeID)
	if err != nil {
		log.Printf("[ERROR] manual registration: resolving employee %d: %v", employeeID, err)
		return internalOutcome()
	}
	if emp == nil {
		return RegistrationOutcome{
			Success:     false,
			Message:     "employee not found",
			FailureKind: FailureEmployeeNotFound,
		}
	}
	if !emp.Active {
		return RegistrationOutcome{
			Success:     false,
			Message:     "employee is inactive",
			FailureKind: FailureInactiveEmployee,
		}
	}

	now := s.clock.Now().UTC()
	origin := fmt.Sprintf("manual - %s", registeredBy)

	created, err := s.ledger.Insert(ctx, &Attendance{
		EmployeeID:   emp.ID,
		Kind:         kind,
		Method:       MethodManual,
		Note:         note,
		OriginDevice: &origin,
		Validated:    true,
		RegisteredAt: now,
	})
	if err != nil {
		log.Printf("[ERROR] manual registration: inserting event for employee %d: %v", emp.ID, err)
		return internalOutcome()
	}

	log.Printf("[INFO] attendance registered manually: employee %d (%s), kind %s, by %s", emp.ID, emp.Name, kind, registeredBy)
	s.publishRegistered(ctx, emp, created)

	return successOutcome(fmt.Sprintf("attendance registered manually: %s", kind), emp, created)
}

// Validate: 事後レビューによる承認/否認。kind や時刻は変更しない。
// 見つからない・失敗はどちらも false（ここに豊かなエラー分類は要らない）。
func (s *Service) Validate(ctx context.Context, attendanceID uint64, accepted bool, note *string) bool {
	a, err := s.ledger.GetByID(ctx, attendanceID)
	if err != nil {
		log.Printf("[ERROR] validating attendance %d: %v", attendanceID, err)
		return false
	}
	if a == nil {
		return false
	}

	a.Validated = accepted
	if note != nil && *note != "" {
		a.Note = note
	}
	if err := s.ledger.Update(ctx, a); err != nil {
		log.Printf("[ERROR] validating attendance %d: %v", attendanceID, err)
		return false
	}
	return true
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]AttendanceResponse, int64, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	rows, total, err := s.ledger.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	out := make([]AttendanceResponse, 0, len(rows))
	for i := 0; i < len(rows); i++ {
		out = append(out, rows[i].toDTO())
	}
	return out, total, nil
}

// GET /attendances/stats
func (s *Service) Stats(ctx context.Context, req StatsRequest) (*StatsResponse, error) {
	from, err := time.ParseInLocation(DateLayout, req.From, time.UTC)
	if err != nil {
		return nil, ErrInvalid("from must be YYYY-MM-DD")
	}
	to, err := time.ParseInLocation(DateLayout, req.To, time.UTC)
	if err != nil {
		return nil, ErrInvalid("to must be YYYY-MM-DD")
	}
	if to.Before(from) {
		return nil, ErrInvalid("to must be >= from")
	}
	if req.Top <= 0 {
		req.Top = 10
	}

	byArea, err := s.ledger.AreaTotals(ctx, from, to)
	if err != nil {
		return nil, err
	}
	ranking, err := s.ledger.Ranking(ctx, from, to, req.Top)
	if err != nil {
		return nil, err
	}
	return &StatsResponse{From: req.From, To: req.To, ByArea: byArea, Ranking: ranking}, nil
}

// ===== helpers =====

func (s *Service) publishRegistered(ctx context.Context, emp *Employee, a *Attendance) {
	ev := events.AttendanceRegistered{
		AttendanceID: a.AttendanceID,
		EmployeeID:   emp.ID,
		EmployeeName: emp.Name,
		AreaID:       emp.AreaID,
		AreaName:     emp.AreaName,
		Kind:         string(a.Kind),
		Method:       string(a.Method),
		RegisteredAt: a.RegisteredAt,
	}
	if a.OriginDevice != nil {
		ev.OriginDevice = *a.OriginDevice
	}
	// 配信失敗で登録自体は失敗させない
	if err := s.pub.Publish(ctx, events.TopicRegistered, ev); err != nil {
		log.Printf("[WARN] publishing registered event %d: %v", a.AttendanceID, err)
	}
	if err := s.pub.Publish(ctx, events.TopicAreaRegistered(emp.AreaID), ev); err != nil {
		log.Printf("[WARN] publishing area event %d: %v", a.AttendanceID, err)
	}
}

func successOutcome(msg string, emp *Employee, a *Attendance) RegistrationOutcome {
	t := a.RegisteredAt
	return RegistrationOutcome{
		Success:      true,
		Message:      msg,
		EmployeeID:   emp.ID,
		EmployeeName: emp.Name,
		AreaName:     emp.AreaName,
		Kind:         a.Kind,
		RegisteredAt: &t,
		AttendanceID: a.AttendanceID,
	}
}

func internalOutcome() RegistrationOutcome {
	// 内部の例外内容は外に出さない
	return RegistrationOutcome{
		Success:     false,
		Message:     "internal error, please try again",
		FailureKind: FailureInternal,
	}
}
