package dashboard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ===== Error model (他featureパッケージと同型) =====

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) && api.Code == CodeInvalidArgument {
		return 400
	}
	return 500
}

// ===== Service =====

const dateLayout = "2006-01-02"

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type Service struct {
	store *Store
	clock Clock
}

func NewService(db *sql.DB) *Service {
	return &Service{store: NewStore(db), clock: realClock{}}
}

// Report は期間内の集計をまとめて返す。省略時は直近30日。
func (s *Service) Report(ctx context.Context, from, to string) (*Report, error) {
	now := s.clock.Now().UTC()
	today := now.Format(dateLayout)

	if to == "" {
		to = today
	}
	if from == "" {
		from = now.AddDate(0, 0, -29).Format(dateLayout)
	}
	fromT, err := time.Parse(dateLayout, from)
	if err != nil {
		return nil, ErrInvalid("from must be YYYY-MM-DD")
	}
	toT, err := time.Parse(dateLayout, to)
	if err != nil {
		return nil, ErrInvalid("to must be YYYY-MM-DD")
	}
	if toT.Before(fromT) {
		return nil, ErrInvalid("to must not be before from")
	}

	counts, err := s.store.OverviewCounts(ctx, from, to, today)
	if err != nil {
		return nil, err
	}
	byArea, err := s.store.AreaBreakdown(ctx, from, to)
	if err != nil {
		return nil, err
	}
	daily, err := s.store.DailyTrend(ctx, from, to)
	if err != nil {
		return nil, err
	}
	ranking, err := s.store.Ranking(ctx, from, to, 10)
	if err != nil {
		return nil, err
	}
	hourly, err := s.store.HourlyDistribution(ctx, from, to)
	if err != nil {
		return nil, err
	}

	days := int64(toT.Sub(fromT).Hours()/24) + 1
	rep := &Report{
		From:    from,
		To:      to,
		ByArea:  byArea,
		Daily:   daily,
		Ranking: ranking,
		Hourly:  hourly,
	}
	rep.Overview = Overview{
		TotalRegistrations:  counts.Total,
		TodayRegistrations:  counts.Today,
		EmployeesWithEvents: counts.Employees,
		AreasWithEvents:     counts.Areas,
		ActiveEmployees:     counts.ActiveEmployees,
	}
	if days > 0 {
		rep.Overview.DailyAverage = float64(counts.Total) / float64(days)
	}
	if counts.ActiveEmployees > 0 {
		rep.Overview.PresenceRate = float64(counts.TodayEmployees) / float64(counts.ActiveEmployees)
	}
	for i := range rep.ByArea {
		if counts.Total > 0 {
			rep.ByArea[i].Share = float64(rep.ByArea[i].Total) / float64(counts.Total)
		}
	}
	return rep, nil
}
