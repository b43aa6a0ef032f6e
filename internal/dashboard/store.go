package dashboard

import (
	"context"

	"timeclock-backend/internal/platform/db"
)

type Store struct{ db db.DBTX }

func NewStore(d db.DBTX) *Store { return &Store{db: d} }

type overviewCounts struct {
	Total           int64
	Today           int64
	Employees       int64
	Areas           int64
	ActiveEmployees int64
	TodayEmployees  int64
}

func (s *Store) OverviewCounts(ctx context.Context, from, to, today string) (overviewCounts, error) {
	var c overviewCounts
	err := s.db.QueryRowContext(ctx, `
	SELECT
	  COUNT(*),
	  COUNT(DISTINCT a.employee_id),
	  COUNT(DISTINCT e.area_id)
	FROM attendances a
	JOIN employees e ON e.employee_id = a.employee_id
	WHERE a.attendance_date BETWEEN ? AND ?`, from, to).
		Scan(&c.Total, &c.Employees, &c.Areas)
	if err != nil {
		return c, err
	}
	err = s.db.QueryRowContext(ctx, `
	SELECT COUNT(*), COUNT(DISTINCT employee_id)
	FROM attendances WHERE attendance_date = ?`, today).
		Scan(&c.Today, &c.TodayEmployees)
	if err != nil {
		return c, err
	}
	err = s.db.QueryRowContext(ctx, `
	SELECT COUNT(*) FROM employees WHERE active = 1`).Scan(&c.ActiveEmployees)
	return c, err
}

func (s *Store) AreaBreakdown(ctx context.Context, from, to string) ([]AreaBreakdownRow, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT ar.area_id, ar.name, COUNT(*), COUNT(DISTINCT a.employee_id)
	FROM attendances a
	JOIN employees e ON e.employee_id = a.employee_id
	JOIN areas ar    ON ar.area_id = e.area_id
	WHERE a.attendance_date BETWEEN ? AND ?
	GROUP BY ar.area_id, ar.name
	ORDER BY COUNT(*) DESC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AreaBreakdownRow
	for rows.Next() {
		var r AreaBreakdownRow
		if err := rows.Scan(&r.AreaID, &r.AreaName, &r.Total, &r.Employees); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) DailyTrend(ctx context.Context, from, to string) ([]DailyTrendRow, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT DATE_FORMAT(attendance_date, '%Y-%m-%d'), COUNT(*)
	FROM attendances
	WHERE attendance_date BETWEEN ? AND ?
	GROUP BY attendance_date
	ORDER BY attendance_date ASC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DailyTrendRow
	for rows.Next() {
		var r DailyTrendRow
		if err := rows.Scan(&r.Date, &r.Total); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Ranking(ctx context.Context, from, to string, top int) ([]RankingRow, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT e.employee_id, e.name, ar.name, COUNT(*)
	FROM attendances a
	JOIN employees e ON e.employee_id = a.employee_id
	JOIN areas ar    ON ar.area_id = e.area_id
	WHERE a.attendance_date BETWEEN ? AND ?
	GROUP BY e.employee_id, e.name, ar.name
	ORDER BY COUNT(*) DESC, e.name ASC
	LIMIT ?`, from, to, top)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RankingRow
	for rows.Next() {
		var r RankingRow
		if err := rows.Scan(&r.EmployeeID, &r.EmployeeName, &r.AreaName, &r.Total); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) HourlyDistribution(ctx context.Context, from, to string) ([]HourlyRow, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT HOUR(registered_at), COUNT(*)
	FROM attendances
	WHERE attendance_date BETWEEN ? AND ?
	GROUP BY HOUR(registered_at)
	ORDER BY HOUR(registered_at) ASC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HourlyRow
	for rows.Next() {
		var r HourlyRow
		if err := rows.Scan(&r.Hour, &r.Total); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
