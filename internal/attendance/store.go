package attendance

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type DBTX interface {
	ExecContext(ctx context.Context, q string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, q string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, q string, args ...any) *sql.Row
}

type Store struct{ db DBTX }

func NewStore(db DBTX) *Store { return &Store{db: db} }

var _ Ledger = (*Store)(nil)

const attendanceColumns = `attendance_id, employee_id, kind, method, note, origin_device, validated, registered_at, DATE_FORMAT(attendance_date, '%Y-%m-%d')`

// MostRecent: 従業員の直近イベント（日付は問わない）。無ければ nil。
func (s *Store) MostRecent(ctx context.Context, employeeID uint) (*Attendance, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT `+attendanceColumns+`
	FROM attendances
	WHERE employee_id = ?
	ORDER BY registered_at DESC, attendance_id DESC
	LIMIT 1`, employeeID)

	return scanAttendance(row)
}

// ExistsOnDate: 指定従業員がその暦日に1件でも打刻しているか
func (s *Store) ExistsOnDate(ctx context.Context, employeeID uint, date string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
	SELECT 1 FROM attendances
	WHERE employee_id = ? AND attendance_date = ? LIMIT 1`, employeeID, date,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Insert: 暦日は registered_at から導出して保存する（独立に設定させない）
func (s *Store) Insert(ctx context.Context, a *Attendance) (*Attendance, error) {
	res, err := s.db.ExecContext(ctx, `
	INSERT INTO attendances (employee_id, kind, method, note, origin_device, validated, registered_at, attendance_date)
	VALUES (?, ?, ?, ?, ?, ?, ?, DATE(?))`,
		a.EmployeeID, string(a.Kind), string(a.Method), noteOrNil(a.Note), noteOrNil(a.OriginDevice),
		a.Validated, a.RegisteredAt, a.RegisteredAt,
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	out := *a
	out.AttendanceID = uint64(id)
	out.AttendanceDate = a.RegisteredAt.UTC().Format(DateLayout)
	return &out, nil
}

func (s *Store) GetByID(ctx context.Context, attendanceID uint64) (*Attendance, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT `+attendanceColumns+`
	FROM attendances
	WHERE attendance_id = ?`, attendanceID)

	return scanAttendance(row)
}

// Update: 監査パスで触れるのは validated と note のみ
func (s *Store) Update(ctx context.Context, a *Attendance) error {
	res, err := s.db.ExecContext(ctx, `
	UPDATE attendances SET validated = ?, note = ? WHERE attendance_id = ?`,
		a.Validated, noteOrNil(a.Note), a.AttendanceID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound("attendance not found")
	}
	return nil
}

// List: 条件に応じて動的WHERE + ORDER + LIMIT/OFFSET
func (s *Store) List(ctx context.Context, q ListQuery) ([]Attendance, int64, error) {
	var (
		buf    bytes.Buffer
		args   []any
		wheres []string
	)

	buf.WriteString(`
	SELECT a.attendance_id, a.employee_id, a.kind, a.method, a.note, a.origin_device, a.validated, a.registered_at, DATE_FORMAT(a.attendance_date, '%Y-%m-%d')
	FROM attendances a
	JOIN employees e ON e.employee_id = a.employee_id
	`)
	if q.EmployeeID != nil {
		wheres = append(wheres, "a.employee_id = ?")
		args = append(args, *q.EmployeeID)
	}
	if q.AreaID != nil {
		wheres = append(wheres, "e.area_id = ?")
		args = append(args, *q.AreaID)
	}
	if q.From != nil && *q.From != "" {
		wheres = append(wheres, "a.attendance_date >= ?")
		args = append(args, *q.From)
	}
	if q.To != nil && *q.To != "" {
		wheres = append(wheres, "a.attendance_date <= ?")
		args = append(args, *q.To)
	}
	if q.Validated != nil {
		wheres = append(wheres, "a.validated = ?")
		args = append(args, *q.Validated)
	}
	if len(wheres) > 0 {
		buf.WriteString(" WHERE " + strings.Join(wheres, " AND "))
	}

	buf.WriteString(" ORDER BY a.registered_at DESC, a.attendance_id DESC")

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	buf.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, q.Offset))

	rows, err := s.db.QueryContext(ctx, buf.String(), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Attendance
	for rows.Next() {
		var r attendanceRow
		if err := rows.Scan(&r.AttendanceID, &r.EmployeeID, &r.Kind, &r.Method, &r.Note, &r.OriginDevice, &r.Validated, &r.RegisteredAt, &r.AttendanceDate); err != nil {
			return nil, 0, err
		}
		out = append(out, r.toModel())
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	// COUNT（ORDER BY より前までを再構築）
	var cntBuf bytes.Buffer
	cntBuf.WriteString("SELECT COUNT(*) FROM attendances a JOIN employees e ON e.employee_id = a.employee_id")
	if len(wheres) > 0 {
		cntBuf.WriteString(" WHERE " + strings.Join(wheres, " AND "))
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, cntBuf.String(), args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// AreaTotals: 期間のエリア別合計と日次平均
func (s *Store) AreaTotals(ctx context.Context, from, to time.Time) ([]AreaTotalRow, error) {
	days := int(to.Sub(from).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	rows, err := s.db.QueryContext(ctx, `
	SELECT ar.area_id, ar.name, COUNT(*) AS cnt
	FROM attendances a
	JOIN employees e ON e.employee_id = a.employee_id
	JOIN areas ar ON ar.area_id = e.area_id
	WHERE a.attendance_date BETWEEN ? AND ?
	GROUP BY ar.area_id, ar.name
	ORDER BY cnt DESC, ar.name ASC`,
		from.Format(DateLayout), to.Format(DateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AreaTotalRow
	for rows.Next() {
		var row AreaTotalRow
		if err := rows.Scan(&row.AreaID, &row.AreaName, &row.Total); err != nil {
			return nil, err
		}
		row.DailyAverage = float64(row.Total) / float64(days)
		out = append(out, row)
	}
	return out, rows.Err()
}

// Ranking: 期間の打刻数をユーザ別合計（TOP N）
func (s *Store) Ranking(ctx context.Context, from, to time.Time, top int) ([]EmployeeRankRow, error) {
	if top <= 0 {
		top = 10
	}
	rows, err := s.db.QueryContext(ctx, `
	SELECT e.employee_id, e.name, ar.name, COUNT(*) AS cnt
	FROM attendances a
	JOIN employees e ON e.employee_id = a.employee_id
	JOIN areas ar ON ar.area_id = e.area_id
	WHERE a.attendance_date BETWEEN ? AND ?
	GROUP BY e.employee_id, e.name, ar.name
	ORDER BY cnt DESC, e.name ASC
	LIMIT ?`,
		from.Format(DateLayout), to.Format(DateLayout), top)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EmployeeRankRow
	for rows.Next() {
		var row EmployeeRankRow
		if err := rows.Scan(&row.EmployeeID, &row.Name, &row.AreaName, &row.Total); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ===== helpers =====

func scanAttendance(row *sql.Row) (*Attendance, error) {
	var r attendanceRow
	err := row.Scan(&r.AttendanceID, &r.EmployeeID, &r.Kind, &r.Method, &r.Note, &r.OriginDevice, &r.Validated, &r.RegisteredAt, &r.AttendanceDate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m := r.toModel()
	return &m, nil
}

func noteOrNil(s *string) any {
	if s == nil {
		return nil
	}
	if *s == "" {
		return nil
	}
	return *s
}
