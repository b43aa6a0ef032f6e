package employees

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"

	"timeclock-backend/internal/platform/db"
)

type Store struct{ db db.DBTX }

func NewStore(d db.DBTX) *Store { return &Store{db: d} }

var _ Registry = (*Store)(nil)

const employeeColumns = `e.employee_id, e.name, e.registration_number, e.badge_code, e.email, e.phone, e.active, e.area_id, ar.name, e.created_at, e.updated_at`

const employeeFrom = ` FROM employees e JOIN areas ar ON ar.area_id = e.area_id`

// GetByID: 無ければ nil
func (s *Store) GetByID(ctx context.Context, id uint) (*Employee, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+employeeColumns+employeeFrom+` WHERE e.employee_id = ?`, id)
	return scanEmployee(row)
}

// GetByBadge: バッジコードで1件。無ければ nil
func (s *Store) GetByBadge(ctx context.Context, badgeCode string) (*Employee, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+employeeColumns+employeeFrom+` WHERE e.badge_code = ?`, badgeCode)
	return scanEmployee(row)
}

// GetByRegistration: 社員番号で1件。無ければ nil
func (s *Store) GetByRegistration(ctx context.Context, number string) (*Employee, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+employeeColumns+employeeFrom+` WHERE e.registration_number = ?`, number)
	return scanEmployee(row)
}

func (s *Store) Insert(ctx context.Context, e *Employee) (uint, error) {
	res, err := s.db.ExecContext(ctx, `
	INSERT INTO employees (name, registration_number, badge_code, email, phone, active, area_id, created_at)
	VALUES (?, ?, ?, ?, ?, 1, ?, UTC_TIMESTAMP(6))`,
		e.Name, e.RegistrationNumber, e.BadgeCode, strOrNil(e.Email), strOrNil(e.Phone), e.AreaID,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func (s *Store) Update(ctx context.Context, e *Employee) error {
	res, err := s.db.ExecContext(ctx, `
	UPDATE employees
	SET name = ?, badge_code = ?, email = ?, phone = ?, area_id = ?, active = ?, updated_at = UTC_TIMESTAMP(6)
	WHERE employee_id = ?`,
		e.Name, e.BadgeCode, strOrNil(e.Email), strOrNil(e.Phone), e.AreaID, e.Active, e.EmployeeID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound("employee not found")
	}
	return nil
}

// Deactivate: ソフト削除（行は消さない）
func (s *Store) Deactivate(ctx context.Context, id uint) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
	UPDATE employees SET active = 0, updated_at = UTC_TIMESTAMP(6) WHERE employee_id = ? AND active = 1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// List: 条件に応じて動的WHERE + LIMIT/OFFSET
func (s *Store) List(ctx context.Context, q ListQuery) ([]Employee, int64, error) {
	var (
		buf    bytes.Buffer
		args   []any
		wheres []string
	)
	buf.WriteString(`SELECT ` + employeeColumns + employeeFrom)

	if q.AreaID != nil {
		wheres = append(wheres, "e.area_id = ?")
		args = append(args, *q.AreaID)
	}
	if q.Active != nil {
		wheres = append(wheres, "e.active = ?")
		args = append(args, *q.Active)
	}
	if q.Search != "" {
		wheres = append(wheres, "(e.name LIKE ? OR e.registration_number LIKE ? OR e.email LIKE ?)")
		like := "%" + q.Search + "%"
		args = append(args, like, like, like)
	}
	if len(wheres) > 0 {
		buf.WriteString(" WHERE " + strings.Join(wheres, " AND "))
	}
	buf.WriteString(" ORDER BY e.name ASC, e.employee_id ASC")

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

	var out []Employee
	for rows.Next() {
		var r employeeRow
		if err := rows.Scan(&r.EmployeeID, &r.Name, &r.RegistrationNumber, &r.BadgeCode, &r.Email, &r.Phone, &r.Active, &r.AreaID, &r.AreaName, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, r.toModel())
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var cntBuf bytes.Buffer
	cntBuf.WriteString("SELECT COUNT(*)" + employeeFrom)
	if len(wheres) > 0 {
		cntBuf.WriteString(" WHERE " + strings.Join(wheres, " AND "))
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, cntBuf.String(), args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// AreaExists: エリアIDの存在確認
func (s *Store) AreaExists(ctx context.Context, areaID uint) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM areas WHERE area_id = ? LIMIT 1`, areaID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ActiveAreas: 有効なエリアの 名前→ID マップ（インポートの照合用）
func (s *Store) ActiveAreas(ctx context.Context) (map[string]uint, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT area_id, name FROM areas WHERE active = 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]uint)
	for rows.Next() {
		var (
			id   uint
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[strings.ToLower(strings.TrimSpace(name))] = id
	}
	return out, rows.Err()
}

// insertImportRow: インポート用の1行INSERT（Txの中から呼ぶ）
func insertImportRow(ctx context.Context, tx db.DBTX, r importRow) error {
	_, err := tx.ExecContext(ctx, `
	INSERT INTO employees (name, registration_number, badge_code, email, phone, active, area_id, created_at)
	VALUES (?, ?, ?, ?, ?, 1, ?, UTC_TIMESTAMP(6))`,
		r.Name, r.RegistrationNumber, r.BadgeCode, strOrNil(r.Email), strOrNil(r.Phone), r.AreaID,
	)
	return err
}

// ===== helpers =====

func scanEmployee(row *sql.Row) (*Employee, error) {
	var r employeeRow
	err := row.Scan(&r.EmployeeID, &r.Name, &r.RegistrationNumber, &r.BadgeCode, &r.Email, &r.Phone, &r.Active, &r.AreaID, &r.AreaName, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m := r.toModel()
	return &m, nil
}

func strOrNil(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}
