package areas

import (
	"context"
	"database/sql"

	"timeclock-backend/internal/platform/db"
)

type Store struct{ db db.DBTX }

func NewStore(d db.DBTX) *Store { return &Store{db: d} }

const areaColumns = `area_id, name, description, active, created_at`

func (s *Store) List(ctx context.Context, includeDisabled bool) ([]Area, error) {
	q := `SELECT ` + areaColumns + ` FROM areas`
	if !includeDisabled {
		q += ` WHERE active = 1`
	}
	q += ` ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Area
	for rows.Next() {
		var a Area
		if err := rows.Scan(&a.AreaID, &a.Name, &a.Description, &a.Active, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) GetByID(ctx context.Context, id uint) (*Area, error) {
	var a Area
	err := s.db.QueryRowContext(ctx, `SELECT `+areaColumns+` FROM areas WHERE area_id = ?`, id).
		Scan(&a.AreaID, &a.Name, &a.Description, &a.Active, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) Create(ctx context.Context, name string, description *string) (uint, error) {
	res, err := s.db.ExecContext(ctx, `
	INSERT INTO areas (name, description, active) VALUES (?, ?, 1)`, name, description)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func (s *Store) Update(ctx context.Context, a *Area) error {
	res, err := s.db.ExecContext(ctx, `
	UPDATE areas SET name = ?, description = ?, active = ? WHERE area_id = ?`,
		a.Name, a.Description, a.Active, a.AreaID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Deactivate: ソフト削除。従業員が残っていても履歴参照のため行は消さない。
func (s *Store) Deactivate(ctx context.Context, id uint) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
	UPDATE areas SET active = 0 WHERE area_id = ? AND active = 1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ActiveEmployeeCount: 無効化の前チェック用
func (s *Store) ActiveEmployeeCount(ctx context.Context, areaID uint) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `
	SELECT COUNT(*) FROM employees WHERE area_id = ? AND active = 1`, areaID).Scan(&n)
	return n, err
}
