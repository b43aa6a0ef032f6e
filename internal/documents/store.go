package documents

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"

	"timeclock-backend/internal/platform/db"
)

type Store struct{ db db.DBTX }

func NewStore(d db.DBTX) *Store { return &Store{db: d} }

var _ Library = (*Store)(nil)

const documentColumns = `document_id, file_name, stored_name, file_size, mime_type, md5_hash,
	DATE_FORMAT(reference_date, '%Y-%m-%d'), description, active, area_id, uploaded_by,
	uploaded_at, view_count, last_viewed_at`

func (s *Store) Insert(ctx context.Context, d *Document) (uint, error) {
	res, err := s.db.ExecContext(ctx, `
	INSERT INTO documents
	(file_name, stored_name, file_size, mime_type, md5_hash, reference_date, description, active, area_id, uploaded_by, uploaded_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?, UTC_TIMESTAMP(6))`,
		d.FileName, d.StoredName, d.FileSize, d.MimeType, d.MD5Hash, d.ReferenceDate, d.Description, d.AreaID, d.UploadedBy,
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

// GetByID: 無ければ nil（ソフト削除済みも返さない）
func (s *Store) GetByID(ctx context.Context, id uint) (*Document, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT `+documentColumns+` FROM documents WHERE document_id = ? AND active = 1`, id)
	return scanDocument(row)
}

// GetByHash: 同一内容の重複アップロード検知用
func (s *Store) GetByHash(ctx context.Context, md5hex string) (*Document, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT `+documentColumns+` FROM documents WHERE md5_hash = ? AND active = 1 LIMIT 1`, md5hex)
	return scanDocument(row)
}

func (s *Store) List(ctx context.Context, q ListQuery) ([]Document, int64, error) {
	var (
		buf  bytes.Buffer
		args []any
	)
	buf.WriteString(`SELECT ` + documentColumns + ` FROM documents WHERE active = 1`)
	if q.AreaID != nil {
		buf.WriteString(" AND area_id = ?")
		args = append(args, *q.AreaID)
	}
	buf.WriteString(" ORDER BY uploaded_at DESC, document_id DESC")

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

	var out []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.DocumentID, &d.FileName, &d.StoredName, &d.FileSize, &d.MimeType, &d.MD5Hash,
			&d.ReferenceDate, &d.Description, &d.Active, &d.AreaID, &d.UploadedBy,
			&d.UploadedAt, &d.ViewCount, &d.LastViewedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	cntQ := `SELECT COUNT(*) FROM documents WHERE active = 1`
	if q.AreaID != nil {
		cntQ += " AND area_id = ?"
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, cntQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// MarkViewed: 閲覧カウントをインクリメント
func (s *Store) MarkViewed(ctx context.Context, id uint) error {
	_, err := s.db.ExecContext(ctx, `
	UPDATE documents SET view_count = view_count + 1, last_viewed_at = UTC_TIMESTAMP(6)
	WHERE document_id = ?`, id)
	return err
}

// Deactivate: ソフト削除（ディスク上のファイルは残す）
func (s *Store) Deactivate(ctx context.Context, id uint) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
	UPDATE documents SET active = 0 WHERE document_id = ? AND active = 1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func scanDocument(row *sql.Row) (*Document, error) {
	var d Document
	err := row.Scan(&d.DocumentID, &d.FileName, &d.StoredName, &d.FileSize, &d.MimeType, &d.MD5Hash,
		&d.ReferenceDate, &d.Description, &d.Active, &d.AreaID, &d.UploadedBy,
		&d.UploadedAt, &d.ViewCount, &d.LastViewedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}
