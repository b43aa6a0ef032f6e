package documents

import (
	"bytes"
	"context"
	"crypto/md5"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
)

// ===== Error model (attendance/employees/areas と同型) =====

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
func ErrConflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }
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

// ===== ID generator =====

type IDGen interface {
	NewULID(t time.Time) string
}

type ulidGen struct{}

func (ulidGen) NewULID(t time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// ===== Service =====

type Library interface {
	Insert(ctx context.Context, d *Document) (uint, error)
	GetByID(ctx context.Context, id uint) (*Document, error)
	GetByHash(ctx context.Context, md5hex string) (*Document, error)
	List(ctx context.Context, q ListQuery) ([]Document, int64, error)
	MarkViewed(ctx context.Context, id uint) error
	Deactivate(ctx context.Context, id uint) (bool, error)
}

type Service struct {
	lib   Library
	idGen IDGen
	dir   string // config: uploads.dir
}

func NewService(db *sql.DB, dir string) *Service {
	return &Service{lib: NewStore(db), idGen: ulidGen{}, dir: dir}
}

// pdfMagic: %PDF- で始まらないファイルは拒否する
var pdfMagic = []byte("%PDF-")

// Upload はPDFを受け取り、ディスクに保存してメタ情報を登録する。
// 格納名はULID（クライアントのファイル名はDBにだけ残す）。
func (s *Service) Upload(ctx context.Context, fileName string, r io.Reader, size int64, meta UploadMeta) (*Document, error) {
	if size > MaxUploadBytes {
		return nil, ErrInvalid("file exceeds 10MB limit")
	}
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, ErrInternal("failed to read upload")
	}
	if len(data) > MaxUploadBytes {
		return nil, ErrInvalid("file exceeds 10MB limit")
	}
	if len(data) == 0 {
		return nil, ErrInvalid("file is empty")
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return nil, ErrInvalid("only PDF files are accepted")
	}
	if meta.ReferenceDate != nil {
		if _, err := time.Parse("2006-01-02", *meta.ReferenceDate); err != nil {
			return nil, ErrInvalid("reference_date must be YYYY-MM-DD")
		}
	}

	sum := md5.Sum(data)
	md5hex := hex.EncodeToString(sum[:])
	if dup, err := s.lib.GetByHash(ctx, md5hex); err != nil {
		return nil, err
	} else if dup != nil {
		return nil, ErrConflict(fmt.Sprintf("identical file already uploaded as %q", dup.FileName))
	}

	storedName := s.idGen.NewULID(time.Now().UTC()) + ".pdf"
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, ErrInternal("failed to prepare upload directory")
	}
	if err := os.WriteFile(filepath.Join(s.dir, storedName), data, 0o644); err != nil {
		return nil, ErrInternal("failed to store file")
	}

	doc := &Document{
		FileName:      filepath.Base(fileName),
		StoredName:    storedName,
		FileSize:      int64(len(data)),
		MimeType:      PDFMimeType,
		MD5Hash:       &md5hex,
		ReferenceDate: meta.ReferenceDate,
		Description:   meta.Description,
		AreaID:        meta.AreaID,
	}
	if meta.UploadedBy != "" {
		doc.UploadedBy = &meta.UploadedBy
	}
	id, err := s.lib.Insert(ctx, doc)
	if err != nil {
		// DB登録に失敗したら書いたファイルは孤児になるため片付ける
		_ = os.Remove(filepath.Join(s.dir, storedName))
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id uint) (*Document, error) {
	d, err := s.lib.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrNotFound("document not found")
	}
	return d, nil
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]Document, int64, error) {
	return s.lib.List(ctx, q)
}

// Open はダウンロード用にファイルを開き、閲覧カウントを進める。
// 呼び出し側が Close する。
func (s *Service) Open(ctx context.Context, id uint) (*Document, *os.File, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(filepath.Join(s.dir, d.StoredName))
	if err != nil {
		return nil, nil, ErrNotFound("stored file is missing")
	}
	// カウント更新の失敗でダウンロードは止めない
	if err := s.lib.MarkViewed(ctx, id); err != nil {
		log.Printf("[WARN] documents: mark viewed %d: %v", id, err)
	} else {
		d.ViewCount++
	}
	return d, f, nil
}

func (s *Service) Deactivate(ctx context.Context, id uint) error {
	ok, err := s.lib.Deactivate(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound("document not found")
	}
	return nil
}
