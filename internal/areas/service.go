package areas

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	mysql "github.com/go-sql-driver/mysql"
)

// ===== Error model (attendance/employees/documents と同型) =====

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

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return false
}

func parseBoolish(s string) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	return s == "1" || s == "true" || s == "yes" || s == "all"
}

// ===== Service =====

type Service struct {
	store *Store
}

func NewService(db *sql.DB) *Service { return &Service{store: NewStore(db)} }

func (s *Service) List(ctx context.Context, all string) ([]Area, error) {
	return s.store.List(ctx, parseBoolish(all))
}

func (s *Service) Get(ctx context.Context, id uint) (*Area, error) {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound("area not found")
		}
		return nil, ErrInternal("failed to get area")
	}
	return a, nil
}

func (s *Service) Create(ctx context.Context, req CreateAreaRequest) (*Area, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalid("name is required")
	}
	id, err := s.store.Create(ctx, name, req.Description)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrConflict("area name already exists")
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Patch(ctx context.Context, id uint, req UpdateAreaRequest) (*Area, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrInvalid("name must not be empty")
		}
		cur.Name = name
	}
	if req.Description != nil {
		cur.Description = req.Description
	}
	if req.Active != nil {
		cur.Active = *req.Active
	}
	if err := s.store.Update(ctx, cur); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrConflict("area name already exists")
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound("area not found")
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

// Deactivate: 有効な従業員が残っているエリアは止める
func (s *Service) Deactivate(ctx context.Context, id uint) error {
	n, err := s.store.ActiveEmployeeCount(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict(fmt.Sprintf("area still has %d active employees", n))
	}
	ok, err := s.store.Deactivate(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound("area not found or already inactive")
	}
	return nil
}
