package employees

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ===== Error model (attendance/areas/documents と同型) =====

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

// ===== Service =====

// Registry はストア操作の抽象。テストでは in-memory 実装を差し込む。
type Registry interface {
	GetByID(ctx context.Context, id uint) (*Employee, error)
	GetByBadge(ctx context.Context, badgeCode string) (*Employee, error)
	GetByRegistration(ctx context.Context, number string) (*Employee, error)
	Insert(ctx context.Context, e *Employee) (uint, error)
	Update(ctx context.Context, e *Employee) error
	Deactivate(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context, q ListQuery) ([]Employee, int64, error)
	AreaExists(ctx context.Context, areaID uint) (bool, error)
	ActiveAreas(ctx context.Context) (map[string]uint, error)
}

type Service struct {
	reg Registry
	db  *sql.DB // CSVインポートのTx用。nilならTxなしで直列実行
}

func NewService(d *sql.DB) *Service {
	return &Service{reg: NewStore(d), db: d}
}

func (s *Service) Create(ctx context.Context, req CreateEmployeeRequest) (*Employee, error) {
	ok, err := s.reg.AreaExists(ctx, req.AreaID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalid(fmt.Sprintf("area %d does not exist", req.AreaID))
	}
	if dup, err := s.reg.GetByRegistration(ctx, req.RegistrationNumber); err != nil {
		return nil, err
	} else if dup != nil {
		return nil, ErrConflict(fmt.Sprintf("registration number %s already in use", req.RegistrationNumber))
	}
	if dup, err := s.reg.GetByBadge(ctx, req.BadgeCode); err != nil {
		return nil, err
	} else if dup != nil {
		return nil, ErrConflict(fmt.Sprintf("badge code %s already in use", req.BadgeCode))
	}

	e := &Employee{
		Name:               req.Name,
		RegistrationNumber: req.RegistrationNumber,
		BadgeCode:          req.BadgeCode,
		Email:              req.Email,
		Phone:              req.Phone,
		AreaID:             req.AreaID,
		Active:             true,
	}
	id, err := s.reg.Insert(ctx, e)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrConflict("registration number or badge code already in use")
		}
		return nil, err
	}
	return s.reg.GetByID(ctx, id)
}

func (s *Service) Get(ctx context.Context, id uint) (*Employee, error) {
	e, err := s.reg.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrNotFound("employee not found")
	}
	return e, nil
}

func (s *Service) GetByBadge(ctx context.Context, badgeCode string) (*Employee, error) {
	e, err := s.reg.GetByBadge(ctx, badgeCode)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrNotFound("employee not found")
	}
	return e, nil
}

// Patch: 送られてきたフィールドだけ更新する
func (s *Service) Patch(ctx context.Context, id uint, req UpdateEmployeeRequest) (*Employee, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, ErrInvalid("name must not be empty")
		}
		cur.Name = *req.Name
	}
	if req.BadgeCode != nil {
		if *req.BadgeCode == "" {
			return nil, ErrInvalid("badge_code must not be empty")
		}
		if dup, err := s.reg.GetByBadge(ctx, *req.BadgeCode); err != nil {
			return nil, err
		} else if dup != nil && dup.EmployeeID != id {
			return nil, ErrConflict(fmt.Sprintf("badge code %s already in use", *req.BadgeCode))
		}
		cur.BadgeCode = *req.BadgeCode
	}
	if req.Email != nil {
		cur.Email = req.Email
	}
	if req.Phone != nil {
		cur.Phone = req.Phone
	}
	if req.AreaID != nil {
		ok, err := s.reg.AreaExists(ctx, *req.AreaID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrInvalid(fmt.Sprintf("area %d does not exist", *req.AreaID))
		}
		cur.AreaID = *req.AreaID
	}
	if req.Active != nil {
		cur.Active = *req.Active
	}
	if err := s.reg.Update(ctx, cur); err != nil {
		return nil, err
	}
	return s.reg.GetByID(ctx, id)
}

// Deactivate: ソフト削除。既に無効なら NOT_FOUND
func (s *Service) Deactivate(ctx context.Context, id uint) error {
	ok, err := s.reg.Deactivate(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound("employee not found or already inactive")
	}
	return nil
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]Employee, int64, error) {
	return s.reg.List(ctx, q)
}
