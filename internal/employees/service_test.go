package employees

import (
	"context"
	"errors"
	"testing"
)

// fakeRegistry is an in-memory Registry for service tests.
type fakeRegistry struct {
	employees map[uint]*Employee
	areas     map[string]uint // lower-cased name → id
	nextID    uint
	insertErr error
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		employees: map[uint]*Employee{},
		areas:     map[string]uint{"ti": 1, "rh": 2},
		nextID:    1,
	}
}

func (f *fakeRegistry) GetByID(_ context.Context, id uint) (*Employee, error) {
	if e, ok := f.employees[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRegistry) GetByBadge(_ context.Context, badge string) (*Employee, error) {
	for _, e := range f.employees {
		if e.BadgeCode == badge {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRegistry) GetByRegistration(_ context.Context, number string) (*Employee, error) {
	for _, e := range f.employees {
		if e.RegistrationNumber == number {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRegistry) Insert(_ context.Context, e *Employee) (uint, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	id := f.nextID
	f.nextID++
	cp := *e
	cp.EmployeeID = id
	f.employees[id] = &cp
	return id, nil
}

func (f *fakeRegistry) Update(_ context.Context, e *Employee) error {
	if _, ok := f.employees[e.EmployeeID]; !ok {
		return ErrNotFound("employee not found")
	}
	cp := *e
	f.employees[e.EmployeeID] = &cp
	return nil
}

func (f *fakeRegistry) Deactivate(_ context.Context, id uint) (bool, error) {
	e, ok := f.employees[id]
	if !ok || !e.Active {
		return false, nil
	}
	e.Active = false
	return true, nil
}

func (f *fakeRegistry) List(_ context.Context, q ListQuery) ([]Employee, int64, error) {
	var out []Employee
	for _, e := range f.employees {
		if q.Active != nil && e.Active != *q.Active {
			continue
		}
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRegistry) AreaExists(_ context.Context, areaID uint) (bool, error) {
	for _, id := range f.areas {
		if id == areaID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRegistry) ActiveAreas(_ context.Context) (map[string]uint, error) {
	cp := make(map[string]uint, len(f.areas))
	for k, v := range f.areas {
		cp[k] = v
	}
	return cp, nil
}

func newTestService() (*Service, *fakeRegistry) {
	reg := newFakeRegistry()
	return &Service{reg: reg}, reg
}

func strptr(s string) *string { return &s }

func TestCreate_Succeeds(t *testing.T) {
	svc, _ := newTestService()

	e, err := svc.Create(context.Background(), CreateEmployeeRequest{
		Name:               "Maria Silva",
		RegistrationNumber: "1001",
		BadgeCode:          "B1",
		AreaID:             1,
		Email:              strptr("maria@example.com"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if e.EmployeeID == 0 || !e.Active {
		t.Fatalf("created employee not active with id: %+v", e)
	}
	if e.Email == nil || *e.Email != "maria@example.com" {
		t.Fatalf("email not stored: %+v", e.Email)
	}
}

func TestCreate_UnknownArea(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateEmployeeRequest{
		Name: "Maria", RegistrationNumber: "1001", BadgeCode: "B1", AreaID: 99,
	})
	var api *APIError
	if !errors.As(err, &api) || api.Code != CodeInvalidArgument {
		t.Fatalf("want INVALID_ARGUMENT, got %v", err)
	}
}

func TestCreate_DuplicateRegistrationAndBadge(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateEmployeeRequest{Name: "A", RegistrationNumber: "1001", BadgeCode: "B1", AreaID: 1}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := svc.Create(ctx, CreateEmployeeRequest{Name: "B", RegistrationNumber: "1001", BadgeCode: "B2", AreaID: 1})
	var api *APIError
	if !errors.As(err, &api) || api.Code != CodeConflict {
		t.Fatalf("duplicate registration: want CONFLICT, got %v", err)
	}

	_, err = svc.Create(ctx, CreateEmployeeRequest{Name: "C", RegistrationNumber: "1002", BadgeCode: "B1", AreaID: 1})
	if !errors.As(err, &api) || api.Code != CodeConflict {
		t.Fatalf("duplicate badge: want CONFLICT, got %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Get(context.Background(), 42)
	var api *APIError
	if !errors.As(err, &api) || api.Code != CodeNotFound {
		t.Fatalf("want NOT_FOUND, got %v", err)
	}
}

func TestPatch_PartialUpdate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	e, err := svc.Create(ctx, CreateEmployeeRequest{Name: "Maria", RegistrationNumber: "1001", BadgeCode: "B1", AreaID: 1})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := svc.Patch(ctx, e.EmployeeID, UpdateEmployeeRequest{Name: strptr("Maria Souza"), AreaID: uintptr2(2)})
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if got.Name != "Maria Souza" {
		t.Fatalf("name not updated: %q", got.Name)
	}
	if got.AreaID != 2 {
		t.Fatalf("area not updated: %d", got.AreaID)
	}
	if got.BadgeCode != "B1" {
		t.Fatalf("badge must be untouched: %q", got.BadgeCode)
	}
	if got.RegistrationNumber != "1001" {
		t.Fatalf("registration number must never change: %q", got.RegistrationNumber)
	}
}

func TestPatch_BadgeConflict(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateEmployeeRequest{Name: "A", RegistrationNumber: "1001", BadgeCode: "B1", AreaID: 1}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	b, err := svc.Create(ctx, CreateEmployeeRequest{Name: "B", RegistrationNumber: "1002", BadgeCode: "B2", AreaID: 1})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err = svc.Patch(ctx, b.EmployeeID, UpdateEmployeeRequest{BadgeCode: strptr("B1")})
	var api *APIError
	if !errors.As(err, &api) || api.Code != CodeConflict {
		t.Fatalf("want CONFLICT, got %v", err)
	}

	// 自分自身のバッジを再設定するのは衝突ではない
	if _, err := svc.Patch(ctx, b.EmployeeID, UpdateEmployeeRequest{BadgeCode: strptr("B2")}); err != nil {
		t.Fatalf("re-setting own badge: %v", err)
	}
}

func TestDeactivate_TwiceIsNotFound(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	e, err := svc.Create(ctx, CreateEmployeeRequest{Name: "A", RegistrationNumber: "1001", BadgeCode: "B1", AreaID: 1})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := svc.Deactivate(ctx, e.EmployeeID); err != nil {
		t.Fatalf("first deactivate: %v", err)
	}
	err = svc.Deactivate(ctx, e.EmployeeID)
	var api *APIError
	if !errors.As(err, &api) || api.Code != CodeNotFound {
		t.Fatalf("second deactivate: want NOT_FOUND, got %v", err)
	}
}

func TestToHTTPStatus_Employees(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrInvalid("x"), 400},
		{ErrNotFound("x"), 404},
		{ErrConflict("x"), 409},
		{ErrInternal("x"), 500},
		{errors.New("plain"), 500},
	}
	for _, c := range cases {
		if got := toHTTPStatus(c.err); got != c.want {
			t.Errorf("toHTTPStatus(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func uintptr2(v uint) *uint { return &v }

func TestList_ActiveFilter(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateEmployeeRequest{Name: "A", RegistrationNumber: "1", BadgeCode: "B1", AreaID: 1})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.Create(ctx, CreateEmployeeRequest{Name: "B", RegistrationNumber: "2", BadgeCode: "B2", AreaID: 1}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := svc.Deactivate(ctx, a.EmployeeID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	tr := true
	items, total, err := svc.List(ctx, ListQuery{Active: &tr})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].Name != "B" {
		t.Fatalf("want only B active, got %+v (total %d)", items, total)
	}
}
