package employees

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

func newImportService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		mockDB.Close()
	})
	return &Service{reg: newFakeRegistry(), db: mockDB}, mock
}

const insertEmployeePattern = `(?s)INSERT INTO employees.+VALUES`

func TestImport_RejectsBadHeader(t *testing.T) {
	svc, _ := newImportService(t)

	_, err := svc.Import(context.Background(), strings.NewReader("nome,matricula,rfid,area\nA,1,B1,TI\n"))
	var api *APIError
	if !errors.As(err, &api) || api.Code != CodeInvalidArgument {
		t.Fatalf("want INVALID_ARGUMENT, got %v", err)
	}
}

func TestImport_RejectsEmptyFile(t *testing.T) {
	svc, _ := newImportService(t)

	_, err := svc.Import(context.Background(), strings.NewReader(""))
	var api *APIError
	if !errors.As(err, &api) || api.Code != CodeInvalidArgument {
		t.Fatalf("want INVALID_ARGUMENT, got %v", err)
	}
}

func TestImport_RejectsOversizedFile(t *testing.T) {
	svc, _ := newImportService(t)

	big := bytes.NewReader(bytes.Repeat([]byte{'a'}, MaxImportBytes+1))
	_, err := svc.Import(context.Background(), big)
	var api *APIError
	if !errors.As(err, &api) || api.Code != CodeInvalidArgument {
		t.Fatalf("want INVALID_ARGUMENT, got %v", err)
	}
}

func TestImport_MixedRows(t *testing.T) {
	svc, mock := newImportService(t)

	csv := strings.Join([]string{
		"matricula,nome,rfid,area,email,telefone",
		"1001,Maria Silva,B1,TI,maria@example.com,",
		"1002,Jose Souza,B2,Desconhecida,,", // unknown area
		"1003,,B3,TI,,",                     // missing name
		"1001,Ana Lima,B4,RH,,",             // duplicate matricula within file
		"1004,Ana Lima,B5,RH,,ramal 42",
	}, "\n")

	mock.ExpectBegin()
	mock.ExpectExec(insertEmployeePattern).
		WithArgs("Maria Silva", "1001", "B1", "maria@example.com", nil, uint(1)).
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectExec(insertEmployeePattern).
		WithArgs("Ana Lima", "1004", "B5", nil, "ramal 42", uint(2)).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectCommit()

	res, err := svc.Import(context.Background(), strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Processed != 5 {
		t.Fatalf("processed = %d, want 5", res.Processed)
	}
	if res.Succeeded != 2 {
		t.Fatalf("succeeded = %d, want 2: %+v", res.Succeeded, res.Errors)
	}
	if res.Failed != 3 {
		t.Fatalf("failed = %d, want 3: %+v", res.Failed, res.Errors)
	}
	wantSubstrings := []string{"line 3", "line 4", "line 5"}
	for i, want := range wantSubstrings {
		if !strings.Contains(res.Errors[i], want) {
			t.Errorf("errors[%d] = %q, want mention of %s", i, res.Errors[i], want)
		}
	}
}

func TestImport_DuplicateKeyInDBContinues(t *testing.T) {
	svc, mock := newImportService(t)

	csv := "matricula,nome,rfid,area\n1001,Maria,B1,TI\n1002,Jose,B2,TI\n"

	mock.ExpectBegin()
	mock.ExpectExec(insertEmployeePattern).
		WithArgs("Maria", "1001", "B1", nil, nil, uint(1)).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectExec(insertEmployeePattern).
		WithArgs("Jose", "1002", "B2", nil, nil, uint(1)).
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectCommit()

	res, err := svc.Import(context.Background(), strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Succeeded != 1 || res.Failed != 1 {
		t.Fatalf("succeeded/failed = %d/%d, want 1/1", res.Succeeded, res.Failed)
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "already registered") {
		t.Fatalf("errors = %+v", res.Errors)
	}
}

func TestImport_InfrastructureErrorRollsBack(t *testing.T) {
	svc, mock := newImportService(t)

	csv := "matricula,nome,rfid,area\n1001,Maria,B1,TI\n"

	mock.ExpectBegin()
	mock.ExpectExec(insertEmployeePattern).
		WithArgs("Maria", "1001", "B1", nil, nil, uint(1)).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	if _, err := svc.Import(context.Background(), strings.NewReader(csv)); err == nil {
		t.Fatal("want error, got nil")
	}
}

func TestImport_Latin1Fallback(t *testing.T) {
	svc, mock := newImportService(t)

	// "José" in Latin-1: 0xE9 is not valid UTF-8 on its own.
	raw := append([]byte("matricula,nome,rfid,area\n1001,Jos"), 0xE9)
	raw = append(raw, []byte(",B1,TI\n")...)

	mock.ExpectBegin()
	mock.ExpectExec(insertEmployeePattern).
		WithArgs("José", "1001", "B1", nil, nil, uint(1)).
		WillReturnResult(sqlmock.NewResult(13, 1))
	mock.ExpectCommit()

	res, err := svc.Import(context.Background(), bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Succeeded != 1 {
		t.Fatalf("succeeded = %d, want 1: %+v", res.Succeeded, res.Errors)
	}
}

func TestImport_UTF8BOMIsStripped(t *testing.T) {
	svc, mock := newImportService(t)

	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("matricula,nome,rfid,area\n1001,Maria,B1,TI\n")...)

	mock.ExpectBegin()
	mock.ExpectExec(insertEmployeePattern).
		WithArgs("Maria", "1001", "B1", nil, nil, uint(1)).
		WillReturnResult(sqlmock.NewResult(14, 1))
	mock.ExpectCommit()

	res, err := svc.Import(context.Background(), bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Succeeded != 1 {
		t.Fatalf("succeeded = %d, want 1: %+v", res.Succeeded, res.Errors)
	}
}

func TestCheckHeader(t *testing.T) {
	cases := []struct {
		header []string
		ok     bool
	}{
		{[]string{"matricula", "nome", "rfid", "area"}, true},
		{[]string{"MATRICULA", " Nome", "rfid", "area", "email", "telefone"}, true},
		{[]string{"matricula", "nome", "rfid"}, false},
		{[]string{"nome", "matricula", "rfid", "area"}, false},
	}
	for _, c := range cases {
		err := checkHeader(c.header)
		if c.ok && err != nil {
			t.Errorf("checkHeader(%v) = %v, want ok", c.header, err)
		}
		if !c.ok && err == nil {
			t.Errorf("checkHeader(%v) = nil, want error", c.header)
		}
	}
}
