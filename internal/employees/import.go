package employees

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/go-sql-driver/mysql"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"timeclock-backend/internal/platform/db"
)

// CSVヘッダ（必須4列 + 任意2列）。人事システムの出力に合わせてポルトガル語のまま。
var importHeader = []string{"matricula", "nome", "rfid", "area"}
var importHeaderOptional = []string{"email", "telefone"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Import はCSVを読み、行単位で従業員を登録する。行の失敗（重複・不正値）は
// 記録して次の行へ進み、DB障害など行に帰せないエラーだけが全体を巻き戻す。
func (s *Service) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxImportBytes+1))
	if err != nil {
		return nil, err
	}
	if len(raw) > MaxImportBytes {
		return nil, ErrInvalid("import file exceeds 5MB limit")
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(raw) {
		// UTF-8でなければ Latin-1 とみなして変換（人事システムのレガシー出力）
		decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(raw), charmap.ISO8859_1.NewDecoder()))
		if err != nil {
			return nil, ErrInvalid("file is neither valid UTF-8 nor Latin-1")
		}
		raw = decoded
	}

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrInvalid("empty file")
	}
	if err != nil {
		return nil, ErrInvalid("malformed CSV: " + err.Error())
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}
	hasExtras := len(header) >= len(importHeader)+len(importHeaderOptional)

	areas, err := s.reg.ActiveAreas(ctx)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	var rows []importRow
	seenReg := make(map[string]int)   // matricula → 行番号
	seenBadge := make(map[string]int) // rfid → 行番号

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, ErrInvalid(fmt.Sprintf("malformed CSV at line %d: %v", line, err))
		}
		result.Processed++

		row, rowErr := parseImportRow(line, rec, areas, hasExtras)
		if rowErr == "" {
			if prev, dup := seenReg[row.RegistrationNumber]; dup {
				rowErr = fmt.Sprintf("registration number %s duplicates line %d", row.RegistrationNumber, prev)
			} else if prev, dup := seenBadge[row.BadgeCode]; dup {
				rowErr = fmt.Sprintf("badge code %s duplicates line %d", row.BadgeCode, prev)
			}
		}
		if rowErr != "" {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %s", line, rowErr))
			continue
		}
		seenReg[row.RegistrationNumber] = line
		seenBadge[row.BadgeCode] = line
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return result, nil
	}

	err = db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		for _, row := range rows {
			if err := insertImportRow(ctx, tx, row); err != nil {
				// 重複キーは行のエラーとして記録して続行（InnoDBはTx全体を壊さない）
				if isDuplicateKey(err) {
					result.Failed++
					result.Errors = append(result.Errors, fmt.Sprintf("line %d: registration number or badge code already registered", row.line))
					continue
				}
				return err
			}
			result.Succeeded++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func checkHeader(header []string) error {
	if len(header) < len(importHeader) {
		return ErrInvalid(fmt.Sprintf("header must start with %s", strings.Join(importHeader, ",")))
	}
	for i, want := range importHeader {
		got := strings.ToLower(strings.TrimSpace(header[i]))
		if got != want {
			return ErrInvalid(fmt.Sprintf("unexpected column %q at position %d (want %q)", header[i], i+1, want))
		}
	}
	return nil
}

// parseImportRow は1行を検証して登録候補を返す。エラー文字列が空なら有効。
func parseImportRow(line int, rec []string, areas map[string]uint, hasExtras bool) (importRow, string) {
	row := importRow{line: line}
	if len(rec) < len(importHeader) {
		return row, "too few columns"
	}
	row.RegistrationNumber = strings.TrimSpace(rec[0])
	row.Name = strings.TrimSpace(rec[1])
	row.BadgeCode = strings.TrimSpace(rec[2])
	areaName := strings.TrimSpace(rec[3])

	switch {
	case row.RegistrationNumber == "":
		return row, "matricula is empty"
	case row.Name == "":
		return row, "nome is empty"
	case row.BadgeCode == "":
		return row, "rfid is empty"
	case areaName == "":
		return row, "area is empty"
	}
	areaID, ok := areas[strings.ToLower(areaName)]
	if !ok {
		return row, fmt.Sprintf("unknown or inactive area %q", areaName)
	}
	row.AreaID = areaID

	if hasExtras && len(rec) > 4 {
		if v := strings.TrimSpace(rec[4]); v != "" {
			row.Email = &v
		}
	}
	if hasExtras && len(rec) > 5 {
		if v := strings.TrimSpace(rec[5]); v != "" {
			row.Phone = &v
		}
	}
	return row, ""
}

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return false
}
