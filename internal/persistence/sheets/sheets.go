// Package sheets persists ledger keys in a Google Sheets tab. Column A holds
// the key; the JSON value is split across columns B to Z so that no cell
// exceeds the Sheets per-cell limit.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"envelope/internal/cache"
	"envelope/internal/persistence"
)

const (
	cellLimit   = 45000
	valueCells  = 25 // B..Z
	lastColumn  = "Z"
	defaultName = "Ledger"
)

// ErrValueTooLarge is returned when a value does not fit in one row.
var ErrValueTooLarge = errors.New("value exceeds sheet row capacity")

type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON []byte
	CredentialsFile string
	RowCacheTTL     time.Duration
}

type Store struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
	rows          cache.Cache[int]
}

var _ persistence.Adapter = (*Store)(nil)

// New connects to the Sheets API with service account credentials.
func New(ctx context.Context, opts Options) (*Store, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, opts.SpreadsheetID, opts.SheetName, opts.RowCacheTTL), nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetName string, rowTTL time.Duration) *Store {
	if sheetName == "" {
		sheetName = defaultName
	}
	if rowTTL <= 0 {
		rowTTL = 10 * time.Minute
	}
	return &Store{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheet:         sheetName,
		rows:          cache.NewLRU[int](len(persistence.AllKeys())*2, rowTTL),
	}
}

func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	credentialsJSON := opts.CredentialsJSON
	if len(credentialsJSON) == 0 && opts.CredentialsFile != "" {
		raw, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = raw
	}
	if len(credentialsJSON) == 0 {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (s *Store) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if row, ok := s.rows.Get(key); ok {
		resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.rowRange(row)).Context(ctx).Do()
		if err != nil {
			return nil, false, fmt.Errorf("load %s: %w", key, err)
		}
		if len(resp.Values) > 0 && cellString(resp.Values[0], 0) == key {
			return []byte(joinCells(resp.Values[0][1:])), true, nil
		}
		// row moved under us; fall back to a full scan
		s.rows.Delete(key)
	}

	values, err := s.readAll(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", key, err)
	}
	for _, row := range values {
		if cellString(row, 0) == key {
			return []byte(joinCells(row[1:])), true, nil
		}
	}
	return nil, false, nil
}

func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	cells, err := splitCells(string(data), cellLimit)
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	row := make([]any, 0, valueCells+1)
	row = append(row, key)
	for i := 0; i < valueCells; i++ {
		if i < len(cells) {
			row = append(row, cells[i])
		} else {
			row = append(row, "")
		}
	}
	vr := &gsheet.ValueRange{Values: [][]any{row}}

	idx, found, err := s.rowOf(ctx, key)
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	if found {
		_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, s.rowRange(idx), vr).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			s.rows.Delete(key)
			return fmt.Errorf("save %s: %w", key, err)
		}
		return nil
	}

	resp, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.a1("A:"+lastColumn), vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	if resp.Updates != nil {
		if n, ok := rowFromRange(resp.Updates.UpdatedRange); ok {
			s.rows.Set(key, n)
		}
	}
	slog.InfoContext(ctx, "Ledger key appended to sheet", "key", key, "sheet", s.sheet)
	return nil
}

// Clear blanks the rows of the given keys in one batch request.
func (s *Store) Clear(ctx context.Context, keys []string) error {
	var ranges []string
	for _, key := range keys {
		idx, found, err := s.rowOf(ctx, key)
		if err != nil {
			return fmt.Errorf("clear %s: %w", key, err)
		}
		if found {
			ranges = append(ranges, s.rowRange(idx))
		}
	}
	if len(ranges) > 0 {
		_, err := s.svc.Spreadsheets.Values.BatchClear(s.spreadsheetID,
			&gsheet.BatchClearValuesRequest{Ranges: ranges}).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("clear keys: %w", err)
		}
	}
	// cleared rows stay in place but are empty; forget them all
	s.rows.Purge()
	return nil
}

// rowOf returns the 1-based sheet row holding key.
func (s *Store) rowOf(ctx context.Context, key string) (int, bool, error) {
	if row, ok := s.rows.Get(key); ok {
		return row, true, nil
	}
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.a1("A:A")).Context(ctx).Do()
	if err != nil {
		return 0, false, err
	}
	found := 0
	for i, row := range resp.Values {
		k := cellString(row, 0)
		if k == "" {
			continue
		}
		s.rows.Set(k, i+1)
		if k == key {
			found = i + 1
		}
	}
	return found, found > 0, nil
}

func (s *Store) readAll(ctx context.Context) ([][]any, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.a1("A:"+lastColumn)).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	for i, row := range resp.Values {
		if k := cellString(row, 0); k != "" {
			s.rows.Set(k, i+1)
		}
	}
	return resp.Values, nil
}

func (s *Store) a1(rng string) string {
	return "'" + strings.ReplaceAll(s.sheet, "'", "''") + "'!" + rng
}

func (s *Store) rowRange(row int) string {
	return s.a1(fmt.Sprintf("A%d:%s%d", row, lastColumn, row))
}
