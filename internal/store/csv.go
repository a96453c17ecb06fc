package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/icedo724/WoW-Auction/internal/domain"
)

// Compile-time interface checks.
var _ TableStore = (*CSVTableStore)(nil)
var _ CatalogStore = (*CSVCatalogStore)(nil)

// rowKeyHeader is the header of the first column of a history table.
const rowKeyHeader = "item_name"

// CSVTableStore persists a WideTable as a UTF-8 (with BOM) CSV file:
//
//	item_name,2026-03-02 09:00,2026-03-02 10:00
//	창연,12.5,12.9
//
// An empty cell is an absent observation. Save rewrites the whole file; two
// concurrent writers race and the last rename wins.
type CSVTableStore struct {
	Path string
}

// NewCSVTableStore creates a store backed by the file at path.
func NewCSVTableStore(path string) *CSVTableStore {
	return &CSVTableStore{Path: path}
}

// Load reads the table. A missing file yields an error wrapping ErrNotFound.
func (s *CSVTableStore) Load(_ context.Context) (*WideTable, error) {
	f, err := openForRead(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readTable(f, s.Path)
}

// Save overwrites the file with t.
func (s *CSVTableStore) Save(_ context.Context, t *WideTable) error {
	return writeFileAtomic(s.Path, func(w io.Writer) error {
		return WriteTable(w, t)
	})
}

// WriteTable encodes t as BOM-prefixed CSV.
func WriteTable(w io.Writer, t *WideTable) error {
	return writeBOMCSV(w, func(cw *csv.Writer) error {
		cols := t.Columns()
		header := append([]string{rowKeyHeader}, cols...)
		if err := cw.Write(header); err != nil {
			return err
		}
		for _, row := range t.Rows() {
			record := make([]string, 1, len(cols)+1)
			record[0] = row
			for _, col := range cols {
				if v, ok := t.Get(row, col); ok {
					record = append(record, formatValue(v))
				} else {
					record = append(record, "")
				}
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReadTable decodes a table written by WriteTable. A leading BOM is optional.
func ReadTable(r io.Reader) (*WideTable, error) {
	return readTable(r, "<input>")
}

func readTable(r io.Reader, path string) (*WideTable, error) {
	cr := csv.NewReader(unicode.UTF8BOM.NewDecoder().Reader(r))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return NewWideTable(), nil
	}
	if err != nil {
		return nil, &FormatError{Path: path, Line: 1, Err: err}
	}

	cols := header[1:]
	for _, col := range cols {
		if !domain.ValidBucket(col) {
			return nil, &FormatError{Path: path, Line: 1, Err: fmt.Errorf("column %q is not a bucket label", col)}
		}
	}

	t := NewWideTable()
	for _, col := range cols {
		t.AddColumn(col)
	}

	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, &FormatError{Path: path, Line: line, Err: err}
		}
		if len(record) == 0 || record[0] == "" {
			continue
		}
		row := record[0]
		if t.HasRow(row) {
			return nil, &FormatError{Path: path, Line: line, Err: fmt.Errorf("duplicate row %q", row)}
		}
		t.AddRow(row)
		for i, cell := range record[1:] {
			if cell == "" || i >= len(cols) {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, &FormatError{Path: path, Line: line, Err: fmt.Errorf("column %q: %w", cols[i], err)}
			}
			t.Set(row, cols[i], v)
		}
	}
	return t, nil
}

// formatValue renders the shortest representation that parses back to v.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CSVCatalogStore persists the item catalog as item_id,item_name rows in
// ascending id order.
type CSVCatalogStore struct {
	Path string
}

// NewCSVCatalogStore creates a catalog store backed by the file at path.
func NewCSVCatalogStore(path string) *CSVCatalogStore {
	return &CSVCatalogStore{Path: path}
}

// Load reads the catalog. A missing file yields an error wrapping ErrNotFound;
// a row without a name fails with *FormatError and a file in which two ids
// share a name fails with *NameCollisionError.
func (s *CSVCatalogStore) Load(_ context.Context) (*Catalog, error) {
	f, err := openForRead(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(unicode.UTF8BOM.NewDecoder().Reader(f))
	records, err := cr.ReadAll()
	if err != nil {
		return nil, &FormatError{Path: s.Path, Err: err}
	}

	c := NewCatalog()
	for i, rec := range records {
		if i == 0 {
			continue // header
		}
		if len(rec) < 2 {
			return nil, &FormatError{Path: s.Path, Line: i + 1, Err: errors.New("expected item_id,item_name")}
		}
		id, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return nil, &FormatError{Path: s.Path, Line: i + 1, Err: err}
		}
		if err := c.Add(domain.ItemID(id), rec[1]); err != nil {
			if errors.Is(err, ErrEmptyName) {
				return nil, &FormatError{Path: s.Path, Line: i + 1, Err: err}
			}
			return nil, err
		}
	}
	return c, nil
}

// Save overwrites the file with c.
func (s *CSVCatalogStore) Save(_ context.Context, c *Catalog) error {
	return writeFileAtomic(s.Path, func(w io.Writer) error {
		return writeBOMCSV(w, func(cw *csv.Writer) error {
			if err := cw.Write([]string{"item_id", "item_name"}); err != nil {
				return err
			}
			for _, id := range c.IDs() {
				name, _ := c.Name(id)
				if err := cw.Write([]string{strconv.FormatInt(int64(id), 10), name}); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

// ---------------------------------------------------------------------------
// File helpers
// ---------------------------------------------------------------------------

func openForRead(path string) (*os.File, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return f, err
}

// writeBOMCSV runs fn against a CSV writer whose output is UTF-8 with a
// leading byte order mark.
func writeBOMCSV(w io.Writer, fn func(*csv.Writer) error) error {
	enc := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	cw := csv.NewWriter(enc)
	if err := fn(cw); err != nil {
		return err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return enc.Close()
}

// writeFileAtomic writes to a temporary sibling and renames it over path.
func writeFileAtomic(path string, fn func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := fn(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
