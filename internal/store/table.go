package store

import (
	"fmt"
	"sort"
	"strings"

	"github.com/icedo724/WoW-Auction/internal/domain"
)

// WideTable is a sparse row-per-item, column-per-bucket table. Row keys keep
// their insertion order; column keys are kept sorted ascending. A cell is
// either present with a value or absent.
type WideTable struct {
	rows   []string
	rowIdx map[string]int
	cols   []string
	colSet map[string]struct{}
	cells  map[cellKey]float64
}

type cellKey struct {
	row, col string
}

// NewWideTable returns an empty table.
func NewWideTable() *WideTable {
	return &WideTable{
		rowIdx: make(map[string]int),
		colSet: make(map[string]struct{}),
		cells:  make(map[cellKey]float64),
	}
}

// Rows returns the row keys in insertion order.
func (t *WideTable) Rows() []string {
	return append([]string(nil), t.rows...)
}

// Columns returns the column keys in ascending order.
func (t *WideTable) Columns() []string {
	return append([]string(nil), t.cols...)
}

// HasRow reports whether row exists.
func (t *WideTable) HasRow(row string) bool {
	_, ok := t.rowIdx[row]
	return ok
}

// Get returns the cell value and whether it is present.
func (t *WideTable) Get(row, col string) (float64, bool) {
	v, ok := t.cells[cellKey{row, col}]
	return v, ok
}

// Len returns the number of present cells.
func (t *WideTable) Len() int {
	return len(t.cells)
}

// AddRow appends an empty row if it does not exist yet.
func (t *WideTable) AddRow(row string) {
	if _, ok := t.rowIdx[row]; ok {
		return
	}
	t.rowIdx[row] = len(t.rows)
	t.rows = append(t.rows, row)
}

// AddColumn inserts a column key, keeping columns sorted. Existing columns
// are never removed.
func (t *WideTable) AddColumn(col string) {
	if _, ok := t.colSet[col]; ok {
		return
	}
	t.colSet[col] = struct{}{}
	i := sort.SearchStrings(t.cols, col)
	t.cols = append(t.cols, "")
	copy(t.cols[i+1:], t.cols[i:])
	t.cols[i] = col
}

// Set writes a cell, creating its row and column when needed.
func (t *WideTable) Set(row, col string, v float64) {
	t.AddRow(row)
	t.AddColumn(col)
	t.cells[cellKey{row, col}] = v
}

// LastColumns returns up to n of the most recent column keys, oldest first.
func (t *WideTable) LastColumns(n int) []string {
	if n <= 0 {
		return nil
	}
	if n > len(t.cols) {
		n = len(t.cols)
	}
	return append([]string(nil), t.cols[len(t.cols)-n:]...)
}

// Catalog maps item ids to display names. Names are unique: two ids never
// share a name, so the name can serve as a history row key.
type Catalog struct {
	names map[domain.ItemID]string
	owner map[string]domain.ItemID
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		names: make(map[domain.ItemID]string),
		owner: make(map[string]domain.ItemID),
	}
}

// Name returns the display name of id.
func (c *Catalog) Name(id domain.ItemID) (string, bool) {
	n, ok := c.names[id]
	return n, ok
}

// Has reports whether id is catalogued.
func (c *Catalog) Has(id domain.ItemID) bool {
	_, ok := c.names[id]
	return ok
}

// Len returns the number of catalogued items.
func (c *Catalog) Len() int {
	return len(c.names)
}

// Add records id under name. Re-adding the same pair is a no-op. A blank
// name fails with ErrEmptyName. Adding a name already owned by a different id
// fails with *NameCollisionError, as does renaming an existing id.
func (c *Catalog) Add(id domain.ItemID, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("item %d: %w", id, ErrEmptyName)
	}
	if cur, ok := c.names[id]; ok {
		if cur == name {
			return nil
		}
		return &NameCollisionError{Name: name, IDs: []domain.ItemID{id}, Existing: cur}
	}
	if other, ok := c.owner[name]; ok {
		return &NameCollisionError{Name: name, IDs: []domain.ItemID{other, id}}
	}
	c.names[id] = name
	c.owner[name] = id
	return nil
}

// IDs returns all catalogued ids in ascending order.
func (c *Catalog) IDs() []domain.ItemID {
	ids := make([]domain.ItemID, 0, len(c.names))
	for id := range c.names {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
