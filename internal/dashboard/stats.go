package dashboard

import (
	"math"
	"sort"

	"github.com/icedo724/WoW-Auction/internal/store"
)

// RowMetric holds the headline numbers of one item.
type RowMetric struct {
	Item        string  `json:"item"`
	Latest      float64 `json:"latest"`
	Previous    float64 `json:"previous"`
	Delta       float64 `json:"delta"`
	PctChange   float64 `json:"pct_change"`
	HasLatest   bool    `json:"has_latest"`   // false when the newest column has no cell
	HasPrevious bool    `json:"has_previous"` // false when the previous column has no cell
}

// Metrics summarizes a wide table by its two most recent columns.
type Metrics struct {
	Rows           []RowMetric `json:"rows"` // sorted by item
	TopMover       *RowMetric  `json:"top_mover,omitempty"`
	LatestBucket   string      `json:"latest_bucket,omitempty"`
	PreviousBucket string      `json:"previous_bucket,omitempty"`
}

// PctChange returns (latest-previous)/previous*100, or 0 when previous is 0.
func PctChange(latest, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (latest - previous) / previous * 100
}

// DeriveMetrics computes per-item latest/previous values and changes. With
// fewer than two columns previous equals latest. A missing cell on either
// side yields a zero change. The top mover is the row with the largest
// absolute percent change, ties going to the earlier row.
func DeriveMetrics(t *store.WideTable) Metrics {
	var m Metrics
	cols := t.LastColumns(2)
	if len(cols) == 0 {
		for _, row := range t.Rows() {
			m.Rows = append(m.Rows, RowMetric{Item: row})
		}
		sortRows(m.Rows, SortByName)
		return m
	}

	// With a single column both sides read the same cell.
	latestCol := cols[len(cols)-1]
	prevCol := cols[0]
	m.LatestBucket, m.PreviousBucket = latestCol, prevCol

	top := -1
	for _, row := range t.Rows() {
		latest, okL := t.Get(row, latestCol)
		prev, okP := t.Get(row, prevCol)
		r := RowMetric{Item: row, Latest: latest, Previous: prev, HasLatest: okL, HasPrevious: okP}
		if okL && okP {
			r.Delta = r.Latest - r.Previous
			r.PctChange = PctChange(r.Latest, r.Previous)
		}
		m.Rows = append(m.Rows, r)
		if top < 0 || math.Abs(r.PctChange) > math.Abs(m.Rows[top].PctChange) {
			top = len(m.Rows) - 1
		}
	}

	if top >= 0 {
		mover := m.Rows[top]
		m.TopMover = &mover
	}
	sortRows(m.Rows, SortByName)
	return m
}

// Find returns the metric of one item.
func (m Metrics) Find(item string) (RowMetric, bool) {
	for _, r := range m.Rows {
		if r.Item == item {
			return r, true
		}
	}
	return RowMetric{}, false
}

// Token returns the metric of the token row, zero-valued when it is absent.
func Token(m Metrics, name string) RowMetric {
	r, ok := m.Find(name)
	if !ok {
		return RowMetric{Item: name}
	}
	return r
}

// SortMode defines the order of the latest-values table.
type SortMode int

const (
	SortByName   SortMode = iota // item name (default)
	SortByLatest                 // latest value (desc)
	SortByChange                 // percent change (desc)
	SortModeCount
)

// ParseSort maps a query value to a SortMode. Unknown values sort by name.
func ParseSort(s string) SortMode {
	switch s {
	case "latest":
		return SortByLatest
	case "change":
		return SortByChange
	default:
		return SortByName
	}
}

// String returns the query value of the mode.
func (s SortMode) String() string {
	switch s {
	case SortByLatest:
		return "latest"
	case SortByChange:
		return "change"
	default:
		return "name"
	}
}

// Sorted returns a copy of the rows in the given order.
func (m Metrics) Sorted(mode SortMode) []RowMetric {
	rows := append([]RowMetric(nil), m.Rows...)
	sortRows(rows, mode)
	return rows
}

func sortRows(rows []RowMetric, mode SortMode) {
	sort.SliceStable(rows, func(i, j int) bool {
		switch mode {
		case SortByLatest:
			if rows[i].Latest != rows[j].Latest {
				return rows[i].Latest > rows[j].Latest
			}
		case SortByChange:
			if rows[i].PctChange != rows[j].PctChange {
				return rows[i].PctChange > rows[j].PctChange
			}
		}
		return rows[i].Item < rows[j].Item
	})
}
