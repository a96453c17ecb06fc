// Package dashboard turns the persisted wide tables into what the render
// surfaces show: long-form series, per-item metrics and the view model shared
// by the web page and the console client.
package dashboard

import (
	"sort"
	"time"

	"github.com/icedo724/WoW-Auction/internal/domain"
	"github.com/icedo724/WoW-Auction/internal/store"
)

// Observation is one non-missing cell of a wide table.
type Observation struct {
	Item   string    `json:"item"`
	Bucket time.Time `json:"bucket"`
	Label  string    `json:"label"`
	Value  float64   `json:"value"`
}

// LongTable is a wide table unpivoted to one observation per cell, ordered by
// item (table row order) then bucket.
type LongTable []Observation

// ToLong unpivots t. Missing cells produce no observation. Bucket times are
// the label's wall clock read as UTC.
func ToLong(t *store.WideTable) LongTable {
	cols := t.Columns()
	times := make([]time.Time, len(cols))
	for i, c := range cols {
		// Columns of a loaded table are validated labels.
		times[i], _ = domain.ParseBucket(c, nil)
	}

	var out LongTable
	for _, row := range t.Rows() {
		for i, c := range cols {
			v, ok := t.Get(row, c)
			if !ok {
				continue
			}
			out = append(out, Observation{Item: row, Bucket: times[i], Label: c, Value: v})
		}
	}
	return out
}

// Pivot rebuilds a wide table from l. Rows appear in first-seen order.
func Pivot(l LongTable) *store.WideTable {
	t := store.NewWideTable()
	for _, o := range l {
		t.Set(o.Item, o.Label, o.Value)
	}
	return t
}

// Filter keeps the observations of the given items, preserving order.
func (l LongTable) Filter(items []string) LongTable {
	keep := make(map[string]bool, len(items))
	for _, it := range items {
		keep[it] = true
	}
	var out LongTable
	for _, o := range l {
		if keep[o.Item] {
			out = append(out, o)
		}
	}
	return out
}

// Items returns the distinct item names in l, sorted.
func (l LongTable) Items() []string {
	seen := make(map[string]bool)
	var items []string
	for _, o := range l {
		if !seen[o.Item] {
			seen[o.Item] = true
			items = append(items, o.Item)
		}
	}
	sort.Strings(items)
	return items
}

// Values returns the observed values of one item in bucket order.
func (l LongTable) Values(item string) []float64 {
	var vs []float64
	for _, o := range l {
		if o.Item == item {
			vs = append(vs, o.Value)
		}
	}
	return vs
}
