package dashboard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/icedo724/WoW-Auction/internal/domain"
	"github.com/icedo724/WoW-Auction/internal/store"
)

// MissingDataError reports that the table of a mode has not been written
// yet. LoadView turns it into View.Missing.
type MissingDataError struct {
	Mode domain.Mode
	Err  error
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("no %s data yet: %v", e.Mode, e.Err)
}

func (e *MissingDataError) Unwrap() error { return e.Err }

// Source is where the dashboard reads from. Catalog, Runs and Archive are
// optional.
type Source struct {
	Prices  store.TableStore
	Volumes store.TableStore
	Catalog store.CatalogStore
	Runs    store.RunStore
	Archive store.ObservationStore
}

// Table returns the table store of a mode.
func (s Source) Table(mode domain.Mode) store.TableStore {
	if mode == domain.ModeVolume {
		return s.Volumes
	}
	return s.Prices
}

// ReadTable loads the table of a mode. A table that does not exist yet is
// reported as *MissingDataError.
func ReadTable(ctx context.Context, src Source, mode domain.Mode) (*store.WideTable, error) {
	t, err := src.Table(mode).Load(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &MissingDataError{Mode: mode, Err: err}
	}
	return t, err
}

// ViewOptions tunes LoadView.
type ViewOptions struct {
	DefaultSelection int    // items selected when the request names none
	RecentColumns    int    // columns of the recent-values table
	TokenItem        string // display name of the token row
	Sort             SortMode
}

// RecentTable is the tail of a wide table.
type RecentTable struct {
	Columns []string    `json:"columns"`
	Rows    []RecentRow `json:"rows"`
}

// RecentRow is one item of a RecentTable. Cells align with Columns; nil
// marks a missing cell.
type RecentRow struct {
	Item  string     `json:"item"`
	Cells []*float64 `json:"cells"`
}

// View is everything one dashboard render needs.
type View struct {
	Mode        domain.Mode `json:"mode"`
	Missing     bool        `json:"missing"`      // no table written yet
	NoSelection bool        `json:"no_selection"` // nothing to chart
	Items       []string    `json:"items"`        // all item names, sorted
	Selected    []string    `json:"selected"`
	Sort        string      `json:"sort"`
	Metrics     Metrics     `json:"metrics"`
	Latest      []RowMetric `json:"latest"` // Metrics.Rows in Sort order
	Token       RowMetric   `json:"token"`
	Series      LongTable   `json:"series"`
	Recent      RecentTable `json:"recent"`
	Catalogued  int         `json:"catalogued"`
	LastRun     *store.Run  `json:"last_run,omitempty"`
}

// LoadView reads the table of mode and builds the view for selection. A nil
// selection picks the first opts.DefaultSelection items; a non-nil empty one
// (or one naming no known item) yields NoSelection. Every call re-reads the
// stores. A table that does not exist yet yields Missing instead of an error.
func LoadView(ctx context.Context, src Source, mode domain.Mode, selection []string, opts ViewOptions) (View, error) {
	v := View{Mode: mode, Sort: opts.Sort.String()}

	var (
		table   *store.WideTable
		catalog *store.Catalog
		lastRun *store.Run
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		table, err = ReadTable(gctx, src, mode)
		return err
	})
	if src.Catalog != nil {
		// The catalog and the ledger only feed counters; their errors are
		// not fatal to the view.
		g.Go(func() error {
			if c, err := src.Catalog.Load(gctx); err == nil {
				catalog = c
			}
			return nil
		})
	}
	if src.Runs != nil {
		g.Go(func() error {
			if r, err := src.Runs.LastSuccess(gctx); err == nil {
				lastRun = r
			}
			return nil
		})
	}

	err := g.Wait()
	var missing *MissingDataError
	switch {
	case errors.As(err, &missing):
		v.Missing = true
		v.NoSelection = true
		return v, nil
	case err != nil:
		return v, err
	}

	if catalog != nil {
		v.Catalogued = catalog.Len()
	}
	v.LastRun = lastRun

	long := ToLong(table)
	v.Items = append([]string(nil), table.Rows()...)
	sort.Strings(v.Items)
	v.Selected = selectItems(v.Items, selection, opts.DefaultSelection)
	v.NoSelection = len(v.Selected) == 0
	v.Series = long.Filter(v.Selected)

	v.Metrics = DeriveMetrics(table)
	v.Latest = v.Metrics.Sorted(opts.Sort)
	if opts.TokenItem != "" {
		v.Token = Token(v.Metrics, opts.TokenItem)
	}
	v.Recent = recentTable(table, opts.RecentColumns)
	return v, nil
}

// selectItems resolves the requested selection against the known items.
func selectItems(items, selection []string, defaultN int) []string {
	if selection == nil {
		n := defaultN
		if n > len(items) {
			n = len(items)
		}
		if n < 0 {
			n = 0
		}
		return append([]string{}, items[:n]...)
	}

	known := make(map[string]bool, len(items))
	for _, it := range items {
		known[it] = true
	}
	out := []string{}
	seen := make(map[string]bool)
	for _, s := range selection {
		if known[s] && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func recentTable(t *store.WideTable, n int) RecentTable {
	rt := RecentTable{Columns: t.LastColumns(n)}
	for _, row := range t.Rows() {
		r := RecentRow{Item: row, Cells: make([]*float64, len(rt.Columns))}
		for i, c := range rt.Columns {
			if v, ok := t.Get(row, c); ok {
				r.Cells[i] = &v
			}
		}
		rt.Rows = append(rt.Rows, r)
	}
	return rt
}

// DaysUntil returns the whole days from now until release, rounded down
// (negative once release has passed).
func DaysUntil(release, now time.Time) int {
	return int(math.Floor(release.Sub(now).Hours() / 24))
}
