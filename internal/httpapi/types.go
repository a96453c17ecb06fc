// Package httpapi serves the market dashboard: an HTML page rendered from the
// wide tables plus the same view as JSON.
package httpapi

import (
	"github.com/icedo724/WoW-Auction/internal/dashboard"
	"github.com/icedo724/WoW-Auction/internal/domain"
	"github.com/icedo724/WoW-Auction/internal/store"
)

// ViewResponse is the JSON body of /api/view.
type ViewResponse struct {
	Title         string         `json:"title"`
	DaysToRelease int            `json:"days_to_release"`
	View          dashboard.View `json:"view"`
}

// ItemsResponse is the JSON body of /api/items.
type ItemsResponse struct {
	Mode    domain.Mode `json:"mode"`
	Missing bool        `json:"missing"`
	Items   []string    `json:"items"`
}

// RunsResponse is the JSON body of /api/runs.
type RunsResponse struct {
	Runs []store.Run `json:"runs"`
}

// ArchiveResponse is the JSON body of /api/archive.
type ArchiveResponse struct {
	Months []string `json:"months"`
}

// ArchiveMonthResponse is the JSON body of /api/archive/{month}.
type ArchiveMonthResponse struct {
	Month        string                    `json:"month"`
	Observations []store.ObservationRecord `json:"observations"`
}

// HealthResponse is the JSON body of /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// pageData feeds the HTML template.
type pageData struct {
	Title         string
	DaysToRelease int
	View          dashboard.View
	Chart         dashboard.Chart
	Modes         []domain.Mode
	Sorts         []string
	selected      map[string]bool
}

func newPageData(title string, days int, v dashboard.View) pageData {
	p := pageData{
		Title:         title,
		DaysToRelease: days,
		View:          v,
		Modes:         []domain.Mode{domain.ModePrice, domain.ModeVolume},
		selected:      make(map[string]bool, len(v.Selected)),
	}
	for m := dashboard.SortByName; m < dashboard.SortModeCount; m++ {
		p.Sorts = append(p.Sorts, m.String())
	}
	for _, s := range v.Selected {
		p.selected[s] = true
	}
	p.Chart = dashboard.Plot(v.Series, 960, 420, p.Value)
	return p
}

// Value formats a number for the current mode.
func (p pageData) Value(v float64) string {
	return dashboard.FormatValue(p.View.Mode, v)
}

// Cell formats a recent-table cell; missing cells render as "-".
func (p pageData) Cell(v *float64) string {
	if v == nil {
		return "-"
	}
	return p.Value(*v)
}

// IsSelected reports whether item is part of the chart selection.
func (p pageData) IsSelected(item string) bool {
	return p.selected[item]
}

// ModeLabel returns the heading of a mode.
func (p pageData) ModeLabel(m domain.Mode) string {
	if m == domain.ModeVolume {
		return "거래량"
	}
	return "가격 (Gold)"
}
