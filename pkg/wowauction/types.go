package wowauction

import "time"

// Mode selects the price or the volume table.
type Mode string

const (
	ModePrice  Mode = "price"
	ModeVolume Mode = "volume"
)

// ViewResponse is the body of GET /api/view.
type ViewResponse struct {
	Title         string `json:"title"`
	DaysToRelease int    `json:"days_to_release"`
	View          View   `json:"view"`
}

// View is one rendered dashboard view.
type View struct {
	Mode        Mode          `json:"mode"`
	Missing     bool          `json:"missing"`
	NoSelection bool          `json:"no_selection"`
	Items       []string      `json:"items"`
	Selected    []string      `json:"selected"`
	Sort        string        `json:"sort"`
	Metrics     Metrics       `json:"metrics"`
	Latest      []RowMetric   `json:"latest"`
	Token       RowMetric     `json:"token"`
	Series      []Observation `json:"series"`
	Recent      RecentTable   `json:"recent"`
	Catalogued  int           `json:"catalogued"`
	LastRun     *Run          `json:"last_run,omitempty"`
}

// RowMetric holds the headline numbers of one item.
type RowMetric struct {
	Item        string  `json:"item"`
	Latest      float64 `json:"latest"`
	Previous    float64 `json:"previous"`
	Delta       float64 `json:"delta"`
	PctChange   float64 `json:"pct_change"`
	HasLatest   bool    `json:"has_latest"`
	HasPrevious bool    `json:"has_previous"`
}

// Metrics summarizes a table by its two most recent columns.
type Metrics struct {
	Rows           []RowMetric `json:"rows"`
	TopMover       *RowMetric  `json:"top_mover,omitempty"`
	LatestBucket   string      `json:"latest_bucket,omitempty"`
	PreviousBucket string      `json:"previous_bucket,omitempty"`
}

// Observation is one charted value.
type Observation struct {
	Item   string    `json:"item"`
	Bucket time.Time `json:"bucket"`
	Label  string    `json:"label"`
	Value  float64   `json:"value"`
}

// RecentTable is the tail of a table. A nil cell is missing.
type RecentTable struct {
	Columns []string    `json:"columns"`
	Rows    []RecentRow `json:"rows"`
}

// RecentRow is one item of a RecentTable; Cells align with Columns.
type RecentRow struct {
	Item  string     `json:"item"`
	Cells []*float64 `json:"cells"`
}

// ItemsResponse is the body of GET /api/items.
type ItemsResponse struct {
	Mode    Mode     `json:"mode"`
	Missing bool     `json:"missing"`
	Items   []string `json:"items"`
}

// Run is one collection cycle from the run ledger.
type Run struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Bucket     string    `json:"bucket"`
	Status     string    `json:"status"`
	Items      int       `json:"items"`
	NewNames   int       `json:"new_names"`
	Error      string    `json:"error,omitempty"`
}

// RunsResponse is the body of GET /api/runs.
type RunsResponse struct {
	Runs []Run `json:"runs"`
}

// ArchiveResponse is the body of GET /api/archive.
type ArchiveResponse struct {
	Months []string `json:"months"`
}

// ArchivedObservation is one archived (item, bucket) record.
type ArchivedObservation struct {
	ItemID    int64   `json:"item_id"`
	ItemName  string  `json:"item_name"`
	Bucket    int64   `json:"bucket"` // Unix ms
	Label     string  `json:"label"`
	Price     float64 `json:"price"`
	HasPrice  bool    `json:"has_price"`
	Volume    int64   `json:"volume"`
	HasVolume bool    `json:"has_volume"`
}

// ArchiveMonthResponse is the body of GET /api/archive/{month}.
type ArchiveMonthResponse struct {
	Month        string                `json:"month"`
	Observations []ArchivedObservation `json:"observations"`
}

type healthResponse struct {
	Status string `json:"status"`
}
