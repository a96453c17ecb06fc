// Package store holds the persisted state of the market collector: the item
// catalog, the price and volume wide tables, the long-form observation
// archive and the run ledger.
package store

import (
	"context"
	"time"
)

// TableStore loads and saves a whole wide table. There is no locking: Save
// overwrites the previous content and the last writer wins.
type TableStore interface {
	// Load returns the persisted table, or an error wrapping ErrNotFound if
	// nothing has been saved yet.
	Load(ctx context.Context) (*WideTable, error)

	// Save replaces the persisted table with t.
	Save(ctx context.Context, t *WideTable) error
}

// CatalogStore loads and saves the item catalog.
type CatalogStore interface {
	Load(ctx context.Context) (*Catalog, error)
	Save(ctx context.Context, c *Catalog) error
}

// ObservationStore archives long-form observations.
type ObservationStore interface {
	// WriteObservations upserts observations keyed by (item id, bucket).
	WriteObservations(ctx context.Context, obs []ObservationRecord) error

	// ReadObservations returns observations with buckets within [start, end].
	ReadObservations(ctx context.Context, start, end time.Time) ([]ObservationRecord, error)

	// ListMonths returns the archived months (YYYY-MM), ascending.
	ListMonths(ctx context.Context) ([]string, error)

	// ReadMonth returns every observation of one month, or an error wrapping
	// ErrNotFound if that month has no archive.
	ReadMonth(ctx context.Context, month string) ([]ObservationRecord, error)
}

// RunStore records the outcome of collection cycles.
type RunStore interface {
	// RecordRun inserts a finished run.
	RecordRun(ctx context.Context, run Run) error

	// ListRuns returns the most recent runs, newest first, up to limit.
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// LastSuccess returns the newest successful run, or nil if there is none.
	LastSuccess(ctx context.Context) (*Run, error)
}
