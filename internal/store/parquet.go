package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"
)

// Compile-time interface check.
var _ ObservationStore = (*ParquetStore)(nil)

// ParquetStore implements ObservationStore using one Parquet file per month.
type ParquetStore struct {
	Dir string
}

// NewParquetStore creates a new ParquetStore rooted at dir.
func NewParquetStore(dir string) *ParquetStore {
	return &ParquetStore{Dir: dir}
}

// ObservationRecord is the Parquet schema of one archived observation.
type ObservationRecord struct {
	ItemID    int64   `parquet:"item_id" json:"item_id"`
	ItemName  string  `parquet:"item_name" json:"item_name"`
	Bucket    int64   `parquet:"bucket,timestamp(millisecond)" json:"bucket"` // Unix ms
	Label     string  `parquet:"label" json:"label"`
	Price     float64 `parquet:"price" json:"price"`
	HasPrice  bool    `parquet:"has_price" json:"has_price"`
	Volume    int64   `parquet:"volume" json:"volume"`
	HasVolume bool    `parquet:"has_volume" json:"has_volume"`
}

// BucketTime returns the observation's bucket as a time.
func (r ObservationRecord) BucketTime() time.Time {
	return time.UnixMilli(r.Bucket)
}

// WriteObservations merges obs into the monthly files at
// <Dir>/<YYYY-MM>.parquet, keeping the newest record per (item, bucket).
func (s *ParquetStore) WriteObservations(_ context.Context, obs []ObservationRecord) error {
	if len(obs) == 0 {
		return nil
	}

	groups := make(map[string][]ObservationRecord)
	for _, o := range obs {
		month := time.UnixMilli(o.Bucket).UTC().Format("2006-01")
		groups[month] = append(groups[month], o)
	}

	for month, records := range groups {
		path := s.monthPath(month)

		// A month file that exists but cannot be read is left alone rather
		// than replaced by this cycle's records.
		existing, err := readParquetFile[ObservationRecord](path)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("reading observations for %s: %w", month, err)
		}
		merged := mergeObservations(existing, records)

		if err := writeParquetFile(path, merged); err != nil {
			return fmt.Errorf("writing observations for %s: %w", month, err)
		}
	}
	return nil
}

// ReadObservations reads every monthly file overlapping [start, end]. Months
// without a file are skipped; an unreadable file is an error.
func (s *ParquetStore) ReadObservations(_ context.Context, start, end time.Time) ([]ObservationRecord, error) {
	var out []ObservationRecord
	first := time.Date(start.UTC().Year(), start.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)
	for m := first; !m.After(end); m = m.AddDate(0, 1, 0) {
		records, err := readParquetFile[ObservationRecord](s.monthPath(m.Format("2006-01")))
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			ts := r.BucketTime()
			if !ts.Before(start) && !ts.After(end) {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

// ListMonths returns the archived months (YYYY-MM), ascending.
func (s *ParquetStore) ListMonths(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var months []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".parquet" {
			continue
		}
		months = append(months, name[:len(name)-len(".parquet")])
	}
	sort.Strings(months)
	return months, nil
}

// ReadMonth returns every observation archived for month (YYYY-MM). A month
// without a file yields an error wrapping ErrNotFound.
func (s *ParquetStore) ReadMonth(_ context.Context, month string) ([]ObservationRecord, error) {
	if _, err := time.Parse("2006-01", month); err != nil {
		return nil, fmt.Errorf("invalid month %q: %w", month, err)
	}
	return readParquetFile[ObservationRecord](s.monthPath(month))
}

// monthPath returns the filesystem path of a monthly archive file.
// Layout: <Dir>/<YYYY-MM>.parquet
func (s *ParquetStore) monthPath(month string) string {
	return filepath.Join(s.Dir, month+".parquet")
}

// ---------------------------------------------------------------------------
// Parquet file helpers
// ---------------------------------------------------------------------------

// writeParquetFile replaces path through a temporary sibling, so a crash
// mid-write never leaves a torn file behind.
func writeParquetFile[T any](path string, records []T) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		return parquet.Write(w, records)
	})
}

// readParquetFile reads all rows of path. A missing file yields an error
// wrapping ErrNotFound.
func readParquetFile[T any](path string) ([]T, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return rows, nil
}

// mergeObservations deduplicates records by (item id, bucket), preferring
// incoming records over existing ones. Results are sorted by bucket, then id.
func mergeObservations(existing, incoming []ObservationRecord) []ObservationRecord {
	type key struct {
		id     int64
		bucket int64
	}
	seen := make(map[key]ObservationRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[key{r.ItemID, r.Bucket}] = r
	}
	for _, r := range incoming {
		seen[key{r.ItemID, r.Bucket}] = r
	}

	merged := make([]ObservationRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Bucket != merged[j].Bucket {
			return merged[i].Bucket < merged[j].Bucket
		}
		return merged[i].ItemID < merged[j].ItemID
	})
	return merged
}
