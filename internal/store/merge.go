package store

import (
	"github.com/icedo724/WoW-Auction/internal/domain"
)

// Merge upserts one bucket of observations into t. Every (id, value) whose id
// is in catalog sets t[name(id)][bucket] = value, creating the row if needed;
// ids not in the catalog are ignored. Other cells are never touched, and
// merging the same values into the same bucket again leaves t unchanged.
//
// Catalog names are unique (see Catalog.Add), so two items can never write
// into the same row.
func Merge(t *WideTable, values map[domain.ItemID]float64, bucket string, catalog *Catalog) error {
	if _, err := domain.ParseBucket(bucket, nil); err != nil {
		return err
	}

	// Walk the catalog rather than the map so new rows are created in
	// ascending id order.
	for _, id := range catalog.IDs() {
		v, ok := values[id]
		if !ok {
			continue
		}
		name, _ := catalog.Name(id)
		t.Set(name, bucket, v)
	}
	return nil
}
