// Package domain defines the core types shared by the collector and the
// dashboard: item identifiers, fetch snapshots, observation buckets and the
// two history modes.
package domain

import (
	"fmt"
	"strconv"
	"time"
)

// ItemID is the game's stable numeric item identifier.
type ItemID int64

// PlaceholderName is the display name used when an item's name cannot be
// resolved.
func PlaceholderName(id ItemID) string {
	return "ID_" + strconv.FormatInt(int64(id), 10)
}

// PriceScale converts raw API price units (copper) into gold.
const PriceScale = 10000

// Mode selects which history table is being read or rendered.
type Mode string

const (
	ModePrice  Mode = "price"
	ModeVolume Mode = "volume"
)

// ParseMode parses a user-supplied mode string. Empty means price.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModePrice:
		return ModePrice, nil
	case ModeVolume:
		return ModeVolume, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// Entry is the aggregated auction state of one item in a snapshot.
type Entry struct {
	MinUnitPrice int64 // floor price across all listings, raw units
	Quantity     int64 // total quantity across all listings
}

// Snapshot is the result of a single commodities fetch.
type Snapshot struct {
	TakenAt time.Time
	Entries map[ItemID]Entry
}

// NewSnapshot returns an empty snapshot taken at t.
func NewSnapshot(t time.Time) *Snapshot {
	return &Snapshot{TakenAt: t, Entries: make(map[ItemID]Entry)}
}

// Add folds one auction listing into the snapshot.
func (s *Snapshot) Add(id ItemID, unitPrice, quantity int64) {
	e, ok := s.Entries[id]
	if !ok || unitPrice < e.MinUnitPrice {
		e.MinUnitPrice = unitPrice
	}
	e.Quantity += quantity
	s.Entries[id] = e
}
