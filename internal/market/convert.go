package market

import (
	"github.com/shopspring/decimal"

	"github.com/icedo724/WoW-Auction/internal/domain"
)

// ScalePrice converts a raw API price (copper) into gold.
func ScalePrice(raw int64) float64 {
	return decimal.New(raw, 0).Div(decimal.NewFromInt(domain.PriceScale)).InexactFloat64()
}

// PriceValues returns the floor price in gold for every item in s.
func PriceValues(s *domain.Snapshot) map[domain.ItemID]float64 {
	out := make(map[domain.ItemID]float64, len(s.Entries))
	for id, e := range s.Entries {
		out[id] = ScalePrice(e.MinUnitPrice)
	}
	return out
}

// VolumeValues returns the total listed quantity for every item in s.
func VolumeValues(s *domain.Snapshot) map[domain.ItemID]float64 {
	out := make(map[domain.ItemID]float64, len(s.Entries))
	for id, e := range s.Entries {
		out[id] = float64(e.Quantity)
	}
	return out
}
