package market

import (
	"testing"
	"time"

	"github.com/icedo724/WoW-Auction/internal/domain"
)

func TestScalePrice(t *testing.T) {
	tests := []struct {
		raw  int64
		want float64
	}{
		{125000, 12.5},
		{50000, 5},
		{1, 0.0001},
		{0, 0},
		{3125000000, 312500},
	}
	for _, tt := range tests {
		if got := ScalePrice(tt.raw); got != tt.want {
			t.Errorf("ScalePrice(%d) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestSnapshotValues(t *testing.T) {
	s := domain.NewSnapshot(time.Now())
	s.Add(210932, 125000, 10)
	s.Add(210932, 130000, 15)

	prices := PriceValues(s)
	if prices[210932] != 12.5 {
		t.Errorf("price = %v, want 12.5", prices[210932])
	}
	volumes := VolumeValues(s)
	if volumes[210932] != 25 {
		t.Errorf("volume = %v, want 25", volumes[210932])
	}
}

func TestTopByQuantity(t *testing.T) {
	s := domain.NewSnapshot(time.Now())
	s.Add(5, 1, 100)
	s.Add(3, 1, 300)
	s.Add(4, 1, 100)
	s.Add(1, 1, 50)
	s.Add(3, 1, 10)

	got := TopByQuantity(s, 3)
	want := []domain.ItemID{3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("TopByQuantity = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("TopByQuantity[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	if all := TopByQuantity(s, 20); len(all) != 4 {
		t.Errorf("TopByQuantity(20) returned %d ids, want 4", len(all))
	}
	if none := TopByQuantity(s, 0); len(none) != 0 {
		t.Errorf("TopByQuantity(0) = %v, want empty", none)
	}
}
