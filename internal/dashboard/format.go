package dashboard

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/icedo724/WoW-Auction/internal/domain"
)

// FormatGold formats a gold amount with comma separators and two decimals,
// e.g. 1234.5 -> "1,234.50G".
func FormatGold(v float64) string {
	return humanize.FormatFloat("#,###.##", v) + "G"
}

// FormatVolume formats a listed quantity with comma separators.
func FormatVolume(v float64) string {
	return humanize.Comma(int64(math.Round(v)))
}

// FormatPct formats a percentage change as "+X.X%" / "-X.X%". Drops the
// decimal for values >= 100% to keep width compact.
func FormatPct(p float64) string {
	a := math.Abs(p)
	sign := "+"
	if p < 0 {
		sign = "-"
	}
	if a < 0.05 {
		return "0.0%"
	}
	if a >= 100 {
		return fmt.Sprintf("%s%.0f%%", sign, a)
	}
	return fmt.Sprintf("%s%.1f%%", sign, a)
}

// FormatValue formats a cell of the given table mode.
func FormatValue(mode domain.Mode, v float64) string {
	if mode == domain.ModeVolume {
		return FormatVolume(v)
	}
	return FormatGold(v)
}

// FormatCount formats an item count.
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}
