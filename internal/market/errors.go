package market

import (
	"fmt"

	"github.com/icedo724/WoW-Auction/internal/domain"
)

// FetchError reports a failed market data call. It aborts the collection
// cycle before anything is written.
type FetchError struct {
	Endpoint   string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NameResolutionError reports a failed item-name lookup. It is never fatal:
// callers fall back to domain.PlaceholderName.
type NameResolutionError struct {
	ItemID     domain.ItemID
	StatusCode int
	Err        error
}

func (e *NameResolutionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("resolving name of item %d: status %d", e.ItemID, e.StatusCode)
	}
	return fmt.Sprintf("resolving name of item %d: %v", e.ItemID, e.Err)
}

func (e *NameResolutionError) Unwrap() error { return e.Err }
