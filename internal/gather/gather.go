// Package gather runs collection cycles against the auction market and
// persists what they observe.
package gather

import (
	"context"

	"github.com/icedo724/WoW-Auction/internal/domain"
)

// Gatherer is the interface for all data gathering processes.
type Gatherer interface {
	// Name returns the gatherer identifier.
	Name() string
	// Run performs one gathering pass and returns when it is complete or ctx
	// is cancelled.
	Run(ctx context.Context) error
}

// TokenSource yields a bearer token for one cycle.
type TokenSource interface {
	Acquire(ctx context.Context) (string, error)
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func(ctx context.Context) (string, error)

// Acquire calls f.
func (f TokenSourceFunc) Acquire(ctx context.Context) (string, error) { return f(ctx) }

// MarketAPI is the subset of market.Client a cycle needs.
type MarketAPI interface {
	FetchSnapshot(ctx context.Context, token string) (*domain.Snapshot, error)
	FetchTokenPrice(ctx context.Context, token string) (int64, bool)
	ResolveNames(ctx context.Context, token string, ids []domain.ItemID, known func(domain.ItemID) bool) map[domain.ItemID]string
}
