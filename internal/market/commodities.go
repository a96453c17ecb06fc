package market

import (
	"context"
	"sort"
	"time"

	"github.com/icedo724/WoW-Auction/internal/domain"
)

const commoditiesPath = "/data/wow/auctions/commodities"

// FetchSnapshot downloads the region-wide commodity auctions and folds them
// into a snapshot: minimum unit price and summed quantity per item. Any
// failure is a *FetchError.
func (c *Client) FetchSnapshot(ctx context.Context, token string) (*domain.Snapshot, error) {
	var resp commoditiesResponse
	if err := c.getJSON(ctx, token, commoditiesPath, c.namespace("dynamic"), nil, &resp); err != nil {
		return nil, &FetchError{Endpoint: commoditiesPath, StatusCode: statusOf(err), Err: err}
	}

	snap := domain.NewSnapshot(time.Now())
	for _, a := range resp.Auctions {
		snap.Add(domain.ItemID(a.Item.ID), a.UnitPrice, a.Quantity)
	}

	c.logger.Info("commodities fetched", "auctions", len(resp.Auctions), "items", len(snap.Entries))
	return snap, nil
}

// TopByQuantity returns up to n item ids with the greatest total quantity,
// largest first. Ties are broken by ascending id so the result is stable.
func TopByQuantity(s *domain.Snapshot, n int) []domain.ItemID {
	ids := make([]domain.ItemID, 0, len(s.Entries))
	for id := range s.Entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		qi, qj := s.Entries[ids[i]].Quantity, s.Entries[ids[j]].Quantity
		if qi != qj {
			return qi > qj
		}
		return ids[i] < ids[j]
	})
	if n < len(ids) {
		ids = ids[:n]
	}
	return ids
}
