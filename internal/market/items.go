package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/icedo724/WoW-Auction/internal/domain"
)

// ItemName looks up the localized display name of one item. Failures are
// returned as *NameResolutionError.
func (c *Client) ItemName(ctx context.Context, token string, id domain.ItemID) (string, error) {
	if err := c.nameLimiter.Wait(ctx); err != nil {
		return "", &NameResolutionError{ItemID: id, Err: err}
	}

	path := "/data/wow/item/" + strconv.FormatInt(int64(id), 10)
	query := url.Values{"locale": {c.locale}}

	var resp itemResponse
	if err := c.getJSON(ctx, token, path, c.namespace("static"), query, &resp); err != nil {
		return "", &NameResolutionError{ItemID: id, StatusCode: statusOf(err), Err: err}
	}

	name, err := decodeName(resp.Name, c.locale)
	if err != nil {
		return "", &NameResolutionError{ItemID: id, Err: err}
	}
	return name, nil
}

// decodeName accepts either a plain string or a locale map.
func decodeName(raw json.RawMessage, locale string) (string, error) {
	if len(raw) == 0 {
		return "", errors.New("no name in response")
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return "", errors.New("empty name")
		}
		return s, nil
	}

	var byLocale map[string]string
	if err := json.Unmarshal(raw, &byLocale); err != nil {
		return "", fmt.Errorf("decoding name: %w", err)
	}
	if s := byLocale[locale]; s != "" {
		return s, nil
	}
	return "", fmt.Errorf("no %s name", locale)
}

// ResolveNames looks up names for every id in ids that known reports as
// absent, one request at a time. Failed lookups degrade to the placeholder
// name and are logged; they never abort the caller.
func (c *Client) ResolveNames(ctx context.Context, token string, ids []domain.ItemID, known func(domain.ItemID) bool) map[domain.ItemID]string {
	names := make(map[domain.ItemID]string)
	for _, id := range ids {
		if known(id) {
			continue
		}
		name, err := c.ItemName(ctx, token, id)
		if err != nil {
			c.logger.Warn("item name unresolved, using placeholder", "item_id", id, "error", err)
			name = domain.PlaceholderName(id)
		}
		names[id] = name
	}
	return names
}
