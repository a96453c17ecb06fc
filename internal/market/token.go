package market

import "context"

const tokenPath = "/data/wow/token/index"

// FetchTokenPrice returns the current token spot price in raw units. ok is
// false when the price could not be obtained; the failure is logged and the
// caller keeps the commodity-derived price.
func (c *Client) FetchTokenPrice(ctx context.Context, token string) (price int64, ok bool) {
	var resp tokenResponse
	if err := c.getJSON(ctx, token, tokenPath, c.namespace("dynamic"), nil, &resp); err != nil {
		c.logger.Warn("token price unavailable", "error", err)
		return 0, false
	}
	if resp.Price <= 0 {
		c.logger.Warn("token price missing from response")
		return 0, false
	}
	return resp.Price, true
}
