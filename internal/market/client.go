// Package market fetches commodity auction data, the token spot price and
// item metadata from the Battle.net game data API.
package market

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Client provides access to the game data endpoints of one region.
type Client struct {
	baseURL    string
	region     string
	locale     string
	httpClient *http.Client
	logger     *slog.Logger

	nameLimiter *rate.Limiter
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new API client. region selects the namespace suffix
// ("kr" gives dynamic-kr / static-kr) and locale the language of item names.
func NewClient(baseURL, region, locale string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		region:  strings.ToLower(region),
		locale:  locale,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:      slog.Default(),
		nameLimiter: rate.NewLimiter(rate.Limit(10), 1),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithNameRateLimit caps item-name lookups at perSec requests per second.
func WithNameRateLimit(perSec float64) ClientOption {
	return func(c *Client) {
		c.nameLimiter = rate.NewLimiter(rate.Limit(perSec), 1)
	}
}

func (c *Client) namespace(kind string) string {
	return kind + "-" + c.region
}
