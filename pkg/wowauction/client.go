// Package wowauction is a Go client for the market dashboard's JSON API.
package wowauction

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to a running market-dashboard.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new dashboard API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ViewQuery selects what GetView renders. A nil Items asks for the default
// selection; a non-nil empty one asks for no selection.
type ViewQuery struct {
	Mode  Mode
	Items []string
	Sort  string
}

func (q ViewQuery) values() url.Values {
	v := url.Values{}
	if q.Mode != "" {
		v.Set("mode", string(q.Mode))
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Items != nil {
		v.Set("sel", "1")
		for _, it := range q.Items {
			v.Add("item", it)
		}
	}
	return v
}

// GetView retrieves the dashboard view.
func (c *Client) GetView(ctx context.Context, q ViewQuery) (*ViewResponse, error) {
	var out ViewResponse
	if err := c.get(ctx, "/api/view", q.values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetItems retrieves the item names of a mode's table.
func (c *Client) GetItems(ctx context.Context, mode Mode) (*ItemsResponse, error) {
	v := url.Values{}
	if mode != "" {
		v.Set("mode", string(mode))
	}
	var out ItemsResponse
	if err := c.get(ctx, "/api/items", v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRuns retrieves the newest collection runs. A limit of 0 uses the server
// default.
func (c *Client) GetRuns(ctx context.Context, limit int) (*RunsResponse, error) {
	v := url.Values{}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	var out RunsResponse
	if err := c.get(ctx, "/api/runs", v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health checks that the dashboard is up.
func (c *Client) Health(ctx context.Context) error {
	var out healthResponse
	return c.get(ctx, "/health", nil, &out)
}

// GetArchiveMonths lists the months with archived observations.
func (c *Client) GetArchiveMonths(ctx context.Context) (*ArchiveResponse, error) {
	var out ArchiveResponse
	if err := c.get(ctx, "/api/archive", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetArchiveMonth retrieves every archived observation of month (YYYY-MM).
func (c *Client) GetArchiveMonth(ctx context.Context, month string) (*ArchiveMonthResponse, error) {
	var out ArchiveMonthResponse
	if err := c.get(ctx, "/api/archive/"+url.PathEscape(month), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// APIError is a non-2xx response from the dashboard.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dashboard API: HTTP %d: %s", e.StatusCode, e.Message)
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return &APIError{StatusCode: resp.StatusCode, Message: body.Error}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
