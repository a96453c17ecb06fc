package gather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icedo724/WoW-Auction/internal/auth"
	"github.com/icedo724/WoW-Auction/internal/domain"
	"github.com/icedo724/WoW-Auction/internal/market"
	"github.com/icedo724/WoW-Auction/internal/store"
)

var kst = time.FixedZone("KST", 9*60*60)

// fakeAPI serves the three game data endpoints a cycle touches.
type fakeAPI struct {
	auctions    string
	auctionCode int
	tokenPrice  int64 // 0 means the token endpoint fails
	names       map[int64]string

	auctionCalls atomic.Int32
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/data/wow/auctions/commodities":
		f.auctionCalls.Add(1)
		if f.auctionCode != 0 {
			w.WriteHeader(f.auctionCode)
			return
		}
		io.WriteString(w, f.auctions)
	case r.URL.Path == "/data/wow/token/index":
		if f.tokenPrice == 0 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, `{"last_updated_timestamp": 1, "price": %d}`, f.tokenPrice)
	case strings.HasPrefix(r.URL.Path, "/data/wow/item/"):
		var id int64
		fmt.Sscanf(strings.TrimPrefix(r.URL.Path, "/data/wow/item/"), "%d", &id)
		name, ok := f.names[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `{"id": %d, "name": %q}`, id, name)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type fixture struct {
	dir    string
	api    *fakeAPI
	stores Stores
	ledger *store.SQLiteStore
	c      *Collector
}

func newFixture(t *testing.T, api *fakeAPI, tokens TokenSource, seed map[domain.ItemID]string) *fixture {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := market.NewClient(srv.URL, "kr", "ko_KR",
		market.WithHTTPClient(srv.Client()),
		market.WithLogger(quiet),
		market.WithNameRateLimit(1000),
	)

	dir := t.TempDir()
	ledger, err := store.NewSQLiteStore(filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { ledger.Close() })

	stores := Stores{
		Catalog: store.NewCSVCatalogStore(filepath.Join(dir, "item_dict.csv")),
		Prices:  store.NewCSVTableStore(filepath.Join(dir, "market_history.csv")),
		Volumes: store.NewCSVTableStore(filepath.Join(dir, "market_volume.csv")),
		Archive: store.NewParquetStore(filepath.Join(dir, "archive")),
		Ledger:  ledger,
	}
	if tokens == nil {
		tokens = TokenSourceFunc(func(context.Context) (string, error) { return "tok", nil })
	}
	c := NewCollector(tokens, client, stores, Options{
		TopN:        20,
		TokenItemID: 122284,
		Seed:        seed,
		Location:    kst,
	}, quiet)
	c.now = func() time.Time { return time.Date(2026, 3, 2, 1, 0, 5, 0, time.UTC) }

	return &fixture{dir: dir, api: api, stores: stores, ledger: ledger, c: c}
}

func (f *fixture) read(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	require.NoError(t, err)
	return string(data)
}

func (f *fixture) lastRun(t *testing.T) store.Run {
	t.Helper()
	runs, err := f.ledger.ListRuns(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	return runs[0]
}

func TestCollectorName(t *testing.T) {
	c := NewCollector(nil, nil, Stores{}, Options{}, nil)
	assert.Equal(t, "market-collector", c.Name())
}

func TestCollectPlaceholderWhenNameLookupFails(t *testing.T) {
	api := &fakeAPI{
		auctions: `{"auctions": [{"id": 1, "item": {"id": 122284}, "quantity": 1, "unit_price": 50000}]}`,
	}
	f := newFixture(t, api, nil, nil)

	res, err := f.c.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02 10:00", res.Bucket)
	assert.Equal(t, 1, res.NewNames)
	assert.Equal(t, 1, res.Items)
	assert.Equal(t, 1, res.Archived)

	assert.Equal(t, "\ufeffitem_name,2026-03-02 10:00\nID_122284,5\n", f.read(t, "market_history.csv"))
	assert.Equal(t, "\ufeffitem_name,2026-03-02 10:00\nID_122284,1\n", f.read(t, "market_volume.csv"))
	assert.Equal(t, "\ufeffitem_id,item_name\n122284,ID_122284\n", f.read(t, "item_dict.csv"))

	run := f.lastRun(t)
	assert.Equal(t, store.RunOK, run.Status)
	assert.Equal(t, res.RunID, run.ID)
}

func TestCollectSeedsCatalogAndOverridesToken(t *testing.T) {
	api := &fakeAPI{
		auctions: `{"auctions": [
			{"id": 1, "item": {"id": 210932}, "quantity": 200, "unit_price": 125000},
			{"id": 2, "item": {"id": 122284}, "quantity": 1, "unit_price": 50000},
			{"id": 3, "item": {"id": 190000}, "quantity": 900, "unit_price": 300}
		]}`,
		tokenPrice: 2500000,
		names:      map[int64]string{190000: "바다 비늘"},
	}
	seed := map[domain.ItemID]string{122284: "WoW 토큰", 210932: "창연", 221758: "더럽혀진 부싯깃 상자"}
	f := newFixture(t, api, nil, seed)

	res, err := f.c.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.NewNames)
	assert.Equal(t, 3, res.Items)

	prices, err := f.stores.Prices.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"WoW 토큰", "바다 비늘", "창연"}, prices.Rows(), "rows created in id order")

	v, ok := prices.Get("WoW 토큰", "2026-03-02 10:00")
	require.True(t, ok)
	assert.Equal(t, 250.0, v, "token index price replaces the auction floor")
	v, _ = prices.Get("창연", "2026-03-02 10:00")
	assert.Equal(t, 12.5, v)

	catalog, err := f.stores.Catalog.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, catalog.Len())
}

func TestCollectNameCollisionFallsBackToPlaceholder(t *testing.T) {
	api := &fakeAPI{
		auctions: `{"auctions": [
			{"id": 1, "item": {"id": 210932}, "quantity": 200, "unit_price": 125000},
			{"id": 2, "item": {"id": 999}, "quantity": 10, "unit_price": 100000}
		]}`,
		names: map[int64]string{999: "창연"},
	}
	f := newFixture(t, api, nil, map[domain.ItemID]string{210932: "창연"})

	_, err := f.c.Collect(context.Background())
	require.NoError(t, err)

	prices, err := f.stores.Prices.Load(context.Background())
	require.NoError(t, err)
	v, ok := prices.Get("ID_999", "2026-03-02 10:00")
	require.True(t, ok)
	assert.Equal(t, 10.0, v)
	v, _ = prices.Get("창연", "2026-03-02 10:00")
	assert.Equal(t, 12.5, v)
}

func TestCollectBlankNameFallsBackToPlaceholder(t *testing.T) {
	api := &fakeAPI{
		auctions: `{"auctions": [
			{"id": 1, "item": {"id": 5}, "quantity": 10, "unit_price": 20000}
		]}`,
		names: map[int64]string{5: "   "},
	}
	f := newFixture(t, api, nil, nil)

	res, err := f.c.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.NewNames)

	catalog, err := f.stores.Catalog.Load(context.Background())
	require.NoError(t, err)
	name, _ := catalog.Name(5)
	assert.Equal(t, "ID_5", name)

	prices, err := f.stores.Prices.Load(context.Background())
	require.NoError(t, err)
	v, ok := prices.Get("ID_5", "2026-03-02 10:00")
	require.True(t, ok, "the row must survive a reload")
	assert.Equal(t, 2.0, v)
}

func TestCollectTwoBuckets(t *testing.T) {
	api := &fakeAPI{
		auctions: `{"auctions": [{"id": 1, "item": {"id": 210932}, "quantity": 200, "unit_price": 125000}]}`,
	}
	f := newFixture(t, api, nil, map[domain.ItemID]string{210932: "창연"})

	f.c.now = func() time.Time { return time.Date(2026, 3, 2, 1, 0, 0, 0, time.UTC) }
	_, err := f.c.Collect(context.Background())
	require.NoError(t, err)

	f.c.now = func() time.Time { return time.Date(2026, 3, 2, 0, 30, 0, 0, time.UTC) }
	_, err = f.c.Collect(context.Background())
	require.NoError(t, err)

	prices, err := f.stores.Prices.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-03-02 09:00", "2026-03-02 10:00"}, prices.Columns())

	obs, err := f.stores.Archive.ReadObservations(context.Background(),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, obs, 2)
}

func TestCollectFetchFailureWritesNothing(t *testing.T) {
	api := &fakeAPI{auctionCode: http.StatusServiceUnavailable}
	f := newFixture(t, api, nil, map[domain.ItemID]string{210932: "창연"})

	_, err := f.c.Collect(context.Background())
	var fe *market.FetchError
	require.True(t, errors.As(err, &fe), "got %v", err)
	assert.Equal(t, http.StatusServiceUnavailable, fe.StatusCode)

	for _, name := range []string{"item_dict.csv", "market_history.csv", "market_volume.csv"} {
		_, statErr := os.Stat(filepath.Join(f.dir, name))
		assert.True(t, os.IsNotExist(statErr), "%s must not be written", name)
	}
	assert.Equal(t, store.RunFetchError, f.lastRun(t).Status)
}

func TestCollectAuthFailure(t *testing.T) {
	api := &fakeAPI{}
	tokens := TokenSourceFunc(func(context.Context) (string, error) {
		return "", &auth.AuthError{StatusCode: http.StatusUnauthorized, Err: errors.New("invalid_client")}
	})
	f := newFixture(t, api, tokens, nil)

	err := f.c.Run(context.Background())
	var ae *auth.AuthError
	require.True(t, errors.As(err, &ae))
	assert.Zero(t, api.auctionCalls.Load(), "no market call without a token")

	run := f.lastRun(t)
	assert.Equal(t, store.RunAuthError, run.Status)
	assert.Contains(t, run.Error, "invalid_client")
}

func TestRunStatus(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, store.RunOK},
		{fmt.Errorf("x: %w", &auth.ConfigurationError{Missing: []string{"client id"}}), store.RunConfigError},
		{&auth.AuthError{Err: errors.New("no")}, store.RunAuthError},
		{&market.FetchError{Endpoint: "commodities", Err: errors.New("eof")}, store.RunFetchError},
		{errors.New("disk full"), store.RunStoreError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, runStatus(tt.err), "%v", tt.err)
	}
}
