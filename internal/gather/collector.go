package gather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/icedo724/WoW-Auction/internal/auth"
	"github.com/icedo724/WoW-Auction/internal/domain"
	"github.com/icedo724/WoW-Auction/internal/market"
	"github.com/icedo724/WoW-Auction/internal/store"
)

var _ Gatherer = (*Collector)(nil)

// Stores groups the persistence targets of a cycle. Archive and Ledger are
// optional.
type Stores struct {
	Catalog store.CatalogStore
	Prices  store.TableStore
	Volumes store.TableStore
	Archive store.ObservationStore
	Ledger  store.RunStore
}

// Options tunes a Collector.
type Options struct {
	TopN        int
	TokenItemID domain.ItemID
	Seed        map[domain.ItemID]string // catalog used when none is persisted
	Location    *time.Location           // bucket time zone
}

// Result summarizes one successful or failed cycle.
type Result struct {
	RunID    string
	Bucket   string
	Items    int // catalogued items with a price this cycle
	NewNames int // catalog entries added
	Archived int
}

// ---------------------------------------------------------------------------
// Collector: one hourly snapshot of the commodity market.
// ---------------------------------------------------------------------------

// Collector performs a single collection cycle: authenticate, fetch the
// commodity snapshot, grow the catalog, then upsert the price and volume
// tables for the current hour bucket. Network calls are strictly sequential
// and nothing is retried; a fatal error aborts before any table is written.
type Collector struct {
	tokens TokenSource
	api    MarketAPI
	stores Stores
	opts   Options
	now    func() time.Time
	log    *slog.Logger
}

// NewCollector creates a Collector.
func NewCollector(tokens TokenSource, api MarketAPI, stores Stores, opts Options, log *slog.Logger) *Collector {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if log == nil {
		log = slog.Default()
	}
	return &Collector{
		tokens: tokens,
		api:    api,
		stores: stores,
		opts:   opts,
		now:    time.Now,
		log:    log.With("gatherer", "market-collector"),
	}
}

// Name returns the gatherer identifier.
func (c *Collector) Name() string { return "market-collector" }

// Run performs one cycle.
func (c *Collector) Run(ctx context.Context) error {
	_, err := c.Collect(ctx)
	return err
}

// Collect performs one cycle and reports what it wrote. The outcome is
// recorded in the run ledger when one is configured.
func (c *Collector) Collect(ctx context.Context) (res Result, err error) {
	started := c.now()
	res.RunID = uuid.NewString()
	res.Bucket = domain.BucketLabel(started, c.opts.Location)
	log := c.log.With("run_id", res.RunID, "bucket", res.Bucket)

	defer func() {
		c.record(ctx, started, res, err)
		if err != nil {
			log.Error("collection failed", "status", runStatus(err), "error", err)
			return
		}
		log.Info("collection complete",
			"items", res.Items,
			"new_names", res.NewNames,
			"archived", res.Archived,
			"elapsed", c.now().Sub(started).Round(time.Millisecond),
		)
	}()

	// 1. Credentials.
	token, err := c.tokens.Acquire(ctx)
	if err != nil {
		return res, fmt.Errorf("acquiring token: %w", err)
	}

	// 2. Snapshot.
	snap, err := c.api.FetchSnapshot(ctx, token)
	if err != nil {
		return res, err
	}
	log.Info("snapshot fetched", "items", len(snap.Entries))

	// 3. Catalog.
	catalog, err := c.loadCatalog(ctx)
	if err != nil {
		return res, err
	}
	top := market.TopByQuantity(snap, c.opts.TopN)
	names := c.api.ResolveNames(ctx, token, top, catalog.Has)
	res.NewNames = c.addNames(catalog, top, names, log)
	if err := c.stores.Catalog.Save(ctx, catalog); err != nil {
		return res, fmt.Errorf("saving catalog: %w", err)
	}

	// 4. Values.
	prices := market.PriceValues(snap)
	if raw, ok := c.api.FetchTokenPrice(ctx, token); ok {
		prices[c.opts.TokenItemID] = market.ScalePrice(raw)
	} else {
		log.Warn("token price unavailable, keeping auction price", "item_id", c.opts.TokenItemID)
	}
	volumes := market.VolumeValues(snap)

	// 5. Wide tables.
	if err := c.upsert(ctx, c.stores.Prices, prices, res.Bucket, catalog); err != nil {
		return res, fmt.Errorf("updating price table: %w", err)
	}
	if err := c.upsert(ctx, c.stores.Volumes, volumes, res.Bucket, catalog); err != nil {
		return res, fmt.Errorf("updating volume table: %w", err)
	}
	for _, id := range catalog.IDs() {
		if _, ok := prices[id]; ok {
			res.Items++
		}
	}

	// 6. Archive.
	res.Archived = c.archive(ctx, res.Bucket, catalog, prices, volumes, log)
	return res, nil
}

// loadCatalog returns the persisted catalog, or the seed catalog when none
// exists yet.
func (c *Collector) loadCatalog(ctx context.Context) (*store.Catalog, error) {
	catalog, err := c.stores.Catalog.Load(ctx)
	if err == nil {
		return catalog, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	catalog = store.NewCatalog()
	ids := make([]domain.ItemID, 0, len(c.opts.Seed))
	for id := range c.opts.Seed {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if err := catalog.Add(id, c.opts.Seed[id]); err != nil {
			return nil, fmt.Errorf("seeding catalog: %w", err)
		}
	}
	c.log.Info("catalog seeded", "items", catalog.Len())
	return catalog, nil
}

// addNames records newly resolved names in id order. A blank name, or one
// already owned by another item, falls back to the placeholder.
func (c *Collector) addNames(catalog *store.Catalog, ids []domain.ItemID, names map[domain.ItemID]string, log *slog.Logger) int {
	added := 0
	for _, id := range ids {
		name, ok := names[id]
		if !ok {
			continue
		}
		err := catalog.Add(id, name)
		var collision *store.NameCollisionError
		switch {
		case errors.As(err, &collision):
			log.Warn("item name already taken, using placeholder", "item_id", id, "name", name)
			err = catalog.Add(id, domain.PlaceholderName(id))
		case errors.Is(err, store.ErrEmptyName):
			log.Warn("item name empty, using placeholder", "item_id", id)
			err = catalog.Add(id, domain.PlaceholderName(id))
		}
		if err != nil {
			log.Warn("item not catalogued", "item_id", id, "error", err)
			continue
		}
		added++
	}
	return added
}

func (c *Collector) upsert(ctx context.Context, ts store.TableStore, values map[domain.ItemID]float64, bucket string, catalog *store.Catalog) error {
	t, err := ts.Load(ctx)
	if errors.Is(err, store.ErrNotFound) {
		t = store.NewWideTable()
	} else if err != nil {
		return err
	}
	if err := store.Merge(t, values, bucket, catalog); err != nil {
		return err
	}
	return ts.Save(ctx, t)
}

// archive writes the cycle's observations to the long-form archive. Failures
// are logged and do not fail the cycle.
func (c *Collector) archive(ctx context.Context, bucket string, catalog *store.Catalog, prices, volumes map[domain.ItemID]float64, log *slog.Logger) int {
	if c.stores.Archive == nil {
		return 0
	}
	ts, err := domain.ParseBucket(bucket, c.opts.Location)
	if err != nil {
		log.Warn("archive skipped", "error", err)
		return 0
	}

	var records []store.ObservationRecord
	for _, id := range catalog.IDs() {
		price, hasPrice := prices[id]
		volume, hasVolume := volumes[id]
		if !hasPrice && !hasVolume {
			continue
		}
		name, _ := catalog.Name(id)
		records = append(records, store.ObservationRecord{
			ItemID:    int64(id),
			ItemName:  name,
			Bucket:    ts.UnixMilli(),
			Label:     bucket,
			Price:     price,
			HasPrice:  hasPrice,
			Volume:    int64(volume),
			HasVolume: hasVolume,
		})
	}
	if err := c.stores.Archive.WriteObservations(ctx, records); err != nil {
		log.Warn("archive write failed", "error", err)
		return 0
	}
	return len(records)
}

func (c *Collector) record(ctx context.Context, started time.Time, res Result, cycleErr error) {
	if c.stores.Ledger == nil {
		return
	}
	run := store.Run{
		ID:         res.RunID,
		StartedAt:  started,
		FinishedAt: c.now(),
		Bucket:     res.Bucket,
		Status:     runStatus(cycleErr),
		Items:      res.Items,
		NewNames:   res.NewNames,
	}
	if cycleErr != nil {
		run.Error = cycleErr.Error()
	}
	// The ledger entry is written even when the cycle was cancelled.
	if err := c.stores.Ledger.RecordRun(context.WithoutCancel(ctx), run); err != nil {
		c.log.Warn("ledger write failed", "run_id", res.RunID, "error", err)
	}
}

// runStatus classifies a cycle error for the ledger.
func runStatus(err error) string {
	var (
		cfgErr   *auth.ConfigurationError
		authErr  *auth.AuthError
		fetchErr *market.FetchError
	)
	switch {
	case err == nil:
		return store.RunOK
	case errors.As(err, &cfgErr):
		return store.RunConfigError
	case errors.As(err, &authErr):
		return store.RunAuthError
	case errors.As(err, &fetchErr):
		return store.RunFetchError
	default:
		return store.RunStoreError
	}
}
