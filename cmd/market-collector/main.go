package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/icedo724/WoW-Auction/internal/auth"
	"github.com/icedo724/WoW-Auction/internal/config"
	"github.com/icedo724/WoW-Auction/internal/domain"
	"github.com/icedo724/WoW-Auction/internal/gather"
	"github.com/icedo724/WoW-Auction/internal/market"
	"github.com/icedo724/WoW-Auction/internal/store"
	"github.com/icedo724/WoW-Auction/internal/util"
)

func main() {
	config.LoadDotEnv(".env")

	cfgPath := "config/market.yaml"
	if p := os.Getenv("MARKET_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	hc := &http.Client{Timeout: cfg.Blizzard.Timeout()}
	client := market.NewClient(cfg.Blizzard.BaseURL(), cfg.Blizzard.Region, cfg.Blizzard.Locale,
		market.WithHTTPClient(hc),
		market.WithLogger(logger),
		market.WithNameRateLimit(cfg.Blizzard.NameLookupsPerSec),
	)
	tokens := gather.TokenSourceFunc(func(ctx context.Context) (string, error) {
		return auth.Acquire(ctx, cfg.Blizzard, hc, logger)
	})

	st := cfg.Storage
	stores := gather.Stores{
		Catalog: store.NewCSVCatalogStore(st.Path(st.CatalogFile)),
		Prices:  store.NewCSVTableStore(st.Path(st.PriceFile)),
		Volumes: store.NewCSVTableStore(st.Path(st.VolumeFile)),
		Archive: store.NewParquetStore(st.Path(st.ArchiveDir)),
	}
	if err := os.MkdirAll(st.DataDir, 0o755); err != nil {
		log.Fatalf("creating data dir: %v", err)
	}
	ledger, err := store.NewSQLiteStore(st.Path(st.LedgerPath))
	if err != nil {
		logger.Warn("run ledger unavailable", "path", st.Path(st.LedgerPath), "error", err)
	} else {
		defer ledger.Close()
		stores.Ledger = ledger
	}

	seed := make(map[domain.ItemID]string, len(cfg.Collector.SeedItems))
	for id, name := range cfg.Collector.SeedItems {
		seed[domain.ItemID(id)] = name
	}

	collector := gather.NewCollector(tokens, client, stores, gather.Options{
		TopN:        cfg.Collector.TopN,
		TokenItemID: domain.ItemID(cfg.Collector.TokenItemID),
		Seed:        seed,
		Location:    util.LoadLocation(cfg.Collector.Timezone),
	}, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	slog.Info("starting gatherer", "name", collector.Name(), "data_dir", st.DataDir)
	if err := collector.Run(ctx); err != nil {
		// Deferred closes do not run after log.Fatalf.
		if ledger != nil {
			ledger.Close()
		}
		log.Fatalf("gatherer error: %v", err)
	}
}
