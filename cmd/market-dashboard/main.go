package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/icedo724/WoW-Auction/internal/config"
	"github.com/icedo724/WoW-Auction/internal/dashboard"
	"github.com/icedo724/WoW-Auction/internal/httpapi"
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

	st := cfg.Storage
	src := dashboard.Source{
		Prices:  store.NewCSVTableStore(st.Path(st.PriceFile)),
		Volumes: store.NewCSVTableStore(st.Path(st.VolumeFile)),
		Catalog: store.NewCSVCatalogStore(st.Path(st.CatalogFile)),
		Archive: store.NewParquetStore(st.Path(st.ArchiveDir)),
	}
	if _, err := os.Stat(st.Path(st.LedgerPath)); err == nil {
		ledger, err := store.NewSQLiteStore(st.Path(st.LedgerPath))
		if err != nil {
			logger.Warn("run ledger unavailable", "error", err)
		} else {
			defer ledger.Close()
			src.Runs = ledger
		}
	}

	loc := util.LoadLocation(cfg.Collector.Timezone)
	release, _ := time.ParseInLocation("2006-01-02", cfg.Dashboard.ReleaseDate, loc)
	tokenName := cfg.Collector.SeedItems[cfg.Collector.TokenItemID]

	srv := httpapi.NewDashboardServer(src, httpapi.Options{
		Title:       cfg.Dashboard.Title,
		ReleaseDate: release,
		View: dashboard.ViewOptions{
			DefaultSelection: cfg.Dashboard.DefaultSelection,
			RecentColumns:    cfg.Dashboard.RecentColumns,
			TokenItem:        tokenName,
		},
	}, logger)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		logger.Info("dashboard listening", "addr", httpServer.Addr, "data_dir", st.DataDir)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down dashboard")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
