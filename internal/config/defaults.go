package config

// Items tracked from the first run, before the top-volume scan adds more.
var defaultSeedItems = map[int64]string{
	122284: "WoW 토큰",
	210932: "창연",
	221758: "더럽혀진 부싯깃 상자",
}

func applyDefaults(cfg *Config) {
	s := &cfg.Storage
	if s.DataDir == "" {
		s.DataDir = "data"
	}
	if s.CatalogFile == "" {
		s.CatalogFile = "item_dict.csv"
	}
	if s.PriceFile == "" {
		s.PriceFile = "market_history.csv"
	}
	if s.VolumeFile == "" {
		s.VolumeFile = "market_volume.csv"
	}
	if s.ArchiveDir == "" {
		s.ArchiveDir = "archive"
	}
	if s.LedgerPath == "" {
		s.LedgerPath = "runs.db"
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8501"
	}

	b := &cfg.Blizzard
	if b.ClientIDFile == "" {
		b.ClientIDFile = "config/clientid.txt"
	}
	if b.SecretFile == "" {
		b.SecretFile = "config/secret.txt"
	}
	if b.Region == "" {
		b.Region = "kr"
	}
	if b.Locale == "" {
		b.Locale = "ko_KR"
	}
	if b.TokenURL == "" {
		b.TokenURL = "https://oauth.battle.net/token"
	}
	if b.TimeoutSec == 0 {
		b.TimeoutSec = 30
	}
	if b.NameLookupsPerSec == 0 {
		b.NameLookupsPerSec = 10
	}

	c := &cfg.Collector
	if c.TopN == 0 {
		c.TopN = 20
	}
	if c.Timezone == "" {
		c.Timezone = "Asia/Seoul"
	}
	if c.TokenItemID == 0 {
		c.TokenItemID = 122284
	}
	if len(c.SeedItems) == 0 {
		c.SeedItems = make(map[int64]string, len(defaultSeedItems))
		for id, name := range defaultSeedItems {
			c.SeedItems[id] = name
		}
	}

	d := &cfg.Dashboard
	if d.Title == "" {
		d.Title = "WoW 실시간 시장 분석"
	}
	if d.ReleaseDate == "" {
		d.ReleaseDate = "2026-03-02"
	}
	if d.DefaultSelection == 0 {
		d.DefaultSelection = 3
	}
	if d.RecentColumns == 0 {
		d.RecentColumns = 5
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}
