package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/icedo724/WoW-Auction/internal/config"
	"github.com/icedo724/WoW-Auction/internal/dashboard"
	"github.com/icedo724/WoW-Auction/internal/domain"
	"github.com/icedo724/WoW-Auction/internal/store"
	"github.com/icedo724/WoW-Auction/internal/util"
)

// Styles.
var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	cardStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	itemStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	pickedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	gainStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")) // red up, as on the web page
	lossStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sparkStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	highlightBG = lipgloss.Color("236")
)

// hlStyle returns a copy of s with the highlight background applied when hl is true.
func hlStyle(s lipgloss.Style, hl bool) lipgloss.Style {
	if hl {
		return s.Background(highlightBG)
	}
	return s
}

func changeStyle(p float64) lipgloss.Style {
	switch {
	case p > 0:
		return gainStyle
	case p < 0:
		return lossStyle
	default:
		return dimStyle
	}
}

// Messages.
type viewLoadedMsg struct {
	view dashboard.View
	err  error
	at   time.Time
}

// Model.
type model struct {
	src       dashboard.Source
	opts      dashboard.ViewOptions
	title     string
	release   time.Time
	tokenItem string
	logger    *slog.Logger

	mode      domain.Mode
	sortMode  dashboard.SortMode
	selection []string // nil until the first load picks the default
	cursor    int

	view     dashboard.View
	err      error
	loadedAt time.Time
	loading  bool

	viewport      viewport.Model
	ready         bool
	width, height int
}

func initialModel(src dashboard.Source, opts dashboard.ViewOptions, title string, release time.Time, logger *slog.Logger) model {
	return model{
		src:       src,
		opts:      opts,
		title:     title,
		release:   release,
		tokenItem: opts.TokenItem,
		logger:    logger,
		mode:      domain.ModePrice,
	}
}

func (m model) Init() tea.Cmd {
	return m.loadCmd()
}

// loadCmd re-reads the table for the current mode and selection.
func (m *model) loadCmd() tea.Cmd {
	m.loading = true
	src, mode := m.src, m.mode
	var sel []string
	if m.selection != nil {
		sel = append([]string{}, m.selection...)
	}
	opts := m.opts
	opts.Sort = m.sortMode
	if mode != domain.ModePrice {
		opts.TokenItem = ""
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		v, err := dashboard.LoadView(ctx, src, mode, sel, opts)
		return viewLoadedMsg{view: v, err: err, at: time.Now()}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			if m.mode == domain.ModePrice {
				m.mode = domain.ModeVolume
			} else {
				m.mode = domain.ModePrice
			}
			m.selection = nil
			m.cursor = 0
			return m, m.loadCmd()
		case "s":
			m.sortMode = (m.sortMode + 1) % dashboard.SortModeCount
			return m, m.loadCmd()
		case "r":
			return m, m.loadCmd()
		case " ":
			if m.cursor >= len(m.view.Items) {
				return m, nil
			}
			m.selection = toggle(m.selection, m.view.Items[m.cursor])
			return m, m.loadCmd()
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			m.viewport.SetContent(m.renderContent())
			return m, nil
		case "down", "j":
			if m.cursor < len(m.view.Items)-1 {
				m.cursor++
			}
			m.viewport.SetContent(m.renderContent())
			return m, nil
		}

	case viewLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.loadedAt = msg.at
		if msg.err != nil {
			m.logger.Error("loading view", "mode", m.mode, "error", msg.err)
		} else {
			m.view = msg.view
			m.selection = append([]string{}, msg.view.Selected...)
			if m.cursor >= len(m.view.Items) {
				m.cursor = 0
			}
		}
		if m.ready {
			m.viewport.SetContent(m.renderContent())
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := m.height - 2
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.MouseWheelEnabled = true
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.viewport.SetContent(m.renderContent())
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// toggle adds item to sel, or removes it when already present.
func toggle(sel []string, item string) []string {
	out := []string{}
	found := false
	for _, s := range sel {
		if s == item {
			found = true
			continue
		}
		out = append(out, s)
	}
	if !found {
		out = append(out, item)
	}
	return out
}

func (m model) View() string {
	if !m.ready {
		return "Loading..."
	}

	status := m.loadedAt.Format("15:04:05")
	if m.loading {
		status = "loading..."
	}
	headerText := fmt.Sprintf(" %s    %s    sort: %s    D-%d    %s ",
		m.title, modeLabel(m.mode), m.sortMode, dashboard.DaysUntil(m.release, time.Now()), status)
	headerBar := headerStyle.Render(padOrTrunc(headerText, m.width))

	footerLeft := " q quit  tab mode  up/dn move  space select  s sort  r reload"
	footerRight := fmt.Sprintf("%.0f%% ", m.viewport.ScrollPercent()*100)
	gap := m.width - lipgloss.Width(footerLeft) - lipgloss.Width(footerRight)
	if gap < 0 {
		gap = 0
	}
	footerBar := footerStyle.Render(padOrTrunc(footerLeft+strings.Repeat(" ", gap)+footerRight, m.width))

	return headerBar + "\n" + m.viewport.View() + "\n" + footerBar
}

func modeLabel(mode domain.Mode) string {
	if mode == domain.ModeVolume {
		return "거래량"
	}
	return "가격 (Gold)"
}

func (m model) renderContent() string {
	var b strings.Builder
	v := m.view

	if m.err != nil {
		b.WriteString(lossStyle.Render("  " + m.err.Error()))
		b.WriteString("\n")
		return b.String()
	}
	if v.Missing {
		b.WriteString(dimStyle.Render("  데이터가 아직 없습니다. 수집기를 먼저 실행해 주세요."))
		b.WriteString("\n")
		return b.String()
	}

	// Cards.
	var cards []string
	if v.Mode == domain.ModePrice && m.tokenItem != "" {
		cards = append(cards, card("WoW 토큰", dashboard.FormatGold(v.Token.Latest), v.Token.PctChange))
	}
	if tm := v.Metrics.TopMover; tm != nil {
		cards = append(cards, card("최대 변동 "+tm.Item, dashboard.FormatValue(v.Mode, tm.Latest), tm.PctChange))
	}
	cards = append(cards, cardStyle.Render(labelStyle.Render("추적 품목")+"\n"+dashboard.FormatCount(len(v.Items))))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	b.WriteString("\n\n")

	if v.NoSelection {
		b.WriteString(dimStyle.Render("  선택된 품목이 없습니다. space 로 품목을 선택하세요."))
		b.WriteString("\n\n")
	}

	// Latest table with selection markers and sparklines.
	picked := make(map[string]bool, len(v.Selected))
	for _, s := range v.Selected {
		picked[s] = true
	}
	metrics := make(map[string]dashboard.RowMetric, len(v.Latest))
	for _, r := range v.Latest {
		metrics[r.Item] = r
	}

	b.WriteString(labelStyle.Render(fmt.Sprintf("  %-3s %s %14s %10s  %s", "", padOrTrunc("품목", 28), "최신", "변동률", "추이")))
	b.WriteString("\n")
	for i, item := range v.Items {
		hl := i == m.cursor
		r := metrics[item]

		mark := "[ ]"
		nameStyle := itemStyle
		if picked[item] {
			mark = "[x]"
			nameStyle = pickedStyle
		}
		latest := "-"
		if r.HasLatest {
			latest = dashboard.FormatValue(v.Mode, r.Latest)
		}
		spark := ""
		if picked[item] {
			spark = dashboard.Sparkline(v.Series.Values(item))
		}

		line := fmt.Sprintf("  %s %s %s %s  %s",
			hlStyle(dimStyle, hl).Render(mark),
			hlStyle(nameStyle, hl).Render(padOrTrunc(item, 28)),
			hlStyle(lipgloss.NewStyle(), hl).Render(fmt.Sprintf("%14s", latest)),
			hlStyle(changeStyle(r.PctChange), hl).Render(fmt.Sprintf("%10s", dashboard.FormatPct(r.PctChange))),
			sparkStyle.Render(spark),
		)
		b.WriteString(line)
		b.WriteString("\n")
	}

	// Recent columns.
	if len(v.Recent.Columns) > 0 {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("  최근 시세 변동 현황"))
		b.WriteString("\n")
		header := "  " + padOrTrunc("item_name", 28)
		for _, c := range v.Recent.Columns {
			header += fmt.Sprintf(" %16s", c[5:])
		}
		b.WriteString(dimStyle.Render(header))
		b.WriteString("\n")
		for _, row := range v.Recent.Rows {
			line := "  " + padOrTrunc(row.Item, 28)
			for _, c := range row.Cells {
				cell := "-"
				if c != nil {
					cell = dashboard.FormatValue(v.Mode, *c)
				}
				line += fmt.Sprintf(" %16s", cell)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func card(label, value string, pct float64) string {
	return cardStyle.Render(labelStyle.Render(label) + "\n" + value + " " + changeStyle(pct).Render(dashboard.FormatPct(pct)))
}

// padOrTrunc pads or truncates s to width display cells.
func padOrTrunc(s string, width int) string {
	n := lipgloss.Width(s)
	if n == width {
		return s
	}
	if n < width {
		return s + strings.Repeat(" ", width-n)
	}
	var b strings.Builder
	w := 0
	for _, r := range s {
		rw := lipgloss.Width(string(r))
		if w+rw > width {
			break
		}
		b.WriteRune(r)
		w += rw
	}
	return b.String() + strings.Repeat(" ", width-w)
}

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

	// The terminal belongs to the UI; log to a file.
	logPath := fmt.Sprintf("%s/market-console-%s.log", os.TempDir(), time.Now().Format("2006-01-02"))
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatalf("opening log file: %v", err)
	}
	defer logFile.Close()
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelInfo}))

	st := cfg.Storage
	src := dashboard.Source{
		Prices:  store.NewCSVTableStore(st.Path(st.PriceFile)),
		Volumes: store.NewCSVTableStore(st.Path(st.VolumeFile)),
		Catalog: store.NewCSVCatalogStore(st.Path(st.CatalogFile)),
	}

	loc := util.LoadLocation(cfg.Collector.Timezone)
	release, _ := time.ParseInLocation("2006-01-02", cfg.Dashboard.ReleaseDate, loc)
	opts := dashboard.ViewOptions{
		DefaultSelection: cfg.Dashboard.DefaultSelection,
		RecentColumns:    cfg.Dashboard.RecentColumns,
		TokenItem:        cfg.Collector.SeedItems[cfg.Collector.TokenItemID],
	}

	p := tea.NewProgram(
		initialModel(src, opts, cfg.Dashboard.Title, release, logger),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
