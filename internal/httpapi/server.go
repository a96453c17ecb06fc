package httpapi

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/icedo724/WoW-Auction/internal/dashboard"
	"github.com/icedo724/WoW-Auction/internal/domain"
	"github.com/icedo724/WoW-Auction/internal/store"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTmpl = template.Must(template.New("index.html").
	Funcs(template.FuncMap{
		"pct":      dashboard.FormatPct,
		"count":    dashboard.FormatCount,
		"subtract": func(a, b float64) float64 { return a - b },
	}).
	ParseFS(templateFS, "templates/index.html"))

// Options configures a DashboardServer.
type Options struct {
	Title       string
	ReleaseDate time.Time
	View        dashboard.ViewOptions
}

// DashboardServer serves the dashboard. Every request re-reads the stores;
// nothing is cached between requests.
type DashboardServer struct {
	src     dashboard.Source
	opts    Options
	log     *slog.Logger
	reg     *prometheus.Registry
	metrics *Metrics
	now     func() time.Time
}

// NewDashboardServer creates a new dashboard HTTP server with its own metrics
// registry.
func NewDashboardServer(src dashboard.Source, opts Options, log *slog.Logger) *DashboardServer {
	if log == nil {
		log = slog.Default()
	}
	reg := prometheus.NewRegistry()
	return &DashboardServer{
		src:     src,
		opts:    opts,
		log:     log,
		reg:     reg,
		metrics: NewMetrics(reg),
		now:     time.Now,
	}
}

// Handler returns the router with recovery and request logging.
func (s *DashboardServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware(s.log, s.metrics))

	r.Get("/", s.handlePage)
	r.Get("/api/view", s.handleView)
	r.Get("/api/items", s.handleItems)
	r.Get("/api/runs", s.handleRuns)
	r.Get("/api/archive", s.handleArchive)
	r.Get("/api/archive/{month}", s.handleArchiveMonth)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// ---------------------------------------------------------------------------
// Request parsing
// ---------------------------------------------------------------------------

// parseSelection returns the requested items. It returns nil when the request
// does not carry a selection, so the default applies; the "sel" marker sent
// by the page form makes an empty selection explicit.
func parseSelection(r *http.Request) []string {
	q := r.URL.Query()
	items, hasItems := q["item"]
	_, marked := q["sel"]
	if !hasItems && !marked {
		return nil
	}
	out := []string{}
	for _, it := range items {
		if it != "" {
			out = append(out, it)
		}
	}
	return out
}

func (s *DashboardServer) loadView(r *http.Request, mode domain.Mode) (dashboard.View, error) {
	opts := s.opts.View
	opts.Sort = dashboard.ParseSort(r.URL.Query().Get("sort"))
	if mode != domain.ModePrice {
		opts.TokenItem = ""
	}

	v, err := dashboard.LoadView(r.Context(), s.src, mode, parseSelection(r), opts)
	if err != nil {
		s.metrics.LoadErrors.Inc()
		s.log.Error("loading view", "mode", mode, "error", err)
		return v, err
	}
	if v.Missing {
		s.metrics.ViewsMissing.Inc()
	}
	return v, nil
}

func (s *DashboardServer) daysToRelease() int {
	if s.opts.ReleaseDate.IsZero() {
		return 0
	}
	return dashboard.DaysUntil(s.opts.ReleaseDate, s.now())
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

func (s *DashboardServer) handlePage(w http.ResponseWriter, r *http.Request) {
	mode, err := domain.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	v, err := s.loadView(r, mode)
	if err != nil {
		http.Error(w, "데이터를 읽을 수 없습니다: "+err.Error(), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, newPageData(s.opts.Title, s.daysToRelease(), v)); err != nil {
		s.log.Error("rendering page", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func (s *DashboardServer) handleView(w http.ResponseWriter, r *http.Request) {
	mode, err := domain.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	v, err := s.loadView(r, mode)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, ViewResponse{Title: s.opts.Title, DaysToRelease: s.daysToRelease(), View: v})
}

func (s *DashboardServer) handleItems(w http.ResponseWriter, r *http.Request) {
	mode, err := domain.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := dashboard.ReadTable(r.Context(), s.src, mode)
	var missing *dashboard.MissingDataError
	switch {
	case errors.As(err, &missing):
		writeJSON(w, ItemsResponse{Mode: mode, Missing: true, Items: []string{}})
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	items := t.Rows()
	sort.Strings(items)
	writeJSON(w, ItemsResponse{Mode: mode, Items: items})
}

func (s *DashboardServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	runs := []store.Run{}
	if s.src.Runs != nil {
		listed, err := s.src.Runs.ListRuns(r.Context(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		runs = append(runs, listed...)
	}
	writeJSON(w, RunsResponse{Runs: runs})
}

func (s *DashboardServer) handleArchive(w http.ResponseWriter, r *http.Request) {
	months := []string{}
	if s.src.Archive != nil {
		listed, err := s.src.Archive.ListMonths(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		months = append(months, listed...)
	}
	writeJSON(w, ArchiveResponse{Months: months})
}

func (s *DashboardServer) handleArchiveMonth(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")
	if _, err := time.Parse("2006-01", month); err != nil {
		writeError(w, http.StatusBadRequest, "month must be YYYY-MM")
		return
	}
	if s.src.Archive == nil {
		writeError(w, http.StatusNotFound, "no archive configured")
		return
	}

	obs, err := s.src.Archive.ReadMonth(r.Context(), month)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "no archive for "+month)
		return
	case err != nil:
		s.log.Error("reading archive", "month", month, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, ArchiveMonthResponse{Month: month, Observations: obs})
}

func (s *DashboardServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, HealthResponse{Status: "ok"})
}
