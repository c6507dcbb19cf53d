// internal/httpapi/server.go
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/arcadecheck/arcadecheck/internal/checklog"
	"github.com/arcadecheck/arcadecheck/internal/domain"
	"github.com/arcadecheck/arcadecheck/internal/httpapi/middleware"
	"github.com/arcadecheck/arcadecheck/internal/repo"
	"github.com/arcadecheck/arcadecheck/internal/timefmt"
)

type Config struct {
	Title        string
	LogPath      string
	LogLines     int
	AllowedHosts []string
	RatePerMin   int
	RateBurst    int
}

type Server struct {
	Logger   *zap.Logger
	Cfg      Config
	Sources  []domain.Source
	Versions repo.VersionStore
	Runs     repo.LastCheckStore
}

func NewServer(l *zap.Logger, cfg Config, sources []domain.Source, vs repo.VersionStore, ls repo.LastCheckStore) *Server {
	return &Server{Logger: l, Cfg: cfg, Sources: sources, Versions: vs, Runs: ls}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)
	r.Use(middleware.AllowHosts(s.Cfg.AllowedHosts))
	r.Use(middleware.RateLimit(s.Cfg.RatePerMin, s.Cfg.RateBurst))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/", s.handleDashboard)
	r.Get("/api/status", s.handleStatus)

	return r
}

type sourceRow struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Version string `json:"version,omitempty"`
	Date    string `json:"date,omitempty"`
	Elapsed string `json:"elapsed,omitempty"`
}

type lastCheckView struct {
	Timestamp string `json:"timestamp"`
	Label     string `json:"label"`
	Elapsed   string `json:"elapsed"`
}

// sourceRows renders one row per configured source. A source whose
// version was never recorded still gets a row, just with empty fields.
func (s *Server) sourceRows(ctx context.Context) []sourceRow {
	rows := make([]sourceRow, 0, len(s.Sources))
	for _, src := range s.Sources {
		row := sourceRow{ID: string(src.ID), Label: src.Label}
		rec, err := s.Versions.Get(ctx, src.ID)
		if err != nil {
			s.Logger.Warn("version_read_error",
				zap.String("source", string(src.ID)),
				zap.Error(err))
		}
		if rec != nil {
			row.Version = rec.Version
			if !rec.RecordedAt.IsZero() {
				row.Date = rec.RecordedAt.Format(domain.DateLayout)
				row.Elapsed = timefmt.ElapsedSinceDate(row.Date, "ago")
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func (s *Server) lastCheck(ctx context.Context) *lastCheckView {
	lc, err := s.Runs.GetLastCheck(ctx)
	if err != nil {
		s.Logger.Warn("lastcheck_read_error", zap.Error(err))
		return nil
	}
	if lc == nil {
		return nil
	}
	ts := lc.Timestamp.Format(domain.TimestampLayout)
	return &lastCheckView{
		Timestamp: ts,
		Label:     lc.Label,
		Elapsed:   timefmt.ElapsedSince(ts, "ago"),
	}
}

func (s *Server) logTail() string {
	lines, err := checklog.Tail(s.Cfg.LogPath, s.Cfg.LogLines)
	if err != nil {
		s.Logger.Warn("checklog_read_error", zap.Error(err))
		return ""
	}
	return strings.Join(lines, "\n")
}

type dashboardData struct {
	Title     string
	Apps      []sourceRow
	LastCheck *lastCheckView
	Log       string
	LogLines  int
	LogPath   string
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := dashboardData{
		Title:     s.Cfg.Title,
		Apps:      s.sourceRows(r.Context()),
		LastCheck: s.lastCheck(r.Context()),
		Log:       s.logTail(),
		LogLines:  s.Cfg.LogLines,
		LogPath:   s.Cfg.LogPath,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, data); err != nil {
		s.Logger.Error("dashboard_render_error", zap.Error(err))
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	payload := struct {
		Title     string         `json:"title"`
		Apps      []sourceRow    `json:"apps"`
		LastCheck *lastCheckView `json:"last_check,omitempty"`
	}{
		Title:     s.Cfg.Title,
		Apps:      s.sourceRows(r.Context()),
		LastCheck: s.lastCheck(r.Context()),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
