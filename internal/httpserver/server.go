package httpserver

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/gustimaulan/fb-marketing-dash/internal/cache"
	"github.com/gustimaulan/fb-marketing-dash/internal/config"
	"github.com/gustimaulan/fb-marketing-dash/internal/dashboard"
	"github.com/gustimaulan/fb-marketing-dash/internal/metrics"
)

// Dependencies holds all external dependencies for the server.
type Dependencies struct {
	Dashboard *dashboard.Service
	Cache     *cache.Service
	Config    *config.Config
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
}

// Server wraps the dashboard HTTP handlers.
type Server struct {
	dashboard *dashboard.Service
	cache     *cache.Service
	logger    *zap.Logger
	config    *config.Config
	metrics   *metrics.Metrics
}

// NewServer constructs a new http.Handler with all routes registered.
func NewServer(deps *Dependencies) http.Handler {
	s := &Server{
		dashboard: deps.Dashboard,
		cache:     deps.Cache,
		logger:    deps.Logger,
		config:    deps.Config,
		metrics:   deps.Metrics,
	}

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", s.handleHealth)

	// Prometheus metrics
	if deps.Config.Metrics.Enabled {
		mux.Handle(deps.Config.Metrics.Path, metrics.Handler())
	}

	// Dashboard
	mux.HandleFunc("/api/dashboard", s.handleDashboard)
	mux.HandleFunc("/api/dashboard/attribution", s.handleAttribution)
	mux.HandleFunc("/api/dashboard/branches", s.handleBranches)
	mux.HandleFunc("/api/dashboard/products", s.handleProducts)

	// Leads ratio
	mux.HandleFunc("/api/leads-ratio", s.handleLeadsRatio)

	// Preferences
	mux.HandleFunc("/api/preferences", s.handlePreferences)

	// Cache administration
	mux.HandleFunc("/api/cache/info", s.handleCacheInfo)
	mux.HandleFunc("/api/cache/clear", s.handleCacheClear)

	return mux
}

// ---- Health Check ----

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// ---- Dashboard ----

// parseQuery maps request parameters onto a dashboard query.
func parseQuery(r *http.Request) dashboard.Query {
	q := r.URL.Query()
	query := dashboard.Query{
		Range:      q.Get("range"),
		DateFrom:   q.Get("date-from"),
		DateTo:     q.Get("date-to"),
		GroupBy:    q.Get("group-by"),
		Search:     q.Get("q"),
		SortColumn: q.Get("sort"),
		SortDir:    q.Get("dir"),
		ForceFresh: q.Get("fresh") == "true" || q.Get("fresh") == "1",
	}
	if products := q.Get("products"); products != "" {
		for _, p := range strings.Split(products, ",") {
			if p = strings.TrimSpace(p); p != "" {
				query.Products = append(query.Products, p)
			}
		}
	}
	// Explicit dates without a preset imply a custom range.
	if query.Range == "" && query.DateFrom != "" && query.DateTo != "" {
		query.Range = dashboard.RangeCustom
	}
	return query
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap, err := s.dashboard.Snapshot(r.Context(), parseQuery(r))
	if err != nil {
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.jsonResponse(w, snap)
}

func (s *Server) handleAttribution(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap, err := s.dashboard.Snapshot(r.Context(), parseQuery(r))
	if err != nil {
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.jsonResponse(w, map[string]any{
		"dateRange":      snap.DateRange,
		"attribution":    snap.Attribution,
		"trafficSources": snap.TrafficSources,
		"sampled":        snap.Sampled,
	})
}

func (s *Server) handleBranches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap, err := s.dashboard.Snapshot(r.Context(), parseQuery(r))
	if err != nil {
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.jsonResponse(w, map[string]any{
		"dateRange":   snap.DateRange,
		"branchSplit": snap.BranchSplit,
		"branches":    snap.Branches,
		"leadsRatio":  snap.LeadsRatio,
		"sampled":     snap.Sampled,
	})
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap, err := s.dashboard.Snapshot(r.Context(), parseQuery(r))
	if err != nil {
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.jsonResponse(w, map[string]any{
		"dateRange":  snap.DateRange,
		"products":   snap.Products,
		"categories": snap.Categories,
		"sampled":    snap.Sampled,
	})
}

// ---- Leads Ratio ----

func (s *Server) handleLeadsRatio(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	report, err := s.dashboard.LeadsRatio(r.Context(), parseQuery(r))
	if err != nil {
		s.logger.Error("leads ratio fetch failed", zap.Error(err))
		s.errorResponse(w, "failed to fetch leads ratio", http.StatusBadGateway)
		return
	}

	s.jsonResponse(w, report)
}

// ---- Preferences ----

func (s *Server) handlePreferences(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.jsonResponse(w, dashboard.LoadPreferences(r.Context(), s.cache))

	case http.MethodPut:
		var p dashboard.Preferences
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			s.errorResponse(w, "invalid json", http.StatusBadRequest)
			return
		}
		dashboard.SavePreferences(r.Context(), s.cache, p)
		s.jsonResponse(w, p)

	default:
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// ---- Cache Administration ----

func (s *Server) handleCacheInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	prefix := r.URL.Query().Get("prefix")
	s.jsonResponse(w, map[string]any{
		"defaultTTL": s.cache.DefaultTTL().String(),
		"entries":    s.cache.Info(r.Context(), prefix),
	})
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	prefix := r.URL.Query().Get("prefix")
	removed := s.cache.ClearPrefix(r.Context(), prefix)
	s.logger.Info("cache cleared",
		zap.String("prefix", prefix),
		zap.Int("removed", removed),
	)
	s.jsonResponse(w, map[string]int{"removed": removed})
}

// ---- Helper Methods ----

func (s *Server) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) errorResponse(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
