package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gustimaulan/fb-marketing-dash/internal/cache"
	"github.com/gustimaulan/fb-marketing-dash/internal/config"
	"github.com/gustimaulan/fb-marketing-dash/internal/dashboard"
	"github.com/gustimaulan/fb-marketing-dash/internal/fetch"
	"github.com/gustimaulan/fb-marketing-dash/internal/httpserver"
)

func newTestHandler(t *testing.T, adsBody string) (http.Handler, *cache.Service) {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(adsBody))
	}))
	t.Cleanup(upstream.Close)

	cfg := &config.Config{}
	cfg.Server.Timezone = "UTC"
	cfg.Sources.AdMetricsURL = upstream.URL
	cfg.Sources.SalesOrdersURL = upstream.URL
	cfg.Sources.InvoiceLinesURL = upstream.URL
	cfg.Sources.LeadsRatioURL = upstream.URL
	cfg.Sources.FetchTimeout = 5 * time.Second
	cfg.Retry.BaseDelay = time.Millisecond
	cfg.Retry.MaxDelay = 10 * time.Millisecond

	cacheSvc := cache.NewService(cache.NewMemoryStore(), 4*time.Hour, zap.NewNop(),
		cache.WithDedupWindow(time.Minute))
	client := fetch.NewClient(5*time.Second, zap.NewNop(), nil)
	dashSvc := dashboard.NewService(cfg, cacheSvc, client, zap.NewNop(), nil)

	return httpserver.NewServer(&httpserver.Dependencies{
		Dashboard: dashSvc,
		Cache:     cacheSvc,
		Config:    cfg,
		Logger:    zap.NewNop(),
	}), cacheSvc
}

func TestHandleHealth(t *testing.T) {
	h, _ := newTestHandler(t, `[]`)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleDashboard(t *testing.T) {
	h, _ := newTestHandler(t, `[{"ad_name":"Poster_Oil Change_99 Ribu","spend":1000,"date_start":"2025-06-10","date_stop":"2025-06-10"}]`)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/dashboard?date-from=2025-06-01&date-to=2025-06-30", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var snap dashboard.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Len(t, snap.Buckets, 1)
	assert.Equal(t, "Oil Change", snap.Buckets[0].Label)
	assert.Equal(t, 1000.0, snap.Metrics.Spend)
	assert.Equal(t, dashboard.DateRange{From: "2025-06-01", To: "2025-06-30"}, snap.DateRange)
}

func TestHandleDashboard_BadRange(t *testing.T) {
	h, _ := newTestHandler(t, `[]`)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard?range=bogus", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleDashboard_MethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(t, `[]`)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/dashboard", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandlePreferences_RoundTrip(t *testing.T) {
	h, _ := newTestHandler(t, `[]`)

	// GET before any save returns defaults.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/preferences", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var p dashboard.Preferences
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "product", p.GroupBy)

	p.GroupBy = "campaign"
	body, err := json.Marshal(p)
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/preferences", strings.NewReader(string(body))))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/preferences", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "campaign", p.GroupBy)
}

func TestHandlePreferences_InvalidJSON(t *testing.T) {
	h, _ := newTestHandler(t, `[]`)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/preferences", strings.NewReader("{")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCacheInfoAndClear(t *testing.T) {
	h, cacheSvc := newTestHandler(t, `[]`)

	cacheSvc.Set(context.Background(), "fb_ads_data", []int{1})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cache/info", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var info struct {
		DefaultTTL string                   `json:"defaultTTL"`
		Entries    map[string]cache.KeyInfo `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "4h0m0s", info.DefaultTTL)
	assert.Contains(t, info.Entries, "fb_ads_data")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cache/clear?prefix=fb_ads", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"removed":1}`, rec.Body.String())
}

func TestHandleCacheClear_RequiresPost(t *testing.T) {
	h, _ := newTestHandler(t, `[]`)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cache/clear", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleLeadsRatio(t *testing.T) {
	h, _ := newTestHandler(t, `[{"status":200,"data":[{"label_group":"Bandung","total":10,"percentage":100,"purchase":2}]}]`)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/leads-ratio?date-from=2025-06-01&date-to=2025-06-30", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Bandung")
}
