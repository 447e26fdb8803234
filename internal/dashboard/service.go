// Package dashboard orchestrates the data sources into one snapshot:
// ad metrics (with retry and sample fallback), sales orders, invoice
// lines and leads ratios, reconciled into attribution, product and
// branch reports.
package dashboard

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gustimaulan/fb-marketing-dash/internal/aggregate"
	"github.com/gustimaulan/fb-marketing-dash/internal/cache"
	"github.com/gustimaulan/fb-marketing-dash/internal/config"
	"github.com/gustimaulan/fb-marketing-dash/internal/fetch"
	"github.com/gustimaulan/fb-marketing-dash/internal/metrics"
	"github.com/gustimaulan/fb-marketing-dash/internal/models"
	"github.com/gustimaulan/fb-marketing-dash/internal/reconcile"
	"github.com/gustimaulan/fb-marketing-dash/internal/sample"
)

// Query is one dashboard request after parameter parsing.
type Query struct {
	Range      string
	DateFrom   string
	DateTo     string
	GroupBy    string
	Products   []string
	Search     string
	SortColumn string
	SortDir    string
	ForceFresh bool
}

// Snapshot is the assembled dashboard payload.
type Snapshot struct {
	DateRange      DateRange                       `json:"dateRange"`
	GroupBy        string                          `json:"groupBy"`
	Buckets        []aggregate.Bucket              `json:"buckets"`
	Metrics        aggregate.Metrics               `json:"metrics"`
	Chart          map[string]aggregate.ChartPoint `json:"chart"`
	ProductOptions []string                        `json:"productOptions"`
	Attribution    reconcile.AttributionMetrics    `json:"attribution"`
	TrafficSources []reconcile.TrafficSource       `json:"trafficSources"`
	Products       []reconcile.ProductPerformance  `json:"products"`
	Categories     []reconcile.CategoryPerformance `json:"categories"`
	BranchSplit    []reconcile.BranchSplit         `json:"branchSplit"`
	Branches       []reconcile.BranchMetric        `json:"branches"`
	LeadsRatio     *models.LeadsRatioReport        `json:"leadsRatio,omitempty"`
	Sampled        bool                            `json:"sampled"`
	Warnings       []string                        `json:"warnings,omitempty"`
}

// Service wires the fetchers, cache and reconciliation together.
type Service struct {
	cfg     *config.Config
	cache   *cache.Service
	logger  *zap.Logger
	metrics *metrics.Metrics

	ads      *fetch.AdMetricsFetcher
	orders   *fetch.SalesOrdersFetcher
	invoices *fetch.InvoiceLinesFetcher
	leads    *fetch.LeadsRatioFetcher
	sampler  *sample.Generator

	retry backoff
	now   func() time.Time
}

// NewService builds the dashboard service around the given fetchers.
func NewService(cfg *config.Config, cacheSvc *cache.Service, client *fetch.Client, logger *zap.Logger, m *metrics.Metrics) *Service {
	return &Service{
		cfg:      cfg,
		cache:    cacheSvc,
		logger:   logger,
		metrics:  m,
		ads:      fetch.NewAdMetricsFetcher(client, cacheSvc, cfg.Sources.AdMetricsURL, logger),
		orders:   fetch.NewSalesOrdersFetcher(client, cacheSvc, cfg.Sources.SalesOrdersURL, logger),
		invoices: fetch.NewInvoiceLinesFetcher(client, cacheSvc, cfg.Sources.InvoiceLinesURL, logger),
		leads:    fetch.NewLeadsRatioFetcher(client, cacheSvc, cfg.Sources.LeadsRatioURL, logger),
		sampler:  sample.NewGenerator(),
		retry:    newBackoff(cfg.Retry.BaseDelay, cfg.Retry.MaxDelay, cfg.Retry.MaxRetries),
		now:      time.Now,
	}
}

// FetchAdMetrics retrieves ad rows with bounded retries. When every
// attempt fails it falls back to generated sample rows so the
// dashboard still renders; the returned flag reports the fallback.
func (s *Service) FetchAdMetrics(ctx context.Context, dr DateRange, opts fetch.Options) ([]models.AdMetricRow, bool) {
	var rows []models.AdMetricRow
	err := s.retry.Do(ctx, func(attempt int) error {
		if attempt > 0 {
			s.metrics.RecordFetchRetry("ad_metrics")
			s.logger.Warn("retrying ad metrics fetch", zap.Int("attempt", attempt))
		}
		var ferr error
		rows, ferr = s.ads.Fetch(ctx, dr.From, dr.To, opts)
		return ferr
	})
	if err == nil {
		return rows, false
	}

	s.logger.Error("ad metrics unavailable, serving sample data", zap.Error(err))
	s.metrics.RecordSampleFallback()
	return s.sampler.Generate(), true
}

// Snapshot assembles the full dashboard for one query. Secondary
// sources degrade independently: a failed sales-order or leads-ratio
// fetch empties that section and adds a warning without failing the
// snapshot.
func (s *Service) Snapshot(ctx context.Context, q Query) (*Snapshot, error) {
	dr, err := ResolveRange(q.Range, q.DateFrom, q.DateTo, s.now(), s.cfg.Location())
	if err != nil {
		return nil, err
	}
	opts := fetch.Options{ForceFresh: q.ForceFresh}

	snap := &Snapshot{DateRange: dr}

	rows, sampled := s.FetchAdMetrics(ctx, dr, opts)
	snap.Sampled = sampled
	if sampled {
		snap.Warnings = append(snap.Warnings, "ad metrics unavailable; showing sample data")
	}

	orders, err := s.orders.Fetch(ctx, dr.From, dr.To, opts)
	if err != nil {
		s.logger.Warn("sales orders unavailable", zap.Error(err))
		snap.Warnings = append(snap.Warnings, "sales orders unavailable")
		orders = nil
	}

	lines, err := s.invoices.Fetch(ctx, opts)
	if err != nil {
		s.logger.Warn("invoice lines unavailable", zap.Error(err))
		snap.Warnings = append(snap.Warnings, "invoice lines unavailable")
		lines = nil
	}

	leads, err := s.leads.Fetch(ctx, dr.From, dr.To, opts)
	if err != nil {
		s.logger.Warn("leads ratio unavailable", zap.Error(err))
		snap.Warnings = append(snap.Warnings, "leads ratio unavailable")
		leads = nil
	}

	filtered := aggregate.FilterByDateRange(rows, dr.From, dr.To)
	snap.ProductOptions = aggregate.ProductOptions(filtered)
	filtered = aggregate.FilterByProducts(filtered, q.Products)
	filtered = aggregate.FilterBySearch(filtered, q.Search)

	dim := aggregate.ParseDimension(q.GroupBy)
	snap.GroupBy = string(dim)
	buckets := aggregate.Group(filtered, dim)
	if q.SortColumn != "" {
		buckets = aggregate.SortBuckets(buckets, q.SortColumn, q.SortDir)
	}
	snap.Buckets = buckets
	snap.Metrics = aggregate.GlobalMetrics(buckets)
	snap.Chart = aggregate.ChartSeries(filtered)

	snap.Attribution = reconcile.CalculateAttribution(orders, snap.Metrics)
	snap.TrafficSources = reconcile.TrafficSourceSummary(orders)
	snap.Products = reconcile.ProductPerformanceData(orders, lines)
	snap.Categories = reconcile.CategoryPerformanceData(snap.Products)

	var ratios []models.BranchRatio
	if leads != nil {
		ratios = leads.Branches
		snap.LeadsRatio = leads
	}
	// Branch allocation distributes the ad platform's own reported
	// revenue; the measured ERP numbers enter through the orders.
	snap.BranchSplit = reconcile.ApplySplitByBranch(snap.Metrics, snap.Metrics.PurchaseValue, ratios)
	snap.Branches = reconcile.BranchMetrics(orders, snap.Metrics, snap.Metrics.PurchaseValue, ratios)

	return snap, nil
}

// LeadsRatio serves the standalone leads-ratio endpoint.
func (s *Service) LeadsRatio(ctx context.Context, q Query) (*models.LeadsRatioReport, error) {
	dr, err := ResolveRange(q.Range, q.DateFrom, q.DateTo, s.now(), s.cfg.Location())
	if err != nil {
		return nil, err
	}
	return s.leads.Fetch(ctx, dr.From, dr.To, fetch.Options{ForceFresh: q.ForceFresh})
}

// Cache exposes the underlying cache service for the admin endpoints.
func (s *Service) Cache() *cache.Service { return s.cache }
