package fetch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gustimaulan/fb-marketing-dash/internal/cache"
	"github.com/gustimaulan/fb-marketing-dash/internal/models"
	"go.uber.org/zap"
)

const sourceLeadsRatio = "leads_ratio"

// LeadsRatioFetcher retrieves the per-branch lead split for a date
// range. Unlike the other sources this endpoint has a strict contract:
// an array holding one {status, data} object, where a non-200 status
// is a hard failure rather than a shape to recover from. There is no
// sample fallback for leads data.
type LeadsRatioFetcher struct {
	client  *Client
	cache   *cache.Service
	baseURL string
	logger  *zap.Logger
}

// NewLeadsRatioFetcher wires a leads-ratio fetcher.
func NewLeadsRatioFetcher(client *Client, cacheSvc *cache.Service, baseURL string, logger *zap.Logger) *LeadsRatioFetcher {
	return &LeadsRatioFetcher{client: client, cache: cacheSvc, baseURL: baseURL, logger: logger}
}

// Fetch returns the processed leads-ratio report for the date range.
func (f *LeadsRatioFetcher) Fetch(ctx context.Context, dateFrom, dateTo string, opts Options) (*models.LeadsRatioReport, error) {
	key := cache.RangedKey(cache.KeyPrefixLeadsRatio, dateFrom, dateTo)

	if v, ok := f.cache.Dedup.Get(key); ok {
		if report, ok := v.(*models.LeadsRatioReport); ok {
			f.client.metrics.RecordDedupHit(sourceLeadsRatio)
			return report, nil
		}
	}

	if !opts.ForceFresh {
		var report models.LeadsRatioReport
		if f.cache.Get(ctx, key, f.cache.DefaultTTL(), &report) {
			return &report, nil
		}
	}

	body, err := f.client.getJSON(ctx, sourceLeadsRatio, rangedURL(f.baseURL, dateFrom, dateTo))
	if err != nil {
		f.cache.Dedup.Delete(key)
		return nil, err
	}

	report, err := f.decode(body)
	if err != nil {
		f.cache.Dedup.Delete(key)
		return nil, err
	}

	f.cache.Dedup.Set(key, report)
	f.cache.Set(ctx, key, report)
	return report, nil
}

func (f *LeadsRatioFetcher) decode(body []byte) (*models.LeadsRatioReport, error) {
	env := decodeEnvelope(body)
	if env.Shape == shapeUnknown {
		return nil, fmt.Errorf("leads-ratio response has unrecognized shape")
	}
	if env.Shape == shapeStatusWrapped && env.Status != 200 {
		return nil, fmt.Errorf("leads-ratio API returned status %d: %s", env.Status, env.Message)
	}

	var rows []models.RawBranchRow
	if err := json.Unmarshal(env.Rows, &rows); err != nil {
		return nil, fmt.Errorf("leads-ratio rows failed to decode: %w", err)
	}

	report := models.BuildLeadsRatioReport(rows, f.client.now())
	f.logger.Debug("processed leads ratio",
		zap.Int("branches", len(report.Branches)),
		zap.Int("total_leads", report.TotalLeads),
	)
	return report, nil
}
