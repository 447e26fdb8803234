package fetch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gustimaulan/fb-marketing-dash/internal/cache"
	"github.com/gustimaulan/fb-marketing-dash/internal/models"
	"go.uber.org/zap"
)

// Options controls cache behavior for a single fetch.
type Options struct {
	// ForceFresh bypasses the persistent cache tier. The dedup
	// window still applies.
	ForceFresh bool
}

const sourceAdMetrics = "ad_metrics"

// AdMetricsFetcher retrieves ad-level daily metrics from the Meta ads
// webhook. Responses are cached under the whole-history dashboard key;
// date filtering happens downstream in the aggregation engine.
type AdMetricsFetcher struct {
	client  *Client
	cache   *cache.Service
	baseURL string
	logger  *zap.Logger
}

// NewAdMetricsFetcher wires an ad-metrics fetcher.
func NewAdMetricsFetcher(client *Client, cacheSvc *cache.Service, baseURL string, logger *zap.Logger) *AdMetricsFetcher {
	return &AdMetricsFetcher{client: client, cache: cacheSvc, baseURL: baseURL, logger: logger}
}

// Fetch returns normalized ad rows for the date range. Tier order:
// dedup window, persistent cache, network. Both cache tiers are
// populated on a successful network fetch.
func (f *AdMetricsFetcher) Fetch(ctx context.Context, dateFrom, dateTo string, opts Options) ([]models.AdMetricRow, error) {
	url := rangedURL(f.baseURL, dateFrom, dateTo)
	dedupKey := fmt.Sprintf("%s|forceFresh=%t", url, opts.ForceFresh)

	if v, ok := f.cache.Dedup.Get(dedupKey); ok {
		if rows, ok := v.([]models.AdMetricRow); ok {
			f.client.metrics.RecordDedupHit(sourceAdMetrics)
			return rows, nil
		}
	}

	if !opts.ForceFresh {
		var rows []models.AdMetricRow
		if f.cache.Get(ctx, cache.KeyPrefixAdMetrics, f.cache.DefaultTTL(), &rows) {
			return rows, nil
		}
	}

	body, err := f.client.getJSON(ctx, sourceAdMetrics, url)
	if err != nil {
		return nil, err
	}

	rows := f.decode(body)

	f.cache.Dedup.Set(dedupKey, rows)
	f.cache.Set(ctx, cache.KeyPrefixAdMetrics, rows)
	return rows, nil
}

// decode unwraps the envelope and normalizes every row: numeric
// coercion happens in the row types, dates collapse to YYYY-MM-DD.
func (f *AdMetricsFetcher) decode(body []byte) []models.AdMetricRow {
	env := decodeEnvelope(body)
	if env.Shape == shapeUnknown {
		f.logger.Warn("unexpected ad-metrics response shape, treating as empty")
		return []models.AdMetricRow{}
	}

	var rows []models.AdMetricRow
	if err := json.Unmarshal(env.Rows, &rows); err != nil {
		f.logger.Warn("ad-metrics rows failed to decode, treating as empty", zap.Error(err))
		return []models.AdMetricRow{}
	}
	for i := range rows {
		rows[i].NormalizeDates()
	}
	return rows
}
