package fetch

import (
	"context"
	"encoding/json"

	"github.com/gustimaulan/fb-marketing-dash/internal/cache"
	"github.com/gustimaulan/fb-marketing-dash/internal/models"
	"go.uber.org/zap"
)

const sourceSalesOrders = "sales_orders"

// SalesOrdersFetcher retrieves completed transactions from the ERP
// webhook, keyed per date range.
type SalesOrdersFetcher struct {
	client  *Client
	cache   *cache.Service
	baseURL string
	logger  *zap.Logger
}

// NewSalesOrdersFetcher wires a sales-order fetcher.
func NewSalesOrdersFetcher(client *Client, cacheSvc *cache.Service, baseURL string, logger *zap.Logger) *SalesOrdersFetcher {
	return &SalesOrdersFetcher{client: client, cache: cacheSvc, baseURL: baseURL, logger: logger}
}

// Fetch returns enriched sales orders for the date range.
func (f *SalesOrdersFetcher) Fetch(ctx context.Context, dateFrom, dateTo string, opts Options) ([]models.SalesOrder, error) {
	key := cache.RangedKey(cache.KeyPrefixSalesOrders, dateFrom, dateTo)

	if v, ok := f.cache.Dedup.Get(key); ok {
		if orders, ok := v.([]models.SalesOrder); ok {
			f.client.metrics.RecordDedupHit(sourceSalesOrders)
			return orders, nil
		}
	}

	if !opts.ForceFresh {
		var orders []models.SalesOrder
		if f.cache.Get(ctx, key, f.cache.DefaultTTL(), &orders) {
			return orders, nil
		}
	}

	body, err := f.client.getJSON(ctx, sourceSalesOrders, rangedURL(f.baseURL, dateFrom, dateTo))
	if err != nil {
		return nil, err
	}

	orders := f.decode(body)

	f.cache.Dedup.Set(key, orders)
	f.cache.Set(ctx, key, orders)
	return orders, nil
}

func (f *SalesOrdersFetcher) decode(body []byte) []models.SalesOrder {
	env := decodeEnvelope(body)
	if env.Shape == shapeUnknown {
		f.logger.Warn("unexpected sales-order response shape, treating as empty")
		return []models.SalesOrder{}
	}

	var orders []models.SalesOrder
	if err := json.Unmarshal(env.Rows, &orders); err != nil {
		f.logger.Warn("sales-order rows failed to decode, treating as empty", zap.Error(err))
		return []models.SalesOrder{}
	}
	for i := range orders {
		orders[i].Enrich()
	}
	return orders
}
