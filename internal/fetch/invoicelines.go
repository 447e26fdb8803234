package fetch

import (
	"context"
	"encoding/json"

	"github.com/gustimaulan/fb-marketing-dash/internal/cache"
	"github.com/gustimaulan/fb-marketing-dash/internal/models"
	"go.uber.org/zap"
)

const sourceInvoiceLines = "invoice_lines"

// InvoiceLinesFetcher retrieves invoice line items from the ERP
// webhook. The endpoint serves the whole history, so a single static
// cache key covers it.
type InvoiceLinesFetcher struct {
	client  *Client
	cache   *cache.Service
	baseURL string
	logger  *zap.Logger
}

// NewInvoiceLinesFetcher wires an invoice-line fetcher.
func NewInvoiceLinesFetcher(client *Client, cacheSvc *cache.Service, baseURL string, logger *zap.Logger) *InvoiceLinesFetcher {
	return &InvoiceLinesFetcher{client: client, cache: cacheSvc, baseURL: baseURL, logger: logger}
}

// Fetch returns enriched invoice lines.
func (f *InvoiceLinesFetcher) Fetch(ctx context.Context, opts Options) ([]models.InvoiceLine, error) {
	key := cache.KeyInvoiceLines

	if v, ok := f.cache.Dedup.Get(key); ok {
		if lines, ok := v.([]models.InvoiceLine); ok {
			f.client.metrics.RecordDedupHit(sourceInvoiceLines)
			return lines, nil
		}
	}

	if !opts.ForceFresh {
		var lines []models.InvoiceLine
		if f.cache.Get(ctx, key, f.cache.DefaultTTL(), &lines) {
			return lines, nil
		}
	}

	body, err := f.client.getJSON(ctx, sourceInvoiceLines, f.baseURL)
	if err != nil {
		return nil, err
	}

	lines := f.decode(body)

	f.cache.Dedup.Set(key, lines)
	f.cache.Set(ctx, key, lines)
	return lines, nil
}

func (f *InvoiceLinesFetcher) decode(body []byte) []models.InvoiceLine {
	env := decodeEnvelope(body)
	if env.Shape == shapeUnknown {
		f.logger.Warn("unexpected invoice-line response shape, treating as empty")
		return []models.InvoiceLine{}
	}

	var lines []models.InvoiceLine
	if err := json.Unmarshal(env.Rows, &lines); err != nil {
		f.logger.Warn("invoice-line rows failed to decode, treating as empty", zap.Error(err))
		return []models.InvoiceLine{}
	}
	for i := range lines {
		lines[i].Enrich()
	}
	return lines
}
