// Package sample generates placeholder ad-metric rows for when the
// live ads webhook is unreachable. The rows look like real API output
// so every downstream computation still exercises its full path, and
// each row carries a Sampled tag the dashboard surfaces as a warning.
package sample

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/gustimaulan/fb-marketing-dash/internal/models"
)

const rowCount = 200

var (
	products  = []string{"Tune Up", "Oil Change", "AC Service", "Brake Service", "Car Wash"}
	prefixes  = []string{"Poster", "Banner", "Video", "Story", "Carousel"}
	prices    = []string{"99 Ribu", "199 Ribu", "299 Ribu", "399 Ribu", "499 Ribu"}
	campaigns = []string{"Campaign 1", "Campaign 2", "Campaign 3"}
)

// Generator produces sampled ad-metric datasets. The clock and RNG are
// injectable so tests get stable output.
type Generator struct {
	now func() time.Time
	rng *rand.Rand
}

// Option configures a Generator.
type Option func(*Generator)

// WithNow replaces the wall clock.
func WithNow(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithSeed makes generation deterministic.
func WithSeed(seed int64) Option {
	return func(g *Generator) { g.rng = rand.New(rand.NewSource(seed)) }
}

// NewGenerator returns a Generator seeded from the current time.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		now: time.Now,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds 200 placeholder rows spanning 90 days back to 30
// days ahead. The first 60 rows alternate between today and yesterday
// so a default "today" view always has data to show.
func (g *Generator) Generate() []models.AdMetricRow {
	now := g.now()
	today := isoDate(now)
	yesterday := isoDate(now.AddDate(0, 0, -1))

	start := now.AddDate(0, 0, -90)
	end := now.AddDate(0, 0, 30)
	dates := make([]string, 0, 121)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, isoDate(d))
	}

	rows := make([]models.AdMetricRow, 0, rowCount)
	for i := 0; i < rowCount; i++ {
		var date string
		switch {
		case i < 60 && i%2 == 0:
			date = today
		case i < 60:
			date = yesterday
		default:
			date = dates[g.rng.Intn(len(dates))]
		}

		product := products[g.rng.Intn(len(products))]
		prefix := prefixes[g.rng.Intn(len(prefixes))]
		price := prices[g.rng.Intn(len(prices))]

		row := models.AdMetricRow{
			CampaignName:  campaigns[g.rng.Intn(len(campaigns))],
			AdsetName:     fmt.Sprintf("Adset %s %d", product, i+1),
			AdName:        fmt.Sprintf("%s_%s_%s", prefix, product, price),
			Spend:         models.Flex(g.rng.Float64() * 1000000),
			Reach:         models.Flex(g.rng.Intn(10000)),
			Impressions:   models.Flex(g.rng.Intn(50000)),
			Frequency:     models.Flex(g.rng.Float64() * 3),
			CPM:           models.Flex(g.rng.Float64() * 50000),
			Conversations: models.Flex(g.rng.Intn(100)),
			Purchases:     models.Flex(g.rng.Intn(50)),
			PurchaseValue: models.Flex(g.rng.Float64() * 5000000),
			AddToCart:     models.Flex(g.rng.Intn(200)),
			DateStart:     date,
			DateStop:      date,
			Sampled:       true,
		}
		row.NormalizeDates()
		rows = append(rows, row)
	}
	return rows
}

// isoDate renders a day the way the ads API does, date at 17:00 UTC.
func isoDate(t time.Time) string {
	return t.Format("2006-01-02") + "T17:00:00.000Z"
}
