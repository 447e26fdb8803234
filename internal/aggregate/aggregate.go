package aggregate

import (
	"github.com/gustimaulan/fb-marketing-dash/internal/models"
)

// Dimension selects the grouping key for ad-metric rows.
type Dimension string

const (
	DimensionProduct  Dimension = "product"
	DimensionAdName   Dimension = "ad_name"
	DimensionCampaign Dimension = "campaign"
	DimensionAdset    Dimension = "adset"
	DimensionDate     Dimension = "date"
)

// ParseDimension maps a raw string to a Dimension, defaulting to
// product.
func ParseDimension(s string) Dimension {
	switch Dimension(s) {
	case DimensionAdName, DimensionCampaign, DimensionAdset, DimensionDate:
		return Dimension(s)
	default:
		return DimensionProduct
	}
}

// Bucket is one grouping key's accumulated aggregate. Accumulated
// fields are summed across rows; derived fields are computed once
// after accumulation, never incrementally.
type Bucket struct {
	Label string `json:"label"`

	Spend         float64 `json:"spend"`
	Reach         float64 `json:"reach"`
	Impressions   float64 `json:"impressions"`
	Conversations float64 `json:"conversations"`
	Purchases     float64 `json:"purchases"`
	PurchaseValue float64 `json:"purchase_value"`
	AddToCart     float64 `json:"add_to_cart"`
	Count         int     `json:"count"`

	Frequency           float64 `json:"frequency"`
	CPM                 float64 `json:"cpm"`
	CTR                 float64 `json:"ctr"`
	CostPerConversation float64 `json:"cost_per_conversation"`
	CostPerPurchase     float64 `json:"cost_per_purchase"`
	CostPerAddToCart    float64 `json:"cost_per_add_to_cart"`
	ROAS                float64 `json:"roas"`
}

// Metrics is the dashboard-wide aggregate: the same derived formulas
// applied to the sum of all buckets' accumulated totals. Deriving from
// totals rather than averaging per-bucket ratios keeps the global view
// consistent with the raw rows.
type Metrics struct {
	Spend         float64 `json:"spend"`
	Reach         float64 `json:"reach"`
	Impressions   float64 `json:"impressions"`
	Conversations float64 `json:"conversations"`
	AddToCart     float64 `json:"add_to_cart"`
	Purchases     float64 `json:"purchases"`
	PurchaseValue float64 `json:"purchase_value"`

	Frequency           float64 `json:"frequency"`
	CPM                 float64 `json:"cpm"`
	CTR                 float64 `json:"ctr"`
	CostPerConversation float64 `json:"cost_per_conversation"`
	CostPerAddToCart    float64 `json:"cost_per_add_to_cart"`
	CostPerPurchase     float64 `json:"cost_per_purchase"`
	ROAS                float64 `json:"roas"`
}

// keyOf resolves a row's grouping key for the dimension. Missing
// values map to "Unknown".
func keyOf(row models.AdMetricRow, dim Dimension) string {
	var key string
	switch dim {
	case DimensionAdName:
		key = row.AdName
	case DimensionCampaign:
		key = row.CampaignName
	case DimensionAdset:
		key = row.AdsetName
	case DimensionDate:
		key = row.DateStart
	default:
		return row.ProductName()
	}
	if key == "" {
		return "Unknown"
	}
	return key
}

// Group partitions rows into one bucket per distinct key and computes
// derived metrics per bucket. Bucket order is first-appearance order,
// which keeps output stable for identical input.
func Group(rows []models.AdMetricRow, dim Dimension) []Bucket {
	index := make(map[string]int, len(rows))
	buckets := make([]Bucket, 0)

	for _, row := range rows {
		key := keyOf(row, dim)
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, Bucket{Label: key})
		}
		b := &buckets[i]
		b.Spend += row.Spend.Float64()
		b.Reach += row.Reach.Float64()
		b.Impressions += row.Impressions.Float64()
		b.Conversations += row.Conversations.Float64()
		b.Purchases += row.Purchases.Float64()
		b.PurchaseValue += row.PurchaseValue.Float64()
		b.AddToCart += row.AddToCart.Float64()
		b.Count++
	}

	for i := range buckets {
		buckets[i].derive()
	}
	return buckets
}

// derive computes the ratio metrics. Every zero denominator yields
// exactly 0, never Inf or NaN.
func (b *Bucket) derive() {
	b.Frequency = safeDiv(b.Impressions, b.Reach)
	b.CPM = safeDiv(b.Spend, b.Impressions) * 1000
	b.CTR = safeDiv(b.Conversations, b.Impressions) * 100
	b.CostPerConversation = safeDiv(b.Spend, b.Conversations)
	b.CostPerPurchase = safeDiv(b.Spend, b.Purchases)
	b.CostPerAddToCart = safeDiv(b.Spend, b.AddToCart)
	b.ROAS = safeDiv(b.PurchaseValue, b.Spend)
}

// GlobalMetrics sums bucket totals and derives the dashboard-wide
// ratios from the sums.
func GlobalMetrics(buckets []Bucket) Metrics {
	var m Metrics
	for _, b := range buckets {
		m.Spend += b.Spend
		m.Reach += b.Reach
		m.Impressions += b.Impressions
		m.Conversations += b.Conversations
		m.AddToCart += b.AddToCart
		m.Purchases += b.Purchases
		m.PurchaseValue += b.PurchaseValue
	}
	m.Frequency = safeDiv(m.Impressions, m.Reach)
	m.CPM = safeDiv(m.Spend, m.Impressions) * 1000
	m.CTR = safeDiv(m.Conversations, m.Impressions) * 100
	m.CostPerConversation = safeDiv(m.Spend, m.Conversations)
	m.CostPerAddToCart = safeDiv(m.Spend, m.AddToCart)
	m.CostPerPurchase = safeDiv(m.Spend, m.Purchases)
	m.ROAS = safeDiv(m.PurchaseValue, m.Spend)
	return m
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
