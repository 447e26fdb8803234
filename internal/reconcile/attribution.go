package reconcile

import (
	"sort"

	"github.com/gustimaulan/fb-marketing-dash/internal/aggregate"
	"github.com/gustimaulan/fb-marketing-dash/internal/models"
)

// AttributionMetrics ties Facebook-attributed ERP revenue back to the
// ad spend reported by Meta.
type AttributionMetrics struct {
	FbAttributedRevenue float64 `json:"fbAttributedRevenue"`
	FbAttributedOrders  int     `json:"fbAttributedOrders"`
	AvgOrderValue       float64 `json:"avgOrderValue"`
	TrueROAS            float64 `json:"trueROAS"`
	ConversionRate      float64 `json:"conversionRate"`
}

// FbAttributedOrders returns only orders tagged fb_ads or ig_ads.
func FbAttributedOrders(orders []models.SalesOrder) []models.SalesOrder {
	out := make([]models.SalesOrder, 0, len(orders))
	for _, o := range orders {
		if o.IsFromFbAds {
			out = append(out, o)
		}
	}
	return out
}

// CalculateAttribution computes attribution metrics from sales orders
// against the global ad metrics. TrueROAS uses measured order revenue
// over reported spend; ConversionRate is orders per reported purchase.
func CalculateAttribution(orders []models.SalesOrder, m aggregate.Metrics) AttributionMetrics {
	revenue := TotalFbRevenue(orders)
	count := len(FbAttributedOrders(orders))

	return AttributionMetrics{
		FbAttributedRevenue: revenue,
		FbAttributedOrders:  count,
		AvgOrderValue:       safeDiv(revenue, float64(count)),
		TrueROAS:            safeDiv(revenue, m.Spend),
		ConversionRate:      safeDiv(float64(count), m.Purchases),
	}
}

// SourceBreakdown is the per-platform split inside the combined
// Facebook Advertising summary row.
type SourceBreakdown struct {
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// TrafficSource is one row of the traffic-source summary.
type TrafficSource struct {
	Source        string                     `json:"source"`
	Orders        int                        `json:"orders"`
	Revenue       float64                    `json:"revenue"`
	AvgOrderValue float64                    `json:"avgOrderValue"`
	Breakdown     map[string]SourceBreakdown `json:"breakdown,omitempty"`
}

// TrafficSourceSummary groups orders by source tag, folding fb_ads and
// ig_ads into a single "Facebook Advertising" row with a per-platform
// breakdown. Rows sort by revenue descending.
func TrafficSourceSummary(orders []models.SalesOrder) []TrafficSource {
	type acc struct {
		orders  int
		revenue float64
	}
	bySource := make(map[string]*acc)
	order := make([]string, 0)

	for _, o := range orders {
		source := o.CustomerSource.String()
		if source == "" {
			source = "unknown"
		}
		a, ok := bySource[source]
		if !ok {
			a = &acc{}
			bySource[source] = a
			order = append(order, source)
		}
		a.orders++
		a.revenue += o.OrderValue
	}

	summary := make([]TrafficSource, 0, len(bySource))

	fb := bySource[models.SourceFacebook]
	ig := bySource[models.SourceInstagram]
	if fb == nil {
		fb = &acc{}
	}
	if ig == nil {
		ig = &acc{}
	}
	if fb.orders > 0 || ig.orders > 0 {
		totalOrders := fb.orders + ig.orders
		totalRevenue := fb.revenue + ig.revenue
		summary = append(summary, TrafficSource{
			Source:        "Facebook Advertising",
			Orders:        totalOrders,
			Revenue:       totalRevenue,
			AvgOrderValue: safeDiv(totalRevenue, float64(totalOrders)),
			Breakdown: map[string]SourceBreakdown{
				"facebook":  {Orders: fb.orders, Revenue: fb.revenue},
				"instagram": {Orders: ig.orders, Revenue: ig.revenue},
			},
		})
	}

	for _, source := range order {
		if models.IsFacebookSource(source) {
			continue
		}
		a := bySource[source]
		summary = append(summary, TrafficSource{
			Source:        models.DisplaySource(source),
			Orders:        a.orders,
			Revenue:       a.revenue,
			AvgOrderValue: safeDiv(a.revenue, float64(a.orders)),
		})
	}

	sort.SliceStable(summary, func(i, j int) bool {
		return summary[i].Revenue > summary[j].Revenue
	})
	return summary
}

// TotalFbRevenue sums order values for Facebook-attributed orders.
func TotalFbRevenue(orders []models.SalesOrder) float64 {
	var total float64
	for _, o := range orders {
		if o.IsFromFbAds {
			total += o.OrderValue
		}
	}
	return total
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
