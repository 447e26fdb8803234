package reconcile

import (
	"math"
	"sort"

	"github.com/gustimaulan/fb-marketing-dash/internal/aggregate"
	"github.com/gustimaulan/fb-marketing-dash/internal/models"
)

// BranchSplit is the ratio view: global ad performance allocated to a
// branch in proportion to its share of leads.
type BranchSplit struct {
	Branch             string  `json:"branch"`
	Ratio              float64 `json:"ratio"`
	Spend              float64 `json:"spend"`
	Revenue            float64 `json:"revenue"`
	Profit             float64 `json:"profit"`
	ROAS               float64 `json:"roas"`
	Leads              int     `json:"leads"`
	Purchases          int     `json:"purchases"`
	CostPerLead        float64 `json:"cost_per_lead"`
	CostPerPurchase    float64 `json:"cost_per_purchase"`
	ConversionRate     float64 `json:"conversion_rate"`
	RevenuePerLead     float64 `json:"revenue_per_lead"`
	RevenuePerPurchase float64 `json:"revenue_per_purchase"`
	EfficiencyScore    float64 `json:"efficiency_score"`
}

// ApplySplitByBranch allocates global spend and the ad platform's
// reported revenue across branches by their leads ratio. Leads and
// purchases are the branch's own observed counts, not allocations.
// Ratios come from independently rounded percentages and need not sum
// to 1, so the allocated totals can drift slightly from the global
// figures.
func ApplySplitByBranch(m aggregate.Metrics, reportedRevenue float64, branches []models.BranchRatio) []BranchSplit {
	splits := make([]BranchSplit, 0, len(branches))
	for _, b := range branches {
		spend := m.Spend * b.Ratio
		revenue := reportedRevenue * b.Ratio
		s := BranchSplit{
			Branch:             b.Name,
			Ratio:              b.Ratio,
			Spend:              spend,
			Revenue:            revenue,
			Profit:             revenue - spend,
			ROAS:               safeDiv(revenue, spend),
			Leads:              b.Total,
			Purchases:          b.Purchases,
			CostPerLead:        safeDiv(spend, float64(b.Total)),
			CostPerPurchase:    safeDiv(spend, float64(b.Purchases)),
			ConversionRate:     safeDiv(float64(b.Purchases), float64(b.Total)) * 100,
			RevenuePerLead:     safeDiv(revenue, float64(b.Total)),
			RevenuePerPurchase: safeDiv(revenue, float64(b.Purchases)),
		}
		s.EfficiencyScore = safeDiv(revenue, spend) * safeDiv(float64(b.Purchases), float64(b.Total)) * 100
		splits = append(splits, s)
	}
	return splits
}

// BranchView is one side of the dual branch report: either the
// ratio-allocated (fb_reported) or the measured (sales_order) numbers.
type BranchView struct {
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
	Spend   float64 `json:"spend"`
	Profit  float64 `json:"profit"`
	ROAS    float64 `json:"roas"`
}

// BranchMetric reports one branch under both attribution views. The
// top-level fields mirror the measured view for callers that predate
// the split.
type BranchMetric struct {
	Branch     string     `json:"branch"`
	Ratio      float64    `json:"ratio"`
	FbReported BranchView `json:"fb_reported"`
	SalesOrder BranchView `json:"sales_order"`

	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
	Spend   float64 `json:"spend"`
	Profit  float64 `json:"profit"`
	ROAS    float64 `json:"roas"`
}

// BranchMetrics groups FB-attributed orders by branch and reports each
// branch under two views: fb_reported allocates the ad platform's
// reported revenue and spend by leads ratio, sales_order uses the
// revenue the ERP actually recorded against that branch. When no
// leads-ratio data covers a branch the spend falls back to an equal
// split across the observed branches. Sorted by measured revenue
// descending.
func BranchMetrics(orders []models.SalesOrder, m aggregate.Metrics, reportedRevenue float64, branches []models.BranchRatio) []BranchMetric {
	type measured struct {
		revenue float64
		orders  int
	}
	byBranch := make(map[string]*measured)
	branchOrder := make([]string, 0)
	for _, o := range orders {
		if !o.IsFromFbAds {
			continue
		}
		name := o.BranchName
		if name == "" {
			name = "Unknown"
		}
		acc, ok := byBranch[name]
		if !ok {
			acc = &measured{}
			byBranch[name] = acc
			branchOrder = append(branchOrder, name)
		}
		acc.revenue += o.OrderValue
		acc.orders++
	}

	ratioByBranch := make(map[string]models.BranchRatio, len(branches))
	for _, b := range branches {
		ratioByBranch[b.Name] = b
	}
	equalShare := 0.0
	if len(branchOrder) > 0 {
		equalShare = 1.0 / float64(len(branchOrder))
	}

	result := make([]BranchMetric, 0, len(branchOrder))
	for _, name := range branchOrder {
		acc := byBranch[name]

		ratio := equalShare
		if b, ok := ratioByBranch[name]; ok {
			ratio = b.Ratio
		}

		spend := m.Spend * ratio

		reported := BranchView{
			Revenue: reportedRevenue * ratio,
			Orders:  int(math.Round(m.Purchases * ratio)),
			Spend:   spend,
		}
		reported.Profit = reported.Revenue - reported.Spend
		reported.ROAS = safeDiv(reported.Revenue, reported.Spend)

		actual := BranchView{
			Revenue: acc.revenue,
			Orders:  acc.orders,
			Spend:   spend,
		}
		actual.Profit = actual.Revenue - actual.Spend
		actual.ROAS = safeDiv(actual.Revenue, actual.Spend)

		result = append(result, BranchMetric{
			Branch:     name,
			Ratio:      ratio,
			FbReported: reported,
			SalesOrder: actual,
			Revenue:    actual.Revenue,
			Orders:     actual.Orders,
			Spend:      actual.Spend,
			Profit:     actual.Profit,
			ROAS:       actual.ROAS,
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].SalesOrder.Revenue > result[j].SalesOrder.Revenue
	})
	return result
}
