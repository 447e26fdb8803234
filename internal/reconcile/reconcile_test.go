package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gustimaulan/fb-marketing-dash/internal/aggregate"
	"github.com/gustimaulan/fb-marketing-dash/internal/models"
	"github.com/gustimaulan/fb-marketing-dash/internal/reconcile"
)

func order(invoice string, amount float64, source, branch string) models.SalesOrder {
	o := models.SalesOrder{
		InvoiceNumber:  invoice,
		AmountTotal:    models.Flex(amount),
		CustomerSource: models.FlexString(source),
		BranchName:     branch,
	}
	o.Enrich()
	return o
}

func line(invoice, name string, credit, debit float64) models.InvoiceLine {
	l := models.InvoiceLine{
		InvoiceNumber: invoice,
		LineName:      name,
		Credit:        models.Flex(credit),
		Debit:         models.Flex(debit),
	}
	l.Enrich()
	return l
}

func TestCalculateAttribution(t *testing.T) {
	orders := []models.SalesOrder{
		order("INV/1", 600, "fb_ads", "Bandung"),
		order("INV/2", 400, "ig_ads", "Jakarta"),
		order("INV/3", 1000, "walk_in", "Bandung"),
	}
	m := aggregate.Metrics{Spend: 500, Purchases: 4}

	a := reconcile.CalculateAttribution(orders, m)

	assert.Equal(t, 1000.0, a.FbAttributedRevenue)
	assert.Equal(t, 2, a.FbAttributedOrders)
	assert.Equal(t, 500.0, a.AvgOrderValue)
	assert.InDelta(t, 2.0, a.TrueROAS, 1e-9)
	assert.InDelta(t, 0.5, a.ConversionRate, 1e-9)
}

func TestCalculateAttribution_ZeroDenominators(t *testing.T) {
	a := reconcile.CalculateAttribution(nil, aggregate.Metrics{})
	assert.Equal(t, 0.0, a.AvgOrderValue)
	assert.Equal(t, 0.0, a.TrueROAS)
	assert.Equal(t, 0.0, a.ConversionRate)
}

func TestTrafficSourceSummary_CombinesFacebookPlatforms(t *testing.T) {
	orders := []models.SalesOrder{
		order("INV/1", 600, "fb_ads", ""),
		order("INV/2", 400, "ig_ads", ""),
		order("INV/3", 300, "google_ads", ""),
		order("INV/4", 100, "false", ""),
	}

	summary := reconcile.TrafficSourceSummary(orders)
	require.Len(t, summary, 3)

	fb := summary[0]
	assert.Equal(t, "Facebook Advertising", fb.Source)
	assert.Equal(t, 2, fb.Orders)
	assert.Equal(t, 1000.0, fb.Revenue)
	assert.Equal(t, 1, fb.Breakdown["facebook"].Orders)
	assert.Equal(t, 600.0, fb.Breakdown["facebook"].Revenue)
	assert.Equal(t, 400.0, fb.Breakdown["instagram"].Revenue)

	assert.Equal(t, "Google Ads", summary[1].Source)
	assert.Equal(t, "Unknown/Direct", summary[2].Source)
}

func TestTrafficSourceSummary_NoFacebookRowWithoutFacebookOrders(t *testing.T) {
	summary := reconcile.TrafficSourceSummary([]models.SalesOrder{
		order("INV/1", 100, "walk_in", ""),
	})
	require.Len(t, summary, 1)
	assert.Equal(t, "Walk In", summary[0].Source)
}

func TestProductPerformanceData_NetsOutDiscounts(t *testing.T) {
	orders := []models.SalesOrder{
		order("INV/1", 140000, "fb_ads", "Bandung"),
		order("INV/2", 100000, "walk_in", "Jakarta"),
	}
	lines := []models.InvoiceLine{
		line("INV/1", "Ganti Oli", 150000, 0),
		line("INV/1", "Member Discount", 0, 10000),
		line("INV/2", "Ganti Oli", 100000, 0),
		// No matching order: dropped.
		line("INV/9", "Ganti Oli", 999999, 0),
	}

	products := reconcile.ProductPerformanceData(orders, lines)
	require.Len(t, products, 1)

	p := products[0]
	assert.Equal(t, "Ganti Oli", p.LineName)
	assert.Equal(t, 2, p.TotalOrders)
	// 150000-10000 discount on INV/1, plus 100000 on INV/2.
	assert.Equal(t, 240000.0, p.TotalRevenue)
	assert.Equal(t, 1, p.FbAttributedOrders)
	assert.Equal(t, 140000.0, p.FbAttributedRevenue)
	assert.Equal(t, 120000.0, p.AvgOrderValue)
}

func TestProductPerformanceData_SortsByNetRevenueDesc(t *testing.T) {
	orders := []models.SalesOrder{
		order("INV/1", 0, "walk_in", ""),
		order("INV/2", 0, "walk_in", ""),
	}
	lines := []models.InvoiceLine{
		line("INV/1", "Cuci Mobil", 50000, 0),
		line("INV/2", "Ganti Oli", 150000, 0),
	}

	products := reconcile.ProductPerformanceData(orders, lines)
	require.Len(t, products, 2)
	assert.Equal(t, "Ganti Oli", products[0].LineName)
	assert.Equal(t, "Cuci Mobil", products[1].LineName)
}

func TestProductPerformanceData_SkipsNonRevenueLines(t *testing.T) {
	orders := []models.SalesOrder{order("INV/1", 100, "walk_in", "")}
	lines := []models.InvoiceLine{
		line("INV/1", "INV/2025/001", 500000, 0),
		line("INV/1", "Member Discount", 0, 5000),
	}
	assert.Empty(t, reconcile.ProductPerformanceData(orders, lines))
}

func TestCategoryPerformanceData(t *testing.T) {
	orders := []models.SalesOrder{
		order("INV/1", 0, "fb_ads", ""),
		order("INV/2", 0, "walk_in", ""),
	}
	lines := []models.InvoiceLine{
		line("INV/1", "Ganti Oli", 100000, 0),
		line("INV/2", "Oli Gardan", 50000, 0),
		line("INV/2", "Cek Rem", 25000, 0),
	}

	products := reconcile.ProductPerformanceData(orders, lines)
	categories := reconcile.CategoryPerformanceData(products)
	require.Len(t, categories, 2)

	oil := categories[0]
	assert.Equal(t, "Oil & Lubricants", oil.Category)
	assert.Equal(t, 2, oil.TotalProducts)
	assert.Equal(t, 2, oil.TotalOrders)
	assert.Equal(t, 150000.0, oil.TotalRevenue)
	assert.Equal(t, 1, oil.FbAttributedOrders)
	assert.InDelta(t, 50.0, oil.FbAttributionRate, 1e-9)

	assert.Equal(t, "Diagnostic Services", categories[1].Category)
}

func TestApplySplitByBranch(t *testing.T) {
	m := aggregate.Metrics{Spend: 1000}
	branches := []models.BranchRatio{
		{Name: "A", Ratio: 0.6, Total: 60, Purchases: 12},
		{Name: "B", Ratio: 0.4, Total: 40, Purchases: 8},
	}

	splits := reconcile.ApplySplitByBranch(m, 2000, branches)
	require.Len(t, splits, 2)

	a := splits[0]
	assert.Equal(t, "A", a.Branch)
	assert.InDelta(t, 600.0, a.Spend, 1e-9)
	assert.InDelta(t, 1200.0, a.Revenue, 1e-9)
	assert.InDelta(t, 600.0, a.Profit, 1e-9)
	assert.InDelta(t, 2.0, a.ROAS, 1e-9)
	assert.Equal(t, 60, a.Leads)
	assert.InDelta(t, 10.0, a.CostPerLead, 1e-9)
	assert.InDelta(t, 50.0, a.CostPerPurchase, 1e-9)
	assert.InDelta(t, 20.0, a.ConversionRate, 1e-9)
	// (revenue/spend) * (purchases/leads) * 100
	assert.InDelta(t, 2.0*0.2*100, a.EfficiencyScore, 1e-9)

	b := splits[1]
	assert.InDelta(t, 400.0, b.Spend, 1e-9)
	assert.InDelta(t, 800.0, b.Revenue, 1e-9)
	assert.InDelta(t, 2.0, b.ROAS, 1e-9)
}

func TestApplySplitByBranch_ZeroDenominators(t *testing.T) {
	splits := reconcile.ApplySplitByBranch(aggregate.Metrics{}, 0, []models.BranchRatio{
		{Name: "Empty", Ratio: 0.5},
	})
	require.Len(t, splits, 1)
	assert.Equal(t, 0.0, splits[0].ROAS)
	assert.Equal(t, 0.0, splits[0].CostPerLead)
	assert.Equal(t, 0.0, splits[0].EfficiencyScore)
}

func TestBranchMetrics_DualViews(t *testing.T) {
	orders := []models.SalesOrder{
		order("INV/1", 900, "fb_ads", "A"),
		order("INV/2", 300, "ig_ads", "A"),
		order("INV/3", 500, "fb_ads", "B"),
		order("INV/4", 5000, "walk_in", "A"), // not FB-attributed, excluded
	}
	m := aggregate.Metrics{Spend: 1000, Purchases: 10}
	ratios := []models.BranchRatio{
		{Name: "A", Ratio: 0.6},
		{Name: "B", Ratio: 0.4},
	}

	branches := reconcile.BranchMetrics(orders, m, 2000, ratios)
	require.Len(t, branches, 2)

	a := branches[0]
	assert.Equal(t, "A", a.Branch)
	assert.Equal(t, 1200.0, a.SalesOrder.Revenue)
	assert.Equal(t, 2, a.SalesOrder.Orders)
	assert.InDelta(t, 600.0, a.SalesOrder.Spend, 1e-9)
	assert.InDelta(t, 1200.0, a.FbReported.Revenue, 1e-9)
	assert.Equal(t, 6, a.FbReported.Orders)
	// Legacy top-level fields mirror the measured view.
	assert.Equal(t, a.SalesOrder.Revenue, a.Revenue)
	assert.Equal(t, a.SalesOrder.Orders, a.Orders)

	b := branches[1]
	assert.Equal(t, "B", b.Branch)
	assert.Equal(t, 500.0, b.SalesOrder.Revenue)
}

func TestBranchMetrics_ReportedOrdersRound(t *testing.T) {
	orders := []models.SalesOrder{order("INV/1", 100, "fb_ads", "A")}
	m := aggregate.Metrics{Purchases: 3}
	ratios := []models.BranchRatio{{Name: "A", Ratio: 0.6}}

	branches := reconcile.BranchMetrics(orders, m, 0, ratios)
	require.Len(t, branches, 1)
	// 3 * 0.6 = 1.8 rounds to 2, not truncated to 1.
	assert.Equal(t, 2, branches[0].FbReported.Orders)
}

func TestBranchMetrics_EqualSplitFallback(t *testing.T) {
	orders := []models.SalesOrder{
		order("INV/1", 100, "fb_ads", "A"),
		order("INV/2", 200, "fb_ads", "B"),
	}
	m := aggregate.Metrics{Spend: 1000}

	branches := reconcile.BranchMetrics(orders, m, 0, nil)
	require.Len(t, branches, 2)
	for _, b := range branches {
		assert.InDelta(t, 0.5, b.Ratio, 1e-9)
		assert.InDelta(t, 500.0, b.SalesOrder.Spend, 1e-9)
	}
}

func TestBranchMetrics_MissingBranchNameIsUnknown(t *testing.T) {
	orders := []models.SalesOrder{order("INV/1", 100, "fb_ads", "")}
	branches := reconcile.BranchMetrics(orders, aggregate.Metrics{}, 0, nil)
	require.Len(t, branches, 1)
	assert.Equal(t, "Unknown", branches[0].Branch)
}

func TestTotalFbRevenue(t *testing.T) {
	orders := []models.SalesOrder{
		order("INV/1", 100, "fb_ads", ""),
		order("INV/2", 200, "ig_ads", ""),
		order("INV/3", 999, "walk_in", ""),
	}
	assert.Equal(t, 300.0, reconcile.TotalFbRevenue(orders))
}
