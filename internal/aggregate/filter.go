package aggregate

import (
	"sort"
	"strings"

	"github.com/gustimaulan/fb-marketing-dash/internal/models"
)

// FilterByDateRange keeps rows whose (normalized) start date lies in
// [startDate, endDate], inclusive. An empty bound disables filtering.
func FilterByDateRange(rows []models.AdMetricRow, startDate, endDate string) []models.AdMetricRow {
	if len(rows) == 0 || startDate == "" || endDate == "" {
		return rows
	}
	out := make([]models.AdMetricRow, 0, len(rows))
	for _, row := range rows {
		d := models.NormalizeDate(row.DateStart)
		if d == "" {
			continue
		}
		if d >= startDate && d <= endDate {
			out = append(out, row)
		}
	}
	return out
}

// FilterByProducts keeps rows whose extracted product name is in the
// selection. An empty selection is a no-op, not an empty result: a
// cleared multi-select must not blank the dashboard.
func FilterByProducts(rows []models.AdMetricRow, selected []string) []models.AdMetricRow {
	if len(rows) == 0 || len(selected) == 0 {
		return rows
	}
	want := make(map[string]struct{}, len(selected))
	for _, p := range selected {
		want[p] = struct{}{}
	}
	out := make([]models.AdMetricRow, 0, len(rows))
	for _, row := range rows {
		if _, ok := want[row.ProductName()]; ok {
			out = append(out, row)
		}
	}
	return out
}

// FilterBySearch keeps rows whose campaign, adset or ad name contains
// the query, case-insensitively.
func FilterBySearch(rows []models.AdMetricRow, query string) []models.AdMetricRow {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return rows
	}
	out := make([]models.AdMetricRow, 0, len(rows))
	for _, row := range rows {
		if strings.Contains(strings.ToLower(row.CampaignName), query) ||
			strings.Contains(strings.ToLower(row.AdsetName), query) ||
			strings.Contains(strings.ToLower(row.AdName), query) {
			out = append(out, row)
		}
	}
	return out
}

// ProductOptions lists the distinct product names present in rows,
// sorted, with the "Unknown" placeholder excluded.
func ProductOptions(rows []models.AdMetricRow) []string {
	seen := make(map[string]struct{})
	for _, row := range rows {
		name := row.ProductName()
		if name == "Unknown" {
			continue
		}
		seen[name] = struct{}{}
	}
	options := make([]string, 0, len(seen))
	for name := range seen {
		options = append(options, name)
	}
	sort.Strings(options)
	return options
}

// ChartPoint is one per-date data point for the spend/outcome chart.
type ChartPoint struct {
	Spend         float64 `json:"spend"`
	Conversations float64 `json:"conversations"`
	Purchases     float64 `json:"purchases"`
	PurchaseValue float64 `json:"purchase_value"`
}

// ChartSeries aggregates rows per start date for charting.
func ChartSeries(rows []models.AdMetricRow) map[string]ChartPoint {
	series := make(map[string]ChartPoint)
	for _, row := range rows {
		date := row.DateStart
		if date == "" {
			date = "Unknown"
		}
		p := series[date]
		p.Spend += row.Spend.Float64()
		p.Conversations += row.Conversations.Float64()
		p.Purchases += row.Purchases.Float64()
		p.PurchaseValue += row.PurchaseValue.Float64()
		series[date] = p
	}
	return series
}
