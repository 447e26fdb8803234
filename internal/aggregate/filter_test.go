package aggregate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gustimaulan/fb-marketing-dash/internal/aggregate"
	"github.com/gustimaulan/fb-marketing-dash/internal/models"
)

func dated(ad, date string) models.AdMetricRow {
	return models.AdMetricRow{AdName: ad, DateStart: date, DateStop: date}
}

func TestFilterByDateRange(t *testing.T) {
	rows := []models.AdMetricRow{
		dated("a", "2025-06-01"),
		dated("b", "2025-06-15T17:00:00.000Z"),
		dated("c", "2025-06-30"),
		dated("d", ""),
	}

	got := aggregate.FilterByDateRange(rows, "2025-06-10", "2025-06-20")
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].AdName)
}

func TestFilterByDateRange_InclusiveBounds(t *testing.T) {
	rows := []models.AdMetricRow{
		dated("a", "2025-06-10"),
		dated("b", "2025-06-20"),
	}
	got := aggregate.FilterByDateRange(rows, "2025-06-10", "2025-06-20")
	assert.Len(t, got, 2)
}

func TestFilterByDateRange_EmptyBoundDisables(t *testing.T) {
	rows := []models.AdMetricRow{dated("a", "2025-06-01"), dated("b", "")}
	assert.Equal(t, rows, aggregate.FilterByDateRange(rows, "", "2025-06-20"))
	assert.Equal(t, rows, aggregate.FilterByDateRange(rows, "2025-06-01", ""))
}

func TestFilterByProducts(t *testing.T) {
	rows := []models.AdMetricRow{
		dated("Poster_Oil Change_99 Ribu", "2025-06-01"),
		dated("Video_Tune Up_199 Ribu", "2025-06-01"),
	}

	got := aggregate.FilterByProducts(rows, []string{"Tune Up"})
	require.Len(t, got, 1)
	assert.Equal(t, "Video_Tune Up_199 Ribu", got[0].AdName)

	// Empty selection keeps everything.
	assert.Len(t, aggregate.FilterByProducts(rows, nil), 2)
}

func TestFilterBySearch(t *testing.T) {
	rows := []models.AdMetricRow{
		{CampaignName: "Campaign 1", AdsetName: "Adset Oil", AdName: "Poster_Oil_99"},
		{CampaignName: "Campaign 2", AdsetName: "Adset Brake", AdName: "Video_Brake_199"},
	}

	assert.Len(t, aggregate.FilterBySearch(rows, "BRAKE"), 1)
	assert.Len(t, aggregate.FilterBySearch(rows, "campaign"), 2)
	assert.Len(t, aggregate.FilterBySearch(rows, "  "), 2)
	assert.Empty(t, aggregate.FilterBySearch(rows, "nope"))
}

func TestProductOptions(t *testing.T) {
	rows := []models.AdMetricRow{
		dated("Poster_Tune Up_99", "2025-06-01"),
		dated("Banner_Oil Change_199", "2025-06-01"),
		dated("Video_Oil Change_299", "2025-06-01"),
		dated("", "2025-06-01"),
	}

	assert.Equal(t, []string{"Oil Change", "Tune Up"}, aggregate.ProductOptions(rows))
}

func TestChartSeries(t *testing.T) {
	rows := []models.AdMetricRow{
		{DateStart: "2025-06-01", Spend: 10, Purchases: 1},
		{DateStart: "2025-06-01", Spend: 20, Purchases: 2},
		{DateStart: "2025-06-02", Spend: 5},
	}

	series := aggregate.ChartSeries(rows)
	require.Len(t, series, 2)
	assert.Equal(t, 30.0, series["2025-06-01"].Spend)
	assert.Equal(t, 3.0, series["2025-06-01"].Purchases)
	assert.Equal(t, 5.0, series["2025-06-02"].Spend)
}

func TestSortState_Toggle(t *testing.T) {
	s := aggregate.SortState{Column: "spend", Direction: aggregate.SortDesc}

	s.Toggle("spend")
	assert.Equal(t, aggregate.SortAsc, s.Direction)

	s.Toggle("spend")
	assert.Equal(t, aggregate.SortDesc, s.Direction)

	s.Toggle("roas")
	assert.Equal(t, "roas", s.Column)
	assert.Equal(t, aggregate.SortAsc, s.Direction)
}

func TestSortBuckets(t *testing.T) {
	buckets := []aggregate.Bucket{
		{Label: "b", Spend: 10},
		{Label: "A", Spend: 30},
		{Label: "c", Spend: 20},
	}

	bySpend := aggregate.SortBuckets(buckets, "spend", aggregate.SortDesc)
	assert.Equal(t, []float64{30, 20, 10}, []float64{bySpend[0].Spend, bySpend[1].Spend, bySpend[2].Spend})

	byLabel := aggregate.SortBuckets(buckets, "label", aggregate.SortAsc)
	assert.Equal(t, []string{"A", "b", "c"}, []string{byLabel[0].Label, byLabel[1].Label, byLabel[2].Label})

	// Input order untouched.
	assert.Equal(t, "b", buckets[0].Label)
}
