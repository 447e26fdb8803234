package sample_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gustimaulan/fb-marketing-dash/internal/sample"
)

func fixedNow() time.Time {
	return time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)
}

func TestGenerate_ShapeAndTagging(t *testing.T) {
	g := sample.NewGenerator(sample.WithNow(fixedNow), sample.WithSeed(1))
	rows := g.Generate()

	require.Len(t, rows, 200)
	for _, r := range rows {
		assert.True(t, r.Sampled)
		assert.NotEmpty(t, r.AdName)
		assert.NotEmpty(t, r.CampaignName)
		assert.Equal(t, r.DateStart, r.DateStop)
		// Every ad name follows the Prefix_Product_Price convention.
		assert.NotEqual(t, "Unknown", r.ProductName())
	}
}

func TestGenerate_PinsRecentRows(t *testing.T) {
	g := sample.NewGenerator(sample.WithNow(fixedNow), sample.WithSeed(1))
	rows := g.Generate()

	today, yesterday := 0, 0
	for _, r := range rows[:60] {
		switch r.DateStart {
		case "2025-06-20":
			today++
		case "2025-06-19":
			yesterday++
		}
	}
	assert.Equal(t, 30, today)
	assert.Equal(t, 30, yesterday)
}

func TestGenerate_DatesWithinWindow(t *testing.T) {
	g := sample.NewGenerator(sample.WithNow(fixedNow), sample.WithSeed(7))
	rows := g.Generate()

	low := "2025-03-22"  // 90 days back
	high := "2025-07-20" // 30 days ahead
	for _, r := range rows {
		assert.GreaterOrEqual(t, r.DateStart, low)
		assert.LessOrEqual(t, r.DateStart, high)
	}
}

func TestGenerate_DeterministicWithSeed(t *testing.T) {
	a := sample.NewGenerator(sample.WithNow(fixedNow), sample.WithSeed(42)).Generate()
	b := sample.NewGenerator(sample.WithNow(fixedNow), sample.WithSeed(42)).Generate()
	assert.Equal(t, a, b)
}
