package dashboard_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gustimaulan/fb-marketing-dash/internal/cache"
	"github.com/gustimaulan/fb-marketing-dash/internal/dashboard"
)

func columnKeys(cols []dashboard.Column) []string {
	keys := make([]string, len(cols))
	for i, c := range cols {
		keys[i] = c.Key
	}
	return keys
}

func TestDefaultPreferences(t *testing.T) {
	p := dashboard.DefaultPreferences()
	require.NotEmpty(t, p.Columns)
	assert.Equal(t, "label", p.Columns[0].Key)
	assert.True(t, p.Columns[0].Fixed)
	assert.Equal(t, "product", p.GroupBy)
	assert.Equal(t, dashboard.RangeToday, p.DateRange)
}

func TestPreferences_MoveColumn(t *testing.T) {
	p := dashboard.Preferences{Columns: []dashboard.Column{
		{Key: "label", Fixed: true, Order: 0},
		{Key: "spend", Order: 1},
		{Key: "reach", Order: 2},
	}}

	p.MoveColumn("reach", "up")
	assert.Equal(t, []string{"label", "reach", "spend"}, columnKeys(p.Columns))
	// Order values travel with the swap.
	assert.Equal(t, 1, p.Columns[1].Order)
	assert.Equal(t, 2, p.Columns[2].Order)

	p.MoveColumn("reach", "down")
	assert.Equal(t, []string{"label", "spend", "reach"}, columnKeys(p.Columns))
}

func TestPreferences_MoveColumnSkipsFixed(t *testing.T) {
	p := dashboard.Preferences{Columns: []dashboard.Column{
		{Key: "spend", Order: 0},
		{Key: "label", Fixed: true, Order: 1},
		{Key: "reach", Order: 2},
	}}

	// reach moves up over the fixed label column, swapping with spend.
	p.MoveColumn("reach", "up")
	assert.Equal(t, []string{"reach", "label", "spend"}, columnKeys(p.Columns))
}

func TestPreferences_MoveColumnEdges(t *testing.T) {
	p := dashboard.Preferences{Columns: []dashboard.Column{
		{Key: "label", Fixed: true},
		{Key: "spend"},
		{Key: "reach"},
	}}

	before := columnKeys(p.Columns)

	p.MoveColumn("spend", "up")
	assert.Equal(t, before, columnKeys(p.Columns), "moving past a fixed head is a no-op")

	p.MoveColumn("reach", "down")
	assert.Equal(t, before, columnKeys(p.Columns), "moving past the end is a no-op")

	p.MoveColumn("label", "down")
	assert.Equal(t, before, columnKeys(p.Columns), "fixed columns never move")

	p.MoveColumn("missing", "up")
	assert.Equal(t, before, columnKeys(p.Columns))
}

func TestPreferences_PersistRoundTrip(t *testing.T) {
	svc := cache.NewService(cache.NewMemoryStore(), 4*time.Hour, zap.NewNop())
	ctx := context.Background()

	// Nothing stored yet: defaults.
	p := dashboard.LoadPreferences(ctx, svc)
	assert.Equal(t, dashboard.DefaultPreferences(), p)

	p.GroupBy = "campaign"
	p.SelectedProducts = []string{"Oil Change"}
	dashboard.SavePreferences(ctx, svc, p)

	got := dashboard.LoadPreferences(ctx, svc)
	assert.Equal(t, "campaign", got.GroupBy)
	assert.Equal(t, []string{"Oil Change"}, got.SelectedProducts)
}
