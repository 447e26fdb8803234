package dashboard

import (
	"context"

	"github.com/gustimaulan/fb-marketing-dash/internal/cache"
)

// Column describes one dashboard table column. Fixed columns keep
// their position; the rest can be toggled and reordered.
type Column struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
	Fixed   bool   `json:"fixed"`
	Order   int    `json:"order"`
}

// Preferences is the per-user dashboard state persisted across
// sessions. It never expires in the cache.
type Preferences struct {
	Columns          []Column `json:"columns"`
	GroupBy          string   `json:"groupBy"`
	SelectedProducts []string `json:"selectedProducts"`
	DateRange        string   `json:"dateRange"`
	DateFrom         string   `json:"dateFrom,omitempty"`
	DateTo           string   `json:"dateTo,omitempty"`
	SortColumn       string   `json:"sortColumn"`
	SortDir          string   `json:"sortDir"`
}

// DefaultPreferences returns the initial dashboard state.
func DefaultPreferences() Preferences {
	return Preferences{
		Columns: []Column{
			{Key: "label", Name: "Product", Visible: true, Fixed: true, Order: 0},
			{Key: "spend", Name: "Spend", Visible: true, Order: 1},
			{Key: "reach", Name: "Reach", Visible: true, Order: 2},
			{Key: "impressions", Name: "Impressions", Visible: true, Order: 3},
			{Key: "frequency", Name: "Frequency", Visible: false, Order: 4},
			{Key: "cpm", Name: "CPM", Visible: true, Order: 5},
			{Key: "ctr", Name: "CTR", Visible: true, Order: 6},
			{Key: "conversations", Name: "Conversations", Visible: true, Order: 7},
			{Key: "cost_per_conversation", Name: "Cost / Conversation", Visible: true, Order: 8},
			{Key: "add_to_cart", Name: "Add to Cart", Visible: false, Order: 9},
			{Key: "cost_per_add_to_cart", Name: "Cost / ATC", Visible: false, Order: 10},
			{Key: "purchases", Name: "Purchases", Visible: true, Order: 11},
			{Key: "cost_per_purchase", Name: "Cost / Purchase", Visible: true, Order: 12},
			{Key: "purchase_value", Name: "Purchase Value", Visible: true, Order: 13},
			{Key: "roas", Name: "ROAS", Visible: true, Order: 14},
		},
		GroupBy:    "product",
		DateRange:  RangeToday,
		SortColumn: "spend",
		SortDir:    "desc",
	}
}

// MoveColumn swaps the column at key with its neighbor in the given
// direction ("up" or "down"), skipping over fixed columns. Moving past
// either end is a no-op.
func (p *Preferences) MoveColumn(key, direction string) {
	idx := -1
	for i, c := range p.Columns {
		if c.Key == key {
			idx = i
			break
		}
	}
	if idx < 0 || p.Columns[idx].Fixed {
		return
	}

	step := 1
	if direction == "up" {
		step = -1
	}
	target := idx + step
	for target >= 0 && target < len(p.Columns) && p.Columns[target].Fixed {
		target += step
	}
	if target < 0 || target >= len(p.Columns) {
		return
	}

	p.Columns[idx], p.Columns[target] = p.Columns[target], p.Columns[idx]
	p.Columns[idx].Order, p.Columns[target].Order = p.Columns[target].Order, p.Columns[idx].Order
}

// LoadPreferences fetches saved preferences, falling back to defaults
// when nothing is stored. Preferences never expire.
func LoadPreferences(ctx context.Context, c *cache.Service) Preferences {
	var p Preferences
	if c.Get(ctx, cache.KeyUserPreferences, cache.TTLInfinite, &p) && len(p.Columns) > 0 {
		return p
	}
	return DefaultPreferences()
}

// SavePreferences persists preferences under the well-known key.
func SavePreferences(ctx context.Context, c *cache.Service, p Preferences) {
	c.Set(ctx, cache.KeyUserPreferences, p)
}
