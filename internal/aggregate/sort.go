package aggregate

import (
	"sort"
	"strings"
)

// Sort directions.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// SortState tracks the active sort column and direction.
type SortState struct {
	Column    string `json:"column"`
	Direction string `json:"direction"`
}

// Toggle flips direction when column is already active, and resets to
// ascending when a new column is selected.
func (s *SortState) Toggle(column string) {
	if s.Column == column {
		if s.Direction == SortAsc {
			s.Direction = SortDesc
		} else {
			s.Direction = SortAsc
		}
		return
	}
	s.Column = column
	s.Direction = SortAsc
}

// SortBuckets returns a stably sorted copy of buckets by the given
// column. String columns compare case-insensitively. Unknown columns
// leave the order untouched.
func SortBuckets(buckets []Bucket, column, direction string) []Bucket {
	out := make([]Bucket, len(buckets))
	copy(out, buckets)
	if column == "" {
		return out
	}

	desc := direction == SortDesc
	sort.SliceStable(out, func(i, j int) bool {
		less := bucketLess(out[i], out[j], column)
		if desc {
			return bucketLess(out[j], out[i], column)
		}
		return less
	})
	return out
}

func bucketLess(a, b Bucket, column string) bool {
	if column == "label" {
		return strings.ToLower(a.Label) < strings.ToLower(b.Label)
	}
	return numericColumn(a, column) < numericColumn(b, column)
}

func numericColumn(b Bucket, column string) float64 {
	switch column {
	case "spend":
		return b.Spend
	case "reach":
		return b.Reach
	case "impressions":
		return b.Impressions
	case "frequency":
		return b.Frequency
	case "cpm":
		return b.CPM
	case "ctr":
		return b.CTR
	case "conversations":
		return b.Conversations
	case "cost_per_conversation":
		return b.CostPerConversation
	case "add_to_cart":
		return b.AddToCart
	case "cost_per_add_to_cart":
		return b.CostPerAddToCart
	case "purchases":
		return b.Purchases
	case "cost_per_purchase":
		return b.CostPerPurchase
	case "purchase_value":
		return b.PurchaseValue
	case "roas":
		return b.ROAS
	case "count":
		return float64(b.Count)
	default:
		return 0
	}
}
