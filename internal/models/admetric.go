package models

import "strings"

// AdMetricRow is one ad-level daily record from the Meta ads webhook.
// Numeric fields are coerced on ingest and are never NaN.
type AdMetricRow struct {
	CampaignName string `json:"campaign_name"`
	AdsetName    string `json:"adset_name"`
	AdName       string `json:"ad_name"`

	Spend       Flex `json:"spend"`
	Reach       Flex `json:"reach"`
	Impressions Flex `json:"impressions"`
	Frequency   Flex `json:"frequency"`
	CPM         Flex `json:"cpm"`

	// Conversations maps the legacy field name
	// onsite_conversion.messaging_conversation_started_7d.
	Conversations       Flex `json:"messaging_conversation_started_7d"`
	CostPerConversation Flex `json:"cost_per_messaging_conversation_started_7d"`

	Purchases       Flex `json:"purchase"`
	PurchaseValue   Flex `json:"purchase_value"`
	AddToCart       Flex `json:"add_to_cart"`
	CostPerPurchase Flex `json:"cost_per_purchase"`
	CostPerATC      Flex `json:"cost_per_add_to_cart"`

	// DateStart / DateStop are normalized to YYYY-MM-DD on ingest.
	DateStart string `json:"date_start"`
	DateStop  string `json:"date_stop"`

	// Sampled marks rows produced by the fallback generator rather
	// than the live API.
	Sampled bool `json:"sampled,omitempty"`
}

// ProductName extracts the product encoded in the ad name. Ad names
// follow Prefix_Product_Price; with fewer than three tokens the whole
// name is the product, and a missing ad name maps to "Unknown".
func (r AdMetricRow) ProductName() string {
	return ExtractProductName(r.AdName)
}

// ExtractProductName implements the ad-name product convention for any
// raw ad name string.
func ExtractProductName(adName string) string {
	if adName == "" {
		return "Unknown"
	}
	parts := strings.Split(adName, "_")
	if len(parts) >= 3 {
		return strings.TrimSpace(parts[1])
	}
	return adName
}

// NormalizeDates rewrites both date fields to the canonical YYYY-MM-DD
// form used by the date-range filter.
func (r *AdMetricRow) NormalizeDates() {
	r.DateStart = NormalizeDate(r.DateStart)
	r.DateStop = NormalizeDate(r.DateStop)
}
