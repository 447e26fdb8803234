package models

import "strings"

// Traffic source tags used by the ERP. fb_ads and ig_ads both denote
// Facebook-origin traffic and are treated as one logical source in
// every attribution computation.
const (
	SourceFacebook  = "fb_ads"
	SourceInstagram = "ig_ads"
)

// SalesOrder is one completed transaction from the ERP webhook.
type SalesOrder struct {
	InvoiceNumber  string     `json:"invoice_number"`
	AmountTotal    Flex       `json:"amount_total"`
	DateCompleted  string     `json:"date_completed"`
	CustomerSource FlexString `json:"customer_sumber_info"`
	BranchName     string     `json:"branch_name"`
	PartnerName    string     `json:"partner_name"`

	// Derived on ingest.
	OrderValue       float64 `json:"orderValue"`
	IsFromFbAds      bool    `json:"isFromFbAds"`
	OrderDate        string  `json:"orderDate"`
	NormalizedSource string  `json:"normalizedSource"`
}

// Enrich populates the derived fields from the raw ones.
func (o *SalesOrder) Enrich() {
	o.OrderValue = o.AmountTotal.Float64()
	o.IsFromFbAds = IsFacebookSource(o.CustomerSource.String())
	o.OrderDate = NormalizeDate(o.DateCompleted)
	o.NormalizedSource = normalizeSource(o.CustomerSource.String())
}

// IsFacebookSource reports whether a customer source tag denotes
// Facebook advertising, on either platform.
func IsFacebookSource(source string) bool {
	return source == SourceFacebook || source == SourceInstagram
}

func normalizeSource(source string) string {
	switch source {
	case SourceInstagram:
		return "Facebook (Instagram)"
	case SourceFacebook:
		return "Facebook (Facebook)"
	case "":
		return "unknown"
	default:
		return source
	}
}

// DisplaySource renders a non-Facebook source tag for reporting:
// underscores become spaces and words are title-cased. The literal
// "false" shows up in exports for untagged orders.
func DisplaySource(source string) string {
	if source == "false" || source == "" {
		return "Unknown/Direct"
	}
	words := strings.Split(strings.ReplaceAll(source, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
