package models

import "strings"

// taxOffsetAccountID is the ERP account whose lines offset tax and
// never represent revenue. Hardcoded to match the ERP chart of
// accounts; known fragility, see DESIGN.md.
const taxOffsetAccountID = "67"

// InvoiceLine is one line item of an invoice from the ERP webhook.
type InvoiceLine struct {
	InvoiceNumber string     `json:"invoice_number"`
	LineName      string     `json:"line_name"`
	Credit        Flex       `json:"credit"`
	Debit         Flex       `json:"debit"`
	AccountID     FlexString `json:"account_id"`
	PartnerName   string     `json:"partner_name"`
	DateCompleted string     `json:"date_completed"`

	// Derived on ingest.
	Revenue         float64 `json:"revenue"`
	NetAmount       float64 `json:"netAmount"`
	ServiceCategory string  `json:"serviceCategory"`
	DisplayName     string  `json:"displayName"`
	IsRevenueLine   bool    `json:"isRevenueLine"`
}

// Enrich populates the derived fields from the raw ones.
func (l *InvoiceLine) Enrich() {
	l.Revenue = l.Credit.Float64()
	l.NetAmount = l.Credit.Float64() - l.Debit.Float64()
	l.ServiceCategory = ServiceCategoryOf(l.LineName)
	l.DisplayName = cleanLineName(l.LineName)
	l.IsRevenueLine = l.isRevenueGenerating()
}

// IsDiscount reports whether this line records a discount. Detection
// keys off the literal substring in the free-text line name; known
// fragility, see DESIGN.md.
func (l InvoiceLine) IsDiscount() bool {
	return strings.Contains(strings.ToLower(l.LineName), "discount")
}

// isRevenueGenerating excludes balancing entries: invoice totals,
// discounts and tax offsets. Everything else with a positive credit is
// revenue.
func (l InvoiceLine) isRevenueGenerating() bool {
	name := strings.ToLower(l.LineName)
	if strings.Contains(name, "inv/") || strings.Contains(name, "invoice") {
		return false
	}
	if strings.Contains(name, "discount") {
		return false
	}
	if l.AccountID.String() == taxOffsetAccountID {
		return false
	}
	return l.Credit.Float64() > 0
}

// ServiceCategoryOf classifies a line name into a service category by
// keyword match (Indonesian and English terms).
func ServiceCategoryOf(lineName string) string {
	if lineName == "" {
		return "Unknown"
	}
	name := strings.ToLower(lineName)
	switch {
	case strings.Contains(name, "analisa"), strings.Contains(name, "cek"), strings.Contains(name, "check"):
		return "Diagnostic Services"
	case strings.Contains(name, "rem"), strings.Contains(name, "brake"):
		return "Brake System"
	case strings.Contains(name, "oli"), strings.Contains(name, "oil"):
		return "Oil & Lubricants"
	case strings.Contains(name, "filter"):
		return "Filters"
	case strings.Contains(name, "kampas"), strings.Contains(name, "pad"):
		return "Brake Pads"
	case strings.Contains(name, "discount"):
		return "Discounts"
	case strings.Contains(name, "kaki"), strings.Contains(name, "suspension"):
		return "Suspension"
	case strings.Contains(name, "engine"), strings.Contains(name, "mesin"):
		return "Engine Services"
	case strings.Contains(name, "inv/"), strings.Contains(name, "invoice"):
		return "Invoice Totals"
	default:
		return "Other Services"
	}
}

func cleanLineName(lineName string) string {
	if lineName == "" {
		return "Unknown"
	}
	return strings.Join(strings.Fields(strings.ReplaceAll(lineName, "\n", " ")), " ")
}
