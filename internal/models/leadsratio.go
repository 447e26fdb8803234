package models

import "time"

// BranchRatio is one branch's share of total leads for a date range.
// Ratios across branches need not sum to exactly 1; the source rounds
// percentages independently.
type BranchRatio struct {
	Name          string  `json:"name"`
	Total         int     `json:"total"`
	Percentage    float64 `json:"percentage"`
	Ratio         float64 `json:"ratio"`
	Purchases     int     `json:"purchases"`
	LastCreatedAt string  `json:"lastCreatedAt,omitempty"`
}

// LeadsRatioReport is the processed leads-ratio dataset for one date
// range.
type LeadsRatioReport struct {
	Branches       []BranchRatio `json:"branches"`
	TotalLeads     int           `json:"totalLeads"`
	TotalPurchases int           `json:"totalPurchases"`
	LastUpdated    string        `json:"lastUpdated"`
}

// RawBranchRow mirrors the wire shape of one leads-ratio record.
type RawBranchRow struct {
	LabelGroup    string `json:"label_group"`
	Total         Flex   `json:"total"`
	Percentage    Flex   `json:"percentage"`
	Purchase      Flex   `json:"purchase"`
	LastCreatedAt string `json:"last_created_at"`
}

// BuildLeadsRatioReport converts raw branch rows into the processed
// report, deriving ratio = percentage/100 and report-level totals. The
// report timestamp is the most recent last_created_at seen, or now.
func BuildLeadsRatioReport(rows []RawBranchRow, now time.Time) *LeadsRatioReport {
	report := &LeadsRatioReport{Branches: make([]BranchRatio, 0, len(rows))}

	var mostRecent time.Time
	for _, row := range rows {
		pct := row.Percentage.Float64()
		branch := BranchRatio{
			Name:          row.LabelGroup,
			Total:         row.Total.Int(),
			Percentage:    pct,
			Ratio:         pct / 100,
			Purchases:     row.Purchase.Int(),
			LastCreatedAt: row.LastCreatedAt,
		}
		report.Branches = append(report.Branches, branch)
		report.TotalLeads += branch.Total
		report.TotalPurchases += branch.Purchases

		if row.LastCreatedAt != "" {
			if t, err := time.Parse(time.RFC3339, row.LastCreatedAt); err == nil && t.After(mostRecent) {
				mostRecent = t
			}
		}
	}

	if mostRecent.IsZero() {
		mostRecent = now
	}
	report.LastUpdated = mostRecent.UTC().Format(time.RFC3339)
	return report
}
