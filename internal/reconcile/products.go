package reconcile

import (
	"sort"

	"github.com/gustimaulan/fb-marketing-dash/internal/models"
)

// ProductOrder is one invoice's contribution to a product, retained
// for drill-down views.
type ProductOrder struct {
	InvoiceNumber  string  `json:"invoiceNumber"`
	PartnerName    string  `json:"partnerName"`
	DateCompleted  string  `json:"dateCompleted"`
	Amount         float64 `json:"amount"`
	IsFromFbAds    bool    `json:"isFromFbAds"`
	BranchName     string  `json:"branchName"`
	CustomerSource string  `json:"customerSource"`
}

// ProductPerformance aggregates invoice-line revenue per logical
// product (grouped by raw line name), net of per-invoice discounts.
type ProductPerformance struct {
	LineName            string         `json:"lineName"`
	DisplayName         string         `json:"displayName"`
	ServiceCategory     string         `json:"serviceCategory"`
	TotalOrders         int            `json:"totalOrders"`
	TotalRevenue        float64        `json:"totalRevenue"` // net of discounts
	TotalQuantity       int            `json:"totalQuantity"`
	AvgOrderValue       float64        `json:"avgOrderValue"`
	FbAttributedOrders  int            `json:"fbAttributedOrders"`
	FbAttributedRevenue float64        `json:"fbAttributedRevenue"` // net of discounts
	InvoiceNumbers      []string       `json:"invoiceNumbers"`
	Orders              []ProductOrder `json:"orders"`
}

// ProductPerformanceData joins sales orders to invoice lines by
// invoice number. Only revenue-generating lines with a matching order
// count; lines without an order are dropped. Discounts are summed per
// invoice from discount-named lines' debits, and each invoice's
// discount is subtracted once from that invoice's gross revenue.
// Results sort by net revenue descending.
func ProductPerformanceData(orders []models.SalesOrder, lines []models.InvoiceLine) []ProductPerformance {
	orderByInvoice := make(map[string]models.SalesOrder, len(orders))
	for _, o := range orders {
		if o.InvoiceNumber != "" {
			orderByInvoice[o.InvoiceNumber] = o
		}
	}

	discountByInvoice := make(map[string]float64)
	for _, l := range lines {
		if l.IsDiscount() {
			if d := l.Debit.Float64(); d > 0 {
				discountByInvoice[l.InvoiceNumber] += d
			}
		}
	}

	type productAcc struct {
		perf         ProductPerformance
		grossByInvoice map[string]float64
		seenInvoices map[string]struct{}
	}
	byProduct := make(map[string]*productAcc)
	productOrder := make([]string, 0)

	for _, line := range lines {
		order, ok := orderByInvoice[line.InvoiceNumber]
		if !ok {
			continue
		}
		if !line.IsRevenueLine {
			continue
		}

		key := line.LineName
		if key == "" {
			key = "Unknown"
		}
		acc, ok := byProduct[key]
		if !ok {
			acc = &productAcc{
				perf: ProductPerformance{
					LineName:        line.LineName,
					DisplayName:     line.DisplayName,
					ServiceCategory: line.ServiceCategory,
				},
				grossByInvoice: make(map[string]float64),
				seenInvoices:   make(map[string]struct{}),
			}
			byProduct[key] = acc
			productOrder = append(productOrder, key)
		}

		if _, seen := acc.seenInvoices[line.InvoiceNumber]; !seen {
			acc.seenInvoices[line.InvoiceNumber] = struct{}{}
			acc.perf.TotalOrders++
			acc.perf.InvoiceNumbers = append(acc.perf.InvoiceNumbers, line.InvoiceNumber)
			if order.IsFromFbAds {
				acc.perf.FbAttributedOrders++
			}
		}

		acc.grossByInvoice[line.InvoiceNumber] += line.Revenue
		acc.perf.TotalQuantity++
		acc.perf.Orders = append(acc.perf.Orders, ProductOrder{
			InvoiceNumber:  line.InvoiceNumber,
			PartnerName:    line.PartnerName,
			DateCompleted:  line.DateCompleted,
			Amount:         line.Revenue,
			IsFromFbAds:    order.IsFromFbAds,
			BranchName:     order.BranchName,
			CustomerSource: order.CustomerSource.String(),
		})
	}

	result := make([]ProductPerformance, 0, len(byProduct))
	for _, key := range productOrder {
		acc := byProduct[key]

		var netRevenue, fbNetRevenue float64
		for _, invoice := range acc.perf.InvoiceNumbers {
			net := acc.grossByInvoice[invoice] - discountByInvoice[invoice]
			netRevenue += net
			if order, ok := orderByInvoice[invoice]; ok && order.IsFromFbAds {
				fbNetRevenue += net
			}
		}

		acc.perf.TotalRevenue = netRevenue
		acc.perf.FbAttributedRevenue = fbNetRevenue
		acc.perf.AvgOrderValue = safeDiv(netRevenue, float64(acc.perf.TotalOrders))
		result = append(result, acc.perf)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TotalRevenue > result[j].TotalRevenue
	})
	return result
}

// CategoryPerformance rolls product performance up to service
// categories.
type CategoryPerformance struct {
	Category            string  `json:"category"`
	TotalProducts       int     `json:"totalProducts"`
	TotalOrders         int     `json:"totalOrders"`
	TotalRevenue        float64 `json:"totalRevenue"`
	AvgOrderValue       float64 `json:"avgOrderValue"`
	FbAttributedOrders  int     `json:"fbAttributedOrders"`
	FbAttributedRevenue float64 `json:"fbAttributedRevenue"`
	FbAttributionRate   float64 `json:"fbAttributionRate"` // percent of orders
}

// CategoryPerformanceData aggregates product rows per service
// category, sorted by revenue descending.
func CategoryPerformanceData(products []ProductPerformance) []CategoryPerformance {
	byCategory := make(map[string]*CategoryPerformance)
	categoryOrder := make([]string, 0)

	for _, p := range products {
		c, ok := byCategory[p.ServiceCategory]
		if !ok {
			c = &CategoryPerformance{Category: p.ServiceCategory}
			byCategory[p.ServiceCategory] = c
			categoryOrder = append(categoryOrder, p.ServiceCategory)
		}
		c.TotalProducts++
		c.TotalOrders += p.TotalOrders
		c.TotalRevenue += p.TotalRevenue
		c.FbAttributedOrders += p.FbAttributedOrders
		c.FbAttributedRevenue += p.FbAttributedRevenue
	}

	result := make([]CategoryPerformance, 0, len(byCategory))
	for _, key := range categoryOrder {
		c := byCategory[key]
		c.AvgOrderValue = safeDiv(c.TotalRevenue, float64(c.TotalOrders))
		c.FbAttributionRate = safeDiv(float64(c.FbAttributedOrders), float64(c.TotalOrders)) * 100
		result = append(result, *c)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TotalRevenue > result[j].TotalRevenue
	})
	return result
}
