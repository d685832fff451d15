package stats

import (
	"time"

	"github.com/shopspring/decimal"
)

// GlobalStats summarises every table in storage.
type GlobalStats struct {
	TotalItems     int64       `json:"total_items"`
	TotalCustomers int64       `json:"total_customers"`
	TotalSales     SalesTotals `json:"total_sales"`
}

// SalesTotals counts sales headers and sums detail revenue.
type SalesTotals struct {
	Count      int64           `json:"count"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// MonthlySales is the quantity sold during one calendar month.
type MonthlySales struct {
	Month      string `json:"month"`
	TotalSales int64  `json:"totalSales"`
}

// DetailAmount is the priced part of a detail row.
type DetailAmount struct {
	UnitPrice decimal.Decimal
	Qty       int
}

// MonthlyRow is a detail quantity with the date of its header. DocDate is
// nil when the header could not be resolved.
type MonthlyRow struct {
	DocDate *time.Time
	Qty     int
}
