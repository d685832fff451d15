package stats

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/salesdesk/salesdesk/internal/shared"
)

// TotalPrice is the exact sum of unitprice*qty over rows.
func TotalPrice(rows []DetailAmount) decimal.Decimal {
	amounts := make([]decimal.Decimal, 0, len(rows))
	for _, r := range rows {
		amounts = append(amounts, shared.LineAmount(r.UnitPrice, r.Qty))
	}
	return shared.Sum(amounts...)
}

// MonthlyBuckets returns twelve entries, January through December of year,
// each summing the quantity of rows dated in that month. Rows outside year or
// without a date are ignored.
func MonthlyBuckets(year int, rows []MonthlyRow) []MonthlySales {
	out := make([]MonthlySales, 12)
	index := make(map[string]int, 12)
	for m := 0; m < 12; m++ {
		key := fmt.Sprintf("%04d-%02d", year, m+1)
		out[m] = MonthlySales{Month: key}
		index[key] = m
	}
	for _, r := range rows {
		if r.DocDate == nil {
			continue
		}
		key := r.DocDate.Format(shared.DateLayout)[:7]
		if i, ok := index[key]; ok {
			out[i].TotalSales += int64(r.Qty)
		}
	}
	return out
}
