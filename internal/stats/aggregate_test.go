package stats

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthlyBucketsEmptyYear(t *testing.T) {
	got := MonthlyBuckets(2023, nil)
	require.Len(t, got, 12)
	for i, entry := range got {
		assert.Equal(t, fmt.Sprintf("2023-%02d", i+1), entry.Month)
		assert.Zero(t, entry.TotalSales)
	}
}

func TestMonthlyBucketsSumsQuantity(t *testing.T) {
	rows := []MonthlyRow{
		{DocDate: day("2024-01-31"), Qty: 2},
		{DocDate: day("2024-01-01"), Qty: 3},
		{DocDate: day("2024-12-31"), Qty: 7},
		{DocDate: nil, Qty: 100},
		{DocDate: day("2025-01-01"), Qty: 50},
	}
	got := MonthlyBuckets(2024, rows)
	assert.Equal(t, MonthlySales{Month: "2024-01", TotalSales: 5}, got[0])
	assert.Equal(t, MonthlySales{Month: "2024-12", TotalSales: 7}, got[11])
	var sum int64
	for _, e := range got {
		sum += e.TotalSales
	}
	assert.Equal(t, int64(12), sum)
}

func TestTotalPriceIsExact(t *testing.T) {
	rows := []DetailAmount{
		{UnitPrice: decimal.RequireFromString("0.10"), Qty: 3},
		{UnitPrice: decimal.RequireFromString("19.99"), Qty: 7},
		{UnitPrice: decimal.NewFromInt(5), Qty: 0},
	}
	assert.Equal(t, "140.23", TotalPrice(rows).StringFixed(2))
	assert.True(t, TotalPrice(nil).IsZero())
}
