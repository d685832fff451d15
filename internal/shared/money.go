package shared

import "github.com/shopspring/decimal"

func init() {
	// Amounts are encoded as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Sum adds a slice of amounts.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// LineAmount returns unitPrice multiplied by qty.
func LineAmount(unitPrice decimal.Decimal, qty int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(qty)))
}
