package stats

import (
	"context"
	"sync/atomic"
	"time"
)

type fakeRepository struct {
	items, customers, sales int64
	amounts                 []DetailAmount
	monthly                 []MonthlyRow
	countErr                error

	loads   atomic.Int32
	gotFrom time.Time
	gotTo   time.Time
}

func (f *fakeRepository) CountItems(context.Context) (int64, error) {
	return f.items, f.countErr
}

func (f *fakeRepository) CountCustomers(context.Context) (int64, error) {
	return f.customers, nil
}

func (f *fakeRepository) CountSales(context.Context) (int64, error) {
	return f.sales, nil
}

func (f *fakeRepository) DetailAmounts(context.Context) ([]DetailAmount, error) {
	f.loads.Add(1)
	return f.amounts, nil
}

func (f *fakeRepository) MonthlyRows(_ context.Context, from, to time.Time) ([]MonthlyRow, error) {
	f.loads.Add(1)
	f.gotFrom, f.gotTo = from, to
	return f.monthly, nil
}

func day(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}
