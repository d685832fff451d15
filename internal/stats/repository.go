package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/salesdesk/salesdesk/internal/platform/db"
)

// Repository reads the raw rows the aggregates are built from.
type Repository interface {
	CountItems(ctx context.Context) (int64, error)
	CountCustomers(ctx context.Context) (int64, error)
	CountSales(ctx context.Context) (int64, error)
	DetailAmounts(ctx context.Context) ([]DetailAmount, error)
	MonthlyRows(ctx context.Context, from, to time.Time) ([]MonthlyRow, error)
}

type repository struct {
	db db.DBTX
}

// NewRepository returns a pgx backed Repository.
func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

func (r *repository) CountItems(ctx context.Context) (int64, error) {
	return r.count(ctx, "master_item")
}

func (r *repository) CountCustomers(ctx context.Context) (int64, error) {
	return r.count(ctx, "master_customer")
}

func (r *repository) CountSales(ctx context.Context) (int64, error) {
	return r.count(ctx, "sales_header")
}

func (r *repository) count(ctx context.Context, table string) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// DetailAmounts loads every detail row. There is no paging here.
func (r *repository) DetailAmounts(ctx context.Context) ([]DetailAmount, error) {
	rows, err := r.db.Query(ctx, `SELECT unitprice, qty FROM sales_detail`)
	if err != nil {
		return nil, fmt.Errorf("load sales detail: %w", err)
	}
	defer rows.Close()

	var out []DetailAmount
	for rows.Next() {
		var a DetailAmount
		if err := rows.Scan(&a.UnitPrice, &a.Qty); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// MonthlyRows returns detail quantities whose header date is within
// [from, to], both inclusive.
func (r *repository) MonthlyRows(ctx context.Context, from, to time.Time) ([]MonthlyRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT h.docdate, d.qty
		FROM sales_detail d
		LEFT JOIN sales_header h ON h.docno = d.docno
		WHERE h.docdate >= $1 AND h.docdate <= $2
		ORDER BY d.lineid`, from, to)
	if err != nil {
		return nil, fmt.Errorf("load monthly sales: %w", err)
	}
	defer rows.Close()

	var out []MonthlyRow
	for rows.Next() {
		var row MonthlyRow
		if err := rows.Scan(&row.DocDate, &row.Qty); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
