package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salesdesk/salesdesk/internal/platform/db"
	"github.com/salesdesk/salesdesk/internal/platform/httpx"
)

// Repository defines persistence for sales headers and their detail lines.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	List(ctx context.Context, limit, offset int) ([]ListRow, int, error)
	Get(ctx context.Context, docNo int64) (*JoinResult, error)
	InsertHeader(ctx context.Context, docDate time.Time, customerID int64) (SalesHeader, error)
	UpdateHeader(ctx context.Context, docNo int64, docDate time.Time, customerID int64) (*SalesHeader, error)
	DeleteLines(ctx context.Context, docNo int64) error
	InsertLines(ctx context.Context, docNo int64, lines []LineInput) error
	Delete(ctx context.Context, docNo int64) error
}

type repository struct {
	db   db.DBTX
	pool *pgxpool.Pool
}

// NewRepository returns a pgx backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

// WithTx runs fn against a transaction-bound repository. Calls made on a
// repository that is already inside a transaction reuse it.
func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	if r.pool == nil {
		return fn(ctx, r)
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx})
	})
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]ListRow, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM sales_header`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sales: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT h.docno, h.docdate, h.customerid, c.customerid, c.custname
		FROM sales_header h
		LEFT JOIN master_customer c ON c.customerid = h.customerid
		ORDER BY h.docno
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	out := make([]ListRow, 0)
	for rows.Next() {
		var (
			h          SalesHeader
			joinedID   *int64
			joinedName *string
		)
		if err := rows.Scan(&h.DocNo, &h.DocDate.Time, &h.CustomerID, &joinedID, &joinedName); err != nil {
			return nil, 0, err
		}
		out = append(out, ToListRow(h, customerRef(joinedID, joinedName)))
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, docNo int64) (*JoinResult, error) {
	var (
		res        JoinResult
		joinedID   *int64
		joinedName *string
	)
	err := r.db.QueryRow(ctx, `
		SELECT h.docno, h.docdate, h.customerid, c.customerid, c.custname
		FROM sales_header h
		LEFT JOIN master_customer c ON c.customerid = h.customerid
		WHERE h.docno = $1`, docNo).
		Scan(&res.Header.DocNo, &res.Header.DocDate.Time, &res.Header.CustomerID, &joinedID, &joinedName)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, httpx.ErrNotFound
		}
		return nil, fmt.Errorf("get sales header: %w", err)
	}
	res.Customer = customerRef(joinedID, joinedName)

	rows, err := r.db.Query(ctx, `
		SELECT d.lineid, d.itemid, d.unitprice, d.qty, i.itemid, i.itemname
		FROM sales_detail d
		LEFT JOIN master_item i ON i.itemid = d.itemid
		WHERE d.docno = $1
		ORDER BY d.lineid`, docNo)
	if err != nil {
		return nil, fmt.Errorf("get sales detail: %w", err)
	}
	defer rows.Close()

	res.Details = make([]DetailRow, 0)
	for rows.Next() {
		var (
			d        DetailRow
			itemID   *int64
			itemName *string
		)
		if err := rows.Scan(&d.LineID, &d.ItemID, &d.UnitPrice, &d.Qty, &itemID, &itemName); err != nil {
			return nil, err
		}
		if itemID != nil {
			d.Item = &ItemRef{ItemID: *itemID}
			if itemName != nil {
				d.Item.ItemName = *itemName
			}
		}
		res.Details = append(res.Details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *repository) InsertHeader(ctx context.Context, docDate time.Time, customerID int64) (SalesHeader, error) {
	h := SalesHeader{CustomerID: &customerID}
	err := r.db.QueryRow(ctx, `
		INSERT INTO sales_header (docdate, customerid)
		VALUES ($1, $2)
		RETURNING docno, docdate`, docDate, customerID).Scan(&h.DocNo, &h.DocDate.Time)
	return h, err
}

// UpdateHeader returns nil without error when docNo does not exist.
func (r *repository) UpdateHeader(ctx context.Context, docNo int64, docDate time.Time, customerID int64) (*SalesHeader, error) {
	var h SalesHeader
	err := r.db.QueryRow(ctx, `
		UPDATE sales_header SET docdate = $2, customerid = $3
		WHERE docno = $1
		RETURNING docno, docdate, customerid`, docNo, docDate, customerID).
		Scan(&h.DocNo, &h.DocDate.Time, &h.CustomerID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &h, nil
}

func (r *repository) DeleteLines(ctx context.Context, docNo int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sales_detail WHERE docno = $1`, docNo)
	return err
}

// InsertLines writes all lines in one round trip, preserving their order.
func (r *repository) InsertLines(ctx context.Context, docNo int64, lines []LineInput) error {
	if len(lines) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, l := range lines {
		batch.Queue(`INSERT INTO sales_detail (docno, itemid, unitprice, qty) VALUES ($1, $2, $3, $4)`,
			docNo, l.ItemID, *l.UnitPrice, l.Qty)
	}
	br := r.db.SendBatch(ctx, batch)
	for range lines {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return err
		}
	}
	return br.Close()
}

func (r *repository) Delete(ctx context.Context, docNo int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sales_header WHERE docno = $1`, docNo)
	return err
}

func customerRef(id *int64, name *string) *CustomerRef {
	if id == nil {
		return nil
	}
	ref := &CustomerRef{CustomerID: *id}
	if name != nil {
		ref.CustName = *name
	}
	return ref
}
