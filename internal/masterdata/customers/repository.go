package customers

import (
	"context"
	"fmt"

	"github.com/salesdesk/salesdesk/internal/platform/db"
	"github.com/salesdesk/salesdesk/internal/platform/httpx"
)

// Repository defines persistence for master_customer.
type Repository interface {
	List(ctx context.Context, limit, offset int) ([]Customer, int, error)
	Get(ctx context.Context, id int64) (*Customer, error)
	Create(ctx context.Context, name string) (*Customer, error)
	Update(ctx context.Context, id int64, name string) (*Customer, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db db.DBTX
}

// NewRepository returns a pgx backed Repository.
func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]Customer, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM master_customer`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT customerid, custname
		FROM master_customer
		ORDER BY customerid
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	out := make([]Customer, 0)
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.CustomerID, &c.CustName); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Customer, error) {
	var c Customer
	err := r.db.QueryRow(ctx, `SELECT customerid, custname FROM master_customer WHERE customerid = $1`, id).
		Scan(&c.CustomerID, &c.CustName)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) Create(ctx context.Context, name string) (*Customer, error) {
	c := Customer{CustName: name}
	if err := r.db.QueryRow(ctx, `INSERT INTO master_customer (custname) VALUES ($1) RETURNING customerid`, name).
		Scan(&c.CustomerID); err != nil {
		return nil, err
	}
	return &c, nil
}

// Update returns nil without error when no row has the given id.
func (r *repository) Update(ctx context.Context, id int64, name string) (*Customer, error) {
	var c Customer
	err := r.db.QueryRow(ctx, `
		UPDATE master_customer SET custname = $2
		WHERE customerid = $1
		RETURNING customerid, custname`, id, name).Scan(&c.CustomerID, &c.CustName)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM master_customer WHERE customerid = $1`, id)
	return err
}
