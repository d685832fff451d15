package items

import (
	"context"
	"fmt"

	"github.com/salesdesk/salesdesk/internal/platform/db"
	"github.com/salesdesk/salesdesk/internal/platform/httpx"
)

// Repository defines persistence for master_item.
type Repository interface {
	List(ctx context.Context, limit, offset int) ([]Item, int, error)
	Get(ctx context.Context, id int64) (*Item, error)
	Create(ctx context.Context, name string) (*Item, error)
	Update(ctx context.Context, id int64, name string) (*Item, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db db.DBTX
}

// NewRepository returns a pgx backed Repository.
func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]Item, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM master_item`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count items: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT itemid, itemname
		FROM master_item
		ORDER BY itemid
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	out := make([]Item, 0)
	for rows.Next() {
		var c Item
		if err := rows.Scan(&c.ItemID, &c.ItemName); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Item, error) {
	var c Item
	err := r.db.QueryRow(ctx, `SELECT itemid, itemname FROM master_item WHERE itemid = $1`, id).
		Scan(&c.ItemID, &c.ItemName)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) Create(ctx context.Context, name string) (*Item, error) {
	c := Item{ItemName: name}
	if err := r.db.QueryRow(ctx, `INSERT INTO master_item (itemname) VALUES ($1) RETURNING itemid`, name).
		Scan(&c.ItemID); err != nil {
		return nil, err
	}
	return &c, nil
}

// Update returns nil without error when no row has the given id.
func (r *repository) Update(ctx context.Context, id int64, name string) (*Item, error) {
	var c Item
	err := r.db.QueryRow(ctx, `
		UPDATE master_item SET itemname = $2
		WHERE itemid = $1
		RETURNING itemid, itemname`, id, name).Scan(&c.ItemID, &c.ItemName)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM master_item WHERE itemid = $1`, id)
	return err
}
