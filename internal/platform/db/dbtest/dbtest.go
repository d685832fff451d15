// Package dbtest provides a db.DBTX double for repository tests that need
// the query surface but no server.
package dbtest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Table answers every QueryRow with Count (for COUNT(*) queries) and every
// Query with no rows. It records the arguments of each Query call.
type Table struct {
	Count int

	mu        sync.Mutex
	queryArgs [][]any
}

// QueryArgs returns the arguments passed to Query, in call order.
func (t *Table) QueryArgs() [][]any {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([][]any(nil), t.queryArgs...)
}

func (t *Table) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag("OK"), nil
}

func (t *Table) Query(_ context.Context, _ string, args ...any) (pgx.Rows, error) {
	t.mu.Lock()
	t.queryArgs = append(t.queryArgs, args)
	t.mu.Unlock()
	return &emptyRows{}, nil
}

func (t *Table) QueryRow(context.Context, string, ...any) pgx.Row {
	return countRow(t.Count)
}

func (t *Table) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults {
	return emptyBatch{}
}

type countRow int

func (c countRow) Scan(dest ...any) error {
	if len(dest) != 1 {
		return pgx.ErrNoRows
	}
	switch d := dest[0].(type) {
	case *int:
		*d = int(c)
	case *int64:
		*d = int64(c)
	default:
		return fmt.Errorf("dbtest: unsupported scan target %T", dest[0])
	}
	return nil
}

type emptyRows struct {
	closed bool
}

func (r *emptyRows) Close()                                       { r.closed = true }
func (r *emptyRows) Err() error                                   { return nil }
func (r *emptyRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT 0") }
func (r *emptyRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *emptyRows) Next() bool                                   { return false }
func (r *emptyRows) Scan(...any) error                            { return errors.New("dbtest: no row") }
func (r *emptyRows) Values() ([]any, error)                       { return nil, errors.New("dbtest: no row") }
func (r *emptyRows) RawValues() [][]byte                          { return nil }
func (r *emptyRows) Conn() *pgx.Conn                              { return nil }

type emptyBatch struct{}

func (emptyBatch) Exec() (pgconn.CommandTag, error) { return pgconn.NewCommandTag("INSERT 0 1"), nil }
func (emptyBatch) Query() (pgx.Rows, error)         { return &emptyRows{}, nil }
func (emptyBatch) QueryRow() pgx.Row                { return countRow(0) }
func (emptyBatch) Close() error                     { return nil }
