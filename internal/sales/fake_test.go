package sales

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/salesdesk/salesdesk/internal/platform/httpx"
	"github.com/salesdesk/salesdesk/internal/shared"
)

type memLine struct {
	lineID int64
	input  LineInput
}

type memState struct {
	headers   map[int64]SalesHeader
	lines     map[int64][]memLine
	nextDocNo int64
	nextLine  int64
}

func (s memState) clone() memState {
	out := memState{
		headers:   make(map[int64]SalesHeader, len(s.headers)),
		lines:     make(map[int64][]memLine, len(s.lines)),
		nextDocNo: s.nextDocNo,
		nextLine:  s.nextLine,
	}
	for k, v := range s.headers {
		out.headers[k] = v
	}
	for k, v := range s.lines {
		out.lines[k] = append([]memLine(nil), v...)
	}
	return out
}

// memRepository keeps sales in maps and emulates transactions by
// snapshotting state and restoring it when the callback fails.
type memRepository struct {
	mu        sync.Mutex
	state     memState
	customers map[int64]string
	items     map[int64]string

	insertLinesErr error
	listErr        error
	txCalls        int
}

func newMemRepository() *memRepository {
	return &memRepository{
		state:     memState{headers: map[int64]SalesHeader{}, lines: map[int64][]memLine{}, nextDocNo: 1, nextLine: 1},
		customers: map[int64]string{},
		items:     map[int64]string{},
	}
}

func (m *memRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	m.mu.Lock()
	m.txCalls++
	snapshot := m.state.clone()
	m.mu.Unlock()

	if err := fn(ctx, m); err != nil {
		m.mu.Lock()
		m.state = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memRepository) List(ctx context.Context, limit, offset int) ([]ListRow, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	docNos := make([]int64, 0, len(m.state.headers))
	for docNo := range m.state.headers {
		docNos = append(docNos, docNo)
	}
	sort.Slice(docNos, func(i, j int) bool { return docNos[i] < docNos[j] })
	out := []ListRow{}
	for i := offset; i < len(docNos) && i < offset+limit; i++ {
		h := m.state.headers[docNos[i]]
		out = append(out, ToListRow(h, m.customerRef(h.CustomerID)))
	}
	return out, len(docNos), nil
}

func (m *memRepository) Get(ctx context.Context, docNo int64) (*JoinResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.state.headers[docNo]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	res := &JoinResult{Header: h, Customer: m.customerRef(h.CustomerID), Details: []DetailRow{}}
	for _, l := range m.state.lines[docNo] {
		itemID := l.input.ItemID
		row := DetailRow{LineID: l.lineID, ItemID: &itemID, UnitPrice: *l.input.UnitPrice, Qty: l.input.Qty}
		if name, ok := m.items[itemID]; ok {
			row.Item = &ItemRef{ItemID: itemID, ItemName: name}
		}
		res.Details = append(res.Details, row)
	}
	return res, nil
}

func (m *memRepository) InsertHeader(ctx context.Context, docDate time.Time, customerID int64) (SalesHeader, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := SalesHeader{DocNo: m.state.nextDocNo, DocDate: shared.NewDate(docDate), CustomerID: &customerID}
	m.state.headers[h.DocNo] = h
	m.state.nextDocNo++
	return h, nil
}

func (m *memRepository) UpdateHeader(ctx context.Context, docNo int64, docDate time.Time, customerID int64) (*SalesHeader, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.state.headers[docNo]
	if !ok {
		return nil, nil
	}
	h.DocDate = shared.NewDate(docDate)
	h.CustomerID = &customerID
	m.state.headers[docNo] = h
	return &h, nil
}

func (m *memRepository) DeleteLines(ctx context.Context, docNo int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.state.lines, docNo)
	return nil
}

func (m *memRepository) InsertLines(ctx context.Context, docNo int64, lines []LineInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertLinesErr != nil && len(lines) > 0 {
		return m.insertLinesErr
	}
	for _, l := range lines {
		m.state.lines[docNo] = append(m.state.lines[docNo], memLine{lineID: m.state.nextLine, input: l})
		m.state.nextLine++
	}
	return nil
}

func (m *memRepository) Delete(ctx context.Context, docNo int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.state.headers, docNo)
	delete(m.state.lines, docNo)
	return nil
}

func (m *memRepository) customerRef(id *int64) *CustomerRef {
	if id == nil {
		return nil
	}
	name, ok := m.customers[*id]
	if !ok {
		return nil
	}
	return &CustomerRef{CustomerID: *id, CustName: name}
}

type countingNotifier struct {
	bumps int
	err   error
}

func (n *countingNotifier) Bump(context.Context) error {
	n.bumps++
	return n.err
}

func ptr[T any](v T) *T { return &v }

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
