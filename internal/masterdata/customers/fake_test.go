package customers

import (
	"context"
	"sort"
	"sync"

	"github.com/salesdesk/salesdesk/internal/platform/httpx"
)

type memRepository struct {
	mu     sync.Mutex
	rows   map[int64]Customer
	nextID int64

	listErr   error
	createErr error
}

func newMemRepository(names ...string) *memRepository {
	repo := &memRepository{rows: make(map[int64]Customer), nextID: 1}
	for _, name := range names {
		_, _ = repo.Create(context.Background(), name)
	}
	return repo
}

func (m *memRepository) List(ctx context.Context, limit, offset int) ([]Customer, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	ids := make([]int64, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := []Customer{}
	for i := offset; i < len(ids) && i < offset+limit; i++ {
		out = append(out, m.rows[ids[i]])
	}
	return out, len(ids), nil
}

func (m *memRepository) Get(ctx context.Context, id int64) (*Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return &c, nil
}

func (m *memRepository) Create(ctx context.Context, name string) (*Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	c := Customer{CustomerID: m.nextID, CustName: name}
	m.rows[c.CustomerID] = c
	m.nextID++
	return &c, nil
}

func (m *memRepository) Update(ctx context.Context, id int64, name string) (*Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	c.CustName = name
	m.rows[id] = c
	return &c, nil
}

func (m *memRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

type countingNotifier struct {
	bumps int
	err   error
}

func (n *countingNotifier) Bump(context.Context) error {
	n.bumps++
	return n.err
}
