package directory

import (
	"context"

	"github.com/dmitrijs2005/pricegate/internal/common"
)

// MemoryTransport keeps the table in process memory. It backs the
// "memory" transport setting and is lost on exit.
//
// Err, when set, is returned by every call; tests use it to simulate an
// unreachable backend.
type MemoryTransport struct {
	rows   []Row
	nextID int64
	ids    []int64
	Err    error
}

func NewMemoryTransport(rows ...Row) *MemoryTransport {
	m := &MemoryTransport{}
	for _, r := range rows {
		m.push(r)
	}
	return m
}

func (m *MemoryTransport) push(r Row) {
	m.nextID++
	m.rows = append(m.rows, r)
	m.ids = append(m.ids, m.nextID)
}

func (m *MemoryTransport) ReadAllRows(ctx context.Context) ([]Row, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]Row, len(m.rows))
	copy(out, m.rows)
	return out, nil
}

func (m *MemoryTransport) AppendRow(ctx context.Context, row Row) error {
	if m.Err != nil {
		return m.Err
	}
	m.push(row)
	return nil
}

func (m *MemoryTransport) FindRow(ctx context.Context, key string) (RowHandle, bool, error) {
	if m.Err != nil {
		return RowHandle{}, false, m.Err
	}
	for i, r := range m.rows {
		if common.Normalize(r.Username) == key {
			return RowHandle{ID: m.ids[i], Key: key}, true, nil
		}
	}
	return RowHandle{}, false, nil
}

func (m *MemoryTransport) DeleteRow(ctx context.Context, h RowHandle) error {
	if m.Err != nil {
		return m.Err
	}
	for i, id := range m.ids {
		if id == h.ID {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			m.ids = append(m.ids[:i], m.ids[i+1:]...)
			return nil
		}
	}
	return common.ErrUserNotFound
}

func (m *MemoryTransport) Close() error { return nil }
