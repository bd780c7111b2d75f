package game

import (
	"context"
	"sort"
	"sync"
)

type MemoryTableStore struct {
	mu     sync.Mutex
	tables map[string][]byte
	open   map[string]int64
}

func NewMemoryTableStore() *MemoryTableStore {
	return &MemoryTableStore{
		tables: make(map[string][]byte),
		open:   make(map[string]int64),
	}
}

func (m *MemoryTableStore) Load(ctx context.Context, tableID string) (*Table, error) {
	m.mu.Lock()
	tableBytes, ok := m.tables[tableID]
	m.mu.Unlock()
	if !ok {
		return nil, TableNotFoundError{TableID: tableID}
	}
	return decodeTable(tableBytes)
}

func (m *MemoryTableStore) Save(ctx context.Context, t *Table) error {
	tableBytes, err := encodeTable(t)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[t.ID] = tableBytes
	if t.Joinable() {
		m.open[t.ID] = t.CreatedAt.UnixNano()
	} else {
		delete(m.open, t.ID)
	}
	return nil
}

func (m *MemoryTableStore) OpenTables(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.open))
	for id := range m.open {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if m.open[ids[i]] != m.open[ids[j]] {
			return m.open[ids[i]] < m.open[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return ids, nil
}
