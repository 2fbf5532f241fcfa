package sheet

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore 内存行存储，测试专用。
// 与 SheetStore 遵守同一份契约：append生成id/created_at，
// update按id扫描并盖updated_at，找不到返回 ErrNotFound
type MemoryStore struct {
	mu     sync.Mutex
	tables map[string][]Record

	// NowFunc 可替换时钟，便于测试固定时间戳
	NowFunc func() time.Time
	// NewIDFunc 可替换主键生成器
	NewIDFunc func() string
}

// NewMemoryStore 创建空的内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables:    make(map[string][]Record),
		NowFunc:   time.Now,
		NewIDFunc: NewID,
	}
}

// Seed 预置数据，直接写入不生成字段
func (m *MemoryStore) Seed(table string, rows ...Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		m.tables[table] = append(m.tables[table], r.Clone())
	}
}

func (m *MemoryStore) FetchAll(_ context.Context, table string) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.tables[table]
	out := make([]Record, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out, nil
}

func (m *MemoryStore) Append(_ context.Context, table string, fields map[string]string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row := make(Record, len(fields)+2)
	for k, v := range fields {
		row[k] = v
	}
	if !row.Has("id") {
		row["id"] = m.NewIDFunc()
	}
	if !row.Has("created_at") {
		row["created_at"] = FormatTime(m.NowFunc())
	}
	m.tables[table] = append(m.tables[table], row)
	return row.Clone(), nil
}

func (m *MemoryStore) Update(_ context.Context, table string, id string, patch map[string]string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.tables[table]
	for i, r := range rows {
		if r.ID() == id {
			updated := r.Clone()
			for k, v := range patch {
				updated[k] = v
			}
			updated["updated_at"] = FormatTime(m.NowFunc())
			rows[i] = updated
			return updated.Clone(), nil
		}
	}
	return nil, fmt.Errorf("表 %s 中 id=%s: %w", table, id, ErrNotFound)
}

func (m *MemoryStore) Delete(_ context.Context, table string, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.tables[table]
	for i, r := range rows {
		if r.ID() == id {
			m.tables[table] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("表 %s 中 id=%s: %w", table, id, ErrNotFound)
}
