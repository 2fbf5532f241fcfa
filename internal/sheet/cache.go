package sheet

import (
	"sync"
	"time"
)

// DefaultCacheTTL 读缓存有效期。同一次页面渲染内的重复读取走缓存
const DefaultCacheTTL = 5 * time.Second

// readCache 按表名缓存全表读取结果。
// 显式对象而非包级变量，失效操作是写路径契约的一部分
type readCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	rows      []Record
	fetchedAt time.Time
}

func newReadCache(ttl time.Duration, now func() time.Time) *readCache {
	if now == nil {
		now = time.Now
	}
	return &readCache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *readCache) get(table string) ([]Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[table]
	if !ok || c.now().Sub(e.fetchedAt) >= c.ttl {
		return nil, false
	}
	return e.rows, true
}

func (c *readCache) put(table string, rows []Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[table] = cacheEntry{rows: rows, fetchedAt: c.now()}
}

// invalidate 写入前调用，丢弃该表的缓存
func (c *readCache) invalidate(table string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, table)
}
