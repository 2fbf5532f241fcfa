package sheet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// fakeSheets 模拟 values API：全表读取、追加、整行覆盖
type fakeSheets struct {
	values   [][]string
	appends  [][]string
	updates  map[string][][]string // range -> values
	getCount int
}

func newFakeSheets(values [][]string) *fakeSheets {
	return &fakeSheets{values: values, updates: make(map[string][][]string)}
}

func (f *fakeSheets) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			f.getCount++
			json.NewEncoder(w).Encode(map[string]any{"values": f.values})
		case r.Method == http.MethodPost && strings.Contains(r.URL.Path, ":append"):
			var body struct {
				Values [][]string `json:"values"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			f.appends = append(f.appends, body.Values...)
			w.Write([]byte("{}"))
		case r.Method == http.MethodPut:
			var body struct {
				Values [][]string `json:"values"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			f.updates[r.URL.Path] = body.Values
			w.Write([]byte("{}"))
		default:
			w.Write([]byte("{}"))
		}
	}
}

func newTestStore(t *testing.T, fake *fakeSheets) *SheetStore {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)
	store := NewSheetStore("sheet-id", "api-key", 0)
	store.baseURL = srv.URL
	return store
}

func TestFetchAllMapsHeaderRow(t *testing.T) {
	fake := newFakeSheets([][]string{
		{"id", "name", "quantity"},
		{"1", "Eixo", "100"},
		{"2", "Flange"}, // 缺失的单元格
	})
	store := newTestStore(t, fake)

	rows, err := store.FetchAll(context.Background(), "produtos")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("期望2行，得到 %d", len(rows))
	}
	if rows[0]["name"] != "Eixo" || rows[0]["quantity"] != "100" {
		t.Errorf("首行映射错误: %v", rows[0])
	}
	if rows[1]["quantity"] != "" {
		t.Error("缺失的单元格应映射为空串")
	}
}

func TestFetchAllUsesCache(t *testing.T) {
	fake := newFakeSheets([][]string{{"id"}, {"1"}})
	store := newTestStore(t, fake)

	ctx := context.Background()
	store.FetchAll(ctx, "clientes")
	store.FetchAll(ctx, "clientes")
	if fake.getCount != 1 {
		t.Errorf("TTL 内重复读取应命中缓存，实际请求 %d 次", fake.getCount)
	}
}

func TestAppendSynthesizesFieldsAndInvalidates(t *testing.T) {
	fake := newFakeSheets([][]string{
		{"id", "created_at", "name"},
		{"1", "2025-01-01T00:00:00Z", "a"},
	})
	store := newTestStore(t, fake)
	store.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	ctx := context.Background()
	rec, err := store.Append(ctx, "clientes", map[string]string{"name": "b"})
	if err != nil {
		t.Fatal(err)
	}
	if rec.ID() == "" {
		t.Error("append 应生成 id")
	}
	if rec["created_at"] != "2025-06-01T12:00:00Z" {
		t.Errorf("created_at = %q", rec["created_at"])
	}
	if len(fake.appends) != 1 {
		t.Fatalf("应发起1次追加，实际 %d", len(fake.appends))
	}
	// 列顺序跟随表内实际表头 id, created_at, name
	row := fake.appends[0]
	if len(row) != 3 || row[2] != "b" {
		t.Errorf("追加行列序错误: %v", row)
	}

	before := fake.getCount
	store.FetchAll(ctx, "clientes")
	if fake.getCount != before+1 {
		t.Error("写入后缓存应失效，下一次读取须发请求")
	}
}

func TestUpdateWritesRowBack(t *testing.T) {
	fake := newFakeSheets([][]string{
		{"id", "status"},
		{"1", "pending"},
		{"2", "pending"},
	})
	store := newTestStore(t, fake)

	rec, err := store.Update(context.Background(), "propostas", "2", map[string]string{"status": "approved"})
	if err != nil {
		t.Fatal(err)
	}
	if rec["status"] != "approved" {
		t.Error("update 应合并patch")
	}
	if rec["updated_at"] == "" {
		t.Error("update 应盖 updated_at")
	}
	// 第2条数据在第3行
	found := false
	for path := range fake.updates {
		if strings.Contains(path, "A3") {
			found = true
		}
	}
	if !found {
		t.Errorf("应写回第3行，实际: %v", fake.updates)
	}
}

func TestUpdateNotFound(t *testing.T) {
	fake := newFakeSheets([][]string{{"id"}, {"1"}})
	store := newTestStore(t, fake)

	_, err := store.Update(context.Background(), "propostas", "missing", map[string]string{"x": "y"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("期望 ErrNotFound，得到 %v", err)
	}
}

func TestStoreUnavailableOnHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()
	store := NewSheetStore("sheet-id", "api-key", 0)
	store.baseURL = srv.URL

	_, err := store.FetchAll(context.Background(), "clientes")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("非2xx 应归为 ErrStoreUnavailable，得到 %v", err)
	}
}
