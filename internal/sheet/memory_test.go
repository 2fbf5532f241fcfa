package sheet

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	store.NowFunc = func() time.Time { return time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	rec, err := store.Append(ctx, "clientes", map[string]string{"name": "Metalúrgica Sul"})
	if err != nil {
		t.Fatal(err)
	}
	if rec.ID() == "" || rec["created_at"] == "" {
		t.Fatal("append 应生成 id 和 created_at")
	}

	rows, err := store.FetchAll(ctx, "clientes")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0]["name"] != "Metalúrgica Sul" {
		t.Fatalf("读取结果错误: %v", rows)
	}

	updated, err := store.Update(ctx, "clientes", rec.ID(), map[string]string{"name": "Metalúrgica Norte"})
	if err != nil {
		t.Fatal(err)
	}
	if updated["name"] != "Metalúrgica Norte" || updated["updated_at"] == "" {
		t.Fatal("update 应合并patch并盖 updated_at")
	}

	if err := store.Delete(ctx, "clientes", rec.ID()); err != nil {
		t.Fatal(err)
	}
	rows, _ = store.FetchAll(ctx, "clientes")
	if len(rows) != 0 {
		t.Fatal("删除后表应为空")
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	if _, err := store.Update(ctx, "clientes", "x", nil); !errors.Is(err, ErrNotFound) {
		t.Error("update 不存在的行应返回 ErrNotFound")
	}
	if err := store.Delete(ctx, "clientes", "x"); !errors.Is(err, ErrNotFound) {
		t.Error("delete 不存在的行应返回 ErrNotFound")
	}
}

func TestMemoryStoreIsolation(t *testing.T) {
	store := NewMemoryStore()
	store.Seed("estoque", Record{"id": "1", "quantity": "10"})
	ctx := context.Background()

	rows, _ := store.FetchAll(ctx, "estoque")
	rows[0]["quantity"] = "999"

	again, _ := store.FetchAll(ctx, "estoque")
	if again[0]["quantity"] != "10" {
		t.Error("调用方修改返回值不应污染存储")
	}
}
