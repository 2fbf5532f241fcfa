package sheet

import "testing"

func TestFilterLooseNumeric(t *testing.T) {
	rows := []Record{
		{"id": "1", "quantity": "100"},
		{"id": "2", "quantity": "100.0"},
		{"id": "3", "quantity": "200"},
	}
	got := Filter(rows, "quantity", "100")
	if len(got) != 2 {
		t.Fatalf("宽松数值过滤应匹配 100 和 100.0，得到 %d 行", len(got))
	}
}

func TestFirstAndByID(t *testing.T) {
	rows := []Record{
		{"id": "a", "status": "pending"},
		{"id": "b", "status": "pending"},
	}
	if r := First(rows, "status", "pending"); r == nil || r.ID() != "a" {
		t.Error("First 应返回首个匹配行")
	}
	if r := First(rows, "status", "done"); r != nil {
		t.Error("无匹配时应返回 nil")
	}
	if r := ByID(rows, "b"); r == nil || r["status"] != "pending" {
		t.Error("ByID 查找失败")
	}
	if r := ByID(rows, "c"); r != nil {
		t.Error("不存在的 id 应返回 nil")
	}
}

func TestSortByStable(t *testing.T) {
	rows := []Record{
		{"id": "1", "created_at": "2025-01-02T00:00:00Z"},
		{"id": "2", "created_at": "2025-01-01T00:00:00Z"},
		{"id": "3", "created_at": "2025-01-02T00:00:00Z"},
	}
	got := SortBy(rows, "created_at", false)
	// 键相等的 1 和 3 保持原有相对顺序
	if got[0].ID() != "1" || got[1].ID() != "3" || got[2].ID() != "2" {
		t.Errorf("倒序稳定排序错误: %s %s %s", got[0].ID(), got[1].ID(), got[2].ID())
	}
	// 原切片不被改动
	if rows[0].ID() != "1" || rows[1].ID() != "2" {
		t.Error("SortBy 不应修改输入")
	}
}

func TestSortByNumericStrings(t *testing.T) {
	rows := []Record{
		{"id": "a", "sequence_order": "10"},
		{"id": "b", "sequence_order": "2"},
		{"id": "c", "sequence_order": "1"},
	}
	got := SortByNumeric(rows, "sequence_order", true)
	if got[0].ID() != "c" || got[1].ID() != "b" || got[2].ID() != "a" {
		t.Error("数值排序应按数值而非字典序（2 < 10）")
	}
}

func TestLimit(t *testing.T) {
	rows := []Record{{"id": "1"}, {"id": "2"}, {"id": "3"}}
	if got := Limit(rows, 2); len(got) != 2 {
		t.Error("Limit(2) 应截断为2行")
	}
	if got := Limit(rows, 10); len(got) != 3 {
		t.Error("n 超过长度时返回全部")
	}
	if got := Limit(rows, -1); len(got) != 3 {
		t.Error("负数不截断")
	}
}
