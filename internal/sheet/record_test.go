package sheet

import (
	"testing"
	"time"
)

func TestRecordCoercion(t *testing.T) {
	r := Record{
		"id":        "123-abc",
		"quantity":  "150.5",
		"sequence":  "3.0",
		"count":     "42",
		"enabled":   "TRUE",
		"disabled":  "false",
		"flag":      "1",
		"empty":     "",
		"bad":       "abc",
		"timestamp": "2025-03-01T10:00:00Z",
	}

	if got := r.ID(); got != "123-abc" {
		t.Errorf("ID() = %q", got)
	}
	if got := r.Float("quantity"); got != 150.5 {
		t.Errorf("Float(quantity) = %v", got)
	}
	if got := r.Float("empty"); got != 0 {
		t.Errorf("Float(empty) = %v, want 0", got)
	}
	if got := r.Float("bad"); got != 0 {
		t.Errorf("Float(bad) = %v, want 0", got)
	}
	if got := r.Int("sequence"); got != 3 {
		t.Errorf("Int(sequence) = %d, want 3 (小数形式的整数)", got)
	}
	if got := r.Int("count"); got != 42 {
		t.Errorf("Int(count) = %d", got)
	}
	if !r.Bool("enabled") || !r.Bool("flag") {
		t.Error("Bool 应接受 TRUE 和 1")
	}
	if r.Bool("disabled") || r.Bool("empty") {
		t.Error("Bool(false/empty) 应为 false")
	}
	want := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	if got := r.Time("timestamp"); !got.Equal(want) {
		t.Errorf("Time() = %v", got)
	}
	if !r.Has("quantity") || r.Has("empty") || r.Has("missing") {
		t.Error("Has 判断错误")
	}
}

func TestRecordClone(t *testing.T) {
	r := Record{"id": "1", "name": "a"}
	c := r.Clone()
	c["name"] = "b"
	if r["name"] != "a" {
		t.Error("Clone 后修改不应影响原记录")
	}
}

func TestLooseEqual(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"100", "100", true},
		{"100", "100.0", true},
		{"100.5", "100.50", true},
		{"100", "101", false},
		{"abc", "abc", true},
		{"abc", "abd", false},
		{"", "", true},
		{"", "0", false},
	}
	for _, c := range cases {
		if got := looseEqual(c.a, c.b); got != c.want {
			t.Errorf("looseEqual(%q, %q) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestNewID(t *testing.T) {
	id := NewID()
	if len(id) < 10 {
		t.Fatalf("id 太短: %q", id)
	}
	other := NewID()
	if id == other {
		t.Error("连续生成的 id 不应相同")
	}
}
