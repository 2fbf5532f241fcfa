package sheet

import (
	"strconv"
	"strings"
	"time"
)

// Record 表格中的一行数据。所有单元格值在传输层都是字符串，
// 类型转换集中在这里完成，上层实体层只处理已解码的值。
type Record map[string]string

// Get 读取字段，缺失时返回空字符串
func (r Record) Get(field string) string {
	return r[field]
}

// ID 行主键
func (r Record) ID() string {
	return r["id"]
}

// Float 解析数值字段，空值或非法值返回0
func (r Record) Float(field string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(r[field]), 64)
	if err != nil {
		return 0
	}
	return v
}

// Int 解析整数字段，兼容表格中以小数形式存储的整数（"3.0"）
func (r Record) Int(field string) int {
	s := strings.TrimSpace(r[field])
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

// Bool 解析布尔字段。表格中布尔值可能是 "true"/"TRUE"/"1"
func (r Record) Bool(field string) bool {
	switch strings.ToLower(strings.TrimSpace(r[field])) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// Time 解析RFC3339时间戳，失败返回零值
func (r Record) Time(field string) time.Time {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(r[field]))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Has 字段存在且非空
func (r Record) Has(field string) bool {
	return strings.TrimSpace(r[field]) != ""
}

// Clone 复制一份，避免调用方改动缓存中的行
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// FormatFloat 数值写回表格时的标准格式
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatInt 整数写回表格
func FormatInt(v int) string {
	return strconv.Itoa(v)
}

// FormatBool 布尔写回表格
func FormatBool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// FormatTime 时间戳写回表格
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseTime 解析表格中的RFC3339时间戳
func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, strings.TrimSpace(s))
}

// looseEqual 宽松相等：先按字符串比较，再尝试按数值比较。
// 表格单元格没有类型，"100" 和 "100.0" 指同一个值
func looseEqual(a, b string) bool {
	if a == b {
		return true
	}
	fa, errA := parseFloatLoose(a)
	fb, errB := parseFloatLoose(b)
	return errA == nil && errB == nil && fa == fb
}

func parseFloatLoose(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
