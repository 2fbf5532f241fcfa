package sheet

import "sort"

// 单表查询辅助。原系统用一个链式查询外观模拟关系型客户端，
// 这里拆成显式的过滤/排序/截断函数，由各仓库按需组合。
// 不支持跨表查询，关联由调用方以多次单表读取完成。

// Filter 等值过滤。比较是宽松的：数值字符串按数值相等处理
func Filter(rows []Record, field, value string) []Record {
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		if looseEqual(r[field], value) {
			out = append(out, r)
		}
	}
	return out
}

// First 返回第一个匹配行，没有则返回 nil
func First(rows []Record, field, value string) Record {
	for _, r := range rows {
		if looseEqual(r[field], value) {
			return r
		}
	}
	return nil
}

// ByID 按主键查找
func ByID(rows []Record, id string) Record {
	for _, r := range rows {
		if r.ID() == id {
			return r
		}
	}
	return nil
}

// SortBy 按单键排序。稳定排序：键相等的行保持原有相对顺序。
// 数值字符串按数值比较，其余按字典序
func SortBy(rows []Record, field string, ascending bool) []Record {
	out := make([]Record, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i][field], out[j][field]
		if less, ok := numericLess(a, b); ok {
			if ascending {
				return less
			}
			return !less && !looseEqual(a, b)
		}
		if ascending {
			return a < b
		}
		return a > b
	})
	return out
}

// SortByNumeric 按数值键排序（sequence_order 等）
func SortByNumeric(rows []Record, field string, ascending bool) []Record {
	out := make([]Record, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Float(field), out[j].Float(field)
		if ascending {
			return a < b
		}
		return a > b
	})
	return out
}

// Limit 截断前 n 行
func Limit(rows []Record, n int) []Record {
	if n < 0 || n >= len(rows) {
		return rows
	}
	return rows[:n]
}

func numericLess(a, b string) (less, ok bool) {
	fa, errA := parseFloatLoose(a)
	fb, errB := parseFloatLoose(b)
	if errA != nil || errB != nil {
		return false, false
	}
	return fa < fb, true
}
