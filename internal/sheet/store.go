package sheet

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// 错误分类见 Store 各方法说明。调用方通过 errors.Is 判断
var (
	// ErrNotFound update/delete 的目标行不存在
	ErrNotFound = errors.New("record not found")
	// ErrStoreUnavailable 表格后端不可达或返回错误
	ErrStoreUnavailable = errors.New("row store unavailable")
)

// Store 行存储的统一接口。实现有两个：
// SheetStore（Google Sheets values API）和 MemoryStore（测试用）。
//
// 注意：多步写入没有事务语义。一次编排流程中间失败时，
// 已写入的行会保留，错误原样上抛，由上层自行说明一致性模型。
type Store interface {
	// FetchAll 全表读取。结果来自最多5秒前的缓存
	FetchAll(ctx context.Context, table string) ([]Record, error)
	// Append 追加一行。id 和 created_at 缺失时由存储生成
	Append(ctx context.Context, table string, fields map[string]string) (Record, error)
	// Update 按 id 定位行并合并 patch，写入 updated_at
	Update(ctx context.Context, table string, id string, patch map[string]string) (Record, error)
	// Delete 按 id 删除行
	Delete(ctx context.Context, table string, id string) error
}

const idSuffixLen = 9

// NewID 客户端生成主键：毫秒时间戳 + base36 随机后缀。
// 与电子表格中已有数据的主键格式保持一致
func NewID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), randBase36(idSuffixLen))
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func randBase36(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = base36[rand.Intn(len(base36))]
	}
	return string(b)
}
