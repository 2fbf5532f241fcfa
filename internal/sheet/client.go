package sheet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"
)

// Google Sheets values API 基础地址
const defaultBaseURL = "https://sheets.googleapis.com/v4/spreadsheets"

// =============================================================================
// SheetStore — 以公开API Key访问Google Sheets的行存储实现
// 整张表作为一个区间（A:ZZ）读取，第一行是表头，其余行映射为 Record。
// 写入以整行为单位：append追加到表尾，update按行号覆盖写回。
// =============================================================================

// SheetStore 电子表格行存储
type SheetStore struct {
	spreadsheetID string
	apiKey        string
	baseURL       string
	httpClient    *http.Client
	cache         *readCache
	now           func() time.Time

	// 各表的表头列顺序。Record 是无序map，写回时必须按表内实际列序
	headerMu sync.Mutex
	headers  map[string][]string
}

// NewSheetStore 创建表格存储实例。cacheTTL 为0时用默认5秒
func NewSheetStore(spreadsheetID, apiKey string, cacheTTL time.Duration) *SheetStore {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &SheetStore{
		spreadsheetID: spreadsheetID,
		apiKey:        apiKey,
		baseURL:       defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache:   newReadCache(cacheTTL, time.Now),
		now:     time.Now,
		headers: make(map[string][]string),
	}
}

// FetchAll 全表读取，命中缓存时不发请求
func (s *SheetStore) FetchAll(ctx context.Context, table string) ([]Record, error) {
	if rows, ok := s.cache.get(table); ok {
		return rows, nil
	}

	rng := fmt.Sprintf("%s!A:ZZ", table)
	reqURL := fmt.Sprintf("%s/%s/values/%s?key=%s",
		s.baseURL, s.spreadsheetID, url.PathEscape(rng), url.QueryEscape(s.apiKey))

	var result struct {
		Values [][]string `json:"values"`
	}
	if err := s.doJSON(ctx, http.MethodGet, reqURL, nil, &result); err != nil {
		return nil, fmt.Errorf("读取表 %s 失败: %w", table, err)
	}

	if len(result.Values) == 0 {
		s.cache.put(table, []Record{})
		return []Record{}, nil
	}

	headers := result.Values[0]
	s.headerMu.Lock()
	s.headers[table] = append([]string(nil), headers...)
	s.headerMu.Unlock()

	rows := make([]Record, 0, len(result.Values)-1)
	for _, cells := range result.Values[1:] {
		rec := make(Record, len(headers))
		for i, h := range headers {
			if i < len(cells) {
				rec[h] = cells[i]
			} else {
				rec[h] = ""
			}
		}
		rows = append(rows, rec)
	}

	s.cache.put(table, rows)
	return rows, nil
}

// Append 追加一行。列顺序取自现有表头；空表时按字段名生成表头顺序
func (s *SheetStore) Append(ctx context.Context, table string, fields map[string]string) (Record, error) {
	s.cache.invalidate(table)

	row := make(Record, len(fields)+2)
	for k, v := range fields {
		row[k] = v
	}
	if !row.Has("id") {
		row["id"] = NewID()
	}
	if !row.Has("created_at") {
		row["created_at"] = FormatTime(s.now())
	}

	if _, err := s.FetchAll(ctx, table); err != nil {
		return nil, err
	}
	headers := s.headersFor(table, row)

	values := make([]string, len(headers))
	for i, h := range headers {
		values[i] = row[h]
	}

	reqURL := fmt.Sprintf("%s/%s/values/%s:append?valueInputOption=RAW&key=%s",
		s.baseURL, s.spreadsheetID, url.PathEscape(table), url.QueryEscape(s.apiKey))
	body := map[string]any{"values": [][]string{values}}
	if err := s.doJSON(ctx, http.MethodPost, reqURL, body, nil); err != nil {
		return nil, fmt.Errorf("写入表 %s 失败: %w", table, err)
	}

	s.cache.invalidate(table)
	return row, nil
}

// Update 按 id 线性扫描定位行，合并patch后整行写回
func (s *SheetStore) Update(ctx context.Context, table string, id string, patch map[string]string) (Record, error) {
	s.cache.invalidate(table)

	rows, err := s.FetchAll(ctx, table)
	if err != nil {
		return nil, err
	}
	index := indexByID(rows, id)
	if index < 0 {
		return nil, fmt.Errorf("表 %s 中 id=%s: %w", table, id, ErrNotFound)
	}

	updated := rows[index].Clone()
	for k, v := range patch {
		updated[k] = v
	}
	updated["updated_at"] = FormatTime(s.now())

	headers := s.headersFor(table, updated)
	values := make([]string, len(headers))
	for i, h := range headers {
		values[i] = updated[h]
	}

	// 表头占第1行，数据行号从2开始
	rowNumber := index + 2
	rng := fmt.Sprintf("%s!A%d:ZZ%d", table, rowNumber, rowNumber)
	reqURL := fmt.Sprintf("%s/%s/values/%s?valueInputOption=RAW&key=%s",
		s.baseURL, s.spreadsheetID, url.PathEscape(rng), url.QueryEscape(s.apiKey))
	body := map[string]any{"values": [][]string{values}}
	if err := s.doJSON(ctx, http.MethodPut, reqURL, body, nil); err != nil {
		return nil, fmt.Errorf("更新表 %s 失败: %w", table, err)
	}

	s.cache.invalidate(table)
	return updated, nil
}

// Delete 物理删除行（batchUpdate deleteDimension）
func (s *SheetStore) Delete(ctx context.Context, table string, id string) error {
	s.cache.invalidate(table)

	rows, err := s.FetchAll(ctx, table)
	if err != nil {
		return err
	}
	index := indexByID(rows, id)
	if index < 0 {
		return fmt.Errorf("表 %s 中 id=%s: %w", table, id, ErrNotFound)
	}

	sheetID, err := s.sheetID(ctx, table)
	if err != nil {
		return err
	}

	rowNumber := index + 2
	reqURL := fmt.Sprintf("%s/%s:batchUpdate?key=%s",
		s.baseURL, s.spreadsheetID, url.QueryEscape(s.apiKey))
	body := map[string]any{
		"requests": []map[string]any{
			{
				"deleteDimension": map[string]any{
					"range": map[string]any{
						"sheetId":    sheetID,
						"dimension":  "ROWS",
						"startIndex": rowNumber - 1,
						"endIndex":   rowNumber,
					},
				},
			},
		},
	}
	if err := s.doJSON(ctx, http.MethodPost, reqURL, body, nil); err != nil {
		return fmt.Errorf("删除表 %s 行失败: %w", table, err)
	}

	s.cache.invalidate(table)
	return nil
}

// sheetID 通过表格元数据把工作表名解析为数字ID
func (s *SheetStore) sheetID(ctx context.Context, table string) (int64, error) {
	reqURL := fmt.Sprintf("%s/%s?key=%s", s.baseURL, s.spreadsheetID, url.QueryEscape(s.apiKey))
	var meta struct {
		Sheets []struct {
			Properties struct {
				SheetID int64  `json:"sheetId"`
				Title   string `json:"title"`
			} `json:"properties"`
		} `json:"sheets"`
	}
	if err := s.doJSON(ctx, http.MethodGet, reqURL, nil, &meta); err != nil {
		return 0, fmt.Errorf("读取表格元数据失败: %w", err)
	}
	for _, sh := range meta.Sheets {
		if sh.Properties.Title == table {
			return sh.Properties.SheetID, nil
		}
	}
	return 0, nil
}

// doJSON 发起请求并解析JSON响应。传输错误和非2xx都归为 ErrStoreUnavailable
func (s *SheetStore) doJSON(ctx context.Context, method, reqURL string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("序列化请求体失败: %w", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: HTTP %s", ErrStoreUnavailable, resp.Status)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: 解析响应失败: %v", ErrStoreUnavailable, err)
		}
	}
	return nil
}

func indexByID(rows []Record, id string) int {
	for i, r := range rows {
		if r.ID() == id {
			return i
		}
	}
	return -1
}

// headersFor 确定写入时的列顺序：有表头的表沿用表内实际列序
// （不在表头里的字段不写入），无表头的空表 id/created_at 在前、
// 其余字段按名称排序保证确定性
func (s *SheetStore) headersFor(table string, row Record) []string {
	s.headerMu.Lock()
	known := s.headers[table]
	s.headerMu.Unlock()
	if len(known) > 0 {
		return known
	}
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return orderedHeaders(keys)
}

func orderedHeaders(sorted []string) []string {
	out := make([]string, 0, len(sorted))
	for _, lead := range []string{"id", "created_at"} {
		for _, k := range sorted {
			if k == lead {
				out = append(out, k)
			}
		}
	}
	for _, k := range sorted {
		if k != "id" && k != "created_at" {
			out = append(out, k)
		}
	}
	return out
}
