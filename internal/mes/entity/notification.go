package entity

import "github.com/bitfantasy/nimo-mes/internal/sheet"

// NotificationType 通知类型
const (
	NotifyOrderApproved      = "order_approved"
	NotifyOrderCreated       = "order_created"
	NotifyProductionDelayed  = "production_delayed"
	NotifyInspectionRequired = "inspection_required"
	NotifyStockLow           = "stock_low"
	NotifyProcessCompleted   = "process_completed"
)

// Notification 通知。只追加的提醒流水，前端轮询读取
type Notification struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	Title         string `json:"title"`
	Message       string `json:"message"`
	ReferenceType string `json:"reference_type,omitempty"`
	ReferenceID   string `json:"reference_id,omitempty"`
	IsRead        bool   `json:"is_read"`
	CreatedAt     string `json:"created_at"`
}

func NotificationFromRecord(r sheet.Record) Notification {
	return Notification{
		ID:            r.ID(),
		Type:          r.Get("type"),
		Title:         r.Get("title"),
		Message:       r.Get("message"),
		ReferenceType: r.Get("reference_type"),
		ReferenceID:   r.Get("reference_id"),
		IsRead:        r.Bool("is_read"),
		CreatedAt:     r.Get("created_at"),
	}
}

func (n Notification) Fields() map[string]string {
	return map[string]string{
		"type":           n.Type,
		"title":          n.Title,
		"message":        n.Message,
		"reference_type": n.ReferenceType,
		"reference_id":   n.ReferenceID,
		"is_read":        sheet.FormatBool(n.IsRead),
	}
}
