package entity

import "github.com/bitfantasy/nimo-mes/internal/sheet"

// ProductionOrderStatus 生产订单状态
const (
	ProdStatusPending    = "pending"
	ProdStatusInProgress = "in_progress"
	ProdStatusCompleted  = "completed"
	ProdStatusOnHold     = "on_hold"
)

// Priority 生产优先级
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// ProductionOrder 生产订单。批准报价时按销售订单明细1:1创建
type ProductionOrder struct {
	ID               string  `json:"id"`
	OrderNumber      string  `json:"order_number"`
	SalesOrderID     string  `json:"sales_order_id"`
	SalesOrderItemID string  `json:"sales_order_item_id"`
	ProductID        string  `json:"product_id"`
	Quantity         float64 `json:"quantity"`
	Priority         string  `json:"priority"`
	Status           string  `json:"status"`
	PlannedStart     string  `json:"planned_start,omitempty"`
	PlannedEnd       string  `json:"planned_end,omitempty"`
	ActualStart      string  `json:"actual_start,omitempty"`
	ActualEnd        string  `json:"actual_end,omitempty"`
	CurrentProcess   string  `json:"current_process,omitempty"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`

	Product    *Product    `json:"product,omitempty"`
	SalesOrder *SalesOrder `json:"sales_order,omitempty"`
}

func ProductionOrderFromRecord(r sheet.Record) ProductionOrder {
	return ProductionOrder{
		ID:               r.ID(),
		OrderNumber:      r.Get("order_number"),
		SalesOrderID:     r.Get("sales_order_id"),
		SalesOrderItemID: r.Get("sales_order_item_id"),
		ProductID:        r.Get("product_id"),
		Quantity:         r.Float("quantity"),
		Priority:         r.Get("priority"),
		Status:           r.Get("status"),
		PlannedStart:     r.Get("planned_start"),
		PlannedEnd:       r.Get("planned_end"),
		ActualStart:      r.Get("actual_start"),
		ActualEnd:        r.Get("actual_end"),
		CurrentProcess:   r.Get("current_process"),
		CreatedAt:        r.Get("created_at"),
		UpdatedAt:        r.Get("updated_at"),
	}
}

func (o ProductionOrder) Fields() map[string]string {
	return map[string]string{
		"order_number":        o.OrderNumber,
		"sales_order_id":      o.SalesOrderID,
		"sales_order_item_id": o.SalesOrderItemID,
		"product_id":          o.ProductID,
		"quantity":            sheet.FormatFloat(o.Quantity),
		"priority":            o.Priority,
		"status":              o.Status,
		"planned_start":       o.PlannedStart,
		"planned_end":         o.PlannedEnd,
		"current_process":     o.CurrentProcess,
		"updated_at":          o.UpdatedAt,
	}
}

// ProcessStatus 工序状态。skipped 目前没有任何转换会到达，
// 是表格里预留的死状态，进度统计按"已完成或已跳过"处理
const (
	ProcessStatusPending    = "pending"
	ProcessStatusInProgress = "in_progress"
	ProcessStatusCompleted  = "completed"
	ProcessStatusSkipped    = "skipped"
)

// ProcessType 机加工工序类型
const (
	ProcessTurning  = "turning"
	ProcessMilling  = "milling"
	ProcessDrilling = "drilling"
	ProcessGrinding = "grinding"
)

// ProcessSequence 每张生产订单的固定工序序列，顺序即 sequence_order 1..4
var ProcessSequence = []string{ProcessTurning, ProcessMilling, ProcessDrilling, ProcessGrinding}

// DefaultEstimatedMinutes 每道工序的固定预估工时（策略常量，不做计算）
const DefaultEstimatedMinutes = 60

// ProductionProcess 生产工序
type ProductionProcess struct {
	ID                string `json:"id"`
	ProductionOrderID string `json:"production_order_id"`
	ProcessType       string `json:"process_type"`
	SequenceOrder     int    `json:"sequence_order"`
	Status            string `json:"status"`
	EstimatedMinutes  int    `json:"estimated_minutes,omitempty"`
	ActualMinutes     int    `json:"actual_minutes,omitempty"`
	OperatorName      string `json:"operator_name,omitempty"`
	MachineUsed       string `json:"machine_used,omitempty"`
	StartedAt         string `json:"started_at,omitempty"`
	CompletedAt       string `json:"completed_at,omitempty"`
	Notes             string `json:"notes,omitempty"`
}

func ProductionProcessFromRecord(r sheet.Record) ProductionProcess {
	return ProductionProcess{
		ID:                r.ID(),
		ProductionOrderID: r.Get("production_order_id"),
		ProcessType:       r.Get("process_type"),
		SequenceOrder:     r.Int("sequence_order"),
		Status:            r.Get("status"),
		EstimatedMinutes:  r.Int("estimated_minutes"),
		ActualMinutes:     r.Int("actual_minutes"),
		OperatorName:      r.Get("operator_name"),
		MachineUsed:       r.Get("machine_used"),
		StartedAt:         r.Get("started_at"),
		CompletedAt:       r.Get("completed_at"),
		Notes:             r.Get("notes"),
	}
}

func (p ProductionProcess) Fields() map[string]string {
	return map[string]string{
		"production_order_id": p.ProductionOrderID,
		"process_type":        p.ProcessType,
		"sequence_order":      sheet.FormatInt(p.SequenceOrder),
		"status":              p.Status,
		"estimated_minutes":   sheet.FormatInt(p.EstimatedMinutes),
	}
}
