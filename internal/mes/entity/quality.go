package entity

import "github.com/bitfantasy/nimo-mes/internal/sheet"

// InspectionStatus 质检单状态
const (
	InspectionStatusPending    = "pending"
	InspectionStatusInProgress = "in_progress"
	InspectionStatusApproved   = "approved"
	InspectionStatusRejected   = "rejected"
)

// InspectionResult 质检结论
const (
	ResultPass        = "pass"
	ResultFail        = "fail"
	ResultConditional = "conditional"
)

// QualityInspection 质检单。批准流程中每张符合条件的生产订单最多创建一张
type QualityInspection struct {
	ID                string `json:"id"`
	ProductionOrderID string `json:"production_order_id"`
	InspectionNumber  string `json:"inspection_number"`
	TriggerReason     string `json:"trigger_reason"`
	Status            string `json:"status"`
	InspectorName     string `json:"inspector_name,omitempty"`
	InspectionDate    string `json:"inspection_date,omitempty"`
	Result            string `json:"result,omitempty"`
	Notes             string `json:"notes,omitempty"`
	CorrectiveActions string `json:"corrective_actions,omitempty"`
	CreatedAt         string `json:"created_at"`

	ProductionOrder *ProductionOrder `json:"production_order,omitempty"`
}

func QualityInspectionFromRecord(r sheet.Record) QualityInspection {
	return QualityInspection{
		ID:                r.ID(),
		ProductionOrderID: r.Get("production_order_id"),
		InspectionNumber:  r.Get("inspection_number"),
		TriggerReason:     r.Get("trigger_reason"),
		Status:            r.Get("status"),
		InspectorName:     r.Get("inspector_name"),
		InspectionDate:    r.Get("inspection_date"),
		Result:            r.Get("result"),
		Notes:             r.Get("notes"),
		CorrectiveActions: r.Get("corrective_actions"),
		CreatedAt:         r.Get("created_at"),
	}
}

func (q QualityInspection) Fields() map[string]string {
	return map[string]string{
		"production_order_id": q.ProductionOrderID,
		"inspection_number":   q.InspectionNumber,
		"trigger_reason":      q.TriggerReason,
		"status":              q.Status,
	}
}

// InspectionCriteria 质检触发条件。独立维护的配置数据，规则评估的只读输入。
// specific_customer_id / specific_machine 两个字段在表格中存在，
// 但批准路径的匹配逻辑不读取它们（按原样保留，不臆造匹配规则）
type InspectionCriteria struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Enabled            bool    `json:"enabled"`
	MinQuantity        float64 `json:"min_quantity,omitempty"`
	MinWeight          float64 `json:"min_weight,omitempty"`
	Complexity         string  `json:"complexity,omitempty"`
	SpecificCustomerID string  `json:"specific_customer_id,omitempty"`
	SpecificMachine    string  `json:"specific_machine,omitempty"`
	CreatedAt          string  `json:"created_at"`
}

func InspectionCriteriaFromRecord(r sheet.Record) InspectionCriteria {
	return InspectionCriteria{
		ID:                 r.ID(),
		Name:               r.Get("name"),
		Enabled:            r.Bool("enabled"),
		MinQuantity:        r.Float("min_quantity"),
		MinWeight:          r.Float("min_weight"),
		Complexity:         r.Get("complexity"),
		SpecificCustomerID: r.Get("specific_customer_id"),
		SpecificMachine:    r.Get("specific_machine"),
		CreatedAt:          r.Get("created_at"),
	}
}

func (c InspectionCriteria) Fields() map[string]string {
	fields := map[string]string{
		"name":                 c.Name,
		"enabled":              sheet.FormatBool(c.Enabled),
		"complexity":           c.Complexity,
		"specific_customer_id": c.SpecificCustomerID,
		"specific_machine":     c.SpecificMachine,
	}
	// 0 意为阈值未设置，写空串避免把"未设置"变成"阈值为0"
	if c.MinQuantity > 0 {
		fields["min_quantity"] = sheet.FormatFloat(c.MinQuantity)
	} else {
		fields["min_quantity"] = ""
	}
	if c.MinWeight > 0 {
		fields["min_weight"] = sheet.FormatFloat(c.MinWeight)
	} else {
		fields["min_weight"] = ""
	}
	return fields
}
