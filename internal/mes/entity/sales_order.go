package entity

import "github.com/bitfantasy/nimo-mes/internal/sheet"

// SalesOrderStatus 销售订单状态
const (
	SOStatusDraft        = "draft"
	SOStatusQuoted       = "quoted"
	SOStatusApproved     = "approved"
	SOStatusInProduction = "in_production"
	SOStatusCompleted    = "completed"
	SOStatusCancelled    = "cancelled"
)

// SalesOrder 销售订单
type SalesOrder struct {
	ID          string `json:"id"`
	OrderNumber string `json:"order_number"`
	CustomerID  string `json:"customer_id"`
	Status      string `json:"status"`
	CreatedBy   string `json:"created_by,omitempty"`
	Notes       string `json:"notes,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`

	Customer *Customer        `json:"customer,omitempty"`
	Items    []SalesOrderItem `json:"items,omitempty"`
}

func SalesOrderFromRecord(r sheet.Record) SalesOrder {
	return SalesOrder{
		ID:          r.ID(),
		OrderNumber: r.Get("order_number"),
		CustomerID:  r.Get("customer_id"),
		Status:      r.Get("status"),
		CreatedBy:   r.Get("created_by"),
		Notes:       r.Get("notes"),
		CreatedAt:   r.Get("created_at"),
		UpdatedAt:   r.Get("updated_at"),
	}
}

func (o SalesOrder) Fields() map[string]string {
	return map[string]string{
		"order_number": o.OrderNumber,
		"customer_id":  o.CustomerID,
		"status":       o.Status,
		"created_by":   o.CreatedBy,
		"notes":        o.Notes,
		"updated_at":   o.UpdatedAt,
	}
}

// SalesOrderItem 销售订单明细。订单批准后只读，是生产排产的输入
type SalesOrderItem struct {
	ID                  string  `json:"id"`
	SalesOrderID        string  `json:"sales_order_id"`
	ProductID           string  `json:"product_id"`
	Quantity            float64 `json:"quantity"`
	UnitPrice           float64 `json:"unit_price"`
	TotalPrice          float64 `json:"total_price"`
	DrawingURL          string  `json:"drawing_url,omitempty"`
	SpecialRequirements string  `json:"special_requirements,omitempty"`

	Product *Product `json:"product,omitempty"`
}

func SalesOrderItemFromRecord(r sheet.Record) SalesOrderItem {
	return SalesOrderItem{
		ID:                  r.ID(),
		SalesOrderID:        r.Get("sales_order_id"),
		ProductID:           r.Get("product_id"),
		Quantity:            r.Float("quantity"),
		UnitPrice:           r.Float("unit_price"),
		TotalPrice:          r.Float("total_price"),
		DrawingURL:          r.Get("drawing_url"),
		SpecialRequirements: r.Get("special_requirements"),
	}
}

func (i SalesOrderItem) Fields() map[string]string {
	return map[string]string{
		"sales_order_id":       i.SalesOrderID,
		"product_id":           i.ProductID,
		"quantity":             sheet.FormatFloat(i.Quantity),
		"unit_price":           sheet.FormatFloat(i.UnitPrice),
		"total_price":          sheet.FormatFloat(i.TotalPrice),
		"drawing_url":          i.DrawingURL,
		"special_requirements": i.SpecialRequirements,
	}
}

// ProposalStatus 报价单状态
const (
	ProposalStatusPending  = "pending"
	ProposalStatusApproved = "approved"
	ProposalStatusRejected = "rejected"
)

// Proposal 报价单。一张报价单对应一张销售订单（存储层不强制）
type Proposal struct {
	ID              string  `json:"id"`
	SalesOrderID    string  `json:"sales_order_id"`
	ProposalNumber  string  `json:"proposal_number"`
	Subtotal        float64 `json:"subtotal"`
	Discount        float64 `json:"discount"`
	Total           float64 `json:"total"`
	DeliveryDays    int     `json:"delivery_days"`
	PaymentTerms    string  `json:"payment_terms"`
	ValidityDays    int     `json:"validity_days"`
	TermsConditions string  `json:"terms_conditions,omitempty"`
	Status          string  `json:"status"`
	ApprovedAt      string  `json:"approved_at,omitempty"`
	CreatedAt       string  `json:"created_at"`

	SalesOrder *SalesOrder `json:"sales_order,omitempty"`
}

func ProposalFromRecord(r sheet.Record) Proposal {
	return Proposal{
		ID:              r.ID(),
		SalesOrderID:    r.Get("sales_order_id"),
		ProposalNumber:  r.Get("proposal_number"),
		Subtotal:        r.Float("subtotal"),
		Discount:        r.Float("discount"),
		Total:           r.Float("total"),
		DeliveryDays:    r.Int("delivery_days"),
		PaymentTerms:    r.Get("payment_terms"),
		ValidityDays:    r.Int("validity_days"),
		TermsConditions: r.Get("terms_conditions"),
		Status:          r.Get("status"),
		ApprovedAt:      r.Get("approved_at"),
		CreatedAt:       r.Get("created_at"),
	}
}

func (p Proposal) Fields() map[string]string {
	return map[string]string{
		"sales_order_id":   p.SalesOrderID,
		"proposal_number":  p.ProposalNumber,
		"subtotal":         sheet.FormatFloat(p.Subtotal),
		"discount":         sheet.FormatFloat(p.Discount),
		"total":            sheet.FormatFloat(p.Total),
		"delivery_days":    sheet.FormatInt(p.DeliveryDays),
		"payment_terms":    p.PaymentTerms,
		"validity_days":    sheet.FormatInt(p.ValidityDays),
		"terms_conditions": p.TermsConditions,
		"status":           p.Status,
	}
}
