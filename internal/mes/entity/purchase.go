package entity

import "github.com/bitfantasy/nimo-mes/internal/sheet"

// PurchaseStatus 采购状态
const (
	PurchaseStatusRequested = "requested"
	PurchaseStatusOrdered   = "ordered"
	PurchaseStatusReceived  = "received"
)

// Purchase 物料采购。可关联生产订单，也可独立采购
type Purchase struct {
	ID                string  `json:"id"`
	ProductionOrderID string  `json:"production_order_id,omitempty"`
	MaterialName      string  `json:"material_name"`
	Quantity          float64 `json:"quantity"`
	Unit              string  `json:"unit"`
	UnitCost          float64 `json:"unit_cost"`
	TotalCost         float64 `json:"total_cost"`
	Supplier          string  `json:"supplier,omitempty"`
	Status            string  `json:"status"`
	RequestedAt       string  `json:"requested_at"`
	ReceivedAt        string  `json:"received_at,omitempty"`
	Notes             string  `json:"notes,omitempty"`

	ProductionOrder *ProductionOrder `json:"production_order,omitempty"`
}

func PurchaseFromRecord(r sheet.Record) Purchase {
	return Purchase{
		ID:                r.ID(),
		ProductionOrderID: r.Get("production_order_id"),
		MaterialName:      r.Get("material_name"),
		Quantity:          r.Float("quantity"),
		Unit:              r.Get("unit"),
		UnitCost:          r.Float("unit_cost"),
		TotalCost:         r.Float("total_cost"),
		Supplier:          r.Get("supplier"),
		Status:            r.Get("status"),
		RequestedAt:       r.Get("requested_at"),
		ReceivedAt:        r.Get("received_at"),
		Notes:             r.Get("notes"),
	}
}

func (p Purchase) Fields() map[string]string {
	return map[string]string{
		"production_order_id": p.ProductionOrderID,
		"material_name":       p.MaterialName,
		"quantity":            sheet.FormatFloat(p.Quantity),
		"unit":                p.Unit,
		"unit_cost":           sheet.FormatFloat(p.UnitCost),
		"total_cost":          sheet.FormatFloat(p.TotalCost),
		"supplier":            p.Supplier,
		"status":              p.Status,
		"requested_at":        p.RequestedAt,
		"notes":               p.Notes,
	}
}

// Supplier 供应商
type Supplier struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContactName string `json:"contact_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	Notes       string `json:"notes,omitempty"`
	Active      bool   `json:"active"`
	CreatedAt   string `json:"created_at"`
}

func SupplierFromRecord(r sheet.Record) Supplier {
	return Supplier{
		ID:          r.ID(),
		Name:        r.Get("name"),
		ContactName: r.Get("contact_name"),
		Email:       r.Get("email"),
		Phone:       r.Get("phone"),
		Address:     r.Get("address"),
		Notes:       r.Get("notes"),
		Active:      r.Bool("active"),
		CreatedAt:   r.Get("created_at"),
	}
}

func (s Supplier) Fields() map[string]string {
	return map[string]string{
		"name":         s.Name,
		"contact_name": s.ContactName,
		"email":        s.Email,
		"phone":        s.Phone,
		"address":      s.Address,
		"notes":        s.Notes,
		"active":       sheet.FormatBool(s.Active),
	}
}
