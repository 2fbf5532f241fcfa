package entity

import "github.com/bitfantasy/nimo-mes/internal/sheet"

// InventoryItem 物料库存，按物料名唯一（业务约定，存储层不强制）
type InventoryItem struct {
	ID           string  `json:"id"`
	MaterialName string  `json:"material_name"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	UnitCost     float64 `json:"unit_cost"`
	MinimumStock float64 `json:"minimum_stock"`
	Location     string  `json:"location,omitempty"`
	LastUpdated  string  `json:"last_updated"`
}

func InventoryItemFromRecord(r sheet.Record) InventoryItem {
	return InventoryItem{
		ID:           r.ID(),
		MaterialName: r.Get("material_name"),
		Quantity:     r.Float("quantity"),
		Unit:         r.Get("unit"),
		UnitCost:     r.Float("unit_cost"),
		MinimumStock: r.Float("minimum_stock"),
		Location:     r.Get("location"),
		LastUpdated:  r.Get("last_updated"),
	}
}

func (i InventoryItem) Fields() map[string]string {
	return map[string]string{
		"material_name": i.MaterialName,
		"quantity":      sheet.FormatFloat(i.Quantity),
		"unit":          i.Unit,
		"unit_cost":     sheet.FormatFloat(i.UnitCost),
		"minimum_stock": sheet.FormatFloat(i.MinimumStock),
		"location":      i.Location,
		"last_updated":  i.LastUpdated,
	}
}

// MovementType 库存变动方向
const (
	MovementIn  = "in"
	MovementOut = "out"
)

// 库存变动的来源单据类型
const (
	MovementRefPurchase        = "purchase"
	MovementRefProductionOrder = "production_order"
)

// InventoryMovement 库存流水，只追加
type InventoryMovement struct {
	ID            string  `json:"id"`
	InventoryID   string  `json:"inventory_id"`
	MovementType  string  `json:"movement_type"`
	Quantity      float64 `json:"quantity"`
	ReferenceType string  `json:"reference_type,omitempty"`
	ReferenceID   string  `json:"reference_id,omitempty"`
	Notes         string  `json:"notes,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

func InventoryMovementFromRecord(r sheet.Record) InventoryMovement {
	return InventoryMovement{
		ID:            r.ID(),
		InventoryID:   r.Get("inventory_id"),
		MovementType:  r.Get("movement_type"),
		Quantity:      r.Float("quantity"),
		ReferenceType: r.Get("reference_type"),
		ReferenceID:   r.Get("reference_id"),
		Notes:         r.Get("notes"),
		CreatedAt:     r.Get("created_at"),
	}
}

func (m InventoryMovement) Fields() map[string]string {
	return map[string]string{
		"inventory_id":   m.InventoryID,
		"movement_type":  m.MovementType,
		"quantity":       sheet.FormatFloat(m.Quantity),
		"reference_type": m.ReferenceType,
		"reference_id":   m.ReferenceID,
		"notes":          m.Notes,
	}
}
