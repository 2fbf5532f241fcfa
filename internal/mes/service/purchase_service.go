package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/sheet"
)

// PurchaseService 物料采购：申请 -> 下单 -> 收货入库
type PurchaseService struct {
	repo          *repository.PurchaseRepository
	inventory     *repository.InventoryRepository
	notifications *repository.NotificationRepository
}

func NewPurchaseService(
	repo *repository.PurchaseRepository,
	inventory *repository.InventoryRepository,
	notifications *repository.NotificationRepository,
) *PurchaseService {
	return &PurchaseService{
		repo:          repo,
		inventory:     inventory,
		notifications: notifications,
	}
}

type RequestMaterialRequest struct {
	ProductionOrderID string  `json:"production_order_id"`
	MaterialName      string  `json:"material_name" binding:"required"`
	Quantity          float64 `json:"quantity" binding:"required,gt=0"`
	Unit              string  `json:"unit"`
	UnitCost          float64 `json:"unit_cost"`
	Supplier          string  `json:"supplier"`
	Notes             string  `json:"notes"`
}

// RequestMaterial 发起物料采购申请
func (s *PurchaseService) RequestMaterial(ctx context.Context, req RequestMaterialRequest) (entity.Purchase, error) {
	purchase := entity.Purchase{
		ProductionOrderID: req.ProductionOrderID,
		MaterialName:      req.MaterialName,
		Quantity:          req.Quantity,
		Unit:              req.Unit,
		UnitCost:          req.UnitCost,
		TotalCost:         req.UnitCost * req.Quantity,
		Supplier:          req.Supplier,
		Status:            entity.PurchaseStatusRequested,
		RequestedAt:       sheet.FormatTime(time.Now()),
		Notes:             req.Notes,
	}
	created, err := s.repo.CreatePurchase(ctx, purchase)
	if err != nil {
		return entity.Purchase{}, fmt.Errorf("创建采购单失败: %w", err)
	}
	if created.ProductionOrderID != "" {
		if _, err := s.notifications.Create(ctx, entity.Notification{
			Type:          entity.NotifyOrderCreated,
			Title:         "Compra Solicitada",
			Message:       fmt.Sprintf("Compra de %s solicitada para ordem de produção", created.MaterialName),
			ReferenceType: "purchase",
			ReferenceID:   created.ID,
		}); err != nil {
			return entity.Purchase{}, fmt.Errorf("创建通知失败: %w", err)
		}
	}
	return created, nil
}

func (s *PurchaseService) ListPurchases(ctx context.Context) ([]entity.Purchase, error) {
	return s.repo.ListPurchases(ctx)
}

// PlaceOrder 向供应商下单
func (s *PurchaseService) PlaceOrder(ctx context.Context, purchaseID, supplier string) (entity.Purchase, error) {
	purchase, err := s.repo.GetPurchaseByID(ctx, purchaseID)
	if err != nil {
		return entity.Purchase{}, err
	}
	if purchase.Status != entity.PurchaseStatusRequested {
		return entity.Purchase{}, fmt.Errorf("%w: 采购单状态为 %s，仅 requested 可下单", ErrValidation, purchase.Status)
	}
	patch := map[string]string{"status": entity.PurchaseStatusOrdered}
	if supplier != "" {
		patch["supplier"] = supplier
		purchase.Supplier = supplier
	}
	if err := s.repo.UpdatePurchaseFields(ctx, purchase.ID, patch); err != nil {
		return entity.Purchase{}, fmt.Errorf("更新采购单失败: %w", err)
	}
	purchase.Status = entity.PurchaseStatusOrdered
	if _, err := s.notifications.Create(ctx, entity.Notification{
		Type:          entity.NotifyOrderCreated,
		Title:         "Pedido ao Fornecedor",
		Message:       fmt.Sprintf("Compra de %s enviada ao fornecedor %s", purchase.MaterialName, purchase.Supplier),
		ReferenceType: "purchase",
		ReferenceID:   purchase.ID,
	}); err != nil {
		return entity.Purchase{}, fmt.Errorf("创建通知失败: %w", err)
	}
	return purchase, nil
}

// Receive 收货：采购单转 received，库存按物料名入账（不存在则建新物料），写一条入库流水并通知
func (s *PurchaseService) Receive(ctx context.Context, purchaseID string) (entity.Purchase, error) {
	purchase, err := s.repo.GetPurchaseByID(ctx, purchaseID)
	if err != nil {
		return entity.Purchase{}, err
	}
	if purchase.Status == entity.PurchaseStatusReceived {
		return entity.Purchase{}, fmt.Errorf("%w: 采购单已收货", ErrValidation)
	}

	now := sheet.FormatTime(time.Now())
	if err := s.repo.UpdatePurchaseFields(ctx, purchase.ID, map[string]string{
		"status":      entity.PurchaseStatusReceived,
		"received_at": now,
	}); err != nil {
		return entity.Purchase{}, fmt.Errorf("更新采购单失败: %w", err)
	}
	purchase.Status = entity.PurchaseStatusReceived
	purchase.ReceivedAt = now

	item, found, err := s.inventory.FindItemByMaterial(ctx, purchase.MaterialName)
	if err != nil {
		return entity.Purchase{}, fmt.Errorf("查询库存失败: %w", err)
	}
	if found {
		if err := s.inventory.UpdateItemFields(ctx, item.ID, map[string]string{
			"quantity":     sheet.FormatFloat(item.Quantity + purchase.Quantity),
			"unit_cost":    sheet.FormatFloat(purchase.UnitCost),
			"last_updated": now,
		}); err != nil {
			return entity.Purchase{}, fmt.Errorf("更新库存失败: %w", err)
		}
	} else {
		item, err = s.inventory.CreateItem(ctx, entity.InventoryItem{
			MaterialName: purchase.MaterialName,
			Quantity:     purchase.Quantity,
			Unit:         purchase.Unit,
			UnitCost:     purchase.UnitCost,
			MinimumStock: 0,
			LastUpdated:  now,
		})
		if err != nil {
			return entity.Purchase{}, fmt.Errorf("创建库存失败: %w", err)
		}
	}

	if _, err := s.inventory.CreateMovement(ctx, entity.InventoryMovement{
		InventoryID:   item.ID,
		MovementType:  entity.MovementIn,
		Quantity:      purchase.Quantity,
		ReferenceType: entity.MovementRefPurchase,
		ReferenceID:   purchase.ID,
		Notes:         fmt.Sprintf("Recebimento de compra %s", purchase.MaterialName),
	}); err != nil {
		return entity.Purchase{}, fmt.Errorf("写库存流水失败: %w", err)
	}

	if _, err := s.notifications.Create(ctx, entity.Notification{
		Type:          entity.NotifyProcessCompleted,
		Title:         "Material Recebido",
		Message:       fmt.Sprintf("%s recebido: %s %s", purchase.MaterialName, sheet.FormatFloat(purchase.Quantity), purchase.Unit),
		ReferenceType: "purchase",
		ReferenceID:   purchase.ID,
	}); err != nil {
		return entity.Purchase{}, fmt.Errorf("创建通知失败: %w", err)
	}

	return purchase, nil
}

// --- Supplier ---

type SupplierRequest struct {
	Name        string `json:"name" binding:"required"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Notes       string `json:"notes"`
}

func (s *PurchaseService) CreateSupplier(ctx context.Context, req SupplierRequest) (entity.Supplier, error) {
	supplier := entity.Supplier{
		Name:        req.Name,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		Notes:       req.Notes,
		Active:      true,
	}
	created, err := s.repo.CreateSupplier(ctx, supplier)
	if err != nil {
		return entity.Supplier{}, fmt.Errorf("创建供应商失败: %w", err)
	}
	return created, nil
}

func (s *PurchaseService) ListSuppliers(ctx context.Context, activeOnly bool) ([]entity.Supplier, error) {
	return s.repo.ListSuppliers(ctx, activeOnly)
}

// DeactivateSupplier 停用供应商（逻辑停用，历史采购保留）
func (s *PurchaseService) DeactivateSupplier(ctx context.Context, id string) error {
	if _, err := s.repo.GetSupplierByID(ctx, id); err != nil {
		return err
	}
	return s.repo.UpdateSupplierFields(ctx, id, map[string]string{
		"active": sheet.FormatBool(false),
	})
}
