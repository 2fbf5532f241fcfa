package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/sheet"
)

// InventoryService 库存查询、手工调整与低库存提醒
type InventoryService struct {
	repo          *repository.InventoryRepository
	notifications *repository.NotificationRepository
}

func NewInventoryService(
	repo *repository.InventoryRepository,
	notifications *repository.NotificationRepository,
) *InventoryService {
	return &InventoryService{repo: repo, notifications: notifications}
}

func (s *InventoryService) ListItems(ctx context.Context) ([]entity.InventoryItem, error) {
	return s.repo.ListItems(ctx)
}

type CreateInventoryRequest struct {
	MaterialName string  `json:"material_name" binding:"required"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	UnitCost     float64 `json:"unit_cost"`
	MinimumStock float64 `json:"minimum_stock"`
	Location     string  `json:"location"`
}

// CreateItem 建立物料档案。物料名按业务约定唯一，重复时拒绝
func (s *InventoryService) CreateItem(ctx context.Context, req CreateInventoryRequest) (entity.InventoryItem, error) {
	if _, found, err := s.repo.FindItemByMaterial(ctx, req.MaterialName); err != nil {
		return entity.InventoryItem{}, err
	} else if found {
		return entity.InventoryItem{}, fmt.Errorf("%w: 物料 %s 已存在", ErrValidation, req.MaterialName)
	}
	item := entity.InventoryItem{
		MaterialName: req.MaterialName,
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		UnitCost:     req.UnitCost,
		MinimumStock: req.MinimumStock,
		Location:     req.Location,
		LastUpdated:  sheet.FormatTime(time.Now()),
	}
	created, err := s.repo.CreateItem(ctx, item)
	if err != nil {
		return entity.InventoryItem{}, fmt.Errorf("创建库存失败: %w", err)
	}
	return created, nil
}

type AdjustStockRequest struct {
	MovementType string  `json:"movement_type" binding:"required"`
	Quantity     float64 `json:"quantity" binding:"required,gt=0"`
	Notes        string  `json:"notes"`
}

// AdjustStock 手工出入库。出库不允许把库存打成负数；
// 调整后低于最低库存时发一条 stock_low 通知
func (s *InventoryService) AdjustStock(ctx context.Context, itemID string, req AdjustStockRequest) (entity.InventoryItem, error) {
	if req.MovementType != entity.MovementIn && req.MovementType != entity.MovementOut {
		return entity.InventoryItem{}, fmt.Errorf("%w: 非法变动方向 %s", ErrValidation, req.MovementType)
	}
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return entity.InventoryItem{}, err
	}

	newQuantity := item.Quantity + req.Quantity
	if req.MovementType == entity.MovementOut {
		newQuantity = item.Quantity - req.Quantity
		if newQuantity < 0 {
			return entity.InventoryItem{}, fmt.Errorf("%w: 库存不足，当前 %s", ErrValidation, sheet.FormatFloat(item.Quantity))
		}
	}

	now := sheet.FormatTime(time.Now())
	if err := s.repo.UpdateItemFields(ctx, item.ID, map[string]string{
		"quantity":     sheet.FormatFloat(newQuantity),
		"last_updated": now,
	}); err != nil {
		return entity.InventoryItem{}, fmt.Errorf("更新库存失败: %w", err)
	}
	if _, err := s.repo.CreateMovement(ctx, entity.InventoryMovement{
		InventoryID:  item.ID,
		MovementType: req.MovementType,
		Quantity:     req.Quantity,
		Notes:        req.Notes,
	}); err != nil {
		return entity.InventoryItem{}, fmt.Errorf("写库存流水失败: %w", err)
	}

	item.Quantity = newQuantity
	item.LastUpdated = now

	if newQuantity < item.MinimumStock {
		if _, err := s.notifications.Create(ctx, entity.Notification{
			Type:          entity.NotifyStockLow,
			Title:         "Estoque Baixo",
			Message:       fmt.Sprintf("%s abaixo do estoque mínimo (%s/%s)", item.MaterialName, sheet.FormatFloat(newQuantity), sheet.FormatFloat(item.MinimumStock)),
			ReferenceType: "inventory",
			ReferenceID:   item.ID,
		}); err != nil {
			return entity.InventoryItem{}, fmt.Errorf("创建通知失败: %w", err)
		}
	}
	return item, nil
}

// LowStock 低于最低库存的物料
func (s *InventoryService) LowStock(ctx context.Context) ([]entity.InventoryItem, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.InventoryItem, 0)
	for _, item := range items {
		if item.Quantity < item.MinimumStock {
			out = append(out, item)
		}
	}
	return out, nil
}

// ListMovements 某个物料的库存流水
func (s *InventoryService) ListMovements(ctx context.Context, itemID string) ([]entity.InventoryMovement, error) {
	if _, err := s.repo.GetItemByID(ctx, itemID); err != nil {
		return nil, err
	}
	return s.repo.ListMovementsByItem(ctx, itemID)
}
