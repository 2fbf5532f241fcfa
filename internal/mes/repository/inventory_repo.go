package repository

import (
	"context"
	"fmt"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/sheet"
)

// InventoryRepository 库存与库存流水的类型化访问
type InventoryRepository struct {
	store sheet.Store
}

func NewInventoryRepository(store sheet.Store) *InventoryRepository {
	return &InventoryRepository{store: store}
}

func (r *InventoryRepository) CreateItem(ctx context.Context, i entity.InventoryItem) (entity.InventoryItem, error) {
	rec, err := r.store.Append(ctx, entity.TableInventory, i.Fields())
	if err != nil {
		return entity.InventoryItem{}, err
	}
	return entity.InventoryItemFromRecord(rec), nil
}

func (r *InventoryRepository) ListItems(ctx context.Context) ([]entity.InventoryItem, error) {
	rows, err := r.store.FetchAll(ctx, entity.TableInventory)
	if err != nil {
		return nil, err
	}
	rows = sheet.SortBy(rows, "material_name", true)
	out := make([]entity.InventoryItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.InventoryItemFromRecord(row))
	}
	return out, nil
}

func (r *InventoryRepository) GetItemByID(ctx context.Context, id string) (entity.InventoryItem, error) {
	rows, err := r.store.FetchAll(ctx, entity.TableInventory)
	if err != nil {
		return entity.InventoryItem{}, err
	}
	row := sheet.ByID(rows, id)
	if row == nil {
		return entity.InventoryItem{}, fmt.Errorf("库存 %s: %w", id, sheet.ErrNotFound)
	}
	return entity.InventoryItemFromRecord(row), nil
}

// FindItemByMaterial 按物料名查找，不存在时返回 found=false（不是错误）
func (r *InventoryRepository) FindItemByMaterial(ctx context.Context, materialName string) (entity.InventoryItem, bool, error) {
	rows, err := r.store.FetchAll(ctx, entity.TableInventory)
	if err != nil {
		return entity.InventoryItem{}, false, err
	}
	row := sheet.First(rows, "material_name", materialName)
	if row == nil {
		return entity.InventoryItem{}, false, nil
	}
	return entity.InventoryItemFromRecord(row), true, nil
}

func (r *InventoryRepository) UpdateItemFields(ctx context.Context, id string, patch map[string]string) error {
	_, err := r.store.Update(ctx, entity.TableInventory, id, patch)
	return err
}

// --- Movement ---

func (r *InventoryRepository) CreateMovement(ctx context.Context, m entity.InventoryMovement) (entity.InventoryMovement, error) {
	rec, err := r.store.Append(ctx, entity.TableInventoryMovements, m.Fields())
	if err != nil {
		return entity.InventoryMovement{}, err
	}
	return entity.InventoryMovementFromRecord(rec), nil
}

func (r *InventoryRepository) ListMovementsByItem(ctx context.Context, inventoryID string) ([]entity.InventoryMovement, error) {
	rows, err := r.store.FetchAll(ctx, entity.TableInventoryMovements)
	if err != nil {
		return nil, err
	}
	rows = sheet.Filter(rows, "inventory_id", inventoryID)
	rows = sheet.SortBy(rows, "created_at", false)
	out := make([]entity.InventoryMovement, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.InventoryMovementFromRecord(row))
	}
	return out, nil
}
