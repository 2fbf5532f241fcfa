package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
)

func TestCreateItemRejectsDuplicateMaterial(t *testing.T) {
	services, _, _ := newTestEnv(t)
	ctx := context.Background()

	if _, err := services.Inventory.CreateItem(ctx, CreateInventoryRequest{MaterialName: "Aço 1045"}); err != nil {
		t.Fatal(err)
	}
	_, err := services.Inventory.CreateItem(ctx, CreateInventoryRequest{MaterialName: "Aço 1045"})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("重复物料名应被拒绝，得到 %v", err)
	}
}

func TestAdjustStockOutInsufficient(t *testing.T) {
	services, _, _ := newTestEnv(t)
	ctx := context.Background()

	item, _ := services.Inventory.CreateItem(ctx, CreateInventoryRequest{
		MaterialName: "Alumínio 6061",
		Quantity:     5,
	})
	_, err := services.Inventory.AdjustStock(ctx, item.ID, AdjustStockRequest{
		MovementType: entity.MovementOut,
		Quantity:     6,
	})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("出库超量应被拒绝，得到 %v", err)
	}
}

func TestAdjustStockLowTriggersNotification(t *testing.T) {
	services, repos, _ := newTestEnv(t)
	ctx := context.Background()

	item, _ := services.Inventory.CreateItem(ctx, CreateInventoryRequest{
		MaterialName: "Bronze TM23",
		Quantity:     10,
		MinimumStock: 8,
	})
	updated, err := services.Inventory.AdjustStock(ctx, item.ID, AdjustStockRequest{
		MovementType: entity.MovementOut,
		Quantity:     5,
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Quantity != 5 {
		t.Errorf("出库后数量 = %v", updated.Quantity)
	}

	notifications, _ := repos.Notification.List(ctx)
	if len(notifications) != 1 || notifications[0].Type != entity.NotifyStockLow {
		t.Errorf("低于最低库存应发 stock_low 通知，实际 %v", notifications)
	}

	movements, _ := repos.Inventory.ListMovementsByItem(ctx, item.ID)
	if len(movements) != 1 || movements[0].MovementType != entity.MovementOut {
		t.Error("应记录出库流水")
	}
}

func TestLowStockFilter(t *testing.T) {
	services, repos, _ := newTestEnv(t)
	ctx := context.Background()

	repos.Inventory.CreateItem(ctx, entity.InventoryItem{MaterialName: "a", Quantity: 2, MinimumStock: 5})
	repos.Inventory.CreateItem(ctx, entity.InventoryItem{MaterialName: "b", Quantity: 10, MinimumStock: 5})
	repos.Inventory.CreateItem(ctx, entity.InventoryItem{MaterialName: "c", Quantity: 5, MinimumStock: 5})

	low, err := services.Inventory.LowStock(ctx)
	if err != nil {
		t.Fatal(err)
	}
	// 严格小于最低库存才算低库存，等于不算
	if len(low) != 1 || low[0].MaterialName != "a" {
		t.Errorf("低库存筛选错误: %v", low)
	}
}
