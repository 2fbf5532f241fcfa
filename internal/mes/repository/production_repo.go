package repository

import (
	"context"
	"fmt"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/sheet"
)

// ProductionRepository 生产订单与工序的类型化访问
type ProductionRepository struct {
	store sheet.Store
}

func NewProductionRepository(store sheet.Store) *ProductionRepository {
	return &ProductionRepository{store: store}
}

func (r *ProductionRepository) CreateOrder(ctx context.Context, o entity.ProductionOrder) (entity.ProductionOrder, error) {
	rec, err := r.store.Append(ctx, entity.TableProductionOrders, o.Fields())
	if err != nil {
		return entity.ProductionOrder{}, err
	}
	return entity.ProductionOrderFromRecord(rec), nil
}

func (r *ProductionRepository) GetOrderByID(ctx context.Context, id string) (entity.ProductionOrder, error) {
	rows, err := r.store.FetchAll(ctx, entity.TableProductionOrders)
	if err != nil {
		return entity.ProductionOrder{}, err
	}
	row := sheet.ByID(rows, id)
	if row == nil {
		return entity.ProductionOrder{}, fmt.Errorf("生产订单 %s: %w", id, sheet.ErrNotFound)
	}
	return entity.ProductionOrderFromRecord(row), nil
}

func (r *ProductionRepository) ListOrders(ctx context.Context) ([]entity.ProductionOrder, error) {
	rows, err := r.store.FetchAll(ctx, entity.TableProductionOrders)
	if err != nil {
		return nil, err
	}
	rows = sheet.SortBy(rows, "created_at", false)
	out := make([]entity.ProductionOrder, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.ProductionOrderFromRecord(row))
	}
	return out, nil
}

// ListOrdersBySalesOrder 某张销售订单派生出的全部生产订单
func (r *ProductionRepository) ListOrdersBySalesOrder(ctx context.Context, salesOrderID string) ([]entity.ProductionOrder, error) {
	rows, err := r.store.FetchAll(ctx, entity.TableProductionOrders)
	if err != nil {
		return nil, err
	}
	rows = sheet.Filter(rows, "sales_order_id", salesOrderID)
	out := make([]entity.ProductionOrder, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.ProductionOrderFromRecord(row))
	}
	return out, nil
}

func (r *ProductionRepository) UpdateOrderFields(ctx context.Context, id string, patch map[string]string) error {
	_, err := r.store.Update(ctx, entity.TableProductionOrders, id, patch)
	return err
}

// --- Process ---

func (r *ProductionRepository) CreateProcess(ctx context.Context, p entity.ProductionProcess) (entity.ProductionProcess, error) {
	rec, err := r.store.Append(ctx, entity.TableProductionProcesses, p.Fields())
	if err != nil {
		return entity.ProductionProcess{}, err
	}
	return entity.ProductionProcessFromRecord(rec), nil
}

func (r *ProductionRepository) GetProcessByID(ctx context.Context, id string) (entity.ProductionProcess, error) {
	rows, err := r.store.FetchAll(ctx, entity.TableProductionProcesses)
	if err != nil {
		return entity.ProductionProcess{}, err
	}
	row := sheet.ByID(rows, id)
	if row == nil {
		return entity.ProductionProcess{}, fmt.Errorf("工序 %s: %w", id, sheet.ErrNotFound)
	}
	return entity.ProductionProcessFromRecord(row), nil
}

// ListProcessesByOrder 某张生产订单的工序，按 sequence_order 升序
func (r *ProductionRepository) ListProcessesByOrder(ctx context.Context, orderID string) ([]entity.ProductionProcess, error) {
	rows, err := r.store.FetchAll(ctx, entity.TableProductionProcesses)
	if err != nil {
		return nil, err
	}
	rows = sheet.Filter(rows, "production_order_id", orderID)
	rows = sheet.SortByNumeric(rows, "sequence_order", true)
	out := make([]entity.ProductionProcess, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.ProductionProcessFromRecord(row))
	}
	return out, nil
}

func (r *ProductionRepository) UpdateProcessFields(ctx context.Context, id string, patch map[string]string) error {
	_, err := r.store.Update(ctx, entity.TableProductionProcesses, id, patch)
	return err
}
