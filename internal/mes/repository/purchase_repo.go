package repository

import (
	"context"
	"fmt"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/sheet"
)

// PurchaseRepository 采购与供应商的类型化访问
type PurchaseRepository struct {
	store sheet.Store
}

func NewPurchaseRepository(store sheet.Store) *PurchaseRepository {
	return &PurchaseRepository{store: store}
}

func (r *PurchaseRepository) CreatePurchase(ctx context.Context, p entity.Purchase) (entity.Purchase, error) {
	rec, err := r.store.Append(ctx, entity.TablePurchases, p.Fields())
	if err != nil {
		return entity.Purchase{}, err
	}
	return entity.PurchaseFromRecord(rec), nil
}

func (r *PurchaseRepository) GetPurchaseByID(ctx context.Context, id string) (entity.Purchase, error) {
	rows, err := r.store.FetchAll(ctx, entity.TablePurchases)
	if err != nil {
		return entity.Purchase{}, err
	}
	row := sheet.ByID(rows, id)
	if row == nil {
		return entity.Purchase{}, fmt.Errorf("采购单 %s: %w", id, sheet.ErrNotFound)
	}
	return entity.PurchaseFromRecord(row), nil
}

// ListPurchases 按申请时间倒序
func (r *PurchaseRepository) ListPurchases(ctx context.Context) ([]entity.Purchase, error) {
	rows, err := r.store.FetchAll(ctx, entity.TablePurchases)
	if err != nil {
		return nil, err
	}
	rows = sheet.SortBy(rows, "requested_at", false)
	out := make([]entity.Purchase, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.PurchaseFromRecord(row))
	}
	return out, nil
}

// ListPurchasesByOrder 某张生产订单的物料采购
func (r *PurchaseRepository) ListPurchasesByOrder(ctx context.Context, productionOrderID string) ([]entity.Purchase, error) {
	rows, err := r.store.FetchAll(ctx, entity.TablePurchases)
	if err != nil {
		return nil, err
	}
	rows = sheet.Filter(rows, "production_order_id", productionOrderID)
	rows = sheet.SortBy(rows, "requested_at", false)
	out := make([]entity.Purchase, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.PurchaseFromRecord(row))
	}
	return out, nil
}

func (r *PurchaseRepository) UpdatePurchaseFields(ctx context.Context, id string, patch map[string]string) error {
	_, err := r.store.Update(ctx, entity.TablePurchases, id, patch)
	return err
}

// --- Supplier ---

func (r *PurchaseRepository) CreateSupplier(ctx context.Context, s entity.Supplier) (entity.Supplier, error) {
	rec, err := r.store.Append(ctx, entity.TableSuppliers, s.Fields())
	if err != nil {
		return entity.Supplier{}, err
	}
	return entity.SupplierFromRecord(rec), nil
}

// ListSuppliers activeOnly 时仅返回启用的供应商，按名称排序
func (r *PurchaseRepository) ListSuppliers(ctx context.Context, activeOnly bool) ([]entity.Supplier, error) {
	rows, err := r.store.FetchAll(ctx, entity.TableSuppliers)
	if err != nil {
		return nil, err
	}
	rows = sheet.SortBy(rows, "name", true)
	out := make([]entity.Supplier, 0, len(rows))
	for _, row := range rows {
		s := entity.SupplierFromRecord(row)
		if activeOnly && !s.Active {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *PurchaseRepository) UpdateSupplierFields(ctx context.Context, id string, patch map[string]string) error {
	_, err := r.store.Update(ctx, entity.TableSuppliers, id, patch)
	return err
}

func (r *PurchaseRepository) GetSupplierByID(ctx context.Context, id string) (entity.Supplier, error) {
	rows, err := r.store.FetchAll(ctx, entity.TableSuppliers)
	if err != nil {
		return entity.Supplier{}, err
	}
	row := sheet.ByID(rows, id)
	if row == nil {
		return entity.Supplier{}, fmt.Errorf("供应商 %s: %w", id, sheet.ErrNotFound)
	}
	return entity.SupplierFromRecord(row), nil
}
