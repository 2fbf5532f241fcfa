package repository

import (
	"context"
	"fmt"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/sheet"
)

// SalesRepository 客户/产品/销售订单/报价单的类型化访问。
// 关联（订单-客户、明细-产品）由调用方以多次单表读取+线性匹配完成
type SalesRepository struct {
	store sheet.Store
}

func NewSalesRepository(store sheet.Store) *SalesRepository {
	return &SalesRepository{store: store}
}

// --- Customer ---

func (r *SalesRepository) CreateCustomer(ctx context.Context, c entity.Customer) (entity.Customer, error) {
	rec, err := r.store.Append(ctx, entity.TableCustomers, c.Fields())
	if err != nil {
		return entity.Customer{}, err
	}
	return entity.CustomerFromRecord(rec), nil
}

func (r *SalesRepository) ListCustomers(ctx context.Context) ([]entity.Customer, error) {
	rows, err := r.store.FetchAll(ctx, entity.TableCustomers)
	if err != nil {
		return nil, err
	}
	rows = sheet.SortBy(rows, "name", true)
	out := make([]entity.Customer, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.CustomerFromRecord(row))
	}
	return out, nil
}

func (r *SalesRepository) GetCustomerByID(ctx context.Context, id string) (entity.Customer, error) {
	rows, err := r.store.FetchAll(ctx, entity.TableCustomers)
	if err != nil {
		return entity.Customer{}, err
	}
	row := sheet.ByID(rows, id)
	if row == nil {
		return entity.Customer{}, fmt.Errorf("客户 %s: %w", id, sheet.ErrNotFound)
	}
	return entity.CustomerFromRecord(row), nil
}

// --- Product ---

func (r *SalesRepository) CreateProduct(ctx context.Context, p entity.Product) (entity.Product, error) {
	rec, err := r.store.Append(ctx, entity.TableProducts, p.Fields())
	if err != nil {
		return entity.Product{}, err
	}
	return entity.ProductFromRecord(rec), nil
}

func (r *SalesRepository) ListProducts(ctx context.Context) ([]entity.Product, error) {
	rows, err := r.store.FetchAll(ctx, entity.TableProducts)
	if err != nil {
		return nil, err
	}
	rows = sheet.SortBy(rows, "name", true)
	out := make([]entity.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.ProductFromRecord(row))
	}
	return out, nil
}

func (r *SalesRepository) GetProductByID(ctx context.Context, id string) (entity.Product, error) {
	rows, err := r.store.FetchAll(ctx, entity.TableProducts)
	if err != nil {
		return entity.Product{}, err
	}
	row := sheet.ByID(rows, id)
	if row == nil {
		return entity.Product{}, fmt.Errorf("产品 %s: %w", id, sheet.ErrNotFound)
	}
	return entity.ProductFromRecord(row), nil
}

// --- SalesOrder ---

func (r *SalesRepository) CreateOrder(ctx context.Context, o entity.SalesOrder) (entity.SalesOrder, error) {
	rec, err := r.store.Append(ctx, entity.TableSalesOrders, o.Fields())
	if err != nil {
		return entity.SalesOrder{}, err
	}
	return entity.SalesOrderFromRecord(rec), nil
}

func (r *SalesRepository) GetOrderByID(ctx context.Context, id string) (entity.SalesOrder, error) {
	rows, err := r.store.FetchAll(ctx, entity.TableSalesOrders)
	if err != nil {
		return entity.SalesOrder{}, err
	}
	row := sheet.ByID(rows, id)
	if row == nil {
		return entity.SalesOrder{}, fmt.Errorf("销售订单 %s: %w", id, sheet.ErrNotFound)
	}
	return entity.SalesOrderFromRecord(row), nil
}

// ListOrders 按创建时间倒序
func (r *SalesRepository) ListOrders(ctx context.Context) ([]entity.SalesOrder, error) {
	rows, err := r.store.FetchAll(ctx, entity.TableSalesOrders)
	if err != nil {
		return nil, err
	}
	rows = sheet.SortBy(rows, "created_at", false)
	out := make([]entity.SalesOrder, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.SalesOrderFromRecord(row))
	}
	return out, nil
}

// UpdateOrderStatus 只更新状态字段
func (r *SalesRepository) UpdateOrderStatus(ctx context.Context, id, status string) error {
	_, err := r.store.Update(ctx, entity.TableSalesOrders, id, map[string]string{"status": status})
	return err
}

// DeleteOrder 物理删除（独立的界面操作，编排流程从不调用）
func (r *SalesRepository) DeleteOrder(ctx context.Context, id string) error {
	return r.store.Delete(ctx, entity.TableSalesOrders, id)
}

// --- SalesOrderItem ---

func (r *SalesRepository) CreateItem(ctx context.Context, i entity.SalesOrderItem) (entity.SalesOrderItem, error) {
	rec, err := r.store.Append(ctx, entity.TableSalesOrderItems, i.Fields())
	if err != nil {
		return entity.SalesOrderItem{}, err
	}
	return entity.SalesOrderItemFromRecord(rec), nil
}

// ListItemsByOrder 某张订单的全部明细，保持存储顺序
func (r *SalesRepository) ListItemsByOrder(ctx context.Context, orderID string) ([]entity.SalesOrderItem, error) {
	rows, err := r.store.FetchAll(ctx, entity.TableSalesOrderItems)
	if err != nil {
		return nil, err
	}
	rows = sheet.Filter(rows, "sales_order_id", orderID)
	out := make([]entity.SalesOrderItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.SalesOrderItemFromRecord(row))
	}
	return out, nil
}

// --- Proposal ---

func (r *SalesRepository) CreateProposal(ctx context.Context, p entity.Proposal) (entity.Proposal, error) {
	rec, err := r.store.Append(ctx, entity.TableProposals, p.Fields())
	if err != nil {
		return entity.Proposal{}, err
	}
	return entity.ProposalFromRecord(rec), nil
}

func (r *SalesRepository) GetProposalByID(ctx context.Context, id string) (entity.Proposal, error) {
	rows, err := r.store.FetchAll(ctx, entity.TableProposals)
	if err != nil {
		return entity.Proposal{}, err
	}
	row := sheet.ByID(rows, id)
	if row == nil {
		return entity.Proposal{}, fmt.Errorf("报价单 %s: %w", id, sheet.ErrNotFound)
	}
	return entity.ProposalFromRecord(row), nil
}

func (r *SalesRepository) ListProposals(ctx context.Context) ([]entity.Proposal, error) {
	rows, err := r.store.FetchAll(ctx, entity.TableProposals)
	if err != nil {
		return nil, err
	}
	rows = sheet.SortBy(rows, "created_at", false)
	out := make([]entity.Proposal, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.ProposalFromRecord(row))
	}
	return out, nil
}

func (r *SalesRepository) UpdateProposalFields(ctx context.Context, id string, patch map[string]string) error {
	_, err := r.store.Update(ctx, entity.TableProposals, id, patch)
	return err
}
