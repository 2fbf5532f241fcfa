package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/sheet"
)

// SalesService 客户、产品、销售订单与报价单
type SalesService struct {
	repo *repository.SalesRepository
}

func NewSalesService(repo *repository.SalesRepository) *SalesService {
	return &SalesService{repo: repo}
}

// --- Customer ---

type CreateCustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Address string `json:"address"`
}

func (s *SalesService) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (entity.Customer, error) {
	customer := entity.Customer{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Address: req.Address,
	}
	created, err := s.repo.CreateCustomer(ctx, customer)
	if err != nil {
		return entity.Customer{}, fmt.Errorf("创建客户失败: %w", err)
	}
	return created, nil
}

func (s *SalesService) ListCustomers(ctx context.Context) ([]entity.Customer, error) {
	return s.repo.ListCustomers(ctx)
}

// --- Product ---

type CreateProductRequest struct {
	Name            string  `json:"name" binding:"required"`
	DrawingURL      string  `json:"drawing_url"`
	Material        string  `json:"material"`
	UnitPrice       float64 `json:"unit_price"`
	EstimatedWeight float64 `json:"estimated_weight"`
	Complexity      string  `json:"complexity"`
	Notes           string  `json:"notes"`
}

func (s *SalesService) CreateProduct(ctx context.Context, req CreateProductRequest) (entity.Product, error) {
	complexity := req.Complexity
	if complexity == "" {
		complexity = entity.ComplexitySimple
	}
	product := entity.Product{
		Name:            req.Name,
		DrawingURL:      req.DrawingURL,
		Material:        req.Material,
		UnitPrice:       req.UnitPrice,
		EstimatedWeight: req.EstimatedWeight,
		Complexity:      complexity,
		Notes:           req.Notes,
	}
	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return entity.Product{}, fmt.Errorf("创建产品失败: %w", err)
	}
	return created, nil
}

func (s *SalesService) ListProducts(ctx context.Context) ([]entity.Product, error) {
	return s.repo.ListProducts(ctx)
}

// --- SalesOrder ---

type CreateOrderItem struct {
	ProductID string  `json:"product_id" binding:"required"`
	Quantity  float64 `json:"quantity" binding:"required,gt=0"`
	UnitPrice float64 `json:"unit_price" binding:"required,gt=0"`
}

type CreateOrderRequest struct {
	CustomerID string            `json:"customer_id" binding:"required"`
	CreatedBy  string            `json:"created_by"`
	Notes      string            `json:"notes"`
	Items      []CreateOrderItem `json:"items" binding:"required,min=1"`
}

// CreateOrder 创建销售订单及其明细。明细写入是多次独立请求，中途失败不回滚
func (s *SalesService) CreateOrder(ctx context.Context, req CreateOrderRequest) (entity.SalesOrder, error) {
	if _, err := s.repo.GetCustomerByID(ctx, req.CustomerID); err != nil {
		return entity.SalesOrder{}, fmt.Errorf("客户不存在: %w", err)
	}

	order := entity.SalesOrder{
		OrderNumber: newSalesOrderNumber(),
		CustomerID:  req.CustomerID,
		Status:      entity.SOStatusDraft,
		CreatedBy:   req.CreatedBy,
		Notes:       req.Notes,
		UpdatedAt:   sheet.FormatTime(time.Now()),
	}
	created, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		return entity.SalesOrder{}, fmt.Errorf("创建销售订单失败: %w", err)
	}

	for _, it := range req.Items {
		item := entity.SalesOrderItem{
			SalesOrderID: created.ID,
			ProductID:    it.ProductID,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			TotalPrice:   it.UnitPrice * it.Quantity,
		}
		if _, err := s.repo.CreateItem(ctx, item); err != nil {
			return entity.SalesOrder{}, fmt.Errorf("创建订单明细失败: %w", err)
		}
	}
	return created, nil
}

// ListOrders 订单列表，关联客户与明细
func (s *SalesService) ListOrders(ctx context.Context) ([]entity.SalesOrder, error) {
	orders, err := s.repo.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	customers, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]entity.Customer, len(customers))
	for _, c := range customers {
		byID[c.ID] = c
	}
	for i := range orders {
		if c, ok := byID[orders[i].CustomerID]; ok {
			cc := c
			orders[i].Customer = &cc
		}
	}
	return orders, nil
}

// GetOrder 单张订单，关联客户、明细与明细产品
func (s *SalesService) GetOrder(ctx context.Context, id string) (entity.SalesOrder, error) {
	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return entity.SalesOrder{}, err
	}
	if customer, err := s.repo.GetCustomerByID(ctx, order.CustomerID); err == nil {
		order.Customer = &customer
	}
	items, err := s.itemsWithProducts(ctx, order.ID)
	if err != nil {
		return entity.SalesOrder{}, err
	}
	order.Items = items
	return order, nil
}

func (s *SalesService) DeleteOrder(ctx context.Context, id string) error {
	return s.repo.DeleteOrder(ctx, id)
}

func (s *SalesService) itemsWithProducts(ctx context.Context, orderID string) ([]entity.SalesOrderItem, error) {
	items, err := s.repo.ListItemsByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]entity.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for i := range items {
		if p, ok := byID[items[i].ProductID]; ok {
			pp := p
			items[i].Product = &pp
		}
	}
	return items, nil
}

// --- Proposal ---

type CreateProposalRequest struct {
	SalesOrderID    string  `json:"sales_order_id" binding:"required"`
	Subtotal        float64 `json:"subtotal"`
	Discount        float64 `json:"discount"`
	Total           float64 `json:"total"`
	DeliveryDays    int     `json:"delivery_days"`
	PaymentTerms    string  `json:"payment_terms"`
	ValidityDays    int     `json:"validity_days"`
	TermsConditions string  `json:"terms_conditions"`
}

// CreateProposal 为订单出具报价，订单转入 quoted
func (s *SalesService) CreateProposal(ctx context.Context, req CreateProposalRequest) (entity.Proposal, error) {
	if _, err := s.repo.GetOrderByID(ctx, req.SalesOrderID); err != nil {
		return entity.Proposal{}, fmt.Errorf("销售订单不存在: %w", err)
	}

	proposal := entity.Proposal{
		SalesOrderID:    req.SalesOrderID,
		ProposalNumber:  newProposalNumber(),
		Subtotal:        req.Subtotal,
		Discount:        req.Discount,
		Total:           req.Total,
		DeliveryDays:    req.DeliveryDays,
		PaymentTerms:    req.PaymentTerms,
		ValidityDays:    req.ValidityDays,
		TermsConditions: req.TermsConditions,
		Status:          entity.ProposalStatusPending,
	}
	created, err := s.repo.CreateProposal(ctx, proposal)
	if err != nil {
		return entity.Proposal{}, fmt.Errorf("创建报价单失败: %w", err)
	}

	if err := s.repo.UpdateOrderStatus(ctx, req.SalesOrderID, entity.SOStatusQuoted); err != nil {
		return entity.Proposal{}, fmt.Errorf("更新订单状态失败: %w", err)
	}
	return created, nil
}

// ListProposals 报价单列表，关联订单与客户
func (s *SalesService) ListProposals(ctx context.Context) ([]entity.Proposal, error) {
	proposals, err := s.repo.ListProposals(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.repo.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	customers, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	orderByID := make(map[string]entity.SalesOrder, len(orders))
	for _, o := range orders {
		orderByID[o.ID] = o
	}
	customerByID := make(map[string]entity.Customer, len(customers))
	for _, c := range customers {
		customerByID[c.ID] = c
	}
	for i := range proposals {
		if o, ok := orderByID[proposals[i].SalesOrderID]; ok {
			if c, ok := customerByID[o.CustomerID]; ok {
				cc := c
				o.Customer = &cc
			}
			oo := o
			proposals[i].SalesOrder = &oo
		}
	}
	return proposals, nil
}
