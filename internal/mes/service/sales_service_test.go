package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/sheet"
)

func TestCreateOrderWithItems(t *testing.T) {
	services, repos, _ := newTestEnv(t)
	ctx := context.Background()

	customer, err := services.Sales.CreateCustomer(ctx, CreateCustomerRequest{
		Name:    "Metalúrgica Sul",
		Company: "Metalúrgica Sul Ltda",
	})
	if err != nil {
		t.Fatal(err)
	}
	product, err := services.Sales.CreateProduct(ctx, CreateProductRequest{Name: "Eixo usinado"})
	if err != nil {
		t.Fatal(err)
	}
	if product.Complexity != entity.ComplexitySimple {
		t.Errorf("复杂度默认 simple，实际 %s", product.Complexity)
	}

	order, err := services.Sales.CreateOrder(ctx, CreateOrderRequest{
		CustomerID: customer.ID,
		Items: []CreateOrderItem{
			{ProductID: product.ID, Quantity: 10, UnitPrice: 25},
			{ProductID: product.ID, Quantity: 3, UnitPrice: 100},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(order.OrderNumber, "PV-") {
		t.Errorf("订单号 = %s", order.OrderNumber)
	}
	if order.Status != entity.SOStatusDraft {
		t.Errorf("新订单状态 = %s", order.Status)
	}

	items, err := repos.Sales.ListItemsByOrder(ctx, order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("应有2条明细，实际 %d", len(items))
	}
	totals := map[float64]bool{}
	for _, item := range items {
		totals[item.TotalPrice] = true
	}
	if !totals[250] || !totals[300] {
		t.Errorf("明细小计错误: %v", items)
	}
}

func TestCreateOrderUnknownCustomer(t *testing.T) {
	services, _, _ := newTestEnv(t)

	_, err := services.Sales.CreateOrder(context.Background(), CreateOrderRequest{
		CustomerID: "missing",
		Items:      []CreateOrderItem{{ProductID: "p", Quantity: 1, UnitPrice: 1}},
	})
	if !errors.Is(err, sheet.ErrNotFound) {
		t.Errorf("客户不存在应返回 ErrNotFound，得到 %v", err)
	}
}

func TestCreateProposalQuotesOrder(t *testing.T) {
	services, repos, _ := newTestEnv(t)
	ctx := context.Background()

	customer, _ := services.Sales.CreateCustomer(ctx, CreateCustomerRequest{Name: "Cliente A"})
	product, _ := services.Sales.CreateProduct(ctx, CreateProductRequest{Name: "Flange"})
	order, err := services.Sales.CreateOrder(ctx, CreateOrderRequest{
		CustomerID: customer.ID,
		Items:      []CreateOrderItem{{ProductID: product.ID, Quantity: 5, UnitPrice: 40}},
	})
	if err != nil {
		t.Fatal(err)
	}

	proposal, err := services.Sales.CreateProposal(ctx, CreateProposalRequest{
		SalesOrderID: order.ID,
		Subtotal:     200,
		Total:        200,
		DeliveryDays: 15,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(proposal.ProposalNumber, "PROP-") {
		t.Errorf("报价单号 = %s", proposal.ProposalNumber)
	}
	if proposal.Status != entity.ProposalStatusPending {
		t.Errorf("新报价单状态 = %s", proposal.Status)
	}

	updated, _ := repos.Sales.GetOrderByID(ctx, order.ID)
	if updated.Status != entity.SOStatusQuoted {
		t.Errorf("出具报价后订单应 quoted，实际 %s", updated.Status)
	}
}

func TestGetOrderJoinsCustomerAndItems(t *testing.T) {
	services, _, _ := newTestEnv(t)
	ctx := context.Background()

	customer, _ := services.Sales.CreateCustomer(ctx, CreateCustomerRequest{Name: "Cliente B"})
	product, _ := services.Sales.CreateProduct(ctx, CreateProductRequest{Name: "Bucha"})
	order, _ := services.Sales.CreateOrder(ctx, CreateOrderRequest{
		CustomerID: customer.ID,
		Items:      []CreateOrderItem{{ProductID: product.ID, Quantity: 2, UnitPrice: 8}},
	})

	detail, err := services.Sales.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if detail.Customer == nil || detail.Customer.Name != "Cliente B" {
		t.Error("应关联客户")
	}
	if len(detail.Items) != 1 || detail.Items[0].Product == nil || detail.Items[0].Product.Name != "Bucha" {
		t.Error("明细应关联产品")
	}
}
