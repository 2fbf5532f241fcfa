package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/sheet"
	"go.uber.org/zap"
)

func newTestEnv(t *testing.T) (*Services, *repository.Repositories, *sheet.MemoryStore) {
	t.Helper()
	store := sheet.NewMemoryStore()
	repos := repository.NewRepositories(store)
	return NewServices(repos, zap.NewNop()), repos, store
}

// seedApprovalScenario 准备一张待批准的报价单：
// 订单含两条明细（数量150和50），一条启用的 min_quantity=100 条件
func seedApprovalScenario(t *testing.T, repos *repository.Repositories) (proposalID, orderID string) {
	t.Helper()
	ctx := context.Background()

	product, err := repos.Sales.CreateProduct(ctx, entity.Product{
		Name:       "Eixo usinado",
		Complexity: entity.ComplexitySimple,
	})
	if err != nil {
		t.Fatal(err)
	}

	order, err := repos.Sales.CreateOrder(ctx, entity.SalesOrder{
		OrderNumber: "PV-00000001",
		CustomerID:  "cust-1",
		Status:      entity.SOStatusQuoted,
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, qty := range []float64{150, 50} {
		_, err := repos.Sales.CreateItem(ctx, entity.SalesOrderItem{
			SalesOrderID: order.ID,
			ProductID:    product.ID,
			Quantity:     qty,
			UnitPrice:    10,
			TotalPrice:   qty * 10,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	if _, err := repos.Quality.CreateCriteria(ctx, entity.InspectionCriteria{
		Name:        "Lote grande",
		Enabled:     true,
		MinQuantity: 100,
	}); err != nil {
		t.Fatal(err)
	}

	proposal, err := repos.Sales.CreateProposal(ctx, entity.Proposal{
		SalesOrderID:   order.ID,
		ProposalNumber: "PROP-00000001",
		Status:         entity.ProposalStatusPending,
	})
	if err != nil {
		t.Fatal(err)
	}
	return proposal.ID, order.ID
}

func TestApproveFanOut(t *testing.T) {
	services, repos, _ := newTestEnv(t)
	proposalID, orderID := seedApprovalScenario(t, repos)
	ctx := context.Background()

	result, err := services.Proposal.Approve(ctx, proposalID)
	if err != nil {
		t.Fatal(err)
	}

	if result.Proposal.Status != entity.ProposalStatusApproved {
		t.Errorf("报价单状态 = %s", result.Proposal.Status)
	}
	if result.Proposal.ApprovedAt == "" {
		t.Error("应记录 approved_at")
	}

	// 每条明细一张生产订单
	if len(result.ProductionOrders) != 2 {
		t.Fatalf("应创建2张生产订单，实际 %d", len(result.ProductionOrders))
	}
	for _, po := range result.ProductionOrders {
		if po.Status != entity.ProdStatusPending || po.Priority != entity.PriorityMedium {
			t.Errorf("生产订单初始状态错误: %s/%s", po.Status, po.Priority)
		}
		if po.PlannedStart == "" || po.PlannedEnd == "" {
			t.Error("应有排期窗口")
		}
		processes, err := repos.Production.ListProcessesByOrder(ctx, po.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(processes) != 4 {
			t.Fatalf("每张订单4道工序，实际 %d", len(processes))
		}
		for i, p := range processes {
			if p.ProcessType != entity.ProcessSequence[i] || p.SequenceOrder != i+1 {
				t.Errorf("工序 %d 类型/序号错误: %s/%d", i, p.ProcessType, p.SequenceOrder)
			}
			if p.Status != entity.ProcessStatusPending || p.EstimatedMinutes != entity.DefaultEstimatedMinutes {
				t.Errorf("工序初始状态错误: %+v", p)
			}
		}
	}

	// 数量150命中 min_quantity=100，数量50不命中
	if len(result.Inspections) != 1 {
		t.Fatalf("应创建1张质检单，实际 %d", len(result.Inspections))
	}
	if result.Inspections[0].TriggerReason != "Critérios automáticos atendidos" {
		t.Errorf("触发原因 = %q", result.Inspections[0].TriggerReason)
	}

	// 一条质检通知 + 一条批准通知
	notifications, err := repos.Notification.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(notifications) != 2 {
		t.Fatalf("应有2条通知，实际 %d", len(notifications))
	}
	types := map[string]int{}
	for _, n := range notifications {
		types[n.Type]++
	}
	if types[entity.NotifyInspectionRequired] != 1 || types[entity.NotifyOrderApproved] != 1 {
		t.Errorf("通知类型分布错误: %v", types)
	}

	// 销售订单最终 in_production
	order, err := repos.Sales.GetOrderByID(ctx, orderID)
	if err != nil {
		t.Fatal(err)
	}
	if order.Status != entity.SOStatusInProduction {
		t.Errorf("销售订单状态 = %s", order.Status)
	}
}

func TestApproveRequiresPending(t *testing.T) {
	services, repos, _ := newTestEnv(t)
	proposalID, _ := seedApprovalScenario(t, repos)
	ctx := context.Background()

	if _, err := services.Proposal.Approve(ctx, proposalID); err != nil {
		t.Fatal(err)
	}
	// 第二次批准：状态已是 approved
	_, err := services.Proposal.Approve(ctx, proposalID)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("重复批准应返回 ErrValidation，得到 %v", err)
	}
}

func TestApproveSingleFlight(t *testing.T) {
	services, repos, _ := newTestEnv(t)
	proposalID, _ := seedApprovalScenario(t, repos)

	// 占住同一张报价单的批准槽位
	if !services.Proposal.acquire(proposalID) {
		t.Fatal("首次 acquire 应成功")
	}
	defer services.Proposal.release(proposalID)

	_, err := services.Proposal.Approve(context.Background(), proposalID)
	if !errors.Is(err, ErrApprovalInFlight) {
		t.Errorf("并发批准应返回 ErrApprovalInFlight，得到 %v", err)
	}
}

func TestApproveNotFound(t *testing.T) {
	services, _, _ := newTestEnv(t)
	_, err := services.Proposal.Approve(context.Background(), "missing")
	if !errors.Is(err, sheet.ErrNotFound) {
		t.Errorf("期望 ErrNotFound，得到 %v", err)
	}
}

func TestRejectNoFanOut(t *testing.T) {
	services, repos, _ := newTestEnv(t)
	proposalID, orderID := seedApprovalScenario(t, repos)
	ctx := context.Background()

	proposal, err := services.Proposal.Reject(ctx, proposalID)
	if err != nil {
		t.Fatal(err)
	}
	if proposal.Status != entity.ProposalStatusRejected {
		t.Errorf("报价单状态 = %s", proposal.Status)
	}

	order, _ := repos.Sales.GetOrderByID(ctx, orderID)
	if order.Status != entity.SOStatusCancelled {
		t.Errorf("拒绝后订单应为 cancelled，实际 %s", order.Status)
	}

	orders, _ := repos.Production.ListOrdersBySalesOrder(ctx, orderID)
	if len(orders) != 0 {
		t.Error("拒绝不应创建生产订单")
	}
	notifications, _ := repos.Notification.List(ctx)
	if len(notifications) != 0 {
		t.Error("拒绝不应发通知")
	}
}

func TestShouldInspect(t *testing.T) {
	simple := entity.Product{Complexity: entity.ComplexitySimple}
	complexHeavy := entity.Product{Complexity: entity.ComplexityComplex, EstimatedWeight: 80}

	cases := []struct {
		name     string
		criteria []entity.InspectionCriteria
		quantity float64
		product  entity.Product
		want     bool
	}{
		{"无条件", nil, 1000, simple, false},
		{"数量达到阈值", []entity.InspectionCriteria{{MinQuantity: 100}}, 150, simple, true},
		{"数量低于阈值", []entity.InspectionCriteria{{MinQuantity: 100}}, 99, simple, false},
		{"数量等于阈值", []entity.InspectionCriteria{{MinQuantity: 100}}, 100, simple, true},
		{"重量达到阈值", []entity.InspectionCriteria{{MinWeight: 50}}, 1, complexHeavy, true},
		{"重量未知不比较", []entity.InspectionCriteria{{MinWeight: 50}}, 1, simple, false},
		{"复杂度匹配", []entity.InspectionCriteria{{Complexity: entity.ComplexityComplex}}, 1, complexHeavy, true},
		{"复杂度不匹配", []entity.InspectionCriteria{{Complexity: entity.ComplexityComplex}}, 1, simple, false},
		{"全部阈值未设置", []entity.InspectionCriteria{{}}, 1000, complexHeavy, false},
		{"多条任一命中", []entity.InspectionCriteria{{MinQuantity: 9999}, {Complexity: entity.ComplexitySimple}}, 1, simple, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ShouldInspect(c.criteria, c.quantity, c.product); got != c.want {
				t.Errorf("ShouldInspect = %v, want %v", got, c.want)
			}
		})
	}
}
