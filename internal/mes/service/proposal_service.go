package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/sheet"
	"go.uber.org/zap"
)

// ErrApprovalInFlight 同一张报价单的批准正在进行中
var ErrApprovalInFlight = fmt.Errorf("%w: 该报价单正在批准中", ErrValidation)

// 报价批准后生产订单的默认排期窗口
const defaultLeadTime = 14 * 24 * time.Hour

// ProposalService 报价单批准/拒绝的编排。
// 批准是一串顺序写入，任何一步失败即中止并返回错误，
// 已落盘的写入不回滚（存储层没有事务，语义与表格数据一致）
type ProposalService struct {
	sales         *repository.SalesRepository
	production    *repository.ProductionRepository
	quality       *repository.QualityRepository
	notifications *repository.NotificationRepository
	logger        *zap.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewProposalService(
	sales *repository.SalesRepository,
	production *repository.ProductionRepository,
	quality *repository.QualityRepository,
	notifications *repository.NotificationRepository,
	logger *zap.Logger,
) *ProposalService {
	return &ProposalService{
		sales:         sales,
		production:    production,
		quality:       quality,
		notifications: notifications,
		logger:        logger,
		inFlight:      make(map[string]struct{}),
	}
}

// ApproveResult 批准流程的产出汇总
type ApproveResult struct {
	Proposal         entity.Proposal           `json:"proposal"`
	ProductionOrders []entity.ProductionOrder  `json:"production_orders"`
	Inspections      []entity.QualityInspection `json:"inspections"`
}

// Approve 批准报价单并展开生产：
// 报价单 approved -> 销售订单 approved -> 每条明细一张生产订单（含4道工序）
// -> 逐明细评估质检条件 -> 销售订单 in_production -> 通知。
// 同一报价单同一时刻只允许一个批准在执行
func (s *ProposalService) Approve(ctx context.Context, proposalID string) (*ApproveResult, error) {
	if !s.acquire(proposalID) {
		return nil, ErrApprovalInFlight
	}
	defer s.release(proposalID)

	proposal, err := s.sales.GetProposalByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.Status != entity.ProposalStatusPending {
		return nil, fmt.Errorf("%w: 报价单状态为 %s，仅 pending 可批准", ErrValidation, proposal.Status)
	}

	now := time.Now()
	nowStr := sheet.FormatTime(now)

	if err := s.sales.UpdateProposalFields(ctx, proposal.ID, map[string]string{
		"status":      entity.ProposalStatusApproved,
		"approved_at": nowStr,
	}); err != nil {
		return nil, fmt.Errorf("更新报价单状态失败: %w", err)
	}
	proposal.Status = entity.ProposalStatusApproved
	proposal.ApprovedAt = nowStr
	s.logger.Info("报价单已批准", zap.String("proposal_id", proposal.ID), zap.String("proposal_number", proposal.ProposalNumber))

	if err := s.sales.UpdateOrderStatus(ctx, proposal.SalesOrderID, entity.SOStatusApproved); err != nil {
		return nil, fmt.Errorf("更新销售订单状态失败: %w", err)
	}

	items, err := s.sales.ListItemsByOrder(ctx, proposal.SalesOrderID)
	if err != nil {
		return nil, fmt.Errorf("读取订单明细失败: %w", err)
	}

	result := &ApproveResult{
		Proposal:         proposal,
		ProductionOrders: make([]entity.ProductionOrder, 0, len(items)),
		Inspections:      make([]entity.QualityInspection, 0),
	}

	for _, item := range items {
		order, err := s.createProductionOrder(ctx, proposal.SalesOrderID, item, now)
		if err != nil {
			return nil, err
		}
		result.ProductionOrders = append(result.ProductionOrders, order)
		s.logger.Info("生产订单已创建",
			zap.String("production_order_id", order.ID),
			zap.String("order_number", order.OrderNumber),
			zap.String("sales_order_item_id", item.ID))

		inspection, created, err := s.maybeCreateInspection(ctx, order, item)
		if err != nil {
			return nil, err
		}
		if created {
			result.Inspections = append(result.Inspections, inspection)
		}
	}

	if err := s.sales.UpdateOrderStatus(ctx, proposal.SalesOrderID, entity.SOStatusInProduction); err != nil {
		return nil, fmt.Errorf("更新销售订单状态失败: %w", err)
	}

	if _, err := s.notifications.Create(ctx, entity.Notification{
		Type:          entity.NotifyOrderApproved,
		Title:         "Proposta Aprovada",
		Message:       "Proposta aprovada e ordens de produção criadas",
		ReferenceType: "proposal",
		ReferenceID:   proposal.ID,
	}); err != nil {
		return nil, fmt.Errorf("创建通知失败: %w", err)
	}

	s.logger.Info("批准流程完成",
		zap.String("proposal_id", proposal.ID),
		zap.Int("production_orders", len(result.ProductionOrders)),
		zap.Int("inspections", len(result.Inspections)))
	return result, nil
}

// Reject 拒绝报价单，销售订单转入 cancelled，不做任何展开
func (s *ProposalService) Reject(ctx context.Context, proposalID string) (entity.Proposal, error) {
	proposal, err := s.sales.GetProposalByID(ctx, proposalID)
	if err != nil {
		return entity.Proposal{}, err
	}
	if proposal.Status != entity.ProposalStatusPending {
		return entity.Proposal{}, fmt.Errorf("%w: 报价单状态为 %s，仅 pending 可拒绝", ErrValidation, proposal.Status)
	}
	if err := s.sales.UpdateProposalFields(ctx, proposal.ID, map[string]string{
		"status": entity.ProposalStatusRejected,
	}); err != nil {
		return entity.Proposal{}, fmt.Errorf("更新报价单状态失败: %w", err)
	}
	if err := s.sales.UpdateOrderStatus(ctx, proposal.SalesOrderID, entity.SOStatusCancelled); err != nil {
		return entity.Proposal{}, fmt.Errorf("更新销售订单状态失败: %w", err)
	}
	proposal.Status = entity.ProposalStatusRejected
	s.logger.Info("报价单已拒绝", zap.String("proposal_id", proposal.ID))
	return proposal, nil
}

func (s *ProposalService) createProductionOrder(ctx context.Context, salesOrderID string, item entity.SalesOrderItem, now time.Time) (entity.ProductionOrder, error) {
	order := entity.ProductionOrder{
		OrderNumber:      newProductionOrderNumber(),
		SalesOrderID:     salesOrderID,
		SalesOrderItemID: item.ID,
		ProductID:        item.ProductID,
		Quantity:         item.Quantity,
		Priority:         entity.PriorityMedium,
		Status:           entity.ProdStatusPending,
		PlannedStart:     sheet.FormatTime(now),
		PlannedEnd:       sheet.FormatTime(now.Add(defaultLeadTime)),
		UpdatedAt:        sheet.FormatTime(now),
	}
	created, err := s.production.CreateOrder(ctx, order)
	if err != nil {
		return entity.ProductionOrder{}, fmt.Errorf("创建生产订单失败: %w", err)
	}

	for i, processType := range entity.ProcessSequence {
		process := entity.ProductionProcess{
			ProductionOrderID: created.ID,
			ProcessType:       processType,
			SequenceOrder:     i + 1,
			Status:            entity.ProcessStatusPending,
			EstimatedMinutes:  entity.DefaultEstimatedMinutes,
		}
		if _, err := s.production.CreateProcess(ctx, process); err != nil {
			return entity.ProductionOrder{}, fmt.Errorf("创建工序失败: %w", err)
		}
	}
	return created, nil
}

// maybeCreateInspection 按启用的质检条件评估该生产订单，命中则建质检单并通知。
// 条件每个明细重新读取，读缓存 TTL 内自然合并
func (s *ProposalService) maybeCreateInspection(ctx context.Context, order entity.ProductionOrder, item entity.SalesOrderItem) (entity.QualityInspection, bool, error) {
	criteria, err := s.quality.ListEnabledCriteria(ctx)
	if err != nil {
		return entity.QualityInspection{}, false, fmt.Errorf("读取质检条件失败: %w", err)
	}
	if len(criteria) == 0 {
		return entity.QualityInspection{}, false, nil
	}

	product, err := s.sales.GetProductByID(ctx, item.ProductID)
	if err != nil {
		return entity.QualityInspection{}, false, fmt.Errorf("读取产品失败: %w", err)
	}

	if !ShouldInspect(criteria, item.Quantity, product) {
		return entity.QualityInspection{}, false, nil
	}

	inspection := entity.QualityInspection{
		ProductionOrderID: order.ID,
		InspectionNumber:  newInspectionNumber(),
		TriggerReason:     "Critérios automáticos atendidos",
		Status:            entity.InspectionStatusPending,
	}
	created, err := s.quality.CreateInspection(ctx, inspection)
	if err != nil {
		return entity.QualityInspection{}, false, fmt.Errorf("创建质检单失败: %w", err)
	}
	s.logger.Info("质检单已创建",
		zap.String("inspection_id", created.ID),
		zap.String("production_order_id", order.ID))

	if _, err := s.notifications.Create(ctx, entity.Notification{
		Type:          entity.NotifyInspectionRequired,
		Title:         "Inspeção Necessária",
		Message:       fmt.Sprintf("Inspeção %s criada para ordem %s", created.InspectionNumber, order.OrderNumber),
		ReferenceType: "quality_inspection",
		ReferenceID:   order.ID,
	}); err != nil {
		return entity.QualityInspection{}, false, fmt.Errorf("创建通知失败: %w", err)
	}
	return created, true, nil
}

// ShouldInspect 质检条件评估，任一条件命中即需要质检。
// 单条条件内部：数量阈值、重量阈值、复杂度三项任一满足即命中。
// 重量阈值要求产品有非零预估重量才参与比较
func ShouldInspect(criteria []entity.InspectionCriteria, quantity float64, product entity.Product) bool {
	for _, c := range criteria {
		if c.MinQuantity > 0 && quantity >= c.MinQuantity {
			return true
		}
		if c.MinWeight > 0 && product.EstimatedWeight > 0 && product.EstimatedWeight >= c.MinWeight {
			return true
		}
		if c.Complexity != "" && product.Complexity == c.Complexity {
			return true
		}
	}
	return false
}

func (s *ProposalService) acquire(proposalID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[proposalID]; busy {
		return false
	}
	s.inFlight[proposalID] = struct{}{}
	return true
}

func (s *ProposalService) release(proposalID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, proposalID)
}
