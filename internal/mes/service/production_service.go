package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/sheet"
)

// ProductionService 生产订单与工序流转
type ProductionService struct {
	repo          *repository.ProductionRepository
	purchases     *repository.PurchaseRepository
	sales         *repository.SalesRepository
	notifications *repository.NotificationRepository
}

func NewProductionService(
	repo *repository.ProductionRepository,
	purchases *repository.PurchaseRepository,
	sales *repository.SalesRepository,
	notifications *repository.NotificationRepository,
) *ProductionService {
	return &ProductionService{
		repo:          repo,
		purchases:     purchases,
		sales:         sales,
		notifications: notifications,
	}
}

// ListOrders 生产订单列表，关联产品
func (s *ProductionService) ListOrders(ctx context.Context) ([]entity.ProductionOrder, error) {
	orders, err := s.repo.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.sales.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]entity.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for i := range orders {
		if p, ok := byID[orders[i].ProductID]; ok {
			pp := p
			orders[i].Product = &pp
		}
	}
	return orders, nil
}

// ProductionOrderDetail 生产订单详情：工序与关联的物料采购
type ProductionOrderDetail struct {
	entity.ProductionOrder
	Processes []entity.ProductionProcess `json:"processes"`
	Materials []entity.Purchase          `json:"materials"`
	Progress  float64                    `json:"progress"`
}

// GetOrder 订单详情，含产品、工序序列、物料采购与进度
func (s *ProductionService) GetOrder(ctx context.Context, id string) (*ProductionOrderDetail, error) {
	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product, err := s.sales.GetProductByID(ctx, order.ProductID); err == nil {
		order.Product = &product
	}
	processes, err := s.repo.ListProcessesByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	materials, err := s.purchases.ListPurchasesByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return &ProductionOrderDetail{
		ProductionOrder: order,
		Processes:       processes,
		Materials:       materials,
		Progress:        Progress(processes),
	}, nil
}

// Progress 完成（或跳过）的工序占比，[0,1]，每次读取重新计算
func Progress(processes []entity.ProductionProcess) float64 {
	if len(processes) == 0 {
		return 0
	}
	done := 0
	for _, p := range processes {
		if p.Status == entity.ProcessStatusCompleted || p.Status == entity.ProcessStatusSkipped {
			done++
		}
	}
	return float64(done) / float64(len(processes))
}

type StartProcessRequest struct {
	OperatorName string `json:"operator_name"`
	MachineUsed  string `json:"machine_used"`
}

// StartProcess 开工一道工序，操作员必填。
// 订单若还在 pending 则转入 in_progress 并记实际开工时间；当前工序总是更新
func (s *ProductionService) StartProcess(ctx context.Context, processID string, req StartProcessRequest) (entity.ProductionProcess, error) {
	if req.OperatorName == "" {
		return entity.ProductionProcess{}, fmt.Errorf("%w: 缺少操作员", ErrValidation)
	}
	process, err := s.repo.GetProcessByID(ctx, processID)
	if err != nil {
		return entity.ProductionProcess{}, err
	}
	if process.Status != entity.ProcessStatusPending {
		return entity.ProductionProcess{}, fmt.Errorf("%w: 工序状态为 %s，仅 pending 可开工", ErrValidation, process.Status)
	}

	now := sheet.FormatTime(time.Now())
	if err := s.repo.UpdateProcessFields(ctx, process.ID, map[string]string{
		"status":        entity.ProcessStatusInProgress,
		"started_at":    now,
		"operator_name": req.OperatorName,
		"machine_used":  req.MachineUsed,
	}); err != nil {
		return entity.ProductionProcess{}, fmt.Errorf("更新工序失败: %w", err)
	}

	order, err := s.repo.GetOrderByID(ctx, process.ProductionOrderID)
	if err != nil {
		return entity.ProductionProcess{}, err
	}
	orderPatch := map[string]string{
		"current_process": process.ProcessType,
		"updated_at":      now,
	}
	if order.Status == entity.ProdStatusPending {
		orderPatch["status"] = entity.ProdStatusInProgress
		orderPatch["actual_start"] = now
	}
	if err := s.repo.UpdateOrderFields(ctx, order.ID, orderPatch); err != nil {
		return entity.ProductionProcess{}, fmt.Errorf("更新生产订单失败: %w", err)
	}

	process.Status = entity.ProcessStatusInProgress
	process.StartedAt = now
	process.OperatorName = req.OperatorName
	process.MachineUsed = req.MachineUsed
	return process, nil
}

type CompleteProcessRequest struct {
	Notes string `json:"notes"`
}

// CompleteProcess 完工一道工序，实际工时按开工时间取整分钟。
// 仅 in_progress 且有开工时间的工序可完工，重复完工直接拒绝。
// 全部工序完成（或跳过）时订单转入 completed 并发通知，
// 否则把 current_process 推进到序号更大的下一道 pending 工序（不自动开工）
func (s *ProductionService) CompleteProcess(ctx context.Context, processID string, req CompleteProcessRequest) (entity.ProductionProcess, error) {
	process, err := s.repo.GetProcessByID(ctx, processID)
	if err != nil {
		return entity.ProductionProcess{}, err
	}
	if process.Status != entity.ProcessStatusInProgress {
		return entity.ProductionProcess{}, fmt.Errorf("%w: 工序状态为 %s，仅 in_progress 可完工", ErrValidation, process.Status)
	}
	if process.StartedAt == "" {
		return entity.ProductionProcess{}, fmt.Errorf("%w: 工序缺少开工时间", ErrValidation)
	}

	now := time.Now()
	nowStr := sheet.FormatTime(now)
	actualMinutes := 0
	if startedAt, err := sheet.ParseTime(process.StartedAt); err == nil {
		actualMinutes = int(math.Round(now.Sub(startedAt).Minutes()))
	}

	patch := map[string]string{
		"status":         entity.ProcessStatusCompleted,
		"completed_at":   nowStr,
		"actual_minutes": sheet.FormatInt(actualMinutes),
	}
	if req.Notes != "" {
		patch["notes"] = req.Notes
	}
	if err := s.repo.UpdateProcessFields(ctx, process.ID, patch); err != nil {
		return entity.ProductionProcess{}, fmt.Errorf("更新工序失败: %w", err)
	}

	siblings, err := s.repo.ListProcessesByOrder(ctx, process.ProductionOrderID)
	if err != nil {
		return entity.ProductionProcess{}, err
	}

	allDone := true
	var next *entity.ProductionProcess
	for i := range siblings {
		p := siblings[i]
		if p.ID == process.ID {
			continue
		}
		if p.Status != entity.ProcessStatusCompleted && p.Status != entity.ProcessStatusSkipped {
			allDone = false
		}
		// siblings 已按 sequence_order 升序，取序号更大的第一道 pending
		if next == nil && p.Status == entity.ProcessStatusPending && p.SequenceOrder > process.SequenceOrder {
			next = &siblings[i]
		}
	}

	order, err := s.repo.GetOrderByID(ctx, process.ProductionOrderID)
	if err != nil {
		return entity.ProductionProcess{}, err
	}

	if allDone {
		if err := s.repo.UpdateOrderFields(ctx, order.ID, map[string]string{
			"status":          entity.ProdStatusCompleted,
			"actual_end":      nowStr,
			"current_process": "",
			"updated_at":      nowStr,
		}); err != nil {
			return entity.ProductionProcess{}, fmt.Errorf("更新生产订单失败: %w", err)
		}
		if _, err := s.notifications.Create(ctx, entity.Notification{
			Type:          entity.NotifyProcessCompleted,
			Title:         "Ordem de Produção Concluída",
			Message:       fmt.Sprintf("Ordem %s concluída com todos os processos finalizados", order.OrderNumber),
			ReferenceType: "production_order",
			ReferenceID:   order.ID,
		}); err != nil {
			return entity.ProductionProcess{}, fmt.Errorf("创建通知失败: %w", err)
		}
	} else if next != nil {
		if err := s.repo.UpdateOrderFields(ctx, order.ID, map[string]string{
			"current_process": next.ProcessType,
			"updated_at":      nowStr,
		}); err != nil {
			return entity.ProductionProcess{}, fmt.Errorf("更新生产订单失败: %w", err)
		}
	}

	process.Status = entity.ProcessStatusCompleted
	process.CompletedAt = nowStr
	process.ActualMinutes = actualMinutes
	if req.Notes != "" {
		process.Notes = req.Notes
	}
	return process, nil
}

// PauseProcess 暂停工序：回到 pending 并抹掉开工信息（破坏性暂停，
// 重新开工从零计时），订单转入 on_hold
func (s *ProductionService) PauseProcess(ctx context.Context, processID string) (entity.ProductionProcess, error) {
	process, err := s.repo.GetProcessByID(ctx, processID)
	if err != nil {
		return entity.ProductionProcess{}, err
	}
	if process.Status != entity.ProcessStatusInProgress {
		return entity.ProductionProcess{}, fmt.Errorf("%w: 工序状态为 %s，仅 in_progress 可暂停", ErrValidation, process.Status)
	}

	now := sheet.FormatTime(time.Now())
	if err := s.repo.UpdateProcessFields(ctx, process.ID, map[string]string{
		"status":        entity.ProcessStatusPending,
		"started_at":    "",
		"operator_name": "",
		"machine_used":  "",
	}); err != nil {
		return entity.ProductionProcess{}, fmt.Errorf("更新工序失败: %w", err)
	}
	if err := s.repo.UpdateOrderFields(ctx, process.ProductionOrderID, map[string]string{
		"status":     entity.ProdStatusOnHold,
		"updated_at": now,
	}); err != nil {
		return entity.ProductionProcess{}, fmt.Errorf("更新生产订单失败: %w", err)
	}

	process.Status = entity.ProcessStatusPending
	process.StartedAt = ""
	process.OperatorName = ""
	process.MachineUsed = ""
	return process, nil
}

// ResumeOrder 恢复挂起的订单。有已开工工序回到 in_progress，否则回到 pending
func (s *ProductionService) ResumeOrder(ctx context.Context, orderID string) (entity.ProductionOrder, error) {
	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return entity.ProductionOrder{}, err
	}
	if order.Status != entity.ProdStatusOnHold {
		return entity.ProductionOrder{}, fmt.Errorf("%w: 订单状态为 %s，仅 on_hold 可恢复", ErrValidation, order.Status)
	}
	status := entity.ProdStatusPending
	if order.ActualStart != "" {
		status = entity.ProdStatusInProgress
	}
	now := sheet.FormatTime(time.Now())
	if err := s.repo.UpdateOrderFields(ctx, order.ID, map[string]string{
		"status":     status,
		"updated_at": now,
	}); err != nil {
		return entity.ProductionOrder{}, fmt.Errorf("更新生产订单失败: %w", err)
	}
	order.Status = status
	order.UpdatedAt = now
	return order, nil
}

// UpdatePriority 调整生产优先级
func (s *ProductionService) UpdatePriority(ctx context.Context, orderID, priority string) error {
	switch priority {
	case entity.PriorityLow, entity.PriorityMedium, entity.PriorityHigh, entity.PriorityUrgent:
	default:
		return fmt.Errorf("%w: 非法优先级 %s", ErrValidation, priority)
	}
	if _, err := s.repo.GetOrderByID(ctx, orderID); err != nil {
		return err
	}
	return s.repo.UpdateOrderFields(ctx, orderID, map[string]string{
		"priority":   priority,
		"updated_at": sheet.FormatTime(time.Now()),
	})
}
