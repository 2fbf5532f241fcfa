package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/sheet"
)

// QualityService 质检单与触发条件管理。
// 触发评估本身在报价批准编排里（ShouldInspect），这里管单据的后续流转
type QualityService struct {
	repo          *repository.QualityRepository
	production    *repository.ProductionRepository
	notifications *repository.NotificationRepository
}

func NewQualityService(
	repo *repository.QualityRepository,
	production *repository.ProductionRepository,
	notifications *repository.NotificationRepository,
) *QualityService {
	return &QualityService{
		repo:          repo,
		production:    production,
		notifications: notifications,
	}
}

// ListInspections 质检单列表，关联生产订单
func (s *QualityService) ListInspections(ctx context.Context) ([]entity.QualityInspection, error) {
	inspections, err := s.repo.ListInspections(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.production.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]entity.ProductionOrder, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
	}
	for i := range inspections {
		if o, ok := byID[inspections[i].ProductionOrderID]; ok {
			oo := o
			inspections[i].ProductionOrder = &oo
		}
	}
	return inspections, nil
}

func (s *QualityService) GetInspection(ctx context.Context, id string) (entity.QualityInspection, error) {
	inspection, err := s.repo.GetInspectionByID(ctx, id)
	if err != nil {
		return entity.QualityInspection{}, err
	}
	if order, err := s.production.GetOrderByID(ctx, inspection.ProductionOrderID); err == nil {
		inspection.ProductionOrder = &order
	}
	return inspection, nil
}

// StartInspection 质检开始，记录质检员
func (s *QualityService) StartInspection(ctx context.Context, id, inspectorName string) (entity.QualityInspection, error) {
	inspection, err := s.repo.GetInspectionByID(ctx, id)
	if err != nil {
		return entity.QualityInspection{}, err
	}
	if inspection.Status != entity.InspectionStatusPending {
		return entity.QualityInspection{}, fmt.Errorf("%w: 质检单状态为 %s，仅 pending 可开始", ErrValidation, inspection.Status)
	}
	if err := s.repo.UpdateInspectionFields(ctx, id, map[string]string{
		"status":         entity.InspectionStatusInProgress,
		"inspector_name": inspectorName,
	}); err != nil {
		return entity.QualityInspection{}, fmt.Errorf("更新质检单失败: %w", err)
	}
	inspection.Status = entity.InspectionStatusInProgress
	inspection.InspectorName = inspectorName
	return inspection, nil
}

type CompleteInspectionRequest struct {
	Result            string `json:"result" binding:"required"`
	Notes             string `json:"notes"`
	CorrectiveActions string `json:"corrective_actions"`
}

// CompleteInspection 出具质检结论。pass 则单据 approved，fail/conditional 则 rejected
func (s *QualityService) CompleteInspection(ctx context.Context, id string, req CompleteInspectionRequest) (entity.QualityInspection, error) {
	switch req.Result {
	case entity.ResultPass, entity.ResultFail, entity.ResultConditional:
	default:
		return entity.QualityInspection{}, fmt.Errorf("%w: 非法质检结论 %s", ErrValidation, req.Result)
	}

	inspection, err := s.repo.GetInspectionByID(ctx, id)
	if err != nil {
		return entity.QualityInspection{}, err
	}
	if inspection.Status == entity.InspectionStatusApproved || inspection.Status == entity.InspectionStatusRejected {
		return entity.QualityInspection{}, fmt.Errorf("%w: 质检单已出结论", ErrValidation)
	}

	status := entity.InspectionStatusRejected
	if req.Result == entity.ResultPass {
		status = entity.InspectionStatusApproved
	}
	if err := s.repo.UpdateInspectionFields(ctx, id, map[string]string{
		"status":             status,
		"result":             req.Result,
		"inspection_date":    sheet.FormatTime(time.Now()),
		"notes":              req.Notes,
		"corrective_actions": req.CorrectiveActions,
	}); err != nil {
		return entity.QualityInspection{}, fmt.Errorf("更新质检单失败: %w", err)
	}

	if _, err := s.notifications.Create(ctx, entity.Notification{
		Type:          entity.NotifyProcessCompleted,
		Title:         "Inspeção Concluída",
		Message:       fmt.Sprintf("Inspeção %s finalizada com resultado %s", inspection.InspectionNumber, req.Result),
		ReferenceType: "quality_inspection",
		ReferenceID:   inspection.ID,
	}); err != nil {
		return entity.QualityInspection{}, fmt.Errorf("创建通知失败: %w", err)
	}

	inspection.Status = status
	inspection.Result = req.Result
	inspection.Notes = req.Notes
	inspection.CorrectiveActions = req.CorrectiveActions
	return inspection, nil
}

// --- Criteria ---

type CriteriaRequest struct {
	Name               string  `json:"name" binding:"required"`
	Enabled            bool    `json:"enabled"`
	MinQuantity        float64 `json:"min_quantity"`
	MinWeight          float64 `json:"min_weight"`
	Complexity         string  `json:"complexity"`
	SpecificCustomerID string  `json:"specific_customer_id"`
	SpecificMachine    string  `json:"specific_machine"`
}

func (s *QualityService) CreateCriteria(ctx context.Context, req CriteriaRequest) (entity.InspectionCriteria, error) {
	c := entity.InspectionCriteria{
		Name:               req.Name,
		Enabled:            req.Enabled,
		MinQuantity:        req.MinQuantity,
		MinWeight:          req.MinWeight,
		Complexity:         req.Complexity,
		SpecificCustomerID: req.SpecificCustomerID,
		SpecificMachine:    req.SpecificMachine,
	}
	created, err := s.repo.CreateCriteria(ctx, c)
	if err != nil {
		return entity.InspectionCriteria{}, fmt.Errorf("创建质检条件失败: %w", err)
	}
	return created, nil
}

func (s *QualityService) ListCriteria(ctx context.Context) ([]entity.InspectionCriteria, error) {
	return s.repo.ListCriteria(ctx)
}

// ToggleCriteria 启用/停用质检条件
func (s *QualityService) ToggleCriteria(ctx context.Context, id string, enabled bool) error {
	if _, err := s.repo.GetCriteriaByID(ctx, id); err != nil {
		return err
	}
	return s.repo.UpdateCriteriaFields(ctx, id, map[string]string{
		"enabled": sheet.FormatBool(enabled),
	})
}

func (s *QualityService) DeleteCriteria(ctx context.Context, id string) error {
	if _, err := s.repo.GetCriteriaByID(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteCriteria(ctx, id)
}

// QualityMetrics 质检统计
type QualityMetrics struct {
	Total        int     `json:"total"`
	Pending      int     `json:"pending"`
	InProgress   int     `json:"in_progress"`
	Approved     int     `json:"approved"`
	Rejected     int     `json:"rejected"`
	ApprovalRate float64 `json:"approval_rate"`
}

// Metrics 质检汇总。通过率只统计已出结论的单据，无结论时为0
func (s *QualityService) Metrics(ctx context.Context) (QualityMetrics, error) {
	inspections, err := s.repo.ListInspections(ctx)
	if err != nil {
		return QualityMetrics{}, err
	}
	m := QualityMetrics{Total: len(inspections)}
	for _, i := range inspections {
		switch i.Status {
		case entity.InspectionStatusPending:
			m.Pending++
		case entity.InspectionStatusInProgress:
			m.InProgress++
		case entity.InspectionStatusApproved:
			m.Approved++
		case entity.InspectionStatusRejected:
			m.Rejected++
		}
	}
	if decided := m.Approved + m.Rejected; decided > 0 {
		m.ApprovalRate = float64(m.Approved) / float64(decided) * 100
	}
	return m, nil
}
