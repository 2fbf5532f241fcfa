package repository

import (
	"context"
	"fmt"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/sheet"
)

// QualityRepository 质检单与触发条件的类型化访问
type QualityRepository struct {
	store sheet.Store
}

func NewQualityRepository(store sheet.Store) *QualityRepository {
	return &QualityRepository{store: store}
}

func (r *QualityRepository) CreateInspection(ctx context.Context, q entity.QualityInspection) (entity.QualityInspection, error) {
	rec, err := r.store.Append(ctx, entity.TableQualityInspections, q.Fields())
	if err != nil {
		return entity.QualityInspection{}, err
	}
	return entity.QualityInspectionFromRecord(rec), nil
}

func (r *QualityRepository) GetInspectionByID(ctx context.Context, id string) (entity.QualityInspection, error) {
	rows, err := r.store.FetchAll(ctx, entity.TableQualityInspections)
	if err != nil {
		return entity.QualityInspection{}, err
	}
	row := sheet.ByID(rows, id)
	if row == nil {
		return entity.QualityInspection{}, fmt.Errorf("质检单 %s: %w", id, sheet.ErrNotFound)
	}
	return entity.QualityInspectionFromRecord(row), nil
}

func (r *QualityRepository) ListInspections(ctx context.Context) ([]entity.QualityInspection, error) {
	rows, err := r.store.FetchAll(ctx, entity.TableQualityInspections)
	if err != nil {
		return nil, err
	}
	rows = sheet.SortBy(rows, "created_at", false)
	out := make([]entity.QualityInspection, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.QualityInspectionFromRecord(row))
	}
	return out, nil
}

// ListInspectionsByOrder 某张生产订单的质检单
func (r *QualityRepository) ListInspectionsByOrder(ctx context.Context, productionOrderID string) ([]entity.QualityInspection, error) {
	rows, err := r.store.FetchAll(ctx, entity.TableQualityInspections)
	if err != nil {
		return nil, err
	}
	rows = sheet.Filter(rows, "production_order_id", productionOrderID)
	out := make([]entity.QualityInspection, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.QualityInspectionFromRecord(row))
	}
	return out, nil
}

func (r *QualityRepository) UpdateInspectionFields(ctx context.Context, id string, patch map[string]string) error {
	_, err := r.store.Update(ctx, entity.TableQualityInspections, id, patch)
	return err
}

// --- Criteria ---

func (r *QualityRepository) CreateCriteria(ctx context.Context, c entity.InspectionCriteria) (entity.InspectionCriteria, error) {
	rec, err := r.store.Append(ctx, entity.TableInspectionCriteria, c.Fields())
	if err != nil {
		return entity.InspectionCriteria{}, err
	}
	return entity.InspectionCriteriaFromRecord(rec), nil
}

func (r *QualityRepository) GetCriteriaByID(ctx context.Context, id string) (entity.InspectionCriteria, error) {
	rows, err := r.store.FetchAll(ctx, entity.TableInspectionCriteria)
	if err != nil {
		return entity.InspectionCriteria{}, err
	}
	row := sheet.ByID(rows, id)
	if row == nil {
		return entity.InspectionCriteria{}, fmt.Errorf("质检条件 %s: %w", id, sheet.ErrNotFound)
	}
	return entity.InspectionCriteriaFromRecord(row), nil
}

func (r *QualityRepository) ListCriteria(ctx context.Context) ([]entity.InspectionCriteria, error) {
	rows, err := r.store.FetchAll(ctx, entity.TableInspectionCriteria)
	if err != nil {
		return nil, err
	}
	rows = sheet.SortBy(rows, "created_at", false)
	out := make([]entity.InspectionCriteria, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.InspectionCriteriaFromRecord(row))
	}
	return out, nil
}

// ListEnabledCriteria 规则评估的输入：仅启用的条件。
// 批准流程中每个明细单独取一次，循环内无快照一致性
func (r *QualityRepository) ListEnabledCriteria(ctx context.Context) ([]entity.InspectionCriteria, error) {
	all, err := r.ListCriteria(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.InspectionCriteria, 0, len(all))
	for _, c := range all {
		if c.Enabled {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *QualityRepository) UpdateCriteriaFields(ctx context.Context, id string, patch map[string]string) error {
	_, err := r.store.Update(ctx, entity.TableInspectionCriteria, id, patch)
	return err
}

func (r *QualityRepository) DeleteCriteria(ctx context.Context, id string) error {
	return r.store.Delete(ctx, entity.TableInspectionCriteria, id)
}
