package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
)

func seedInspection(t *testing.T, repos *repository.Repositories) string {
	t.Helper()
	inspection, err := repos.Quality.CreateInspection(context.Background(), entity.QualityInspection{
		InspectionNumber:  "INSP-00000001",
		ProductionOrderID: "po-1",
		TriggerReason:     "Critérios automáticos atendidos",
		Status:            entity.InspectionStatusPending,
	})
	if err != nil {
		t.Fatal(err)
	}
	return inspection.ID
}

func TestStartInspectionPendingOnly(t *testing.T) {
	services, repos, _ := newTestEnv(t)
	id := seedInspection(t, repos)
	ctx := context.Background()

	inspection, err := services.Quality.StartInspection(ctx, id, "Maria")
	if err != nil {
		t.Fatal(err)
	}
	if inspection.Status != entity.InspectionStatusInProgress || inspection.InspectorName != "Maria" {
		t.Errorf("开始质检结果错误: %+v", inspection)
	}

	_, err = services.Quality.StartInspection(ctx, id, "João")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("非 pending 质检单不可再次开始，得到 %v", err)
	}
}

func TestCompleteInspectionPass(t *testing.T) {
	services, repos, _ := newTestEnv(t)
	id := seedInspection(t, repos)
	ctx := context.Background()

	inspection, err := services.Quality.CompleteInspection(ctx, id, CompleteInspectionRequest{
		Result: entity.ResultPass,
		Notes:  "dimensões dentro da tolerância",
	})
	if err != nil {
		t.Fatal(err)
	}
	if inspection.Status != entity.InspectionStatusApproved {
		t.Errorf("pass 应转 approved，实际 %s", inspection.Status)
	}

	stored, _ := repos.Quality.GetInspectionByID(ctx, id)
	if stored.Result != entity.ResultPass || stored.InspectionDate == "" {
		t.Errorf("落库内容错误: %+v", stored)
	}

	notifications, _ := repos.Notification.List(ctx)
	if len(notifications) != 1 || notifications[0].Title != "Inspeção Concluída" {
		t.Errorf("应发质检完成通知，实际 %v", notifications)
	}
}

func TestCompleteInspectionFailRejects(t *testing.T) {
	services, repos, _ := newTestEnv(t)
	id := seedInspection(t, repos)
	ctx := context.Background()

	inspection, err := services.Quality.CompleteInspection(ctx, id, CompleteInspectionRequest{
		Result:            entity.ResultFail,
		CorrectiveActions: "retrabalhar furação",
	})
	if err != nil {
		t.Fatal(err)
	}
	if inspection.Status != entity.InspectionStatusRejected {
		t.Errorf("fail 应转 rejected，实际 %s", inspection.Status)
	}
	if inspection.CorrectiveActions == "" {
		t.Error("应保留纠正措施")
	}

	// 已出结论不能再改
	_, err = services.Quality.CompleteInspection(ctx, id, CompleteInspectionRequest{Result: entity.ResultPass})
	if !errors.Is(err, ErrValidation) {
		t.Error("重复出结论应被拒绝")
	}
}

func TestCompleteInspectionResultEnum(t *testing.T) {
	services, repos, _ := newTestEnv(t)
	id := seedInspection(t, repos)

	_, err := services.Quality.CompleteInspection(context.Background(), id, CompleteInspectionRequest{Result: "maybe"})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("非法结论应被拒绝，得到 %v", err)
	}
}

func TestCriteriaToggleAndDelete(t *testing.T) {
	services, repos, _ := newTestEnv(t)
	ctx := context.Background()

	criteria, err := services.Quality.CreateCriteria(ctx, CriteriaRequest{
		Name:      "Peças pesadas",
		Enabled:   true,
		MinWeight: 50,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := services.Quality.ToggleCriteria(ctx, criteria.ID, false); err != nil {
		t.Fatal(err)
	}
	enabled, _ := repos.Quality.ListEnabledCriteria(ctx)
	if len(enabled) != 0 {
		t.Error("停用后不应出现在启用条件里")
	}

	if err := services.Quality.DeleteCriteria(ctx, criteria.ID); err != nil {
		t.Fatal(err)
	}
	all, _ := services.Quality.ListCriteria(ctx)
	if len(all) != 0 {
		t.Error("删除后条件应消失")
	}
}

func TestMetricsApprovalRate(t *testing.T) {
	services, repos, _ := newTestEnv(t)
	ctx := context.Background()

	// 无单据时通过率为0，不除零
	m, err := services.Quality.Metrics(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if m.Total != 0 || m.ApprovalRate != 0 {
		t.Errorf("空库指标错误: %+v", m)
	}

	seed := func(status string) {
		if _, err := repos.Quality.CreateInspection(ctx, entity.QualityInspection{Status: status}); err != nil {
			t.Fatal(err)
		}
	}
	seed(entity.InspectionStatusApproved)
	seed(entity.InspectionStatusApproved)
	seed(entity.InspectionStatusApproved)
	seed(entity.InspectionStatusRejected)
	seed(entity.InspectionStatusPending)

	m, err = services.Quality.Metrics(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if m.Total != 5 || m.Approved != 3 || m.Rejected != 1 || m.Pending != 1 {
		t.Errorf("计数错误: %+v", m)
	}
	// 通过率只看已出结论的4张
	if m.ApprovalRate != 75 {
		t.Errorf("通过率 = %v, want 75", m.ApprovalRate)
	}
}
