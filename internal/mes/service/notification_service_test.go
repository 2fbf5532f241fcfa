package service

import (
	"context"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
)

func TestNotificationListUnreadFirst(t *testing.T) {
	services, repos, store := newTestEnv(t)
	ctx := context.Background()

	// 时间递增，保证创建时间倒序可判定
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	tick := 0
	store.NowFunc = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	var ids []string
	for _, title := range []string{"primeira", "segunda", "terceira"} {
		n, err := repos.Notification.Create(ctx, entity.Notification{
			Type:  entity.NotifyOrderCreated,
			Title: title,
		})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, n.ID)
	}

	// 最新的一条标成已读
	if err := services.Notification.MarkRead(ctx, ids[2]); err != nil {
		t.Fatal(err)
	}

	list, err := services.Notification.List(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("应有3条，实际 %d", len(list))
	}
	// 未读在前且组内倒序：segunda, primeira, terceira(已读)
	if list[0].Title != "segunda" || list[1].Title != "primeira" || list[2].Title != "terceira" {
		t.Errorf("排序错误: %s, %s, %s", list[0].Title, list[1].Title, list[2].Title)
	}
	if !list[2].IsRead {
		t.Error("已读项应带 is_read")
	}

	unread, err := services.Notification.List(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(unread) != 2 {
		t.Errorf("未读应有2条，实际 %d", len(unread))
	}
}

func TestMarkAllRead(t *testing.T) {
	services, repos, _ := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := repos.Notification.Create(ctx, entity.Notification{Type: entity.NotifyStockLow}); err != nil {
			t.Fatal(err)
		}
	}
	marked, err := services.Notification.MarkAllRead(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if marked != 3 {
		t.Errorf("应标记3条，实际 %d", marked)
	}

	// 再次调用无未读可标
	marked, err = services.Notification.MarkAllRead(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if marked != 0 {
		t.Errorf("第二次应标记0条，实际 %d", marked)
	}
}
