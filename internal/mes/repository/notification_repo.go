package repository

import (
	"context"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/sheet"
)

// NotificationRepository 通知流水，只追加 + 已读标记
type NotificationRepository struct {
	store sheet.Store
}

func NewNotificationRepository(store sheet.Store) *NotificationRepository {
	return &NotificationRepository{store: store}
}

func (r *NotificationRepository) Create(ctx context.Context, n entity.Notification) (entity.Notification, error) {
	rec, err := r.store.Append(ctx, entity.TableNotifications, n.Fields())
	if err != nil {
		return entity.Notification{}, err
	}
	return entity.NotificationFromRecord(rec), nil
}

// List 按创建时间倒序
func (r *NotificationRepository) List(ctx context.Context) ([]entity.Notification, error) {
	rows, err := r.store.FetchAll(ctx, entity.TableNotifications)
	if err != nil {
		return nil, err
	}
	rows = sheet.SortBy(rows, "created_at", false)
	out := make([]entity.Notification, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.NotificationFromRecord(row))
	}
	return out, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	_, err := r.store.Update(ctx, entity.TableNotifications, id, map[string]string{"is_read": "true"})
	return err
}
