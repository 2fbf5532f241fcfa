package service

import (
	"context"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
)

// NotificationService 通知读取与已读标记
type NotificationService struct {
	repo *repository.NotificationRepository
}

func NewNotificationService(repo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// List 未读在前，组内保持创建时间倒序；unreadOnly 时仅返回未读
func (s *NotificationService) List(ctx context.Context, unreadOnly bool) ([]entity.Notification, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	unread := make([]entity.Notification, 0, len(all))
	read := make([]entity.Notification, 0, len(all))
	for _, n := range all {
		if n.IsRead {
			read = append(read, n)
		} else {
			unread = append(unread, n)
		}
	}
	if unreadOnly {
		return unread, nil
	}
	return append(unread, read...), nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	return s.repo.MarkRead(ctx, id)
}

// MarkAllRead 逐条标记，部分失败即中止返回错误
func (s *NotificationService) MarkAllRead(ctx context.Context) (int, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	marked := 0
	for _, n := range all {
		if n.IsRead {
			continue
		}
		if err := s.repo.MarkRead(ctx, n.ID); err != nil {
			return marked, err
		}
		marked++
	}
	return marked, nil
}
