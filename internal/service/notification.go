package service

import (
	"context"
	"log"

	"devnet/internal/cache"
	"devnet/internal/model"
	"devnet/internal/repository"
)

// NotificationService handles in-app notifications. Rows are written by the
// stream workers; this service serves reads and read-state changes.
//
// The unread count lives in two places: the database (source of truth) and a
// Redis counter (fast path for badge polling). A cache miss rebuilds the
// counter from the database.
type NotificationService struct {
	notifRepo repository.NotificationRepository
	unread    cache.UnreadCache // Can be nil if Redis not configured
}

func NewNotificationService(notifRepo repository.NotificationRepository, unread cache.UnreadCache) *NotificationService {
	return &NotificationService{
		notifRepo: notifRepo,
		unread:    unread,
	}
}

// GetNotifications returns the user's notifications, newest first.
func (s *NotificationService) GetNotifications(ctx context.Context, userID int64, limit int) (*model.NotificationListResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	notifications, err := s.notifRepo.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	unreadCount, err := s.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &model.NotificationListResponse{
		Notifications: notifications,
		UnreadCount:   unreadCount,
	}, nil
}

// GetUnreadCount returns the unread badge count, preferring the Redis
// counter and rebuilding it from the database on a miss.
func (s *NotificationService) GetUnreadCount(ctx context.Context, userID int64) (int, error) {
	if s.unread != nil {
		count, found, err := s.unread.Get(ctx, userID)
		if err != nil {
			log.Printf("[NotificationService] Unread cache read failed user=%d err=%v", userID, err)
		} else if found {
			return count, nil
		}
	}

	count, err := s.notifRepo.GetUnreadCount(ctx, userID)
	if err != nil {
		return 0, err
	}

	if s.unread != nil {
		if err := s.unread.Set(ctx, userID, count); err != nil {
			log.Printf("[NotificationService] Unread cache rebuild failed user=%d err=%v", userID, err)
		}
	}

	return count, nil
}

// MarkAsRead marks the given notifications as read. An empty ID list marks
// everything. The Redis counter is rewritten from the database rather than
// decremented so it can't drift.
func (s *NotificationService) MarkAsRead(ctx context.Context, userID int64, notificationIDs []int64) error {
	if len(notificationIDs) == 0 {
		if err := s.notifRepo.MarkAllAsRead(ctx, userID); err != nil {
			return err
		}
		if s.unread != nil {
			if err := s.unread.Reset(ctx, userID); err != nil {
				log.Printf("[NotificationService] Unread cache reset failed user=%d err=%v", userID, err)
			}
		}
		return nil
	}

	if err := s.notifRepo.MarkAsRead(ctx, userID, notificationIDs); err != nil {
		return err
	}

	// Some notifications may remain unread, so rebuild the counter from the
	// database instead of resetting it.
	if s.unread != nil {
		count, err := s.notifRepo.GetUnreadCount(ctx, userID)
		if err != nil {
			log.Printf("[NotificationService] Unread recount failed user=%d err=%v", userID, err)
			return nil
		}
		if err := s.unread.Set(ctx, userID, count); err != nil {
			log.Printf("[NotificationService] Unread cache rebuild failed user=%d err=%v", userID, err)
		}
	}

	return nil
}
