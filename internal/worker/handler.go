package worker

import (
	"context"
	"fmt"
	"log"

	"devnet/internal/model"
	"devnet/internal/queue"
)

// NotificationCreator defines the interface for persisting notifications.
// This abstracts the repository layer so workers don't depend on DB directly.
type NotificationCreator interface {
	Create(ctx context.Context, userID, actorID int64, notifType string, postID, commentID *int64) error
}

// UnreadCounter bumps the per-user unread badge counter.
type UnreadCounter interface {
	Increment(ctx context.Context, userID int64) error
}

// Handler processes notification events from the queue: one notification row
// per event plus an unread-counter bump for the recipient.
type Handler struct {
	notifications NotificationCreator
	unread        UnreadCounter
}

// NewHandler creates a new event handler.
func NewHandler(notifications NotificationCreator, unread UnreadCounter) *Handler {
	return &Handler{
		notifications: notifications,
		unread:        unread,
	}
}

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.NotificationEvent) error {
	var notifType string

	switch event.Type {
	case queue.EventFriendRequested:
		notifType = model.NotificationTypeFriendRequest
	case queue.EventFriendAccepted:
		notifType = model.NotificationTypeFriendAccepted
	case queue.EventPostLiked:
		notifType = model.NotificationTypeLike
	case queue.EventPostCommented:
		notifType = model.NotificationTypeComment
	default:
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	// Never notify users about their own actions.
	if event.ActorID == event.RecipientID {
		return nil
	}

	err := h.notifications.Create(ctx, event.RecipientID, event.ActorID, notifType, event.PostID, event.CommentID)
	if err != nil {
		return fmt.Errorf("create %s notification: %w", notifType, err)
	}

	// Counter bump is best effort: a missed increment is corrected on the
	// next DB-backed rebuild of the badge.
	if err := h.unread.Increment(ctx, event.RecipientID); err != nil {
		log.Printf("[Worker] unread increment failed: recipient=%d err=%v", event.RecipientID, err)
	}

	log.Printf("[Worker] HandleEvent OK: type=%s actor=%d recipient=%d", event.Type, event.ActorID, event.RecipientID)
	return nil
}
