package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the notification stream
const (
	EventFriendRequested = "friend_requested"
	EventFriendAccepted  = "friend_accepted"
	EventPostLiked       = "post_liked"
	EventPostCommented   = "post_commented"
)

// Stream names
const (
	StreamNotifications = "stream:notifications"
)

// Consumer group name for notification workers
const (
	ConsumerGroupNotifications = "notification_workers"
)

// NotificationEvent represents an event published to the notification stream.
// ActorID is the user who triggered the event, RecipientID the user to notify.
type NotificationEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // Unix timestamp when event occurred

	ActorID     int64 `json:"actor_id"`
	RecipientID int64 `json:"recipient_id"`

	// Engagement events (PostLiked, PostCommented)
	PostID    *int64 `json:"post_id,omitempty"`
	CommentID *int64 `json:"comment_id,omitempty"`

	// Friend events (FriendRequested, FriendAccepted)
	RequestID *int64 `json:"request_id,omitempty"`
}

// NewFriendRequestedEvent notifies the receiver of a new pending request.
func NewFriendRequestedEvent(senderID, receiverID, requestID int64) NotificationEvent {
	return NotificationEvent{
		Type:        EventFriendRequested,
		Timestamp:   time.Now().Unix(),
		ActorID:     senderID,
		RecipientID: receiverID,
		RequestID:   &requestID,
	}
}

// NewFriendAcceptedEvent notifies the original sender that their request was
// accepted.
func NewFriendAcceptedEvent(accepterID, senderID, requestID int64) NotificationEvent {
	return NotificationEvent{
		Type:        EventFriendAccepted,
		Timestamp:   time.Now().Unix(),
		ActorID:     accepterID,
		RecipientID: senderID,
		RequestID:   &requestID,
	}
}

// NewPostLikedEvent notifies a post author of a like.
func NewPostLikedEvent(actorID, authorID, postID int64) NotificationEvent {
	return NotificationEvent{
		Type:        EventPostLiked,
		Timestamp:   time.Now().Unix(),
		ActorID:     actorID,
		RecipientID: authorID,
		PostID:      &postID,
	}
}

// NewPostCommentedEvent notifies a post author of a comment.
func NewPostCommentedEvent(actorID, authorID, postID, commentID int64) NotificationEvent {
	return NotificationEvent{
		Type:        EventPostCommented,
		Timestamp:   time.Now().Unix(),
		ActorID:     actorID,
		RecipientID: authorID,
		PostID:      &postID,
		CommentID:   &commentID,
	}
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so the event is serialized to JSON
// in a "data" field alongside its type.
func (e NotificationEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseNotificationEvent reconstructs an event from XREADGROUP values.
func ParseNotificationEvent(values map[string]interface{}) (NotificationEvent, error) {
	raw, ok := values["data"].(string)
	if !ok {
		return NotificationEvent{}, fmt.Errorf("missing data field")
	}
	var event NotificationEvent
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		return NotificationEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
