package model

import (
	"errors"
	"strings"
	"time"
)

// Conversation is the unique two-party chat thread for a friend pair.
// Participants are stored as an ordered (low, high) id pair so the database
// can enforce at most one conversation per pair.
type Conversation struct {
	ID         int64     `db:"id" json:"id"`
	UserLowID  int64     `db:"user_low_id" json:"-"`
	UserHighID int64     `db:"user_high_id" json:"-"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// OtherParticipant returns the participant that is not the given user.
func (c *Conversation) OtherParticipant(userID int64) int64 {
	if c.UserLowID == userID {
		return c.UserHighID
	}
	return c.UserLowID
}

// HasParticipant reports whether the user belongs to the conversation.
func (c *Conversation) HasParticipant(userID int64) bool {
	return c.UserLowID == userID || c.UserHighID == userID
}

// Message is an append-only chat message, ordered oldest first.
type Message struct {
	ID             int64        `db:"id" json:"id"`
	ConversationID int64        `db:"conversation_id" json:"conversation_id"`
	SenderID       int64        `db:"sender_id" json:"sender_id"`
	Body           string       `db:"body" json:"body"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
	Sender         *UserSummary `json:"sender,omitempty"` // Joined field
}

// ChatThread is the payload for a single conversation view.
type ChatThread struct {
	Conversation Conversation `json:"conversation"`
	Other        UserSummary  `json:"other_user"`
	Messages     []Message    `json:"messages"`
}

// ChatSummary is one entry in the conversation list.
type ChatSummary struct {
	Conversation Conversation `json:"conversation"`
	Other        UserSummary  `json:"other_user"`
	LastMessage  *Message     `json:"last_message,omitempty"`
}

// ChatListResponse is the payload for GET /chats: the viewer's conversations
// newest first plus their friends, for starting new threads.
type ChatListResponse struct {
	Conversations []ChatSummary `json:"conversations"`
	Friends       []UserSummary `json:"friends"`
}

// PostMessageRequest is the request body for sending a chat message.
type PostMessageRequest struct {
	Body string `json:"body"`
}

// Message constraints
const (
	MaxMessageBodyLength = 5000
)

// Chat errors. ErrSelfChat and ErrNotFriends are policy denials: the caller
// is redirected with feedback and no conversation row is touched.
var (
	ErrSelfChat             = errors.New("cannot chat with yourself")
	ErrNotFriends           = errors.New("can only chat with accepted friends")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrConversationExists   = errors.New("conversation already exists for pair")
	ErrBodyRequired         = errors.New("message body is required")
	ErrBodyTooLong          = errors.New("message body too long")
)

// Validate checks message input.
func (r *PostMessageRequest) Validate() error {
	if strings.TrimSpace(r.Body) == "" {
		return ErrBodyRequired
	}
	if len(r.Body) > MaxMessageBodyLength {
		return ErrBodyTooLong
	}
	return nil
}
