package model

import (
	"errors"
	"strings"
	"time"
)

// Comment represents a comment on a post. Comments are ordered oldest first.
type Comment struct {
	ID        int64        `db:"id" json:"id"`
	PostID    int64        `db:"post_id" json:"post_id"`
	UserID    int64        `db:"user_id" json:"-"`
	Text      string       `db:"text" json:"text"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	Author    *UserSummary `json:"author,omitempty"` // Joined field
}

// CreateCommentRequest is the request body for creating a comment.
type CreateCommentRequest struct {
	Text string `json:"text"`
}

// Comment constraints
const (
	MaxCommentLength = 2200
)

// Comment errors
var (
	ErrCommentNotFound     = errors.New("comment not found")
	ErrCommentTextRequired = errors.New("comment text is required")
	ErrCommentTooLong      = errors.New("comment text too long")
)

// Validate checks comment input.
func (r *CreateCommentRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return ErrCommentTextRequired
	}
	if len(r.Text) > MaxCommentLength {
		return ErrCommentTooLong
	}
	return nil
}
