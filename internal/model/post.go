package model

import (
	"errors"
	"strings"
	"time"
)

// Post visibility values. Public posts are readable by everyone; friends-only
// posts are readable by the author and the author's accepted friends.
const (
	VisibilityPublic  = "public"
	VisibilityFriends = "friends"
)

// Post represents a feed post. Posts are immutable after creation.
type Post struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	Message      string    `db:"message" json:"message"`
	Visibility   string    `db:"visibility" json:"visibility"`
	LikeCount    int       `db:"like_count" json:"like_count"`
	CommentCount int       `db:"comment_count" json:"comment_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`

	// Joined fields (not in posts table)
	Author   *UserSummary `json:"author,omitempty"`
	Comments []Comment    `json:"comments,omitempty"`
	IsLiked  bool         `json:"is_liked"`
}

// FeedResponse is the payload for GET /feed: the viewer's visible posts
// newest first, plus their incoming pending friend requests.
type FeedResponse struct {
	Posts           []Post              `json:"posts"`
	PendingRequests []FriendRequestView `json:"pending_requests"`
}

// CreatePostRequest is the request body for creating a post.
type CreatePostRequest struct {
	Message    string `json:"message"`
	Visibility string `json:"visibility"`
}

// LikeState is returned after toggling a like.
type LikeState struct {
	PostID    int64 `json:"post_id"`
	Liked     bool  `json:"liked"`
	LikeCount int   `json:"like_count"`
}

// Post constraints
const (
	MaxPostMessageLength = 5000
)

// Post errors
var (
	ErrPostNotFound      = errors.New("post not found")
	ErrMessageRequired   = errors.New("post message is required")
	ErrMessageTooLong    = errors.New("post message too long")
	ErrInvalidVisibility = errors.New("invalid visibility")
	ErrAlreadyLiked      = errors.New("post already liked")
	ErrNotLiked          = errors.New("post not liked")
)

// Validate checks post input and normalizes an empty visibility to public,
// matching the column default.
func (r *CreatePostRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return ErrMessageRequired
	}
	if len(r.Message) > MaxPostMessageLength {
		return ErrMessageTooLong
	}
	switch r.Visibility {
	case "":
		r.Visibility = VisibilityPublic
	case VisibilityPublic, VisibilityFriends:
	default:
		return ErrInvalidVisibility
	}
	return nil
}
