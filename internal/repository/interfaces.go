package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"devnet/internal/model"
)

type UserRepository interface {
	// Create inserts the user and its profile in one transaction. A user
	// without a profile is unreachable state.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	GetSummaries(ctx context.Context, ids []int64) ([]model.UserSummary, error)
	GetProfile(ctx context.Context, userID int64) (*model.Profile, error)
	UpdateProfile(ctx context.Context, userID int64, req model.UpdateProfileRequest) (*model.Profile, error)
	SetAvatar(ctx context.Context, userID int64, url, key string) (previousKey *string, err error)
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, id string, replacedBy *string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}

type FriendRequestRepository interface {
	// Insert creates a pending request for the ordered pair. Returns false
	// without error when a row for the pair already exists (any status).
	Insert(ctx context.Context, senderID, receiverID int64) (*model.FriendRequest, bool, error)
	GetByID(ctx context.Context, id int64) (*model.FriendRequest, error)
	GetByPair(ctx context.Context, senderID, receiverID int64) (*model.FriendRequest, error)
	// Resolve transitions a pending request to the given terminal status,
	// writing status and responded_at together. Returns ErrRequestResolved
	// if the request is no longer pending.
	Resolve(ctx context.Context, id int64, status string) (*model.FriendRequest, error)
	// FriendIDsOf computes the derived friend set: counterparts of accepted
	// requests in either direction. Always recomputed, never cached.
	FriendIDsOf(ctx context.Context, userID int64) ([]int64, error)
	AreFriends(ctx context.Context, userA, userB int64) (bool, error)
	PendingFor(ctx context.Context, receiverID int64) ([]model.FriendRequestView, error)
}

type PostRepository interface {
	Create(ctx context.Context, userID int64, message, visibility string) (*model.Post, error)
	GetAuthorID(ctx context.Context, postID int64) (int64, error)
	// VisibleToViewer returns feed posts newest first: public posts plus
	// friends-only posts whose author is the viewer or one of friendIDs.
	VisibleToViewer(ctx context.Context, viewerID int64, friendIDs []int64, limit int) ([]model.Post, error)
	// ByAuthor returns one author's posts oldest first for profile history.
	// Friends-only posts are included only when includeFriendsOnly is set.
	ByAuthor(ctx context.Context, authorID int64, includeFriendsOnly bool) ([]model.Post, error)
	// CheckLikes reports which of the posts the user has liked, in one query.
	CheckLikes(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error)
	// InsertLike returns false without error when the (post, user) like
	// already exists.
	InsertLike(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error)
	DeleteLike(ctx context.Context, tx *sqlx.Tx, postID, userID int64) error
	IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) (int, error)
	IncrementCommentCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error
}

type CommentRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, postID, userID int64, text string) (*model.Comment, error)
	// GetByPostIDs returns comments for all posts in one query, grouped by
	// post id, oldest first.
	GetByPostIDs(ctx context.Context, postIDs []int64) (map[int64][]model.Comment, error)
}

type ConversationRepository interface {
	// Find returns the conversation for the unordered pair, or
	// ErrConversationNotFound.
	Find(ctx context.Context, userA, userB int64) (*model.Conversation, error)
	// Create inserts the conversation for the pair. Returns
	// ErrConversationExists on the unique-pair constraint so callers can
	// re-fetch after losing a race.
	Create(ctx context.Context, userA, userB int64) (*model.Conversation, error)
	GetByID(ctx context.Context, id int64) (*model.Conversation, error)
	ListForUser(ctx context.Context, userID int64) ([]model.Conversation, error)
	InsertMessage(ctx context.Context, conversationID, senderID int64, body string) (*model.Message, error)
	MessagesFor(ctx context.Context, conversationID int64) ([]model.Message, error)
	// LastMessages returns the newest message per conversation in one query.
	LastMessages(ctx context.Context, conversationIDs []int64) (map[int64]model.Message, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, userID, actorID int64, notifType string, postID, commentID *int64) error
	ListForUser(ctx context.Context, userID int64, limit int) ([]model.Notification, error)
	MarkAsRead(ctx context.Context, userID int64, notificationIDs []int64) error
	MarkAllAsRead(ctx context.Context, userID int64) error
	GetUnreadCount(ctx context.Context, userID int64) (int, error)
}
