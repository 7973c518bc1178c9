package service

// Shared function-field mocks for the repository interfaces. Each test sets
// only the functions it cares about; unset functions return zero values or
// not-found errors.

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"devnet/internal/model"
	"devnet/internal/queue"
)

type mockUserRepository struct {
	createFn           func(ctx context.Context, user *model.User) error
	getByIDFn          func(ctx context.Context, id int64) (*model.User, error)
	getByUsernameFn    func(ctx context.Context, username string) (*model.User, error)
	existsByUsernameFn func(ctx context.Context, username string) (bool, error)
	getSummariesFn     func(ctx context.Context, ids []int64) ([]model.UserSummary, error)
	getProfileFn       func(ctx context.Context, userID int64) (*model.Profile, error)
	updateProfileFn    func(ctx context.Context, userID int64, req model.UpdateProfileRequest) (*model.Profile, error)
	setAvatarFn        func(ctx context.Context, userID int64, url, key string) (*string, error)

	createCalls int
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

func (m *mockUserRepository) GetSummaries(ctx context.Context, ids []int64) ([]model.UserSummary, error) {
	if m.getSummariesFn != nil {
		return m.getSummariesFn(ctx, ids)
	}
	summaries := make([]model.UserSummary, len(ids))
	for i, id := range ids {
		summaries[i] = model.UserSummary{ID: id}
	}
	return summaries, nil
}

func (m *mockUserRepository) GetProfile(ctx context.Context, userID int64) (*model.Profile, error) {
	if m.getProfileFn != nil {
		return m.getProfileFn(ctx, userID)
	}
	return &model.Profile{UserID: userID}, nil
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, userID int64, req model.UpdateProfileRequest) (*model.Profile, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, userID, req)
	}
	return &model.Profile{
		UserID:   userID,
		Bio:      req.Bio,
		Location: req.Location,
		JobTitle: req.JobTitle,
	}, nil
}

func (m *mockUserRepository) SetAvatar(ctx context.Context, userID int64, url, key string) (*string, error) {
	if m.setAvatarFn != nil {
		return m.setAvatarFn(ctx, userID, url, key)
	}
	return nil, nil
}

type mockFriendRequestRepository struct {
	insertFn     func(ctx context.Context, senderID, receiverID int64) (*model.FriendRequest, bool, error)
	getByIDFn    func(ctx context.Context, id int64) (*model.FriendRequest, error)
	getByPairFn  func(ctx context.Context, senderID, receiverID int64) (*model.FriendRequest, error)
	resolveFn    func(ctx context.Context, id int64, status string) (*model.FriendRequest, error)
	friendIDsFn  func(ctx context.Context, userID int64) ([]int64, error)
	areFriendsFn func(ctx context.Context, userA, userB int64) (bool, error)
	pendingForFn func(ctx context.Context, receiverID int64) ([]model.FriendRequestView, error)

	insertCalls  int
	resolveCalls int
}

func (m *mockFriendRequestRepository) Insert(ctx context.Context, senderID, receiverID int64) (*model.FriendRequest, bool, error) {
	m.insertCalls++
	if m.insertFn != nil {
		return m.insertFn(ctx, senderID, receiverID)
	}
	return &model.FriendRequest{
		ID:         1,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     model.RequestStatusPending,
		CreatedAt:  time.Now(),
	}, true, nil
}

func (m *mockFriendRequestRepository) GetByID(ctx context.Context, id int64) (*model.FriendRequest, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrRequestNotFound
}

func (m *mockFriendRequestRepository) GetByPair(ctx context.Context, senderID, receiverID int64) (*model.FriendRequest, error) {
	if m.getByPairFn != nil {
		return m.getByPairFn(ctx, senderID, receiverID)
	}
	return nil, model.ErrRequestNotFound
}

func (m *mockFriendRequestRepository) Resolve(ctx context.Context, id int64, status string) (*model.FriendRequest, error) {
	m.resolveCalls++
	if m.resolveFn != nil {
		return m.resolveFn(ctx, id, status)
	}
	now := time.Now()
	return &model.FriendRequest{ID: id, Status: status, RespondedAt: &now}, nil
}

func (m *mockFriendRequestRepository) FriendIDsOf(ctx context.Context, userID int64) ([]int64, error) {
	if m.friendIDsFn != nil {
		return m.friendIDsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFriendRequestRepository) AreFriends(ctx context.Context, userA, userB int64) (bool, error) {
	if m.areFriendsFn != nil {
		return m.areFriendsFn(ctx, userA, userB)
	}
	return false, nil
}

func (m *mockFriendRequestRepository) PendingFor(ctx context.Context, receiverID int64) ([]model.FriendRequestView, error) {
	if m.pendingForFn != nil {
		return m.pendingForFn(ctx, receiverID)
	}
	return nil, nil
}

type mockPostRepository struct {
	createFn          func(ctx context.Context, userID int64, message, visibility string) (*model.Post, error)
	getAuthorIDFn     func(ctx context.Context, postID int64) (int64, error)
	visibleToViewerFn func(ctx context.Context, viewerID int64, friendIDs []int64, limit int) ([]model.Post, error)
	byAuthorFn        func(ctx context.Context, authorID int64, includeFriendsOnly bool) ([]model.Post, error)
	checkLikesFn      func(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error)

	createCalls int
}

func (m *mockPostRepository) Create(ctx context.Context, userID int64, message, visibility string) (*model.Post, error) {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, userID, message, visibility)
	}
	return &model.Post{ID: 1, UserID: userID, Message: message, Visibility: visibility}, nil
}

func (m *mockPostRepository) GetAuthorID(ctx context.Context, postID int64) (int64, error) {
	if m.getAuthorIDFn != nil {
		return m.getAuthorIDFn(ctx, postID)
	}
	return 0, model.ErrPostNotFound
}

func (m *mockPostRepository) VisibleToViewer(ctx context.Context, viewerID int64, friendIDs []int64, limit int) ([]model.Post, error) {
	if m.visibleToViewerFn != nil {
		return m.visibleToViewerFn(ctx, viewerID, friendIDs, limit)
	}
	return nil, nil
}

func (m *mockPostRepository) ByAuthor(ctx context.Context, authorID int64, includeFriendsOnly bool) ([]model.Post, error) {
	if m.byAuthorFn != nil {
		return m.byAuthorFn(ctx, authorID, includeFriendsOnly)
	}
	return nil, nil
}

func (m *mockPostRepository) CheckLikes(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	if m.checkLikesFn != nil {
		return m.checkLikesFn(ctx, userID, postIDs)
	}
	return map[int64]bool{}, nil
}

func (m *mockPostRepository) InsertLike(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error) {
	return false, nil
}

func (m *mockPostRepository) DeleteLike(ctx context.Context, tx *sqlx.Tx, postID, userID int64) error {
	return nil
}

func (m *mockPostRepository) IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) (int, error) {
	return 0, nil
}

func (m *mockPostRepository) IncrementCommentCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error {
	return nil
}

type mockCommentRepository struct {
	createFn       func(ctx context.Context, tx *sqlx.Tx, postID, userID int64, text string) (*model.Comment, error)
	getByPostIDsFn func(ctx context.Context, postIDs []int64) (map[int64][]model.Comment, error)
}

func (m *mockCommentRepository) Create(ctx context.Context, tx *sqlx.Tx, postID, userID int64, text string) (*model.Comment, error) {
	if m.createFn != nil {
		return m.createFn(ctx, tx, postID, userID, text)
	}
	return &model.Comment{ID: 1, PostID: postID, UserID: userID, Text: text}, nil
}

func (m *mockCommentRepository) GetByPostIDs(ctx context.Context, postIDs []int64) (map[int64][]model.Comment, error) {
	if m.getByPostIDsFn != nil {
		return m.getByPostIDsFn(ctx, postIDs)
	}
	return map[int64][]model.Comment{}, nil
}

type mockConversationRepository struct {
	findFn          func(ctx context.Context, userA, userB int64) (*model.Conversation, error)
	createFn        func(ctx context.Context, userA, userB int64) (*model.Conversation, error)
	getByIDFn       func(ctx context.Context, id int64) (*model.Conversation, error)
	listForUserFn   func(ctx context.Context, userID int64) ([]model.Conversation, error)
	insertMessageFn func(ctx context.Context, conversationID, senderID int64, body string) (*model.Message, error)
	messagesForFn   func(ctx context.Context, conversationID int64) ([]model.Message, error)
	lastMessagesFn  func(ctx context.Context, conversationIDs []int64) (map[int64]model.Message, error)

	createCalls int
}

func (m *mockConversationRepository) Find(ctx context.Context, userA, userB int64) (*model.Conversation, error) {
	if m.findFn != nil {
		return m.findFn(ctx, userA, userB)
	}
	return nil, model.ErrConversationNotFound
}

func (m *mockConversationRepository) Create(ctx context.Context, userA, userB int64) (*model.Conversation, error) {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, userA, userB)
	}
	low, high := userA, userB
	if low > high {
		low, high = high, low
	}
	return &model.Conversation{ID: 1, UserLowID: low, UserHighID: high}, nil
}

func (m *mockConversationRepository) GetByID(ctx context.Context, id int64) (*model.Conversation, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrConversationNotFound
}

func (m *mockConversationRepository) ListForUser(ctx context.Context, userID int64) ([]model.Conversation, error) {
	if m.listForUserFn != nil {
		return m.listForUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockConversationRepository) InsertMessage(ctx context.Context, conversationID, senderID int64, body string) (*model.Message, error) {
	if m.insertMessageFn != nil {
		return m.insertMessageFn(ctx, conversationID, senderID, body)
	}
	return &model.Message{ID: 1, ConversationID: conversationID, SenderID: senderID, Body: body}, nil
}

func (m *mockConversationRepository) MessagesFor(ctx context.Context, conversationID int64) ([]model.Message, error) {
	if m.messagesForFn != nil {
		return m.messagesForFn(ctx, conversationID)
	}
	return nil, nil
}

func (m *mockConversationRepository) LastMessages(ctx context.Context, conversationIDs []int64) (map[int64]model.Message, error) {
	if m.lastMessagesFn != nil {
		return m.lastMessagesFn(ctx, conversationIDs)
	}
	return map[int64]model.Message{}, nil
}

// mockPublisher records published events.
type mockPublisher struct {
	events []queue.NotificationEvent
}

func (m *mockPublisher) Publish(ctx context.Context, stream string, event queue.NotificationEvent) (string, error) {
	m.events = append(m.events, event)
	return "1-0", nil
}
