package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"devnet/internal/model"
)

func newUserService(userRepo *mockUserRepository, friendRepo *mockFriendRequestRepository, postRepo *mockPostRepository) *UserService {
	if friendRepo == nil {
		friendRepo = &mockFriendRequestRepository{}
	}
	if postRepo == nil {
		postRepo = &mockPostRepository{}
	}
	return NewUserService(userRepo, friendRepo, postRepo, &mockCommentRepository{})
}

func TestUserService_Register_Success(t *testing.T) {
	mockRepo := &mockUserRepository{
		createFn: func(ctx context.Context, user *model.User) error {
			user.ID = 1
			user.CreatedAt = time.Now()
			user.UpdatedAt = time.Now()
			return nil
		},
	}
	svc := newUserService(mockRepo, nil, nil)

	req := &model.RegisterRequest{
		Username: "testuser",
		Email:    "test@example.com",
		Password: "securepassword123",
	}

	user, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}
	if user.Username != req.Username {
		t.Errorf("username = %q, want %q", user.Username, req.Username)
	}

	// Verify password was hashed (not stored in plain text!)
	if user.PasswordHashed == req.Password {
		t.Error("password should be hashed, not stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password)); err != nil {
		t.Error("password hash should be valid bcrypt hash")
	}

	if mockRepo.createCalls != 1 {
		t.Errorf("Create called %d times, want 1", mockRepo.createCalls)
	}
}

func TestUserService_Register_UsernameExists(t *testing.T) {
	mockRepo := &mockUserRepository{
		existsByUsernameFn: func(ctx context.Context, username string) (bool, error) {
			return true, nil
		},
	}
	svc := newUserService(mockRepo, nil, nil)

	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Username: "existinguser",
		Password: "password123",
	})

	if !errors.Is(err, model.ErrUsernameExists) {
		t.Errorf("error = %v, want %v", err, model.ErrUsernameExists)
	}
	if user != nil {
		t.Error("user should be nil when registration fails")
	}
	if mockRepo.createCalls != 0 {
		t.Error("Create should not be called when username exists")
	}
}

func TestUserService_Register_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     model.RegisterRequest
		wantErr error
	}{
		{
			name:    "empty username",
			req:     model.RegisterRequest{Username: "  ", Password: "password123"},
			wantErr: model.ErrUsernameRequired,
		},
		{
			name:    "short password",
			req:     model.RegisterRequest{Username: "alice", Password: "short"},
			wantErr: model.ErrPasswordTooShort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockUserRepository{}
			svc := newUserService(mockRepo, nil, nil)

			_, err := svc.Register(context.Background(), &tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if mockRepo.createCalls != 0 {
				t.Error("Create should not be called for invalid input")
			}
		})
	}
}

func TestUserService_Login(t *testing.T) {
	validPassword := "correctpassword"
	validHash, _ := bcrypt.GenerateFromPassword([]byte(validPassword), bcrypt.MinCost)

	testUser := &model.User{
		ID:             1,
		Username:       "testuser",
		PasswordHashed: string(validHash),
	}

	tests := []struct {
		name          string
		username      string
		password      string
		mockGetByUser func(ctx context.Context, username string) (*model.User, error)
		wantErr       error
		wantUser      bool
	}{
		{
			name:     "successful login",
			username: "testuser",
			password: validPassword,
			mockGetByUser: func(ctx context.Context, username string) (*model.User, error) {
				return testUser, nil
			},
			wantUser: true,
		},
		{
			name:     "user not found",
			username: "nonexistent",
			password: "anypassword",
			mockGetByUser: func(ctx context.Context, username string) (*model.User, error) {
				return nil, model.ErrUserNotFound
			},
			wantErr: model.ErrInvalidCredentials, // Don't reveal user doesn't exist
		},
		{
			name:     "wrong password",
			username: "testuser",
			password: "wrongpassword",
			mockGetByUser: func(ctx context.Context, username string) (*model.User, error) {
				return testUser, nil
			},
			wantErr: model.ErrInvalidCredentials,
		},
		{
			name:     "database error",
			username: "testuser",
			password: validPassword,
			mockGetByUser: func(ctx context.Context, username string) (*model.User, error) {
				return nil, errors.New("database error")
			},
			wantErr: model.ErrInvalidCredentials, // Don't reveal internal errors
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockUserRepository{getByUsernameFn: tt.mockGetByUser}
			svc := newUserService(mockRepo, nil, nil)

			user, err := svc.Login(context.Background(), &model.LoginRequest{
				Username: tt.username,
				Password: tt.password,
			})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if tt.wantUser && user == nil {
				t.Error("expected user, got nil")
			}
			if !tt.wantUser && user != nil {
				t.Error("expected nil user")
			}
		})
	}
}

func TestUserService_GetProfilePage_AnnotatesPosts(t *testing.T) {
	userRepo := &mockUserRepository{getByUsernameFn: userByUsername(2, "bob")}
	var gotPostIDs []int64
	postRepo := &mockPostRepository{
		byAuthorFn: func(ctx context.Context, authorID int64, includeFriendsOnly bool) ([]model.Post, error) {
			return []model.Post{
				{ID: 10, UserID: authorID, Message: "hello"},
				{ID: 11, UserID: authorID, Message: "world"},
			}, nil
		},
		checkLikesFn: func(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
			gotPostIDs = postIDs
			return map[int64]bool{10: true}, nil
		},
	}
	commentRepo := &mockCommentRepository{
		getByPostIDsFn: func(ctx context.Context, postIDs []int64) (map[int64][]model.Comment, error) {
			return map[int64][]model.Comment{
				11: {{ID: 3, PostID: 11, UserID: 1, Text: "nice"}},
			}, nil
		},
	}
	svc := NewUserService(userRepo, &mockFriendRequestRepository{}, postRepo, commentRepo)

	page, err := svc.GetProfilePage(context.Background(), "bob", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Posts) != 2 {
		t.Fatalf("len(posts) = %d, want 2", len(page.Posts))
	}

	if len(gotPostIDs) != 2 || gotPostIDs[0] != 10 || gotPostIDs[1] != 11 {
		t.Errorf("CheckLikes post IDs = %v, want [10 11]", gotPostIDs)
	}
	if !page.Posts[0].IsLiked {
		t.Error("post 10 should be marked as liked by the viewer")
	}
	if page.Posts[1].IsLiked {
		t.Error("post 11 should not be marked as liked")
	}
	if page.Posts[0].Comments == nil || len(page.Posts[0].Comments) != 0 {
		t.Errorf("post 10 comments = %v, want empty non-nil slice", page.Posts[0].Comments)
	}
	if len(page.Posts[1].Comments) != 1 || page.Posts[1].Comments[0].Text != "nice" {
		t.Errorf("post 11 comments = %+v, want the single attached comment", page.Posts[1].Comments)
	}
}

func TestUserService_GetProfilePage_PairLookupError(t *testing.T) {
	userRepo := &mockUserRepository{getByUsernameFn: userByUsername(2, "bob")}
	friendRepo := &mockFriendRequestRepository{
		getByPairFn: func(ctx context.Context, senderID, receiverID int64) (*model.FriendRequest, error) {
			return nil, errors.New("connection reset")
		},
	}
	svc := newUserService(userRepo, friendRepo, nil)

	if _, err := svc.GetProfilePage(context.Background(), "bob", 1); err == nil {
		t.Fatal("expected error when the pending-request lookup fails")
	}
}

func TestUserService_GetProfilePage_RelationshipFlags(t *testing.T) {
	tests := []struct {
		name            string
		viewerID        int64
		areFriends      bool
		outgoingPending bool
		incomingPending bool
		wantIsFriend    bool
		wantHasPending  bool
		wantIncoming    bool
		wantFullPosts   bool
	}{
		{
			name:          "own profile sees full history",
			viewerID:      2,
			wantFullPosts: true,
		},
		{
			name:          "friend sees full history",
			viewerID:      1,
			areFriends:    true,
			wantIsFriend:  true,
			wantFullPosts: true,
		},
		{
			name:     "stranger sees public only",
			viewerID: 1,
		},
		{
			name:            "stranger with outgoing pending",
			viewerID:        1,
			outgoingPending: true,
			wantHasPending:  true,
		},
		{
			name:            "stranger with incoming pending",
			viewerID:        1,
			incomingPending: true,
			wantIncoming:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := &mockUserRepository{getByUsernameFn: userByUsername(2, "bob")}
			friendRepo := &mockFriendRequestRepository{
				areFriendsFn: func(ctx context.Context, a, b int64) (bool, error) {
					return tt.areFriends, nil
				},
				getByPairFn: func(ctx context.Context, senderID, receiverID int64) (*model.FriendRequest, error) {
					if tt.outgoingPending && senderID == tt.viewerID {
						return pendingRequest(5, senderID, receiverID), nil
					}
					if tt.incomingPending && receiverID == tt.viewerID {
						return pendingRequest(6, senderID, receiverID), nil
					}
					return nil, model.ErrRequestNotFound
				},
			}
			var gotIncludeFriendsOnly bool
			postRepo := &mockPostRepository{
				byAuthorFn: func(ctx context.Context, authorID int64, includeFriendsOnly bool) ([]model.Post, error) {
					gotIncludeFriendsOnly = includeFriendsOnly
					return []model.Post{}, nil
				},
			}
			svc := newUserService(userRepo, friendRepo, postRepo)

			page, err := svc.GetProfilePage(context.Background(), "bob", tt.viewerID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if page.IsFriend != tt.wantIsFriend {
				t.Errorf("IsFriend = %v, want %v", page.IsFriend, tt.wantIsFriend)
			}
			if page.HasPendingRequest != tt.wantHasPending {
				t.Errorf("HasPendingRequest = %v, want %v", page.HasPendingRequest, tt.wantHasPending)
			}
			if page.IncomingRequest != tt.wantIncoming {
				t.Errorf("IncomingRequest = %v, want %v", page.IncomingRequest, tt.wantIncoming)
			}
			if gotIncludeFriendsOnly != tt.wantFullPosts {
				t.Errorf("includeFriendsOnly = %v, want %v", gotIncludeFriendsOnly, tt.wantFullPosts)
			}
		})
	}
}
