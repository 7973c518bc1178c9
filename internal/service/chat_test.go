package service

import (
	"context"
	"errors"
	"testing"

	"devnet/internal/model"
)

func chatFixture(areFriends bool) (*mockConversationRepository, *mockFriendRequestRepository, *mockUserRepository) {
	convRepo := &mockConversationRepository{}
	friendRepo := &mockFriendRequestRepository{
		areFriendsFn: func(ctx context.Context, a, b int64) (bool, error) {
			return areFriends, nil
		},
	}
	userRepo := &mockUserRepository{getByUsernameFn: userByUsername(2, "bob")}
	return convRepo, friendRepo, userRepo
}

func TestChatService_OpenThread_SelfDenied(t *testing.T) {
	convRepo, friendRepo, _ := chatFixture(true)
	userRepo := &mockUserRepository{getByUsernameFn: userByUsername(1, "alice")}
	svc := NewChatService(convRepo, friendRepo, userRepo)

	_, err := svc.OpenThread(context.Background(), 1, "alice")
	if !errors.Is(err, model.ErrSelfChat) {
		t.Errorf("error = %v, want %v", err, model.ErrSelfChat)
	}
	if convRepo.createCalls != 0 {
		t.Error("no conversation should be created for a self chat")
	}
}

func TestChatService_OpenThread_NotFriendsDenied(t *testing.T) {
	convRepo, friendRepo, userRepo := chatFixture(false)
	svc := NewChatService(convRepo, friendRepo, userRepo)

	_, err := svc.OpenThread(context.Background(), 1, "bob")
	if !errors.Is(err, model.ErrNotFriends) {
		t.Errorf("error = %v, want %v", err, model.ErrNotFriends)
	}
	if convRepo.createCalls != 0 {
		t.Error("no conversation should be created when the pair are not friends")
	}
}

func TestChatService_OpenThread_CreatesOnce(t *testing.T) {
	convRepo, friendRepo, userRepo := chatFixture(true)
	created := false
	convRepo.findFn = func(ctx context.Context, a, b int64) (*model.Conversation, error) {
		if created {
			return &model.Conversation{ID: 1, UserLowID: 1, UserHighID: 2}, nil
		}
		return nil, model.ErrConversationNotFound
	}
	convRepo.createFn = func(ctx context.Context, a, b int64) (*model.Conversation, error) {
		created = true
		return &model.Conversation{ID: 1, UserLowID: 1, UserHighID: 2}, nil
	}
	svc := NewChatService(convRepo, friendRepo, userRepo)

	first, err := svc.OpenThread(context.Background(), 1, "bob")
	if err != nil {
		t.Fatalf("first open: %v", err)
	}

	second, err := svc.OpenThread(context.Background(), 1, "bob")
	if err != nil {
		t.Fatalf("second open: %v", err)
	}

	if first.Conversation.ID != second.Conversation.ID {
		t.Errorf("opens returned different conversations: %d vs %d",
			first.Conversation.ID, second.Conversation.ID)
	}
	if convRepo.createCalls != 1 {
		t.Errorf("Create called %d times, want 1", convRepo.createCalls)
	}
}

func TestChatService_OpenThread_LostCreateRace(t *testing.T) {
	convRepo, friendRepo, userRepo := chatFixture(true)
	raceWinner := &model.Conversation{ID: 42, UserLowID: 1, UserHighID: 2}
	lostRace := false
	convRepo.findFn = func(ctx context.Context, a, b int64) (*model.Conversation, error) {
		if lostRace {
			return raceWinner, nil
		}
		return nil, model.ErrConversationNotFound
	}
	convRepo.createFn = func(ctx context.Context, a, b int64) (*model.Conversation, error) {
		// Another request created the row between our Find and Create.
		lostRace = true
		return nil, model.ErrConversationExists
	}
	svc := NewChatService(convRepo, friendRepo, userRepo)

	thread, err := svc.OpenThread(context.Background(), 1, "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if thread.Conversation.ID != raceWinner.ID {
		t.Errorf("conversation ID = %d, want %d (the race winner's row)",
			thread.Conversation.ID, raceWinner.ID)
	}
}

func TestChatService_PostMessage(t *testing.T) {
	conv := &model.Conversation{ID: 1, UserLowID: 1, UserHighID: 2}

	tests := []struct {
		name       string
		userID     int64
		body       string
		areFriends bool
		wantErr    error
	}{
		{name: "ok", userID: 1, body: "hello", areFriends: true},
		{name: "empty body", userID: 1, body: "  ", areFriends: true, wantErr: model.ErrBodyRequired},
		{name: "not a participant", userID: 3, body: "hi", areFriends: true, wantErr: model.ErrConversationNotFound},
		{name: "friendship ended", userID: 1, body: "hi", areFriends: false, wantErr: model.ErrNotFriends},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			convRepo := &mockConversationRepository{
				getByIDFn: func(ctx context.Context, id int64) (*model.Conversation, error) {
					return conv, nil
				},
			}
			friendRepo := &mockFriendRequestRepository{
				areFriendsFn: func(ctx context.Context, a, b int64) (bool, error) {
					return tt.areFriends, nil
				},
			}
			svc := NewChatService(convRepo, friendRepo, &mockUserRepository{})

			msg, err := svc.PostMessage(context.Background(), tt.userID, 1, &model.PostMessageRequest{Body: tt.body})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if msg.Body != tt.body || msg.SenderID != tt.userID {
				t.Errorf("message = %+v, want body=%q sender=%d", msg, tt.body, tt.userID)
			}
		})
	}
}

func TestChatService_ChatList(t *testing.T) {
	convRepo := &mockConversationRepository{
		listForUserFn: func(ctx context.Context, userID int64) ([]model.Conversation, error) {
			return []model.Conversation{
				{ID: 1, UserLowID: 1, UserHighID: 2},
				{ID: 2, UserLowID: 1, UserHighID: 3},
			}, nil
		},
		lastMessagesFn: func(ctx context.Context, ids []int64) (map[int64]model.Message, error) {
			return map[int64]model.Message{
				1: {ID: 10, ConversationID: 1, SenderID: 2, Body: "latest"},
			}, nil
		},
	}
	friendRepo := &mockFriendRequestRepository{
		friendIDsFn: func(ctx context.Context, userID int64) ([]int64, error) {
			return []int64{2, 3, 4}, nil
		},
	}
	svc := NewChatService(convRepo, friendRepo, &mockUserRepository{})

	list, err := svc.ChatList(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(list.Conversations) != 2 {
		t.Fatalf("len(conversations) = %d, want 2", len(list.Conversations))
	}
	if list.Conversations[0].Other.ID != 2 {
		t.Errorf("first conversation other = %d, want 2", list.Conversations[0].Other.ID)
	}
	if list.Conversations[0].LastMessage == nil || list.Conversations[0].LastMessage.Body != "latest" {
		t.Errorf("first conversation should carry the latest message")
	}
	if list.Conversations[1].LastMessage != nil {
		t.Errorf("empty conversation should have no last message")
	}
	if len(list.Friends) != 3 {
		t.Errorf("len(friends) = %d, want 3", len(list.Friends))
	}
}
